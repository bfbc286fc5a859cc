// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков и сопоставления ошибок
// сервисов со статусами HTTP.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/saaskit/internal/errs"
)

const (
	// StatusOK значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// Response общий конверт ответа. Обработчики встраивают его в свои структуры ответа.
type Response struct {
	Status  string `json:"status" example:"OK"`
	Message string `json:"message,omitempty" example:"done"`
	Error   string `json:"error,omitempty"`
}

// OKResponse успешный ответ с данными.
type OKResponse struct {
	Response
	Data any `json:"data,omitempty"`
}

// OK возвращает успешный Response с сообщением.
func OK(msg string) Response {
	return Response{Status: StatusOK, Message: msg}
}

// OKWithData возвращает успешный ответ с переданными данными.
func OKWithData(data any) OKResponse {
	return OKResponse{
		Response: Response{Status: StatusOK},
		Data:     data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{Status: StatusError, Message: msg}
}

// ErrorWithDetail возвращает Response с сообщением для пользователя и кратким описанием причины.
func ErrorWithDetail(msg, detail string) Response {
	return Response{Status: StatusError, Message: msg, Error: detail}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters", err.Field(), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		case "uuid":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status:  StatusError,
		Message: "validation failed",
		Error:   strings.Join(errsMsgs, ", "),
	}
}

// HTTPStatus сопоставляет ошибку сервиса со статусом HTTP и безопасным сообщением.
func HTTPStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrAuthenticationRequired):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, errs.ErrExpiredToken):
		return http.StatusUnauthorized, "token expired"
	case errors.Is(err, errs.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid token"
	case errors.Is(err, errs.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, errs.ErrInvalidSignature):
		return http.StatusUnauthorized, "invalid signature"
	case errors.Is(err, errs.ErrEmailNotVerified):
		return http.StatusForbidden, "please verify your email before logging in"
	case errors.Is(err, errs.ErrAuthorizationDenied):
		return http.StatusForbidden, "insufficient permissions"
	case errors.Is(err, errs.ErrWaitingListInactive):
		return http.StatusBadRequest, "waiting list is not active"
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict, "already exists"
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, errs.ErrUpstreamDelivery):
		return http.StatusBadGateway, "upstream service failed"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RenderError пишет ответ с ошибкой, выбирая статус через HTTPStatus.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := HTTPStatus(err)
	render.Status(r, status)
	render.JSON(w, r, Error(msg))
}
