// Package errs содержит общую таксономию ошибок сервиса.
//
// Сервисы возвращают эти значения (обёрнутые через %w), а HTTP-слой
// сопоставляет их со статусами через errors.Is.
package errs

import "errors"

// Аутентификация и авторизация
var (
	ErrAuthenticationRequired = errors.New("authentication required")    // 401
	ErrInvalidToken           = errors.New("invalid token")              // 401
	ErrExpiredToken           = errors.New("token expired")              // 401
	ErrAuthorizationDenied    = errors.New("insufficient permissions")   // 403
	ErrInvalidCredentials     = errors.New("invalid email or password")  // 401
	ErrEmailNotVerified       = errors.New("email is not verified")      // 403
	ErrInvalidSignature       = errors.New("invalid webhook signature")  // 401
)

// Ошибки входных данных и состояния
var (
	ErrValidation          = errors.New("validation failed")           // 400
	ErrConflict            = errors.New("already exists")              // 409
	ErrNotFound            = errors.New("not found")                   // 404
	ErrWaitingListInactive = errors.New("waiting list is not active")  // 400
)

// ErrUpstreamDelivery сбой внешнего получателя (почта, платёжный провайдер).
var ErrUpstreamDelivery = errors.New("upstream delivery failed")

// ErrConfiguration отсутствует обязательная настройка. Фатально на старте.
var ErrConfiguration = errors.New("configuration error")
