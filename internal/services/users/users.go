// Package services реализует административное управление учётными записями.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/lib/password"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

// Пагинация списка пользователей.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// UserRepository описывает операции над учётными записями, доступные администратору.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByID(ctx context.Context, userUID string) (*models.User, error)
	ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error)
	UpdateUser(ctx context.Context, userUID string, upd models.UserUpdate) (*models.User, error)
	PromoteToAdmin(ctx context.Context, email string) (*models.User, error)
}

// UserService операции администратора над пользователями.
type UserService struct {
	users UserRepository
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users}
}

// ValidRole сообщает, является ли role допустимой ролью.
func ValidRole(role string) bool {
	return role == models.RoleUser || role == models.RoleAdmin
}

// NormalizeLimit приводит размер страницы к диапазону [1, MaxLimit].
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// List возвращает страницу пользователей по фильтру и общее число совпадений.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error) {
	const op = "services.users.List"
	if filter.Role != "" && !ValidRole(filter.Role) {
		return nil, 0, fmt.Errorf("%s: unknown role %q: %w", op, filter.Role, errs.ErrValidation)
	}
	filter.Limit = NormalizeLimit(filter.Limit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	users, total, err := s.users.ListUsers(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return users, total, nil
}

// Create создаёт подтверждённую учётную запись. Для роли admin сразу
// закрепляется бессрочное право доступа.
func (s *UserService) Create(ctx context.Context, name, email, rawPassword, role string) (*models.User, error) {
	const op = "services.users.Create"
	if role == "" {
		role = models.RoleUser
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf("%s: unknown role %q: %w", op, role, errs.ErrValidation)
	}
	if len(rawPassword) < password.MinLength {
		return nil, fmt.Errorf("%s: password is too short: %w", op, errs.ErrValidation)
	}
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Name:            strings.TrimSpace(name),
		Email:           strings.TrimSpace(email),
		PasswordHash:    hashed,
		Role:            role,
		IsEmailVerified: true,
	}
	if user.IsAdmin() {
		ent := models.AdministrativeUnlimited{}
		user.SubscriptionStatus = ent.SubscriptionStatus()
		user.SubscriptionPlan = ent.SubscriptionPlan()
		user.SubscriptionCurrentPeriod = ent.SubscriptionPeriodEnd()
	}

	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// Update меняет имя, email и роль пользователя.
func (s *UserService) Update(ctx context.Context, userID string, upd models.UserUpdate) (*models.User, error) {
	const op = "services.users.Update"
	if !ValidRole(upd.Role) {
		return nil, fmt.Errorf("%s: unknown role %q: %w", op, upd.Role, errs.ErrValidation)
	}
	upd.Name = strings.TrimSpace(upd.Name)
	upd.Email = strings.TrimSpace(upd.Email)

	user, err := s.users.UpdateUser(ctx, userID, upd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// PromoteToAdmin назначает роль admin учётной записи с указанным email.
func (s *UserService) PromoteToAdmin(ctx context.Context, email string) (*models.User, error) {
	const op = "services.users.PromoteToAdmin"
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%s: email is required: %w", op, errs.ErrValidation)
	}
	user, err := s.users.PromoteToAdmin(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
