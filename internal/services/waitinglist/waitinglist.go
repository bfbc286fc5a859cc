// Package services принимает заявки в лист ожидания.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

// Repository хранит заявки.
type Repository interface {
	AddWaitingListEntry(ctx context.Context, name, email string) (*models.WaitingListEntry, error)
	ListWaitingList(ctx context.Context, limit, offset int) ([]*models.WaitingListEntry, int, error)
}

// ModeReader сообщает, включён ли режим листа ожидания.
type ModeReader interface {
	IsWaitingListMode(ctx context.Context) bool
}

// Service управляет листом ожидания.
type Service struct {
	repo Repository
	mode ModeReader
}

// NewService создаёт Service.
func NewService(repo Repository, mode ModeReader) *Service {
	return &Service{repo: repo, mode: mode}
}

// Join добавляет заявку. Вне режима листа ожидания возвращает errs.ErrWaitingListInactive,
// повторный email возвращает errs.ErrConflict.
func (s *Service) Join(ctx context.Context, name, email string) (*models.WaitingListEntry, error) {
	const op = "services.waitinglist.Join"
	if !s.mode.IsWaitingListMode(ctx) {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrWaitingListInactive)
	}
	entry, err := s.repo.AddWaitingListEntry(ctx, strings.TrimSpace(name), strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entry, nil
}

// List возвращает страницу заявок, новые первыми, и общее количество.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.WaitingListEntry, int, error) {
	const op = "services.waitinglist.List"
	entries, total, err := s.repo.ListWaitingList(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return entries, total, nil
}
