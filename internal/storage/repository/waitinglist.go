package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/saaskit/internal/models"
)

// AddWaitingListEntry добавляет заявку. Повторный email возвращает errs.ErrConflict.
func (s *Storage) AddWaitingListEntry(ctx context.Context, name, email string) (*models.WaitingListEntry, error) {
	const op = "storage.AddWaitingListEntry"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO waiting_list (name, email) VALUES ($1, $2)
			  RETURNING id, name, email, created_at`
	var e models.WaitingListEntry
	if err := s.DB.QueryRowContext(ctx, query, name, email).Scan(&e.ID, &e.Name, &e.Email, &e.CreatedAt); err != nil {
		return nil, wrapErr(op, err)
	}
	return &e, nil
}

// ListWaitingList возвращает страницу заявок (новые первыми) и их общее число.
func (s *Storage) ListWaitingList(ctx context.Context, limit, offset int) ([]*models.WaitingListEntry, int, error) {
	const op = "storage.ListWaitingList"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM waiting_list`).Scan(&total); err != nil {
		return nil, 0, wrapErr(op, err)
	}

	query := `SELECT id, name, email, created_at
			  FROM waiting_list
			  ORDER BY created_at DESC, id DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, wrapErr(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.WaitingListEntry, 0, limit)
	for rows.Next() {
		var e models.WaitingListEntry
		if err = rows.Scan(&e.ID, &e.Name, &e.Email, &e.CreatedAt); err != nil {
			return nil, 0, wrapErr(op, err)
		}
		result = append(result, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapErr(op, err)
	}
	return result, total, nil
}
