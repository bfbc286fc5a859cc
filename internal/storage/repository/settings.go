package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/saaskit/internal/models"
)

// GetSettings возвращает настройки сайта, создавая запись по умолчанию при первом чтении.
func (s *Storage) GetSettings(ctx context.Context) (*models.Settings, error) {
	const op = "storage.GetSettings"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO settings (id) VALUES (1)
			  ON CONFLICT (id) DO UPDATE SET id = settings.id
			  RETURNING is_waiting_list_mode, updated_at`
	var st models.Settings
	if err := s.DB.QueryRowContext(ctx, query).Scan(&st.IsWaitingListMode, &st.UpdatedAt); err != nil {
		return nil, wrapErr(op, err)
	}
	return &st, nil
}

// UpdateSettings переключает режим листа ожидания.
func (s *Storage) UpdateSettings(ctx context.Context, waitingListMode bool) (*models.Settings, error) {
	const op = "storage.UpdateSettings"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO settings (id, is_waiting_list_mode, updated_at) VALUES (1, $1, NOW())
			  ON CONFLICT (id) DO UPDATE
			      SET is_waiting_list_mode = EXCLUDED.is_waiting_list_mode, updated_at = NOW()
			  RETURNING is_waiting_list_mode, updated_at`
	var st models.Settings
	if err := s.DB.QueryRowContext(ctx, query, waitingListMode).Scan(&st.IsWaitingListMode, &st.UpdatedAt); err != nil {
		return nil, wrapErr(op, err)
	}
	return &st, nil
}
