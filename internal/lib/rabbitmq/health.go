package rabbitmq

import (
	"context"
	"errors"

	"github.com/streadway/amqp"
)

// ErrConnectionClosed соединение с брокером закрыто.
var ErrConnectionClosed = errors.New("rabbitmq connection is closed")

// closer часть *amqp.Connection, по которой видно, живо ли соединение.
type closer interface {
	IsClosed() bool
}

var _ closer = (*amqp.Connection)(nil)

// ConnectionCheck возвращает проверку для /health: ошибка, если соединение закрыто
// или контекст проверки уже истёк.
func ConnectionCheck(conn closer) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if conn.IsClosed() {
			return ErrConnectionClosed
		}
		return nil
	}
}
