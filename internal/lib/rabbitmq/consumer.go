package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
	"github.com/magabrotheeeer/saaskit/internal/obs"
)

// ConsumerConcurrency сколько сообщений обрабатывается одновременно.
const ConsumerConcurrency = 10

// Handler обрабатывает тело одного сообщения.
type Handler func(ctx context.Context, body []byte) error

// ConsumerMessage запускает потребителя очереди и возвращает канал, который
// закрывается, когда потребитель остановлен и все начатые обработчики завершились.
//
// Успешное сообщение подтверждается. Ошибка с errs.ErrValidation означает, что
// повтор не поможет, и сообщение отбрасывается. Остальные ошибки возвращают его в очередь.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler Handler) (<-chan struct{}, error) {
	const op = "rabbitmq.ConsumerMessage"

	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		sem := make(chan struct{}, ConsumerConcurrency)
		defer func() {
			wg.Wait()
			close(done)
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				sem <- struct{}{}
				wg.Add(1)
				go func() {
					defer func() {
						<-sem
						wg.Done()
					}()
					settle(ctx, log, queueName, d, handler)
				}()
			}
		}
	}()
	return done, nil
}

func settle(ctx context.Context, log *slog.Logger, queue string, d amqp.Delivery, handler Handler) {
	err := handler(ctx, d.Body)
	switch {
	case err == nil:
		obs.QueueMessages.WithLabelValues(queue, "acked").Inc()
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
	case errors.Is(err, errs.ErrValidation):
		obs.QueueMessages.WithLabelValues(queue, "dropped").Inc()
		log.Warn("dropping malformed message", sl.Err(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
	default:
		obs.QueueMessages.WithLabelValues(queue, "requeued").Inc()
		log.Error("handler failed, requeue message", sl.Err(err))
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
	}
}
