package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/saaskit/internal/errs"
)

type recordingAck struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (r *recordingAck) Ack(uint64, bool) error {
	r.acked = true
	return nil
}

func (r *recordingAck) Nack(_ uint64, _ bool, requeue bool) error {
	r.nacked, r.requeued = true, requeue
	return nil
}

func (r *recordingAck) Reject(_ uint64, requeue bool) error {
	r.nacked, r.requeued = true, requeue
	return nil
}

func TestSettle(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		handlerErr error
		want       recordingAck
	}{
		{name: "handled", want: recordingAck{acked: true}},
		{
			name:       "malformed message is dropped",
			handlerErr: fmt.Errorf("decode: %w", errs.ErrValidation),
			want:       recordingAck{nacked: true},
		},
		{
			name:       "delivery failure is requeued",
			handlerErr: errors.New("smtp: 421 try again later"),
			want:       recordingAck{nacked: true, requeued: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &recordingAck{}
			d := amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(`{}`)}

			settle(context.Background(), log, "test", d, func(context.Context, []byte) error {
				return tt.handlerErr
			})
			assert.Equal(t, tt.want, *ack)
		})
	}
}
