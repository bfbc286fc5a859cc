package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEmailQueues(t *testing.T) {
	queues := GetEmailQueues()

	require.Len(t, queues, 1)
	assert.Equal(t, "email.outgoing", queues[0].QueueName)
	assert.Equal(t, "email", queues[0].RoutingKey)
}
