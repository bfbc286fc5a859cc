package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации для привязки к Exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Очередь исходящих писем.
const (
	EmailQueue      = "email.outgoing"
	EmailRoutingKey = "email"
)

// GetEmailQueues возвращает очереди, которые объявляют и API, и sender.
func GetEmailQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: EmailQueue, RoutingKey: EmailRoutingKey},
	}
}
