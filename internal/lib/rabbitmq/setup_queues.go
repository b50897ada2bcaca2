package rabbitmq

// RoutingKeySubscriptionActivated - ключ маршрутизации события активации подписки.
const RoutingKeySubscriptionActivated = "subscription.activated"

// QueueConfig описывает очередь и ключ, которым она привязана к exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetSubscriptionQueues возвращает очереди, которые сервис объявляет при старте.
func GetSubscriptionQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "subscriptions.activated", RoutingKey: RoutingKeySubscriptionActivated},
	}
}
