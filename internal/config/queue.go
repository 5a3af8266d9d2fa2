package config

import "os"

// QueueConfig holds the RabbitMQ settings.  An empty URL disables event
// publishing and the background consumer.
type QueueConfig struct {
	URL           string
	Exchange      string
	Queue         string
	StartConsumer bool
}

func LoadQueueConfig() QueueConfig {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		url = os.Getenv("AMQP_URL")
	}
	return QueueConfig{
		URL:           url,
		Exchange:      envStr("EVENTS_EXCHANGE", "wayfindar.events"),
		Queue:         envStr("EVENTS_QUEUE", "wayfindar.events.log"),
		StartConsumer: envBool("EVENTS_CONSUMER", true),
	}
}
