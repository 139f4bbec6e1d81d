// Package broker implements events.Publisher on Kafka and RabbitMQ.
package broker

import (
	"fmt"

	"fintrack/internal/shared/config"
	"fintrack/internal/shared/events"
)

// New returns the publisher selected by EVENTS_DRIVER.
func New(cfg config.EventsConfig) (events.Publisher, error) {
	switch cfg.Driver {
	case "kafka":
		return NewKafkaPublisher(cfg.Brokers, cfg.Topic), nil
	case "amqp":
		return NewAMQPPublisher(cfg.AMQPURL, cfg.Exchange)
	case "", "none":
		return events.NopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}
