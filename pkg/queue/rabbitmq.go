package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue names shared by the reporting services.
const (
	ReportQueue = "report_queue"
	StatusQueue = "report_status_queue"
)

func ConnectRabbitMQ(uri string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return conn, ch, nil
}
