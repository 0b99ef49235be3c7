package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"vidquiz/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher enqueues pipeline jobs. It owns a dedicated channel on the
// shared connection and declares the topology up front so publishing never
// races the worker's declarations.
type Publisher struct {
	channel *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publisher channel: %w", err)
	}
	if _, err := declareTopology(ch); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare pipeline topology: %w", err)
	}
	return &Publisher{channel: ch}, nil
}

// Publish sends one job as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, job PipelineJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal pipeline job: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish pipeline job: %w", err)
	}

	logger.Get().Info("Pipeline job published",
		zap.String("job", job.Job),
		zap.String("quizID", job.QuizID))
	return nil
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}
