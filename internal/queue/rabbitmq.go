package queue

import (
	"context"
	"time"

	"vidquiz/internal/logger"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	ExchangeName = "quiz_pipeline"
	QueueName    = "quiz_pipeline_queue"
	RoutingKey   = "quiz.pipeline"
)

// PipelineJob is the message handed to asynchronous workers. Delivery is
// at-least-once; no dedup of jobs for the same quiz id is attempted.
type PipelineJob struct {
	Job    string `json:"job"`
	QuizID string `json:"quiz_id"`
}

const (
	JobGenerate   = "generate"
	JobRegenerate = "regenerate"
)

// NewRabbitMQConn dials the broker with exponential backoff and closes the
// connection when ctx is cancelled.
func NewRabbitMQConn(ctx context.Context, url string) (*amqp.Connection, error) {
	operation := func() (*amqp.Connection, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Get().Warn("Failed to connect to RabbitMQ, retrying", zap.Error(err))
			return nil, err
		}
		return conn, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = 10 * time.Second
	conn, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(5))
	if err != nil {
		return nil, err
	}

	logger.Get().Info("Connected to RabbitMQ")
	go func() {
		<-ctx.Done()
		if err := conn.Close(); err != nil {
			logger.Get().Warn("Failed to close RabbitMQ connection", zap.Error(err))
		}
	}()

	return conn, nil
}

func declareTopology(ch *amqp.Channel) (amqp.Queue, error) {
	if err := ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil); err != nil {
		return amqp.Queue{}, err
	}
	q, err := ch.QueueDeclare(QueueName, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, err
	}
	if err := ch.QueueBind(q.Name, RoutingKey, ExchangeName, false, nil); err != nil {
		return amqp.Queue{}, err
	}
	return q, nil
}
