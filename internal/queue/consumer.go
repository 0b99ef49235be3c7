package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"vidquiz/internal/domain"
	"vidquiz/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer drains the pipeline queue with a bounded worker pool. Messages
// are acked after handling; a handler error still acks so a poisoned job is
// not redelivered forever.
type Consumer struct {
	channel  *amqp.Channel
	pipeline domain.PipelineService
	workers  int
}

func NewConsumer(conn *amqp.Connection, pipeline domain.PipelineService, workers int) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open consumer channel: %w", err)
	}
	if _, err := declareTopology(ch); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare pipeline topology: %w", err)
	}
	if workers < 1 {
		workers = 1
	}
	// Prefetch one message per worker so slow transcriptions do not starve
	// other consumers on the same queue.
	if err := ch.Qos(workers, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("set channel qos: %w", err)
	}
	return &Consumer{channel: ch, pipeline: pipeline, workers: workers}, nil
}

// Consume blocks until ctx is cancelled or the delivery stream closes.
func (c *Consumer) Consume(ctx context.Context) error {
	deliveries, err := c.channel.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	logger.Get().Info("Pipeline consumer started", zap.Int("workers", c.workers))

	jobs := make(chan amqp.Delivery)
	for i := 0; i < c.workers; i++ {
		go func() {
			for d := range jobs {
				c.handle(ctx, d)
			}
		}()
	}
	defer close(jobs)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			jobs <- d
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	appLogger := logger.Get()

	var job PipelineJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		appLogger.Error("Discarding malformed pipeline job", zap.Error(err))
		if err := d.Nack(false, false); err != nil {
			appLogger.Warn("Failed to nack malformed job", zap.Error(err))
		}
		return
	}

	var err error
	switch job.Job {
	case JobGenerate:
		err = c.pipeline.GenerateQuiz(ctx, job.QuizID)
	case JobRegenerate:
		err = c.pipeline.RegenerateQuestions(ctx, job.QuizID)
	default:
		err = fmt.Errorf("unknown pipeline job %q", job.Job)
	}
	if err != nil {
		appLogger.Error("Pipeline job failed",
			zap.String("job", job.Job),
			zap.String("quizID", job.QuizID),
			zap.Error(err))
	}

	if err := d.Ack(false); err != nil {
		appLogger.Warn("Failed to ack pipeline job", zap.Error(err))
	}
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}
