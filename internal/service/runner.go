package service

import (
	"context"

	"vidquiz/internal/domain"
	"vidquiz/internal/queue"
)

// syncRunner executes pipeline runs inline on the caller's goroutine. The
// HTTP request does not return until the quiz is fully generated.
type syncRunner struct {
	pipeline domain.PipelineService
}

// NewSyncRunner returns a runner for synchronous execution mode.
func NewSyncRunner(pipeline domain.PipelineService) domain.PipelineRunner {
	return &syncRunner{pipeline: pipeline}
}

func (r *syncRunner) RunGenerate(ctx context.Context, quizID string) error {
	return r.pipeline.GenerateQuiz(ctx, quizID)
}

func (r *syncRunner) RunRegenerate(ctx context.Context, quizID string) error {
	return r.pipeline.RegenerateQuestions(ctx, quizID)
}

func (r *syncRunner) Async() bool { return false }

// queueRunner hands pipeline runs to the message broker; a worker process
// picks them up later. Callers only learn that the job was accepted.
type queueRunner struct {
	publisher *queue.Publisher
}

// NewQueueRunner returns a runner for queued execution mode.
func NewQueueRunner(publisher *queue.Publisher) domain.PipelineRunner {
	return &queueRunner{publisher: publisher}
}

func (r *queueRunner) RunGenerate(ctx context.Context, quizID string) error {
	return r.publisher.Publish(ctx, queue.PipelineJob{Job: queue.JobGenerate, QuizID: quizID})
}

func (r *queueRunner) RunRegenerate(ctx context.Context, quizID string) error {
	return r.publisher.Publish(ctx, queue.PipelineJob{Job: queue.JobRegenerate, QuizID: quizID})
}

func (r *queueRunner) Async() bool { return true }
