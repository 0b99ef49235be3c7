package domain

import "context"

// AudioDownloader acquires raw audio for a source URL into destDir and
// returns the local file path.
type AudioDownloader interface {
	FetchAudio(ctx context.Context, sourceURL, destDir string) (string, error)
}

// SpeechToText converts a local audio file into plain text.
type SpeechToText interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// TextGenerator submits a prompt to a generative text model and returns the
// raw text output. Single-shot, no streaming.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// TranscriptionService is the first pipeline stage. On a cache hit the
// returned transcriptPath is empty: no artifact exists and downstream
// cleanup must branch on presence.
type TranscriptionService interface {
	Transcribe(ctx context.Context, sourceURL string) (text string, transcriptPath string, err error)
}

// QuestionGenerator is the second pipeline stage. It owns the transcript
// artifact (when present) from the moment it is handed over, and deletes it
// together with the prompt artifact after a successful parse.
type QuestionGenerator interface {
	Generate(ctx context.Context, transcript, transcriptPath string) (*QuizPayload, error)
}

// PipelineService sequences transcription and generation for one quiz and
// persists the outcome.
//
// GenerateQuiz is the create path: it fills title/description and inserts
// the initial question batch; on any stage failure the quiz row is deleted
// so no empty quiz stays queryable.
//
// RegenerateQuestions is the update path: it replaces the question batch
// atomically and leaves title/description untouched; on failure the quiz is
// left as-is.
type PipelineService interface {
	GenerateQuiz(ctx context.Context, quizID string) error
	RegenerateQuestions(ctx context.Context, quizID string) error
}

// PipelineRunner decouples triggering a pipeline run from executing it.
// The sync implementation calls the pipeline inline; the queue
// implementation publishes a job and returns immediately.
type PipelineRunner interface {
	RunGenerate(ctx context.Context, quizID string) error
	RunRegenerate(ctx context.Context, quizID string) error
	// Async reports whether runs complete after the call returns.
	Async() bool
}

// TransactionManager runs fn inside a database transaction. The transaction
// travels through the context so repositories can pick it up.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
