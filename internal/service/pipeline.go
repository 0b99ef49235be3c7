package service

import (
	"context"
	"sync"

	"vidquiz/internal/domain"
	"vidquiz/internal/logger"
	"vidquiz/internal/repository"

	"go.uber.org/zap"
)

// quizLocks serializes pipeline runs per quiz id. The original system gave
// no ordering guarantee between concurrent runs for the same quiz; this
// advisory in-process lock prevents two generations from interleaving
// writes without promising anything across processes.
type quizLocks struct {
	locks sync.Map // quizID -> *sync.Mutex
}

func (l *quizLocks) lock(quizID string) func() {
	mu, _ := l.locks.LoadOrStore(quizID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// pipelineService sequences the transcription and generation stages for one
// quiz and persists the outcome. Transcription always completes (success or
// definitive failure) before generation starts.
type pipelineService struct {
	quizRepo    repository.QuizRepository
	transcriber domain.TranscriptionService
	generator   domain.QuestionGenerator
	txManager   domain.TransactionManager
	locks       quizLocks
}

// NewPipelineService creates the pipeline orchestrator.
func NewPipelineService(
	quizRepo repository.QuizRepository,
	transcriber domain.TranscriptionService,
	generator domain.QuestionGenerator,
	txManager domain.TransactionManager,
) domain.PipelineService {
	return &pipelineService{
		quizRepo:    quizRepo,
		transcriber: transcriber,
		generator:   generator,
		txManager:   txManager,
	}
}

// GenerateQuiz runs the create-path pipeline: it fills in the generated
// title/description and inserts the initial question batch. On any stage
// failure the quiz row is deleted so no empty quiz stays queryable.
func (s *pipelineService) GenerateQuiz(ctx context.Context, quizID string) error {
	unlock := s.locks.lock(quizID)
	defer unlock()

	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return err
	}
	if quiz == nil {
		return domain.NewQuizNotFoundError(quizID)
	}

	if err := s.run(ctx, quiz, true); err != nil {
		logger.Get().Error("Create pipeline failed, deleting quiz",
			zap.String("quizID", quizID),
			zap.Error(err))
		if delErr := s.quizRepo.DeleteQuiz(ctx, quizID); delErr != nil {
			logger.Get().Error("Compensating quiz delete failed",
				zap.String("quizID", quizID),
				zap.Error(delErr))
		}
		return err
	}
	return nil
}

// RegenerateQuestions runs the update-path pipeline: it replaces the whole
// question batch against the quiz's current video URL and leaves
// title/description untouched. On failure the quiz keeps whatever state it
// already had; nothing is rolled back.
func (s *pipelineService) RegenerateQuestions(ctx context.Context, quizID string) error {
	unlock := s.locks.lock(quizID)
	defer unlock()

	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return err
	}
	if quiz == nil {
		return domain.NewQuizNotFoundError(quizID)
	}

	return s.run(ctx, quiz, false)
}

func (s *pipelineService) run(ctx context.Context, quiz *domain.Quiz, withContent bool) error {
	transcript, transcriptPath, err := s.transcriber.Transcribe(ctx, quiz.VideoURL)
	if err != nil {
		return err
	}

	payload, err := s.generator.Generate(ctx, transcript, transcriptPath)
	if err != nil {
		return err
	}

	questions := make([]domain.Question, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		questions = append(questions, domain.Question{
			QuizID:  quiz.ID,
			Title:   q.Title,
			Options: q.Options,
			Answer:  q.Answer,
		})
	}

	// Content update and batch replacement commit together so readers never
	// observe a half-replaced quiz.
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if withContent {
			if err := s.quizRepo.UpdateGeneratedContent(txCtx, quiz.ID, payload.Title, payload.Description); err != nil {
				return err
			}
		}
		return s.quizRepo.ReplaceQuestions(txCtx, quiz.ID, questions)
	})
}
