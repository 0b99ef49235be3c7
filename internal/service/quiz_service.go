package service

import (
	"context"

	"vidquiz/internal/domain"
	"vidquiz/internal/logger"
	"vidquiz/internal/repository"
	"vidquiz/internal/util"

	"go.uber.org/zap"
)

// UpdateQuizInput carries a full metadata replacement (PUT semantics).
type UpdateQuizInput struct {
	VideoURL    string
	Title       string
	Description string
}

// PatchQuizInput carries a partial update. A nil field means the caller did
// not send it; a non-nil field is applied even when it points at the same
// value the quiz already has.
type PatchQuizInput struct {
	VideoURL    *string
	Title       *string
	Description *string
}

// QuizService is the API-facing quiz workflow: ownership checks, metadata
// writes, and pipeline triggering.
type QuizService interface {
	CreateQuiz(ctx context.Context, creatorID, videoURL string) (*domain.Quiz, error)
	GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]*domain.Quiz, error)
	UpdateQuiz(ctx context.Context, userID, quizID string, input UpdateQuizInput) (*domain.Quiz, error)
	PatchQuiz(ctx context.Context, userID, quizID string, input PatchQuizInput) (*domain.Quiz, error)
	DeleteQuiz(ctx context.Context, userID, quizID string) error
	// AsyncMode reports whether pipeline runs complete after the API call
	// returns; handlers use it to pick between 201 and 202.
	AsyncMode() bool
}

type quizService struct {
	quizRepo repository.QuizRepository
	runner   domain.PipelineRunner
}

// NewQuizService creates the quiz workflow service.
func NewQuizService(quizRepo repository.QuizRepository, runner domain.PipelineRunner) QuizService {
	return &quizService{
		quizRepo: quizRepo,
		runner:   runner,
	}
}

func (s *quizService) AsyncMode() bool {
	return s.runner.Async()
}

// CreateQuiz persists a bare quiz row and triggers the create pipeline. In
// sync mode the returned quiz carries the generated content; in queued mode
// it is the bare row and content appears once a worker finishes.
func (s *quizService) CreateQuiz(ctx context.Context, creatorID, videoURL string) (*domain.Quiz, error) {
	quiz := &domain.Quiz{
		ID:        util.NewULID(),
		CreatorID: creatorID,
		VideoURL:  videoURL,
	}
	if err := s.quizRepo.CreateQuiz(ctx, quiz); err != nil {
		return nil, err
	}

	logger.Get().Info("Quiz created",
		zap.String("quizID", quiz.ID),
		zap.String("creatorID", creatorID))

	// A failed trigger leaves no pipeline run behind to compensate, so the
	// bare row is removed here. The sync path deletes inside the pipeline;
	// both deletes are idempotent.
	if err := s.runner.RunGenerate(ctx, quiz.ID); err != nil {
		if delErr := s.quizRepo.DeleteQuiz(ctx, quiz.ID); delErr != nil {
			logger.Get().Error("Failed to delete quiz after trigger failure",
				zap.String("quizID", quiz.ID),
				zap.Error(delErr))
		}
		return nil, err
	}

	if s.runner.Async() {
		return quiz, nil
	}
	return s.mustReload(ctx, quiz.ID)
}

func (s *quizService) GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	return quiz, nil
}

func (s *quizService) ListQuizzes(ctx context.Context) ([]*domain.Quiz, error) {
	return s.quizRepo.ListQuizzes(ctx)
}

// UpdateQuiz replaces the quiz metadata and always regenerates the question
// batch against the (possibly unchanged) video URL. Only the creator may
// update.
func (s *quizService) UpdateQuiz(ctx context.Context, userID, quizID string, input UpdateQuizInput) (*domain.Quiz, error) {
	quiz, err := s.loadOwned(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}

	quiz.VideoURL = input.VideoURL
	quiz.Title = input.Title
	quiz.Description = input.Description
	if err := s.quizRepo.UpdateQuizMetadata(ctx, quiz); err != nil {
		return nil, err
	}

	if err := s.runner.RunRegenerate(ctx, quiz.ID); err != nil {
		return nil, err
	}

	if s.runner.Async() {
		return quiz, nil
	}
	return s.mustReload(ctx, quiz.ID)
}

// PatchQuiz applies the fields the caller sent. Sending video_url triggers
// regeneration even when the value matches the stored URL; omitting it makes
// the patch a pure metadata edit.
func (s *quizService) PatchQuiz(ctx context.Context, userID, quizID string, input PatchQuizInput) (*domain.Quiz, error) {
	quiz, err := s.loadOwned(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}

	if input.VideoURL != nil {
		quiz.VideoURL = *input.VideoURL
	}
	if input.Title != nil {
		quiz.Title = *input.Title
	}
	if input.Description != nil {
		quiz.Description = *input.Description
	}
	if err := s.quizRepo.UpdateQuizMetadata(ctx, quiz); err != nil {
		return nil, err
	}

	if input.VideoURL == nil {
		return quiz, nil
	}

	if err := s.runner.RunRegenerate(ctx, quiz.ID); err != nil {
		return nil, err
	}

	if s.runner.Async() {
		return quiz, nil
	}
	return s.mustReload(ctx, quiz.ID)
}

// DeleteQuiz removes a quiz and its questions. Only the creator may delete.
func (s *quizService) DeleteQuiz(ctx context.Context, userID, quizID string) error {
	if _, err := s.loadOwned(ctx, userID, quizID); err != nil {
		return err
	}
	if err := s.quizRepo.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	logger.Get().Info("Quiz deleted", zap.String("quizID", quizID), zap.String("userID", userID))
	return nil
}

func (s *quizService) loadOwned(ctx context.Context, userID, quizID string) (*domain.Quiz, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	if quiz.CreatorID != userID {
		return nil, domain.NewPermissionDeniedError("only the quiz creator may modify this quiz")
	}
	return quiz, nil
}

func (s *quizService) mustReload(ctx context.Context, quizID string) (*domain.Quiz, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	return quiz, nil
}
