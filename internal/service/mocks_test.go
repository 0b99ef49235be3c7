package service

import (
	"context"
	"time"

	"vidquiz/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockQuizRepository mocks repository.QuizRepository.
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetQuizByID(ctx context.Context, quizID string) (*domain.Quiz, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) ListQuizzes(ctx context.Context) ([]*domain.Quiz, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) UpdateQuizMetadata(ctx context.Context, quiz *domain.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) UpdateGeneratedContent(ctx context.Context, quizID, title, description string) error {
	args := m.Called(ctx, quizID, title, description)
	return args.Error(0)
}

func (m *MockQuizRepository) DeleteQuiz(ctx context.Context, quizID string) error {
	args := m.Called(ctx, quizID)
	return args.Error(0)
}

func (m *MockQuizRepository) GetQuestionsByQuizID(ctx context.Context, quizID string) ([]domain.Question, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Question), args.Error(1)
}

func (m *MockQuizRepository) ReplaceQuestions(ctx context.Context, quizID string, questions []domain.Question) error {
	args := m.Called(ctx, quizID, questions)
	return args.Error(0)
}

// MockCache mocks domain.Cache.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockAudioDownloader mocks domain.AudioDownloader.
type MockAudioDownloader struct {
	mock.Mock
}

func (m *MockAudioDownloader) FetchAudio(ctx context.Context, sourceURL, destDir string) (string, error) {
	args := m.Called(ctx, sourceURL, destDir)
	return args.String(0), args.Error(1)
}

// MockSpeechToText mocks domain.SpeechToText.
type MockSpeechToText struct {
	mock.Mock
}

func (m *MockSpeechToText) Transcribe(ctx context.Context, audioPath string) (string, error) {
	args := m.Called(ctx, audioPath)
	return args.String(0), args.Error(1)
}

// MockTextGenerator mocks domain.TextGenerator.
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockTranscriptionService mocks domain.TranscriptionService.
type MockTranscriptionService struct {
	mock.Mock
}

func (m *MockTranscriptionService) Transcribe(ctx context.Context, sourceURL string) (string, string, error) {
	args := m.Called(ctx, sourceURL)
	return args.String(0), args.String(1), args.Error(2)
}

// MockQuestionGenerator mocks domain.QuestionGenerator.
type MockQuestionGenerator struct {
	mock.Mock
}

func (m *MockQuestionGenerator) Generate(ctx context.Context, transcript, transcriptPath string) (*domain.QuizPayload, error) {
	args := m.Called(ctx, transcript, transcriptPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizPayload), args.Error(1)
}

// MockTransactionManager mocks domain.TransactionManager by invoking fn
// directly with the given context.
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// MockPipelineRunner mocks domain.PipelineRunner.
type MockPipelineRunner struct {
	mock.Mock
	async bool
}

func (m *MockPipelineRunner) RunGenerate(ctx context.Context, quizID string) error {
	args := m.Called(ctx, quizID)
	return args.Error(0)
}

func (m *MockPipelineRunner) RunRegenerate(ctx context.Context, quizID string) error {
	args := m.Called(ctx, quizID)
	return args.Error(0)
}

func (m *MockPipelineRunner) Async() bool {
	return m.async
}

// MockPipelineService mocks domain.PipelineService.
type MockPipelineService struct {
	mock.Mock
}

func (m *MockPipelineService) GenerateQuiz(ctx context.Context, quizID string) error {
	args := m.Called(ctx, quizID)
	return args.Error(0)
}

func (m *MockPipelineService) RegenerateQuestions(ctx context.Context, quizID string) error {
	args := m.Called(ctx, quizID)
	return args.Error(0)
}

// MockUserRepository mocks repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
