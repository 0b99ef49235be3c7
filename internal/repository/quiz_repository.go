package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vidquiz/internal/domain"
	"vidquiz/internal/repository/models"
	"vidquiz/internal/util"

	"github.com/jmoiron/sqlx"
)

// QuizRepository defines the interface for quiz and question persistence.
// Question batches are only ever written whole: ReplaceQuestions deletes the
// existing batch and inserts the new one, and is expected to run inside a
// transaction so readers never observe a mixed batch.
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz *domain.Quiz) error
	GetQuizByID(ctx context.Context, quizID string) (*domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]*domain.Quiz, error)
	UpdateQuizMetadata(ctx context.Context, quiz *domain.Quiz) error
	UpdateGeneratedContent(ctx context.Context, quizID, title, description string) error
	DeleteQuiz(ctx context.Context, quizID string) error
	GetQuestionsByQuizID(ctx context.Context, quizID string) ([]domain.Question, error)
	ReplaceQuestions(ctx context.Context, quizID string, questions []domain.Question) error
}

type sqlxQuizRepository struct {
	db *sqlx.DB
}

// NewSQLXQuizRepository creates a new instance of sqlxQuizRepository.
func NewSQLXQuizRepository(db *sqlx.DB) QuizRepository {
	return &sqlxQuizRepository{db: db}
}

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	if m == nil {
		return nil
	}
	return &domain.Quiz{
		ID:          m.ID,
		CreatorID:   m.CreatorID,
		VideoURL:    m.VideoURL,
		Title:       m.Title.String,
		Description: m.Description.String,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toDomainQuestion(m *models.Question) domain.Question {
	return domain.Question{
		ID:        m.ID,
		QuizID:    m.QuizID,
		Title:     m.QuestionTitle,
		Options:   []string(m.Options),
		Answer:    m.Answer,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// CreateQuiz inserts a bare quiz row (creator + video URL, no generated
// content yet).
func (r *sqlxQuizRepository) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	query := `INSERT INTO quizzes (id, creator_id, video_url, title, description, created_at, updated_at)
	          VALUES (:id, :creator_id, :video_url, :title, :description, :created_at, :updated_at)`

	now := time.Now()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now

	m := &models.Quiz{
		ID:          quiz.ID,
		CreatorID:   quiz.CreatorID,
		VideoURL:    quiz.VideoURL,
		Title:       util.StringToNullString(quiz.Title),
		Description: util.StringToNullString(quiz.Description),
		CreatedAt:   quiz.CreatedAt,
		UpdatedAt:   quiz.UpdatedAt,
	}

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

// GetQuizByID retrieves a quiz with its question batch. Returns (nil, nil)
// when no quiz exists.
func (r *sqlxQuizRepository) GetQuizByID(ctx context.Context, quizID string) (*domain.Quiz, error) {
	executor := GetExecutor(ctx, r.db)

	query := `SELECT * FROM quizzes WHERE id = :id`
	stmt, err := executor.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare quiz query: %w", err)
	}
	defer stmt.Close()

	var m models.Quiz
	if err := stmt.GetContext(ctx, &m, map[string]interface{}{"id": quizID}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by id: %w", err)
	}

	quiz := toDomainQuiz(&m)
	questions, err := r.GetQuestionsByQuizID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	quiz.Questions = questions
	return quiz, nil
}

// ListQuizzes retrieves all quizzes with their question batches.
func (r *sqlxQuizRepository) ListQuizzes(ctx context.Context) ([]*domain.Quiz, error) {
	executor := GetExecutor(ctx, r.db)

	var rows []models.Quiz
	query := `SELECT * FROM quizzes ORDER BY created_at DESC`
	if err := executor.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	quizzes := make([]*domain.Quiz, 0, len(rows))
	for i := range rows {
		quiz := toDomainQuiz(&rows[i])
		questions, err := r.GetQuestionsByQuizID(ctx, quiz.ID)
		if err != nil {
			return nil, err
		}
		quiz.Questions = questions
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

// UpdateQuizMetadata persists title, description, and video URL edits made
// through the API. Generated-content updates go through
// UpdateGeneratedContent instead.
func (r *sqlxQuizRepository) UpdateQuizMetadata(ctx context.Context, quiz *domain.Quiz) error {
	quiz.UpdatedAt = time.Now()

	query := `UPDATE quizzes SET
	            title = :title,
	            description = :description,
	            video_url = :video_url,
	            updated_at = :updated_at
	          WHERE id = :id`

	m := &models.Quiz{
		ID:          quiz.ID,
		Title:       util.StringToNullString(quiz.Title),
		Description: util.StringToNullString(quiz.Description),
		VideoURL:    quiz.VideoURL,
		UpdatedAt:   quiz.UpdatedAt,
	}

	executor := GetExecutor(ctx, r.db)
	result, err := executor.NamedExecContext(ctx, query, m)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateGeneratedContent sets the title and description produced by the
// generation pipeline.
func (r *sqlxQuizRepository) UpdateGeneratedContent(ctx context.Context, quizID, title, description string) error {
	query := `UPDATE quizzes SET
	            title = :title,
	            description = :description,
	            updated_at = :updated_at
	          WHERE id = :id`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.NamedExecContext(ctx, query, map[string]interface{}{
		"id":          quizID,
		"title":       title,
		"description": description,
		"updated_at":  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to update generated content: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteQuiz hard-deletes a quiz and its question batch.
func (r *sqlxQuizRepository) DeleteQuiz(ctx context.Context, quizID string) error {
	executor := GetExecutor(ctx, r.db)

	if _, err := executor.NamedExecContext(ctx,
		`DELETE FROM questions WHERE quiz_id = :quiz_id`,
		map[string]interface{}{"quiz_id": quizID}); err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}

	if _, err := executor.NamedExecContext(ctx,
		`DELETE FROM quizzes WHERE id = :id`,
		map[string]interface{}{"id": quizID}); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	return nil
}

// GetQuestionsByQuizID retrieves the question batch for one quiz, oldest
// first so generation order is preserved.
func (r *sqlxQuizRepository) GetQuestionsByQuizID(ctx context.Context, quizID string) ([]domain.Question, error) {
	executor := GetExecutor(ctx, r.db)

	query := `SELECT * FROM questions WHERE quiz_id = :quiz_id ORDER BY created_at ASC, id ASC`
	stmt, err := executor.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare questions query: %w", err)
	}
	defer stmt.Close()

	var rows []models.Question
	if err := stmt.SelectContext(ctx, &rows, map[string]interface{}{"quiz_id": quizID}); err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	questions := make([]domain.Question, 0, len(rows))
	for i := range rows {
		questions = append(questions, toDomainQuestion(&rows[i]))
	}
	return questions, nil
}

// ReplaceQuestions removes the existing batch for the quiz and inserts the
// new one. Callers wrap this in TransactionManager.WithTransaction so the
// delete and the inserts commit together.
func (r *sqlxQuizRepository) ReplaceQuestions(ctx context.Context, quizID string, questions []domain.Question) error {
	executor := GetExecutor(ctx, r.db)

	if _, err := executor.NamedExecContext(ctx,
		`DELETE FROM questions WHERE quiz_id = :quiz_id`,
		map[string]interface{}{"quiz_id": quizID}); err != nil {
		return fmt.Errorf("failed to delete old questions: %w", err)
	}

	insert := `INSERT INTO questions (id, quiz_id, question_title, question_options, answer, created_at, updated_at)
	           VALUES (:id, :quiz_id, :question_title, :question_options, :answer, :created_at, :updated_at)`

	now := time.Now()
	for i := range questions {
		q := &questions[i]
		if q.ID == "" {
			q.ID = util.NewULID()
		}
		m := &models.Question{
			ID:            q.ID,
			QuizID:        quizID,
			QuestionTitle: q.Title,
			Options:       models.StringSlice(q.Options),
			Answer:        q.Answer,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if _, err := executor.NamedExecContext(ctx, insert, m); err != nil {
			return fmt.Errorf("failed to insert question: %w", err)
		}
	}
	return nil
}
