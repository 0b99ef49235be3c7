package dto

import (
	"time"

	"vidquiz/internal/domain"
)

type CreateQuizRequest struct {
	URL string `json:"url"`
}

// UpdateQuizRequest is the PUT body: the URL is required and the question
// batch is regenerated against it on every call. Unlike creation, updates
// use the video_url key.
type UpdateQuizRequest struct {
	VideoURL    string `json:"video_url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PatchQuizRequest is the PATCH body. Pointer fields distinguish "absent"
// from "present but empty"; sending video_url at all triggers regeneration.
type PatchQuizRequest struct {
	VideoURL    *string `json:"video_url"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type QuestionResponse struct {
	ID      string   `json:"id"`
	Title   string   `json:"question_title"`
	Options []string `json:"question_options"`
	Answer  string   `json:"answer"`
}

type QuizResponse struct {
	ID          string             `json:"id"`
	CreatorID   string             `json:"creator_id"`
	VideoURL    string             `json:"video_url"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Questions   []QuestionResponse `json:"questions"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// NewQuizResponse maps a domain quiz onto the wire shape. Questions is
// always a JSON array, never null.
func NewQuizResponse(quiz *domain.Quiz) QuizResponse {
	questions := make([]QuestionResponse, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, QuestionResponse{
			ID:      q.ID,
			Title:   q.Title,
			Options: q.Options,
			Answer:  q.Answer,
		})
	}
	return QuizResponse{
		ID:          quiz.ID,
		CreatorID:   quiz.CreatorID,
		VideoURL:    quiz.VideoURL,
		Title:       quiz.Title,
		Description: quiz.Description,
		Questions:   questions,
		CreatedAt:   quiz.CreatedAt,
		UpdatedAt:   quiz.UpdatedAt,
	}
}

// NewQuizListResponse maps a list of quizzes.
func NewQuizListResponse(quizzes []*domain.Quiz) []QuizResponse {
	out := make([]QuizResponse, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, NewQuizResponse(q))
	}
	return out
}

// NewUserResponse maps a domain user onto the wire shape.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}
}
