package domain

import "time"

// Quiz represents a generated quiz tied to one source video URL.
// Title and Description stay empty until a generation pass succeeds.
type Quiz struct {
	ID          string
	CreatorID   string
	VideoURL    string
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Questions   []Question
}

// Question is one multiple-choice item belonging to exactly one Quiz.
// Questions are generated and replaced as a whole batch per pipeline run.
type Question struct {
	ID        string
	QuizID    string
	Title     string
	Options   []string
	Answer    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QuizPayload is the structured output of the generation stage. Field names
// mirror the JSON keys the model is instructed to emit. The payload is
// model-controlled text and is stored verbatim; no semantic validation of
// options or answers happens here.
type QuizPayload struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Questions   []QuestionPayload `json:"questions"`
}

type QuestionPayload struct {
	Title   string   `json:"question_title"`
	Options []string `json:"question_options"`
	Answer  string   `json:"answer"`
}
