package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vidquiz/internal/domain"
	"vidquiz/internal/logger"
	"vidquiz/internal/util"

	"go.uber.org/zap"
)

// quizPromptTemplate instructs the model to emit exactly one JSON object.
// The structure is what ParseModelOutput decodes into domain.QuizPayload.
const quizPromptTemplate = `
Based on the following transcript, generate a quiz in valid JSON format.

The quiz must follow this exact structure:

{
  "title": "Create a concise quiz title based on the topic of the transcript.",
  "description": "Summarize the transcript in no more than 150 characters. Do not include any quiz questions or answers.",
  "questions": [
    {
      "question_title": "The question goes here.",
      "question_options": ["Option A", "Option B", "Option C", "Option D"],
      "answer": "The correct answer from the above options"
    },
    ...
    (exactly 10 questions)
  ]
}

Requirements:
- Each question must have exactly 4 distinct answer options.
- Only one correct answer is allowed per question, and it must be present in 'question_options'.
- The output must be valid JSON and parsable as-is.
- Do not include explanations, comments, or any text outside the JSON.

Transcript:
%s
`

// questionGenerator implements domain.QuestionGenerator. It persists the
// rendered prompt before calling the model so failed runs can be replayed,
// and removes both the prompt and the handed-over transcript artifact when
// it is done with them.
type questionGenerator struct {
	generator domain.TextGenerator
	promptDir string
}

// NewQuestionGenerator creates the generation stage.
func NewQuestionGenerator(generator domain.TextGenerator, promptDir string) domain.QuestionGenerator {
	return &questionGenerator{
		generator: generator,
		promptDir: promptDir,
	}
}

// Generate builds the prompt from the transcript, submits it to the text
// model, and decodes the structured quiz payload. transcriptPath may be
// empty when the transcript came from the cache. The payload is stored
// verbatim downstream; no semantic validation of options or answers
// happens here.
func (g *questionGenerator) Generate(ctx context.Context, transcript, transcriptPath string) (*domain.QuizPayload, error) {
	prompt := fmt.Sprintf(quizPromptTemplate, transcript)

	promptPath, err := g.writePrompt(prompt)
	if err != nil {
		removeArtifact(transcriptPath)
		return nil, domain.NewGenerationFailedError(err)
	}

	rawOutput, err := g.generator.Complete(ctx, prompt)
	if err != nil {
		g.cleanup(transcriptPath, promptPath)
		return nil, domain.NewGenerationFailedError(err)
	}

	payload, err := ParseModelOutput(rawOutput)
	if err != nil {
		g.cleanup(transcriptPath, promptPath)
		return nil, err
	}

	g.cleanup(transcriptPath, promptPath)

	logger.Get().Info("Quiz payload generated",
		zap.String("title", payload.Title),
		zap.Int("questions", len(payload.Questions)))

	return payload, nil
}

// ParseModelOutput strips an optional markdown code fence from the raw
// model output and decodes the remaining JSON. Parsing is idempotent under
// fence wrapping: wrapped and bare payloads decode identically.
func ParseModelOutput(rawOutput string) (*domain.QuizPayload, error) {
	cleaned := strings.TrimSpace(rawOutput)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload domain.QuizPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, domain.NewMalformedModelOutputError(err)
	}
	return &payload, nil
}

func (g *questionGenerator) writePrompt(prompt string) (string, error) {
	if err := os.MkdirAll(g.promptDir, 0o755); err != nil {
		return "", fmt.Errorf("create prompt dir: %w", err)
	}
	path := filepath.Join(g.promptDir, fmt.Sprintf("prompt_%s.txt", util.NewULID()))
	if err := os.WriteFile(path, []byte(prompt), 0o644); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	return path, nil
}

// cleanup removes whichever stage artifacts exist. Deletion is idempotent:
// an already-absent file is not an error, and unlink failures are only
// logged.
func (g *questionGenerator) cleanup(transcriptPath, promptPath string) {
	removeArtifact(transcriptPath)
	removeArtifact(promptPath)
}
