package stt

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"vidquiz/internal/domain"
	"vidquiz/internal/logger"

	"go.uber.org/zap"
)

// WhisperTranscriber implements domain.SpeechToText by invoking a
// whisper.cpp style CLI on a local audio file and capturing the plain-text
// output. The model size/path is a configuration option.
type WhisperTranscriber struct {
	command string
	model   string
	timeout time.Duration
}

func NewWhisperTranscriber(command, model string, timeout time.Duration) domain.SpeechToText {
	if command == "" {
		command = "whisper-cli"
	}
	return &WhisperTranscriber{command: command, model: model, timeout: timeout}
}

// Transcribe runs the speech model over audioPath and returns the text.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	args := []string{
		"-m", t.model,
		"-f", audioPath,
		"--no-timestamps",
		"--no-prints",
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Get().Debug("Running speech-to-text",
		zap.String("command", t.command),
		zap.String("model", t.model),
		zap.String("audio", audioPath))

	if err := cmd.Run(); err != nil {
		return "", domain.NewTranscriptionFailedError(
			fmt.Errorf("%s failed: %w: %s", t.command, err, strings.TrimSpace(stderr.String())))
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", domain.NewTranscriptionFailedError(fmt.Errorf("%s produced empty transcript", t.command))
	}
	return text, nil
}
