package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vidquiz/internal/cache"
	"vidquiz/internal/domain"
	"vidquiz/internal/logger"
	"vidquiz/internal/util"

	"go.uber.org/zap"
)

const transcriptionCacheService = "transcription"

// transcriptionService implements domain.TranscriptionService. It memoizes
// transcripts by source URL through the cache port and owns the audio
// artifact for the whole stage: the audio file is removed on every path out
// of a cache miss.
type transcriptionService struct {
	cache         domain.Cache
	downloader    domain.AudioDownloader
	stt           domain.SpeechToText
	audioDir      string
	transcriptDir string
	cacheTTL      time.Duration
}

// NewTranscriptionService creates the transcription stage.
func NewTranscriptionService(
	cacheAdapter domain.Cache,
	downloader domain.AudioDownloader,
	stt domain.SpeechToText,
	audioDir string,
	transcriptDir string,
	cacheTTL time.Duration,
) domain.TranscriptionService {
	return &transcriptionService{
		cache:         cacheAdapter,
		downloader:    downloader,
		stt:           stt,
		audioDir:      audioDir,
		transcriptDir: transcriptDir,
		cacheTTL:      cacheTTL,
	}
}

// Transcribe returns the transcript for sourceURL. On a cache hit no
// download or transcription happens and the returned transcriptPath is
// empty; downstream cleanup must treat the artifact as optional.
func (s *transcriptionService) Transcribe(ctx context.Context, sourceURL string) (string, string, error) {
	appLogger := logger.Get()
	key := cache.GenerateCacheKey(transcriptionCacheService, "transcript", cache.HashIdentifier(sourceURL))

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		appLogger.Info("Transcript cache hit", zap.String("url", sourceURL))
		return cached, "", nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		// The cache is an optimization; a broken cache must not fail the stage.
		appLogger.Warn("Transcript cache lookup failed", zap.Error(err), zap.String("url", sourceURL))
	}

	audioPath, err := s.downloader.FetchAudio(ctx, sourceURL, s.audioDir)
	if err != nil {
		return "", "", domain.NewTranscriptionFailedError(err)
	}
	// The audio artifact is scratch space scoped to this invocation; release
	// it no matter how the rest of the stage goes.
	defer removeArtifact(audioPath)

	text, err := s.stt.Transcribe(ctx, audioPath)
	if err != nil {
		return "", "", domain.NewTranscriptionFailedError(err)
	}

	transcriptPath, err := s.writeTranscript(text)
	if err != nil {
		return "", "", domain.NewTranscriptionFailedError(err)
	}

	if err := s.cache.Set(ctx, key, text, s.cacheTTL); err != nil {
		appLogger.Warn("Failed to cache transcript", zap.Error(err), zap.String("url", sourceURL))
	}

	appLogger.Info("Transcription complete",
		zap.String("url", sourceURL),
		zap.String("transcript", transcriptPath),
		zap.Int("chars", len(text)))

	return text, transcriptPath, nil
}

// writeTranscript persists the transcript text to a durable artifact. The
// name carries a ULID so concurrent runs never share an artifact.
func (s *transcriptionService) writeTranscript(text string) (string, error) {
	if err := os.MkdirAll(s.transcriptDir, 0o755); err != nil {
		return "", fmt.Errorf("create transcript dir: %w", err)
	}
	path := filepath.Join(s.transcriptDir, fmt.Sprintf("transcript_%s.txt", util.NewULID()))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}

// removeArtifact deletes a scratch file. A missing file is a no-op; any
// other failure is logged and swallowed, never surfaced to callers.
func removeArtifact(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Get().Warn("Failed to remove artifact", zap.String("path", path), zap.Error(err))
	}
}
