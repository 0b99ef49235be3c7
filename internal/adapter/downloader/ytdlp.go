package downloader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"vidquiz/internal/domain"
	"vidquiz/internal/logger"

	"go.uber.org/zap"
)

// YTDLPDownloader implements domain.AudioDownloader by shelling out to a
// yt-dlp style binary. The audio is extracted to m4a and saved as
// {destDir}/{providerID}.m4a.
type YTDLPDownloader struct {
	command string
	timeout time.Duration
}

func NewYTDLPDownloader(command string, timeout time.Duration) domain.AudioDownloader {
	if command == "" {
		command = "yt-dlp"
	}
	return &YTDLPDownloader{command: command, timeout: timeout}
}

// FetchAudio downloads the best available audio for sourceURL into destDir
// and returns the local path. yt-dlp prints the final file path after
// post-processing, which is what we hand back.
func (d *YTDLPDownloader) FetchAudio(ctx context.Context, sourceURL, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", domain.NewDownloadFailedError(fmt.Errorf("create audio dir: %w", err))
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	args := []string{
		"--no-playlist",
		"-f", "m4a/bestaudio/best",
		"-x", "--audio-format", "m4a",
		"-o", filepath.Join(destDir, "%(id)s.%(ext)s"),
		"--no-simulate",
		"--print", "after_move:filepath",
		sourceURL,
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Get().Debug("Running audio downloader",
		zap.String("command", d.command),
		zap.String("url", sourceURL))

	if err := cmd.Run(); err != nil {
		return "", domain.NewDownloadFailedError(
			fmt.Errorf("%s failed: %w: %s", d.command, err, strings.TrimSpace(stderr.String())))
	}

	// The printed filepath is the last non-empty stdout line.
	var audioPath string
	for _, line := range strings.Split(stdout.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			audioPath = line
		}
	}
	if audioPath == "" {
		return "", domain.NewDownloadFailedError(fmt.Errorf("%s produced no output path", d.command))
	}

	return audioPath, nil
}
