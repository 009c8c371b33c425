package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/leonardotrapani/scribebot/internal/audio"
	"github.com/leonardotrapani/scribebot/internal/logging"
)

// WhisperCppAdapter runs whisper-cli on a temporary WAV file per clip.
type WhisperCppAdapter struct {
	modelPath string
	language  string
	threads   int
	binary    string
}

// NewWhisperCppAdapter: threads <= 0 lets whisper-cli decide.
func NewWhisperCppAdapter(modelPath, lang string, threads int) *WhisperCppAdapter {
	return &WhisperCppAdapter{
		modelPath: modelPath,
		language:  lang,
		threads:   threads,
		binary:    "whisper-cli",
	}
}

// Check fails fatally when the model file or whisper-cli is missing.
func (a *WhisperCppAdapter) Check(ctx context.Context) error {
	if _, err := os.Stat(a.modelPath); err != nil {
		return NewFatalTranscriptionError("whisper-cpp", fmt.Errorf("model file not found: %s", a.modelPath))
	}
	if _, err := exec.LookPath(a.binary); err != nil {
		return NewFatalTranscriptionError("whisper-cpp", fmt.Errorf("%s not found: install whisper.cpp first", a.binary))
	}
	return nil
}

func (a *WhisperCppAdapter) Transcribe(ctx context.Context, clip audio.Buffer) (string, error) {
	if clip.Len() == 0 {
		return "", nil
	}
	if err := a.Check(ctx); err != nil {
		return "", err
	}

	wavData, err := audio.EncodeWAV(clip)
	if err != nil {
		return "", fmt.Errorf("convert to WAV: %w", err)
	}
	tmp, err := os.CreateTemp("", "scribebot-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(wavData); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	lang := a.language
	if lang == "" {
		lang = "auto"
	}
	args := []string{
		"-m", a.modelPath,
		"-l", lang,
		"-nt", // no timestamps
		"-np", // no progress
		"-f", tmp.Name(),
	}
	if a.threads > 0 {
		args = append(args, "-t", strconv.Itoa(a.threads))
	}

	cmd := exec.CommandContext(ctx, a.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	l := logging.WithComponent("transcriber")
	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		l.Warn().Err(err).Dur("elapsed", elapsed).Str("stderr", stderr.String()).Msg("whisper-cli failed")
		return "", fmt.Errorf("whisper-cli failed: %w", err)
	}

	text := strings.Join(strings.Fields(stdout.String()), " ")
	l.Debug().Str("adapter", "whisper-cpp").Dur("audio", clip.Duration()).Dur("elapsed", elapsed).
		Int("chars", len(text)).Msg("chunk transcribed")
	return text, nil
}
