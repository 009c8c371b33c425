package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/leonardotrapani/scribebot/internal/audio"
	"github.com/leonardotrapani/scribebot/internal/logging"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io"

// ElevenLabsAdapter uploads each clip to the Scribe speech-to-text API.
type ElevenLabsAdapter struct {
	client  *http.Client
	config  Config
	baseURL string
}

type elevenLabsResponse struct {
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
}

// NewElevenLabsAdapter uses baseURL when non-empty, api.elevenlabs.io otherwise.
func NewElevenLabsAdapter(config Config, baseURL string) *ElevenLabsAdapter {
	return &ElevenLabsAdapter{client: &http.Client{}, config: config, baseURL: baseURL}
}

func (a *ElevenLabsAdapter) form(wavData []byte) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(wavData); err != nil {
		return nil, "", err
	}
	fields := [][2]string{{"model_id", a.config.Model}, {"tag_audio_events", "false"}}
	if a.config.Language != "" {
		fields = append(fields, [2]string{"language_code", a.config.Language})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &body, w.FormDataContentType(), nil
}

func (a *ElevenLabsAdapter) Transcribe(ctx context.Context, clip audio.Buffer) (string, error) {
	if clip.Len() == 0 {
		return "", nil
	}
	wavData, err := audio.EncodeWAV(clip)
	if err != nil {
		return "", fmt.Errorf("convert to WAV: %w", err)
	}
	body, contentType, err := a.form(wavData)
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}

	url := endpointURL(a.baseURL, elevenLabsBaseURL, "/v1/speech-to-text")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("xi-api-key", a.config.APIKey)

	l := logging.WithComponent("transcriber")
	var resp elevenLabsResponse
	elapsed, err := sendJSON(a.client, req, &resp)
	if err != nil {
		l.Warn().Err(err).Str("adapter", "elevenlabs").Dur("elapsed", elapsed).Msg("transcription request failed")
		return "", fmt.Errorf("elevenlabs transcription: %w", err)
	}

	l.Debug().Str("adapter", "elevenlabs").Dur("audio", clip.Duration()).Dur("elapsed", elapsed).
		Str("detected", resp.LanguageCode).Int("chars", len(resp.Text)).Msg("chunk transcribed")
	return resp.Text, nil
}
