package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/leonardotrapani/scribebot/internal/audio"
	"github.com/leonardotrapani/scribebot/internal/logging"
)

const deepgramBaseURL = "https://api.deepgram.com"

// DeepgramAdapter posts each clip as a WAV body to the pre-recorded
// /v1/listen endpoint.
type DeepgramAdapter struct {
	client  *http.Client
	config  Config
	baseURL string
}

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			DetectedLanguage string `json:"detected_language"`
			Alternatives     []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// NewDeepgramAdapter uses baseURL when non-empty, api.deepgram.com otherwise.
func NewDeepgramAdapter(config Config, baseURL string) *DeepgramAdapter {
	return &DeepgramAdapter{client: &http.Client{}, config: config, baseURL: baseURL}
}

func (a *DeepgramAdapter) listenURL() string {
	q := url.Values{}
	q.Set("model", a.config.Model)
	q.Set("smart_format", "true")
	q.Set("punctuate", "true")
	if lang := deepgramLanguage(a.config.Language); lang != "" {
		q.Set("language", lang)
	} else {
		q.Set("detect_language", "true")
	}
	return endpointURL(a.baseURL, deepgramBaseURL, "/v1/listen") + "?" + q.Encode()
}

// deepgramLanguage maps English to the regional tag Deepgram's English models
// are trained on.
func deepgramLanguage(code string) string {
	if strings.EqualFold(code, "en") {
		return "en-US"
	}
	return code
}

func (a *DeepgramAdapter) Transcribe(ctx context.Context, clip audio.Buffer) (string, error) {
	if clip.Len() == 0 {
		return "", nil
	}
	wavData, err := audio.EncodeWAV(clip)
	if err != nil {
		return "", fmt.Errorf("convert to WAV: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.listenURL(), bytes.NewReader(wavData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+a.config.APIKey)
	req.Header.Set("Content-Type", "audio/wav")

	l := logging.WithComponent("transcriber")
	var resp deepgramResponse
	elapsed, err := sendJSON(a.client, req, &resp)
	if err != nil {
		l.Warn().Err(err).Str("adapter", "deepgram").Dur("elapsed", elapsed).Msg("transcription request failed")
		return "", fmt.Errorf("deepgram transcription: %w", err)
	}

	var text, detected string
	if ch := resp.Results.Channels; len(ch) > 0 {
		detected = ch[0].DetectedLanguage
		if len(ch[0].Alternatives) > 0 {
			text = ch[0].Alternatives[0].Transcript
		}
	}
	l.Debug().Str("adapter", "deepgram").Dur("audio", clip.Duration()).Dur("elapsed", elapsed).
		Str("detected", detected).Int("chars", len(text)).Msg("chunk transcribed")
	return text, nil
}
