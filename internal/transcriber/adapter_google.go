package transcriber

import (
	"context"
	"fmt"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"

	"github.com/leonardotrapani/scribebot/internal/audio"
	"github.com/leonardotrapani/scribebot/internal/language"
	"github.com/leonardotrapani/scribebot/internal/logging"
)

// GoogleAdapter uses synchronous Cloud Speech recognition, one request per
// clip. Clips must stay under one minute.
type GoogleAdapter struct {
	client   *speech.Client
	model    string
	language string
}

// NewGoogleAdapter authenticates with cfg.CredentialsFile when set, falling
// back to application default credentials.
func NewGoogleAdapter(ctx context.Context, cfg Config, opts ...option.ClientOption) (*GoogleAdapter, error) {
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return &GoogleAdapter{
		client:   client,
		model:    cfg.Model,
		language: language.GoogleCode(cfg.Language),
	}, nil
}

func (a *GoogleAdapter) Transcribe(ctx context.Context, clip audio.Buffer) (string, error) {
	if clip.Len() == 0 {
		return "", nil
	}

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            int32(clip.SampleRate),
			AudioChannelCount:          1,
			LanguageCode:               a.language,
			Model:                      a.model,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: clip.PCM16()},
		},
	}

	l := logging.WithComponent("transcriber")
	start := time.Now()
	resp, err := a.client.Recognize(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		l.Warn().Err(err).Str("adapter", "google").Dur("elapsed", elapsed).Msg("recognize failed")
		return "", fmt.Errorf("google recognize: %w", err)
	}

	var parts []string
	for _, r := range resp.GetResults() {
		if alts := r.GetAlternatives(); len(alts) > 0 {
			if t := strings.TrimSpace(alts[0].GetTranscript()); t != "" {
				parts = append(parts, t)
			}
		}
	}
	text := strings.Join(parts, " ")
	l.Debug().Str("adapter", "google").Dur("audio", clip.Duration()).Dur("elapsed", elapsed).
		Int("chars", len(text)).Msg("chunk transcribed")
	return text, nil
}

func (a *GoogleAdapter) Close() error {
	return a.client.Close()
}
