package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leonardotrapani/scribebot/internal/audio"
	"github.com/leonardotrapani/scribebot/internal/chat"
	"github.com/leonardotrapani/scribebot/internal/config"
	"github.com/leonardotrapani/scribebot/internal/daemon"
	"github.com/leonardotrapani/scribebot/internal/deps"
	"github.com/leonardotrapani/scribebot/internal/logging"
	"github.com/leonardotrapani/scribebot/internal/notify"
	"github.com/leonardotrapani/scribebot/internal/pipeline"
	"github.com/leonardotrapani/scribebot/internal/store"
)

func transcribeCmd() *cobra.Command {
	var (
		verbose   bool
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Transcribe a local audio file with the configured model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logCfg := cfg.ToLoggingConfig()
			if !verbose {
				logCfg.Level = "warn"
			}
			logging.Init(logCfg)

			if err := deps.Verify(deps.Required(cfg.Transcription.Provider, cfg.Audio.FFmpegPath)); err != nil {
				return err
			}

			ctx := cmd.Context()
			gate, err := daemon.NewGate(ctx, cfg)
			if err != nil {
				return err
			}
			defer gate.Close()

			var opts []pipeline.Option
			if cfg.Storage.Enabled && !noHistory {
				st, err := store.Open(cfg.Storage.Path)
				if err != nil {
					return err
				}
				defer st.Close()
				opts = append(opts, pipeline.WithRecorder(st))
			}

			p := pipeline.New(config.NewStaticManager(cfg), audio.NewFFmpegDecoder(cfg.Audio.FFmpegPath), gate, opts...)
			tr, err := transcribeFile(ctx, p, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s of audio in %d chunks, took %s\n",
					audio.FormatDuration(tr.AudioDuration), tr.Chunks, audio.FormatDuration(tr.Elapsed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every step and print timing")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record this run in the history database")
	return cmd
}

// transcribeFile runs path through p, printing the transcript to out and a
// progress bar to progress.
func transcribeFile(ctx context.Context, p *pipeline.Pipeline, path string, out, progress io.Writer) (*pipeline.Transcript, error) {
	return p.Run(ctx, pipeline.Request{
		Sender:   "cli",
		Kind:     chat.KindAudio,
		Source:   fileSource{path: path},
		Output:   &writerOutput{w: out},
		Progress: notify.Terminal{Out: progress},
	})
}

type fileSource struct {
	path string
}

func (s fileSource) Fetch(context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return data, nil
}

// writerOutput prints pieces separated by a blank line.
type writerOutput struct {
	w       io.Writer
	written int
}

func (o *writerOutput) Deliver(_ context.Context, text string) error {
	if o.written > 0 {
		if _, err := io.WriteString(o.w, "\n"); err != nil {
			return err
		}
	}
	o.written++
	_, err := fmt.Fprintln(o.w, text)
	return err
}
