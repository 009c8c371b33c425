package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/leonardotrapani/scribebot/internal/audio"
	"github.com/leonardotrapani/scribebot/internal/models/whisper"
	"github.com/leonardotrapani/scribebot/internal/provider"
)

var missingStyle = cellStyle.Foreground(lipgloss.Color("#F59E0B"))

func modelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "List, download and remove transcription models",
	}

	var providerFilter string
	list := &cobra.Command{
		Use:   "list",
		Short: "Show every model scribebot can transcribe with",
		RunE: withModelStore(func(cmd *cobra.Command, models *whisper.Store, _ []string) error {
			return runModelList(cmd.OutOrStdout(), models, providerFilter)
		}),
	}
	list.Flags().StringVar(&providerFilter, "provider", "", "only show models of this provider")

	download := &cobra.Command{
		Use:   "download <model>",
		Short: "Fetch a whisper.cpp model file",
		Args:  cobra.ExactArgs(1),
		RunE: withModelStore(func(cmd *cobra.Command, models *whisper.Store, args []string) error {
			return runModelDownload(cmd.Context(), cmd.OutOrStdout(), models, args[0])
		}),
	}

	remove := &cobra.Command{
		Use:   "remove <model>",
		Short: "Delete a downloaded whisper.cpp model file",
		Args:  cobra.ExactArgs(1),
		RunE: withModelStore(func(cmd *cobra.Command, models *whisper.Store, args []string) error {
			return runModelRemove(cmd.OutOrStdout(), models, args[0])
		}),
	}

	cmd.AddCommand(list, download, remove)
	return cmd
}

func withModelStore(run func(*cobra.Command, *whisper.Store, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		models, err := whisper.NewStore("")
		if err != nil {
			return err
		}
		return run(cmd, models, args)
	}
}

func runModelList(w io.Writer, models *whisper.Store, providerFilter string) error {
	names := provider.ListProviders()
	if providerFilter != "" {
		p := provider.GetProvider(providerFilter)
		if p == nil {
			return fmt.Errorf("unknown provider %q", providerFilter)
		}
		names = []string{p.Name()}
	}

	var rows [][]string
	for _, name := range names {
		for _, m := range provider.GetProvider(name).Models() {
			rows = append(rows, modelRow(name, m, models))
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("PROVIDER", "MODEL", "STATE", "SIZE", "CHUNK", "LANGUAGES").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 2 && rows[row][2] == "not downloaded" {
				return missingStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
	return nil
}

func modelRow(providerName string, m provider.Model, models *whisper.Store) []string {
	state := "cloud"
	if m.Local {
		state = "not downloaded"
		if models.IsInstalled(m.ID) {
			state = "installed"
		}
	}

	size := "-"
	if m.LocalInfo != nil && m.LocalInfo.Size != "" {
		size = m.LocalInfo.Size
	}
	chunk := "-"
	if m.MaxAudio > 0 {
		chunk = audio.FormatDuration(m.MaxAudio)
	}

	langs := "any"
	switch n := len(m.SupportedLanguages); {
	case n > 0 && n <= 3:
		langs = strings.Join(m.SupportedLanguages, ",")
	case n > 3:
		langs = fmt.Sprintf("%d languages", n)
	}

	return []string{providerName, m.ID, state, size, chunk, langs}
}

func runModelDownload(ctx context.Context, w io.Writer, models *whisper.Store, id string) error {
	m, ok := provider.FindModel(provider.ProviderWhisperCpp, id)
	switch {
	case !ok && isCloudModel(id):
		fmt.Fprintf(w, "%s runs in the cloud, nothing to download\n", id)
		return nil
	case !ok:
		return fmt.Errorf("unknown model %q (see scribebot model list)", id)
	case models.IsInstalled(id):
		fmt.Fprintf(w, "%s already installed: %s\n", id, models.Path(id))
		return nil
	}

	fmt.Fprintf(w, "fetching %s", id)
	if m.LocalInfo != nil && m.LocalInfo.Size != "" {
		fmt.Fprintf(w, ", %s", m.LocalInfo.Size)
	}
	fmt.Fprintln(w)

	tenths := 0
	err := models.Download(ctx, id, func(done, total int64) {
		if total <= 0 {
			return
		}
		if n := int(done * 10 / total); n > tenths {
			tenths = n
			fmt.Fprintf(w, "%d%% ", n*10)
		}
	})
	if err != nil {
		return fmt.Errorf("download %s: %w", id, err)
	}
	fmt.Fprintf(w, "\nsaved to %s\n", models.Path(id))
	return nil
}

func runModelRemove(w io.Writer, models *whisper.Store, id string) error {
	if _, ok := provider.FindModel(provider.ProviderWhisperCpp, id); !ok {
		if isCloudModel(id) {
			fmt.Fprintf(w, "%s runs in the cloud, nothing to remove\n", id)
			return nil
		}
		return fmt.Errorf("unknown model %q", id)
	}
	if !models.IsInstalled(id) {
		return fmt.Errorf("%s is not downloaded", id)
	}
	if err := models.Remove(id); err != nil {
		return err
	}
	fmt.Fprintf(w, "removed %s\n", id)
	return nil
}

func isCloudModel(id string) bool {
	for _, name := range provider.ListProviders() {
		if provider.GetProvider(name).IsLocal() {
			continue
		}
		if _, ok := provider.FindModel(name, id); ok {
			return true
		}
	}
	return false
}
