package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/leonardotrapani/scribebot/internal/audio"
	"github.com/leonardotrapani/scribebot/internal/store"
)

const previewWidth = 60

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#229ED9")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	failedStyle = cellStyle.Foreground(lipgloss.Color("#EF4444"))
)

func historyCmd() *cobra.Command {
	var (
		limit  int
		chatID int64
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent transcriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Storage.Enabled {
				return fmt.Errorf("history is disabled (storage.enabled = false)")
			}

			st, err := store.Open(cfg.Storage.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			var records []store.Record
			if cmd.Flags().Changed("chat") {
				records, err = st.ByChat(cmd.Context(), chatID, limit)
			} else {
				records, err = st.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			printHistory(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of transcriptions to show")
	cmd.Flags().Int64Var(&chatID, "chat", 0, "only show this chat")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func printHistory(w io.Writer, records []store.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no transcriptions yet")
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("WHEN", "CHAT", "FROM", "STATUS", "AUDIO", "TEXT").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 3 && records[row].Status != "delivered" {
				return failedStyle
			}
			return cellStyle
		})
	for _, r := range records {
		t.Row(historyRow(r)...)
	}
	fmt.Fprintln(w, t.Render())
}

func historyRow(r store.Record) []string {
	text := r.Text
	if r.Error != "" {
		text = r.Error
	}
	return []string{
		r.CreatedAt.Local().Format("2006-01-02 15:04"),
		strconv.FormatInt(r.ChatID, 10),
		r.Sender,
		r.Status,
		audio.FormatDuration(r.AudioDuration),
		preview(text, previewWidth),
	}
}

// preview flattens s to one line of at most width runes.
func preview(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
