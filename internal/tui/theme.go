package tui

import (
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Telegram blue with a teal accent.
var (
	ColorPrimary   = lipgloss.Color("#229ED9")
	ColorSecondary = lipgloss.Color("#2DD4BF")
	ColorSuccess   = lipgloss.Color("#22C55E")
	ColorError     = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorText      = lipgloss.Color("#F8FAFC")
	ColorMuted     = lipgloss.Color("#94A3B8")
	ColorSubtle    = lipgloss.Color("#64748B")
)

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

var (
	StyleHeader  = fg(ColorPrimary).Bold(true).MarginBottom(1)
	StyleLabel   = fg(ColorText).Bold(true)
	StyleSuccess = fg(ColorSuccess)
	StyleError   = fg(ColorError).Bold(true)
	StyleWarning = fg(ColorWarning)
	StyleMuted   = fg(ColorMuted)
)

const logoASCII = `
               _ _          _           _
 ___  ___ _ __(_) |__   ___| |__   ___ | |_
/ __|/ __| '__| | '_ \ / _ \ '_ \ / _ \| __|
\__ \ (__| |  | | |_) |  __/ |_) | (_) | |_
|___/\___|_|  |_|_.__/ \___|_.__/ \___/ \__|`

func LogoLines() []string {
	return strings.Split(strings.Trim(logoASCII, "\n"), "\n")
}

// Logo renders the banner shown above the wizard.
func Logo() string {
	return StyleHeader.Render(strings.Join(LogoLines(), "\n"))
}

// getTheme is the huh form theme used by every wizard screen.
func getTheme() *huh.Theme {
	t := huh.ThemeBase()
	t.Focused.Base = lipgloss.NewStyle().BorderForeground(ColorPrimary)
	t.Focused.Title = fg(ColorPrimary).Bold(true)
	t.Focused.Description = fg(ColorMuted)
	t.Focused.SelectedOption = fg(ColorSecondary)
	t.Focused.UnselectedOption = fg(ColorText)
	t.Focused.ErrorMessage = StyleError
	t.Blurred.Title = fg(ColorMuted)
	t.Blurred.Description = fg(ColorSubtle)
	return t
}
