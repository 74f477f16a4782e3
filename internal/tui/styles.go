package tui

import (
	"corkboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle     = theme.Title
	StatusBarStyle = theme.StatusBar
	HelpStyle      = theme.HelpHint

	// Pending writes indicator in the status bar
	SyncStyle = lipgloss.NewStyle().Foreground(theme.Warning)
)
