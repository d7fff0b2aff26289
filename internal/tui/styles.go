// Package tui implements the Bubble Tea interface for working through a
// checklist interactively.
package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/colonyops/checkup/internal/core/checklist"
	"github.com/colonyops/checkup/internal/core/styles"
)

// styleSet holds the rendered styles for the active theme.
type styleSet struct {
	title     lipgloss.Style
	header    lipgloss.Style
	cursor    lipgloss.Style
	completed lipgloss.Style
	filter    lipgloss.Style
	err       lipgloss.Style
	remote    lipgloss.Style
	help      lipgloss.Style

	priorities map[checklist.Priority]lipgloss.Style
}

func newStyleSet(p styles.Palette) styleSet {
	return styleSet{
		title:     lipgloss.NewStyle().Bold(true).Foreground(p.Foreground),
		header:    lipgloss.NewStyle().Foreground(p.Muted),
		cursor:    lipgloss.NewStyle().Foreground(p.Primary),
		completed: lipgloss.NewStyle().Foreground(p.Muted).Strikethrough(true),
		filter:    lipgloss.NewStyle().Foreground(p.Warning),
		err:       lipgloss.NewStyle().Foreground(p.Error),
		remote:    lipgloss.NewStyle().Foreground(p.Secondary),
		help:      lipgloss.NewStyle().Foreground(p.Muted),
		priorities: map[checklist.Priority]lipgloss.Style{
			checklist.PriorityCritical: lipgloss.NewStyle().Foreground(p.Error).Bold(true),
			checklist.PriorityHigh:     lipgloss.NewStyle().Foreground(p.Warning),
			checklist.PriorityMedium:   lipgloss.NewStyle().Foreground(p.Secondary),
			checklist.PriorityLow:      lipgloss.NewStyle().Foreground(p.Muted),
		},
	}
}

func (s styleSet) priority(p checklist.Priority) lipgloss.Style {
	if st, ok := s.priorities[p]; ok {
		return st
	}
	return lipgloss.NewStyle()
}
