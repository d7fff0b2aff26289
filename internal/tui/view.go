package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/colonyops/checkup/internal/core/checklist"
)

func (m model) View() string {
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m model) viewList() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.searching {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	if len(m.items) == 0 {
		b.WriteString(m.styles.help.Render("  no items match the current filters"))
		b.WriteString("\n")
	}

	for i, it := range m.items {
		b.WriteString(m.renderItem(i, it))
		b.WriteString("\n")
	}

	if m.flash != "" {
		b.WriteString("\n")
		if m.flashErr {
			b.WriteString(m.styles.err.Render(m.flash))
		} else {
			b.WriteString(m.flash)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.help.Render("space toggle • enter details • / search • c category • p priority • t todo only • v verify • x clear • q quit"))
	return b.String()
}

func (m model) renderHeader() string {
	st := m.session.Stats()
	cl := m.session.Checklist()

	header := fmt.Sprintf("%d/%d done (%.0f%%)", st.CompletedItems, st.TotalItems, st.ProgressPercentage)
	if st.EstimatedMinutes > 0 {
		header += fmt.Sprintf(" • %dm estimated", st.EstimatedMinutes)
	}
	header += fmt.Sprintf(" • %s elapsed", formatElapsed(m.session.Elapsed(m.now())))

	line := m.styles.title.Render(cl.Title) + "  " + m.styles.header.Render(header)

	if filters := m.renderFilters(); filters != "" {
		line += "\n" + m.styles.filter.Render(filters)
	}
	return line
}

func (m model) renderFilters() string {
	var parts []string
	if m.criteria.Category != "" {
		parts = append(parts, "category:"+string(m.criteria.Category))
	}
	if m.criteria.Priority != "" {
		parts = append(parts, "priority:"+string(m.criteria.Priority))
	}
	if m.criteria.Search != "" {
		parts = append(parts, "search:"+m.criteria.Search)
	}
	if m.pendingOnly {
		parts = append(parts, "todo only")
	}
	if len(parts) == 0 {
		return ""
	}
	return "filters: " + strings.Join(parts, " ")
}

func (m model) renderItem(i int, it checklist.Item) string {
	cursor := "  "
	if i == m.cursor {
		cursor = m.styles.cursor.Render("> ")
	}

	check := "[ ]"
	if it.IsCompleted {
		check = "[x]"
	}

	title := it.Title
	if it.IsCompleted {
		title = m.styles.completed.Render(title)
	}

	badge := m.styles.priority(it.Priority).Render(string(it.Priority))
	line := fmt.Sprintf("%s%s %s %s %s", cursor, check, badge, m.styles.header.Render(string(it.Category)), title)

	if it.Verification != nil {
		line += " " + m.styles.header.Render("("+string(it.Verification.Status)+")")
	}
	return line
}

func (m model) viewDetail() string {
	it := m.detail

	// Re-read the latest copy so toggles taken from the detail view show up.
	if cur, err := m.session.Store().Get(it.ID); err == nil {
		it = cur
	}

	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", it.Title)
	fmt.Fprintf(&md, "**Category:** %s  \n**Priority:** %s  \n", it.Category, it.Priority)
	if it.EstimatedMinutes != nil {
		fmt.Fprintf(&md, "**Estimated:** %dm  \n", *it.EstimatedMinutes)
	}
	if it.ActualMinutes != nil {
		fmt.Fprintf(&md, "**Logged:** %dm  \n", *it.ActualMinutes)
	}
	if it.IsCompleted && it.CompletedAt != nil {
		fmt.Fprintf(&md, "**Completed:** %s  \n", it.CompletedAt.Format("2006-01-02 15:04"))
	}
	if v := it.Verification; v != nil {
		fmt.Fprintf(&md, "**Verification:** %s (%s)  \n", v.Method, v.Status)
	}
	if it.Description != "" {
		fmt.Fprintf(&md, "\n%s\n", it.Description)
	}
	if it.Notes != "" {
		fmt.Fprintf(&md, "\n## Notes\n\n%s\n", it.Notes)
	}

	width := m.width
	if width <= 0 || width > 100 {
		width = 100
	}

	rendered := md.String()
	if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width)); err == nil {
		if out, err := r.Render(md.String()); err == nil {
			rendered = out
		}
	}

	var b strings.Builder
	b.WriteString(rendered)
	if m.flash != "" && m.flashErr {
		b.WriteString(m.styles.err.Render(m.flash))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.help.Render("esc back • space toggle • v verify • q quit"))
	return b.String()
}

func formatElapsed(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
}
