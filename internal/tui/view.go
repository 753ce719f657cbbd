package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/and161185/pawnshop/internal/invoice"
	"github.com/and161185/pawnshop/internal/model"
	"github.com/and161185/pawnshop/internal/notify"
	"github.com/and161185/pawnshop/internal/pagination"
	"github.com/and161185/pawnshop/internal/phone"
	"github.com/and161185/pawnshop/internal/search"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	headerStyle   = lipgloss.NewStyle().Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("240"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	currentStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// View renders the current screen.
func (m *Model) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateDetail:
		return lipgloss.JoinVertical(lipgloss.Left, m.renderDetail(), m.renderNote(), mutedStyle.Render("esc back • q quit"))
	}
	snap := m.list.Snapshot()
	return lipgloss.NewStyle().MaxWidth(m.width).Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Clients"),
		m.renderFilters(),
		m.renderTable(snap),
		m.renderPager(snap),
		m.renderNote(),
		mutedStyle.Render("/ filter • tab next field • enter open • ←/→ page • 1-9 go to page • c clear • q quit"),
	))
}

func (m *Model) renderFilters() string {
	parts := make([]string, 0, len(m.inputs))
	for _, in := range m.inputs {
		parts = append(parts, in.View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(parts, "  "))
}

func (m *Model) renderTable(snap search.Snapshot[model.Client]) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-6s %-24s %-14s %s", "ID", "Name", "Phone", "Address")))
	b.WriteString("\n")
	if snap.Loading {
		b.WriteString(mutedStyle.Render("loading..."))
		return b.String()
	}
	if len(snap.Items) == 0 {
		b.WriteString(mutedStyle.Render("no clients"))
		return b.String()
	}
	for i, c := range snap.Items {
		row := fmt.Sprintf("%-6d %-24s %-14s %s", c.ID, truncate(c.Name, 24), phone.Format(c.PhoneNumber), c.Address)
		if i == m.cursor {
			row = selectedStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderPager(snap search.Snapshot[model.Client]) string {
	if !snap.HasPagination {
		return ""
	}
	p := snap.Pagination
	summary := mutedStyle.Render(fmt.Sprintf("%d-%d of %d", snap.Start, snap.End, p.TotalItems))
	if !snap.ShowControls {
		return summary
	}
	pages := make([]string, 0, len(snap.Window))
	for _, n := range snap.Window {
		switch {
		case n == pagination.Ellipsis:
			pages = append(pages, "…")
		case n == p.CurrentPage:
			pages = append(pages, currentStyle.Render(fmt.Sprint(n)))
		default:
			pages = append(pages, fmt.Sprint(n))
		}
	}
	return summary + "  " + strings.Join(pages, " ")
}

func (m *Model) renderDetail() string {
	rec, id, ok := m.detail.Current()
	if !ok {
		if m.detail.Loading() {
			return mutedStyle.Render(fmt.Sprintf("loading client %d...", id))
		}
		return mutedStyle.Render("nothing to show")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (#%d)", rec.Client.Name, rec.Client.ID)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s\n", phone.Format(rec.Client.PhoneNumber), rec.Client.Address)
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %-12s %-10s %s", "Order", "Date", "Deposit", "Products")))
	b.WriteString("\n")
	for _, o := range rec.Orders {
		names := make([]string, 0, len(o.Products))
		for _, p := range o.Products {
			names = append(names, p.ProductName)
		}
		fmt.Fprintf(&b, "%-8d %-12s %-10s %s\n", o.ID, o.Date, invoice.Money(o.Deposit), strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "%d orders", rec.TotalOrders)
	return b.String()
}

func (m *Model) renderNote() string {
	if m.note == nil {
		return ""
	}
	if m.note.Type == notify.Success {
		return successStyle.Render(m.note.Message)
	}
	return errorStyle.Render(m.note.Message)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
