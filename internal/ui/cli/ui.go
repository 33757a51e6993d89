// Package cli is the interactive terminal view of watch mode.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scopecheck/internal/core/app"
	"scopecheck/internal/engine/resolver"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	diag resolver.Diagnostic
}

func (i item) Title() string {
	return fmt.Sprintf("%s `%s`", i.diag.Kind, i.diag.Name)
}

func (i item) Description() string {
	return fmt.Sprintf("%s  %s", i.diag.Location, i.diag.Message)
}

func (i item) FilterValue() string { return i.diag.Name + " " + i.diag.Location.File }

type reportMsg struct {
	report *app.Report
}

type model struct {
	list       list.Model
	report     *app.Report
	errorsOnly bool
	lastUpdate time.Time
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Diagnostics"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		report:     &app.Report{},
		lastUpdate: time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "e":
				m.errorsOnly = !m.errorsOnly
				m.list.SetItems(m.items())
				return m, nil
			}
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case reportMsg:
		if msg.report != nil {
			m.report = msg.report
			m.lastUpdate = time.Now()
			m.list.SetItems(m.items())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) items() []list.Item {
	items := make([]list.Item, 0, len(m.report.Diagnostics))
	for _, d := range m.report.Diagnostics {
		if m.errorsOnly && !d.Kind.IsError() {
			continue
		}
		items = append(items, item{diag: d})
	}
	return items
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | %d packages",
		m.lastUpdate.Format("15:04:05"), m.report.Files, m.report.Packages))

	var summary string
	if len(m.report.Diagnostics) == 0 {
		summary = successStyle.Render("All names resolve")
	} else {
		errs := m.report.Errors()
		summary = fmt.Sprintf("%s | %s",
			errorStyle.Render(fmt.Sprintf("%d Errors", errs)),
			warningStyle.Render(fmt.Sprintf("%d Warnings", len(m.report.Diagnostics)-errs)))
	}
	if m.errorsOnly {
		summary += statusStyle.Render(" (errors only)")
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Scope Check"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

// RunUI shows initial and every later watch report until the user quits or
// ctx is cancelled.
func RunUI(ctx context.Context, a *app.App, initial *app.Report) error {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen(), tea.WithContext(ctx))

	a.SetUpdateHandler(func(r *app.Report) {
		p.Send(reportMsg{report: r})
	})
	go p.Send(reportMsg{report: initial})

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
