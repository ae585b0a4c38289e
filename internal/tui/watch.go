// Package tui provides the interactive watch dashboard.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rmirandamx/agentspend/internal/classify"
	"github.com/rmirandamx/agentspend/internal/cli"
	"github.com/rmirandamx/agentspend/internal/config"
	"github.com/rmirandamx/agentspend/internal/ledger"
	"github.com/rmirandamx/agentspend/internal/metrics"
	"github.com/rmirandamx/agentspend/internal/model"
	"github.com/rmirandamx/agentspend/internal/pipeline"
	"github.com/rmirandamx/agentspend/internal/source"
)

const refreshInterval = 15 * time.Second

// refreshedMsg carries the result of one ingest cycle.
type refreshedMsg struct {
	snapshot model.MetricsSnapshot
	fleet    []model.AgentActivity
	err      error
}

type tickMsg time.Time

// Watch is the root Bubble Tea model for the live dashboard.
type Watch struct {
	sessionsDir string
	dataDir     string
	days        int
	thresholds  config.ThresholdsConfig

	cls    *classify.Classifier
	prices *config.PriceTable
	lstore *ledger.Store

	snapshot    model.MetricsSnapshot
	fleet       []model.AgentActivity
	loaded      bool
	refreshing  bool
	lastRefresh time.Time
	lastErr     error

	spinner spinner.Model
	width   int
	height  int
}

// NewWatch builds the watch model.
func NewWatch(cfg config.Config, days int) Watch {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(cli.ColorAccent)

	return Watch{
		sessionsDir: config.SessionsDir(cfg),
		dataDir:     config.DataDir(cfg),
		days:        days,
		thresholds:  cfg.Thresholds,
		cls:         classify.New(),
		prices:      config.NewPriceTable(cfg.Pricing),
		lstore:      ledger.NewStore(config.DataDir(cfg)),
		spinner:     sp,
	}
}

// Init starts the spinner and the first refresh.
func (w Watch) Init() tea.Cmd {
	return tea.Batch(w.spinner.Tick, w.refreshCmd(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w Watch) refreshCmd() tea.Cmd {
	sessionsDir := w.sessionsDir
	lstore := w.lstore
	cls := w.cls
	prices := w.prices
	days := w.days
	infra := w.thresholds.LocalInfraMonthlyUSD

	return func() tea.Msg {
		ir, err := pipeline.Ingest(sessionsDir, lstore, cls, prices, nil, nil)
		if err != nil {
			return refreshedMsg{err: err}
		}
		now := time.Now()
		windowed := metrics.Window(ir.Retained, days, now)
		fleet, _ := source.FleetStatus(sessionsDir, now)
		return refreshedMsg{
			snapshot: metrics.Compute(windowed, infra),
			fleet:    fleet,
		}
	}
}

// Update handles messages.
func (w Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		return w, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return w, tea.Quit
		case "r":
			if !w.refreshing {
				w.refreshing = true
				return w, w.refreshCmd()
			}
		}
		return w, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if !w.refreshing {
			w.refreshing = true
			cmds = append(cmds, w.refreshCmd())
		}
		return w, tea.Batch(cmds...)

	case refreshedMsg:
		w.refreshing = false
		w.lastRefresh = time.Now()
		w.lastErr = msg.err
		if msg.err == nil {
			w.snapshot = msg.snapshot
			w.fleet = msg.fleet
			w.loaded = true
		}
		return w, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)
		return w, cmd
	}

	return w, nil
}

// View renders the dashboard.
func (w Watch) View() string {
	if !w.loaded {
		if w.lastErr != nil {
			return fmt.Sprintf("\n  scan failed: %v\n  press q to quit\n", w.lastErr)
		}
		return fmt.Sprintf("\n  %s scanning agent sessions...\n", w.spinner.View())
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(cli.RenderTitle(fmt.Sprintf("agentspend watch  ·  last %d days", w.days)))
	b.WriteString("\n\n")

	b.WriteString(w.renderSummary())
	b.WriteString("\n")
	b.WriteString(w.renderClassifications())
	b.WriteString("\n")
	b.WriteString(w.renderFleet())
	b.WriteString("\n")
	b.WriteString(w.renderFooter())
	return b.String()
}

func (w Watch) renderSummary() string {
	s := w.snapshot.Summary
	p := w.snapshot.Projection
	return cli.RenderTable(cli.Table{
		Title:   "Summary",
		Headers: []string{"Requests", "Cost", "Avg/req", "Monthly est", "ROI"},
		Rows: [][]string{{
			cli.FormatNumber(int64(s.TotalRequests)),
			cli.FormatCost(s.TotalCost),
			fmt.Sprintf("$%.4f", s.AvgCostPerRequest),
			cli.FormatCost(p.CurrentMonthlyEstimate),
			p.ROI,
		}},
	})
}

func (w Watch) renderClassifications() string {
	rows := make([][]string, 0, 3)
	for _, cls := range []string{string(model.LocalViable), string(model.NeedsClaude), string(model.EdgeCase)} {
		row, ok := w.snapshot.ClassificationBreakdown[cls]
		if !ok {
			continue
		}
		rows = append(rows, []string{
			cls,
			cli.FormatNumber(int64(row.Count)),
			fmt.Sprintf("%d%%", row.Percentage),
			cli.FormatCost(row.TotalCost),
		})
	}
	if len(rows) == 0 {
		return "  no classified requests in window\n"
	}
	return cli.RenderTable(cli.Table{
		Title:   "Classification",
		Headers: []string{"Class", "Count", "Share", "Cost"},
		Rows:    rows,
	})
}

func (w Watch) renderFleet() string {
	if len(w.fleet) == 0 {
		return "  no agents found\n"
	}

	fleet := make([]model.AgentActivity, len(w.fleet))
	copy(fleet, w.fleet)
	sort.Slice(fleet, func(i, j int) bool { return fleet[i].Agent < fleet[j].Agent })

	rows := make([][]string, 0, len(fleet))
	for _, a := range fleet {
		last := "never"
		if a.LastActive != nil {
			last = a.LastActive.Format("15:04:05")
		}
		cost := "$0.00"
		if m, ok := w.snapshot.ByAgent[a.Agent]; ok {
			cost = cli.FormatCost(m.Cost)
		}
		rows = append(rows, []string{a.Agent, a.Status, last, cost})
	}
	return cli.RenderTable(cli.Table{
		Title:   "Agents",
		Headers: []string{"Agent", "Status", "Last active", "Cost"},
		Rows:    rows,
	})
}

func (w Watch) renderFooter() string {
	status := fmt.Sprintf("refreshed %s", w.lastRefresh.Format("15:04:05"))
	if w.refreshing {
		status = w.spinner.View() + " refreshing"
	}
	if w.lastErr != nil {
		status = fmt.Sprintf("refresh failed: %v", w.lastErr)
	}
	return fmt.Sprintf("  %s  ·  r refresh  ·  q quit\n", status)
}

// Run starts the watch dashboard and blocks until the user quits.
func Run(cfg config.Config, days int) error {
	_, err := tea.NewProgram(NewWatch(cfg, days), tea.WithAltScreen()).Run()
	return err
}
