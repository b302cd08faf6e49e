package tui

import (
	"fmt"
	"sort"
	"strings"

	"oikenops/flowmetrics/internal/dataset"
	"oikenops/flowmetrics/internal/domain"
	"oikenops/flowmetrics/internal/tui/components"
	"oikenops/flowmetrics/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// granularity selects which dataset the charts are drawn from.
type granularity int

const (
	granularityHourly granularity = iota
	granularityDaily
)

func (g granularity) String() string {
	if g == granularityDaily {
		return "daily"
	}
	return "hourly"
}

// datasetLoadedMsg carries the result of the async dataset load.
type datasetLoadedMsg struct {
	runDate string
	hourly  []domain.FlowMetricRecord
	daily   []domain.DailyAggregate
	err     error
}

// flowSeries holds the chart series for a single flow, in time order.
type flowSeries struct {
	id    string
	name  string
	state string

	exchanges  []float64
	successful []float64
	failed     []float64
	avgRespMs  []float64
}

// dashboardModel is the Bubbletea model for the metrics dashboard. It
// reads the hourly and daily datasets for one run date and renders
// summary KPIs plus per-flow charts. The selected flow and granularity
// are cycled with key bindings.
type dashboardModel struct {
	store   *dataset.Store
	runDate string // requested run date; "" means latest

	loading bool
	spinner spinner.Model
	err     error

	loadedDate string
	hourly     []domain.FlowMetricRecord
	daily      []domain.DailyAggregate

	flows   []flowSeries // derived from the active dataset
	flowIdx int
	gran    granularity

	width  int
	height int
}

// RunDashboard opens the interactive dashboard for the given run date.
// An empty runDate selects the most recent dataset in the store.
func RunDashboard(store *dataset.Store, runDate string) error {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	m := dashboardModel{
		store:   store,
		runDate: runDate,
		loading: true,
		spinner: s,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadDataset())
}

// loadDataset reads the hourly and daily files off the Update loop. The
// daily file is optional; a missing one only disables the daily view.
func (m dashboardModel) loadDataset() tea.Cmd {
	store := m.store
	runDate := m.runDate
	return func() tea.Msg {
		date := runDate
		if date == "" {
			latest, err := store.LatestRunDate()
			if err != nil {
				return datasetLoadedMsg{err: err}
			}
			date = latest
		}

		hourly, err := store.ReadHourly(date)
		if err != nil {
			return datasetLoadedMsg{runDate: date, err: err}
		}

		daily, err := store.ReadDaily(date)
		if err != nil {
			daily = nil
		}

		return datasetLoadedMsg{runDate: date, hourly: hourly, daily: daily}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case datasetLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.loadedDate = msg.runDate
		m.hourly = msg.hourly
		m.daily = msg.daily
		m.flowIdx = 0
		m.rebuildSeries()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit

	case "right", "tab", "l":
		if len(m.flows) > 0 {
			m.flowIdx = (m.flowIdx + 1) % len(m.flows)
		}
		return m, nil

	case "left", "shift+tab", "h":
		if len(m.flows) > 0 {
			m.flowIdx = (m.flowIdx - 1 + len(m.flows)) % len(m.flows)
		}
		return m, nil

	case "g":
		if m.gran == granularityHourly {
			m.gran = granularityDaily
		} else {
			m.gran = granularityHourly
		}
		m.flowIdx = 0
		m.rebuildSeries()
		return m, nil

	case "r":
		m.loading = true
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.loadDataset())
	}

	return m, nil
}

// rebuildSeries derives the per-flow chart series from the active
// dataset. Rows are already in time order within each flow because the
// hourly file is append-only and the daily file is written sorted.
func (m *dashboardModel) rebuildSeries() {
	byID := make(map[string]*flowSeries)
	var order []string

	add := func(id, name, state string, total, success, failed, resp float64) {
		fs, ok := byID[id]
		if !ok {
			fs = &flowSeries{id: id, name: name}
			byID[id] = fs
			order = append(order, id)
		}
		fs.state = state // last row wins
		if name != "" {
			fs.name = name
		}
		fs.exchanges = append(fs.exchanges, total)
		fs.successful = append(fs.successful, success)
		fs.failed = append(fs.failed, failed)
		fs.avgRespMs = append(fs.avgRespMs, resp)
	}

	if m.gran == granularityDaily {
		for _, r := range m.daily {
			add(r.FlowID, r.FlowName, r.FlowState,
				r.TotalExchanges, r.SuccessfulExchanges, r.FailedExchanges, r.AvgResponseTimeMs)
		}
	} else {
		for _, r := range m.hourly {
			add(r.FlowID, r.FlowName, r.FlowState,
				r.TotalExchanges, r.SuccessfulExchanges, r.FailedExchanges, r.AvgResponseTimeMs)
		}
	}

	sort.Strings(order)
	m.flows = make([]flowSeries, 0, len(order))
	for _, id := range order {
		m.flows = append(m.flows, *byID[id])
	}
	if m.flowIdx >= len(m.flows) {
		m.flowIdx = 0
	}
}

// --- KPIs ---

type kpiSummary struct {
	flows       int
	exchanges   float64
	successful  float64
	failed      float64
	successRate float64 // percent, 0 when no exchanges
}

// summarize computes the headline numbers across the hourly dataset.
// The success rate is successful over (successful + failed); the total
// counter is reported independently by the source and is shown as-is.
func summarize(records []domain.FlowMetricRecord) kpiSummary {
	var s kpiSummary
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[r.FlowID] = struct{}{}
		s.exchanges += r.TotalExchanges
		s.successful += r.SuccessfulExchanges
		s.failed += r.FailedExchanges
	}
	s.flows = len(seen)
	if finished := s.successful + s.failed; finished > 0 {
		s.successRate = s.successful / finished * 100
	}
	return s
}

// --- View ---

func (m dashboardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "dashboard", m.loadedDate)
	footer := components.Footer(m.width, []components.KeyBinding{
		{Key: "←/→", Desc: "flow"},
		{Key: "g", Desc: m.gran.String()},
		{Key: "r", Desc: "reload"},
		{Key: "q", Desc: "quit"},
	})

	status := ""
	if !m.loading && m.err == nil && m.gran == granularityDaily && len(m.daily) == 0 {
		status = "No daily dataset for this run date; run `flowmetrics aggregate` first."
	}
	statusBar := components.StatusBar(m.width, status, false)

	headerH := lipgloss.Height(header)
	footerH := lipgloss.Height(footer)
	statusH := 0
	if statusBar != "" {
		statusH = lipgloss.Height(statusBar)
	}
	contentH := m.height - headerH - footerH - statusH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.loading:
		text := m.spinner.View() + "  Loading datasets..."
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render(text))

	case m.err != nil:
		text := styles.ErrorText.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" +
			styles.MutedText.Render("Run `flowmetrics collect` first, then reload with r.")
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, text)

	case len(m.flows) == 0:
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render("Dataset is empty."))

	default:
		content = m.renderDashboard(contentH)
	}

	if statusBar != "" {
		return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar, footer)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (m dashboardModel) renderDashboard(contentH int) string {
	flow := m.flows[m.flowIdx]

	kpis := m.renderKPIs()
	flowLine := m.renderFlowSelector(flow)

	chartWidth := m.width - 6
	if chartWidth < 20 {
		chartWidth = 20
	}

	exchanges := components.FlowChart(
		fmt.Sprintf("Exchanges per %s window", m.gran),
		flow.exchanges, chartWidth, "")
	outcomes := components.FlowDualChart(
		"Outcomes", flow.successful, flow.failed, "success", "failed", chartWidth, "")
	latency := components.FlowChart(
		"Avg response time", flow.avgRespMs, chartWidth, "ms")

	body := lipgloss.JoinVertical(lipgloss.Left,
		kpis,
		"",
		flowLine,
		"",
		exchanges,
		"",
		outcomes,
		"",
		latency,
	)

	return lipgloss.NewStyle().
		Padding(1, 2).
		MaxHeight(contentH).
		Render(body)
}

// renderKPIs draws the headline cards: flow count, exchange totals and
// overall success rate across the whole hourly dataset.
func (m dashboardModel) renderKPIs() string {
	s := summarize(m.hourly)

	rateStyle := styles.SuccessText
	if s.successRate < 95 {
		rateStyle = styles.WarningText
	}
	if s.successRate < 80 {
		rateStyle = styles.ErrorText
	}

	cards := []string{
		kpiCard("Flows", styles.Value.Render(fmt.Sprintf("%d", s.flows))),
		kpiCard("Exchanges", styles.Value.Render(fmt.Sprintf("%.0f", s.exchanges))),
		kpiCard("Successful", styles.SuccessText.Render(fmt.Sprintf("%.0f", s.successful))),
		kpiCard("Failed", styles.ErrorText.Render(fmt.Sprintf("%.0f", s.failed))),
		kpiCard("Success rate", rateStyle.Render(fmt.Sprintf("%.1f%%", s.successRate))),
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func kpiCard(label, value string) string {
	inner := lipgloss.JoinVertical(lipgloss.Center,
		styles.Label.Render(label),
		value,
	)
	return styles.Card.Padding(0, 2).Render(inner)
}

func (m dashboardModel) renderFlowSelector(flow flowSeries) string {
	name := flow.name
	if name == "" {
		name = flow.id
	}

	var b strings.Builder
	b.WriteString(styles.Subtitle.Render(fmt.Sprintf("Flow %d/%d  ", m.flowIdx+1, len(m.flows))))
	b.WriteString(styles.Title.Render(name))
	b.WriteString("  ")
	b.WriteString(styles.FlowStateIndicator(flow.state))
	return b.String()
}
