package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tiffin/internal/monitor"
)

const maxHistory = 50

type statusMsg monitor.Update

type tickFailedMsg struct{ err error }

type pollDoneMsg struct {
	result monitor.Result
	err    error
}

// teaNotifier forwards poll events into a running program.
type teaNotifier struct {
	send func(tea.Msg)
}

func (n teaNotifier) StatusChanged(u monitor.Update) { n.send(statusMsg(u)) }
func (n teaNotifier) TickFailed(err error)           { n.send(tickFailedMsg{err: err}) }

// MonitorModel is the Bubble Tea model for `monitor --tui`.
type MonitorModel struct {
	orderID  string
	interval time.Duration
	theme    Theme
	keys     keyMap
	spinner  spinner.Model
	stop     func()
	onTheme  func(name string)

	history  []monitor.Update
	lastErr  error
	failures int
	showHelp bool
	width    int

	done   bool
	result monitor.Result
	err    error
}

// NewMonitorModel builds the monitor view. stop is called when the user
// quits so the poll loop can wind down.
func NewMonitorModel(orderID string, interval time.Duration, theme Theme, stop func()) MonitorModel {
	return MonitorModel{
		orderID:  orderID,
		interval: interval,
		theme:    theme,
		keys:     DefaultKeyMap(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(theme.Styles().AccentText),
		),
		stop: stop,
	}
}

// Init implements tea.Model.
func (m MonitorModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusMsg:
		m.history = append(m.history, monitor.Update(msg))
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}
		m.lastErr = nil
		return m, nil

	case tickFailedMsg:
		m.lastErr = msg.err
		m.failures++
		return m, nil

	case pollDoneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m MonitorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.stop != nil {
			m.stop()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.spinner.Style = m.theme.Styles().AccentText
		if m.onTheme != nil {
			m.onTheme(m.theme.Name)
		}
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	}
	return m, nil
}

// View implements tea.Model.
func (m MonitorModel) View() string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.Title.Render("tiffin") + styles.MutedText.Render(" · order "+m.orderID))
	b.WriteString("\n\n")

	if m.showHelp {
		for _, binding := range m.keys.bindings() {
			h := binding.Help()
			fmt.Fprintf(&b, "  %s  %s\n", styles.AccentText.Render(fmt.Sprintf("%-4s", h.Key)), h.Desc)
		}
		b.WriteString("\n" + styles.FaintText.Render("press any key to close") + "\n")
		return b.String()
	}

	if len(m.history) == 0 {
		b.WriteString(styles.MutedText.Render("  waiting for first status...") + "\n")
	}
	for _, u := range m.history {
		b.WriteString(styles.InfoText.Render("  [" + u.At.Format("15:04:05") + "] "))
		b.WriteString(styles.StatusStyle(u.Status).Render(strings.ToUpper(u.Status)))
		var extra []string
		if u.ETA != "" && u.ETA != "N/A" {
			extra = append(extra, "ETA "+u.ETA)
		}
		if u.DeliveryPartner != "" {
			extra = append(extra, u.DeliveryPartner)
		}
		if len(extra) > 0 {
			b.WriteString(styles.MutedText.Render("  " + strings.Join(extra, " · ")))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.done && m.result.Reason == monitor.StopTerminal:
		b.WriteString(styles.SuccessText.Render("✓ Order "+m.result.LastStatus) + "\n")
	case m.done:
		b.WriteString(styles.MutedText.Render("Monitoring stopped") + "\n")
	default:
		fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), styles.MutedText.Render("checking every "+m.interval.String()))
	}
	if m.lastErr != nil {
		b.WriteString(styles.WarningText.Render(fmt.Sprintf("⚠ %s (%d failed)", ErrorMessage(m.lastErr), m.failures)) + "\n")
	}
	if !m.done {
		b.WriteString(styles.FaintText.Render("q stop · T theme · ? help") + "\n")
	}
	return b.String()
}

// MonitorTUIOptions configure RunMonitorTUI. Nil streams use the terminal.
type MonitorTUIOptions struct {
	Theme  Theme
	Input  io.Reader
	Output io.Writer
	// OnThemeChange is called with the new theme name when the user cycles
	// themes.
	OnThemeChange func(name string)
}

// RunMonitorTUI runs poller in the background and shows its progress until
// the order reaches a terminal status, the user quits or ctx is cancelled.
func RunMonitorTUI(ctx context.Context, poller *monitor.Poller, orderID string, opts MonitorTUIOptions) (monitor.Result, error) {
	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var programOpts []tea.ProgramOption
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}
	model := NewMonitorModel(orderID, poller.Interval(), opts.Theme, cancel)
	model.onTheme = opts.OnThemeChange
	p := tea.NewProgram(model, programOpts...)

	done := make(chan pollDoneMsg, 1)
	go func() {
		result, err := poller.Run(pollCtx, orderID, teaNotifier{send: p.Send})
		msg := pollDoneMsg{result: result, err: err}
		done <- msg
		p.Send(msg)
	}()
	go func() {
		<-pollCtx.Done()
		p.Quit()
	}()

	_, runErr := p.Run()
	cancel()
	out := <-done
	if runErr != nil {
		return out.result, fmt.Errorf("monitor view: %w", runErr)
	}
	return out.result, out.err
}
