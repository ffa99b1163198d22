package viz

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/metaheur/internal/experiment"
	"github.com/san-kum/metaheur/internal/operators"
)

const (
	historyCapacity = 600
	graphWidth      = 60
	graphHeight     = 10
	snapshotBuffer  = 64
)

type (
	TickMsg     time.Time
	SnapshotMsg operators.Snapshot
	// DoneMsg carries the outcome of the watched run.
	DoneMsg struct {
		Result *experiment.Result
		Err    error
	}
)

// Model is a live view of one run: progress, a convergence graph of goal 0
// and the latest population summary.
type Model struct {
	title     string
	goal      string
	total     int
	theme     Theme
	snapshots <-chan operators.Snapshot
	done      <-chan DoneMsg
	stop      func()

	best     []float64
	last     operators.Snapshot
	seen     bool
	started  time.Time
	frame    int
	stopping bool
	showHelp bool

	finished bool
	result   *experiment.Result
	err      error
}

// NewModel watches snapshots until done delivers the run's outcome. stop
// asks the run to end at its next iteration boundary. total is the
// iteration limit, or 0 when the run has none.
func NewModel(title, goal string, total int, snapshots <-chan operators.Snapshot, done <-chan DoneMsg, stop func()) Model {
	return Model{
		title:     title,
		goal:      goal,
		total:     total,
		theme:     ThemeCyberpunk,
		snapshots: snapshots,
		done:      done,
		stop:      stop,
		best:      make([]float64, 0, historyCapacity),
		started:   time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(listen(m.snapshots), wait(m.done), tick())
}

func listen(ch <-chan operators.Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return SnapshotMsg(s)
	}
}

func wait(ch <-chan DoneMsg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "s", "ctrl+c":
			if m.finished {
				return m, tea.Quit
			}
			if !m.stopping {
				m.stopping = true
				m.stop()
			}
		case "t":
			m.theme = m.theme.Next()
		case "?":
			m.showHelp = !m.showHelp
		}
	case SnapshotMsg:
		m.record(operators.Snapshot(msg))
		return m, listen(m.snapshots)
	case DoneMsg:
		m.finished = true
		m.result, m.err = msg.Result, msg.Err
		return m, tea.Quit
	case TickMsg:
		m.frame++
		if !m.finished {
			return m, tick()
		}
	}
	return m, nil
}

func (m *Model) record(s operators.Snapshot) {
	m.last, m.seen = s, true
	if len(s.Best) == 0 {
		return
	}
	m.best = append(m.best, s.Best[0])
	if len(m.best) > historyCapacity {
		m.best = m.best[1:]
	}
}

// Result returns the outcome delivered by DoneMsg.
func (m Model) Result() (*experiment.Result, error) {
	if !m.finished {
		return nil, fmt.Errorf("run did not finish")
	}
	return m.result, m.err
}

func (m Model) status() string {
	switch {
	case m.finished && m.err != nil:
		return StatusFailed.Render("FAILED")
	case m.finished:
		return StatusRunning.Render("DONE")
	case m.stopping:
		return StatusStopping.Render(AnimatedSpinner(m.frame) + " STOPPING")
	}
	return StatusRunning.Render(AnimatedSpinner(m.frame) + " RUNNING")
}

func (m Model) View() string {
	var s strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Primary)
	s.WriteString(HeaderStyle.Render(title.Render(strings.ToUpper(m.title))) + "\n")
	s.WriteString(m.status() + "\n\n")

	if m.total > 0 {
		frac := float64(m.last.Iteration) / float64(m.total)
		s.WriteString(ProgressBar(frac, 40) + fmt.Sprintf(" %d/%d", m.last.Iteration, m.total) + "\n")
	}
	if len(m.best) > 1 {
		chart := asciigraph.Plot(m.best, asciigraph.Height(graphHeight), asciigraph.Width(graphWidth), asciigraph.Caption(m.goal))
		s.WriteString(GraphStyle.Foreground(m.theme.Graph).Render(chart) + "\n")
	}

	if m.seen {
		s.WriteString(Field("Iteration", fmt.Sprintf("%d", m.last.Iteration)) + "\n")
		s.WriteString(Field("Best", formatVector(m.last.Best)) + "\n")
		s.WriteString(Field("Mean", formatVector(m.last.Mean)) + "\n")
		s.WriteString(Field("Population", fmt.Sprintf("%d", m.last.Size)) + "\n")
	}
	s.WriteString(Field("Elapsed", time.Since(m.started).Round(time.Millisecond).String()) + "\n")
	if m.err != nil {
		s.WriteString("\n" + StatusFailed.Render(m.err.Error()) + "\n")
	}

	s.WriteString("\n" + Separator(40) + "\n")
	if m.showHelp {
		s.WriteString(KeyHint.Render("s/q      stop at the next iteration\nt        cycle themes\n?        toggle this help"))
	} else {
		s.WriteString(KeyHint.Render("S:Stop T:Theme ?:Help"))
	}
	return s.String()
}

func formatVector(v []float64) string {
	if len(v) == 0 {
		return "-"
	}
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.6g", x)
	}
	return strings.Join(parts, "  ")
}

// RunLive executes runner behind a live view and returns its result. Any
// OnSnapshot and Stopped in opts still apply.
func RunLive(ctx context.Context, runner experiment.Runner, opts experiment.Options, title, goal string, total int, programOpts ...tea.ProgramOption) (*experiment.Result, error) {
	snapshots := make(chan operators.Snapshot, snapshotBuffer)
	done := make(chan DoneMsg, 1)
	var stopped atomic.Bool

	forward, outer := opts.OnSnapshot, opts.Stopped
	opts.OnSnapshot = func(s operators.Snapshot) {
		if forward != nil {
			forward(s)
		}
		select {
		case snapshots <- s:
		default:
		}
	}
	opts.Stopped = func() bool {
		return stopped.Load() || (outer != nil && outer())
	}

	go func() {
		res, err := runner.Run(ctx, opts)
		close(snapshots)
		done <- DoneMsg{Result: res, Err: err}
	}()

	final, err := tea.NewProgram(NewModel(title, goal, total, snapshots, done, func() { stopped.Store(true) }), programOpts...).Run()
	if err != nil {
		stopped.Store(true)
		return nil, err
	}
	return final.(Model).Result()
}
