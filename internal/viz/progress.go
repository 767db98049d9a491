package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/kinetic/internal/dynamo"
)

const historyCapacity = 240

// FrameMsg reports the state after a simulated frame.
type FrameMsg struct {
	Frame    int
	Time     float64
	Energy   float64
	Pressure float64
}

// DoneMsg ends the view once the run returns.
type DoneMsg struct{ Err error }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// ProgressModel shows how far a run has got and its latest energy and
// pressure. It never draws particles.
type ProgressModel struct {
	title   string
	total   int
	last    FrameMsg
	seen    bool
	history []float64
	start   time.Time
	spin    int
	done    bool
	quit    bool
	err     error
	cancel  func()
}

func NewProgressModel(title string, total int, cancel func()) ProgressModel {
	return ProgressModel{
		title:   title,
		total:   total,
		history: make([]float64, 0, historyCapacity),
		start:   time.Now(),
		cancel:  cancel,
	}
}

func (m ProgressModel) Init() tea.Cmd { return tick() }

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		m.last = msg
		m.seen = true
		if len(m.history) == historyCapacity {
			m.history = m.history[1:]
		}
		m.history = append(m.history, msg.Energy)
		return m, nil

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quit = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.spin++
		return m, tick()
	}
	return m, nil
}

func (m ProgressModel) Frames() int {
	if !m.seen {
		return 0
	}
	return m.last.Frame + 1
}

// Interrupted reports whether the user quit before the run finished.
func (m ProgressModel) Interrupted() bool { return m.quit && !m.done }

func (m ProgressModel) View() string {
	var b strings.Builder

	status := StatusRunning.Render(Spinner(m.spin) + " running")
	switch {
	case m.err != nil:
		status = StatusFailed.Render("failed: " + m.err.Error())
	case m.done:
		status = StatusRunning.Render("done")
	case m.quit:
		status = StatusFailed.Render("stopping")
	}
	fmt.Fprintf(&b, "%s  %s\n\n", Title.Render(m.title), status)

	pct := 0.0
	if m.total > 0 {
		pct = float64(m.Frames()) / float64(m.total)
	}
	fmt.Fprintf(&b, "%s %5.1f%%  frame %d/%d\n\n", ProgressBar(pct, 40), 100*pct, m.Frames(), m.total)

	fmt.Fprintf(&b, "%s%s\n", MetricLabel.Render("time"), MetricValue.Render(fmt.Sprintf("%.2f s", m.last.Time)))
	fmt.Fprintf(&b, "%s%s\n", MetricLabel.Render("kinetic energy"), MetricValue.Render(fmt.Sprintf("%.6g", m.last.Energy)))
	fmt.Fprintf(&b, "%s%s\n", MetricLabel.Render("pressure"), MetricValue.Render(fmt.Sprintf("%.6g", m.last.Pressure)))
	fmt.Fprintf(&b, "%s%s\n\n", MetricLabel.Render("elapsed"), MetricValue.Render(time.Since(m.start).Truncate(time.Millisecond).String()))

	b.WriteString(Sparkline(m.history, 60))
	b.WriteString("\n\n")
	b.WriteString(Subtle.Render("q: stop"))
	b.WriteString("\n")
	return b.String()
}

// ProgressObserver forwards every Every-th frame, and the final one, to a
// running program.
type ProgressObserver struct {
	send  func(tea.Msg)
	every int
	total int
}

func NewProgressObserver(p *tea.Program, every, total int) *ProgressObserver {
	return newProgressObserver(p.Send, every, total)
}

func newProgressObserver(send func(tea.Msg), every, total int) *ProgressObserver {
	return &ProgressObserver{send: send, every: max(every, 1), total: total}
}

func (o *ProgressObserver) OnFrame(frame int, g *dynamo.Gas, t float64) {
	if frame%o.every != 0 && frame != o.total-1 {
		return
	}
	o.send(FrameMsg{Frame: frame, Time: t, Energy: g.KineticEnergy(), Pressure: g.Pressure()})
}
