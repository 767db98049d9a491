package viz

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/kinetic/internal/dynamo"
	"github.com/san-kum/kinetic/internal/metrics"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	assert.Equal(t, rune(0x2801), c.Grid[0][0])
	assert.Equal(t, rune(0x2880), c.Grid[0][1])
	assert.Equal(t, 2, c.Lit())
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 0, 7, 0)
	assert.Equal(t, 8, c.Lit())

	d := NewCanvas(4, 4)
	d.DrawLine(0, 0, 7, 15)
	assert.Equal(t, 16, d.Lit())
}

func TestProjection(t *testing.T) {
	box := dynamo.CenteredBox(10)
	g := dynamo.NewGas(2, box, 1)
	g.Pos[0] = dynamo.Vec3{}
	g.Pos[1] = dynamo.Vec3{X: 50}

	outline := Projection(dynamo.NewGas(0, box, 1), box, 20, 10).Lit()
	withGas := Projection(g, box, 20, 10).Lit()
	assert.Equal(t, outline+1, withGas, "one particle inside, one clipped")

	lines := strings.Split(strings.TrimSuffix(Projection(g, box, 20, 10).String(), "\n"), "\n")
	assert.Len(t, lines, 10)
}

func TestDownsample(t *testing.T) {
	data := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8}
	assert.Equal(t, []float64{0, 4, 8}, Downsample(data, 3))
	assert.Equal(t, data, Downsample(data, 100))
}

func TestCharts(t *testing.T) {
	assert.Empty(t, SeriesChart(nil, "x"))
	assert.Contains(t, SeriesChart([]float64{1, 2, 3}, "energy"), "energy")
	assert.Contains(t, SeriesCharts("both", []float64{1, 2}, []float64{2, 1}), "both")

	h, err := metrics.NewHistogram([]float64{0.1, 0.2, 0.9}, 2, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1}, Counts(h))
	assert.Contains(t, HistogramChart(Counts(h), "speed"), "speed")
}

func TestSummary(t *testing.T) {
	out := Summary("run", []Row{F("energy", 1.5), {Label: "id", Value: "abc"}})
	assert.Contains(t, out, "run")
	assert.Contains(t, out, "1.5")
	assert.Contains(t, out, "abc")
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "───", Sparkline(nil, 3))
	assert.NotEmpty(t, Sparkline([]float64{1, 2, 3}, 3))
}

func TestProgressModel(t *testing.T) {
	canceled := false
	m := NewProgressModel("collision", 10, func() { canceled = true })

	next, cmd := m.Update(FrameMsg{Frame: 4, Time: 0.2, Energy: 3, Pressure: 0.5})
	assert.Nil(t, cmd)
	m = next.(ProgressModel)
	assert.Equal(t, 5, m.Frames())
	assert.Contains(t, m.View(), "frame 5/10")

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = next.(ProgressModel)
	assert.NotNil(t, cmd)
	assert.True(t, canceled)
	assert.True(t, m.Interrupted())
}

func TestProgressModelDone(t *testing.T) {
	m := NewProgressModel("histogram", 2, nil)
	next, cmd := m.Update(DoneMsg{Err: errors.New("boom")})
	m = next.(ProgressModel)
	assert.NotNil(t, cmd)
	assert.False(t, m.Interrupted())
	assert.Contains(t, m.View(), "boom")
}

func TestProgressObserver(t *testing.T) {
	var got []FrameMsg
	o := newProgressObserver(func(msg tea.Msg) { got = append(got, msg.(FrameMsg)) }, 4, 10)

	g := dynamo.NewGas(1, dynamo.CenteredBox(1), 1)
	g.Vel[0] = dynamo.Vec3{X: 2}
	for frame := 0; frame < 10; frame++ {
		o.OnFrame(frame, g, float64(frame))
	}

	require.Len(t, got, 4)
	assert.Equal(t, []int{0, 4, 8, 9}, []int{got[0].Frame, got[1].Frame, got[2].Frame, got[3].Frame})
	assert.Equal(t, 2.0, got[0].Energy)
}
