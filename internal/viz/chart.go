package viz

import (
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/kinetic/internal/metrics"
)

const (
	ChartWidth  = 80
	ChartHeight = 12
)

// Downsample keeps at most n evenly spaced samples of data.
func Downsample(data []float64, n int) []float64 {
	if n <= 0 || len(data) <= n {
		return data
	}
	out := make([]float64, n)
	step := float64(len(data)-1) / float64(n-1)
	for i := range out {
		out[i] = data[int(float64(i)*step+0.5)]
	}
	return out
}

// SeriesChart plots a time series. Empty input renders nothing.
func SeriesChart(data []float64, caption string) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(Downsample(data, 4*ChartWidth),
		asciigraph.Height(ChartHeight),
		asciigraph.Width(ChartWidth),
		asciigraph.Caption(caption),
	)
}

// SeriesCharts overlays several equally long series in distinct colors.
func SeriesCharts(caption string, series ...[]float64) string {
	data := make([][]float64, 0, len(series))
	for _, s := range series {
		if len(s) > 0 {
			data = append(data, Downsample(s, 4*ChartWidth))
		}
	}
	if len(data) == 0 {
		return ""
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(ChartHeight),
		asciigraph.Width(ChartWidth),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red, asciigraph.Green),
	)
}

// HistogramChart plots bin counts, or any per-bin values, against bin index.
func HistogramChart(values []float64, caption string) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(ChartHeight),
		asciigraph.Width(ChartWidth),
		asciigraph.Caption(caption),
	)
}

func Counts(h metrics.Histogram) []float64 {
	out := make([]float64, len(h.Counts))
	for i, c := range h.Counts {
		out[i] = float64(c)
	}
	return out
}
