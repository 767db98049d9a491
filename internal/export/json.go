package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/kinetic/internal/dynamo"
	"github.com/san-kum/kinetic/internal/metrics"
	"github.com/san-kum/kinetic/internal/storage"
)

type ExportData struct {
	Run           storage.RunMetadata    `json:"run"`
	Steps         int                    `json:"steps"`
	Times         []float64              `json:"times"`
	Energy        []float64              `json:"energy"`
	Pressure      []float64              `json:"pressure"`
	CenterOfMass  [][3]float64           `json:"center_of_mass"`
	WallHits      []int                  `json:"wall_hits"`
	Collisions    []int                  `json:"collisions"`
	Distributions *metrics.Distributions `json:"distributions,omitempty"`
}

func NewExportData(meta *storage.RunMetadata, series *storage.Series, dist *metrics.Distributions) ExportData {
	data := ExportData{
		Run:           *meta,
		Steps:         len(series.Times),
		Times:         series.Times,
		Energy:        series.Energy,
		Pressure:      series.Pressure,
		CenterOfMass:  make([][3]float64, len(series.CenterOfMass)),
		WallHits:      series.WallHits,
		Collisions:    series.Collisions,
		Distributions: dist,
	}
	for i, c := range series.CenterOfMass {
		data.CenterOfMass[i] = [3]float64{c.X, c.Y, c.Z}
	}
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteStateCSV writes one row per particle: position then velocity.
func WriteStateCSV(w io.Writer, g *dynamo.Gas) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "x", "y", "z", "vx", "vy", "vz", "speed"}); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for i := range g.Pos {
		p, v := g.Pos[i], g.Vel[i]
		row := []string{strconv.Itoa(i), f(p.X), f(p.Y), f(p.Z), f(v.X), f(v.Y), f(v.Z), f(v.Norm())}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
