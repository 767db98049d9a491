package metrics

import (
	"math"

	"github.com/san-kum/kinetic/internal/dynamo"
)

// MeanEnergy averages the total kinetic energy over observed frames.
type MeanEnergy struct {
	name    string
	sum     float64
	samples int
}

func NewMeanEnergy() *MeanEnergy {
	return &MeanEnergy{name: "mean_energy"}
}

func (e *MeanEnergy) Name() string { return e.name }

func (e *MeanEnergy) Observe(g *dynamo.Gas, t float64) {
	e.sum += g.KineticEnergy()
	e.samples++
}

func (e *MeanEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *MeanEnergy) Reset() {
	e.sum = 0
	e.samples = 0
}

// MeanPressure averages (2/3) KE / V over observed frames.
type MeanPressure struct {
	name    string
	sum     float64
	samples int
}

func NewMeanPressure() *MeanPressure {
	return &MeanPressure{name: "mean_pressure"}
}

func (p *MeanPressure) Name() string { return p.name }

func (p *MeanPressure) Observe(g *dynamo.Gas, t float64) {
	p.sum += g.Pressure()
	p.samples++
}

func (p *MeanPressure) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.sum / float64(p.samples)
}

func (p *MeanPressure) Reset() {
	p.sum = 0
	p.samples = 0
}

// PV averages the pressure-volume product. For an ideal gas it equals
// (2/3) KE.
type PV struct {
	name    string
	sum     float64
	samples int
}

func NewPV() *PV {
	return &PV{name: "pv"}
}

func (p *PV) Name() string { return p.name }

func (p *PV) Observe(g *dynamo.Gas, t float64) {
	p.sum += g.Pressure() * g.Box.Volume()
	p.samples++
}

func (p *PV) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.sum / float64(p.samples)
}

func (p *PV) Reset() {
	p.sum = 0
	p.samples = 0
}

// EnergyDrift tracks the largest relative deviation of kinetic energy from
// the first observation. Elastic dynamics keep it at rounding level unless
// a control event changes the temperature.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(g *dynamo.Gas, t float64) {
	energy := g.KineticEnergy()
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
