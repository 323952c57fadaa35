// Package scoring derives an agent's velocity, efficiency and hire price from
// its accumulated counters. Everything here is pure: callers pass the clock
// reading in.
package scoring

import (
	"math"
	"time"

	"ambientin/internal/models"
)

const (
	DefaultNeutralScore            = 50.0
	DefaultVelocityPerDailyTask    = 10.0
	DefaultEfficiencyBaselineHours = 24.0
	DefaultEfficiencyPenalty       = 50.0
	DefaultDemandDivisor           = 100.0

	maxScore = 100.0
	day      = 24 * time.Hour
)

// Params holds the tunable formula constants.
type Params struct {
	// NeutralScore is the prior used for agents with no evidence.
	NeutralScore float64
	// VelocityPerDailyTask is the velocity gained per completed task per day.
	VelocityPerDailyTask float64
	// EfficiencyBaselineHours is the completion time that costs EfficiencyPenalty points.
	EfficiencyBaselineHours float64
	EfficiencyPenalty       float64
	// DemandDivisor converts total hires into the demand multiplier.
	DemandDivisor float64
}

func DefaultParams() Params {
	return Params{
		NeutralScore:            DefaultNeutralScore,
		VelocityPerDailyTask:    DefaultVelocityPerDailyTask,
		EfficiencyBaselineHours: DefaultEfficiencyBaselineHours,
		EfficiencyPenalty:       DefaultEfficiencyPenalty,
		DemandDivisor:           DefaultDemandDivisor,
	}
}

// withDefaults fills zero fields so a partially configured Params never
// divides by zero.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.NeutralScore <= 0 {
		p.NeutralScore = d.NeutralScore
	}
	if p.VelocityPerDailyTask <= 0 {
		p.VelocityPerDailyTask = d.VelocityPerDailyTask
	}
	if p.EfficiencyBaselineHours <= 0 {
		p.EfficiencyBaselineHours = d.EfficiencyBaselineHours
	}
	if p.EfficiencyPenalty <= 0 {
		p.EfficiencyPenalty = d.EfficiencyPenalty
	}
	if p.DemandDivisor <= 0 {
		p.DemandDivisor = d.DemandDivisor
	}
	return p
}

// Velocity scores throughput: completed tasks per day since creation, on top
// of the neutral prior.
func (p Params) Velocity(a models.Agent, now time.Time) float64 {
	p = p.withDefaults()
	total := a.TotalTasks()
	if total == 0 {
		return p.NeutralScore
	}
	days := math.Max(1, float64(now.Sub(a.CreatedAt))/float64(day))
	tasksPerDay := float64(total) / days
	return Round1(clamp(p.NeutralScore+tasksPerDay*p.VelocityPerDailyTask, 0, maxScore))
}

// Efficiency scores speed per task against the baseline completion time.
func (p Params) Efficiency(a models.Agent) float64 {
	p = p.withDefaults()
	if a.AvgCompletionTime == 0 {
		return p.NeutralScore
	}
	score := maxScore - (a.AvgCompletionTime/p.EfficiencyBaselineHours)*p.EfficiencyPenalty
	return Round1(clamp(score, 0, maxScore))
}

// DynamicCost prices an agent from its current scores and demand.
func (p Params) DynamicCost(a models.Agent) float64 {
	p = p.withDefaults()
	performance := (a.Velocity + a.Efficiency) / maxScore
	return Round2(a.BaseCost * performance * p.demand(a.TotalHires))
}

// HireCost is the demand-only price applied at hire time.
func (p Params) HireCost(a models.Agent) float64 {
	p = p.withDefaults()
	return Round2(a.BaseCost * p.demand(a.TotalHires))
}

func (p Params) demand(hires int) float64 {
	return 1 + float64(hires)/p.DemandDivisor
}

// Recompute refreshes the derived fields of a in place, velocity and
// efficiency first since the cost depends on them.
func (p Params) Recompute(a *models.Agent, now time.Time) {
	a.Velocity = p.Velocity(*a, now)
	a.Efficiency = p.Efficiency(*a)
	a.CurrentCost = p.DynamicCost(*a)
}

func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
