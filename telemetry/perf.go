package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one generation.
const (
	PhaseContests   = "contests"
	PhaseExhaustion = "exhaustion"
	PhaseCleanup    = "cleanup"
	PhaseTelemetry  = "telemetry"
)

// PerfSample holds timing data for a single generation.
type PerfSample struct {
	Duration time.Duration
	Phases   map[string]time.Duration
}

// PerfCollector tracks generation timing over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	genStart      time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a collector averaging over windowSize generations.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 50
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartGeneration begins timing a new generation.
func (p *PerfCollector) StartGeneration() {
	p.genStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndGeneration finishes timing and records the sample.
func (p *PerfCollector) EndGeneration() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		Duration: now.Sub(p.genStart),
		Phases:   p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated timing statistics.
type PerfStats struct {
	AvgDuration time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration

	// Phase breakdown
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	GenerationsPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total, minDur, maxDur time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.Duration
		if i == 0 || s.Duration < minDur {
			minDur = s.Duration
		}
		if s.Duration > maxDur {
			maxDur = s.Duration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var perSec float64
	if avg > 0 {
		perSec = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgDuration:          avg,
		MinDuration:          minDur,
		MaxDuration:          maxDur,
		PhaseAvg:             phaseAvg,
		PhasePct:             phasePct,
		GenerationsPerSecond: perSec,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_gen_us", s.AvgDuration.Microseconds()),
		slog.Int64("min_gen_us", s.MinDuration.Microseconds()),
		slog.Int64("max_gen_us", s.MaxDuration.Microseconds()),
		slog.Float64("gens_per_sec", s.GenerationsPerSecond),
	}
	for _, phase := range []string{PhaseContests, PhaseExhaustion, PhaseCleanup, PhaseTelemetry} {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of timing stats.
type PerfStatsCSV struct {
	Generation    int     `csv:"generation"`
	AvgGenUS      int64   `csv:"avg_gen_us"`
	MinGenUS      int64   `csv:"min_gen_us"`
	MaxGenUS      int64   `csv:"max_gen_us"`
	GensPerSec    float64 `csv:"gens_per_sec"`
	ContestsPct   float64 `csv:"contests_pct"`
	ExhaustionPct float64 `csv:"exhaustion_pct"`
	CleanupPct    float64 `csv:"cleanup_pct"`
	TelemetryPct  float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(generation int) PerfStatsCSV {
	return PerfStatsCSV{
		Generation:    generation,
		AvgGenUS:      s.AvgDuration.Microseconds(),
		MinGenUS:      s.MinDuration.Microseconds(),
		MaxGenUS:      s.MaxDuration.Microseconds(),
		GensPerSec:    s.GenerationsPerSecond,
		ContestsPct:   s.PhasePct[PhaseContests],
		ExhaustionPct: s.PhasePct[PhaseExhaustion],
		CleanupPct:    s.PhasePct[PhaseCleanup],
		TelemetryPct:  s.PhasePct[PhaseTelemetry],
	}
}
