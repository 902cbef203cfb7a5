package ui

import (
	"sync"
	"time"
)

// etaSmoothingFactor weights each new ETA estimate against the previous one.
const etaSmoothingFactor = 0.3

// ProgressTracker manages progress state across stages.
// It is safe for concurrent use.
type ProgressTracker struct {
	mu         sync.RWMutex
	stage      Stage
	current    int
	total      int
	note       string
	stageStart time.Time
	errors     int
	warnings   int
	lastETA    time.Duration
	now        func() time.Time
}

// ProgressStats contains a snapshot of current progress.
type ProgressStats struct {
	Stage      Stage
	Current    int
	Total      int
	Progress   float64
	Rate       float64 // notes per second in the current stage
	ETA        time.Duration
	NoteID     string
	ErrorCount int
	WarnCount  int
}

// NewProgressTracker creates a new progress tracker.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		stage:      StageScanning,
		stageStart: time.Now(),
		now:        time.Now,
	}
}

// SetStage transitions to a new stage.
func (p *ProgressTracker) SetStage(stage Stage, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stage = stage
	p.total = total
	p.current = 0
	p.note = ""
	p.stageStart = p.now()
	p.lastETA = 0
}

// Update updates progress within the current stage.
func (p *ProgressTracker) Update(current int, noteID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	if noteID != "" {
		p.note = noteID
	}
}

// AddError records an error or warning.
func (p *ProgressTracker) AddError(event ErrorEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.IsWarn {
		p.warnings++
	} else {
		p.errors++
	}
}

// Stats returns a snapshot. It takes the write lock because ETA smoothing
// updates state.
func (p *ProgressTracker) Stats() ProgressStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := ProgressStats{
		Stage:      p.stage,
		Current:    p.current,
		Total:      p.total,
		NoteID:     p.note,
		ErrorCount: p.errors,
		WarnCount:  p.warnings,
	}
	if p.total > 0 {
		stats.Progress = min(float64(p.current)/float64(p.total), 1.0)
	}
	if elapsed := p.now().Sub(p.stageStart); elapsed > 0 {
		stats.Rate = float64(p.current) / elapsed.Seconds()
	}
	stats.ETA = p.calculateETA()
	return stats
}

// calculateETA must be called with the lock held.
func (p *ProgressTracker) calculateETA() time.Duration {
	if p.current == 0 || p.total == 0 || p.current >= p.total {
		return 0
	}

	elapsed := p.now().Sub(p.stageStart)
	progress := float64(p.current) / float64(p.total)
	remaining := time.Duration(float64(elapsed)/progress) - elapsed
	if remaining < 0 {
		return 0
	}

	if p.lastETA == 0 {
		p.lastETA = remaining
		return remaining
	}

	p.lastETA = time.Duration(etaSmoothingFactor*float64(remaining) +
		(1-etaSmoothingFactor)*float64(p.lastETA))
	return p.lastETA
}
