package profiler

import (
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// Profiler tracks frame rate, skipped frames and memory statistics.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	skipped        int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	fps            float64
}

// NewProfiler creates a new Profiler with the specified options applied.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Skip records a frame that was dropped without rendering.
func (p *Profiler) Skip() {
	p.skipped++
}

// FPS returns the frame rate measured over the last completed interval, 0 before the first one.
func (p *Profiler) FPS() float64 {
	return p.fps
}

// Tick should be called once per rendered frame.
// Logs FPS, skipped frames, heap usage, allocation rate and GC pauses when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	seconds := max(elapsed.Seconds(), 1e-9)
	p.fps = float64(p.frameCount) / seconds

	runtime.ReadMemStats(&p.memStats)
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / seconds

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		start := p.lastGCCount
		if gcCount-start > 256 {
			start = gcCount - 256
		}
		for i := start; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	log.WithFields(log.Fields{
		"fps":          p.fps,
		"skipped":      p.skipped,
		"heapMB":       float64(p.memStats.Alloc) / 1024 / 1024,
		"allocRateMBs": allocRateMB,
		"gc":           gcCount,
		"gcLastUs":     lastPauseUs,
		"gcMaxUs":      maxPauseUs,
		"sysMB":        float64(p.memStats.Sys) / 1024 / 1024,
	}).Info("profiler")

	p.frameCount = 0
	p.skipped = 0
	p.lastTime = now
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
