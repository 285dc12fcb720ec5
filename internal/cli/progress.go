package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
)

const progressInterval = 100 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ProgressTracker redraws one status line with the rows inserted so far while
// a CSV file is loaded.
type ProgressTracker struct {
	out     io.Writer
	enabled bool
	rows    atomic.Int64

	once sync.Once
	stop chan struct{}
	done chan struct{}
}

// NewProgressTracker creates a tracker; a disabled tracker ignores all calls.
func NewProgressTracker(out io.Writer, enabled bool) *ProgressTracker {
	return &ProgressTracker{
		out:     out,
		enabled: enabled,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start begins redrawing under label. Only the first call has an effect.
func (pt *ProgressTracker) Start(label string) {
	if !pt.enabled {
		return
	}
	pt.once.Do(func() {
		go pt.loop(label, time.Now())
	})
}

// Update records the rows written so far. It matches importer.ProgressCallback.
func (pt *ProgressTracker) Update(_ string, rows int64) {
	pt.rows.Store(rows)
}

// Stop ends the redraw loop and restores the terminal line.
func (pt *ProgressTracker) Stop() {
	if !pt.enabled {
		return
	}
	started := true
	pt.once.Do(func() { started = false })
	if !started {
		return
	}
	close(pt.stop)
	<-pt.done
}

func (pt *ProgressTracker) loop(label string, start time.Time) {
	defer close(pt.done)

	fmt.Fprint(pt.out, "\033[?25l") // Hide cursor
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-pt.stop:
			fmt.Fprint(pt.out, "\r\033[K\033[?25h") // Clear line, show cursor
			return
		case now := <-ticker.C:
			rows := pt.rows.Load()
			var rate int64
			if secs := now.Sub(start).Seconds(); secs > 0 {
				rate = int64(float64(rows) / secs)
			}
			fmt.Fprint(pt.out, "\r\033[K")
			color.New(color.FgCyan).Fprintf(pt.out, "%s ", label)
			fmt.Fprintf(pt.out, "%s %s rows (%s/s)",
				spinnerFrames[frame%len(spinnerFrames)], fmtNum(rows), fmtNum(rate))
		}
	}
}

func fmtNum(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

func getShortPath(filePath string) string {
	return filepath.Base(filePath)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
