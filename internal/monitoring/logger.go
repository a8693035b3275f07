package monitoring

import (
	"log"
	"sync"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// WarningCounter tallies recoverable problems (skipped files, excluded clips)
// so a run can report totals instead of silently dropping records.
type WarningCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewWarningCounter returns an empty counter.
func NewWarningCounter() *WarningCounter {
	return &WarningCounter{counts: make(map[string]int)}
}

// Warnf logs a warning under the given category and increments its count.
func (wc *WarningCounter) Warnf(category, format string, v ...interface{}) {
	wc.mu.Lock()
	wc.counts[category]++
	wc.mu.Unlock()
	Logf("warning [%s]: "+format, append([]interface{}{category}, v...)...)
}

// Count returns the number of warnings recorded under category.
func (wc *WarningCounter) Count(category string) int {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return wc.counts[category]
}

// Total returns the number of warnings across all categories.
func (wc *WarningCounter) Total() int {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	total := 0
	for _, n := range wc.counts {
		total += n
	}
	return total
}

// Summary returns a copy of the per-category counts.
func (wc *WarningCounter) Summary() map[string]int {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	out := make(map[string]int, len(wc.counts))
	for k, v := range wc.counts {
		out[k] = v
	}
	return out
}
