package testutil

import "sync"

// WarningRecorder collects engine warnings for assertions.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type WarningRecorder struct {
	mu       sync.Mutex
	warnings []error
}

// NewWarningRecorder creates an empty recorder.
func NewWarningRecorder() *WarningRecorder {
	return &WarningRecorder{}
}

// Handle records w. Pass it to engine.WithWarningHandler.
func (r *WarningRecorder) Handle(w error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, w)
}

// Warnings returns a copy of the recorded warnings in arrival order.
func (r *WarningRecorder) Warnings() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.warnings...)
}

// Len returns the number of recorded warnings.
func (r *WarningRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.warnings)
}

// Reset discards all recorded warnings.
func (r *WarningRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = nil
}
