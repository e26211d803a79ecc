package metrics

import "time"

// FileResultLabel enumerates per-file outcomes for counters.
type FileResultLabel string

const (
	FileFixed     FileResultLabel = "fixed"     // content changed and was written
	FileUnchanged FileResultLabel = "unchanged" // no bad prefix present
	FileSkipped   FileResultLabel = "skipped"   // unchanged and not rewritten
	FileFailed    FileResultLabel = "failed"
)

// RunOutcomeLabel enumerates the final status of a pass.
type RunOutcomeLabel string

const (
	RunSuccess  RunOutcomeLabel = "success"
	RunFailed   RunOutcomeLabel = "failed"
	RunCanceled RunOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for corrector passes. Implementations
// must be safe for concurrent use; per-file hooks are called from worker goroutines.
type Recorder interface {
	SetDiscoveredFiles(n int)
	IncFileResult(result FileResultLabel)
	AddReplacements(n int)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome RunOutcomeLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) SetDiscoveredFiles(int)           {}
func (NoopRecorder) IncFileResult(FileResultLabel)    {}
func (NoopRecorder) AddReplacements(int)              {}
func (NoopRecorder) ObserveRunDuration(time.Duration) {}
func (NoopRecorder) IncRunOutcome(RunOutcomeLabel)    {}
