package pathfix

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docpathfix/internal/foundation/errors"
	"git.home.luguber.info/inful/docpathfix/internal/logfields"
	"git.home.luguber.info/inful/docpathfix/internal/metrics"
	"git.home.luguber.info/inful/docpathfix/internal/observability"
)

// ConfirmationPrefix starts the line printed for every written file.
const ConfirmationPrefix = "path fixed "

// Options configures a Corrector.
type Options struct {
	Root    string
	Pattern string
	Rule    Rule
	// Concurrency bounds in-flight files; zero means runtime.NumCPU().
	Concurrency int
	// SkipUnchanged leaves files without the bad prefix untouched and silent.
	SkipUnchanged bool
	// Out receives confirmation lines; defaults to os.Stdout.
	Out      io.Writer
	Recorder metrics.Recorder
}

// FileResult describes one processed file.
type FileResult struct {
	Path         string
	Replacements int
	Changed      bool
	Written      bool
}

// Report summarizes one pass.
type Report struct {
	RunID        string
	Discovered   int
	Files        []FileResult
	Replacements int
	Duration     time.Duration
}

// Written returns the number of files rewritten in the pass.
func (r *Report) Written() int {
	n := 0
	for _, f := range r.Files {
		if f.Written {
			n++
		}
	}
	return n
}

// Corrector applies a Rule to every matching file below a root.
type Corrector struct {
	root          string
	pattern       string
	rule          Rule
	concurrency   int
	skipUnchanged bool
	recorder      metrics.Recorder

	outMu sync.Mutex
	out   io.Writer

	readFile  func(string) ([]byte, error)
	writeFile func(string, []byte) error
}

// New validates opts and returns a Corrector.
func New(opts Options) (*Corrector, error) {
	if opts.Root == "" {
		return nil, errors.ConfigError("root must not be empty").Build()
	}
	if err := opts.Rule.Validate(); err != nil {
		return nil, err
	}
	if opts.Pattern == "" {
		opts.Pattern = "*.html"
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	return &Corrector{
		root:          opts.Root,
		pattern:       opts.Pattern,
		rule:          opts.Rule,
		concurrency:   opts.Concurrency,
		skipUnchanged: opts.SkipUnchanged,
		recorder:      opts.Recorder,
		out:           opts.Out,
		readFile:      os.ReadFile,
		writeFile:     writeInPlace,
	}, nil
}

// writeInPlace truncates and rewrites path. The mode only applies if the file
// vanished in between; existing files keep theirs.
func writeInPlace(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644) //nolint:gosec // public HTML output, non-sensitive
}

// Run performs one pass. The first error aborts the pass; Report still
// describes the files completed before it.
func (c *Corrector) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: observability.RunIDFrom(ctx)}
	defer func() {
		report.Duration = time.Since(start)
		c.recorder.ObserveRunDuration(report.Duration)
	}()

	files, err := Discover(c.root, c.pattern)
	if err != nil {
		c.recorder.IncRunOutcome(metrics.RunFailed)
		return report, err
	}
	report.Discovered = len(files)
	c.recorder.SetDiscoveredFiles(len(files))
	observability.DebugContext(ctx, "Discovered documentation files",
		logfields.Pattern(c.pattern),
		logfields.Files(len(files)),
		logfields.Concurrency(c.concurrency))

	results := make([]FileResult, len(files))
	done := make([]bool, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := c.FixFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = res
			done[i] = true
			return nil
		})
	}
	err = g.Wait()

	for i, ok := range done {
		if ok {
			report.Files = append(report.Files, results[i])
			report.Replacements += results[i].Replacements
		}
	}

	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			c.recorder.IncRunOutcome(metrics.RunCanceled)
			if !errors.IsClassified(err) {
				err = errors.WrapError(err, errors.CategoryCanceled, "run canceled").Build()
			}
			return report, err
		}
		c.recorder.IncRunOutcome(metrics.RunFailed)
		return report, err
	}

	c.recorder.IncRunOutcome(metrics.RunSuccess)
	observability.InfoContext(ctx, "Path correction complete",
		logfields.Files(report.Written()),
		logfields.Replacements(report.Replacements),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return report, nil
}

// FixFile runs the read-modify-write cycle for one file and prints its
// confirmation line. Nothing is written or printed once ctx is done.
func (c *Corrector) FixFile(ctx context.Context, path string) (FileResult, error) {
	res := FileResult{Path: path}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	content, err := c.readFile(path)
	if err != nil {
		c.recorder.IncFileResult(metrics.FileFailed)
		return res, errors.ReadError(path, err).Build()
	}

	fixed, n := c.rule.Apply(content)
	res.Replacements = n
	res.Changed = n > 0
	if !res.Changed && c.skipUnchanged {
		c.recorder.IncFileResult(metrics.FileSkipped)
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := c.writeFile(path, fixed); err != nil {
		c.recorder.IncFileResult(metrics.FileFailed)
		return res, errors.WriteError(path, err).Build()
	}
	res.Written = true
	if res.Changed {
		c.recorder.IncFileResult(metrics.FileFixed)
		c.recorder.AddReplacements(n)
	} else {
		c.recorder.IncFileResult(metrics.FileUnchanged)
	}

	if err := c.confirm(ctx, path); err != nil {
		return res, err
	}
	slog.Debug("File rewritten", logfields.File(path), logfields.Replacements(n))
	return res, nil
}

func (c *Corrector) confirm(ctx context.Context, path string) error {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(c.out, ConfirmationPrefix+path); err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "write confirmation").Fatal().Build()
	}
	return nil
}

// Check reports files that still contain the bad prefix without modifying
// anything. Read errors abort the check.
func (c *Corrector) Check(ctx context.Context) ([]FileResult, error) {
	files, err := Discover(c.root, c.pattern)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := c.readFile(path)
			if err != nil {
				return errors.ReadError(path, err).Build()
			}
			_, n := c.rule.Apply(content)
			results[i] = FileResult{Path: path, Replacements: n, Changed: n > 0}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var offenders []FileResult
	for _, r := range results {
		if r.Changed {
			offenders = append(offenders, r)
		}
	}
	return offenders, nil
}
