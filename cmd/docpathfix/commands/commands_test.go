package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpathfix/internal/config"
	"git.home.luguber.info/inful/docpathfix/internal/foundation/errors"
	helpers "git.home.luguber.info/inful/docpathfix/internal/testutil/testutils"
)

const (
	badLink  = `<a href="../../../_book/docs/guide/index.html">Guide</a>`
	goodLink = `<a href="../../docs/guide/index.html">Guide</a>`
)

// run parses args like the binary does and executes the selected command.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("docpathfix"),
		kong.Vars{"version": "test"},
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	err = kctx.Run(&Global{Stdout: &out}, &cli)
	return out.String(), err
}

// inBuildDir creates a temp working directory holding a generated docs tree.
func inBuildDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	helpers.WriteTree(t, dir, files)
	t.Chdir(dir)
	return dir
}

func TestNoArgumentsRunsFix(t *testing.T) {
	dir := inBuildDir(t, map[string]string{
		"_book/docs/index.html":       badLink,
		"_book/docs/guide/index.html": "<p>clean</p>",
		"_book/other/index.html":      badLink,
	})

	out, err := run(t)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.ElementsMatch(t, []string{
		"path fixed " + filepath.Join("_book", "docs", "guide", "index.html"),
		"path fixed " + filepath.Join("_book", "docs", "index.html"),
	}, lines)

	helpers.NewFileAssertions(t, dir).
		AssertFileEquals("_book/docs/index.html", goodLink).
		AssertFileEquals("_book/docs/guide/index.html", "<p>clean</p>").
		AssertFileEquals("_book/other/index.html", badLink)
}

func TestFixWithoutDocsTreeSucceeds(t *testing.T) {
	inBuildDir(t, nil)

	out, err := run(t, "fix")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFixFlagsOverrideDefaults(t *testing.T) {
	dir := inBuildDir(t, map[string]string{
		"site/a.htm":  `src="../../../site/docs/x.png"`,
		"site/b.html": `src="../../../site/docs/x.png"`,
	})

	out, err := run(t, "fix",
		"--root", "site",
		"--pattern", "*.htm",
		"--bad", "../../../site/docs",
		"--good", "../docs",
		"-j", "1")
	require.NoError(t, err)
	assert.Equal(t, "path fixed "+filepath.Join("site", "a.htm")+"\n", out)

	helpers.NewFileAssertions(t, dir).
		AssertFileEquals("site/a.htm", `src="../docs/x.png"`).
		AssertFileEquals("site/b.html", `src="../../../site/docs/x.png"`)
}

func TestFixReadsConfigFile(t *testing.T) {
	dir := inBuildDir(t, map[string]string{"public/a.html": "../../../public/docs/a"})
	yaml := "root: public\n" +
		"rewrite:\n" +
		"  bad: ../../../public/docs\n" +
		"  good: ../../docs\n"
	require.NoError(t, os.WriteFile(config.DefaultConfigFile, []byte(yaml), 0o600))

	_, err := run(t)
	require.NoError(t, err)
	helpers.NewFileAssertions(t, dir).AssertFileEquals("public/a.html", "../../docs/a")
}

func TestExplicitConfigMustExist(t *testing.T) {
	inBuildDir(t, nil)

	_, err := run(t, "--config", "missing.yaml", "fix")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	assert.Equal(t, 7, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestFixRejectsNonIdempotentRule(t *testing.T) {
	inBuildDir(t, nil)

	_, err := run(t, "fix", "--bad", "docs", "--good", "../docs")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestFixWritesMetricsFile(t *testing.T) {
	dir := inBuildDir(t, map[string]string{
		"_book/docs/a.html": badLink + badLink,
	})

	_, err := run(t, "fix", "--metrics-file", "docpathfix.prom")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "docpathfix.prom"))
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "docpathfix_replacements_total 2")
	assert.Contains(t, text, `docpathfix_run_outcomes_total{outcome="success"} 1`)
}

func TestCheckReportsOffenders(t *testing.T) {
	dir := inBuildDir(t, map[string]string{
		"_book/docs/a.html": badLink + badLink,
		"_book/docs/b.html": goodLink,
	})

	out, err := run(t, "check")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	assert.Equal(t, 2, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	assert.Equal(t, "needs fix "+filepath.Join("_book", "docs", "a.html")+" (2)\n", out)

	// check never writes.
	helpers.NewFileAssertions(t, dir).AssertFileEquals("_book/docs/a.html", badLink+badLink)
}

func TestCheckAfterFixIsClean(t *testing.T) {
	inBuildDir(t, map[string]string{
		"_book/docs/a.html":         badLink,
		"_book/docs/deep/er/b.html": badLink,
	})

	_, err := run(t)
	require.NoError(t, err)

	out, err := run(t, "check")
	require.NoError(t, err)
	assert.Empty(t, out)
}

// lockedBuffer lets the test read output while watch passes write to it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchFixesNewFiles(t *testing.T) {
	dir := inBuildDir(t, map[string]string{
		"_book/docs/a.html": badLink,
		"_book/docs/b.html": goodLink,
	})
	cfg, err := loadConfig(&CLI{}, Selection{})
	require.NoError(t, err)
	cfg.Watch.Debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	var out lockedBuffer
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, cfg, &out) }()

	// Initial pass only touches the file that needed fixing.
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "path fixed "+filepath.Join("_book", "docs", "a.html"))
	}, 5*time.Second, 20*time.Millisecond)
	assert.NotContains(t, out.String(), "b.html")

	// Give the watcher time to register before producing new output.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_book", "docs", "c.html"), []byte(badLink), 0o600))

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(filepath.Join(dir, "_book", "docs", "c.html"))
		return err == nil && string(data) == goodLink
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchRequiresDocsTree(t *testing.T) {
	inBuildDir(t, nil)
	cfg, err := loadConfig(&CLI{}, Selection{})
	require.NoError(t, err)

	err = runWatch(context.Background(), cfg, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryDiscovery))
}
