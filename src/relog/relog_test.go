// FILE: relog/src/relog/relog_test.go
package relog

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"relog/src/internal/core"
	"relog/src/internal/correlate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetForTest tears down the once-guarded global state so each test
// can initialize against its own output buffer.
func resetForTest(t *testing.T, opts Options) *bytes.Buffer {
	t.Helper()

	global.mu.Lock()
	if global.rep != nil {
		rep := global.rep
		global.mu.Unlock()
		rep.Stop()
	} else {
		global.mu.Unlock()
	}

	global = &registry{
		level:      core.LevelInfo,
		enabled:    true,
		backtraces: true,
		sources:    map[string]*Source{"": Default},
	}
	initOnce = sync.Once{}

	var out bytes.Buffer
	if opts.Output == nil {
		opts.Output = &out
	}
	if opts.Colorize == nil {
		noColor := false
		opts.Colorize = &noColor
	}
	Initialize(opts)
	return &out
}

func TestInitializeIsIdempotent(t *testing.T) {
	out := resetForTest(t, Options{})
	first := ensure()

	var second bytes.Buffer
	Initialize(Options{Output: &second})

	assert.Same(t, first, ensure(), "second Initialize must not replace the reporter")

	Info(context.Background(), "after reinit attempt")
	Sync()
	assert.Contains(t, out.String(), "after reinit attempt")
	assert.Empty(t, second.String())
}

func TestLazyFirstUseInitialization(t *testing.T) {
	// Logging without Initialize must not panic; it sets up defaults.
	resetForTest(t, Options{})
	Info(context.Background(), "lazy %s", "init")
	Sync()
}

func TestLevelFiltering(t *testing.T) {
	out := resetForTest(t, Options{Level: LevelWarn})
	src := New("filter.test")

	src.Debug(context.Background(), "debug line")
	src.Info(context.Background(), "info line")
	src.Warning(context.Background(), "warn line")
	src.Error(context.Background(), "error line")
	src.Log(context.Background(), "app line")
	Sync()

	text := out.String()
	assert.NotContains(t, text, "debug line")
	assert.NotContains(t, text, "info line")
	assert.Contains(t, text, "warn line")
	assert.Contains(t, text, "error line")
	assert.Contains(t, text, "app line") // unleveled, never filtered
}

func TestPerSourceLevelOverride(t *testing.T) {
	out := resetForTest(t, Options{Level: LevelError})
	SetLevel("chatty", LevelDebug)

	New("chatty").Debug(context.Background(), "chatty debug")
	New("quiet").Info(context.Background(), "quiet info")
	Sync()

	assert.Contains(t, out.String(), "chatty debug")
	assert.NotContains(t, out.String(), "quiet info")
}

func TestDisabled(t *testing.T) {
	off := false
	out := resetForTest(t, Options{Enabled: &off})

	Error(context.Background(), "error line")
	Log(context.Background(), "app line")
	Sync()

	assert.Empty(t, out.String())
}

func TestDefaultSourceRendersBlankColumn(t *testing.T) {
	out := resetForTest(t, Options{})

	Info(context.Background(), "from default")
	Sync()

	line := out.String()
	require.Contains(t, line, "from default")
	// timestamp (21) + space + blank source column (15)
	assert.Equal(t, strings.Repeat(" ", 15), line[22:37])
}

func TestCorrelationFromContext(t *testing.T) {
	out := resetForTest(t, Options{})
	src := New("corr.test")

	ctx := correlate.WithID(context.Background(), "abc1")
	src.Info(ctx, "tagged")
	src.Info(context.Background(), "untagged")
	Sync()

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], " REQ abc1 tagged")
	assert.NotContains(t, lines[1], "REQ")
}

func TestCorrelationAmbientFallback(t *testing.T) {
	out := resetForTest(t, Options{})
	src := New("corr.ambient")

	correlate.Bind("77")
	src.Info(context.Background(), "ambient hit")
	correlate.Unbind()
	src.Info(context.Background(), "ambient gone")
	Sync()

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], " REQ 77 ambient hit")
	assert.NotContains(t, lines[1], "REQ")
}

func TestNewDeduplicatesSources(t *testing.T) {
	resetForTest(t, Options{})
	assert.Same(t, New("dup"), New("dup"))
}

func TestBacktracesOption(t *testing.T) {
	resetForTest(t, Options{})
	assert.True(t, BacktracesEnabled())

	off := false
	resetForTest(t, Options{Backtraces: &off})
	assert.False(t, BacktracesEnabled())
}

func TestMessageFormattingIsEager(t *testing.T) {
	out := resetForTest(t, Options{})
	Info(context.Background(), "widget %d of %q", 3, "batch")
	Sync()
	assert.Contains(t, out.String(), `widget 3 of "batch"`)
}
