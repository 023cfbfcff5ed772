package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	l := New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	l.LogLoad(ctx, "inters_segments.shp", 12, nil)
	l.LogSkip(ctx, 3, errors.New("bad coordinate"))
	l.LogWrite(ctx, "out.geojson", 2, errors.New("disk full"))

	out := buf.String()
	assert.Contains(t, out, "source loaded")
	assert.Contains(t, out, "count=12")
	assert.Contains(t, out, "record skipped")
	assert.Contains(t, out, "row=3")
	assert.Contains(t, out, "write failed")
}

func TestSetup_TeesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.log")
	l, closeFn, err := Setup(Options{Level: "info", Format: "json", File: path})
	require.NoError(t, err)

	l.Info("hello", "k", "v")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		Noop().Error("dropped")
	})
}
