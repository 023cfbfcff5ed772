package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "X", c.XField)
	assert.Equal(t, "Y", c.YField)
	assert.Equal(t, "EPSG:4326", c.SourceCRS)
	assert.Equal(t, "EPSG:3857", c.WorkingCRS)
	assert.Equal(t, "rtreego", c.Backend)
	assert.Equal(t, "skip", c.OnError)
	assert.Positive(t, c.Workers)
}

func TestFromEnv(t *testing.T) {
	c := Default()
	err := c.FromEnv(envMap(map[string]string{
		"NEARSEG_SEGMENTS":  "a.shp, b.geojson,",
		"NEARSEG_RECORDS":   "atr.csv",
		"NEARSEG_TOLERANCE": "35.5",
		"NEARSEG_WORKERS":   "3",
		"NEARSEG_INDEX":     "tidwall",
		"NEARSEG_X_FIELD":   "lon",
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"a.shp", "b.geojson"}, c.Segments)
	assert.Equal(t, "atr.csv", c.Records)
	assert.Equal(t, 35.5, c.Tolerance)
	assert.Equal(t, 3, c.Workers)
	assert.Equal(t, "tidwall", c.Backend)
	assert.Equal(t, "lon", c.XField)
	assert.Equal(t, "Y", c.YField)
}

func TestFromEnv_EmptySourceCRSDisablesReprojection(t *testing.T) {
	c := Default()
	require.NoError(t, c.FromEnv(envMap(map[string]string{"NEARSEG_SOURCE_CRS": ""})))
	assert.Empty(t, c.SourceCRS)
}

func TestFromEnv_BadNumber(t *testing.T) {
	c := Default()
	err := c.FromEnv(envMap(map[string]string{"NEARSEG_TOLERANCE": "far"}))
	assert.ErrorContains(t, err, "NEARSEG_TOLERANCE")

	err = c.FromEnv(envMap(map[string]string{"NEARSEG_WORKERS": "many"}))
	assert.ErrorContains(t, err, "NEARSEG_WORKERS")
}

func TestFlagsOverrideEnv(t *testing.T) {
	c := Default()
	require.NoError(t, c.FromEnv(envMap(map[string]string{
		"NEARSEG_TOLERANCE": "10",
		"NEARSEG_RECORDS":   "env.csv",
		"NEARSEG_SEGMENTS":  "env.shp",
	})))

	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	c.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-tolerance", "50", "-segments", "a.shp,b.shp", "-segments", "c.csv"}))

	assert.Equal(t, 50.0, c.Tolerance)
	assert.Equal(t, "env.csv", c.Records)
	assert.Equal(t, []string{"a.shp", "b.shp", "c.csv"}, c.Segments)
}

func TestFlagsKeepEnvSegmentsWhenUnset(t *testing.T) {
	c := Default()
	require.NoError(t, c.FromEnv(envMap(map[string]string{"NEARSEG_SEGMENTS": "env.shp"})))

	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	c.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-tolerance", "50"}))

	assert.Equal(t, []string{"env.shp"}, c.Segments)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Segments = []string{"segments.shp"}
	c.Records = "atr.csv"
	assert.NoError(t, c.Validate())

	c.SourceCRS = ""
	assert.NoError(t, c.Validate())

	bad := Default()
	bad.Tolerance = 0
	bad.Backend = "quadtree"
	bad.OnError = "ignore"
	bad.WorkingCRS = "EPSG:2249"
	err := bad.Validate()
	require.Error(t, err)
	for _, want := range []string{"no segment sources", "no records file", "tolerance", "quadtree", "ignore", "EPSG:2249"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("NEARSEG_TEST_ONLY_VALUE=from-file\n"), 0o644))
	t.Setenv("NEARSEG_TEST_ONLY_VALUE", "")
	os.Unsetenv("NEARSEG_TEST_ONLY_VALUE")

	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "from-file", os.Getenv("NEARSEG_TEST_ONLY_VALUE"))

	assert.NoError(t, LoadEnv(filepath.Join(dir, "missing.env")))
}
