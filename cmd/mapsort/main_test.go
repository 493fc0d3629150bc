package main

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	sserrors "github.com/tamirms/samplesort/errors"
	"github.com/tamirms/samplesort/keyfile"
)

func TestParseArgsConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "mapsort.toml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
in = "keys.txt"
strategy = "lock-free"
exponent = 3
stall = "2s"
verify = true
`), 0o644))

	o, err := parseArgs([]string{"-config", cfg, "-strategy", "deferred"})
	require.NoError(t, err)
	assert.Equal(t, "keys.txt", o.in)
	assert.Equal(t, "deferred", o.strategy, "command line overrides the file")
	assert.Equal(t, 3, o.exponent)
	assert.Equal(t, 2*time.Second, o.stall)
	assert.True(t, o.verify)
}

func TestParseArgsConfigErrors(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte(`threads = 4`), 0o644))
	_, err := parseArgs([]string{"-config", unknown})
	require.ErrorContains(t, err, "unknown key")

	badValue := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(badValue, []byte(`workers = "many"`), 0o644))
	_, err = parseArgs([]string{"-config", badValue})
	require.Error(t, err)

	_, err = parseArgs([]string{"-config", filepath.Join(dir, "missing.toml")})
	require.Error(t, err)
}

func TestRunSortsFile(t *testing.T) {
	dir := t.TempDir()
	keys := []int64{5, 3, 8, 1, 9, 2, -4, 7, 7, 0, 12, 6}
	want := slices.Clone(keys)
	slices.Sort(want)

	for _, tt := range []struct {
		strategy string
		in       string
		wantOut  string
	}{
		{"deferred-offset", "keys.txt", "MapsortOutput.txt"},
		{"lock-free", "keys.bin", "ParallelQSort.txt"},
	} {
		t.Run(tt.strategy, func(t *testing.T) {
			t.Chdir(dir)
			require.NoError(t, keyfile.Write(tt.in, keys))

			o, err := parseArgs([]string{"-in", tt.in, "-strategy", tt.strategy, "-workers", "3", "-seed", "11", "-verify"})
			require.NoError(t, err)
			require.NoError(t, run(context.Background(), o, zap.NewNop()))

			got, err := keyfile.Read(tt.wantOut)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestRunConfigurationError(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "keys.txt")
	require.NoError(t, keyfile.Write(in, []int64{3, 1, 2}))

	o, err := parseArgs([]string{"-in", in, "-workers", "8", "-out", filepath.Join(dir, "out.txt")})
	require.NoError(t, err)
	err = run(context.Background(), o, zap.NewNop())
	require.ErrorIs(t, err, sserrors.ErrTooManyWorkers)

	o, err = parseArgs([]string{"-in", in, "-strategy", "bogus"})
	require.NoError(t, err)
	require.ErrorIs(t, run(context.Background(), o, zap.NewNop()), sserrors.ErrInvalidStrategy)
}
