package exportdir_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nidmafni/internal/exportdir"
)

// mkdirs creates each named directory inside a fresh temp dir.
func mkdirs(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.Mkdir(filepath.Join(dir, n), 0o755))
	}
	return dir
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestNext(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{"empty dir", nil, "nidm"},
		{"unrelated entries only", []string{"stats", "results.HEAD"}, "nidm"},
		{"plain nidm", []string{"nidm"}, "nidm_0001"},
		{"nidm and numbered", []string{"nidm", "nidm_0007"}, "nidm_0008"},
		{"numbered only", []string{"nidm_0007"}, "nidm_0008"},
		{"several numbered", []string{"nidm", "nidm_0001", "nidm_0002", "nidm_0010"}, "nidm_0011"},
		{"rollover of tens", []string{"nidm", "nidm_0099"}, "nidm_0100"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := mkdirs(t, tc.existing...)
			got, err := exportdir.Next(dir)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tc.want), got)
		})
	}
}

func TestNextMatchesFilesToo(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nidm"), []byte("x"), 0o644))

	got, err := exportdir.Next(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nidm_0001"), got)
}

func TestNextDoesNotCreateAnything(t *testing.T) {
	dir := mkdirs(t, "nidm", "nidm_0003", "stats")
	before := listNames(t, dir)

	got, err := exportdir.Next(dir)
	require.NoError(t, err)

	assert.Equal(t, before, listNames(t, dir))
	_, statErr := os.Stat(got)
	assert.True(t, errors.Is(statErr, fs.ErrNotExist), "allocated dir must not exist yet")
}

// Name order decides which export is "last": nidm_100 sorts after
// nidm_0120 even though it is numerically smaller.
func TestNextUsesNameOrder(t *testing.T) {
	dir := mkdirs(t, "nidm", "nidm_0120", "nidm_100")

	got, err := exportdir.Next(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nidm_0101"), got)
}

func TestNextMalformedSuffix(t *testing.T) {
	for _, name := range []string{"nidm_abc", "nidm.log", "nidm_", "nidm_-1"} {
		t.Run(name, func(t *testing.T) {
			dir := mkdirs(t, name)
			_, err := exportdir.Next(dir)
			require.Error(t, err)
			assert.ErrorIs(t, err, exportdir.ErrMalformedSuffix)
		})
	}
}

func TestNextOutOfRange(t *testing.T) {
	dir := mkdirs(t, "nidm", "nidm_9999")
	_, err := exportdir.Next(dir)
	assert.ErrorIs(t, err, exportdir.ErrSuffixOutOfRange)
}

// nidm_0000 is never allocated, so finding it means the directory was
// numbered by something else.
func TestNextZeroSuffix(t *testing.T) {
	dir := mkdirs(t, "nidm", "nidm_0000")
	_, err := exportdir.Next(dir)
	assert.ErrorIs(t, err, exportdir.ErrSuffixOutOfRange)
}

func TestNextMissingDir(t *testing.T) {
	_, err := exportdir.Next(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestParseSuffix(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr error
	}{
		{"nidm_0001", 1, nil},
		{"nidm_0007", 7, nil},
		{"nidm_9999", 9999, nil},
		{"nidm_12", 12, nil},
		{"nidm_10000", 0, exportdir.ErrSuffixOutOfRange},
		{"nidm_0000", 0, exportdir.ErrSuffixOutOfRange},
		{"nidm_99999999999999999999999", 0, exportdir.ErrSuffixOutOfRange},
		{"nidm", 0, exportdir.ErrMalformedSuffix},
		{"nidm_", 0, exportdir.ErrMalformedSuffix},
		{"nidm_12a", 0, exportdir.ErrMalformedSuffix},
		{"nidm_+12", 0, exportdir.ErrMalformedSuffix},
		{"other_0001", 0, exportdir.ErrMalformedSuffix},
	}
	for _, tc := range tests {
		got, err := exportdir.ParseSuffix(tc.in)
		if tc.wantErr != nil {
			assert.ErrorIs(t, err, tc.wantErr, "ParseSuffix(%q)", tc.in)
			continue
		}
		if assert.NoError(t, err, "ParseSuffix(%q)", tc.in) {
			assert.Equal(t, tc.want, got, "ParseSuffix(%q)", tc.in)
		}
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "nidm_0001", exportdir.Format(1))
	assert.Equal(t, "nidm_0042", exportdir.Format(42))
	assert.Equal(t, "nidm_9999", exportdir.Format(9999))
}
