// Package exportdir picks the directory a NIDM export is written to.
//
// Exports live next to the AFNI dataset they describe and are numbered so
// that a new run never overwrites an old one:
//
//	<afni dir>/nidm
//	<afni dir>/nidm_0001
//	<afni dir>/nidm_0002
//	...
//
// Next only reads the parent directory. Creating the chosen directory is the
// writer's job.
package exportdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// Prefix is the name shared by every export directory.
	Prefix = "nidm"

	// MaxSuffix is the largest number that fits the 4-digit suffix.
	MaxSuffix = 9999

	suffixSep = "_"
)

var (
	// ErrMalformedSuffix is returned when an entry starting with Prefix is not
	// Prefix itself and not Prefix + "_" + digits.
	ErrMalformedSuffix = errors.New("exportdir: malformed export directory suffix")

	// ErrSuffixOutOfRange is returned when a suffix is outside 1..MaxSuffix,
	// or when the next one would be.
	ErrSuffixOutOfRange = errors.New("exportdir: export directory suffix out of range")
)

// Format renders the directory name for export number n (n >= 1).
func Format(n int) string {
	return fmt.Sprintf("%s%s%04d", Prefix, suffixSep, n)
}

// ParseSuffix extracts the export number from a name like "nidm_0007".
func ParseSuffix(name string) (int, error) {
	digits, ok := strings.CutPrefix(name, Prefix+suffixSep)
	if !ok || digits == "" {
		return 0, fmt.Errorf("%w: %q", ErrMalformedSuffix, name)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrMalformedSuffix, name)
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > MaxSuffix {
		return 0, fmt.Errorf("%w: %q", ErrSuffixOutOfRange, name)
	}
	return n, nil
}

// Last returns the lexicographically greatest entry of baseDir whose name
// starts with Prefix, or "" if there is none.
func Last(baseDir string) (string, error) {
	// os.ReadDir sorts by name.
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return "", fmt.Errorf("exportdir: list %s: %w", baseDir, err)
	}
	var last string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), Prefix) {
			last = e.Name()
		}
	}
	return last, nil
}

// Next returns the path of the next unused export directory inside baseDir.
//
// The "last" existing export is chosen by name order, not numeric order, so
// suffixes of mixed width (nidm_0099 vs nidm_10000) can confuse it. Suffixes
// are capped at MaxSuffix for that reason.
func Next(baseDir string) (string, error) {
	last, err := Last(baseDir)
	if err != nil {
		return "", err
	}

	switch last {
	case "":
		return filepath.Join(baseDir, Prefix), nil
	case Prefix:
		return filepath.Join(baseDir, Format(1)), nil
	}

	n, err := ParseSuffix(last)
	if err != nil {
		return "", err
	}
	if n+1 > MaxSuffix {
		return "", fmt.Errorf("%w: %q has no successor", ErrSuffixOutOfRange, last)
	}
	return filepath.Join(baseDir, Format(n+1)), nil
}
