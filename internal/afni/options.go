package afni

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions is wrapped by every Options.Validate failure.
var ErrInvalidOptions = errors.New("afni: invalid options")

// Options are the inputs of one export run.
type Options struct {
	// Dataset is the AFNI statistics dataset (e.g. stats+tlrc.HEAD). Its
	// directory is where the export directory is allocated.
	Dataset string

	// ClusterSimDataset is the 3dClustSim output used for cluster
	// correction.
	ClusterSimDataset string

	PUncorrected float64
	PCorrected   float64

	// NIDMVersion is the NIDM-Results version to target.
	NIDMVersion string
}

// DefaultOptions returns options with the standard thresholds for dataset.
func DefaultOptions(dataset, clusterSim string) Options {
	return Options{
		Dataset:           dataset,
		ClusterSimDataset: clusterSim,
		PUncorrected:      0.01,
		PCorrected:        0.05,
		NIDMVersion:       "0.2.0",
	}
}

// Validate reports the first problem with o.
func (o Options) Validate() error {
	if o.Dataset == "" {
		return fmt.Errorf("%w: dataset is required", ErrInvalidOptions)
	}
	if !(o.PUncorrected > 0 && o.PUncorrected < 1) {
		return fmt.Errorf("%w: uncorrected p-value must be in (0,1), got %g", ErrInvalidOptions, o.PUncorrected)
	}
	if !(o.PCorrected > 0 && o.PCorrected < 1) {
		return fmt.Errorf("%w: corrected p-value must be in (0,1), got %g", ErrInvalidOptions, o.PCorrected)
	}
	if o.NIDMVersion == "" {
		return fmt.Errorf("%w: NIDM version is required", ErrInvalidOptions)
	}
	return nil
}
