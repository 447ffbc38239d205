// Package nidm holds the records of a NIDM-Results export and assembles
// them from a Producer.
//
// The package does not build an RDF graph. It collects the records a
// back-end reports into a Document and lays that document out on disk as a
// small bundle (see GenerateBundle).
package nidm

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Meta describes the export run itself rather than the analysis.
type Meta struct {
	// NIDMVersion is the NIDM-Results version being targeted, e.g. "0.2.0".
	NIDMVersion string `yaml:"nidm_version"`

	ExportDir   string    `yaml:"export_dir"`
	GeneratedAt time.Time `yaml:"generated_at"`

	// Inputs maps a role ("statistic", "cluster_simulation") to a path.
	Inputs map[string]string `yaml:"inputs,omitempty"`

	Thresholds Thresholds `yaml:"thresholds"`
}

// Thresholds are the p-values the analysis was thresholded at.
type Thresholds struct {
	PUncorrected float64 `yaml:"p_uncorrected"`
	PCorrected   float64 `yaml:"p_corrected"`
}

// Document is everything one export contains.
type Document struct {
	Meta          Meta                     `yaml:"meta"`
	Namespaces    []Namespace              `yaml:"namespaces"`
	Software      *SoftwareAgent           `yaml:"software"`
	ModelFittings map[string]*ModelFitting `yaml:"model_fittings"`
	Contrasts     map[string]*Contrast     `yaml:"contrasts"`
	Inferences    map[string]*Inference    `yaml:"inferences"`
}

// Assemble asks p for each part of the export, one after the other, and
// returns the combined document. Nil maps from p are replaced by empty ones.
func Assemble(ctx context.Context, p Producer, meta Meta) (*Document, error) {
	software, err := p.Software(ctx)
	if err != nil {
		return nil, fmt.Errorf("nidm: software: %w", err)
	}
	if software == nil {
		return nil, fmt.Errorf("nidm: software: producer returned no agent")
	}

	fittings, err := p.ModelFittings(ctx)
	if err != nil {
		return nil, fmt.Errorf("nidm: model fittings: %w", err)
	}
	contrasts, err := p.Contrasts(ctx)
	if err != nil {
		return nil, fmt.Errorf("nidm: contrasts: %w", err)
	}
	inferences, err := p.Inferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("nidm: inferences: %w", err)
	}

	if fittings == nil {
		fittings = map[string]*ModelFitting{}
	}
	if contrasts == nil {
		contrasts = map[string]*Contrast{}
	}
	if inferences == nil {
		inferences = map[string]*Inference{}
	}

	return &Document{
		Meta:          meta,
		Namespaces:    mergeNamespaces(BaseNamespaces(), p.Namespaces()),
		Software:      software,
		ModelFittings: fittings,
		Contrasts:     contrasts,
		Inferences:    inferences,
	}, nil
}

// mergeNamespaces de-duplicates by prefix (first wins) and sorts by prefix.
func mergeNamespaces(lists ...[]Namespace) []Namespace {
	seen := make(map[string]bool)
	var out []Namespace
	for _, l := range lists {
		for _, ns := range l {
			if seen[ns.Prefix] {
				continue
			}
			seen[ns.Prefix] = true
			out = append(out, ns)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out
}

// Empty reports whether the document carries no analysis results beyond the
// software agent.
func (d *Document) Empty() bool {
	return len(d.ModelFittings) == 0 && len(d.Contrasts) == 0 && len(d.Inferences) == 0
}
