package nidm

import "context"

// Producer is the contract every analysis-tool back-end implements. The
// document assembler calls each method once per export.
//
// Map keys are the identifiers the assembler links records by: a
// ModelFitting key for ModelFittings, a contrast estimation key for
// Contrasts, and so on. A back-end with nothing to report returns an empty
// map, never nil.
type Producer interface {
	// Software returns the agent that produced the analysis.
	Software(ctx context.Context) (*SoftwareAgent, error)

	// ModelFittings returns model-fitting records keyed by analysis.
	ModelFittings(ctx context.Context) (map[string]*ModelFitting, error)

	// Contrasts returns contrast records keyed by estimation.
	Contrasts(ctx context.Context) (map[string]*Contrast, error)

	// Inferences returns inference records keyed by contrast estimation.
	Inferences(ctx context.Context) (map[string]*Inference, error)

	// Namespaces lists back-end specific namespaces to declare in addition
	// to BaseNamespaces.
	Namespaces() []Namespace
}
