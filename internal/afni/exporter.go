// Package afni is the AFNI back-end of the NIDM-Results exporter.
//
// An Exporter is built once per run. Construction resolves where the export
// goes and reads the dataset history; after that it only answers the
// nidm.Producer calls.
package afni

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"nidmafni/internal/exportdir"
	"nidmafni/internal/nidm"
	"nidmafni/internal/procexec"
)

// SoftwareName is the label of the software agent.
const SoftwareName = "AFNI"

// Tools names the AFNI binaries the exporter shells out to.
type Tools struct {
	// Version prints the version banner with -ver.
	Version string

	// Info dumps dataset metadata, including its history.
	Info string
}

// DefaultTools expects afni and 3dinfo on PATH.
func DefaultTools() Tools {
	return Tools{Version: "afni", Info: "3dinfo"}
}

// Exporter implements nidm.Producer for an AFNI group result.
type Exporter struct {
	opts    Options
	runner  procexec.Runner
	logger  *zap.Logger
	tools   Tools
	timeout time.Duration

	afniDir   string
	exportDir string
	history   string
}

var _ nidm.Producer = (*Exporter)(nil)

// Option customises an Exporter.
type Option func(*Exporter)

// WithTools overrides the AFNI binaries.
func WithTools(t Tools) Option {
	return func(e *Exporter) { e.tools = t }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTimeout bounds every AFNI tool invocation.
func WithTimeout(d time.Duration) Option {
	return func(e *Exporter) { e.timeout = d }
}

// New validates opts, picks the export directory next to the dataset and
// reads the dataset history. Nothing is written.
func New(ctx context.Context, opts Options, runner procexec.Runner, options ...Option) (*Exporter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if runner == nil {
		return nil, fmt.Errorf("afni: runner is required")
	}

	e := &Exporter{
		opts:   opts,
		runner: runner,
		logger: zap.NewNop(),
		tools:  DefaultTools(),
	}
	for _, o := range options {
		o(e)
	}

	e.afniDir = filepath.Dir(opts.Dataset)
	dir, err := exportdir.Next(e.afniDir)
	if err != nil {
		return nil, fmt.Errorf("afni: allocate export dir: %w", err)
	}
	e.exportDir = dir
	e.logger.Debug("allocated export directory", zap.String("dir", dir))

	if err := e.readHistory(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// readHistory stores the raw metadata dump of the dataset.
//
// TODO: extract the statistic, parameter-estimate and contrast map paths,
// degrees of freedom, coordinate space and generating program (3dttest++,
// 3dMEMA, ...) from the history once its format is pinned down.
func (e *Exporter) readHistory(ctx context.Context) error {
	out, err := procexec.Output(ctx, e.runner, e.command(e.tools.Info, e.opts.Dataset))
	if err != nil {
		return fmt.Errorf("afni: read history of %s: %w", e.opts.Dataset, err)
	}
	e.history = out
	e.logger.Debug("read dataset history",
		zap.String("dataset", e.opts.Dataset),
		zap.Int("bytes", len(out)))
	return nil
}

func (e *Exporter) command(binary string, args ...string) procexec.Command {
	return procexec.Command{
		Binary:  binary,
		Args:    args,
		Timeout: e.timeout,
	}
}

// Options returns the options the exporter was built with.
func (e *Exporter) Options() Options { return e.opts }

// AFNIDir is the directory holding the statistics dataset.
func (e *Exporter) AFNIDir() string { return e.afniDir }

// ExportDir is where the export should be written. It does not exist yet.
func (e *Exporter) ExportDir() string { return e.exportDir }

// History is the unparsed metadata dump of the dataset.
func (e *Exporter) History() string { return e.history }

// Meta describes this run for nidm.Assemble.
func (e *Exporter) Meta() nidm.Meta {
	inputs := map[string]string{"statistic": e.opts.Dataset}
	if e.opts.ClusterSimDataset != "" {
		inputs["cluster_simulation"] = e.opts.ClusterSimDataset
	}
	return nidm.Meta{
		NIDMVersion: e.opts.NIDMVersion,
		ExportDir:   e.exportDir,
		Inputs:      inputs,
		Thresholds: nidm.Thresholds{
			PUncorrected: e.opts.PUncorrected,
			PCorrected:   e.opts.PCorrected,
		},
	}
}

// Software runs "afni -ver" and wraps the banner in a software agent. The
// banner is kept whole, e.g.
// "Precompiled binary macosx_10.7_Intel_64: Sep 25 2014 (Version AFNI_2011_12_21_1014)".
func (e *Exporter) Software(ctx context.Context) (*nidm.SoftwareAgent, error) {
	sw, err := ProbeSoftware(ctx, e.runner, e.command(e.tools.Version))
	if err != nil {
		return nil, err
	}
	e.logger.Info("detected AFNI", zap.String("version", sw.Version))
	return sw, nil
}

// ProbeSoftware runs cmd with -ver appended and wraps its trimmed stdout in
// a fresh software agent. Each call yields a new identifier.
func ProbeSoftware(ctx context.Context, r procexec.Runner, cmd procexec.Command) (*nidm.SoftwareAgent, error) {
	cmd.Args = append(append([]string(nil), cmd.Args...), "-ver")
	version, err := procexec.Output(ctx, r, cmd)
	if err != nil {
		return nil, fmt.Errorf("afni: query version: %w", err)
	}
	return nidm.NewSoftwareAgent(SoftwareName, version, nidm.NLXAFNI), nil
}

// ModelFittings is not extracted from AFNI results yet.
func (e *Exporter) ModelFittings(ctx context.Context) (map[string]*nidm.ModelFitting, error) {
	e.notExtracted("model fittings")
	return map[string]*nidm.ModelFitting{}, nil
}

// Contrasts is not extracted from AFNI results yet.
func (e *Exporter) Contrasts(ctx context.Context) (map[string]*nidm.Contrast, error) {
	e.notExtracted("contrasts")
	return map[string]*nidm.Contrast{}, nil
}

// Inferences is not extracted from AFNI results yet; peaks and clusters
// would come from the cluster simulation dataset.
func (e *Exporter) Inferences(ctx context.Context) (map[string]*nidm.Inference, error) {
	e.notExtracted("inferences")
	return map[string]*nidm.Inference{}, nil
}

func (e *Exporter) notExtracted(what string) {
	e.logger.Debug("extraction not implemented for AFNI; reporting none", zap.String("records", what))
}

// Namespaces adds the AFNI namespace.
func (e *Exporter) Namespaces() []nidm.Namespace {
	return []nidm.Namespace{nidm.AFNI}
}
