package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nidmafni/internal/afni"
	"nidmafni/internal/exportdir"
	"nidmafni/internal/nidm"
	"nidmafni/internal/procexec"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		pUncor      float64
		pCor        float64
		nidmVersion string
		dryRun      bool
	)
	cmd := &cobra.Command{
		Use:   "export <stat-dataset> <clustsim-dataset>",
		Short: "Export an AFNI result as NIDM-Results",
		Long: `Export the AFNI statistics dataset as NIDM-Results.

The export is written to a new directory next to the dataset: nidm if none
exists yet, otherwise the next free nidm_NNNN. AFNI must be installed: the
version is read from 'afni -ver' and the dataset history from '3dinfo'.

Example:
  nidmafni export group/stats+tlrc.HEAD group/ClustSim.NN1_1sided.niml --p-uncor 0.001`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := a.settings.Defaults
			opts := afni.Options{
				Dataset:           args[0],
				ClusterSimDataset: args[1],
				PUncorrected:      d.PUncorrected,
				PCorrected:        d.PCorrected,
				NIDMVersion:       d.NIDMVersion,
			}
			flags := cmd.Flags()
			if flags.Changed("p-uncor") {
				opts.PUncorrected = pUncor
			}
			if flags.Changed("p-cor") {
				opts.PCorrected = pCor
			}
			if flags.Changed("nidm-version") {
				opts.NIDMVersion = nidmVersion
			}
			return a.runExport(cmd, opts, dryRun)
		},
	}
	cmd.Flags().Float64Var(&pUncor, "p-uncor", 0.01, "uncorrected p-value threshold")
	cmd.Flags().Float64Var(&pCor, "p-cor", 0.05, "corrected p-value threshold")
	cmd.Flags().StringVar(&nidmVersion, "nidm-version", "0.2.0", "NIDM-Results version to target")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the export instead of writing it")
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, opts afni.Options, dryRun bool) error {
	ctx := cmd.Context()
	timeout, err := a.settings.ToolTimeout()
	if err != nil {
		return err
	}

	a.logger.Info("exporting AFNI result",
		zap.String("dataset", opts.Dataset),
		zap.String("clustsim", opts.ClusterSimDataset),
		zap.Float64("p_uncorrected", opts.PUncorrected),
		zap.Float64("p_corrected", opts.PCorrected),
		zap.String("nidm_version", opts.NIDMVersion))

	exp, err := afni.New(ctx, opts, a.newRunner(a.logger),
		afni.WithLogger(a.logger),
		afni.WithTools(a.tools()),
		afni.WithTimeout(timeout))
	if err != nil {
		return err
	}

	meta := exp.Meta()
	meta.GeneratedAt = time.Now().UTC()
	doc, err := nidm.Assemble(ctx, exp, meta)
	if err != nil {
		return err
	}
	if doc.Empty() {
		a.logger.Warn("no model fittings, contrasts or inferences were extracted; the export only describes the software")
	}

	bundle, err := nidm.GenerateBundle(doc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dryRun {
		data, _ := bundle.File(nidm.DocumentFile)
		fmt.Fprintf(out, "# would write %s\n%s", exp.ExportDir(), data)
		return nil
	}
	if err := nidm.WriteBundle(bundle, exp.ExportDir()); err != nil {
		return err
	}
	a.logger.Info("export written", zap.String("dir", exp.ExportDir()))
	fmt.Fprintf(out, "exported to %s\n", exp.ExportDir())
	return nil
}

func (a *app) tools() afni.Tools {
	return afni.Tools{
		Version: a.settings.AFNI.Binary,
		Info:    a.settings.AFNI.InfoBinary,
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the installed AFNI version as a software agent record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, err := a.settings.ToolTimeout()
			if err != nil {
				return err
			}
			sw, err := afni.ProbeSoftware(cmd.Context(), a.newRunner(a.logger), procexec.Command{
				Binary:  a.settings.AFNI.Binary,
				Timeout: timeout,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:      %s\n", sw.ID)
			fmt.Fprintf(out, "name:    %s\n", sw.Name)
			fmt.Fprintf(out, "version: %s\n", sw.Version)
			for _, attr := range sw.Attributes() {
				a.logger.Debug("software attribute", zap.String("key", string(attr.Key)), zap.String("value", attr.Value))
			}
			return nil
		},
	}
}

func newNextDirCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "next-dir <afni-dir>",
		Short: "Print the directory the next export in afni-dir would use",
		Long: `Print the directory the next export in afni-dir would use.

When the most recent export has an index.md, the software version it
recorded is printed on a second line. Nothing is created.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := exportdir.Next(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, dir)

			last, err := exportdir.Last(args[0])
			if err != nil || last == "" {
				return err
			}
			prev, err := nidm.ReadIndex(filepath.Join(args[0], last))
			if err != nil {
				// Not every nidm* entry is one of our exports.
				a.logger.Debug("no readable index in previous export", zap.String("dir", last), zap.Error(err))
				return nil
			}
			fmt.Fprintf(out, "previous export %s: %s %s\n", last, prev.Software, firstLine(prev.SoftwareVersion))
			return nil
		},
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
