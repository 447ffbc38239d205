// Command nidmafni exports AFNI group results as NIDM-Results.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"nidmafni/internal/config"
	"nidmafni/internal/procexec"
)

// app carries state shared by all subcommands for one invocation.
type app struct {
	configPath string
	verbose    bool

	settings *config.Settings
	logger   *zap.Logger

	// newRunner builds the process runner; tests swap it for a fake.
	newRunner func(*zap.Logger) procexec.Runner
}

func newApp() *app {
	return &app{
		logger: zap.NewNop(),
		newRunner: func(l *zap.Logger) procexec.Runner {
			return procexec.NewExecRunner(l)
		},
	}
}

func newRootCmd(a *app, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "nidmafni",
		Short: "Export AFNI statistical results as NIDM-Results",
		Long: `nidmafni reads an AFNI group analysis and writes a NIDM-Results export
next to it, in a new nidm, nidm_0001, nidm_0002, ... directory.

Settings are read from ~/.nidmafni/settings.yaml (see 'nidmafni configure').`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "settings file (default ~/.nidmafni/settings.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newExportCmd(a),
		newVersionCmd(a),
		newNextDirCmd(a),
		newConfigureCmd(a),
	)
	return root
}

// setup loads settings and builds the logger.
func (a *app) setup() error {
	if a.configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		a.configPath = p
	}
	s, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.settings = s

	logger, err := buildLogger(s.Log, a.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

func buildLogger(ls config.LogSettings, verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if ls.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	level := zapcore.InfoLevel
	if ls.Level != "" {
		l, err := zapcore.ParseLevel(ls.Level)
		if err != nil {
			return nil, err
		}
		level = l
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	root := newRootCmd(a, os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "nidmafni: %v\n", err)
		stop()
		os.Exit(1)
	}
}
