package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/go-nereval/internal/config"
)

// app carries state shared by all subcommands once the root pre-run has loaded it.
type app struct {
	cfgFile   string
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "nereval",
		Short: "Evaluate named-entity recognition output against gold labels",
		Long: `nereval compares the entity spans predicted by an NER tool with benchmark labels.

A prediction is a true positive when it overlaps a label and one of the two starts inside
the other. Results are written as precision, recall and F-measure plus true positive,
false positive and false negative tables.

Configuration can be provided through a config file, NEREVAL_* environment variables,
or command-line flags.`,
		Version:           fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./nereval.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format (text, json)")

	cmd.AddCommand(
		newEvalCmd(a),
		newCompareCmd(a),
		newSentencesCmd(a),
	)
	return cmd
}

// init loads configuration and applies flag overrides.
func (a *app) init(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.Log.Logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}
