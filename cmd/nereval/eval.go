package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/go-nereval"
	"github.com/jamesainslie/go-nereval/diag"
	"github.com/jamesainslie/go-nereval/filter"
	"github.com/jamesainslie/go-nereval/internal/report"
	"github.com/jamesainslie/go-nereval/internal/tabular"
	"github.com/jamesainslie/go-nereval/span"
)

var errRemoveRequired = errors.New("-r --remove is required when using the -f --filter flag")

// filterFlags are shared by eval and compare.
type filterFlags struct {
	enabled     bool
	remove      string
	problemOnly bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.enabled, "filter", "f", false, "filter predictions to the configured concept types")
	cmd.Flags().StringVarP(&f.remove, "remove", "r", "", "CSV file with a CUI column of concepts to drop when filtering")
	cmd.Flags().BoolVar(&f.problemOnly, "problem-only", false, "when filtering, keep only predictions whose Semantic is the problem value")
}

// options returns the evaluator options selected by the flags.
func (f *filterFlags) options(a *app) ([]nereval.Option, error) {
	opts := []nereval.Option{nereval.WithLogger(a.logger)}
	if !f.enabled {
		return opts, nil
	}
	if f.remove == "" {
		return nil, errRemoveRequired
	}
	excluded, err := filter.ReadExclusionsFile(f.remove)
	if err != nil {
		return nil, err
	}
	cfg := a.cfg.Filter
	if f.problemOnly {
		cfg.ProblemOnly = true
	}
	return append(opts, nereval.WithFilter(filter.New(cfg, excluded))), nil
}

func normalizeTool(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func newEvalCmd(a *app) *cobra.Command {
	var (
		ff     filterFlags
		format string
	)
	cmd := &cobra.Command{
		Use:   "eval TOOL PREDICTIONS LABELS REPORT OUTDIR",
		Short: "Score one tool's predictions and write the result tables",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, predPath, labelPath, reportPath, outDir := normalizeTool(args[0]), args[1], args[2], args[3], args[4]

			opts, err := ff.options(a)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				format = a.cfg.Output.Format
			}
			fmtOut, err := tabular.ParseFormat(format)
			if err != nil {
				return err
			}

			started := time.Now()
			a.logger.Info("calculating results", "tool", tool)

			diags := &diag.Collection{}
			preds, err := span.ReadFile(predPath, span.PredictionSchema, diags)
			if err != nil {
				return err
			}
			labels, err := span.ReadFile(labelPath, span.LabelSchema, diags)
			if err != nil {
				return err
			}

			res, err := nereval.New(opts...).Evaluate(tool, preds, labels)
			if err != nil {
				return err
			}

			w, err := tabular.NewWriter(outDir, tool, res.Filtered, fmtOut)
			if err != nil {
				return err
			}
			files, err := w.WriteAll(res.Breakdown, res.Match)
			if err != nil {
				return fmt.Errorf("write tables: %w", err)
			}

			rep := report.New(res, started, time.Now(), diags)
			rep.Files = files
			if err := rep.WriteFile(reportPath); err != nil {
				return err
			}
			_, err = rep.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	ff.register(cmd)
	cmd.Flags().StringVar(&format, "format", "csv", "output table format (csv, parquet)")
	return cmd
}
