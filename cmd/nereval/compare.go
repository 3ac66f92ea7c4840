package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/go-nereval"
	"github.com/jamesainslie/go-nereval/diag"
	"github.com/jamesainslie/go-nereval/internal/report"
	"github.com/jamesainslie/go-nereval/span"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		ff   filterFlags
		runs []string
	)
	cmd := &cobra.Command{
		Use:   "compare LABELS --run TOOL=PREDICTIONS...",
		Short: "Rank several tools against the same labels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(runs) == 0 {
				return fmt.Errorf("at least one --run TOOL=PREDICTIONS is required")
			}
			opts, err := ff.options(a)
			if err != nil {
				return err
			}

			diags := &diag.Collection{}
			labels, err := span.ReadFile(args[0], span.LabelSchema, diags)
			if err != nil {
				return err
			}

			ev := nereval.New(opts...)
			results := make([]*nereval.Result, 0, len(runs))
			for _, run := range runs {
				tool, path, ok := strings.Cut(run, "=")
				if !ok || tool == "" || path == "" {
					return fmt.Errorf("invalid --run %q, want TOOL=PREDICTIONS", run)
				}
				preds, err := span.ReadFile(path, span.PredictionSchema, diags)
				if err != nil {
					return err
				}
				res, err := ev.Evaluate(normalizeTool(tool), preds, labels)
				if err != nil {
					return err
				}
				diags.Merge(res.Diagnostics)
				results = append(results, res)
			}

			for _, e := range diags.Entries() {
				a.logger.Warn("diagnostic", "kind", e.Kind, "subject", e.Subject, "detail", e.Detail)
			}
			return report.WriteRanking(cmd.OutOrStdout(), nereval.Compare(results...))
		},
	}
	ff.register(cmd)
	cmd.Flags().StringArrayVar(&runs, "run", nil, "TOOL=PREDICTIONS pair, repeatable")
	return cmd
}
