package main

import (
	"github.com/spf13/cobra"

	"github.com/jamesainslie/go-nereval/diag"
	"github.com/jamesainslie/go-nereval/internal/corpus"
	"github.com/jamesainslie/go-nereval/internal/tabular"
	"github.com/jamesainslie/go-nereval/segment"
	"github.com/jamesainslie/go-nereval/sentence"
	"github.com/jamesainslie/go-nereval/span"
)

func newSentencesCmd(a *app) *cobra.Command {
	var (
		labels    bool
		chunked   bool
		model     string
		tokenizer string
	)
	cmd := &cobra.Command{
		Use:   "sentences TABLE TEXTDIR OUT",
		Short: "Fill the entity and sentence columns of a span table from the source texts",
		Long: `sentences reads a span table, looks up each span in the text files of TEXTDIR and
fills empty entity, lowercase entity and sentence cells. Sentences come from a
rule-based splitter unless an ONNX segmentation model and its tokenizer are given.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			tablePath, textDir, outPath := args[0], args[1], args[2]
			sc := a.cfg.Sentence
			if model != "" {
				sc.Model = model
			}
			if tokenizer != "" {
				sc.Tokenizer = tokenizer
			}

			schema := span.PredictionSchema
			if labels {
				schema = span.LabelSchema
			}

			diags := &diag.Collection{}
			set, err := span.ReadFile(tablePath, schema, diags)
			if err != nil {
				return err
			}
			docs, err := corpus.Load(textDir, corpus.Options{Chunked: chunked}, diags)
			if err != nil {
				return err
			}

			var splitter sentence.Splitter = sentence.RuleSplitter{}
			if sc.Model != "" {
				seg, err := segment.New(sc.Model, sc.Tokenizer,
					segment.WithThreshold(sc.Threshold),
					segment.WithPoolSize(sc.PoolSize),
					segment.WithLogger(a.logger),
				)
				if err != nil {
					return err
				}
				defer func() { _ = seg.Close() }() // outputs are already flushed
				splitter = seg
			}

			resolver := sentence.NewResolver(splitter,
				sentence.WithWorkers(sc.Workers),
				sentence.WithLogger(a.logger),
			)
			set, err = resolver.Resolve(cmd.Context(), set, docs.Texts(), diags)
			if err != nil {
				return err
			}
			if err := tabular.WriteSpansFile(outPath, set, schema); err != nil {
				return err
			}

			for _, e := range diags.Entries() {
				a.logger.Warn("diagnostic", "kind", e.Kind, "subject", e.Subject, "detail", e.Detail)
			}
			a.logger.Info("sentences written", "spans", len(set), "documents", len(docs), "out", outPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&labels, "labels", false, "TABLE is a label table rather than a prediction table")
	cmd.Flags().BoolVar(&chunked, "chunked", false, "join <id>_<n>.txt parts into one document per id")
	cmd.Flags().StringVar(&model, "model", "", "ONNX sentence segmentation model (overrides config)")
	cmd.Flags().StringVar(&tokenizer, "tokenizer", "", "SentencePiece tokenizer model for --model")
	return cmd
}
