// Package nereval evaluates named-entity predictions against gold labels by span overlap.
//
// # Quick Start
//
//	preds, err := span.ReadFile("clamp_preds.csv", span.PredictionSchema, &diags)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	labels, err := span.ReadFile("labels.csv", span.LabelSchema, &diags)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ev := nereval.New(nereval.WithFilter(filter.New(filter.DefaultConfig(), excluded)))
//	res, err := ev.Evaluate("clamp", preds, labels)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Metrics.Precision, res.Metrics.Recall, res.Metrics.FMeasure)
//
// # Matching
//
// A prediction matches a label in the same document when the start of one lies inside the
// other's closed [Start, End] range, so spans that only touch still match. Each label
// counts as at most one true positive however many predictions overlap it, while every
// prediction counts toward the prediction total. See package match for the sweep.
//
// # Undefined Metrics
//
// Precision, recall and F-measure are score.Metric values; a zero denominator yields an
// undefined metric instead of zero. Result.Metrics.Err reports which ones.
package nereval
