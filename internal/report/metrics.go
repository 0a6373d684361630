// Package report computes classification metrics and writes the final
// artifacts: predictions CSV, text report and PNG visualizations.
package report

import (
	"fmt"
	"strings"
)

// Metrics holds the scalar metrics and the confusion matrix for one run.
// Confusion is indexed [true][predicted] with classes {0, 1}.
type Metrics struct {
	Accuracy  float64
	F1        float64
	Confusion [2][2]int
}

// Compute derives accuracy, binary F1 (positive class 1) and the confusion
// matrix from order-aligned label sequences.
func Compute(trueLabels, predicted []int) Metrics {
	var m Metrics
	correct := 0
	for i := range trueLabels {
		m.Confusion[trueLabels[i]][predicted[i]]++
		if trueLabels[i] == predicted[i] {
			correct++
		}
	}
	if len(trueLabels) > 0 {
		m.Accuracy = float64(correct) / float64(len(trueLabels))
	}

	tp := m.Confusion[1][1]
	fp := m.Confusion[0][1]
	fn := m.Confusion[1][0]
	if denom := 2*tp + fp + fn; denom > 0 {
		m.F1 = 2 * float64(tp) / float64(denom)
	}
	return m
}

// classStats holds per-class precision/recall/F1/support.
type classStats struct {
	precision float64
	recall    float64
	f1        float64
	support   int
}

func perClass(cm [2][2]int, class int) classStats {
	tp := cm[class][class]
	predicted := cm[0][class] + cm[1][class]
	actual := cm[class][0] + cm[class][1]

	var s classStats
	s.support = actual
	if predicted > 0 {
		s.precision = float64(tp) / float64(predicted)
	}
	if actual > 0 {
		s.recall = float64(tp) / float64(actual)
	}
	if s.precision+s.recall > 0 {
		s.f1 = 2 * s.precision * s.recall / (s.precision + s.recall)
	}
	return s
}

// ClassificationReport renders a per-class precision/recall/F1/support
// table with accuracy, macro and weighted averages, in the layout the
// previous runs of this evaluation reported.
func ClassificationReport(trueLabels, predicted []int) string {
	m := Compute(trueLabels, predicted)
	c0 := perClass(m.Confusion, 0)
	c1 := perClass(m.Confusion, 1)
	total := c0.support + c1.support

	macroP := (c0.precision + c1.precision) / 2
	macroR := (c0.recall + c1.recall) / 2
	macroF := (c0.f1 + c1.f1) / 2

	var weightedP, weightedR, weightedF float64
	if total > 0 {
		w0 := float64(c0.support) / float64(total)
		w1 := float64(c1.support) / float64(total)
		weightedP = w0*c0.precision + w1*c1.precision
		weightedR = w0*c0.recall + w1*c1.recall
		weightedF = w0*c0.f1 + w1*c1.f1
	}

	var b strings.Builder
	b.WriteString("              precision    recall  f1-score   support\n\n")
	fmt.Fprintf(&b, "%12s  %9.2f %9.2f %9.2f %9d\n", "0", c0.precision, c0.recall, c0.f1, c0.support)
	fmt.Fprintf(&b, "%12s  %9.2f %9.2f %9.2f %9d\n", "1", c1.precision, c1.recall, c1.f1, c1.support)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%12s  %19s %9.2f %9d\n", "accuracy", "", m.Accuracy, total)
	fmt.Fprintf(&b, "%12s  %9.2f %9.2f %9.2f %9d\n", "macro avg", macroP, macroR, macroF, total)
	fmt.Fprintf(&b, "%12s  %9.2f %9.2f %9.2f %9d\n", "weighted avg", weightedP, weightedR, weightedF, total)
	return b.String()
}
