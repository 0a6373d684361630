package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"biaseval/internal/batch"
	"biaseval/internal/dataset"
)

// Save persists the predictions CSV, the text classification report and
// both PNG visualizations, and returns the scalar metrics.
func Save(outputDir, modelShort string, tests []dataset.Record, outcomes []batch.Outcome, log *zap.SugaredLogger) (accuracy, f1 float64, err error) {
	vizDir := filepath.Join(outputDir, "visualizations")
	if err := os.MkdirAll(vizDir, 0o755); err != nil {
		return 0, 0, fmt.Errorf("create visualization directory: %w", err)
	}

	trueLabels := make([]int, len(tests))
	predicted := make([]int, len(tests))
	for i := range tests {
		trueLabels[i] = tests[i].Label
		predicted[i] = outcomes[i].Predicted
	}

	timestamp := time.Now().Format("20060102_150405")
	predictionsPath := filepath.Join(outputDir, fmt.Sprintf("%s_predictions_%s.csv", modelShort, timestamp))
	reportPath := filepath.Join(outputDir, fmt.Sprintf("%s_report_%s.txt", modelShort, timestamp))
	matrixPath := filepath.Join(vizDir, fmt.Sprintf("%s_confusion_matrix_%s.png", modelShort, timestamp))
	summaryPath := filepath.Join(vizDir, fmt.Sprintf("%s_results_summary_%s.png", modelShort, timestamp))

	if err := batch.WriteResults(predictionsPath, tests, outcomes); err != nil {
		return 0, 0, fmt.Errorf("save predictions: %w", err)
	}
	log.Infof("Predictions saved to %s", predictionsPath)

	reportText := fmt.Sprintf("Classification Report for %s\n\nTimestamp: %s\n\n%s",
		modelShort, timestamp, ClassificationReport(trueLabels, predicted))
	if err := os.WriteFile(reportPath, []byte(reportText), 0o644); err != nil {
		return 0, 0, fmt.Errorf("save classification report: %w", err)
	}
	log.Infof("Classification report saved to %s", reportPath)

	m := Compute(trueLabels, predicted)
	log.Infof("Accuracy: %.4f", m.Accuracy)
	log.Infof("F1 Score: %.4f", m.F1)

	if err := SaveConfusionMatrix(matrixPath, m.Confusion, "Confusion Matrix - "+modelShort); err != nil {
		return 0, 0, fmt.Errorf("save confusion matrix: %w", err)
	}
	log.Infof("Confusion matrix saved to %s", matrixPath)

	var trueCounts, predCounts [2]int
	for i := range trueLabels {
		trueCounts[trueLabels[i]]++
		predCounts[predicted[i]]++
	}
	if err := SaveSummary(summaryPath, m, trueCounts, predCounts); err != nil {
		return 0, 0, fmt.Errorf("save results summary: %w", err)
	}
	log.Infof("Results summary visualization saved to %s", summaryPath)

	return m.Accuracy, m.F1, nil
}
