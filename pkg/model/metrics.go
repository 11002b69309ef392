package model

import (
	"fmt"
	"io"

	"github.com/grexie/categorize/pkg/dataset"
	"github.com/jedib0t/go-pretty/v6/table"
	"gonum.org/v1/gonum/floats"
)

// Metrics describes how a model classifies a labeled dataset. Percentages
// are in [0, 100].
type Metrics struct {
	Accuracy        float64
	Confusion       [][]int
	ConfusionMatrix [][]float64
	ClassPrecision  []float64
	ClassRecall     []float64
	F1Scores        []float64

	Samples []int
}

// Evaluate predicts every sample of ds and tallies the results.
func Evaluate(m *Model, ds *dataset.Dataset) (Metrics, error) {
	if ds == nil || ds.Len() == 0 {
		return Metrics{}, fmt.Errorf("evaluate: %w", dataset.ErrEmpty)
	}
	if ds.Classes() != m.classes {
		return Metrics{}, fmt.Errorf("%w: dataset has %d classes, model expects %d", ErrShapeMismatch, ds.Classes(), m.classes)
	}

	confusionMatrix := make([][]int, m.classes)
	for i := range confusionMatrix {
		confusionMatrix[i] = make([]int, m.classes)
	}

	for i := range ds.Len() {
		pred, err := m.Predict(ds.At(i).Features)
		if err != nil {
			return Metrics{}, fmt.Errorf("sample %d: %w", i, err)
		}
		predictedClass := floats.MaxIdx(pred.Probabilities())
		confusionMatrix[ds.Class(i)][predictedClass]++
	}

	return calculateMetrics(confusionMatrix, ds.Len()), nil
}

func calculateMetrics(confusionMatrix [][]int, total int) Metrics {
	numClasses := len(confusionMatrix)
	metrics := Metrics{
		Confusion:       confusionMatrix,
		ConfusionMatrix: make([][]float64, numClasses),
		ClassPrecision:  make([]float64, numClasses),
		ClassRecall:     make([]float64, numClasses),
		F1Scores:        make([]float64, numClasses),
		Samples:         make([]int, numClasses),
	}

	// row percentages
	for i := range numClasses {
		metrics.ConfusionMatrix[i] = make([]float64, numClasses)
		for j := range numClasses {
			metrics.Samples[i] += confusionMatrix[i][j]
		}
		for j := range numClasses {
			if metrics.Samples[i] > 0 {
				metrics.ConfusionMatrix[i][j] = float64(confusionMatrix[i][j]) / float64(metrics.Samples[i]) * 100
			}
		}
	}

	for i := range numClasses {
		truePositives := confusionMatrix[i][i]
		falsePositives := 0
		falseNegatives := 0

		for j := range numClasses {
			if i != j {
				falsePositives += confusionMatrix[j][i]
				falseNegatives += confusionMatrix[i][j]
			}
		}

		if truePositives+falsePositives > 0 {
			metrics.ClassPrecision[i] = float64(truePositives) / float64(truePositives+falsePositives) * 100
		}
		if truePositives+falseNegatives > 0 {
			metrics.ClassRecall[i] = float64(truePositives) / float64(truePositives+falseNegatives) * 100
		}
		if metrics.ClassPrecision[i]+metrics.ClassRecall[i] > 0 {
			metrics.F1Scores[i] = 2 * (metrics.ClassPrecision[i] * metrics.ClassRecall[i]) /
				(metrics.ClassPrecision[i] + metrics.ClassRecall[i])
		}
	}

	correct := 0
	for i := range numClasses {
		correct += confusionMatrix[i][i]
	}
	metrics.Accuracy = float64(correct) / float64(total) * 100

	return metrics
}

func (m Metrics) Write(w io.Writer, labels []string) error {
	label := func(i int) string {
		if i < len(labels) {
			return labels[i]
		}
		return fmt.Sprintf("#%d", i)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Confusion Matrix")
	header := table.Row{""}
	for i := range m.ConfusionMatrix {
		header = append(header, label(i))
	}
	t.AppendHeader(header)
	for i, row := range m.ConfusionMatrix {
		r := table.Row{label(i)}
		for _, v := range row {
			if m.Samples[i] == 0 {
				r = append(r, "")
			} else {
				r = append(r, fmt.Sprintf("%6.2f%%", v))
			}
		}
		t.AppendRow(r)
	}
	footer := make(table.Row, len(header))
	for i := range footer {
		footer[i] = ""
	}
	footer[0] = "ACCURACY"
	footer[len(footer)-1] = fmt.Sprintf("%0.02f%%", m.Accuracy)
	t.AppendFooter(footer)
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Class Metrics")
	t.AppendHeader(table.Row{"CLASS", "PRECISION", "RECALL", "F1 SCORE", "SAMPLES"})
	total := 0
	for i := range m.ClassPrecision {
		t.AppendRow(table.Row{
			label(i),
			fmt.Sprintf("%6.2f%%", m.ClassPrecision[i]),
			fmt.Sprintf("%6.2f%%", m.ClassRecall[i]),
			fmt.Sprintf("%6.2f%%", m.F1Scores[i]),
			fmt.Sprintf("%d", m.Samples[i]),
		})
		total += m.Samples[i]
	}
	n := float64(len(m.ClassPrecision))
	t.AppendSeparator()
	t.AppendRow(table.Row{
		"",
		fmt.Sprintf("%6.2f%%", floats.Sum(m.ClassPrecision)/n),
		fmt.Sprintf("%6.2f%%", floats.Sum(m.ClassRecall)/n),
		fmt.Sprintf("%6.2f%%", floats.Sum(m.F1Scores)/n),
		fmt.Sprintf("%d", total),
	})
	t.Render()

	return nil
}
