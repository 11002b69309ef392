package model

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateMetrics(t *testing.T) {
	metrics := calculateMetrics([][]int{
		{3, 1},
		{0, 4},
	}, 8)

	assert.InDelta(t, 87.5, metrics.Accuracy, 1e-9)
	assert.Equal(t, []int{4, 4}, metrics.Samples)
	assert.InDelta(t, 75.0, metrics.ConfusionMatrix[0][0], 1e-9)
	assert.InDelta(t, 100.0, metrics.ClassPrecision[0], 1e-9)
	assert.InDelta(t, 75.0, metrics.ClassRecall[0], 1e-9)
	assert.InDelta(t, 80.0, metrics.ClassPrecision[1], 1e-9)
	assert.InDelta(t, 100.0, metrics.ClassRecall[1], 1e-9)
	assert.InDelta(t, 2*80.0*100/180, metrics.F1Scores[1], 1e-9)

	var buf bytes.Buffer
	require.NoError(t, metrics.Write(&buf, []string{"cat", "dog"}))
	assert.Contains(t, buf.String(), "Confusion Matrix")
	assert.Contains(t, buf.String(), "87.50%")
	assert.Contains(t, buf.String(), "dog")
}
