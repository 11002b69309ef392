package features

// OneHot returns a vector of numClasses zeros with a 1 at index.
func OneHot(index, numClasses int) []float64 {
	row := make([]float64, numClasses)
	row[index] = 1.0
	return row
}
