package features

import "LoadCast/internal/domain/models"

// MakeWindows builds sliding input windows of the given length, each paired
// with the value that follows it. It returns max(0, len(series)-length) pairs.
func MakeWindows(series []float64, length int) ([][]float64, []float64) {
	n := len(series) - length
	if length <= 0 || n <= 0 {
		return [][]float64{}, []float64{}
	}
	inputs := make([][]float64, n)
	targets := make([]float64, n)
	for i := 0; i < n; i++ {
		w := make([]float64, length)
		copy(w, series[i:i+length])
		inputs[i] = w
		targets[i] = series[i+length]
	}
	return inputs, targets
}

// Reshape turns (batch, steps) windows into a (batch, steps, 1) tensor.
func Reshape(inputs [][]float64) models.Batch {
	batch := make(models.Batch, len(inputs))
	for i, w := range inputs {
		sample := make([][]float64, len(w))
		for j, v := range w {
			sample[j] = []float64{v}
		}
		batch[i] = sample
	}
	return batch
}
