package algo

import "fmt"

// TrainTestSplit partitions rows into an ordered prefix of floor(len*ratio)
// rows and the remaining suffix. Rows are never shuffled.
func TrainTestSplit[T any](rows []T, ratio float64) ([]T, []T, error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, nil, fmt.Errorf("%w: %g", ErrInvalidRatio, ratio)
	}
	size := int(float64(len(rows)) * ratio)
	return rows[:size:size], rows[size:], nil
}
