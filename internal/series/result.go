package series

import "errors"

// ErrNoResults is returned by batch application when every child failed and
// the aggregate result is therefore absent.
var ErrNoResults = errors.New("no measurement produced a result")

// Result pairs one successful batch-operation value with the identity of
// the measurement that produced it.
type Result struct {
	Sensor      string
	Measurement string
	Operation   string
	Value       float64
}
