package measurement

// Operation is a named measurement computation with its arguments bound,
// suitable for batch application across a sensor's or series' collection.
// It replaces the implicit call-forwarding of the original tooling with an
// explicit dispatch: the sensor and series layers apply the operation to
// each owned measurement in order and pair the result with its identity.
type Operation struct {
	Name  string
	Apply func(m *Measurement) (float64, error)
}

// InterceptOperation applies a fixed baseline intercept.
func InterceptOperation(intercept float64) Operation {
	return Operation{
		Name: "apply_force_intercept",
		Apply: func(m *Measurement) (float64, error) {
			if err := m.ApplyForceIntercept(intercept); err != nil {
				return 0, err
			}
			return intercept, nil
		},
	}
}

// AutoInterceptOperation estimates and applies a baseline intercept.
func AutoInterceptOperation(spec InterceptSpec) Operation {
	return Operation{
		Name: "auto_force_intercept",
		Apply: func(m *Measurement) (float64, error) {
			return m.AutoForceIntercept(spec)
		},
	}
}

// IntegralOperation computes the force integral.
func IntegralOperation() Operation {
	return Operation{
		Name: "force_integral",
		Apply: func(m *Measurement) (float64, error) {
			return m.ForceIntegral()
		},
	}
}

// ReleaseOperation computes the release force.
func ReleaseOperation(p ReleaseParams) Operation {
	return Operation{
		Name: "release_force",
		Apply: func(m *Measurement) (float64, error) {
			return m.ReleaseForce(p)
		},
	}
}
