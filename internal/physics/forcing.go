package physics

import "math"

// Forcing is an external force F(t). It must be deterministic and free of
// side effects: the integrator evaluates it at arbitrary intermediate times.
type Forcing func(t float64) float64

// Sinusoidal returns F0*cos(omega*t + phase).
func Sinusoidal(amplitude, omega, phase float64) Forcing {
	return func(t float64) float64 {
		return amplitude * math.Cos(omega*t+phase)
	}
}

func Constant(f0 float64) Forcing {
	return func(float64) float64 { return f0 }
}

// StepAt switches from zero to f0 at time t0.
func StepAt(f0, t0 float64) Forcing {
	return func(t float64) float64 {
		if t < t0 {
			return 0
		}
		return f0
	}
}

// Sum superposes several forcings; nil entries are skipped.
func Sum(fs ...Forcing) Forcing {
	return func(t float64) float64 {
		total := 0.0
		for _, f := range fs {
			if f != nil {
				total += f(t)
			}
		}
		return total
	}
}
