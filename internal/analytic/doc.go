// Package analytic holds the closed-form results the numerical path is
// checked against: the exact large-amplitude pendulum period through the
// complete elliptic integral K(m), and the free and driven responses of the
// linear damped oscillator.
package analytic
