package diagnostics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/oscsim/internal/diagnostics"
	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/integrators"
	"github.com/san-kum/oscsim/internal/physics"
)

var integ = integrators.NewRK4()

func mustPendulum(p physics.PendulumParams) *physics.Pendulum {
	GinkgoHelper()
	model, err := physics.NewPendulum(p)
	Expect(err).NotTo(HaveOccurred())
	return model
}

func mustSpring(p physics.SpringParams) *physics.SpringMass {
	GinkgoHelper()
	model, err := physics.NewSpringMass(p)
	Expect(err).NotTo(HaveOccurred())
	return model
}

type oscillator interface {
	dynamo.VectorField
	dynamo.EnergyModel
}

func pendulumOf(p physics.PendulumParams) func() oscillator {
	return func() oscillator { return mustPendulum(p) }
}

func springOf(p physics.SpringParams) func() oscillator {
	return func() oscillator { return mustSpring(p) }
}

func run(field dynamo.VectorField, x0 dynamo.State, tEnd, h float64) *dynamo.Trajectory {
	GinkgoHelper()
	tr, err := integ.Integrate(field, x0, 0, tEnd, h)
	Expect(err).NotTo(HaveOccurred())
	return tr
}

var _ = Describe("Compute", func() {
	It("aligns every point with its trajectory sample", func() {
		model := mustPendulum(physics.DefaultPendulumParams())
		tr := run(model, dynamo.State{1.2, -0.3}, 3, 0.07)

		series := diagnostics.Compute(tr, model)

		Expect(series.Len()).To(Equal(tr.Len()))
		for i := 0; i < tr.Len(); i++ {
			s, p := tr.At(i), series.At(i)
			Expect(p.T).To(Equal(s.T))
			Expect(p.Position).To(Equal(s.X[0]))
			Expect(p.Velocity).To(Equal(s.X[1]))
			Expect(p.Total).To(Equal(p.Kinetic + p.Potential))
		}
	})

	It("uses the point-mass pendulum energies", func() {
		params := physics.DefaultPendulumParams()
		params.Length = 1.5
		params.Mass = 2
		model := mustPendulum(params)
		tr := dynamo.NewTrajectory(0.1, []float64{0}, []dynamo.State{{math.Pi / 2, 2}})

		p := diagnostics.Compute(tr, model).At(0)

		Expect(p.Kinetic).To(BeNumerically("~", 0.5*2*1.5*1.5*4, 1e-12))
		Expect(p.Potential).To(BeNumerically("~", 2*physics.DefaultGravity*1.5, 1e-12))
	})

	It("uses the spring energies", func() {
		model := mustSpring(physics.SpringParams{Mass: 3, Stiffness: 5})
		tr := dynamo.NewTrajectory(0.1, []float64{0}, []dynamo.State{{2, -1}})

		p := diagnostics.Compute(tr, model).At(0)

		Expect(p.Kinetic).To(Equal(1.5))
		Expect(p.Potential).To(Equal(10.0))
	})

	It("records the model kind and conservativeness", func() {
		pend := mustPendulum(physics.DefaultPendulumParams())
		driven := physics.DefaultSpringParams()
		driven.Forcing = physics.Sinusoidal(1, 0.5, 0)
		spring := mustSpring(driven)

		Expect(diagnostics.Compute(run(pend, dynamo.State{0.1, 0}, 1, 0.1), pend).Kind).To(Equal(dynamo.ModelPendulum))

		series := diagnostics.Compute(run(spring, dynamo.State{0, 0}, 1, 0.1), spring)
		Expect(series.Kind).To(Equal(dynamo.ModelSpring))
		Expect(series.Conservative).To(BeFalse())
	})

	It("is regenerable and matches the parallel evaluation", func() {
		model := mustSpring(physics.SpringParams{Mass: 1, Damping: 0.1, Stiffness: 9})
		tr := run(model, dynamo.State{1, 0}, 40, 0.001)

		a := diagnostics.Compute(tr, model)
		b := diagnostics.Compute(tr, model)
		c := diagnostics.ComputeParallel(tr, model, 4)

		Expect(b.Points()).To(Equal(a.Points()))
		Expect(c.Points()).To(Equal(a.Points()))
	})
})

var _ = Describe("energy conservation", func() {
	DescribeTable("undamped, unforced models keep their total energy",
		func(build func() oscillator, x0 dynamo.State) {
			model := build()
			series := diagnostics.Compute(run(model, x0, 20, 0.01), model)

			Expect(series.Conservative).To(BeTrue())
			Expect(series.Drift()).To(BeNumerically("<", 1e-5))
		},
		Entry("small-angle pendulum", pendulumOf(physics.DefaultPendulumParams()), dynamo.State{0.1, 0}),
		Entry("large-amplitude pendulum", pendulumOf(physics.DefaultPendulumParams()), dynamo.State{2.8, 0}),
		Entry("stiff spring", springOf(physics.SpringParams{Mass: 0.5, Stiffness: 8}), dynamo.State{1, 1}),
	)

	It("shrinks the drift as h^4", func() {
		model := mustPendulum(physics.DefaultPendulumParams())

		coarse := diagnostics.Compute(run(model, dynamo.State{2.0, 0}, 10, 0.04), model).Drift()
		fine := diagnostics.Compute(run(model, dynamo.State{2.0, 0}, 10, 0.02), model).Drift()

		Expect(coarse / fine).To(BeNumerically(">", 10))
	})
})

var _ = Describe("energy decay", func() {
	DescribeTable("free damped oscillators lose energy between every pair of samples",
		func(build func() oscillator) {
			model := build()
			series := diagnostics.Compute(run(model, dynamo.State{1, 0.5}, 20, 0.01), model)

			Expect(series.Decreasing()).To(BeTrue())
			summary := series.Summary()
			Expect(summary.Final).To(BeNumerically("<", summary.Initial))
			Expect(summary.Max).To(Equal(summary.Initial))
		},
		Entry("underdamped spring", springOf(physics.SpringParams{Mass: 1, Damping: 0.5, Stiffness: 4})),
		Entry("overdamped spring", springOf(physics.SpringParams{Mass: 1, Damping: 10, Stiffness: 4})),
		Entry("damped pendulum", pendulumOf(physics.PendulumParams{Length: 1, Gravity: 9.81, Damping: 0.3, Mass: 1})),
	)

	It("only reports the energy of a driven oscillator", func() {
		p := physics.SpringParams{Mass: 1, Damping: 0.2, Stiffness: 1, Forcing: physics.Sinusoidal(0.5, 1, 0)}
		model := mustSpring(p)
		series := diagnostics.Compute(run(model, dynamo.State{0, 0}, 30, 0.01), model)

		Expect(series.Conservative).To(BeFalse())
		Expect(series.Summary().Max).To(BeNumerically(">", series.Summary().Initial))
	})
})

var _ = Describe("Series", func() {
	It("computes drift against a zero initial energy in absolute terms", func() {
		model := mustSpring(physics.DefaultSpringParams())
		tr := dynamo.NewTrajectory(1, []float64{0, 1}, []dynamo.State{{0, 0}, {0, 0.1}})

		Expect(diagnostics.Compute(tr, model).Drift()).To(BeNumerically("~", 0.005, 1e-15))
	})

	It("returns copies of its columns", func() {
		model := mustSpring(physics.DefaultSpringParams())
		series := diagnostics.Compute(dynamo.NewTrajectory(1, []float64{0}, []dynamo.State{{1, 0}}), model)

		totals := series.Totals()
		totals[0] = 99
		Expect(series.At(0).Total).To(Equal(0.5))
	})
})
