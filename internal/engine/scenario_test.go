package engine_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fieldsim/internal/boundary"
	"github.com/san-kum/fieldsim/internal/diagnostics"
	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/initial"
)

func bumpConfig(n, dims int, p engine.Params, profile boundary.Profile) engine.Config {
	shape := make([]int, dims)
	for a := range shape {
		shape[a] = n
	}
	dx := 1.0 / float64(n)
	cfg := engine.NewConfig(shape, dx, p, profile)
	vals, err := initial.Build(shape, dx, initial.Spec{Kind: initial.Gaussian, Base: p.C0, Amplitude: 0.1, Sigma: 0.1})
	Expect(err).NotTo(HaveOccurred())
	cfg.Initial = vals
	return cfg
}

var _ = Describe("Engine", func() {
	Describe("lid-driven cavity with a Gaussian bump", func() {
		var e *engine.Engine

		BeforeEach(func() {
			p := engine.Params{Kappa: 0.01, Beta: 0.1, Alpha: 2, C0: 1, Dt: 0.001, Floor: 0.01}
			var err error
			e, err = engine.New(bumpConfig(32, 2, p, boundary.Driven))
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 200; i++ {
				Expect(e.Step()).To(Succeed())
				Expect(e.IsSmooth()).To(BeTrue(), "blew up at step %d", e.Steps())
			}
		})

		It("stays finite and above the floor", func() {
			c := e.C()
			for _, v := range c.Values() {
				Expect(math.IsNaN(v) || math.IsInf(v, 0)).To(BeFalse())
			}
			Expect(c.Min()).To(BeNumerically(">=", 0.01))
			Expect(e.Time()).To(BeNumerically("~", 0.2, 1e-9))
		})

		It("records one sample per step", func() {
			Expect(e.Diagnostics().Len()).To(Equal(201))
		})

		It("descends Ω over the first 50 samples", func() {
			omega := e.Diagnostics().Series(diagnostics.SeriesOmega)[:51]
			idx := diagnostics.NonIncreasing(omega, 1e-6, 1e-12)
			Expect(idx).To(Equal(-1), "%v", diagnostics.RiseError(omega, idx))
		})

		It("keeps the lid pinned", func() {
			Expect(e.C().At(31, 16)).To(BeNumerically("~", 1.1, 1e-12))
			Expect(e.C().At(0, 16)).To(Equal(1.0))
		})
	})

	DescribeTable("pure gradient descent never raises Ω",
		func(dims, n int, profile boundary.Profile) {
			p := engine.Params{Kappa: 0.01, Alpha: 2, C0: 1, Dt: 0.001, Floor: 0.01}
			cfg := bumpConfig(n, dims, p, profile)
			cfg.WithCompanion = false

			e, err := engine.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 200; i++ {
				Expect(e.Step()).To(Succeed())
			}
			Expect(e.IsSmooth()).To(BeTrue())

			omega := e.Diagnostics().Series(diagnostics.SeriesOmega)
			idx := diagnostics.NonIncreasing(omega, 1e-9, 1e-15)
			Expect(idx).To(Equal(-1), "%v", diagnostics.RiseError(omega, idx))
			Expect(omega[len(omega)-1]).To(BeNumerically("<", omega[0]))
		},
		Entry("1D without pinning", 1, 64, boundary.None),
		Entry("2D without pinning", 2, 32, boundary.None),
		Entry("3D without pinning", 3, 12, boundary.None),
		Entry("2D with fixed inlet and outlet", 2, 32, boundary.PressureGradient),
	)

	Describe("stability bound", func() {
		var p engine.Params

		BeforeEach(func() {
			p = engine.Params{Kappa: 0.1, Alpha: 2, C0: 1, Floor: 0.01}
		})

		run := func(dt float64, steps int) *engine.Engine {
			p.Dt = dt
			cfg := engine.NewConfig([]int{16, 16}, 1.0/16, p, boundary.None)
			vals, err := initial.Build(cfg.Shape, cfg.Dx, initial.Spec{Kind: initial.Noise, Base: 1, Amplitude: 0.01, Seed: 99})
			Expect(err).NotTo(HaveOccurred())
			cfg.Initial = vals
			cfg.WithCompanion = false

			e, err := engine.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < steps; i++ {
				e.Step()
				if !e.IsSmooth() {
					break
				}
			}
			return e
		}

		It("reports a blow-up for dt well above the bound", func() {
			e := run(0.05, 200)
			step, ok := e.BlowUpStep()
			Expect(ok).To(BeTrue())
			Expect(step).To(BeNumerically("<=", 200))
			Expect(e.Step()).To(MatchError(engine.ErrHalted))
			Expect(e.Clamped()).To(BeNumerically(">", 0))
		})

		It("stays smooth for 500 steps well below the bound", func() {
			e := run(0.001, 500)
			Expect(e.Phase()).To(Equal(engine.Stable))
			Expect(e.Steps()).To(Equal(500))
		})
	})
})
