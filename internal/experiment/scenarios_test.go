package experiment_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/san-kum/autoxsim/internal/config"
	"github.com/san-kum/autoxsim/internal/dynamo"
	"github.com/san-kum/autoxsim/internal/experiment"
)

func run(cfg *config.Config) (*experiment.Result, error) {
	log, _ := test.NewNullLogger()
	return experiment.New(cfg, log).Run(context.Background())
}

func species(res *experiment.Result, name string, x dynamo.State) float64 {
	for i, s := range res.Trajectory.Species() {
		if s == name {
			return x[i]
		}
	}
	Fail("species " + name + " not in trajectory")
	return 0
}

var _ = Describe("Scenarios", func() {
	Describe("atmosphere", Ordered, func() {
		var res *experiment.Result

		BeforeAll(func() {
			var err error
			res, err = run(config.GetPreset("atmosphere", "default"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("samples the whole grid starting from the initial state", func() {
			Expect(res.Trajectory.Len()).To(Equal(10000))
			Expect(res.Trajectory.Time(0)).To(Equal(0.0))
			Expect(res.Trajectory.Time(9999)).To(Equal(10000.0))
			Expect(species(res, "R", res.Trajectory.First())).To(Equal(4.05e-12))
			Expect(species(res, "OH", res.Trajectory.First())).To(Equal(4.05e-12))
		})

		It("starts with 8.1e-12 atm of reactive species", func() {
			Expect(res.Summary.Total.Start).To(BeNumerically("~", 8.1e-12, 1e-13))
		})

		// R + OH -> ROH and 2 RO2 -> RO22 shrink the pool, so it settles
		// near 2.742e-12 atm rather than staying at 8.1e-12.
		It("depletes the total reactive pool to its converged value", func() {
			Expect(res.Summary.Total.End).To(BeNumerically("~", 2.74e-12, 1e-13))
		})

		It("reaches the same end total under tight tolerances", func() {
			cfg := config.GetPreset("atmosphere", "default")
			cfg.Samples = 101
			cfg.Tolerance = dynamo.Tolerance{Rel: 1e-8, Abs: 1e-16}
			tight, err := run(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(tight.Summary.Total.End).To(BeNumerically("~", 2.742e-12, 5e-15))
			Expect(res.Summary.Total.End).To(BeNumerically("~", tight.Summary.Total.End, 1e-13))
		})

		It("consumes R and produces aldehyde", func() {
			last := res.Trajectory.Last()
			Expect(species(res, "R", last)).To(BeNumerically("<", 4.05e-12))
			Expect(species(res, "ALD", last)).To(BeNumerically(">", 0))
		})

		It("reports solver statistics", func() {
			st := res.Trajectory.Stats()
			Expect(st.Accepted).To(BeNumerically(">", 0))
			Expect(st.Factorizations).To(BeNumerically(">=", st.Accepted))
		})
	})

	Describe("cells", Ordered, func() {
		var res *experiment.Result

		BeforeAll(func() {
			var err error
			res, err = run(config.GetPreset("cells", "default"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("starts with 1.0001e-4 atm of reactive species", func() {
			Expect(res.Summary.Total.Start).To(BeNumerically("~", 1.0001e-4, 1e-12))
		})

		It("conserves carbon to solver tolerance", func() {
			c0 := res.Summary.Carbon.Start
			Expect(c0).To(BeNumerically("~", 1e-4, 1e-16))
			Expect(math.Abs(res.Summary.Carbon.Drift())).To(BeNumerically("<=", 100*1e-6*c0))
		})

		It("never lets O2 rise", func() {
			Expect(res.OxygenNonIncreasing).To(BeTrue())
			first, last := res.Trajectory.First(), res.Trajectory.Last()
			Expect(species(res, "O2", last)).To(BeNumerically("<=", species(res, "O2", first)*(1+1e-6)))
		})

		It("keeps concentrations non-negative within tolerance", func() {
			Expect(res.Minimum.Value).To(BeNumerically(">=", -10*1e-12))
		})

		It("produces aldehyde from R", func() {
			last := res.Trajectory.Last()
			Expect(species(res, "ALD", last)).To(BeNumerically(">", 0))
			Expect(species(res, "R", last)).To(BeNumerically("<=", 1e-4))
		})
	})

	Describe("failures", func() {
		It("rejects an invalid scenario before integrating", func() {
			cfg := config.GetPreset("cells", "default")
			cfg.Initial["R"] = -1
			res, err := run(cfg)
			Expect(res).To(BeNil())
			Expect(errors.Is(err, dynamo.ErrConfiguration)).To(BeTrue())
		})

		It("rejects an unknown method", func() {
			cfg := config.DefaultConfig()
			cfg.Method = "euler"
			_, err := run(cfg)
			Expect(errors.Is(err, dynamo.ErrConfiguration)).To(BeTrue())
		})

		It("reports an integration failure when an explicit method exhausts its budget", func() {
			cfg := config.GetPreset("atmosphere", "short")
			cfg.Method = "rk45"
			cfg.MaxSteps = 500
			res, err := run(cfg)
			Expect(res).To(BeNil())
			Expect(errors.Is(err, dynamo.ErrIntegration)).To(BeTrue())
			Expect(errors.Is(err, dynamo.ErrMaxSteps)).To(BeTrue())
		})
	})
})
