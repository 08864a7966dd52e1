package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/glacialsim/internal/dynamo"
	"github.com/san-kum/glacialsim/internal/models"
	"github.com/san-kum/glacialsim/internal/peaks"
	"github.com/san-kum/glacialsim/internal/sim"
)

func sineForcing(n int, period float64) ([]float64, []float64) {
	times := make([]float64, n)
	forcing := make([]float64, n)
	for i := range times {
		times[i] = float64(i)
		forcing[i] = 1.5 * math.Sin(2*math.Pi*float64(i)/period)
	}
	return times, forcing
}

func expectCyclic(states []dynamo.GlacialState) {
	for i := 1; i < len(states); i++ {
		if states[i] != states[i-1] {
			ExpectWithOffset(1, states[i]).To(Equal(states[i-1].Next()), "step %d", i)
		}
	}
}

var _ = Describe("Simulator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("with the threshold state model", func() {
		var model *models.ThresholdStateModel

		BeforeEach(func() {
			p := models.DefaultThresholdParams()
			p.I0, p.I1, p.I2, p.Tg = 0.0, 0.0, -0.5, 0
			var err error
			model, err = models.NewThresholdStateModel(p)
			Expect(err).NotTo(HaveOccurred())
		})

		It("records one snapshot per sample and walks the regime cycle", func() {
			times := []float64{0, 1000, 2000, 3000, 4000}
			forcing := []float64{1.0, 0.6, -1.0, -1.0, 1.0}

			result, err := sim.New(model).Run(ctx, times, forcing, sim.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Snapshots).To(HaveLen(len(times)))
			Expect(result.States()).To(Equal([]dynamo.GlacialState{
				dynamo.Interglacial,
				dynamo.Interglacial,
				dynamo.MildGlacial,
				dynamo.FullGlacial,
				dynamo.Interglacial,
			}))
		})

		It("never skips a regime over a long run", func() {
			times, forcing := sineForcing(2000, 23)
			p := models.DefaultThresholdParams()
			p.Tg = 5000
			m, err := models.NewThresholdStateModel(p)
			Expect(err).NotTo(HaveOccurred())

			result, err := sim.New(m).Run(ctx, times, forcing, sim.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Snapshots).To(HaveLen(2000))
			expectCyclic(result.States())
		})

		It("rejects a schedule for a parameter the model lacks", func() {
			cfg := sim.DefaultConfig()
			cfg.Schedules = map[string]sim.Schedule{"vmax": sim.Constant(1)}

			result, err := sim.New(model).Run(ctx, []float64{0, 1}, []float64{0, 1}, cfg)
			Expect(err).To(MatchError(dynamo.ErrUnknownParam))
			Expect(result).To(BeNil())
		})
	})

	Context("with the ice volume model", func() {
		var model *models.IceVolumeModel

		BeforeEach(func() {
			var err error
			model, err = models.NewIceVolumeModel(models.DefaultIceVolumeParams(), nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("reports the volume and active relaxation at every step", func() {
			times, forcing := sineForcing(500, 41)

			result, err := sim.New(model).Run(ctx, times, forcing, sim.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Snapshots).To(HaveLen(500))
			Expect(result.Snapshots[0].Vars).To(HaveKeyWithValue("v", 0.0))

			table := models.DefaultStateParams()
			for _, snap := range result.Snapshots {
				Expect(snap.Vars).To(HaveKey("v"))
				Expect(snap.Vars["tau_r"]).To(Equal(table[snap.State].TauR))
				Expect(snap.Vars["v_r"]).To(Equal(table[snap.State].VR))
			}
			expectCyclic(result.States())
		})

		It("goes through a full glacial cycle under strong forcing", func() {
			n := 400
			times := make([]float64, n)
			forcing := make([]float64, n)
			for i := range forcing {
				times[i] = float64(i)
				switch {
				case i < 10:
					forcing[i] = 0
				case i < 200:
					forcing[i] = -1
				default:
					forcing[i] = 1
				}
			}

			result, err := sim.New(model).Run(ctx, times, forcing, sim.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())

			states := result.States()
			Expect(states[10]).To(Equal(dynamo.MildGlacial))
			Expect(states).To(ContainElement(dynamo.FullGlacial))
			Expect(states[n-1]).To(Equal(dynamo.Interglacial))
			expectCyclic(states)
		})

		It("applies schedules between steps", func() {
			cfg := sim.DefaultConfig()
			cfg.Schedules = map[string]sim.Schedule{
				"i0": sim.PiecewiseLinear([]sim.Breakpoint{{Step: 0, Value: -0.75}, {Step: 10, Value: 0.5}}),
			}
			times := make([]float64, 20)
			forcing := make([]float64, 20)
			for i := range times {
				times[i] = float64(i)
			}

			result, err := sim.New(model).Run(ctx, times, forcing, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(model.GetParams()["i0"]).To(BeNumerically("~", 0.5))
			Expect(result.States()).To(ContainElement(dynamo.MildGlacial))
		})

		It("rejects a schedule that drives a time constant to zero before stepping", func() {
			cfg := sim.DefaultConfig()
			cfg.Schedules = map[string]sim.Schedule{
				"tau_r.i": sim.PiecewiseLinear([]sim.Breakpoint{{Step: 0, Value: 10}, {Step: 10, Value: 0}}),
			}
			times := make([]float64, 20)
			forcing := make([]float64, 20)
			for i := range times {
				times[i] = float64(i)
			}

			result, err := sim.New(model).Run(ctx, times, forcing, cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidParam))
			Expect(result).To(BeNil())
			Expect(model.GetParams()["tau_r.i"]).To(Equal(10.0))
			Expect(model.Volume()).To(Equal(0.0))
		})

		It("ignores history inputs the model does not use", func() {
			times, forcing := sineForcing(100, 19)

			a, err := sim.New(model).Run(ctx, times, forcing, sim.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())

			cfg := sim.DefaultConfig()
			cfg.Plateau = peaks.PlateauMidpoint
			other, err := models.NewIceVolumeModel(models.DefaultIceVolumeParams(), nil)
			Expect(err).NotTo(HaveOccurred())
			b, err := sim.New(other).Run(ctx, times, forcing, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(b.Series("v")).To(Equal(a.Series("v")))
		})
	})

	It("reuses a precomputed peak index", func() {
		times, forcing := sineForcing(300, 23)
		index := peaks.New(forcing, peaks.PlateauStrict)

		run := func(cfg sim.Config) *dynamo.Result {
			m, err := models.NewThresholdStateModel(models.DefaultThresholdParams())
			Expect(err).NotTo(HaveOccurred())
			r, err := sim.New(m).Run(ctx, times, forcing, cfg)
			Expect(err).NotTo(HaveOccurred())
			return r
		}

		cached := sim.DefaultConfig()
		cached.Peaks = index

		Expect(run(cached).States()).To(Equal(run(sim.DefaultConfig()).States()))
		Expect(run(cached).PeakIdx).To(Equal(index.Indices()))
	})
})
