package cmd

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/notargets/avs/chart2d"
	utils2 "github.com/notargets/avs/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/reactingflow/InputParameters"
	rf "github.com/notargets/reactingflow/model_problems/ReactingFlow"
	"github.com/notargets/reactingflow/model_problems/Solver"
	"github.com/notargets/reactingflow/sod_shock_tube"
)

// OneDCmd represents the 1D command
var OneDCmd = &cobra.Command{
	Use:   "1D",
	Short: "Sod shock tube compared with the exact solution",
	Long: `
Runs the Sod shock tube with the hydro kernel and reports the density and
pressure error against the exact Riemann solution,

reactingflow 1D -k 400 --flux Roe --graph`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m1d := &Model1D{}
		m1d.K, _ = cmd.Flags().GetInt("k")
		m1d.FluxType, _ = cmd.Flags().GetString("flux")
		m1d.Limiter, _ = cmd.Flags().GetString("limiter")
		m1d.CFL, _ = cmd.Flags().GetFloat64("CFL")
		m1d.FinalTime, _ = cmd.Flags().GetFloat64("finalTime")
		m1d.Graph, _ = cmd.Flags().GetBool("graph")
		dr, _ := cmd.Flags().GetInt("delay")
		m1d.Delay = time.Duration(dr) * time.Millisecond
		return Run1D(cmd.Context(), m1d)
	},
}

func init() {
	rootCmd.AddCommand(OneDCmd)
	OneDCmd.Flags().IntP("k", "k", 200, "Number of cells")
	OneDCmd.Flags().String("flux", "HLLC", "Riemann solver: HLLC, Roe or Lax")
	OneDCmd.Flags().String("limiter", "MC", "slope limiter: MinMod, VanLeer or MC")
	OneDCmd.Flags().Float64("CFL", 0.5, "CFL - increase for speedup, decrease for stability")
	OneDCmd.Flags().Float64("finalTime", 0.2, "FinalTime - the target end time for the sim")
	OneDCmd.Flags().BoolP("graph", "g", false, "display a graph while computing solution")
	OneDCmd.Flags().IntP("delay", "d", 0, "milliseconds of delay for plotting")
}

type Model1D struct {
	K                 int
	FluxType, Limiter string
	CFL, FinalTime    float64
	Graph             bool
	Delay             time.Duration
}

// Input is the run description of the shock tube.
func (m1d *Model1D) Input() *InputParameters.InputParameters {
	sod := sod_shock_tube.Sod()
	return &InputParameters.InputParameters{
		Title:        "Sod shock tube",
		Dim:          1,
		NCells:       []int{m1d.K},
		MaxPatchSize: 64,
		ProbLo:       []float64{0},
		ProbHi:       []float64{1},
		CFL:          m1d.CFL,
		FinalTime:    m1d.FinalTime,
		FluxType:     m1d.FluxType,
		Limiter:      m1d.Limiter,
		ProcLimit:    viper.GetInt("procLimit"),
		Gas:          InputParameters.GasParameters{Gamma: sod.Gamma, W: 0.02897},
		InitType:     "ShockTube",
		Initial:      InputParameters.StateParameters{Rho: sod.L.Rho, P: sod.L.P},
		Right:        &InputParameters.StateParameters{Rho: sod.R.Rho, P: sod.R.P},
		BCs: map[string]InputParameters.FaceParameters{
			"xlo": {Type: "Outflow"},
			"xhi": {Type: "Outflow"},
		},
	}
}

func Run1D(ctx context.Context, m1d *Model1D) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ip := m1d.Input()
	if err = ip.Validate(); err != nil {
		return
	}
	ip.Print()
	var s *Solver.Solver
	if s, err = Solver.NewSolver(ip, logger); err != nil {
		return
	}
	s.Hydro.Params.Print()
	pl := &profilePlot{delay: m1d.Delay, exact: sod_shock_tube.Sod()}
	err = measure(viper.GetBool("perf"), func() error {
		return s.Run(ctx, func(s *Solver.Solver, diag rf.Diagnostics) {
			if m1d.Graph {
				pl.plot(s)
			}
		})
	})
	if err != nil {
		return
	}
	X, Rho, P, _, _, err := s.LineProfile()
	if err != nil {
		return
	}
	exRho, exP, _, _ := sod_shock_tube.Sod().Profile(X, 0.5, s.Time)
	var l1Rho, l1P float64
	for i := range X {
		l1Rho += math.Abs(Rho[i]-exRho[i]) / float64(len(X))
		l1P += math.Abs(P[i]-exP[i]) / float64(len(X))
	}
	fmt.Printf("Time = %8.5f, Steps = %d, L1(Rho) = %8.5f, L1(P) = %8.5f\n", s.Time, s.Steps, l1Rho, l1P)
	return
}

type profilePlot struct {
	once     sync.Once
	chart    *chart2d.Chart2D
	colorMap *utils2.ColorMap
	delay    time.Duration
	exact    *sod_shock_tube.ExactRiemann
}

func (pl *profilePlot) plot(s *Solver.Solver) {
	X, Rho, P, U, _, err := s.LineProfile()
	if err != nil || len(X) == 0 {
		return
	}
	pl.once.Do(func() {
		pl.chart = chart2d.NewChart2D(1920, 1280, float32(X[0]), float32(X[len(X)-1]), -0.1, 1.5)
		pl.colorMap = utils2.NewColorMap(-1, 1, 1)
		go pl.chart.Plot()
	})
	pSeries := func(name string, x, field []float64, color float32, gl chart2d.GlyphType, lt chart2d.LineType) {
		if err := pl.chart.AddSeries(name, x, field, gl, lt, pl.colorMap.GetRGB(color)); err != nil {
			panic("unable to add graph series")
		}
	}
	pSeries("Rho", X, Rho, -0.7, chart2d.NoGlyph, chart2d.Solid)
	pSeries("P", X, P, 0.0, chart2d.NoGlyph, chart2d.Solid)
	pSeries("U", X, U, 0.7, chart2d.NoGlyph, chart2d.Solid)
	if pl.exact != nil {
		exRho, exP, exU, _ := pl.exact.Profile(X, 0.5, s.Time)
		pSeries("ExactRho", X, exRho, -0.7, chart2d.XGlyph, chart2d.NoLine)
		pSeries("ExactP", X, exP, 0.0, chart2d.XGlyph, chart2d.NoLine)
		pSeries("ExactU", X, exU, 0.7, chart2d.XGlyph, chart2d.NoLine)
	}
	if pl.delay != 0 {
		time.Sleep(pl.delay)
	}
}
