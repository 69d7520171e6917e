package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/notargets/reactingflow/InputParameters"
	rf "github.com/notargets/reactingflow/model_problems/ReactingFlow"
	"github.com/notargets/reactingflow/model_problems/Solver"
)

type Model2D struct {
	ICFile    string
	Graph     bool
	PlotSteps int
	Delay     time.Duration
}

// TwoDCmd represents the 2D command
var TwoDCmd = &cobra.Command{
	Use:   "2D",
	Short: "Run a case described by a YAML input file",
	Long: `Runs the case in an input file on a single level of patches. The file
sets the domain, gas, chemistry, boundary conditions and run controls.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		m2d := &Model2D{}
		if m2d.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			return
		}
		m2d.Graph, _ = cmd.Flags().GetBool("graph")
		m2d.PlotSteps, _ = cmd.Flags().GetInt("plotSteps")
		dr, _ := cmd.Flags().GetInt("delay")
		m2d.Delay = time.Duration(dr) * time.Millisecond
		var ip *InputParameters.InputParameters
		if ip, err = processInput(m2d); err != nil {
			return
		}
		return Run2D(cmd.Context(), m2d, ip)
	},
}

const exampleFile = `
########################################
Title: "Channel"
NCells: [64, 32]
ProbLo: [0, 0]
ProbHi: [0.02, 0.01]
CFL: 0.5
FinalTime: 1.e-4
FluxType: HLLC
NSCBC: true
Gas: {Gamma: 1.4, W: 0.02897}
InitType: Uniform # ShockTube, Hotspot, DensityWave or Vortex
Initial: {T: 300, P: 1.e5, Vel: [50, 0]}
BCs:
  xlo: {Type: Inflow, Target: {T: 300, P: 1.e5, Vel: [50, 0]}}
  xhi: {Type: Outflow, Target: {T: 300, P: 1.e5}}
  ylo: {Type: Periodic}
  yhi: {Type: Periodic}
########################################
`

func processInput(m2d *Model2D) (ip *InputParameters.InputParameters, err error) {
	if len(m2d.ICFile) == 0 {
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile), example:%s", exampleFile)
		return
	}
	var data []byte
	if data, err = os.ReadFile(m2d.ICFile); err != nil {
		return
	}
	if ip, err = Solver.ParseInput(data); err != nil {
		err = fmt.Errorf("%s: %w", m2d.ICFile, err)
		return
	}
	if pl := viper.GetInt("procLimit"); pl != 0 {
		ip.ProcLimit = pl
	}
	return
}

func init() {
	rootCmd.AddCommand(TwoDCmd)
	TwoDCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- CFL\n\t- boundary conditions")
	TwoDCmd.Flags().BoolP("graph", "g", false, "display the mid line x profile while computing solution")
	TwoDCmd.Flags().IntP("delay", "d", 0, "milliseconds of delay for plotting")
	TwoDCmd.Flags().IntP("plotSteps", "s", 1, "number of steps before plotting each frame")
}

func Run2D(ctx context.Context, m2d *Model2D, ip *InputParameters.InputParameters) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ip.Print()
	var s *Solver.Solver
	if s, err = Solver.NewSolver(ip, logger); err != nil {
		return
	}
	s.Hydro.Params.Print()
	var (
		pl   = &profilePlot{delay: m2d.Delay}
		last rf.Diagnostics
	)
	err = measure(viper.GetBool("perf"), func() error {
		return s.Run(ctx, func(s *Solver.Solver, diag rf.Diagnostics) {
			last = diag
			if m2d.Graph && m2d.PlotSteps > 0 && s.Steps%m2d.PlotSteps == 0 {
				pl.plot(s)
			}
		})
	})
	if err != nil {
		return
	}
	last.Print()
	tot := s.Totals()
	logger.Info("totals", zap.Float64("mass", tot[rf.URHO]), zap.Float64("energy", tot[rf.UEDEN]))
	return
}
