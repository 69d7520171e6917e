package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/notargets/reactingflow/InputParameters"
	"github.com/notargets/reactingflow/model_problems/Solver"
	"github.com/notargets/reactingflow/tools/convOrder"
)

// ConvergeCmd represents the converge command
var ConvergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Grid convergence of an advected density wave",
	Long: `
Advects a periodic density wave through one period at a sequence of
resolutions and reports the error norms and the observed order,

reactingflow converge -n 32,64,128 --limiter MC --csv wave.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mc := &ModelConverge{}
		mc.NumPts, _ = cmd.Flags().GetIntSlice("n")
		mc.FluxType, _ = cmd.Flags().GetString("flux")
		mc.Limiter, _ = cmd.Flags().GetString("limiter")
		mc.CFL, _ = cmd.Flags().GetFloat64("CFL")
		mc.CSVFile, _ = cmd.Flags().GetString("csv")
		cs, err := RunConverge(cmd.Context(), mc)
		if err != nil {
			return err
		}
		cs.Print()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ConvergeCmd)
	ConvergeCmd.Flags().IntSliceP("n", "n", []int{32, 64, 128}, "resolutions to run")
	ConvergeCmd.Flags().String("flux", "HLLC", "Riemann solver: HLLC, Roe or Lax")
	ConvergeCmd.Flags().String("limiter", "MC", "slope limiter: MinMod, VanLeer or MC")
	ConvergeCmd.Flags().Float64("CFL", 0.5, "CFL")
	ConvergeCmd.Flags().String("csv", "", "write the error norms to this CSV file")
}

type ModelConverge struct {
	NumPts            []int
	FluxType, Limiter string
	CFL               float64
	CSVFile           string
}

// Input is a unit period wave at resolution n with speed 1.
func (mc *ModelConverge) Input(n int) *InputParameters.InputParameters {
	return &InputParameters.InputParameters{
		Title:        "Density wave",
		Dim:          1,
		NCells:       []int{n},
		MaxPatchSize: 64,
		ProbLo:       []float64{0},
		ProbHi:       []float64{1},
		CFL:          mc.CFL,
		FinalTime:    1,
		FluxType:     mc.FluxType,
		Limiter:      mc.Limiter,
		ProcLimit:    viper.GetInt("procLimit"),
		Gas:          InputParameters.GasParameters{Gamma: 1.4, W: 0.02897},
		InitType:     "DensityWave",
		Initial:      InputParameters.StateParameters{Rho: 1, P: 1, Vel: []float64{1}},
		BCs: map[string]InputParameters.FaceParameters{
			"xlo": {Type: "Periodic"},
			"xhi": {Type: "Periodic"},
		},
	}
}

func RunConverge(ctx context.Context, mc *ModelConverge) (cs *convOrder.ConvergenceStudy, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cs = convOrder.NewConvergenceStudy(fmt.Sprintf("DensityWave %s/%s", mc.FluxType, mc.Limiter), mc.CFL)
	for _, n := range mc.NumPts {
		ip := mc.Input(n)
		if err = ip.Validate(); err != nil {
			return nil, err
		}
		var s *Solver.Solver
		if s, err = Solver.NewSolver(ip, logger); err != nil {
			return nil, err
		}
		if err = s.Run(ctx, nil); err != nil {
			return nil, err
		}
		var (
			X, Rho, P  []float64
			exRho, exP []float64
		)
		if X, Rho, P, _, _, err = s.LineProfile(); err != nil {
			return nil, err
		}
		if exRho, err = s.ExactDensity(X); err != nil {
			return nil, err
		}
		exP = make([]float64, len(P))
		for i := range exP {
			exP[i] = ip.Initial.P
		}
		rhoL1, rhoLInf := convOrder.Norms(Rho, exRho)
		pL1, pLInf := convOrder.Norms(P, exP)
		cs.Add(n, rhoL1, rhoLInf, pL1, pLInf)
		logger.Info("resolution done", zap.Int("n", n), zap.Int("steps", s.Steps),
			zap.Float64("rho_l1", rhoL1), zap.Float64("rho_linf", rhoLInf))
	}
	if mc.CSVFile != "" {
		var f *os.File
		if f, err = os.OpenFile(mc.CSVFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644); err != nil {
			return nil, err
		}
		defer f.Close()
		if err = convOrder.WriteCSV(f, cs); err != nil {
			return nil, err
		}
	}
	return
}
