package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	rf "github.com/notargets/reactingflow/model_problems/ReactingFlow"
	"github.com/notargets/reactingflow/model_problems/Reactions"
	"github.com/notargets/reactingflow/thermo"
)

// ReactCmd represents the react command
var ReactCmd = &cobra.Command{
	Use:   "react",
	Short: "Constant volume ignition of a single cell",
	Long: `Integrates a one step F -> P mechanism in a closed cell and prints the
temperature history along with the integrator cost of each interval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		T0, _ := cmd.Flags().GetFloat64("T")
		dt, _ := cmd.Flags().GetFloat64("dt")
		n, _ := cmd.Flags().GetInt("intervals")
		tol, _ := cmd.Flags().GetFloat64("tol")
		return RunReact(T0, dt, n, tol)
	},
}

func init() {
	rootCmd.AddCommand(ReactCmd)
	ReactCmd.Flags().Float64("T", 1200, "initial temperature (K)")
	ReactCmd.Flags().Float64("dt", 1.e-5, "reaction interval (s)")
	ReactCmd.Flags().IntP("intervals", "n", 20, "number of intervals")
	ReactCmd.Flags().Float64("tol", 1.e-6, "integrator error tolerance")
}

func ignitionGas() (eos *thermo.IdealGasMixture, kin *thermo.ArrheniusMechanism, err error) {
	if eos, err = thermo.NewIdealGasMixture([]thermo.Species{
		{Name: "F", W: 0.029, CvA: 735, CvB: 0.05, Ef: 1.e6},
		{Name: "P", W: 0.029, CvA: 735, CvB: 0.05},
	}); err != nil {
		return
	}
	kin, err = thermo.NewArrheniusMechanism(eos, []thermo.Reaction{{
		A:         1.e8,
		Ea:        8.e4,
		Reactants: []thermo.Stoich{{Species: 0, Nu: 1}},
		Products:  []thermo.Stoich{{Species: 1, Nu: 1}},
	}})
	return
}

// RunReact integrates the cell interval by interval, feeding each result
// back as the next starting state.
func RunReact(T0, dt float64, intervals int, tol float64) (err error) {
	var (
		eos *thermo.IdealGasMixture
		kin *thermo.ArrheniusMechanism
		it  *Reactions.Integrator
	)
	if eos, kin, err = ignitionGas(); err != nil {
		return
	}
	if it, err = Reactions.NewIntegrator(eos, kin,
		Reactions.StepBounds{NStepsMin: 1, NStepsMax: 100000, NStepsGuess: 10, ErrTol: tol}, true, logger); err != nil {
		return
	}
	var (
		c   = Reactions.NewCell(2)
		Y   = []float64{1, 0}
		rho = 1.
	)
	c.Old[rf.URHO] = rho
	c.Old[rf.UTEMP] = T0
	c.Old[rf.UEDEN] = rho * eos.TY2E(T0, Y)
	c.Old[rf.UFS], c.Old[rf.UFS+1] = rho*Y[0], rho*Y[1]
	fmt.Printf("%10s %12s %12s %8s\n", "time", "T", "Y_F", "steps")
	var total int
	for i := 0; i < intervals; i++ {
		copy(c.New, c.Old)
		var steps int
		if steps, err = it.Integrate(c, dt); err != nil {
			return fmt.Errorf("interval %d: %w", i, err)
		}
		total += steps
		fmt.Printf("%10.3e %12.5f %12.5e %8d\n", float64(i+1)*dt, c.New[rf.UTEMP], c.New[rf.UFS]/c.New[rf.URHO], steps)
		copy(c.Old, c.New)
	}
	fmt.Printf("total integrator steps = %d\n", total)
	return
}
