package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/reactingflow/grid"
	rf "github.com/notargets/reactingflow/model_problems/ReactingFlow"
	"github.com/notargets/reactingflow/types"
)

var channel = []byte(`
Title: Reacting channel
NCells: [32, 16]
MaxPatchSize: 16
ProbLo: [0, 0]
ProbHi: [0.02, 0.01]
FinalTime: 1.e-4
FluxType: Roe
NSCBC: true
DoReact: true
Gas:
  Species:
    - {Name: F, W: 0.03, CvA: 700, CvB: 0.1}
    - {Name: P, W: 0.03, CvA: 700, CvB: 0.1, Ef: -1.e6}
  Reactions:
    - {A: 1.e8, Ea: 1.e5, Reactants: {F: 1}, Products: {P: 1}}
Initial: {T: 1200, P: 1.e5, Vel: [30, 0], Y: {F: 1}}
BCs:
  xlo:
    Type: Inflow
    Target: {T: 1200, P: 1.e5, Vel: [30, 0], Y: {F: 1}}
  xhi:
    Type: Outflow
    Target: {T: 1200, P: 1.e5}
  ylo: {Type: Periodic}
  yhi: {Type: Periodic}
`)

func TestParseChannel(t *testing.T) {
	var ip InputParameters
	require.NoError(t, ip.Parse(channel))
	ip.Print()
	assert.Equal(t, 2, ip.Dim)
	assert.Equal(t, 0.5, ip.CFL)
	assert.Equal(t, "Uniform", ip.InitType)
	assert.Equal(t, 1.e-8, ip.Integrator.ErrTol)
	assert.NoError(t, ip.StepBounds().Validate())

	eos, kin, err := ip.EOS()
	require.NoError(t, err)
	assert.Equal(t, []string{"F", "P"}, eos.SpeciesNames())
	assert.Equal(t, 1, kin.NumReactions())

	geom, err := ip.Geometry()
	require.NoError(t, err)
	assert.Equal(t, [3]bool{false, true, false}, geom.Periodic)
	assert.InDelta(t, 0.02/32, geom.CellSize()[0], 1.e-18)
	boxes := ip.PatchBoxes(geom.Domain)
	assert.Len(t, boxes, 2)
	assert.Equal(t, grid.NewBox(2, grid.IntVect{16, 0}, grid.IntVect{31, 15}), boxes[1])

	p, err := ip.HydroParams(eos)
	require.NoError(t, err)
	assert.Equal(t, rf.FLUX_Roe, p.FluxType)
	assert.True(t, p.UseNSCBC)
	assert.Equal(t, types.BC_Inflow, p.BC[0][grid.Lo])
	assert.Equal(t, types.BC_Outflow, p.BC[0][grid.Hi])
	assert.Equal(t, types.BC_Interior, p.BC[1][grid.Lo])
	assert.NotNil(t, p.CharBC.Targets[0][grid.Lo])
	assert.Nil(t, p.CharBC.Targets[1][grid.Lo])

	q, err := ip.Initial.Prim(eos)
	require.NoError(t, err)
	assert.InDelta(t, 1.e5, eos.RTY2P(q[rf.QRHO], q[rf.QTEMP], q[rf.QFS:]), 1.e-6)
	assert.Equal(t, 30., q[rf.QU])
	u, err := ip.Initial.Cons(eos)
	require.NoError(t, err)
	assert.InDelta(t, q[rf.QRHO]*30, u[rf.UMX], 1.e-12)
}

func TestParseErrors(t *testing.T) {
	var ip InputParameters
	{ // Missing extents
		assert.Error(t, ip.Parse([]byte(`NCells: [10, 10]
ProbLo: [0]
ProbHi: [1, 1]`)))
	}
	{ // Unknown face
		ip = InputParameters{}
		assert.Error(t, ip.Parse([]byte(`NCells: [10]
ProbLo: [0]
ProbHi: [1]
BCs:
  left: {Type: Outflow}`)))
	}
	{ // A face without a condition
		ip = InputParameters{}
		require.NoError(t, ip.Parse([]byte(`NCells: [10]
ProbLo: [0]
ProbHi: [1]
Gas: {Gamma: 1.4, W: 0.029}
BCs:
  xlo: {Type: Outflow}`)))
		eos, _, err := ip.EOS()
		require.NoError(t, err)
		_, err = ip.HydroParams(eos)
		assert.ErrorContains(t, err, "xhi")
	}
	{ // State without density or temperature
		ip = InputParameters{Gas: GasParameters{Gamma: 1.4, W: 0.029}}
		eos, _, err := ip.EOS()
		require.NoError(t, err)
		_, err = StateParameters{P: 1.e5}.Prim(eos)
		assert.Error(t, err)
		_, err = StateParameters{P: 1.e5, T: 300, Y: map[string]float64{"N2": 1}}.Prim(eos)
		assert.ErrorContains(t, err, "N2")
	}
}
