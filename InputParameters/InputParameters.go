package InputParameters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/reactingflow/grid"
	rf "github.com/notargets/reactingflow/model_problems/ReactingFlow"
	"github.com/notargets/reactingflow/model_problems/Reactions"
	"github.com/notargets/reactingflow/thermo"
	"github.com/notargets/reactingflow/types"
)

var faceNames = [3][2]string{{"xlo", "xhi"}, {"ylo", "yhi"}, {"zlo", "zhi"}}

type SpeciesParameters struct {
	Name string  `json:"Name"`
	W    float64 `json:"W"`
	CvA  float64 `json:"CvA"`
	CvB  float64 `json:"CvB"`
	Ef   float64 `json:"Ef"`
}

type ReactionParameters struct {
	A         float64            `json:"A"`
	Beta      float64            `json:"Beta"`
	Ea        float64            `json:"Ea"`
	Reactants map[string]float64 `json:"Reactants"`
	Products  map[string]float64 `json:"Products"`
}

// GasParameters describe either a calorically perfect gas (Gamma, W) or a
// mixture of Species with an optional reaction mechanism.
type GasParameters struct {
	Gamma     float64              `json:"Gamma"`
	W         float64              `json:"W"`
	Species   []SpeciesParameters  `json:"Species"`
	Reactions []ReactionParameters `json:"Reactions"`
}

// StateParameters is a gas state given by pressure and either density or
// temperature. Y defaults to all of the first species.
type StateParameters struct {
	Rho float64            `json:"Rho"`
	T   float64            `json:"T"`
	P   float64            `json:"P"`
	Vel []float64          `json:"Vel"`
	Y   map[string]float64 `json:"Y"`
}

type FaceParameters struct {
	Type   string           `json:"Type"`
	Target *StateParameters `json:"Target"`
}

type IntegratorParameters struct {
	NStepsMin   int     `json:"NStepsMin"`
	NStepsMax   int     `json:"NStepsMax"`
	NStepsGuess int     `json:"NStepsGuess"`
	ErrTol      float64 `json:"ErrTol"`
}

// Parameters obtained from the YAML input file
type InputParameters struct {
	Title        string                    `json:"Title"`
	Dim          int                       `json:"Dim"`
	NCells       []int                     `json:"NCells"`
	MaxPatchSize int                       `json:"MaxPatchSize"`
	ProbLo       []float64                 `json:"ProbLo"`
	ProbHi       []float64                 `json:"ProbHi"`
	Coord        string                    `json:"Coord"`
	CFL          float64                   `json:"CFL"`
	FinalTime    float64                   `json:"FinalTime"`
	MaxSteps     int                       `json:"MaxSteps"`
	FluxType     string                    `json:"FluxType"`
	Limiter      string                    `json:"Limiter"`
	NSCBC        bool                      `json:"NSCBC"`
	HardCFLLimit bool                      `json:"HardCFLLimit"`
	DoReact      bool                      `json:"DoReact"`
	ProcLimit    int                       `json:"ProcLimit"`
	Gas          GasParameters             `json:"Gas"`
	Integrator   IntegratorParameters      `json:"Integrator"`
	InitType     string                    `json:"InitType"` // Uniform, ShockTube, Hotspot or DensityWave
	Initial      StateParameters           `json:"Initial"`
	Right        *StateParameters          `json:"Right"` // ShockTube: state right of the mid plane
	BCs          map[string]FaceParameters `json:"BCs"`   // keyed by xlo, xhi, ylo, ...
}

func (ip *InputParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	ip.setDefaults()
	return ip.Validate()
}

func (ip *InputParameters) setDefaults() {
	if ip.Dim == 0 {
		ip.Dim = len(ip.NCells)
	}
	if ip.CFL == 0 {
		ip.CFL = 0.5
	}
	if ip.MaxPatchSize == 0 {
		ip.MaxPatchSize = 64
	}
	if ip.InitType == "" {
		ip.InitType = "Uniform"
	}
	if ip.Integrator == (IntegratorParameters{}) {
		ip.Integrator = IntegratorParameters{NStepsMin: 5, NStepsMax: 500, NStepsGuess: 10, ErrTol: 1.e-8}
	}
}

func (ip *InputParameters) Validate() error {
	switch {
	case ip.Dim < 1 || ip.Dim > 3:
		return fmt.Errorf("dimension %d must be 1, 2 or 3", ip.Dim)
	case len(ip.NCells) != ip.Dim || len(ip.ProbLo) != ip.Dim || len(ip.ProbHi) != ip.Dim:
		return fmt.Errorf("NCells %v, ProbLo %v and ProbHi %v must all have %d entries",
			ip.NCells, ip.ProbLo, ip.ProbHi, ip.Dim)
	case !(ip.CFL > 0):
		return fmt.Errorf("CFL %g must be positive", ip.CFL)
	case ip.MaxPatchSize < rf.NGROW:
		return fmt.Errorf("MaxPatchSize %d is smaller than the halo width %d", ip.MaxPatchSize, rf.NGROW)
	}
	for key := range ip.BCs {
		if _, _, ok := faceIndex(key); !ok {
			return fmt.Errorf("unknown boundary face [%s]", key)
		}
	}
	return nil
}

func faceIndex(key string) (d int, side grid.Side, ok bool) {
	key = strings.ToLower(key)
	for d = 0; d < 3; d++ {
		for s := 0; s < 2; s++ {
			if faceNames[d][s] == key {
				return d, grid.Side(s), true
			}
		}
	}
	return
}

// EOS builds the gas model and its kinetics. A gas without reactions gets
// an empty mechanism.
func (ip *InputParameters) EOS() (eos *thermo.IdealGasMixture, kin *thermo.ArrheniusMechanism, err error) {
	gp := ip.Gas
	if len(gp.Species) == 0 {
		if gp.Gamma <= 1 || gp.W <= 0 {
			err = fmt.Errorf("perfect gas needs Gamma > 1 and W > 0, have %g and %g", gp.Gamma, gp.W)
			return
		}
		eos = thermo.NewCaloricallyPerfectGas(gp.Gamma, gp.W)
	} else {
		sp := make([]thermo.Species, len(gp.Species))
		for n, s := range gp.Species {
			sp[n] = thermo.Species{Name: s.Name, W: s.W, CvA: s.CvA, CvB: s.CvB, Ef: s.Ef}
		}
		if eos, err = thermo.NewIdealGasMixture(sp); err != nil {
			return
		}
	}
	var (
		rxns []thermo.Reaction
	)
	for n, r := range gp.Reactions {
		rx := thermo.Reaction{A: r.A, Beta: r.Beta, Ea: r.Ea}
		if rx.Reactants, err = stoich(eos, r.Reactants); err != nil {
			err = fmt.Errorf("reaction %d reactants: %w", n, err)
			return
		}
		if rx.Products, err = stoich(eos, r.Products); err != nil {
			err = fmt.Errorf("reaction %d products: %w", n, err)
			return
		}
		rxns = append(rxns, rx)
	}
	kin, err = thermo.NewArrheniusMechanism(eos, rxns)
	return
}

func speciesIndex(eos thermo.EOS, name string) (int, error) {
	for n, s := range eos.SpeciesNames() {
		if strings.EqualFold(s, name) {
			return n, nil
		}
	}
	return -1, fmt.Errorf("unknown species [%s]", name)
}

func stoich(eos thermo.EOS, m map[string]float64) (st []thermo.Stoich, err error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var n int
		if n, err = speciesIndex(eos, k); err != nil {
			return
		}
		st = append(st, thermo.Stoich{Species: n, Nu: m[k]})
	}
	return
}

// Prim returns the primitive state vector for sp.
func (sp StateParameters) Prim(eos thermo.EOS) (q []float64, err error) {
	var (
		ns = eos.NumSpecies()
		Y  = make([]float64, ns)
	)
	if len(sp.Y) == 0 {
		Y[0] = 1
	}
	for name, y := range sp.Y {
		var n int
		if n, err = speciesIndex(eos, name); err != nil {
			return
		}
		Y[n] = y
	}
	var sum float64
	for _, y := range Y {
		sum += y
	}
	if sum <= 0 {
		err = fmt.Errorf("mass fractions %v do not sum to a positive value", sp.Y)
		return
	}
	for n := range Y {
		Y[n] /= sum
	}
	var (
		rho, T = sp.Rho, sp.T
	)
	switch {
	case !(sp.P > 0):
		err = fmt.Errorf("state needs a positive pressure, have %g", sp.P)
		return
	case rho > 0:
		if T, err = eos.RPY2T(rho, sp.P, Y); err != nil {
			return
		}
	case T > 0:
		rho = sp.P / (T * eos.RTY2P(1, 1, Y))
	default:
		err = fmt.Errorf("state needs either Rho or T")
		return
	}
	q = make([]float64, rf.QVar(ns))
	q[rf.QRHO], q[rf.QPRES], q[rf.QTEMP] = rho, sp.P, T
	for d, v := range sp.Vel {
		if d < 3 {
			q[rf.QU+d] = v
		}
	}
	q[rf.QREINT] = rho * eos.TY2E(T, Y)
	copy(q[rf.QFS:], Y)
	return
}

// Cons returns the conserved state vector for sp.
func (sp StateParameters) Cons(eos thermo.EOS) (u []float64, err error) {
	var q []float64
	if q, err = sp.Prim(eos); err != nil {
		return
	}
	ns := eos.NumSpecies()
	u = make([]float64, rf.NVar(ns))
	rf.PrimToCons(q, u, ns)
	return
}

// Geometry returns the level 0 geometry, periodic in the directions whose
// low face is named periodic.
func (ip *InputParameters) Geometry() (geom grid.Geometry, err error) {
	var (
		hi             grid.IntVect
		probLo, probHi [3]float64
		periodic       [3]bool
		coord          = types.Cartesian
		ok             bool
	)
	for d := 0; d < ip.Dim; d++ {
		hi[d] = ip.NCells[d] - 1
		probLo[d], probHi[d] = ip.ProbLo[d], ip.ProbHi[d]
		if fp, found := ip.BCs[faceNames[d][0]]; found && strings.EqualFold(fp.Type, "periodic") {
			periodic[d] = true
		}
	}
	if ip.Coord != "" {
		if coord, ok = types.CoordNames[strings.ToLower(ip.Coord)]; !ok {
			err = fmt.Errorf("unknown coordinate system [%s]", ip.Coord)
			return
		}
	}
	return grid.NewGeometry(grid.NewBox(ip.Dim, grid.IntVect{}, hi), probLo, probHi, periodic, coord)
}

// PatchBoxes chops the domain into patches of at most MaxPatchSize cells
// per direction.
func (ip *InputParameters) PatchBoxes(domain grid.Box) (boxes []grid.Box) {
	boxes = []grid.Box{domain}
	for d := 0; d < domain.Dim; d++ {
		var next []grid.Box
		for _, b := range boxes {
			for lo := b.Lo[d]; lo <= b.Hi[d]; lo += ip.MaxPatchSize {
				c := b
				c.Lo[d] = lo
				c.Hi[d] = min(lo+ip.MaxPatchSize-1, b.Hi[d])
				next = append(next, c)
			}
		}
		boxes = next
	}
	return
}

// HydroParams maps the input onto the hydro driver parameters. Inflow and
// outflow faces with a Target relax toward it.
func (ip *InputParameters) HydroParams(eos thermo.EOS) (p rf.Params, err error) {
	p = rf.DefaultParams()
	if ip.FluxType != "" {
		p.FluxType = rf.NewFluxType(ip.FluxType)
	}
	if ip.Limiter != "" {
		p.Limiter = rf.NewLimiterType(ip.Limiter)
	}
	p.UseNSCBC = ip.NSCBC
	p.HardCFLLimit = ip.HardCFLLimit
	p.DoReact = ip.DoReact
	p.ProcLimit = ip.ProcLimit
	var lo, hi [3]types.PhysBC
	for key, fp := range ip.BCs {
		d, side, _ := faceIndex(key)
		var bc types.PhysBC
		if bc, err = types.NewPhysBC(fp.Type); err != nil {
			return
		}
		if side == grid.Lo {
			lo[d] = bc
		} else {
			hi[d] = bc
		}
		if fp.Target != nil {
			var qt []float64
			if qt, err = fp.Target.Prim(eos); err != nil {
				err = fmt.Errorf("target at %s: %w", key, err)
				return
			}
			p.CharBC.Targets[d][side] = rf.ConstantTarget(qt)
		}
	}
	for d := 0; d < ip.Dim; d++ {
		for s, bc := range [2]types.PhysBC{lo[d], hi[d]} {
			if bc == types.BC_Interior {
				if fp, ok := ip.BCs[faceNames[d][s]]; !ok || !strings.EqualFold(fp.Type, "periodic") {
					err = fmt.Errorf("face %s needs a boundary condition", faceNames[d][s])
					return
				}
			}
		}
	}
	p.BC = grid.NewBCRec(lo, hi)
	return
}

func (ip *InputParameters) StepBounds() Reactions.StepBounds {
	return Reactions.StepBounds{
		NStepsMin:   ip.Integrator.NStepsMin,
		NStepsMax:   ip.Integrator.NStepsMax,
		NStepsGuess: ip.Integrator.NStepsGuess,
		ErrTol:      ip.Integrator.ErrTol,
	}
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%v\t\t\t= Cells\n", ip.NCells)
	fmt.Printf("%8.5f\t\t= CFL\n", ip.CFL)
	fmt.Printf("%8.5f\t\t= FinalTime\n", ip.FinalTime)
	fmt.Printf("[%s]\t\t\t= Flux Type\n", ip.FluxType)
	fmt.Printf("[%s]\t\t\t= Limiter\n", ip.Limiter)
	fmt.Printf("[%s]\t\t= InitType\n", ip.InitType)
	fmt.Printf("[%v]\t\t\t= NSCBC\n", ip.NSCBC)
	fmt.Printf("[%v]\t\t\t= React\n", ip.DoReact)
	keys := make([]string, 0, len(ip.BCs))
	for k := range ip.BCs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %s\n", key, ip.BCs[key].Type)
	}
}
