package ReactingFlow

// Conserved state components. Momentum always has three components, the
// ones beyond the problem dimension stay zero.
const (
	URHO = iota
	UMX
	UMY
	UMZ
	UEDEN
	UTEMP
	UFS
)

// Primitive state components
const (
	QRHO = iota
	QU
	QV
	QW
	QPRES
	QREINT
	QTEMP
	QFS
)

// Auxiliary closure quantities
const (
	QGAMC = iota
	QC
	QDPDR
	QDPDE
	NQAUX
)

// NGROW is the halo width needed by the reconstruction stencil plus the
// characteristic boundary fill.
const NGROW = 4

func NVar(nSpec int) int { return UFS + nSpec }

func QVar(nSpec int) int { return QFS + nSpec }

// MomComps maps a direction to its momentum component, for halo reflection.
var MomComps = [3]int{UMX, UMY, UMZ}

// KineticEnergy is the kinetic energy density of a conserved cell vector.
func KineticEnergy(u []float64) float64 {
	return 0.5 * (u[UMX]*u[UMX] + u[UMY]*u[UMY] + u[UMZ]*u[UMZ]) / u[URHO]
}
