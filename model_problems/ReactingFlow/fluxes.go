package ReactingFlow

import (
	"fmt"
	"math"
	"strings"
)

type FluxType uint8

const (
	FLUX_LaxFriedrichs FluxType = iota
	FLUX_Roe
	FLUX_HLLC
)

var (
	FluxNames = map[string]FluxType{
		"lax":     FLUX_LaxFriedrichs,
		"rusanov": FLUX_LaxFriedrichs,
		"roe":     FLUX_Roe,
		"hllc":    FLUX_HLLC,
	}
	FluxPrintNames = []string{"Lax Friedrichs", "Roe", "HLLC"}
)

func (ft FluxType) Print() (txt string) {
	txt = FluxPrintNames[ft]
	return
}

func NewFluxType(label string) (ft FluxType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if len(label) == 0 {
		return FLUX_HLLC
	}
	if ft, ok = FluxNames[label]; !ok {
		err = fmt.Errorf("unable to use flux named %s", label)
		panic(err)
	}
	return
}

/*
faceState is one side of a face in face normal coordinates: un is the
velocity along the face normal, ut1 and ut2 follow in cyclic order.
*/
type faceState struct {
	rho, un, ut1, ut2, p, rhoe, c float64
	Y                             []float64
}

func (s *faceState) energy() float64 {
	return s.rhoe + 0.5*s.rho*(s.un*s.un+s.ut1*s.ut1+s.ut2*s.ut2)
}

// Flux components in face normal coordinates
const (
	fRHO = iota
	fMN
	fMT1
	fMT2
	fE
	nFlux
)

func (s *faceState) conserved() (U [nFlux]float64) {
	U = [nFlux]float64{s.rho, s.rho * s.un, s.rho * s.ut1, s.rho * s.ut2, s.energy()}
	return
}

func (s *faceState) physFlux() (F [nFlux]float64) {
	mf := s.rho * s.un
	F = [nFlux]float64{mf, mf*s.un + s.p, mf * s.ut1, mf * s.ut2, (s.energy() + s.p) * s.un}
	return
}

// riemann returns the face flux and the face pressure implied by it.
func riemann(ft FluxType, L, R *faceState) (F [nFlux]float64, pFace float64) {
	switch ft {
	case FLUX_LaxFriedrichs:
		return laxFlux(L, R)
	case FLUX_Roe:
		return roeFlux(L, R)
	default:
		return hllcFlux(L, R)
	}
}

func laxFlux(L, R *faceState) (F [nFlux]float64, pFace float64) {
	var (
		FL, FR = L.physFlux(), R.physFlux()
		UL, UR = L.conserved(), R.conserved()
		maxV   = math.Max(math.Abs(L.un)+L.c, math.Abs(R.un)+R.c)
	)
	for n := 0; n < nFlux; n++ {
		F[n] = 0.5*(FL[n]+FR[n]) - 0.5*maxV*(UR[n]-UL[n])
	}
	// the pressure part of the normal momentum flux
	pFace = F[fMN] - 0.5*(L.rho*L.un*L.un+R.rho*R.un*R.un)
	return
}

// entropyFix is Harten's smoothing of |lambda| near zero
func entropyFix(lambda, delta float64) float64 {
	a := math.Abs(lambda)
	if a < delta {
		return 0.5 * (lambda*lambda + delta*delta) / delta
	}
	return a
}

func roeFlux(L, R *faceState) (F [nFlux]float64, pFace float64) {
	var (
		FL, FR       = L.physFlux(), R.physFlux()
		hL           = (L.energy() + L.p) / L.rho
		hR           = (R.energy() + R.p) / R.rho
		rhoLs, rhoRs = math.Sqrt(L.rho), math.Sqrt(R.rho)
		rhoLsRs      = rhoLs + rhoRs
	)
	// Roe averages, with the sound speed averaged the same way
	rho := rhoLs * rhoRs
	u := (rhoLs*L.un + rhoRs*R.un) / rhoLsRs
	v := (rhoLs*L.ut1 + rhoRs*R.ut1) / rhoLsRs
	w := (rhoLs*L.ut2 + rhoRs*R.ut2) / rhoLsRs
	h := (rhoLs*hL + rhoRs*hR) / rhoLsRs
	c := (rhoLs*L.c + rhoRs*R.c) / rhoLsRs
	c2 := c * c
	delta := 0.1 * c

	dp := R.p - L.p
	du := R.un - L.un
	dW1 := -0.5*rho*du/c + 0.5*dp/c2
	dW2 := (R.rho - L.rho) - dp/c2
	dW3 := rho * (R.ut1 - L.ut1)
	dW4 := rho * (R.ut2 - L.ut2)
	dW5 := 0.5*rho*du/c + 0.5*dp/c2
	dW1 *= entropyFix(u-c, delta)
	dW2 *= entropyFix(u, delta)
	dW3 *= entropyFix(u, delta)
	dW4 *= entropyFix(u, delta)
	dW5 *= entropyFix(u+c, delta)

	for n := 0; n < nFlux; n++ {
		F[n] = 0.5 * (FL[n] + FR[n])
	}
	F[fRHO] -= 0.5 * (dW1 + dW2 + dW5)
	F[fMN] -= 0.5 * (dW1*(u-c) + dW2*u + dW5*(u+c))
	F[fMT1] -= 0.5 * (dW1*v + dW2*v + dW3 + dW5*v)
	F[fMT2] -= 0.5 * (dW1*w + dW2*w + dW4 + dW5*w)
	F[fE] -= 0.5 * (dW1*(h-u*c) + 0.5*dW2*(u*u+v*v+w*w) + dW3*v + dW4*w + dW5*(h+u*c))
	pFace = 0.5*(L.p+R.p) - 0.5*rho*c*du
	return
}

/*
hllcFlux follows Toro with Davis-Einfeldt wave speed estimates. The contact
speed picks the upwind side, so species follow the mass flux exactly.
*/
func hllcFlux(L, R *faceState) (F [nFlux]float64, pFace float64) {
	var (
		rhoLs, rhoRs = math.Sqrt(L.rho), math.Sqrt(R.rho)
		uRoe         = (rhoLs*L.un + rhoRs*R.un) / (rhoLs + rhoRs)
		cRoe         = (rhoLs*L.c + rhoRs*R.c) / (rhoLs + rhoRs)
		SL           = math.Min(L.un-L.c, uRoe-cRoe)
		SR           = math.Max(R.un+R.c, uRoe+cRoe)
	)
	if SL >= 0 {
		return L.physFlux(), L.p
	}
	if SR <= 0 {
		return R.physFlux(), R.p
	}
	var (
		mL = L.rho * (SL - L.un)
		mR = R.rho * (SR - R.un)
		SM = (R.p - L.p + mL*L.un - mR*R.un) / (mL - mR)
	)
	star := func(s *faceState, S, m float64) (F [nFlux]float64) {
		var (
			Fs   = s.physFlux()
			Us   = s.conserved()
			fac  = m / (S - SM)
			Ustr = [nFlux]float64{
				fac,
				fac * SM,
				fac * s.ut1,
				fac * s.ut2,
				fac * (s.energy()/s.rho + (SM-s.un)*(SM+s.p/m)),
			}
		)
		for n := 0; n < nFlux; n++ {
			F[n] = Fs[n] + S*(Ustr[n]-Us[n])
		}
		return
	}
	pFace = L.p + mL*(SM-L.un)
	if SM >= 0 {
		F = star(L, SL, mL)
	} else {
		F = star(R, SR, mR)
	}
	return
}
