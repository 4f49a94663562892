package event

import (
	"math"
)

// MuonMass is the muon rest mass in GeV/c^2.
const MuonMass = 0.1056583755

// FourVector is an energy-momentum four-vector in GeV.
type FourVector struct {
	Px, Py, Pz, E float64
}

// FourMomentum builds the four-vector of p under the muon mass hypothesis.
func (p *Particle) FourMomentum() FourVector {
	p2 := p.Px*p.Px + p.Py*p.Py + p.Pz*p.Pz
	return FourVector{Px: p.Px, Py: p.Py, Pz: p.Pz, E: math.Sqrt(p2 + MuonMass*MuonMass)}
}

// Pt returns the transverse momentum of p.
func (p *Particle) Pt() float64 {
	return math.Hypot(p.Px, p.Py)
}

// Eta returns the pseudorapidity of p.
func (p *Particle) Eta() float64 {
	pt := p.Pt()
	if pt == 0 {
		if p.Pz >= 0 {
			return math.Inf(1)
		}
		return math.Inf(-1)
	}
	return math.Asinh(p.Pz / pt)
}

// Add returns the sum of two four-vectors.
func (v FourVector) Add(o FourVector) FourVector {
	return FourVector{Px: v.Px + o.Px, Py: v.Py + o.Py, Pz: v.Pz + o.Pz, E: v.E + o.E}
}

// Pt returns the transverse momentum.
func (v FourVector) Pt() float64 {
	return math.Hypot(v.Px, v.Py)
}

// Rapidity returns 0.5 ln((E+pz)/(E-pz)).
func (v FourVector) Rapidity() float64 {
	return 0.5 * math.Log((v.E+v.Pz)/(v.E-v.Pz))
}

// Phi returns the azimuth normalised to [0, 2pi).
func (v FourVector) Phi() float64 {
	phi := math.Atan2(v.Py, v.Px)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	if phi >= 2*math.Pi {
		phi = 0
	}
	return phi
}

// M returns the invariant mass. Space-like vectors return -sqrt(-m^2).
func (v FourVector) M() float64 {
	m2 := v.E*v.E - v.Px*v.Px - v.Py*v.Py - v.Pz*v.Pz
	if m2 < 0 {
		return -math.Sqrt(-m2)
	}
	return math.Sqrt(m2)
}

// Pair holds the four observables of a particle pair.
type Pair struct {
	Pt       float64
	Rapidity float64
	Phi      float64
	Mass     float64
}

// PairKinematics computes the pair observables of a and b.
func PairKinematics(a, b *Particle) Pair {
	v := a.FourMomentum().Add(b.FourMomentum())
	return Pair{Pt: v.Pt(), Rapidity: v.Rapidity(), Phi: v.Phi(), Mass: v.M()}
}
