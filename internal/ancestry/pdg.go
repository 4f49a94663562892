package ancestry

// PDG codes used for classification.
const (
	pdgMuon   = 13
	pdgPhoton = 22
	pdgZ      = 23
	pdgW      = 24
)

var resonanceNames = map[int]string{
	113:    "Rho",
	221:    "Eta",
	223:    "Omega",
	331:    "EtaPrime",
	333:    "Phi",
	443:    "JPsi",
	100443: "Psi2S",
	553:    "Upsilon1S",
	100553: "Upsilon2S",
	200553: "Upsilon3S",
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// heaviestQuark returns the heaviest valence quark flavour of a hadron
// (1..6), or 0 for non-hadrons.
func heaviestQuark(pdg int) int {
	code := abs(pdg) % 10000
	switch {
	case code >= 1000:
		return code / 1000
	case code >= 100:
		return code / 100
	}
	return 0
}

// isQuarkonium reports whether pdg is a c-cbar or b-bbar meson.
func isQuarkonium(pdg int) bool {
	code := abs(pdg) % 1000
	if code < 100 || abs(pdg)%10000 >= 1000 {
		return false
	}
	q1, q2 := code/100, (code/10)%10
	return q1 == q2 && (q1 == 4 || q1 == 5)
}

// isLightResonance reports whether pdg is a light neutral meson with a
// dimuon decay.
func isLightResonance(pdg int) bool {
	switch abs(pdg) {
	case 113, 221, 223, 331, 333:
		return true
	}
	return false
}

// isLightHadron reports whether pdg is a hadron made of u, d, s quarks only.
func isLightHadron(pdg int) bool {
	q := heaviestQuark(pdg)
	return q >= 1 && q <= 3
}
