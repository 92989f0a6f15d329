// Package kinetics implements the radical-chain autoxidation network.
//
// One [Network] serves both scenarios: in the atmosphere variant O2 is a
// fixed reservoir partial pressure substituted into the oxygen terms, in
// the cells variant O2 is the fourth state component and is consumed by
// the ROH + O2 and VO + O2 channels.
//
// Species, in state order:
//
//	R       alkyl radical
//	OH      hydroxyl radical
//	ROH     alcohol / R-OH adduct
//	O2      molecular oxygen (cells only)
//	RO2     peroxy radical
//	RO22    peroxy-radical dimer
//	ALD     aldehyde and other products
//	RO2_OH  peroxy-hydroxyl adduct
//	POZ     primary-ozonide-like intermediate
//	VHP     hydroperoxide
//	VO      alkoxy radical
//
// Concentrations are partial pressures in atm.
package kinetics
