// Package localize is the per-cycle entry point of the localization model.
//
// Layers:
//
//	l1quant   distance quantization inversion tables
//	l2field   landmark identifiers and coordinates
//	l3bearing direction ranges and self heading
//	l4selfpos candidate-set self localization
//	l5objects ball and player placement
//
// Engine wires the layers together from a TuningConfig and runs them in
// order each cycle: heading, self position, ball, players. A failed step
// is recorded in the CycleResult and its dependants are skipped; Cycle
// never panics on observation content.
package localize
