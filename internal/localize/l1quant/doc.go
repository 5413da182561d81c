// Package l1quant owns Layer 1 (Quantization) of the localization model.
//
// Responsibilities: the simulator's forward distance quantization
// (log-quantize then linear-quantize) and its precomputed inverse, which
// maps a quantized distance reading to a continuous mean distance and a
// half-width error.
// Key types: Table, Entry, Range, Tables.
//
// Dependency rule: L1 depends on nothing else in internal/localize.
// Tables are immutable after construction and safe for concurrent reads.
package l1quant
