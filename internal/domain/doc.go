// Package domain implements the runoff estimation core: validating a tabular
// rainfall/catchment dataset and applying one of two hydrological models to
// every row, producing runoff depth and runoff volume.
//
// # Input Format
//
// Input arrives as a delimited table with one header row. Column names are
// matched exactly, including case and whitespace, because the surrounding
// upload surface does no normalization:
//
//	Rainfall (mm)   storm rainfall depth, must be > 0
//	Curve Number    SCS/NRCS curve number, 0 < CN <= 100 (SCS CN method only)
//	Area (sq.km)    catchment area, must be > 0
//
// Rows have no identity of their own; position in the table is the identity,
// and output row order always matches input row order.
//
// # SCS Curve Number Method
//
// The SCS/NRCS method derives runoff depth from rainfall P (mm) and the
// dimensionless curve number CN:
//
//	S = 25400/CN - 254              potential maximum retention, mm
//	Q = (P - 0.2S)² / (P + 0.8S)    runoff depth, mm
//	Vol = Q · A · 1000              runoff volume, m³ (A in sq.km)
//
// A storm below the initial abstraction threshold (P <= 0.2S) produces no
// runoff; Q is clamped to zero there rather than letting the squared
// numerator invert the sign of the physical relationship. A non-positive
// denominator (degenerate CN) is a per-row computation error, never a crash.
//
// # Strange Method
//
// A simplified fixed-coefficient approximation, kept exactly as the original
// estimation tool defines it rather than the classical Strange
// rainfall-runoff tables:
//
//	Vol = P · A · 0.278             runoff volume, m³
//	Q   = Vol / A                   runoff depth, mm (identically P · 0.278)
//
// With area validated positive, this model cannot fail per-row.
//
// # Rounding
//
// Computation runs at full float64 precision; the two-decimal rounding seen
// in exported tables is applied exactly once, when a ResultRow is built.
// Volume is derived from the unrounded runoff depth.
//
// # Error Model
//
// Validation failures ([ValidationError]) are batch-fatal and name the first
// offending column and 1-based row. Computation failures
// ([RowComputationError]) are row-scoped: the rest of the batch still
// computes and skipped rows are reported alongside the results.
package domain
