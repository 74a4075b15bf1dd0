package domain

import "fmt"

// Model selects which runoff formula applies to a batch. The same Model
// covers every row of one computation; rows are never mixed across models.
type Model int

const (
	// ModelSCSCN is the SCS/NRCS Curve Number method.
	ModelSCSCN Model = iota
	// ModelStrange is the simplified fixed-coefficient Strange method.
	ModelStrange
)

// Method labels as presented by the caller's method selector.
const (
	LabelSCSCN   = "SCS CN Method"
	LabelStrange = "Strange Method"
)

func (m Model) String() string {
	switch m {
	case ModelSCSCN:
		return LabelSCSCN
	case ModelStrange:
		return LabelStrange
	default:
		return fmt.Sprintf("Model(%d)", int(m))
	}
}

// ParseMethodLabel maps a method label to its Model. Only the two exact
// labels are accepted.
func ParseMethodLabel(label string) (Model, error) {
	switch label {
	case LabelSCSCN:
		return ModelSCSCN, nil
	case LabelStrange:
		return ModelStrange, nil
	default:
		return 0, fmt.Errorf("unknown method %q", label)
	}
}

// requiredColumns lists the columns the model needs, in reporting order.
func (m Model) requiredColumns() []string {
	if m == ModelSCSCN {
		return []string{ColRainfall, ColCurveNumber, ColArea}
	}
	return []string{ColRainfall, ColArea}
}

// runoffModel is the per-row computation contract shared by the closed set of
// methods. computeRow takes a validated row and returns the full-precision
// runoff depth (mm) and volume (m³).
type runoffModel interface {
	computeRow(row InputRow) (runoffMM, volumeM3 float64, err error)
}

func modelFor(m Model) runoffModel {
	if m == ModelSCSCN {
		return scsCurveNumber{}
	}
	return strangeCoefficient{}
}

// scsCurveNumber implements the SCS/NRCS Curve Number method.
type scsCurveNumber struct{}

func (scsCurveNumber) computeRow(row InputRow) (float64, float64, error) {
	// Potential maximum retention, mm.
	s := 25400/row.CurveNumber - 254

	denom := row.Rainfall + 0.8*s
	if denom <= 0 {
		return 0, 0, fmt.Errorf("curve number %g is degenerate: P + 0.8S = %g", row.CurveNumber, denom)
	}

	// Storms below the initial abstraction (0.2S) produce no runoff; the raw
	// formula would yield a positive value from a negative numerator here.
	var q float64
	if ia := 0.2 * s; row.Rainfall > ia {
		q = (row.Rainfall - ia) * (row.Rainfall - ia) / denom
	}
	return q, q * row.Area * 1000, nil
}

// strangeCoefficient implements the simplified Strange method: a fixed linear
// coefficient of 0.278 folding mm·km² into m³. Cannot fail for validated
// rows (area > 0).
type strangeCoefficient struct{}

func (strangeCoefficient) computeRow(row InputRow) (float64, float64, error) {
	vol := row.Rainfall * row.Area * 0.278
	return vol / row.Area, vol, nil
}
