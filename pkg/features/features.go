package features

// FeatureVector is the fixed-shape numeric summary of a change list. All
// fields are non-negative; an empty change list yields the zero vector.
type FeatureVector struct {
	AddedFields     int     `json:"added_fields"`
	RemovedFields   int     `json:"removed_fields"`
	TypeChanges     int     `json:"type_changes"`
	ValueChanges    int     `json:"value_changes"`
	NumericDeltaSum float64 `json:"numeric_delta_sum"`
	NumericDeltaMax float64 `json:"numeric_delta_max"`
	ArrayLenChanges int     `json:"array_len_changes"`
	CriticalChanges int     `json:"critical_changes"`
}

// Feature names, in the canonical order used for scoring contributions and
// policy predicates.
const (
	FeatureAddedFields     = "added_fields"
	FeatureRemovedFields   = "removed_fields"
	FeatureTypeChanges     = "type_changes"
	FeatureValueChanges    = "value_changes"
	FeatureNumericDeltaSum = "numeric_delta_sum"
	FeatureNumericDeltaMax = "numeric_delta_max"
	FeatureArrayLenChanges = "array_len_changes"
	FeatureCriticalChanges = "critical_changes"
)

// Names lists every feature in canonical order.
func Names() []string {
	return []string{
		FeatureAddedFields,
		FeatureRemovedFields,
		FeatureTypeChanges,
		FeatureValueChanges,
		FeatureNumericDeltaSum,
		FeatureNumericDeltaMax,
		FeatureArrayLenChanges,
		FeatureCriticalChanges,
	}
}

// Value returns the named feature as a float64, and whether the name is a
// known feature.
func (f FeatureVector) Value(name string) (float64, bool) {
	switch name {
	case FeatureAddedFields:
		return float64(f.AddedFields), true
	case FeatureRemovedFields:
		return float64(f.RemovedFields), true
	case FeatureTypeChanges:
		return float64(f.TypeChanges), true
	case FeatureValueChanges:
		return float64(f.ValueChanges), true
	case FeatureNumericDeltaSum:
		return f.NumericDeltaSum, true
	case FeatureNumericDeltaMax:
		return f.NumericDeltaMax, true
	case FeatureArrayLenChanges:
		return float64(f.ArrayLenChanges), true
	case FeatureCriticalChanges:
		return float64(f.CriticalChanges), true
	default:
		return 0, false
	}
}

// IsFeature reports whether name is a known feature name.
func IsFeature(name string) bool {
	_, ok := FeatureVector{}.Value(name)
	return ok
}
