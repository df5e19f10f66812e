package differ

import (
	"math"

	"github.com/wonderfulspam/qoe-guard/pkg/parser"
)

// Diff compares a baseline value against a candidate and returns the ordered
// list of changes between them. The order is deterministic: a depth-first,
// pre-order traversal following the baseline's own member order, with members
// added by the candidate appended after the shared/removed members of the
// same object, in the candidate's insertion order.
//
// Diff is total: every pair of values yields a well-defined (possibly empty)
// change list. Absence of a top-level value is modeled as Null, so a null
// baseline against a present candidate is a whole-document addition rather
// than a type change.
func Diff(baseline, candidate parser.Value) []Change {
	root := Path{}
	if baseline.Kind() == parser.KindNull && candidate.Kind() != parser.KindNull {
		return []Change{added(root, candidate)}
	}
	if candidate.Kind() == parser.KindNull && baseline.Kind() != parser.KindNull {
		return []Change{removed(root, baseline)}
	}

	var changes []Change
	walk(root, baseline, candidate, &changes)
	return changes
}

func walk(path Path, before, after parser.Value, out *[]Change) {
	// Representation type is itself a signal: number 8000 vs string "8000"
	// is always a type change, never a value change.
	if before.Kind() != after.Kind() {
		*out = append(*out, typeChanged(path, before, after))
		return
	}

	switch before.Kind() {
	case parser.KindObject:
		walkObject(path, before, after, out)
	case parser.KindArray:
		walkArray(path, before, after, out)
	case parser.KindNull:
		// Two nulls are always equal.
	default:
		if !parser.Equal(before, after) {
			*out = append(*out, valueChanged(path, before, after))
		}
	}
}

func walkObject(path Path, before, after parser.Value, out *[]Change) {
	for _, m := range before.Members() {
		child := path.Field(m.Key)
		if other, ok := after.Lookup(m.Key); ok {
			walk(child, m.Value, other, out)
		} else {
			// Removed subtrees are reported whole; no recursion below them.
			*out = append(*out, removed(child, m.Value))
		}
	}
	for _, m := range after.Members() {
		if _, ok := before.Lookup(m.Key); !ok {
			*out = append(*out, added(path.Field(m.Key), m.Value))
		}
	}
}

func walkArray(path Path, before, after parser.Value, out *[]Change) {
	b, a := before.Items(), after.Items()

	if len(b) != len(a) {
		// One synthetic marker captures the cardinality drift; the indices
		// beyond the overlap are still reported individually below.
		marker := valueChanged(path.LengthMarker(),
			parser.Number(float64(len(b))), parser.Number(float64(len(a))))
		*out = append(*out, marker)
	}

	n := len(b)
	if len(a) < n {
		n = len(a)
	}
	for i := 0; i < n; i++ {
		walk(path.Index(i), b[i], a[i], out)
	}
	for i := n; i < len(a); i++ {
		*out = append(*out, added(path.Index(i), a[i]))
	}
	for i := n; i < len(b); i++ {
		*out = append(*out, removed(path.Index(i), b[i]))
	}
}

func added(path Path, v parser.Value) Change {
	val := v
	return Change{Path: path, Kind: ChangeAdded, New: &val}
}

func removed(path Path, v parser.Value) Change {
	val := v
	return Change{Path: path, Kind: ChangeRemoved, Old: &val}
}

func typeChanged(path Path, before, after parser.Value) Change {
	old, nw := before, after
	return Change{Path: path, Kind: ChangeTypeChanged, Old: &old, New: &nw}
}

func valueChanged(path Path, before, after parser.Value) Change {
	old, nw := before, after
	c := Change{Path: path, Kind: ChangeValueChanged, Old: &old, New: &nw}
	if before.Kind() == parser.KindNumber && after.Kind() == parser.KindNumber {
		c.NumericDelta = absDelta(before.Number(), after.Number())
	}
	return c
}

// absDelta saturates instead of overflowing: evidence ranking matters more
// than exact magnitude at extreme values.
func absDelta(a, b float64) float64 {
	d := math.Abs(b - a)
	if math.IsInf(d, 1) || math.IsNaN(d) {
		return math.MaxFloat64
	}
	return d
}
