package differ

import (
	"fmt"
	"strings"

	"github.com/wonderfulspam/qoe-guard/pkg/parser"
)

type ChangeKind string

const (
	ChangeAdded        ChangeKind = "added"
	ChangeRemoved      ChangeKind = "removed"
	ChangeTypeChanged  ChangeKind = "type_changed"
	ChangeValueChanged ChangeKind = "value_changed"
)

// Change is a single detected difference between baseline and candidate at
// one path. Old is nil iff Kind is ChangeAdded; New is nil iff Kind is
// ChangeRemoved. For number value changes (and array length markers),
// NumericDelta carries |new - old|.
type Change struct {
	Path         Path          `json:"path"`
	Kind         ChangeKind    `json:"kind"`
	Old          *parser.Value `json:"old_value,omitempty"`
	New          *parser.Value `json:"new_value,omitempty"`
	NumericDelta float64       `json:"numeric_delta,omitempty"`
}

// Summarize produces a one-line human summary of a change list.
func Summarize(changes []Change) string {
	if len(changes) == 0 {
		return "No differences found"
	}

	counts := map[ChangeKind]int{}
	markers := 0
	for _, c := range changes {
		if c.Path.IsLengthMarker() {
			markers++
			continue
		}
		counts[c.Kind]++
	}

	parts := []string{}
	for _, kind := range []ChangeKind{ChangeAdded, ChangeRemoved, ChangeTypeChanged, ChangeValueChanged} {
		if counts[kind] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[kind], kind))
		}
	}
	if markers > 0 {
		parts = append(parts, fmt.Sprintf("%d array length", markers))
	}

	return fmt.Sprintf("%d changes detected (%s)", len(changes), strings.Join(parts, ", "))
}
