package differ

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/wonderfulspam/qoe-guard/pkg/parser"
)

func mustParse(t *testing.T, input string) parser.Value {
	t.Helper()
	v, err := parser.Parse([]byte(input))
	if err != nil {
		t.Fatalf("failed to parse %s: %v", input, err)
	}
	return v
}

func TestDiff_Identical(t *testing.T) {
	v := mustParse(t, `{"a":{"url":"https://x","bitrate":8000}}`)

	changes := Diff(v, v)
	if len(changes) != 0 {
		t.Errorf("Expected no changes for identical values, got %d: %v", len(changes), changes)
	}

	if got := Summarize(changes); got != "No differences found" {
		t.Errorf("Expected 'No differences found', got %q", got)
	}
}

func TestDiff_ValueChanged(t *testing.T) {
	baseline := mustParse(t, `{"bitrate":8000}`)
	candidate := mustParse(t, `{"bitrate":6500}`)

	changes := Diff(baseline, candidate)
	if len(changes) != 1 {
		t.Fatalf("Expected 1 change, got %d", len(changes))
	}

	c := changes[0]
	if c.Kind != ChangeValueChanged {
		t.Errorf("Expected value_changed, got %s", c.Kind)
	}
	if c.Path.String() != "$.bitrate" {
		t.Errorf("Expected path $.bitrate, got %s", c.Path)
	}
	if c.Old == nil || c.Old.Number() != 8000 {
		t.Errorf("Expected old value 8000, got %v", c.Old)
	}
	if c.New == nil || c.New.Number() != 6500 {
		t.Errorf("Expected new value 6500, got %v", c.New)
	}
	if c.NumericDelta != 1500 {
		t.Errorf("Expected numeric delta 1500, got %v", c.NumericDelta)
	}
}

// Representation type is a signal in its own right: number 8000 becoming
// string "8000" is a type change, never a value change.
func TestDiff_TypeChanged(t *testing.T) {
	baseline := mustParse(t, `{"bitrate":8000}`)
	candidate := mustParse(t, `{"bitrate":"8000"}`)

	changes := Diff(baseline, candidate)
	if len(changes) != 1 {
		t.Fatalf("Expected 1 change, got %d", len(changes))
	}
	if changes[0].Kind != ChangeTypeChanged {
		t.Errorf("Expected type_changed, got %s", changes[0].Kind)
	}
}

func TestDiff_ExplicitNullMemberIsTypeChange(t *testing.T) {
	baseline := mustParse(t, `{"a":null}`)
	candidate := mustParse(t, `{"a":{}}`)

	changes := Diff(baseline, candidate)
	if len(changes) != 1 || changes[0].Kind != ChangeTypeChanged {
		t.Fatalf("Expected one type_changed for null member becoming object, got %v", changes)
	}
}

func TestDiff_AddedSubtreeIsNotRecursed(t *testing.T) {
	baseline := mustParse(t, `{}`)
	candidate := mustParse(t, `{"a":{"b":{"c":1}}}`)

	changes := Diff(baseline, candidate)
	if len(changes) != 1 {
		t.Fatalf("Expected one whole-subtree addition, got %d: %v", len(changes), changes)
	}
	if changes[0].Kind != ChangeAdded || changes[0].Path.String() != "$.a" {
		t.Errorf("Expected added at $.a, got %s at %s", changes[0].Kind, changes[0].Path)
	}
	if changes[0].Old != nil {
		t.Error("Expected added change to have no old value")
	}
}

func TestDiff_TopLevelAbsence(t *testing.T) {
	doc := mustParse(t, `{"a":1}`)

	added := Diff(parser.Null(), doc)
	if len(added) != 1 || added[0].Kind != ChangeAdded || added[0].Path.String() != "$" {
		t.Errorf("Expected whole-document addition at $, got %v", added)
	}

	removed := Diff(doc, parser.Null())
	if len(removed) != 1 || removed[0].Kind != ChangeRemoved || removed[0].Path.String() != "$" {
		t.Errorf("Expected whole-document removal at $, got %v", removed)
	}

	if got := Diff(parser.Null(), parser.Null()); len(got) != 0 {
		t.Errorf("Expected no changes for null vs null, got %v", got)
	}
}

// Change order is deterministic: baseline member order first (shared keys
// recursed, missing keys removed in place), then candidate-only keys in the
// candidate's insertion order.
func TestDiff_Ordering(t *testing.T) {
	baseline := mustParse(t, `{"a":1,"b":2,"c":3,"d":4}`)
	candidate := mustParse(t, `{"z":26,"a":1,"c":9,"y":25}`)

	changes := Diff(baseline, candidate)

	want := []struct {
		path string
		kind ChangeKind
	}{
		{"$.b", ChangeRemoved},
		{"$.c", ChangeValueChanged},
		{"$.d", ChangeRemoved},
		{"$.z", ChangeAdded},
		{"$.y", ChangeAdded},
	}

	if len(changes) != len(want) {
		t.Fatalf("Expected %d changes, got %d: %v", len(want), len(changes), changes)
	}
	for i, w := range want {
		if changes[i].Path.String() != w.path || changes[i].Kind != w.kind {
			t.Errorf("Change %d: expected %s %s, got %s %s",
				i, w.kind, w.path, changes[i].Kind, changes[i].Path)
		}
	}
}

func TestDiff_ArrayShrink(t *testing.T) {
	baseline := mustParse(t, `[1,2,3]`)
	candidate := mustParse(t, `[1,2]`)

	changes := Diff(baseline, candidate)
	if len(changes) != 2 {
		t.Fatalf("Expected 2 changes (length marker + removal), got %d: %v", len(changes), changes)
	}

	marker := changes[0]
	if !marker.Path.IsLengthMarker() {
		t.Fatalf("Expected first change to be the length marker, got %s", marker.Path)
	}
	if marker.Kind != ChangeValueChanged {
		t.Errorf("Expected length marker to be value_changed, got %s", marker.Kind)
	}
	if marker.Old.Number() != 3 || marker.New.Number() != 2 {
		t.Errorf("Expected length 3 -> 2, got %v -> %v", marker.Old, marker.New)
	}

	if changes[1].Kind != ChangeRemoved || changes[1].Path.String() != "$[2]" {
		t.Errorf("Expected removed at $[2], got %s at %s", changes[1].Kind, changes[1].Path)
	}
}

func TestDiff_ArrayGrowAndMutate(t *testing.T) {
	baseline := mustParse(t, `{"items":[1,2]}`)
	candidate := mustParse(t, `{"items":[1,9,3]}`)

	changes := Diff(baseline, candidate)

	want := []struct {
		path string
		kind ChangeKind
	}{
		{"$.items.__len__", ChangeValueChanged},
		{"$.items[1]", ChangeValueChanged},
		{"$.items[2]", ChangeAdded},
	}
	if len(changes) != len(want) {
		t.Fatalf("Expected %d changes, got %d: %v", len(want), len(changes), changes)
	}
	for i, w := range want {
		if changes[i].Path.String() != w.path || changes[i].Kind != w.kind {
			t.Errorf("Change %d: expected %s %s, got %s %s",
				i, w.kind, w.path, changes[i].Kind, changes[i].Path)
		}
	}
}

func TestDiff_SameLengthArrayHasNoMarker(t *testing.T) {
	baseline := mustParse(t, `[1,2,3]`)
	candidate := mustParse(t, `[1,5,3]`)

	for _, c := range Diff(baseline, candidate) {
		if c.Path.IsLengthMarker() {
			t.Error("Expected no length marker when array lengths match")
		}
	}
}

// randomValue generates arbitrary nested JSON for property tests.
func randomValue(r *rand.Rand, depth int) parser.Value {
	if depth <= 0 {
		return randomScalar(r)
	}
	switch r.Intn(6) {
	case 0:
		n := r.Intn(4)
		items := make([]parser.Value, n)
		for i := range items {
			items[i] = randomValue(r, depth-1)
		}
		return parser.Array(items...)
	case 1, 2:
		n := r.Intn(5)
		members := make([]parser.Member, 0, n)
		perm := r.Perm(8)
		for i := 0; i < n; i++ {
			key := fmt.Sprintf("k%d", perm[i])
			members = append(members, parser.Field(key, randomValue(r, depth-1)))
		}
		return parser.Object(members...)
	default:
		return randomScalar(r)
	}
}

func randomScalar(r *rand.Rand) parser.Value {
	switch r.Intn(4) {
	case 0:
		return parser.Null()
	case 1:
		return parser.Bool(r.Intn(2) == 0)
	case 2:
		return parser.Number(float64(r.Intn(2000)) - 1000)
	default:
		return parser.String(fmt.Sprintf("s%d", r.Intn(10)))
	}
}

func TestDiff_ReflexivityProperty(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		v := randomValue(r, 4)
		if changes := Diff(v, v); len(changes) != 0 {
			t.Fatalf("diff(x, x) not empty for %s: %v", v, changes)
		}
	}
}

func TestDiff_Determinism(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		a := randomValue(r, 4)
		b := randomValue(r, 4)

		first, err := json.Marshal(Diff(a, b))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		second, err := json.Marshal(Diff(a, b))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(first) != string(second) {
			t.Fatalf("diff output not byte-identical across runs:\n%s\n%s", first, second)
		}
	}
}

// Swapping baseline and candidate turns added into removed (and vice versa),
// keeps type/value changes with old/new swapped, and flips the length-marker
// delta sign.
func TestDiff_AntiSymmetryProperty(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		a := randomValue(r, 4)
		b := randomValue(r, 4)

		forward := Diff(a, b)
		backward := Diff(b, a)

		if len(forward) != len(backward) {
			t.Fatalf("change count mismatch: %d forward, %d backward", len(forward), len(backward))
		}

		byPath := make(map[string]Change, len(backward))
		for _, c := range backward {
			byPath[c.Path.String()] = c
		}

		for _, c := range forward {
			mirror, ok := byPath[c.Path.String()]
			if !ok {
				t.Fatalf("no mirrored change at %s", c.Path)
			}
			switch c.Kind {
			case ChangeAdded:
				if mirror.Kind != ChangeRemoved {
					t.Fatalf("added at %s should mirror to removed, got %s", c.Path, mirror.Kind)
				}
			case ChangeRemoved:
				if mirror.Kind != ChangeAdded {
					t.Fatalf("removed at %s should mirror to added, got %s", c.Path, mirror.Kind)
				}
			default:
				if mirror.Kind != c.Kind {
					t.Fatalf("%s at %s should mirror to itself, got %s", c.Kind, c.Path, mirror.Kind)
				}
				if c.Old != nil && !parser.Equal(*c.Old, *mirror.New) {
					t.Fatalf("old/new not swapped at %s", c.Path)
				}
				if c.New != nil && !parser.Equal(*c.New, *mirror.Old) {
					t.Fatalf("old/new not swapped at %s", c.Path)
				}
			}
		}
	}
}

func TestSummarize(t *testing.T) {
	baseline := mustParse(t, `{"a":1,"b":[1,2],"c":"x"}`)
	candidate := mustParse(t, `{"a":"1","b":[1],"d":true}`)

	changes := Diff(baseline, candidate)
	got := Summarize(changes)
	want := "5 changes detected (1 added, 2 removed, 1 type_changed, 1 array length)"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
