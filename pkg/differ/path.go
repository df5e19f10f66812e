package differ

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type segmentKind int

const (
	fieldSegment segmentKind = iota
	indexSegment
	lengthSegment
)

// Segment is one step in a Path: an object field, an array index, or the
// synthetic length marker emitted when array cardinality changes.
type Segment struct {
	kind  segmentKind
	field string
	index int
}

func FieldSegment(name string) Segment { return Segment{kind: fieldSegment, field: name} }
func IndexSegment(i int) Segment       { return Segment{kind: indexSegment, index: i} }

// Path is an ordered sequence of segments rooted at the document root.
// Comparisons are always segment-wise on the structured form; the rendered
// string exists for display and configuration only, so field names containing
// dots or brackets cannot be confused with traversal.
type Path []Segment

// Field returns a new path descending into the named object field.
func (p Path) Field(name string) Path {
	return p.child(FieldSegment(name))
}

// Index returns a new path descending into the given array index.
func (p Path) Index(i int) Path {
	return p.child(IndexSegment(i))
}

// LengthMarker returns the synthetic child path used to report array
// cardinality changes.
func (p Path) LengthMarker() Path {
	return p.child(Segment{kind: lengthSegment})
}

func (p Path) child(s Segment) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = s
	return out
}

// IsLengthMarker reports whether the path addresses an array length marker.
func (p Path) IsLengthMarker() bool {
	return len(p) > 0 && p[len(p)-1].kind == lengthSegment
}

// HasPrefix reports whether p starts with the given prefix, segment-wise.
// An empty prefix (the document root) matches every path.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i, s := range prefix {
		if p[i].kind != s.kind {
			return false
		}
		switch s.kind {
		case fieldSegment:
			if p[i].field != s.field {
				return false
			}
		case indexSegment:
			if p[i].index != s.index {
				return false
			}
		}
	}
	return true
}

// String renders the path in the dotted/bracketed display form, e.g.
// $.playback.items[2].url. Length markers render as .__len__.
func (p Path) String() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, s := range p {
		switch s.kind {
		case fieldSegment:
			b.WriteByte('.')
			b.WriteString(s.field)
		case indexSegment:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
		case lengthSegment:
			b.WriteString(".__len__")
		}
	}
	return b.String()
}

func (p Path) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// ParsePattern parses a path pattern string such as "$.playback.items[2]"
// into a structured Path. Patterns must be rooted at "$"; "$" alone denotes
// the document root, which prefix-matches everything.
func ParsePattern(pattern string) (Path, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty path pattern")
	}
	if pattern[0] != '$' {
		return nil, fmt.Errorf("path pattern %q must start with $", pattern)
	}
	rest := pattern[1:]
	var path Path
	for len(rest) > 0 {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			end := strings.IndexAny(rest, ".[")
			if end == -1 {
				end = len(rest)
			}
			if end == 0 {
				return nil, fmt.Errorf("path pattern %q has an empty field name", pattern)
			}
			path = append(path, FieldSegment(rest[:end]))
			rest = rest[end:]
		case '[':
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				return nil, fmt.Errorf("path pattern %q has an unterminated index", pattern)
			}
			idx, err := strconv.Atoi(rest[1:end])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("path pattern %q has an invalid index %q", pattern, rest[1:end])
			}
			path = append(path, IndexSegment(idx))
			rest = rest[end+1:]
		default:
			return nil, fmt.Errorf("unexpected character %q in path pattern %q", rest[0], pattern)
		}
	}
	return path, nil
}
