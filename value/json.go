package value

import (
	"fmt"
	"reflect"

	"github.com/goccy/go-json"
)

// Document is an immutable, already-decoded JSON document.
//
// Holding the decoded tree (rather than serialized text) lets callers
// inspect nested fields, array lengths and nesting depth without re-parsing
// the payload on every access. The tree uses the standard decoded shapes:
// map[string]interface{}, []interface{}, string, float64, bool and nil.
type Document struct {
	root any
}

// ParseJSON decodes data into a Document.
func ParseJSON(data []byte) (Document, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return Document{}, fmt.Errorf("parse json document: %w", err)
	}
	return Document{root: root}, nil
}

// NewDocument builds a Document from an arbitrary Go value by round-tripping
// it through JSON encoding. The round trip both validates that v is
// JSON-representable and detaches the Document from the caller's data, so
// later mutation of v cannot affect the Document.
func NewDocument(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Document{}, fmt.Errorf("encode json document: %w", err)
	}
	return ParseJSON(data)
}

// Root returns the decoded tree. Callers must treat the returned tree as
// read-only; mutating it breaks the immutability contract of the owning Value.
func (d Document) Root() any { return d.root }

// MarshalJSON serializes the document.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.root)
}

// Get walks the tree following path elements: a string element indexes an
// object, an int element indexes an array. ok is false when any step does
// not resolve.
func (d Document) Get(path ...any) (any, bool) {
	cur := d.root
	for _, p := range path {
		switch key := p.(type) {
		case string:
			obj, isObj := cur.(map[string]any)
			if !isObj {
				return nil, false
			}
			next, exists := obj[key]
			if !exists {
				return nil, false
			}
			cur = next
		case int:
			arr, isArr := cur.([]any)
			if !isArr || key < 0 || key >= len(arr) {
				return nil, false
			}
			cur = arr[key]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Len returns the element count of the root array or the key count of the
// root object. ok is false for scalar roots.
func (d Document) Len() (n int, ok bool) {
	switch root := d.root.(type) {
	case []any:
		return len(root), true
	case map[string]any:
		return len(root), true
	default:
		return 0, false
	}
}

// Depth returns the maximum nesting depth of the document. A scalar root has
// depth 1, an empty object or array has depth 1, {"a":[1]} has depth 3.
func (d Document) Depth() int {
	return treeDepth(d.root)
}

// Equal performs a deep structural comparison with o.
func (d Document) Equal(o Document) bool {
	return reflect.DeepEqual(d.root, o.root)
}

// String renders the document as compact JSON for diagnostics.
func (d Document) String() string {
	data, err := d.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("document(unserializable: %v)", err)
	}
	return string(data)
}

func treeDepth(node any) int {
	switch n := node.(type) {
	case map[string]any:
		max := 0
		for _, child := range n {
			if d := treeDepth(child); d > max {
				max = d
			}
		}
		return max + 1
	case []any:
		max := 0
		for _, child := range n {
			if d := treeDepth(child); d > max {
				max = d
			}
		}
		return max + 1
	default:
		return 1
	}
}
