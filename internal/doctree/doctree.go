// Package doctree models generated artifact payloads as a tagged union so
// structural comparison and repair can switch exhaustively over node kinds
// instead of type-asserting on map[string]any.
package doctree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Node is one value in a document tree. A nil *Node is treated as an absent
// value everywhere; KindNull is an explicit JSON null.
type Node struct {
	kind  Kind
	str   string
	num   json.Number
	b     bool
	elems []*Node
	atoms map[string]*Node
	order []string
}

func Null() *Node { return &Node{kind: KindNull} }

func NewString(s string) *Node { return &Node{kind: KindString, str: s} }

func NewBool(v bool) *Node { return &Node{kind: KindBool, b: v} }

func NewNumber(n json.Number) *Node {
	if strings.TrimSpace(string(n)) == "" {
		n = "0"
	}
	return &Node{kind: KindNumber, num: n}
}

func NewInt(v int) *Node {
	return &Node{kind: KindNumber, num: json.Number(fmt.Sprintf("%d", v))}
}

func NewArray(elems ...*Node) *Node {
	return &Node{kind: KindArray, elems: elems}
}

func NewObject() *Node {
	return &Node{kind: KindObject, atoms: make(map[string]*Node)}
}

func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}
	return n.kind
}

// IsLeaf reports whether the node carries no children (scalars and null).
func (n *Node) IsLeaf() bool {
	k := n.Kind()
	return k != KindArray && k != KindObject
}

func (n *Node) Str() string {
	if n == nil || n.kind != KindString {
		return ""
	}
	return n.str
}

func (n *Node) Num() json.Number {
	if n == nil || n.kind != KindNumber {
		return "0"
	}
	return n.num
}

func (n *Node) Bool() bool {
	if n == nil || n.kind != KindBool {
		return false
	}
	return n.b
}

// Len returns the element count for arrays and the key count for objects.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.kind {
	case KindArray:
		return len(n.elems)
	case KindObject:
		return len(n.order)
	}
	return 0
}

func (n *Node) At(i int) *Node {
	if n == nil || n.kind != KindArray || i < 0 || i >= len(n.elems) {
		return nil
	}
	return n.elems[i]
}

// Field returns the child for key, or (nil, false) when the key is absent.
func (n *Node) Field(key string) (*Node, bool) {
	if n == nil || n.kind != KindObject {
		return nil, false
	}
	child, ok := n.atoms[key]
	return child, ok
}

// Keys returns object keys in insertion order. The slice is a copy.
func (n *Node) Keys() []string {
	if n == nil || n.kind != KindObject {
		return nil
	}
	return append([]string(nil), n.order...)
}

// Set inserts or replaces a key on an object node. New keys keep insertion
// order; replacing an existing key keeps its original position.
func (n *Node) Set(key string, child *Node) {
	if n == nil || n.kind != KindObject {
		return
	}
	if n.atoms == nil {
		n.atoms = make(map[string]*Node)
	}
	if _, exists := n.atoms[key]; !exists {
		n.order = append(n.order, key)
	}
	n.atoms[key] = child
}

// Append adds an element to an array node.
func (n *Node) Append(child *Node) {
	if n == nil || n.kind != KindArray {
		return
	}
	n.elems = append(n.elems, child)
}

// Clone returns a deep copy sharing no state with the receiver.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{kind: n.kind, str: n.str, num: n.num, b: n.b}
	switch n.kind {
	case KindArray:
		out.elems = make([]*Node, len(n.elems))
		for i, e := range n.elems {
			out.elems[i] = e.Clone()
		}
	case KindObject:
		out.atoms = make(map[string]*Node, len(n.atoms))
		out.order = append([]string(nil), n.order...)
		for k, v := range n.atoms {
			out.atoms[k] = v.Clone()
		}
	}
	return out
}

// Equal reports deep equality of value and shape. Object key order is
// ignored; array order matters.
func Equal(a, b *Node) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindNull:
		return true
	case KindString:
		return a.Str() == b.Str()
	case KindNumber:
		return a.Num() == b.Num()
	case KindBool:
		return a.Bool() == b.Bool()
	case KindArray:
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !Equal(a.At(i), b.At(i)) {
				return false
			}
		}
		return true
	case KindObject:
		if a.Len() != b.Len() {
			return false
		}
		for _, k := range a.order {
			bv, ok := b.Field(k)
			if !ok {
				return false
			}
			av, _ := a.Field(k)
			if !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

// FromAny converts a decoded JSON value (map[string]any / []any / scalars)
// into a Node. Map keys are sorted so the result is deterministic.
func FromAny(v any) *Node {
	switch x := v.(type) {
	case nil:
		return Null()
	case string:
		return NewString(x)
	case bool:
		return NewBool(x)
	case json.Number:
		return NewNumber(x)
	case float64:
		raw, _ := json.Marshal(x)
		return NewNumber(json.Number(raw))
	case int:
		return NewInt(x)
	case []any:
		arr := NewArray()
		for _, e := range x {
			arr.Append(FromAny(e))
		}
		return arr
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, FromAny(x[k]))
		}
		return obj
	}
	// Unknown dynamic value; round-trip through JSON as a best effort.
	raw, err := json.Marshal(v)
	if err != nil {
		return Null()
	}
	node, err := Parse(raw)
	if err != nil {
		return Null()
	}
	return node
}

// ToAny converts a Node back into map[string]any / []any / scalar form.
func (n *Node) ToAny() any {
	switch n.Kind() {
	case KindNull:
		return nil
	case KindString:
		return n.str
	case KindNumber:
		return n.num
	case KindBool:
		return n.b
	case KindArray:
		out := make([]any, 0, len(n.elems))
		for _, e := range n.elems {
			out = append(out, e.ToAny())
		}
		return out
	case KindObject:
		out := make(map[string]any, len(n.atoms))
		for k, v := range n.atoms {
			out[k] = v.ToAny()
		}
		return out
	}
	return nil
}

// Parse decodes JSON bytes into a Node, preserving object key order and
// number formatting.
func Parse(raw []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	node, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	// Reject trailing garbage after the first value.
	if dec.More() {
		return nil, fmt.Errorf("doctree: trailing data after JSON value")
	}
	return node, nil
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("doctree: object key is not a string")
				}
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, child)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		case '[':
			arr := NewArray()
			for dec.More() {
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr.Append(child)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("doctree: unexpected delimiter %q", t)
	case string:
		return NewString(t), nil
	case json.Number:
		return NewNumber(t), nil
	case bool:
		return NewBool(t), nil
	case nil:
		return Null(), nil
	}
	return nil, fmt.Errorf("doctree: unexpected token %v", tok)
}

// Encode serializes the node without escaping <, > or & so embedded HTML
// fragments survive a round-trip unchanged.
func (n *Node) Encode() []byte {
	var buf bytes.Buffer
	encodeNode(&buf, n)
	return buf.Bytes()
}

func encodeNode(buf *bytes.Buffer, n *Node) {
	switch n.Kind() {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		buf.Write(quoteNoEscape(n.str))
	case KindNumber:
		buf.WriteString(string(n.Num()))
	case KindBool:
		if n.Bool() {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindArray:
		buf.WriteByte('[')
		for i, e := range n.elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodeNode(buf, e)
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, k := range n.order {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.Write(quoteNoEscape(k))
			buf.WriteByte(':')
			encodeNode(buf, n.atoms[k])
		}
		buf.WriteByte('}')
	}
}

// quoteNoEscape renders a JSON string literal without HTML escaping,
// the same behavior as jsonutil.MarshalNoEscape in the surrounding tooling.
func quoteNoEscape(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		raw, _ := json.Marshal(s)
		return raw
	}
	return bytes.TrimRight(buf.Bytes(), "\n")
}
