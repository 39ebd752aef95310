package structural

import (
	"contentguard/internal/doctree"
)

// idFields are the identifier keys tried, in order, when merging arrays of
// objects. The first field present with a scalar value on a reference
// element wins for the whole array.
var idFields = []string{"id", "uuid", "key"}

// Correct returns a document conformant to reference's shape, keeping
// candidate leaf values wherever a position can be matched and falling back
// to the reference subtree everywhere else. Candidate-only keys are dropped.
// Neither input is mutated, and Validate(reference, Correct(reference, c))
// always succeeds.
func Correct(reference, candidate *doctree.Node) *doctree.Node {
	switch reference.Kind() {
	case doctree.KindNull:
		return doctree.Null()
	case doctree.KindObject:
		if candidate.Kind() != doctree.KindObject {
			return reference.Clone()
		}
		out := doctree.NewObject()
		for _, key := range reference.Keys() {
			refChild, _ := reference.Field(key)
			candChild, ok := candidate.Field(key)
			if !ok {
				out.Set(key, refChild.Clone())
				continue
			}
			out.Set(key, Correct(refChild, candChild))
		}
		return out
	case doctree.KindArray:
		if candidate.Kind() != doctree.KindArray {
			return reference.Clone()
		}
		return correctArray(reference, candidate)
	default:
		// Scalar: candidate content wins when it is a usable scalar.
		if candidate.IsLeaf() && candidate.Kind() != doctree.KindNull {
			return candidate.Clone()
		}
		return reference.Clone()
	}
}

func correctArray(reference, candidate *doctree.Node) *doctree.Node {
	idField := arrayIDField(reference)
	if idField == "" {
		return correctArrayPositional(reference, candidate)
	}

	// Index candidate elements by identifier, first occurrence wins.
	byID := make(map[string]int)
	for i := 0; i < candidate.Len(); i++ {
		id, ok := elementID(candidate.At(i), idField)
		if !ok {
			continue
		}
		if _, seen := byID[id]; !seen {
			byID[id] = i
		}
	}

	used := make(map[int]bool)
	matches := make([]int, reference.Len())
	for i := 0; i < reference.Len(); i++ {
		matches[i] = -1
		id, ok := elementID(reference.At(i), idField)
		if !ok {
			continue
		}
		if j, found := byID[id]; found && !used[j] {
			matches[i] = j
			used[j] = true
		}
	}
	// Unmatched reference slots fall back to the candidate element at the
	// same position, unless an id match already claimed it.
	for i := 0; i < reference.Len(); i++ {
		if matches[i] == -1 && i < candidate.Len() && !used[i] {
			matches[i] = i
			used[i] = true
		}
	}

	out := doctree.NewArray()
	for i := 0; i < reference.Len(); i++ {
		if j := matches[i]; j >= 0 {
			out.Append(Correct(reference.At(i), candidate.At(j)))
			continue
		}
		out.Append(reference.At(i).Clone())
	}
	return out
}

// correctArrayPositional pads from the reference when the candidate is short
// and drops candidate extras when it is long.
func correctArrayPositional(reference, candidate *doctree.Node) *doctree.Node {
	out := doctree.NewArray()
	for i := 0; i < reference.Len(); i++ {
		if i < candidate.Len() {
			out.Append(Correct(reference.At(i), candidate.At(i)))
			continue
		}
		out.Append(reference.At(i).Clone())
	}
	return out
}

// arrayIDField picks the identifier key for an array of objects, or ""
// when the array should merge positionally.
func arrayIDField(arr *doctree.Node) string {
	for i := 0; i < arr.Len(); i++ {
		elem := arr.At(i)
		if elem.Kind() != doctree.KindObject {
			continue
		}
		for _, field := range idFields {
			if _, ok := elementID(elem, field); ok {
				return field
			}
		}
	}
	return ""
}

// elementID extracts a comparable identifier from an object element.
func elementID(elem *doctree.Node, field string) (string, bool) {
	if elem.Kind() != doctree.KindObject {
		return "", false
	}
	v, ok := elem.Field(field)
	if !ok {
		return "", false
	}
	switch v.Kind() {
	case doctree.KindString:
		return v.Str(), v.Str() != ""
	case doctree.KindNumber:
		return string(v.Num()), true
	}
	return "", false
}
