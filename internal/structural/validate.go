// Package structural compares and repairs generated document trees. A
// translated or regenerated document must keep the reference's shape (keys,
// lengths, nesting) while its leaf text is free to differ.
package structural

import (
	"fmt"

	"contentguard/internal/doctree"
)

type DiffKind string

const (
	DiffMissingKey     DiffKind = "missing-key"
	DiffExtraKey       DiffKind = "extra-key"
	DiffLengthMismatch DiffKind = "length-mismatch"
	DiffKindMismatch   DiffKind = "kind-mismatch"
	DiffInvalidRoot    DiffKind = "invalid-root"
)

type Diff struct {
	Path   doctree.Path
	Kind   DiffKind
	Detail string
}

// Result is the outcome of a structural comparison. Extra candidate keys are
// recorded as diagnostics but do not fail validation; only missing structure
// does.
type Result struct {
	OK    bool
	Diffs []Diff
}

// Validate reports whether candidate conforms to reference's shape. Leaf
// content is never compared. Both inputs are left untouched.
func Validate(reference, candidate *doctree.Node) Result {
	if reference.Kind() == doctree.KindNull || candidate.Kind() == doctree.KindNull {
		return Result{
			OK: false,
			Diffs: []Diff{{
				Path:   doctree.RootPath(),
				Kind:   DiffInvalidRoot,
				Detail: "reference or candidate root is null or absent",
			}},
		}
	}

	v := &validation{}
	v.walk(doctree.RootPath(), reference, candidate)
	return Result{OK: !v.failed, Diffs: v.diffs}
}

type validation struct {
	failed bool
	diffs  []Diff
}

func (v *validation) fail(path doctree.Path, kind DiffKind, format string, args ...any) {
	v.failed = true
	v.diffs = append(v.diffs, Diff{Path: path, Kind: kind, Detail: fmt.Sprintf(format, args...)})
}

func (v *validation) note(path doctree.Path, kind DiffKind, format string, args ...any) {
	v.diffs = append(v.diffs, Diff{Path: path, Kind: kind, Detail: fmt.Sprintf(format, args...)})
}

func (v *validation) walk(path doctree.Path, ref, cand *doctree.Node) {
	refNull := ref.Kind() == doctree.KindNull
	candNull := cand.Kind() == doctree.KindNull
	if refNull || candNull {
		if refNull != candNull {
			v.fail(path, DiffKindMismatch, "one side is null (reference=%s, candidate=%s)", ref.Kind(), cand.Kind())
		}
		return
	}

	switch ref.Kind() {
	case doctree.KindObject:
		if cand.Kind() != doctree.KindObject {
			v.fail(path, DiffKindMismatch, "expected object, candidate is %s", cand.Kind())
			return
		}
		for _, key := range ref.Keys() {
			refChild, _ := ref.Field(key)
			candChild, ok := cand.Field(key)
			if !ok {
				v.fail(path.Key(key), DiffMissingKey, "candidate is missing key %q", key)
				continue
			}
			v.walk(path.Key(key), refChild, candChild)
		}
		for _, key := range cand.Keys() {
			if _, ok := ref.Field(key); !ok {
				v.note(path.Key(key), DiffExtraKey, "candidate has extra key %q", key)
			}
		}
	case doctree.KindArray:
		if cand.Kind() != doctree.KindArray {
			v.fail(path, DiffKindMismatch, "expected array, candidate is %s", cand.Kind())
			return
		}
		if ref.Len() != cand.Len() {
			v.fail(path, DiffLengthMismatch, "expected %d elements, candidate has %d", ref.Len(), cand.Len())
			return
		}
		for i := 0; i < ref.Len(); i++ {
			v.walk(path.Index(i), ref.At(i), cand.At(i))
		}
	default:
		// Scalar vs scalar: content differs by design (translation), only
		// scalar-vs-container flips count as shape breaks.
		if cand.Kind() == doctree.KindArray || cand.Kind() == doctree.KindObject {
			v.fail(path, DiffKindMismatch, "expected scalar %s, candidate is %s", ref.Kind(), cand.Kind())
		}
	}
}
