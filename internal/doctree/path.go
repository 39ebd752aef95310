package doctree

import (
	"fmt"
	"strings"
)

type step struct {
	key   string
	index int
	isIdx bool
}

// Path addresses a node inside a tree as a sequence of object keys and array
// indices. Paths are immutable; Key and Index return extended copies.
type Path struct {
	steps []step
}

func RootPath() Path { return Path{} }

func (p Path) Key(k string) Path {
	steps := make([]step, len(p.steps), len(p.steps)+1)
	copy(steps, p.steps)
	return Path{steps: append(steps, step{key: k})}
}

func (p Path) Index(i int) Path {
	steps := make([]step, len(p.steps), len(p.steps)+1)
	copy(steps, p.steps)
	return Path{steps: append(steps, step{index: i, isIdx: true})}
}

func (p Path) IsRoot() bool { return len(p.steps) == 0 }

// String renders the path as dotted keys with bracketed indices,
// e.g. "attachments[2].body". The root renders as "$".
func (p Path) String() string {
	if len(p.steps) == 0 {
		return "$"
	}
	var b strings.Builder
	for i, s := range p.steps {
		if s.isIdx {
			fmt.Fprintf(&b, "[%d]", s.index)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.key)
	}
	return b.String()
}
