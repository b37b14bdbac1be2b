package remote

import (
	"fmt"
	"strings"

	"github.com/aretw0/wtf/pkg/core"
)

// OpKind is the kind of a delta operation.
type OpKind int

const (
	OpAdd OpKind = iota
	OpDelete
)

func (k OpKind) String() string {
	if k == OpAdd {
		return "add"
	}
	return "delete"
}

// Op is one add or delete parsed from a diff line.
type Op struct {
	Kind  OpKind
	Entry core.Entry
}

// Delta is the ordered set of operations between two versions.
type Delta struct {
	Ops []Op
}

// DeletePolicy decides what a delete operation removes.
type DeletePolicy int

const (
	// DeleteExact removes the one matching (term, definition) pair.
	DeleteExact DeletePolicy = iota
	// DeleteTerm removes every definition stored under the term.
	DeleteTerm
)

// AddPolicy decides whether an add may duplicate an existing pair.
type AddPolicy int

const (
	// AddUnique skips pairs already present.
	AddUnique AddPolicy = iota
	// AddAlways inserts unconditionally.
	AddAlways
)

// ParseDeletePolicy accepts "exact" or "term".
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return DeleteExact, nil
	case "term":
		return DeleteTerm, nil
	}
	return DeleteExact, fmt.Errorf("unknown delete policy %q (want exact or term)", s)
}

func (p DeletePolicy) String() string {
	if p == DeleteTerm {
		return "term"
	}
	return "exact"
}

// ParseAddPolicy accepts "unique" or "always".
func ParseAddPolicy(s string) (AddPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unique":
		return AddUnique, nil
	case "always":
		return AddAlways, nil
	}
	return AddUnique, fmt.Errorf("unknown add policy %q (want unique or always)", s)
}

func (p AddPolicy) String() string {
	if p == AddAlways {
		return "always"
	}
	return "unique"
}

// headerPrefixes are git diff lines that carry no content.
var headerPrefixes = []string{
	"+++ ", "--- ", "@@", `\`,
	"diff ", "index ", "new file", "deleted file",
	"old mode", "new mode", "similarity", "rename ", "Binary files",
}

// ParseDiff turns a unified diff into a Delta. Content lines that do not hold
// a `term:definition` record are ignored; a line that is not valid diff syntax
// fails the whole parse with ErrParse.
func ParseDiff(patch string) (Delta, error) {
	var d Delta
	for i, line := range strings.Split(patch, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || isHeader(line) {
			continue
		}

		var kind OpKind
		switch line[0] {
		case '+':
			kind = OpAdd
		case '-':
			kind = OpDelete
		case ' ':
			continue
		default:
			return Delta{}, fmt.Errorf("%w: diff line %d: %q", core.ErrParse, i+1, line)
		}

		e, ok := core.ParseRecord(line[1:])
		if !ok {
			continue
		}
		d.Ops = append(d.Ops, Op{Kind: kind, Entry: e})
	}
	return d, nil
}

func isHeader(line string) bool {
	for _, p := range headerPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// ApplyStats counts what an application changed.
type ApplyStats struct {
	Added   int
	Deleted int
	Skipped int
}

// Apply runs every operation against dict in diff order. A changed line
// arrives as a delete followed by an add and is handled as two independent
// operations.
func (d Delta) Apply(dict *core.Dictionary, del DeletePolicy, add AddPolicy) ApplyStats {
	return d.ApplyOverlay(dict, nil, del, add)
}

// ApplyOverlay runs every operation against base. The overlay holds local
// entries that live beside base and is never modified: with AddUnique an add
// already present in the overlay is skipped, and deletes only reach base.
func (d Delta) ApplyOverlay(base, overlay *core.Dictionary, del DeletePolicy, add AddPolicy) ApplyStats {
	var stats ApplyStats
	for _, op := range d.Ops {
		term, def := op.Entry.Term, op.Entry.Definition
		switch op.Kind {
		case OpAdd:
			if add == AddUnique && (base.Contains(term, def) || (overlay != nil && overlay.Contains(term, def))) {
				stats.Skipped++
				continue
			}
			base.Insert(term, def)
			stats.Added++
		case OpDelete:
			var n int
			if del == DeleteTerm {
				n = base.DeleteAllForTerm(term)
			} else if base.DeleteExact(term, def) {
				n = 1
			}
			if n == 0 {
				stats.Skipped++
			}
			stats.Deleted += n
		}
	}
	return stats
}

// Len returns the number of operations.
func (d Delta) Len() int {
	return len(d.Ops)
}
