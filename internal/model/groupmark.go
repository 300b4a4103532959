package model

import "fmt"

// GroupState enumerates the grouping intent a descriptor can carry. The
// zero value means the configuration said nothing, which leaves the
// descriptor eligible for automatic positional pairing.
type GroupState int

const (
	// GroupDefault: no group key was given; eligible for automatic pairing.
	GroupDefault GroupState = iota
	// GroupOff: grouping explicitly disabled for this descriptor.
	GroupOff
	// GroupOn: grouping desired but no name assigned yet.
	GroupOn
	// GroupNamed: one or more group names are assigned.
	GroupNamed
)

// GroupMark records the grouping state of one descriptor. Scalar remembers
// whether a single name was assigned directly (as the grouper does) rather
// than as a list, which matters when a collapsed alias is stripped back off.
type GroupMark struct {
	State  GroupState
	Names  []string
	Scalar bool
}

// ParseGroupMark interprets a raw "group" configuration value: a bool, a
// group name, or a list of group names.
func ParseGroupMark(v any) (GroupMark, error) {
	switch g := v.(type) {
	case nil:
		return GroupMark{}, nil
	case bool:
		if g {
			return GroupMark{State: GroupOn}, nil
		}
		return GroupMark{State: GroupOff}, nil
	case string:
		return GroupMark{State: GroupNamed, Names: []string{g}, Scalar: true}, nil
	case []any:
		names := make([]string, 0, len(g))
		for _, e := range g {
			s, ok := e.(string)
			if !ok {
				return GroupMark{}, fmt.Errorf("group list entries must be strings, got %T", e)
			}
			names = append(names, s)
		}
		return GroupMark{State: GroupNamed, Names: names}, nil
	case []string:
		return GroupMark{State: GroupNamed, Names: append([]string(nil), g...)}, nil
	default:
		return GroupMark{}, fmt.Errorf("group must be a bool, a name, or a list of names, got %T", v)
	}
}

func (g GroupMark) clone() GroupMark {
	c := g
	c.Names = append([]string(nil), g.Names...)
	return c
}

// Eligible reports whether the descriptor participates in automatic
// positional pairing: everything does unless grouping was turned off or a
// name was already assigned by hand.
func (g GroupMark) Eligible() bool {
	return g.State == GroupDefault || g.State == GroupOn
}

// Assign sets a freshly synthesized group name, as the grouper does.
func (g *GroupMark) Assign(name string) {
	g.State = GroupNamed
	g.Names = []string{name}
	g.Scalar = true
}

// Normalize drops a lingering boolean marker: a bare on/off intent carries
// no information once grouping has run, and must not keep otherwise
// identical descriptors from fusing.
func (g *GroupMark) Normalize() {
	if g.State == GroupOn || g.State == GroupOff {
		*g = GroupMark{}
	}
}

// Union merges another mark's names into this one, producing a list-shaped
// mark, as descriptor fusion requires.
func (g *GroupMark) Union(other GroupMark) {
	g.Names = append(g.Names, other.Names...)
	g.State = GroupNamed
	g.Scalar = false
}

// Remove strips one group name. A scalar mark whose only name is removed
// reverts to the bare "grouping desired" marker; a list mark just shrinks,
// possibly to an empty list that no longer names any group.
func (g *GroupMark) Remove(name string) {
	if g.State != GroupNamed {
		return
	}
	if g.Scalar {
		if len(g.Names) == 1 && g.Names[0] == name {
			*g = GroupMark{State: GroupOn}
		}
		return
	}
	kept := g.Names[:0]
	for _, n := range g.Names {
		if n != name {
			kept = append(kept, n)
		}
	}
	g.Names = kept
}
