// Package dependency implements the Dependency & Reldep component (spec §4,
// C3): a typed view over pool.Id values that designate either a bare
// capability name or a `name op evr` relation, plus the ordered containers
// that hold sequences of them.
package dependency

import (
	"github.com/rpmpkg/core/internal/evrcmp"
	"github.com/rpmpkg/core/pool"
)

// Reldep is a typed handle on a pool.Id known to designate a dependency
// expression, grounded on the same "typed wrapper over an opaque id" idiom
// the teacher uses in gps/typed_radix.go for pathDeducer ids.
type Reldep struct {
	Pool *pool.Pool
	Id   pool.Id
}

// NewName interns a bare-name reldep (no version relation), e.g. a Provides
// entry with no version constraint.
func NewName(p *pool.Pool, name string) Reldep {
	return Reldep{Pool: p, Id: p.Intern(name)}
}

// New interns a versioned reldep: `name op evr`.
func New(p *pool.Pool, name string, flags pool.RelFlags, evr string) Reldep {
	nameID := p.Intern(name)
	if flags == 0 {
		return Reldep{Pool: p, Id: nameID}
	}
	evrID := p.Intern(evr)
	return Reldep{Pool: p, Id: p.Rel(nameID, flags, evrID)}
}

// FromId wraps an already-interned id as a Reldep, for code paths that
// received an id from elsewhere in the pool (e.g. a provides-index lookup).
func FromId(p *pool.Pool, id pool.Id) Reldep {
	return Reldep{Pool: p, Id: id}
}

// IsRich reports whether this reldep is opaque rich-dependency syntax rather
// than a name or name/op/evr triple. Per spec §9.6, rich dependency grammar
// is not specified here; such ids are treated as opaque strings that compare
// equal only to themselves.
func (r Reldep) IsRich() bool {
	return !r.Pool.IsRel(r.Id) && containsParen(r.Pool.Str(r.Id))
}

func containsParen(s string) bool {
	for _, c := range s {
		if c == '(' {
			return true
		}
	}
	return false
}

// Name returns the capability name this reldep refers to, stripping any
// version relation.
func (r Reldep) Name() string {
	return r.Pool.Str(r.Pool.RelName(r.Id))
}

// Flags returns the relation's comparison operator bits, or 0 for a bare
// name.
func (r Reldep) Flags() pool.RelFlags {
	if !r.Pool.IsRel(r.Id) {
		return 0
	}
	_, flags, _ := r.Pool.RelParts(r.Id)
	return flags
}

// EVR returns the relation's version string, or "" for a bare name.
func (r Reldep) EVR() string {
	if !r.Pool.IsRel(r.Id) {
		return ""
	}
	_, _, evrID := r.Pool.RelParts(r.Id)
	return r.Pool.Str(evrID)
}

// String renders the reldep the way libdnf would: "name", or "name op evr".
func (r Reldep) String() string {
	return r.Pool.Str(r.Id)
}

// Satisfies reports whether a candidate (name, evr) pair satisfies this
// reldep: the names must match, and if this reldep carries a version
// relation, the candidate's evr must compare against it per Flags().
func (r Reldep) Satisfies(candidateName, candidateEVR string) bool {
	if candidateName != r.Name() {
		return false
	}
	flags := r.Flags()
	if flags == 0 {
		return true
	}
	c := evrcmp.CompareStrings(candidateEVR, r.EVR())
	switch {
	case c < 0:
		return flags&pool.RelLT != 0
	case c > 0:
		return flags&pool.RelGT != 0
	default:
		return flags&pool.RelEQ != 0
	}
}
