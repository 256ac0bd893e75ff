// Package pool implements the Id Pool (spec §4, component C1): interning of
// strings and dependency relations into small integer ids, and the solvables
// array those ids (and repo ranges) index into.
//
// The interning scheme is grounded on the teacher's typed_radix.go idiom of
// wrapping general-purpose data structures (there, armon/go-radix; here, a
// pair of maps plus an append-only arena, with a go-radix tree for prefix
// lookups) behind a narrow, typed API
// so the rest of the module never has to type-assert.
package pool

import (
	"fmt"

	"github.com/armon/go-radix"
	"github.com/pkg/errors"
)

// Id is the interned identifier of a string or a dependency relation. Id 0
// means "none" and must never be aliased with a valid entry.
type Id uint32

// NoId is the reserved "none" sentinel.
const NoId Id = 0

// SystemSolvableId is the reserved solvable id for the pseudo-package that
// represents the running system itself (spec §3, "Pool").
const SystemSolvableId Id = 1

// RelFlags is a bit set of comparison operators for a dependency relation.
type RelFlags uint8

const (
	RelLT RelFlags = 1 << iota
	RelGT
	RelEQ
)

// String renders the flags as the operator libdnf would print ("<", "<=", …).
func (f RelFlags) String() string {
	switch f {
	case RelLT:
		return "<"
	case RelGT:
		return ">"
	case RelEQ:
		return "="
	case RelLT | RelEQ:
		return "<="
	case RelGT | RelEQ:
		return ">="
	default:
		return ""
	}
}

type entryKind uint8

const (
	kindString entryKind = iota
	kindRelation
)

type relation struct {
	name  Id
	flags RelFlags
	evr   Id
}

type entry struct {
	kind entryKind
	str  string
	rel  relation
}

type relKey struct {
	name  Id
	flags RelFlags
	evr   Id
}

// Pool owns the string/relation intern tables and the solvables array. It is
// the sole authority over ids; Sack, Query, and Goal all borrow a *Pool
// rather than copying its contents (spec §5, "shared-resource policy").
type Pool struct {
	entries   []entry // entries[0] is the reserved NoId slot
	strIndex  map[string]Id
	relIndex  map[relKey]Id
	prefixIdx *radix.Tree // name -> Id, for provides-by-prefix lookups

	solvables []Solvable // solvables[0] unused, solvables[SystemSolvableId] is the system pseudo-package
	repos     map[string]*Repo

	installedRepo *Repo
}

// New returns an empty Pool with the reserved NoId and SystemSolvableId slots
// already populated.
func New() *Pool {
	p := &Pool{
		entries:   make([]entry, 1, 256), // index 0 reserved
		strIndex:  make(map[string]Id, 256),
		relIndex:  make(map[relKey]Id, 64),
		prefixIdx: radix.New(),
		solvables: make([]Solvable, 2, 256), // 0 unused, 1 = system solvable
		repos:     make(map[string]*Repo),
	}
	p.solvables[SystemSolvableId] = Solvable{Name: p.Intern("system")}
	return p
}

// Intern returns the Id for s, allocating one if s hasn't been seen before.
func (p *Pool) Intern(s string) Id {
	if id, ok := p.strIndex[s]; ok {
		return id
	}
	id := Id(len(p.entries))
	p.entries = append(p.entries, entry{kind: kindString, str: s})
	p.strIndex[s] = id
	p.prefixIdx.Insert(s, id)
	return id
}

// Lookup returns the Id for s without interning it, for read-only existence
// checks (e.g. "does a reldep with exactly this name exist").
func (p *Pool) Lookup(s string) (Id, bool) {
	id, ok := p.strIndex[s]
	return id, ok
}

// Rel interns a `name op evr` relation, returning the same Id on repeated
// calls with identical arguments (relations are deduplicated just like plain
// strings).
func (p *Pool) Rel(name Id, flags RelFlags, evr Id) Id {
	key := relKey{name: name, flags: flags, evr: evr}
	if id, ok := p.relIndex[key]; ok {
		return id
	}
	id := Id(len(p.entries))
	p.entries = append(p.entries, entry{kind: kindRelation, rel: relation{name: name, flags: flags, evr: evr}})
	p.relIndex[key] = id
	return id
}

// IsRel reports whether id names a relation (as opposed to a bare string).
func (p *Pool) IsRel(id Id) bool {
	if int(id) >= len(p.entries) {
		return false
	}
	return p.entries[id].kind == kindRelation
}

// RelParts decomposes a relation id into its name, flags, and evr ids. It
// panics if id does not name a relation; callers must check IsRel first, the
// same invariant the teacher's typed wrappers enforce via the type system.
func (p *Pool) RelParts(id Id) (name Id, flags RelFlags, evr Id) {
	e := p.entries[id]
	if e.kind != kindRelation {
		panic(fmt.Sprintf("pool: id %d is not a relation", id))
	}
	return e.rel.name, e.rel.flags, e.rel.evr
}

// Str renders id as a string: the interned string itself for a bare name, or
// "name op evr" for a relation.
func (p *Pool) Str(id Id) string {
	if id == NoId || int(id) >= len(p.entries) {
		return ""
	}
	e := p.entries[id]
	if e.kind == kindString {
		return e.str
	}
	return fmt.Sprintf("%s%s%s", p.Str(e.rel.name), e.rel.flags, p.Str(e.rel.evr))
}

// RelName returns the name Id of a relation, or id itself if it is already a
// bare name (convenience for filter code that accepts either).
func (p *Pool) RelName(id Id) Id {
	if p.IsRel(id) {
		n, _, _ := p.RelParts(id)
		return n
	}
	return id
}

// PrefixMatches returns all interned strings sharing the given prefix, used
// by Nevra-glob expansion and file-provides lookups.
func (p *Pool) PrefixMatches(prefix string) []string {
	var out []string
	p.prefixIdx.WalkPrefix(prefix, func(s string, _ interface{}) bool {
		out = append(out, s)
		return false
	})
	return out
}

// Solvables returns the live backing array. Callers must not retain slices
// across a mutation that appends a new solvable (AddSolvable may reallocate).
func (p *Pool) Solvables() []Solvable {
	return p.solvables
}

// Solvable returns the solvable at id, or the zero Solvable if out of range.
func (p *Pool) Solvable(id Id) Solvable {
	if int(id) >= len(p.solvables) {
		return Solvable{}
	}
	return p.solvables[id]
}

// SetSolvable overwrites the solvable at id in place (used while populating a
// repo's contiguous id range during loading).
func (p *Pool) SetSolvable(id Id, s Solvable) {
	for int(id) >= len(p.solvables) {
		p.solvables = append(p.solvables, Solvable{})
	}
	p.solvables[id] = s
}

// AddSolvable appends a new solvable and returns its freshly allocated id.
func (p *Pool) AddSolvable(s Solvable) Id {
	id := Id(len(p.solvables))
	p.solvables = append(p.solvables, s)
	return id
}

// NumSolvables returns the current size of the solvables array, i.e. the
// exclusive upper bound on valid solvable ids.
func (p *Pool) NumSolvables() int {
	return len(p.solvables)
}

// Repo looks up a repository by name.
func (p *Pool) Repo(name string) (*Repo, bool) {
	r, ok := p.repos[name]
	return r, ok
}

// Repos returns all registered repositories, in no particular order.
func (p *Pool) Repos() []*Repo {
	out := make([]*Repo, 0, len(p.repos))
	for _, r := range p.repos {
		out = append(out, r)
	}
	return out
}

// NewRepo registers and returns a fresh, empty repository. Only one
// repository in the pool may ever be marked installed.
func (p *Pool) NewRepo(name string) *Repo {
	r := &Repo{
		Name:        name,
		UseIncludes: true,
		pool:        p,
		Start:       Id(len(p.solvables)),
		End:         Id(len(p.solvables)),
	}
	p.repos[name] = r
	return r
}

// SetInstalledRepo marks r as the pool's single installed repo (spec §3).
func (p *Pool) SetInstalledRepo(r *Repo) error {
	if p.installedRepo != nil && p.installedRepo != r {
		return errors.Errorf("pool: repo %q already marked installed", p.installedRepo.Name)
	}
	r.Installed = true
	p.installedRepo = r
	return nil
}

// InstalledRepo returns the pool's installed repo, if any.
func (p *Pool) InstalledRepo() *Repo {
	return p.installedRepo
}
