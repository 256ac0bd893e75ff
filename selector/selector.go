// Package selector implements the Selector (spec §4.3, component C5): a
// query narrowed to the restricted filter set a goal action can target, and
// the AND-of-constraints translation a job builder consumes.
package selector

import (
	"github.com/rpmpkg/core/internal/errkind"
	"github.com/rpmpkg/core/pool"
	"github.com/rpmpkg/core/query"
	"github.com/rpmpkg/core/sack"
)

// Selector accumulates the restricted constraint set: name, provides, file,
// arch, evr, reponame, and an explicit package set. Unlike a general Query,
// each constraint kind holds one filter (setting it again replaces the
// earlier one); combination is always AND.
type Selector struct {
	sack *sack.Sack

	name     *query.Filter
	provides *query.Filter
	file     *query.Filter
	arch     *query.Filter
	evr      *query.Filter
	reponame *query.Filter
	pkgset   *pool.PackageSet
}

// New returns an empty Selector over s.
func New(s *sack.Sack) *Selector {
	return &Selector{sack: s}
}

func strFilter(key query.KeyName, cmp query.CmpType, match string) query.Filter {
	return query.Filter{Key: key, Cmp: cmp, MatchType: query.MatchStr, StrMatches: []string{match}}
}

// SetName constrains by package name.
func (sel *Selector) SetName(cmp query.CmpType, match string) *Selector {
	f := strFilter(query.Name, cmp, match)
	sel.name = &f
	return sel
}

// SetProvides constrains by a provided capability name.
func (sel *Selector) SetProvides(cmp query.CmpType, match string) *Selector {
	f := strFilter(query.Provides, cmp, match)
	sel.provides = &f
	return sel
}

// SetFile constrains by a filelists-provided path.
func (sel *Selector) SetFile(match string) *Selector {
	f := strFilter(query.File, query.EQ, match)
	sel.file = &f
	return sel
}

// SetArch force-constrains the architecture.
func (sel *Selector) SetArch(match string) *Selector {
	f := strFilter(query.Arch, query.EQ, match)
	sel.arch = &f
	return sel
}

// SetEVR force-constrains the epoch:version-release.
func (sel *Selector) SetEVR(cmp query.CmpType, match string) *Selector {
	f := strFilter(query.EVR, cmp, match)
	sel.evr = &f
	return sel
}

// SetReponame constrains to packages from a single named repo.
func (sel *Selector) SetReponame(match string) *Selector {
	f := strFilter(query.Reponame, query.EQ, match)
	sel.reponame = &f
	return sel
}

// SetPackageSet constrains to an explicit, pre-computed package set.
func (sel *Selector) SetPackageSet(set *pool.PackageSet) *Selector {
	sel.pkgset = set
	return sel
}

// constraints returns every non-nil filter set on the selector, in a fixed
// order so job translation is deterministic.
func (sel *Selector) constraints() []query.Filter {
	var out []query.Filter
	for _, f := range []*query.Filter{sel.name, sel.provides, sel.file, sel.arch, sel.evr, sel.reponame} {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out
}

// Resolve runs the AND-of-constraints as a Query and returns the matching
// solvable ids. An empty selector (no constraint at all) is a BadSelector
// error per spec §4.3, "install(selector)".
func (sel *Selector) Resolve() ([]pool.Id, error) {
	constraints := sel.constraints()
	if len(constraints) == 0 && sel.pkgset == nil {
		return nil, errkind.New(errkind.BadSelector, "selector has no name/provides/file/pkgset constraint")
	}

	q := query.New(sel.sack, query.ApplyExcludes)
	for _, f := range constraints {
		if err := addFilter(q, f); err != nil {
			return nil, err
		}
	}
	if sel.pkgset != nil {
		if err := q.AddPkgSet(query.Pkg, query.EQ, sel.pkgset); err != nil {
			return nil, err
		}
	}
	return q.Run()
}

func addFilter(q *query.Query, f query.Filter) error {
	switch f.MatchType {
	case query.MatchStr:
		return q.AddStrList(f.Key, f.Cmp, f.StrMatches)
	case query.MatchNum:
		return q.AddNum(f.Key, f.Cmp, f.NumMatches...)
	case query.MatchPkg:
		return q.AddPkgSet(f.Key, f.Cmp, f.PkgMatches)
	case query.MatchReldep:
		return q.AddReldepList(f.Key, f.Cmp, f.ReldepMatches)
	default:
		return errkind.New(errkind.BadSelector, "unsupported selector constraint")
	}
}

// IsEmpty reports whether no constraint has been set.
func (sel *Selector) IsEmpty() bool {
	return len(sel.constraints()) == 0 && sel.pkgset == nil
}
