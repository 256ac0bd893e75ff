package query

import (
	"github.com/rpmpkg/core/pool"
)

// FilterExtras restricts the (forced-applied) result to installed packages
// with no available counterpart of equal (name, arch) — "extras" in the
// source's sense of rpm -qa packages with nothing upstream to compare
// against.
func (q *Query) FilterExtras() error {
	if err := q.Apply(); err != nil {
		return err
	}
	p := q.sack.Pool()
	installed := p.InstalledRepo()
	if installed == nil {
		q.result = pool.NewPackageSet()
		return nil
	}

	availableNameArch := make(map[string]bool)
	for _, repo := range p.Repos() {
		if repo == installed {
			continue
		}
		for id := repo.Start; id < repo.End; id++ {
			s := p.Solvable(id)
			if s.IsEmpty() {
				continue
			}
			availableNameArch[p.Str(s.Name)+"\x00"+p.Str(s.Arch)] = true
		}
	}

	kept := pool.NewPackageSet()
	for _, id := range q.result.ToSlice() {
		s := p.Solvable(id)
		if s.Repo != installed {
			continue
		}
		if !availableNameArch[p.Str(s.Name)+"\x00"+p.Str(s.Arch)] {
			kept.Add(id)
		}
	}
	q.result = kept
	return nil
}

// FilterRecent restricts the result to solvables with BuildTime > cutoff.
func (q *Query) FilterRecent(cutoff int64) error {
	if err := q.Apply(); err != nil {
		return err
	}
	p := q.sack.Pool()
	kept := pool.NewPackageSet()
	for _, id := range q.result.ToSlice() {
		if p.Solvable(id).BuildTime > cutoff {
			kept.Add(id)
		}
	}
	q.result = kept
	return nil
}

// FilterDuplicated restricts the result to installed packages that share a
// name with another installed package but differ in (evr, arch).
func (q *Query) FilterDuplicated() error {
	if err := q.Apply(); err != nil {
		return err
	}
	p := q.sack.Pool()
	installed := p.InstalledRepo()
	if installed == nil {
		q.result = pool.NewPackageSet()
		return nil
	}

	type key struct{ evr, arch string }
	byName := make(map[string]map[key]bool)
	for _, id := range q.result.ToSlice() {
		s := p.Solvable(id)
		if s.Repo != installed {
			continue
		}
		name := p.Str(s.Name)
		k := key{p.Str(s.Evr), p.Str(s.Arch)}
		if byName[name] == nil {
			byName[name] = make(map[key]bool)
		}
		byName[name][k] = true
	}

	kept := pool.NewPackageSet()
	for _, id := range q.result.ToSlice() {
		s := p.Solvable(id)
		if s.Repo != installed {
			continue
		}
		if len(byName[p.Str(s.Name)]) > 1 {
			kept.Add(id)
		}
	}
	q.result = kept
	return nil
}

// UnneededResolver is implemented by the goal package: it runs a throwaway
// solve marking every package the history store recorded as user-installed
// as USERINSTALLED, and returns the solver's resulting unneeded set (spec
// §4.3, "list_unneeded / list_safe_to_remove").
type UnneededResolver interface {
	Unneeded(debug bool) (*pool.PackageSet, error)
}

// FilterUnneeded restricts the result to the unneeded set a goal/solver
// computes (spec §4.2, "filter_unneeded(history, debug)"). The history
// dependency is carried by the resolver closure the caller constructs (e.g.
// goal.NewUnneededResolver(sack, historyStore)), keeping this package free
// of a direct dependency on history or goal.
func (q *Query) FilterUnneeded(resolver UnneededResolver, debug bool) error {
	if err := q.Apply(); err != nil {
		return err
	}
	unneeded, err := resolver.Unneeded(debug)
	if err != nil {
		return err
	}
	q.result.IntersectInPlace(unneeded)
	return nil
}

// FilterSafeToRemove is an alias for FilterUnneeded under the source's
// naming: "unneeded" and "safe to remove" are the same computation viewed
// from two call sites.
func (q *Query) FilterSafeToRemove(resolver UnneededResolver, debug bool) error {
	return q.FilterUnneeded(resolver, debug)
}
