package sack

import "github.com/rpmpkg/core/pool"

// PkgExcludes returns a clone of the pkg_excludes overlay, for callers (the
// query engine) that need to compute a considered map under non-default
// exclude-handling flags.
func (s *Sack) PkgExcludes() *pool.PackageSet { return s.pkgExcludes.Clone() }

// RepoExcludes returns a clone of the repo_excludes overlay.
func (s *Sack) RepoExcludes() *pool.PackageSet { return s.repoExcludes.Clone() }

// ModuleExcludes returns a clone of the module_excludes overlay.
func (s *Sack) ModuleExcludes() *pool.PackageSet { return s.moduleExcludes.Clone() }

// ConsideredWithFlags recomputes a considered-equivalent map honouring the
// given exclude-ignoring toggles, without mutating the sack's cached
// considered map (spec §4.2's ApplyExcludes/IgnoreExcludes/
// IgnoreRegularExcludes/IgnoreModularExcludes query flags).
func (s *Sack) ConsideredWithFlags(ignoreRegular, ignoreModular bool) *pool.PackageSet {
	if !ignoreRegular && !ignoreModular {
		return s.Considered().Clone()
	}
	all := s.PkgSolvables()
	if !ignoreRegular {
		all.SubtractInPlace(s.repoExcludes)
		all.SubtractInPlace(s.pkgExcludes)
	}
	if !ignoreModular {
		all.SubtractInPlace(s.moduleExcludes)
	}
	if !s.pkgIncludes.Empty() {
		allowed := s.pkgIncludes.Clone()
		for _, repo := range s.pool.Repos() {
			if !s.effectiveUseIncludes(repo) {
				for id := repo.Start; id < repo.End; id++ {
					allowed.Add(id)
				}
			}
		}
		all.IntersectInPlace(allowed)
	}
	return all
}
