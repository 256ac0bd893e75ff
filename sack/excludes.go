package sack

import "github.com/rpmpkg/core/pool"

// SetExcludes replaces the pkg_excludes overlay wholesale.
func (s *Sack) SetExcludes(ids []pool.Id) {
	s.pkgExcludes = pool.PackageSetFromIds(ids...)
	s.invalidateConsidered()
}

// AddExcludes merges ids into the pkg_excludes overlay.
func (s *Sack) AddExcludes(ids []pool.Id) {
	for _, id := range ids {
		s.pkgExcludes.Add(id)
	}
	s.invalidateConsidered()
}

// RemoveExcludes removes ids from the pkg_excludes overlay, if present.
func (s *Sack) RemoveExcludes(ids []pool.Id) {
	for _, id := range ids {
		s.pkgExcludes.Remove(id)
	}
	s.invalidateConsidered()
}

// ResetExcludes clears the pkg_excludes overlay entirely.
func (s *Sack) ResetExcludes() {
	s.pkgExcludes = pool.NewPackageSet()
	s.invalidateConsidered()
}

// SetIncludes replaces the pkg_includes overlay wholesale.
func (s *Sack) SetIncludes(ids []pool.Id) {
	s.pkgIncludes = pool.PackageSetFromIds(ids...)
	s.invalidateConsidered()
}

// AddIncludes merges ids into the pkg_includes overlay.
func (s *Sack) AddIncludes(ids []pool.Id) {
	for _, id := range ids {
		s.pkgIncludes.Add(id)
	}
	s.invalidateConsidered()
}

// RemoveIncludes removes ids from the pkg_includes overlay, if present.
func (s *Sack) RemoveIncludes(ids []pool.Id) {
	for _, id := range ids {
		s.pkgIncludes.Remove(id)
	}
	s.invalidateConsidered()
}

// ResetIncludes clears the pkg_includes overlay entirely.
func (s *Sack) ResetIncludes() {
	s.pkgIncludes = pool.NewPackageSet()
	s.invalidateConsidered()
}

// SetModuleExcludes replaces the module_excludes overlay wholesale. This is
// the sack's sole contribution from the modular package layer (spec §1: the
// layer itself is out of scope beyond this).
func (s *Sack) SetModuleExcludes(ids []pool.Id) {
	s.moduleExcludes = pool.PackageSetFromIds(ids...)
	s.invalidateConsidered()
}

// AddModuleExcludes merges ids into the module_excludes overlay.
func (s *Sack) AddModuleExcludes(ids []pool.Id) {
	for _, id := range ids {
		s.moduleExcludes.Add(id)
	}
	s.invalidateConsidered()
}

// RemoveModuleExcludes removes ids from the module_excludes overlay.
func (s *Sack) RemoveModuleExcludes(ids []pool.Id) {
	for _, id := range ids {
		s.moduleExcludes.Remove(id)
	}
	s.invalidateConsidered()
}

// ResetModuleExcludes clears the module_excludes overlay entirely.
func (s *Sack) ResetModuleExcludes() {
	s.moduleExcludes = pool.NewPackageSet()
	s.invalidateConsidered()
}

// SetRepoExcludes replaces the repo_excludes overlay wholesale (all
// solvables belonging to the given repo names).
func (s *Sack) SetRepoExcludes(reponames []string) {
	s.repoExcludes = pool.NewPackageSet()
	s.AddRepoExcludes(reponames)
}

// AddRepoExcludes excludes every solvable belonging to the named repos.
func (s *Sack) AddRepoExcludes(reponames []string) {
	for _, name := range reponames {
		repo, ok := s.pool.Repo(name)
		if !ok {
			continue
		}
		for id := repo.Start; id < repo.End; id++ {
			s.repoExcludes.Add(id)
		}
	}
	s.invalidateConsidered()
}

// RemoveRepoExcludes un-excludes every solvable belonging to the named repos.
func (s *Sack) RemoveRepoExcludes(reponames []string) {
	for _, name := range reponames {
		repo, ok := s.pool.Repo(name)
		if !ok {
			continue
		}
		for id := repo.Start; id < repo.End; id++ {
			s.repoExcludes.Remove(id)
		}
	}
	s.invalidateConsidered()
}

// ResetRepoExcludes clears the repo_excludes overlay entirely.
func (s *Sack) ResetRepoExcludes() {
	s.repoExcludes = pool.NewPackageSet()
	s.invalidateConsidered()
}

// SetUseIncludes overrides whether a named repo participates in the
// pkg_includes restriction (spec §4.1).
func (s *Sack) SetUseIncludes(reponame string, enabled bool) {
	s.config.UseIncludesPerRepo[reponame] = enabled
	s.invalidateConsidered()
}
