// Package sack implements the Package Sack (spec §4.1, component C2): the
// in-memory catalogue of solvables, layered with repo excludes, package and
// module excludes/includes, and a considered bitmap recomputed on demand.
// Repo.Disabled is not consulted when computing the considered bitmap.
//
// RPM file I/O, repository metadata parsing, HTTP/mirror fetching, and GPG
// validation are explicitly out of scope (spec §1); they are represented
// here only as the RepoMetadataSource / SystemPackageSource interfaces that
// a real loader implements and hands to LoadRepo / LoadSystemRepo.
package sack

import (
	"github.com/rpmpkg/core/internal/log"
	"github.com/rpmpkg/core/pool"
)

// Sack hosts repositories of solvables and the visibility overlays layered
// on top of them (spec §3, "Pool"/"Repo" usage from the sack's perspective).
type Sack struct {
	pool   *pool.Pool
	config Config
	log    *log.Logger

	pkgExcludes    *pool.PackageSet
	pkgIncludes    *pool.PackageSet
	moduleExcludes *pool.PackageSet
	repoExcludes   *pool.PackageSet

	consideredUpToDate bool
	considered         *pool.PackageSet

	installonlyNames map[string]bool
	installonlyLimit uint32

	cache *Cache

	runningKernelResolver func(*Sack) (pool.Id, error)
	runningKernelMemo     *pool.Id
	runningKernelErr      error

	providesReady bool

	fileProvides   FileProvidesSource
	advisorySource AdvisorySource
}

// New constructs a Sack over a fresh Pool, normalizing cfg (filling in
// cachedir/arch autodetection) and opening the on-disk cache.
func New(cfg Config, logger *log.Logger) (*Sack, error) {
	ncfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Sack{
		pool:             pool.New(),
		config:           ncfg,
		log:              logger,
		pkgExcludes:      pool.NewPackageSet(),
		pkgIncludes:      pool.NewPackageSet(),
		moduleExcludes:   pool.NewPackageSet(),
		repoExcludes:     pool.NewPackageSet(),
		installonlyNames: make(map[string]bool, len(ncfg.Installonly)),
		installonlyLimit: ncfg.InstallonlyLimit,
	}
	for _, name := range ncfg.Installonly {
		s.installonlyNames[name] = true
	}

	cache, err := OpenCache(ncfg.CacheDir)
	if err != nil {
		logger.WithError(err).Warn("sack: cache unavailable, proceeding without it")
	}
	s.cache = cache

	return s, nil
}

// Pool returns the sack's underlying pool.
func (s *Sack) Pool() *pool.Pool { return s.pool }

// Config returns a copy of the sack's normalized configuration.
func (s *Sack) Config() Config { return s.config }

// Close releases resources the sack owns (the on-disk cache).
func (s *Sack) Close() error {
	if s.cache != nil {
		return s.cache.Close()
	}
	return nil
}

// InstallonlyLimit returns the configured limit (0 = unlimited).
func (s *Sack) InstallonlyLimit() uint32 { return s.installonlyLimit }

// IsInstallonly reports whether name is configured as an installonly
// provide-name.
func (s *Sack) IsInstallonly(name string) bool { return s.installonlyNames[name] }

// InstallonlyNames returns the configured installonly provide-names.
func (s *Sack) InstallonlyNames() []string {
	out := make([]string, 0, len(s.installonlyNames))
	for n := range s.installonlyNames {
		out = append(out, n)
	}
	return out
}

// PkgSolvables returns the set of all solvable ids belonging to package
// repos in the pool (i.e. not holes, and excluding id 0/SystemSolvableId).
func (s *Sack) PkgSolvables() *pool.PackageSet {
	set := pool.NewPackageSet()
	for _, repo := range s.pool.Repos() {
		for id := repo.Start; id < repo.End; id++ {
			if !s.pool.Solvable(id).IsEmpty() {
				set.Add(id)
			}
		}
	}
	return set
}

// Considered returns the considered bitmap (spec §4.1), recomputing it first
// if any overlay mutation has invalidated it.
func (s *Sack) Considered() *pool.PackageSet {
	if !s.consideredUpToDate {
		s.recomputeConsidered()
	}
	return s.considered
}

// recomputeConsidered implements: considered = ALL - repo_excludes -
// pkg_excludes - module_excludes, then, if pkg_includes is non-empty,
// intersected with pkg_includes ∪ {s : repo.use_includes = false}.
func (s *Sack) recomputeConsidered() {
	all := s.PkgSolvables()
	all.SubtractInPlace(s.repoExcludes)
	all.SubtractInPlace(s.pkgExcludes)
	all.SubtractInPlace(s.moduleExcludes)

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

	s.considered = all
	s.consideredUpToDate = true
	s.providesReady = false
}

func (s *Sack) effectiveUseIncludes(r *pool.Repo) bool {
	if v, ok := s.config.UseIncludesPerRepo[r.Name]; ok {
		return v
	}
	return r.UseIncludes
}

// invalidateConsidered marks the considered map stale; the next
// visibility-sensitive read recomputes it exactly once (spec §8).
func (s *Sack) invalidateConsidered() {
	s.consideredUpToDate = false
}

// MakeProvidesReady recomputes the considered map if it is stale and marks
// provides as ready. The sack keeps no separate provides index, so nothing
// else is built. Repeated calls after no intervening mutation are no-ops.
func (s *Sack) MakeProvidesReady() {
	s.Considered() // forces recompute if stale
	s.providesReady = true
}
