package sack

import (
	"github.com/rpmpkg/core/internal/errkind"
	"github.com/rpmpkg/core/internal/log"
	"github.com/rpmpkg/core/pool"
)

// SystemPackageSource is the injected collaborator that reads the installed
// package set (an rpmdb-equivalent). RPM file I/O itself is out of scope
// (spec §1); this interface is the seam a real loader implements.
type SystemPackageSource interface {
	// LoadInstalled returns every installed solvable plus, in parallel, each
	// package's SHA-1 header hash and name, used for SystemFingerprint.
	LoadInstalled() (solvables []pool.Solvable, headerHashes []string, names []string, err error)
}

// LoadFlags controls which optional extensions LoadRepo attempts to load.
type LoadFlags uint8

const (
	LoadFilelists LoadFlags = 1 << iota
	LoadUpdateinfo
	LoadPresto // delta/prestodelta metadata
)

// RepoMetadataSource is the injected collaborator that decodes repository
// metadata (XML/solv-file, filelists, updateinfo, delta — all out of scope
// per spec §1) into solvables plus a checksum for cache validation.
type RepoMetadataSource interface {
	// Checksum returns the currently advertised metadata checksum, compared
	// against the cache's trailing checksum before a full decode is done.
	Checksum() (string, error)
	// Load decodes the metadata into solvables. Extensions requested by
	// flags but unavailable should be reported via missingExt, not err.
	Load(flags LoadFlags) (solvables []pool.Solvable, missingExt []string, err error)
}

// LoadSystemRepo imports installed packages from src, marking the resulting
// repo as installed (spec §4.1). It computes and returns the system
// fingerprint for cache validation.
func (s *Sack) LoadSystemRepo(src SystemPackageSource) (fingerprint string, err error) {
	solvables, hashes, names, err := src.LoadInstalled()
	if err != nil {
		return "", errkind.Wrap(errkind.FileInvalid, err, "load system repo")
	}

	repo := s.pool.NewRepo("system")
	repo.UseIncludes = true
	for _, sv := range solvables {
		repo.AddSolvable(sv)
	}
	if err := s.pool.SetInstalledRepo(repo); err != nil {
		return "", errkind.Wrap(errkind.Internal, err, "mark system repo installed")
	}

	s.invalidateConsidered()
	return SystemFingerprint(hashes, names), nil
}

// LoadRepo adds a named repository, decoding it via src. Missing optional
// extensions are downgraded to warnings; any other failure aborts the load,
// leaving the sack unchanged (spec §4.1, "Failure").
func (s *Sack) LoadRepo(reponame string, src RepoMetadataSource, flags LoadFlags) error {
	checksum, err := src.Checksum()
	if err != nil {
		return errkind.Wrap(errkind.CannotFetchSource, err, "fetch metadata checksum for "+reponame)
	}

	if repo, existing := s.pool.Repo(reponame); existing {
		if valid, _ := s.cache.Valid(reponame, checksum); valid && repo.Checksum == checksum {
			s.log.WithField("repo", reponame).Debug("sack: cache hit, skipping decode")
			return nil
		}
	}

	solvables, missing, err := src.Load(flags)
	if err != nil {
		return errkind.Wrap(errkind.FileInvalid, err, "load repo "+reponame)
	}
	for _, ext := range missing {
		s.log.WithFields(log.Fields{"repo": reponame, "extension": ext}).
			Warn("sack: optional extension unavailable, degrading to warning")
	}

	repo, existing := s.pool.Repo(reponame)
	if !existing {
		repo = s.pool.NewRepo(reponame)
	}
	for _, sv := range solvables {
		repo.AddSolvable(sv)
	}
	repo.Checksum = checksum

	if s.cache != nil {
		if err := s.cache.Store(reponame, checksum); err != nil {
			s.log.WithError(err).Warn("sack: failed to persist cache checksum")
		}
	}

	s.invalidateConsidered()
	return nil
}

// AddCmdlinePackage ingests a single ad-hoc package into the "@commandline"
// pseudo-repo (spec §3), returning its freshly allocated solvable id.
func (s *Sack) AddCmdlinePackage(sv pool.Solvable) pool.Id {
	repo, ok := s.pool.Repo("@commandline")
	if !ok {
		repo = s.pool.NewRepo("@commandline")
		repo.UseIncludes = false
	}
	id := repo.AddSolvable(sv)
	s.invalidateConsidered()
	return id
}
