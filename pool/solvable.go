package pool

// Solvable is the catalogue record for one package version in one repo (spec
// §3). Dependency fields are ordered id slices: insertion order is
// observable (e.g. requires marker position) so callers must append, never
// reorder, them.
type Solvable struct {
	Name Id
	Evr  Id
	Arch Id
	Repo *Repo

	Provides    []Id
	Requires    []Id
	Conflicts   []Id
	Obsoletes   []Id
	Recommends  []Id
	Suggests    []Id
	Supplements []Id
	Enhances    []Id
	Prereq      []Id

	// Location is the repo-relative path to the package, matched exactly by
	// the Location filter.
	Location string
	// SourceRPM is the name of the srpm this binary package was built from.
	SourceRPM string
	// BuildTime is a unix timestamp, used by filter_recent.
	BuildTime int64
	// HeaderHash is the package's header checksum, fed into the system
	// fingerprint algorithm (spec §6).
	HeaderHash string
}

// IsEmpty reports whether the solvable slot is unpopulated (a hole left by
// a removal, or never assigned).
func (s Solvable) IsEmpty() bool {
	return s.Name == NoId
}

// Repo is a named collection of solvables in one pool (spec §3). Solvable ids
// within a repo are contiguous: [Start, End).
type Repo struct {
	Name        string
	Priority    int32
	Disabled    bool
	UseIncludes bool
	Installed   bool

	Start Id
	End   Id

	pool *Pool

	// Checksum is the most recently loaded metadata checksum for this repo,
	// compared against a cache file's trailing checksum (spec §9.7).
	Checksum string
}

// Contains reports whether id falls within this repo's contiguous range.
func (r *Repo) Contains(id Id) bool {
	return id >= r.Start && id < r.End
}

// Size returns the number of solvable slots currently allocated to this repo,
// including any that were later removed (holes).
func (r *Repo) Size() int {
	return int(r.End - r.Start)
}

// AddSolvable appends a solvable to this repo's contiguous range, returning
// the freshly allocated id. Repos must not interleave solvables from other
// repos between calls, preserving the spec's contiguity invariant.
func (r *Repo) AddSolvable(s Solvable) Id {
	s.Repo = r
	id := r.pool.AddSolvable(s)
	if r.Start == r.End {
		r.Start = id
	}
	r.End = id + 1
	return id
}

// Solvables returns the slice of solvables belonging to this repo.
func (r *Repo) Solvables() []Solvable {
	all := r.pool.Solvables()
	if int(r.End) > len(all) {
		return nil
	}
	return all[r.Start:r.End]
}

// NEVRA renders "name-[epoch:]version-release.arch" for a solvable, using p
// to resolve its interned ids.
func (p *Pool) NEVRA(id Id) string {
	s := p.Solvable(id)
	if s.IsEmpty() {
		return ""
	}
	return p.Str(s.Name) + "-" + p.Str(s.Evr) + "." + p.Str(s.Arch)
}
