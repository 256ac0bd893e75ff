// Package query implements the Query Engine (spec §4.2, component C4): a
// composable filter pipeline over a Sack's solvables, plus the selection
// semantics (latest, duplicated, extras, upgradable, advisory-applicable)
// used throughout the Goal/Selector layers.
package query

import (
	"github.com/rpmpkg/core/pool"
)

// KeyName selects the attribute or derived predicate a Filter matches on.
type KeyName uint8

const (
	Name KeyName = iota
	Epoch
	EVR
	Version
	Release
	Arch
	Nevra
	NevraStrict
	Sourcerpm
	Provides
	Requires
	Conflicts
	Obsoletes
	Recommends
	Suggests
	Supplements
	Enhances
	File
	Reponame
	Location
	Latest
	LatestPerArch
	Upgradable
	Downgradable
	Upgrades
	Downgrades
	UpgradesByPriority
	ObsoletesByPriority
	AdvisoryKey
	AdvisoryBug
	AdvisoryCVE
	AdvisoryType
	AdvisorySeverity
	Empty
	Pkg
)

// CmpType is a bit set of comparison flags.
type CmpType uint16

const (
	EQ CmpType = 1 << iota
	LT
	GT
	SUBSTR
	GLOB
	ICASE
	NOT
)

// MatchType tags the homogeneous payload a Filter carries.
type MatchType uint8

const (
	MatchNum MatchType = iota
	MatchStr
	MatchPkg
	MatchReldep
)

// Filter is one predicate in a Query's pipeline (spec §3, "Query").
type Filter struct {
	Key       KeyName
	Cmp       CmpType
	MatchType MatchType

	NumMatches    []int64
	StrMatches    []string
	PkgMatches    *pool.PackageSet
	ReldepMatches []pool.Id
}

// Flags controls how a Query's excludes overlay interacts with the sack's
// configured excludes (spec §4.2).
type Flags uint8

const (
	ApplyExcludes Flags = 1 << iota
	IgnoreExcludes
	IgnoreRegularExcludes
	IgnoreModularExcludes
)
