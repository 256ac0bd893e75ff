// Package goal implements the Goal/Solver Driver (spec §4.3, component C6):
// job construction, the solve loop around an internal resolution engine,
// installonly-limit and protected-package enforcement, transaction
// extraction, and problem-description rendering.
package goal

import "github.com/rpmpkg/core/pool"

// JobSelector is a bit set describing what a Job targets and how (spec
// §4.3's `(selector_bits, target_id)` job pairs).
type JobSelector uint32

const (
	Solvable JobSelector = 1 << iota
	SetArch
	SetEVR
	Install
	Erase
	CleanDeps
	Update
	Downgrade
	Distupgrade
	SolvableAll
	MultiVersion
	SolvableProvides
	AllowUninstall
	Verify
	ForceBest
	Weak
	Lock
	Favor
	Disfavor
	UserInstalled
)

// Job is one staged request in a Goal's job queue.
type Job struct {
	Selector JobSelector
	Target   pool.Id
}

// RunFlags controls solve-loop behavior (spec §4.3, "Flags-to-job
// translation").
type RunFlags uint8

const (
	FlagForceBest RunFlags = 1 << iota
	FlagIgnoreWeakDeps
	FlagAllowUninstall
	FlagVerify
)

// Action classifies a transaction item's effect (spec §3, "Transaction
// (plan)").
type Action uint8

const (
	ActionInstall Action = iota
	ActionUpgrade
	ActionUpgraded
	ActionDowngrade
	ActionDowngraded
	ActionReinstall
	ActionObsolete
	ActionObsoleted
	ActionRemove
)

func (a Action) String() string {
	switch a {
	case ActionInstall:
		return "install"
	case ActionUpgrade:
		return "upgrade"
	case ActionUpgraded:
		return "upgraded"
	case ActionDowngrade:
		return "downgrade"
	case ActionDowngraded:
		return "downgraded"
	case ActionReinstall:
		return "reinstall"
	case ActionObsolete:
		return "obsolete"
	case ActionObsoleted:
		return "obsoleted"
	case ActionRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// TransactionItem is one step of a solved plan.
type TransactionItem struct {
	Id     pool.Id
	Action Action
	// Replaces records, for an Upgrade/Downgrade/Obsolete item, the id of the
	// installed solvable it replaces or obsoletes, and for an
	// Upgraded/Downgraded/Obsoleted item, the id of the new solvable that
	// replaces it (NoId if none).
	Replaces pool.Id
}

// Transaction is the ordered plan a successful solve produces.
type Transaction struct {
	Items []TransactionItem
}

// ProblemRuleType classifies why a job or dependency could not be satisfied.
type ProblemRuleType uint8

const (
	ProblemNoCapability ProblemRuleType = iota
	ProblemConflict
	ProblemSameName
	ProblemProtected
)

// ProblemRule is one unsatisfiability rule: `(type, source, target, dep)`
// per spec §4.3's solver contract.
type ProblemRule struct {
	Type   ProblemRuleType
	Source pool.Id
	Target pool.Id
	Dep    pool.Id
}

// Problem is a set of rules jointly responsible for one unsatisfiable job.
type Problem struct {
	Rules []ProblemRule
}

// Reason classifies why a package is present in the final solution (spec
// §4.3, "get_reason").
type Reason uint8

const (
	ReasonUser Reason = iota
	ReasonDep
	ReasonWeakDep
	ReasonClean
)

func (r Reason) String() string {
	switch r {
	case ReasonUser:
		return "user"
	case ReasonDep:
		return "dep"
	case ReasonWeakDep:
		return "weak-dep"
	case ReasonClean:
		return "clean"
	default:
		return "unknown"
	}
}
