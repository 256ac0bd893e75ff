package goal

import (
	"github.com/rpmpkg/core/internal/errkind"
	"github.com/rpmpkg/core/internal/evrcmp"
	"github.com/rpmpkg/core/pool"
	"github.com/rpmpkg/core/sack"
	"github.com/rpmpkg/core/selector"
)

// Goal carries (sack, staging, actions_mask, protected, protect_running_kernel,
// last_solver results) per spec §3, "Goal".
type Goal struct {
	sack    *sack.Sack
	staging []Job

	protected            *pool.PackageSet
	protectRunningKernel bool

	favor    map[pool.Id]bool
	disfavor map[pool.Id]bool
	locked   map[pool.Id]bool

	lastTransaction    *Transaction
	lastProblems       []Problem
	removalOfProtected bool
	reasons            map[pool.Id]Reason
	cleanDeps          map[pool.Id]bool
}

// New returns an empty Goal over s.
func New(s *sack.Sack) *Goal {
	return &Goal{
		sack:      s,
		protected: pool.NewPackageSet(),
		favor:     make(map[pool.Id]bool),
		disfavor:  make(map[pool.Id]bool),
		locked:    make(map[pool.Id]bool),
		reasons:   make(map[pool.Id]Reason),
		cleanDeps: make(map[pool.Id]bool),
	}
}

// SetProtected replaces the protected-packages set.
func (g *Goal) SetProtected(set *pool.PackageSet) { g.protected = set.Clone() }

// SetProtectRunningKernel toggles whether the booted kernel is implicitly
// protected.
func (g *Goal) SetProtectRunningKernel(v bool) { g.protectRunningKernel = v }

// Install stages an install job for a specific solvable.
func (g *Goal) Install(id pool.Id) {
	g.staging = append(g.staging, Job{Selector: Solvable | SetArch | SetEVR | Install, Target: id})
	g.reasons[id] = ReasonUser
}

// InstallSelector stages install jobs for every id the selector resolves to.
// An empty selector is a BadSelector error (spec §4.3).
func (g *Goal) InstallSelector(sel *selector.Selector) error {
	ids, err := sel.Resolve()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return errkind.New(errkind.BadSelector, "selector matched no packages")
	}
	for _, id := range ids {
		g.Install(id)
	}
	return nil
}

// Erase stages a removal job. With cleanDeps the job carries CleanDeps and
// the erased package gets ReasonClean; the solve removes only id itself, and
// dependencies that the removal leaves orphaned are not removed.
func (g *Goal) Erase(id pool.Id, cleanDeps bool) {
	sel := Solvable | Erase
	if cleanDeps {
		sel |= CleanDeps
		g.cleanDeps[id] = true
	}
	g.staging = append(g.staging, Job{Selector: sel, Target: id})
}

// Upgrade stages an upgrade job for id itself: at solve time id is selected
// as given and compared by EVR with the installed package of the same name
// (upgrade, downgrade or reinstall); no other candidate of that name is
// looked up.
func (g *Goal) Upgrade(id pool.Id) {
	g.staging = append(g.staging, Job{Selector: Solvable | Update, Target: id})
}

// UpgradeTo stages an upgrade job pinned to a specific target solvable.
func (g *Goal) UpgradeTo(id pool.Id) {
	g.staging = append(g.staging, Job{Selector: Solvable | SetEVR | Update, Target: id})
}

// UpgradeSelector stages upgrade jobs for every id a selector resolves to.
func (g *Goal) UpgradeSelector(sel *selector.Selector) error {
	ids, err := sel.Resolve()
	if err != nil {
		return err
	}
	for _, id := range ids {
		g.Upgrade(id)
	}
	return nil
}

// DowngradeTo stages a downgrade job pinned to a specific target solvable.
func (g *Goal) DowngradeTo(id pool.Id) {
	g.staging = append(g.staging, Job{Selector: Solvable | SetEVR | Downgrade, Target: id})
}

// Distupgrade stages a distupgrade job for id itself: at solve time id is
// selected as given and compared by EVR with the installed package of the
// same name (upgrade, downgrade or reinstall); no other candidate of that
// name is looked up.
func (g *Goal) Distupgrade(id pool.Id) {
	g.staging = append(g.staging, Job{Selector: Solvable | Distupgrade, Target: id})
}

// DistupgradeSelector stages distupgrade jobs for a selector's matches.
func (g *Goal) DistupgradeSelector(sel *selector.Selector) error {
	ids, err := sel.Resolve()
	if err != nil {
		return err
	}
	for _, id := range ids {
		g.Distupgrade(id)
	}
	return nil
}

// UpgradeAll stages a single blanket upgrade-everything job.
func (g *Goal) UpgradeAll() {
	g.staging = append(g.staging, Job{Selector: Update | SolvableAll})
}

// DistupgradeAll stages a single blanket distupgrade-everything job.
func (g *Goal) DistupgradeAll() {
	g.staging = append(g.staging, Job{Selector: Distupgrade | SolvableAll})
}

// UserInstalled marks ids as user-installed for the next solve's reason
// bookkeeping.
func (g *Goal) UserInstalled(ids ...pool.Id) {
	for _, id := range ids {
		g.staging = append(g.staging, Job{Selector: Solvable | UserInstalled, Target: id})
		g.reasons[id] = ReasonUser
	}
}

// Lock keeps jobs from selecting id: install, upgrade, downgrade and
// distupgrade jobs whose target is id are skipped, and UpgradeAll/
// DistupgradeAll leave an installed id alone. Erase jobs for id, and jobs
// targeting another solvable of the same name, are not blocked.
func (g *Goal) Lock(id pool.Id) { g.locked[id] = true }

// Favor biases candidate selection toward id when multiple candidates
// satisfy the same requirement.
func (g *Goal) Favor(id pool.Id) { g.favor[id] = true }

// Disfavor biases candidate selection away from id.
func (g *Goal) Disfavor(id pool.Id) { g.disfavor[id] = true }

// Verify stages a single verify-mode job (spec §4.3).
func (g *Goal) Verify() {
	g.staging = append(g.staging, Job{Selector: Verify | SolvableAll})
}

// protectedWithKernel returns the effective protected set, including the
// running kernel when configured.
func (g *Goal) protectedWithKernel() *pool.PackageSet {
	set := g.protected.Clone()
	if g.protectRunningKernel {
		if kid, err := g.sack.RunningKernel(); err == nil && kid != pool.NoId {
			set.Add(kid)
		}
	}
	return set
}

// Solve runs the solve loop of spec §4.3: recompute considered, run the
// internal resolver, enforce the installonly limit with a re-solve under
// AllowUninstall if needed, build the transaction, and check for protected
// packages among the removals.
func (g *Goal) Solve(flags RunFlags) error {
	considered := g.sack.Considered()
	g.sack.MakeProvidesReady()

	g.lastTransaction = nil
	g.lastProblems = nil
	g.removalOfProtected = false

	weak := flags&FlagIgnoreWeakDeps != 0
	txn, problems := g.solveOnce(considered, weak)

	if len(problems) > 0 {
		g.lastProblems = problems
		return nil
	}

	if limit := g.sack.InstallonlyLimit(); limit > 0 {
		if over := g.installonlyOverflow(txn, limit); len(over) > 0 {
			retxn, reproblems := g.solveOnceWithErasures(considered, weak, over, limit)
			if len(reproblems) == 0 {
				txn = retxn
			} else {
				g.lastProblems = reproblems
				return nil
			}
		}
	}

	g.lastTransaction = txn
	g.recordReasons(txn)
	g.checkProtectedRemovals(txn)
	return nil
}

func (g *Goal) solveOnce(considered *pool.PackageSet, weak bool) (*Transaction, []Problem) {
	p := g.sack.Pool()
	r := newResolver(p, considered, weak)
	r.favor, r.disfavor, r.locked = g.favor, g.disfavor, g.locked

	var queue []pool.Id
	for _, job := range g.staging {
		g.applyJob(r, job, &queue)
	}
	r.resolveRequires(queue)
	return r.transaction(), r.problems
}

// applyJob stages one job's effect on the resolver. FlagAllowUninstall has
// no code path at all: the greedy resolver never refuses to remove a
// conflicting package in the first place, and the installonly-limit re-solve
// in Solve stages its erase jobs whether or not the flag is set.
func (g *Goal) applyJob(r *resolver, job Job, queue *[]pool.Id) {
	switch {
	case job.Selector&Erase != 0:
		r.selectErase(job.Target)
	case job.Selector&SolvableAll != 0:
		g.applyBlanketJob(r, job, queue)
	case job.Selector&Install != 0 || job.Selector&Update != 0 || job.Selector&Downgrade != 0 || job.Selector&Distupgrade != 0:
		if r.locked[job.Target] {
			return
		}
		r.selectInstall(job.Target, queue)
	}
}

// applyBlanketJob implements upgrade_all/distupgrade_all: every installed
// package with a strictly better considered candidate is staged as an
// upgrade (distupgrade additionally allows downgrades).
func (g *Goal) applyBlanketJob(r *resolver, job Job, queue *[]pool.Id) {
	installed := r.installed
	if installed == nil {
		return
	}
	p := g.sack.Pool()
	allowDowngrade := job.Selector&Distupgrade != 0

	for id := installed.Start; id < installed.End; id++ {
		s := p.Solvable(id)
		if s.IsEmpty() || r.locked[id] {
			continue
		}
		name := p.Str(s.Name)
		var best pool.Id
		found := false
		for _, cid := range r.byName[name] {
			cs := p.Solvable(cid)
			if cs.Repo == installed || !archCompatible(p, s, cs) {
				continue
			}
			if !found || r.better(cid, best) {
				best, found = cid, true
			}
		}
		if !found {
			continue
		}
		c := evrcmp.CompareStrings(p.Str(p.Solvable(best).Evr), p.Str(s.Evr))
		if c > 0 || (allowDowngrade && c < 0) {
			r.selectInstall(best, queue)
		}
	}
}
