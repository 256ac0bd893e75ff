package goal

import (
	"github.com/rpmpkg/core/dependency"
	"github.com/rpmpkg/core/internal/evrcmp"
	"github.com/rpmpkg/core/pool"
)

// resolver is the internal engine behind the Solver contract of spec §4.3:
// given a pool, a considered package set, and a job queue, it produces
// either a Transaction or a set of Problems. It resolves jobs and their
// transitive Requires greedily, but checks the resulting set for real
// Conflicts hits and backtracks: a resolver-chosen candidate (as opposed to
// a directly requested job target) that turns out to conflict gets excluded
// and a new provider is picked, up to maxBacktrackAttempts. A conflict
// between two packages the caller explicitly asked for is not retriable and
// is reported as a Problem instead of arbitrarily guessed at.
//
// Stylistically grounded on the teacher's solver.go selection-stack /
// unselected-queue shape, narrowed to RPM's simpler (no semver-range
// constraint) dependency model. The backtracking loop (resolveRequires,
// excludableConflict, resolverSnapshot) is adapted from pubgrub-go's
// state.go propagate/resolveIncompatibility retry cycle: see DESIGN.md's
// goal section for why a direct import of github.com/contriboss/pubgrub-go
// wasn't viable and what was ported from it instead.
type resolver struct {
	p          *pool.Pool
	considered *pool.PackageSet
	installed  *pool.Repo

	favor    map[pool.Id]bool
	disfavor map[pool.Id]bool
	locked   map[pool.Id]bool
	weak     bool // strip WEAK jobs / ignore recommends-suggests pulls

	selected map[pool.Id]*TransactionItem
	removed  map[pool.Id]bool
	problems []Problem

	// excluded holds resolver-chosen candidates ruled out by a prior
	// backtrack attempt (resolveRequires), so findProvider picks the
	// next-best alternative instead of repeating the same conflict.
	excluded map[pool.Id]bool

	byName map[string][]pool.Id
}

func newResolver(p *pool.Pool, considered *pool.PackageSet, weak bool) *resolver {
	r := &resolver{
		p:          p,
		considered: considered,
		installed:  p.InstalledRepo(),
		favor:      make(map[pool.Id]bool),
		disfavor:   make(map[pool.Id]bool),
		locked:     make(map[pool.Id]bool),
		weak:       weak,
		selected:   make(map[pool.Id]*TransactionItem),
		removed:    make(map[pool.Id]bool),
		excluded:   make(map[pool.Id]bool),
		byName:     make(map[string][]pool.Id),
	}
	for _, id := range considered.ToSlice() {
		name := p.Str(p.Solvable(id).Name)
		r.byName[name] = append(r.byName[name], id)
	}
	return r
}

func (r *resolver) installedId(name string) (pool.Id, bool) {
	if r.installed == nil {
		return pool.NoId, false
	}
	for id := r.installed.Start; id < r.installed.End; id++ {
		s := r.p.Solvable(id)
		if !s.IsEmpty() && r.p.Str(s.Name) == name {
			return id, true
		}
	}
	return pool.NoId, false
}

// better reports whether a outranks b for "best provider" selection:
// favored first, then not-disfavored over disfavored, then higher repo
// priority, then higher EVR, then higher id.
func (r *resolver) better(a, b pool.Id) bool {
	if r.favor[a] != r.favor[b] {
		return r.favor[a]
	}
	if r.disfavor[a] != r.disfavor[b] {
		return !r.disfavor[a]
	}
	sa, sb := r.p.Solvable(a), r.p.Solvable(b)
	pa, pb := int32(0), int32(0)
	if sa.Repo != nil {
		pa = sa.Repo.Priority
	}
	if sb.Repo != nil {
		pb = sb.Repo.Priority
	}
	if pa != pb {
		return pa > pb
	}
	c := evrcmp.CompareStrings(r.p.Str(sa.Evr), r.p.Str(sb.Evr))
	if c != 0 {
		return c > 0
	}
	return a > b
}

func archCompatible(p *pool.Pool, a, b pool.Solvable) bool {
	aa, ba := p.Str(a.Arch), p.Str(b.Arch)
	return aa == ba || aa == "noarch" || ba == "noarch"
}

// selectInstall resolves target for direct installation: computes its
// relationship to any already-installed same-name package (reinstall,
// upgrade, downgrade, obsolete, or fresh install), records the
// TransactionItems, and enqueues target's Requires for closure resolution.
func (r *resolver) selectInstall(target pool.Id, queue *[]pool.Id) {
	if _, done := r.selected[target]; done || r.removed[target] {
		return
	}
	s := r.p.Solvable(target)
	name := r.p.Str(s.Name)

	if existingID, ok := r.installedId(name); ok && archCompatible(r.p, s, r.p.Solvable(existingID)) {
		if existingID == target {
			r.selected[target] = &TransactionItem{Id: target, Action: ActionReinstall}
			*queue = append(*queue, target)
			return
		}
		c := evrcmp.CompareStrings(r.p.Str(s.Evr), r.p.Str(r.p.Solvable(existingID).Evr))
		switch {
		case c > 0:
			r.selected[target] = &TransactionItem{Id: target, Action: ActionUpgrade, Replaces: existingID}
			r.selected[existingID] = &TransactionItem{Id: existingID, Action: ActionUpgraded, Replaces: target}
		case c < 0:
			r.selected[target] = &TransactionItem{Id: target, Action: ActionDowngrade, Replaces: existingID}
			r.selected[existingID] = &TransactionItem{Id: existingID, Action: ActionDowngraded, Replaces: target}
		default:
			r.selected[target] = &TransactionItem{Id: target, Action: ActionReinstall}
		}
	} else {
		r.selected[target] = &TransactionItem{Id: target, Action: ActionInstall}
	}

	r.applyObsoletes(target)
	*queue = append(*queue, target)
}

// applyObsoletes marks any installed solvable target's Obsoletes list
// matches as Obsoleted, upgrading target's own action to Obsolete.
func (r *resolver) applyObsoletes(target pool.Id) {
	if r.installed == nil || len(r.p.Solvable(target).Obsoletes) == 0 {
		return
	}
	for id := r.installed.Start; id < r.installed.End; id++ {
		s := r.p.Solvable(id)
		if s.IsEmpty() || r.removed[id] {
			continue
		}
		for _, obsID := range r.p.Solvable(target).Obsoletes {
			rd := dependency.FromId(r.p, obsID)
			if rd.Satisfies(r.p.Str(s.Name), r.p.Str(s.Evr)) {
				r.selected[id] = &TransactionItem{Id: id, Action: ActionObsoleted, Replaces: target}
				if item, ok := r.selected[target]; ok {
					item.Action = ActionObsolete
					item.Replaces = id
				}
				break
			}
		}
	}
}

// selectErase marks target (and, if cleanDeps, its installed-only orphaned
// requires — not walked here for simplicity) for removal.
func (r *resolver) selectErase(target pool.Id) {
	if r.removed[target] {
		return
	}
	r.removed[target] = true
	delete(r.selected, target)
	r.selected[target] = &TransactionItem{Id: target, Action: ActionRemove}
}

// maxBacktrackAttempts bounds how many times resolveRequires will undo a
// resolver-chosen (as opposed to user-requested) package and retry with its
// next-best alternative after a conflict. Modelled on pubgrub-go's
// conflict-driven retry loop (state.go's propagate/resolveIncompatibility
// cycle), simplified from learned-clause backtracking to exclusion-and-retry
// since this resolver predates full incompatibility tracking.
const maxBacktrackAttempts = 8

// resolverSnapshot captures resolver state before an attempt, so a failed
// attempt can be undone and retried with a different choice.
type resolverSnapshot struct {
	selected map[pool.Id]TransactionItem
	removed  map[pool.Id]bool
}

func (r *resolver) snapshot() resolverSnapshot {
	sel := make(map[pool.Id]TransactionItem, len(r.selected))
	for id, item := range r.selected {
		sel[id] = *item
	}
	rem := make(map[pool.Id]bool, len(r.removed))
	for id, v := range r.removed {
		rem[id] = v
	}
	return resolverSnapshot{selected: sel, removed: rem}
}

func (r *resolver) restore(snap resolverSnapshot) {
	r.selected = make(map[pool.Id]*TransactionItem, len(snap.selected))
	for id, item := range snap.selected {
		v := item
		r.selected[id] = &v
	}
	r.removed = make(map[pool.Id]bool, len(snap.removed))
	for id, v := range snap.removed {
		r.removed[id] = v
	}
}

// resolveRequires drives resolution to a fixed point, backtracking on real
// conflicts: it resolves the transitive Requires/Recommends closure, checks
// the resulting package set for Conflicts hits (spec.md:3), and — if the
// conflicting package was one this resolver chose itself rather than a
// direct job target — excludes that candidate and retries with the
// next-best alternative, up to maxBacktrackAttempts. A conflict between two
// packages the caller explicitly requested (or that are already installed)
// is not retriable and surfaces as a genuine Problem.
func (r *resolver) resolveRequires(queue []pool.Id) {
	snap := r.snapshot()
	for attempt := 0; ; attempt++ {
		r.problems = nil
		r.resolveOnce(append([]pool.Id(nil), queue...))
		culprit, retriable := r.excludableConflict(snap)
		if !retriable || attempt >= maxBacktrackAttempts {
			return
		}
		r.excluded[culprit] = true
		r.restore(snap)
	}
}

// excludableConflict inspects the problems resolveOnce just raised for a
// ProblemConflict whose Source or Target was not part of the pre-attempt
// snapshot — i.e. a package this resolver pulled in on its own, which can be
// swapped for an alternative — and returns it as the backtrack target.
func (r *resolver) excludableConflict(snap resolverSnapshot) (pool.Id, bool) {
	for _, p := range r.problems {
		for _, rule := range p.Rules {
			if rule.Type != ProblemConflict {
				continue
			}
			if _, wasDirect := snap.selected[rule.Target]; !wasDirect && !r.excluded[rule.Target] {
				return rule.Target, true
			}
			if _, wasDirect := snap.selected[rule.Source]; !wasDirect && !r.excluded[rule.Source] {
				return rule.Source, true
			}
		}
	}
	return pool.NoId, false
}

// resolveOnce walks the transitive Requires closure of every id in queue,
// selecting a provider for each and recursing, until the queue is exhausted
// or no further progress is possible, then checks the resulting set for
// conflicts. One attempt of resolveRequires's backtracking loop.
func (r *resolver) resolveOnce(queue []pool.Id) {
	visited := make(map[pool.Id]bool)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		s := r.p.Solvable(id)
		for _, reqID := range s.Requires {
			req := dependency.FromId(r.p, reqID)
			if r.satisfiedByInstalledOrSelected(req) {
				continue
			}
			provider, ok := r.findProvider(req)
			if !ok {
				r.problems = append(r.problems, Problem{Rules: []ProblemRule{{
					Type: ProblemNoCapability, Source: id, Dep: reqID,
				}}})
				continue
			}
			r.selectInstall(provider, &queue)
		}

		if r.weak {
			continue
		}
		for _, recID := range s.Recommends {
			req := dependency.FromId(r.p, recID)
			if r.satisfiedByInstalledOrSelected(req) {
				continue
			}
			if provider, ok := r.findProvider(req); ok {
				r.selectInstall(provider, &queue)
			}
		}
	}

	r.checkConflicts()
}

// finalPackages returns every id that would be present once the resolved
// transaction applies: newly selected items that aren't themselves being
// removed, obsoleted, or replaced by their own upgrade/downgrade, plus
// untouched installed packages.
func (r *resolver) finalPackages() []pool.Id {
	var out []pool.Id
	for id, item := range r.selected {
		switch item.Action {
		case ActionRemove, ActionObsoleted, ActionUpgraded, ActionDowngraded:
			continue
		}
		out = append(out, id)
	}
	if r.installed != nil {
		for id := r.installed.Start; id < r.installed.End; id++ {
			if r.removed[id] {
				continue
			}
			if _, done := r.selected[id]; done {
				continue
			}
			s := r.p.Solvable(id)
			if s.IsEmpty() {
				continue
			}
			out = append(out, id)
		}
	}
	return out
}

// checkConflicts scans every package that would remain in the final set for
// a Conflicts entry satisfied by another package in that same set, raising a
// real ProblemConflict rule per hit (spec.md:3: the solver "respects
// dependencies, obsoletes, conflicts, and installonly policy").
func (r *resolver) checkConflicts() {
	final := r.finalPackages()
	for _, a := range final {
		sa := r.p.Solvable(a)
		for _, confID := range sa.Conflicts {
			rd := dependency.FromId(r.p, confID)
			for _, b := range final {
				if b == a {
					continue
				}
				sb := r.p.Solvable(b)
				if rd.Satisfies(r.p.Str(sb.Name), r.p.Str(sb.Evr)) || providesMatches(r.p, sb, rd) {
					r.problems = append(r.problems, Problem{Rules: []ProblemRule{{
						Type: ProblemConflict, Source: a, Target: b, Dep: confID,
					}}})
				}
			}
		}
	}
}

func (r *resolver) satisfiedByInstalledOrSelected(req dependency.Reldep) bool {
	for id := range r.selected {
		if r.removed[id] {
			continue
		}
		s := r.p.Solvable(id)
		if req.Satisfies(r.p.Str(s.Name), r.p.Str(s.Evr)) {
			return true
		}
		if providesMatches(r.p, s, req) {
			return true
		}
	}
	if r.installed != nil {
		for id := r.installed.Start; id < r.installed.End; id++ {
			if r.removed[id] {
				continue
			}
			s := r.p.Solvable(id)
			if s.IsEmpty() {
				continue
			}
			if req.Satisfies(r.p.Str(s.Name), r.p.Str(s.Evr)) || providesMatches(r.p, s, req) {
				return true
			}
		}
	}
	return false
}

func providesMatches(p *pool.Pool, s pool.Solvable, req dependency.Reldep) bool {
	for _, provID := range s.Provides {
		prov := dependency.FromId(p, provID)
		if req.Satisfies(prov.Name(), prov.EVR()) {
			return true
		}
	}
	return false
}

// findProvider returns the best considered candidate satisfying req, via
// the package's own name/evr or its explicit Provides list.
func (r *resolver) findProvider(req dependency.Reldep) (pool.Id, bool) {
	var best pool.Id
	found := false
	for _, ids := range r.byName {
		for _, id := range ids {
			if r.excluded[id] {
				continue
			}
			s := r.p.Solvable(id)
			if req.Satisfies(r.p.Str(s.Name), r.p.Str(s.Evr)) || providesMatches(r.p, s, req) {
				if !found || r.better(id, best) {
					best, found = id, true
				}
			}
		}
	}
	return best, found
}

// transaction renders the accumulated selection into an ordered Transaction,
// sorted by id for determinism.
func (r *resolver) transaction() *Transaction {
	ids := make([]pool.Id, 0, len(r.selected))
	for id := range r.selected {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		j := i
		for j > 0 && ids[j-1] > ids[j] {
			ids[j-1], ids[j] = ids[j], ids[j-1]
			j--
		}
	}
	items := make([]TransactionItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, *r.selected[id])
	}
	return &Transaction{Items: items}
}
