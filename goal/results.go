package goal

import (
	"github.com/rpmpkg/core/dependency"
	"github.com/rpmpkg/core/internal/errkind"
	"github.com/rpmpkg/core/pool"
	"github.com/rpmpkg/core/query"
)

// recordReasons fills in Dep/Clean reasons for every transaction item that
// doesn't already carry an explicit User reason from job staging (spec §4.3,
// "get_reason"). Packages pulled in through Recommends are recorded as Dep;
// ReasonWeakDep is never assigned here.
func (g *Goal) recordReasons(txn *Transaction) {
	for _, item := range txn.Items {
		if _, explicit := g.reasons[item.Id]; explicit {
			continue
		}
		switch {
		case g.cleanDeps[item.Id] && item.Action == ActionRemove:
			g.reasons[item.Id] = ReasonClean
		case item.Action == ActionInstall:
			g.reasons[item.Id] = ReasonDep
		default:
			g.reasons[item.Id] = ReasonDep
		}
	}
}

// checkProtectedRemovals implements spec §4.3 step 7: intersect removed
// items with protected ∪ {running kernel}; if non-empty, mark
// removalOfProtected and append a synthetic problem.
func (g *Goal) checkProtectedRemovals(txn *Transaction) {
	protected := g.protectedWithKernel()
	if protected.Empty() {
		return
	}
	var hit []pool.Id
	for _, item := range txn.Items {
		if item.Action != ActionRemove && item.Action != ActionObsoleted {
			continue
		}
		if protected.Contains(item.Id) {
			hit = append(hit, item.Id)
		}
	}
	if len(hit) == 0 {
		return
	}
	g.removalOfProtected = true
	rules := make([]ProblemRule, 0, len(hit))
	for _, id := range hit {
		rules = append(rules, ProblemRule{Type: ProblemProtected, Target: id})
	}
	g.lastProblems = append(g.lastProblems, Problem{Rules: rules})
}

// RemovalOfProtected reports whether the last solve would have removed a
// protected package.
func (g *Goal) RemovalOfProtected() bool { return g.removalOfProtected }

// Transaction returns the last solve's transaction, or nil if unsolved or
// unsatisfiable.
func (g *Goal) Transaction() *Transaction { return g.lastTransaction }

// Problems returns the last solve's problem set.
func (g *Goal) Problems() []Problem { return g.lastProblems }

func (g *Goal) filterAction(actions ...Action) []pool.Id {
	if g.lastTransaction == nil {
		return nil
	}
	want := make(map[Action]bool, len(actions))
	for _, a := range actions {
		want[a] = true
	}
	var out []pool.Id
	for _, item := range g.lastTransaction.Items {
		if want[item.Action] {
			out = append(out, item.Id)
		}
	}
	return out
}

// ListInstalls returns fresh-install transaction items.
func (g *Goal) ListInstalls() []pool.Id { return g.filterAction(ActionInstall) }

// ListUpgrades returns the new-package side of upgrade items.
func (g *Goal) ListUpgrades() []pool.Id { return g.filterAction(ActionUpgrade) }

// ListDowngrades returns the new-package side of downgrade items.
func (g *Goal) ListDowngrades() []pool.Id { return g.filterAction(ActionDowngrade) }

// ListErasures returns explicitly removed items.
func (g *Goal) ListErasures() []pool.Id { return g.filterAction(ActionRemove) }

// ListObsoleted returns installed items obsoleted by a new package.
func (g *Goal) ListObsoleted() []pool.Id { return g.filterAction(ActionObsoleted) }

// ListReinstalls returns reinstall items.
func (g *Goal) ListReinstalls() []pool.Id { return g.filterAction(ActionReinstall) }

// ListObsoletedByPackage returns every installed id the solver recorded as
// obsoleted by pkg.
func (g *Goal) ListObsoletedByPackage(pkg pool.Id) []pool.Id {
	if g.lastTransaction == nil {
		return nil
	}
	var out []pool.Id
	for _, item := range g.lastTransaction.Items {
		if item.Action == ActionObsoleted && item.Replaces == pkg {
			out = append(out, item.Id)
		}
	}
	return out
}

// GetReason returns the recorded reason for pkg, defaulting to User if the
// solver has not run (spec §4.3, "get_reason").
func (g *Goal) GetReason(pkg pool.Id) Reason {
	if g.lastTransaction == nil {
		return ReasonUser
	}
	if r, ok := g.reasons[pkg]; ok {
		return r
	}
	return ReasonUser
}

// CountProblems implements spec §4.3's
// `count_problems = solver_problem_count + (removal_of_protected ≠ ∅ ? 1 : 0)`.
// Note the synthetic protected-removal problem is already appended to
// lastProblems by checkProtectedRemovals, so this is simply len(lastProblems).
func (g *Goal) CountProblems() int { return len(g.lastProblems) }

// HistoryUserInstalledFilter is the seam the transaction history store
// implements: given the full installed package set, return the subset whose
// most recent recorded reason was User (spec §4.4, "filter_user_installed").
type HistoryUserInstalledFilter interface {
	FilterUserInstalled(installed *pool.PackageSet) (*pool.PackageSet, error)
}

type unneededResolver struct {
	goal    *Goal
	history HistoryUserInstalledFilter
}

// NewUnneededResolver returns a query.UnneededResolver backed by g and a
// transaction history store, per spec §4.3's "list_unneeded /
// list_safe_to_remove: construct a throwaway goal marking all
// installed-and-user-installed packages as USERINSTALLED".
func NewUnneededResolver(g *Goal, history HistoryUserInstalledFilter) query.UnneededResolver {
	return &unneededResolver{goal: g, history: history}
}

func (u *unneededResolver) Unneeded(debug bool) (*pool.PackageSet, error) {
	p := u.goal.sack.Pool()
	installed := p.InstalledRepo()
	allInstalled := pool.NewPackageSet()
	if installed != nil {
		for id := installed.Start; id < installed.End; id++ {
			if !p.Solvable(id).IsEmpty() {
				allInstalled.Add(id)
			}
		}
	}
	userInstalled, err := u.history.FilterUserInstalled(allInstalled)
	if err != nil {
		return nil, err
	}
	return u.goal.unneeded(userInstalled, debug)
}

// unneeded stages a throwaway goal marking every id in userInstalled as
// USERINSTALLED, solves, and returns the currently installed ids (i.e. safe
// to remove) that neither the solve keeps nor any user-installed package
// reaches through the Requires of installed packages.
func (g *Goal) unneeded(userInstalled *pool.PackageSet, debug bool) (*pool.PackageSet, error) {
	p := g.sack.Pool()
	installed := p.InstalledRepo()
	out := pool.NewPackageSet()
	if installed == nil {
		return out, nil
	}

	throwaway := New(g.sack)
	for _, id := range userInstalled.ToSlice() {
		throwaway.UserInstalled(id)
	}
	if err := throwaway.Solve(0); err != nil {
		return nil, errkind.Wrap(errkind.Internal, err, "unneeded throwaway solve")
	}
	if len(throwaway.Problems()) > 0 {
		return nil, errkind.New(errkind.NoSolution, "throwaway solve for unneeded computation was unsatisfiable")
	}

	kept := make(map[pool.Id]bool)
	for walk := userInstalled.ToSlice(); len(walk) > 0; walk = walk[1:] {
		if id := walk[0]; !kept[id] {
			kept[id] = true
			for _, reqID := range p.Solvable(id).Requires {
				req := dependency.FromId(p, reqID)
				for dep := installed.Start; dep < installed.End; dep++ {
					if s := p.Solvable(dep); !s.IsEmpty() && (req.Satisfies(p.Str(s.Name), p.Str(s.Evr)) || providesMatches(p, s, req)) {
						walk = append(walk, dep)
					}
				}
			}
		}
	}
	if throwaway.lastTransaction != nil {
		for _, item := range throwaway.lastTransaction.Items {
			if item.Action != ActionRemove {
				kept[item.Id] = true
			}
		}
	}
	for id := installed.Start; id < installed.End; id++ {
		s := p.Solvable(id)
		if s.IsEmpty() {
			continue
		}
		if !kept[id] {
			out.Add(id)
		}
	}
	_ = debug
	return out, nil
}
