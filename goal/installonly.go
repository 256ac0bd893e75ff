package goal

import (
	"github.com/rpmpkg/core/internal/evrcmp"
	"github.com/rpmpkg/core/pool"
)

// installonlyOverflow finds, for each installonly provide-name, the
// solvables present in the final solution at "non-zero level" — i.e. newly
// selected or pre-existing installed survivors — and returns the ids that
// exceed the configured limit once sorted (name asc, non-installed first,
// EVR asc) and the top `limit` are kept per spec §4.3 step 5.
func (g *Goal) installonlyOverflow(txn *Transaction, limit uint32) []pool.Id {
	p := g.sack.Pool()
	present := make(map[pool.Id]bool)
	removed := make(map[pool.Id]bool)
	for _, item := range txn.Items {
		if item.Action == ActionRemove || item.Action == ActionObsoleted || item.Action == ActionUpgraded || item.Action == ActionDowngraded {
			removed[item.Id] = true
			continue
		}
		present[item.Id] = true
	}
	if installed := p.InstalledRepo(); installed != nil {
		for id := installed.Start; id < installed.End; id++ {
			s := p.Solvable(id)
			if s.IsEmpty() || removed[id] {
				continue
			}
			present[id] = true
		}
	}

	byName := make(map[string][]pool.Id)
	for id := range present {
		name := p.Str(p.Solvable(id).Name)
		if g.sack.IsInstallonly(name) {
			byName[name] = append(byName[name], id)
		}
	}

	var overflow []pool.Id
	for _, ids := range byName {
		if uint32(len(ids)) <= limit {
			continue
		}
		sortInstallonly(p, ids)
		overflow = append(overflow, ids[limit:]...)
	}
	return overflow
}

// sortInstallonly orders non-installed candidates before solvables still in
// the installed repo, and within each group ascending by EVR, then by id.
func sortInstallonly(p *pool.Pool, ids []pool.Id) {
	installed := p.InstalledRepo()
	for i := 1; i < len(ids); i++ {
		j := i
		for j > 0 && installonlyLess(p, installed, ids[j], ids[j-1]) {
			ids[j-1], ids[j] = ids[j], ids[j-1]
			j--
		}
	}
}

func installonlyLess(p *pool.Pool, installed *pool.Repo, a, b pool.Id) bool {
	sa, sb := p.Solvable(a), p.Solvable(b)
	aInstalled := installed != nil && sa.Repo == installed
	bInstalled := installed != nil && sb.Repo == installed
	if aInstalled != bInstalled {
		return bInstalled
	}
	c := evrcmp.CompareStrings(p.Str(sa.Evr), p.Str(sb.Evr))
	if c != 0 {
		return c < 0
	}
	return a < b
}

// solveOnceWithErasures re-solves with explicit erase jobs staged for every
// id in overflow (AllowUninstall semantics), keeping the original staging
// intact for the retry.
func (g *Goal) solveOnceWithErasures(considered *pool.PackageSet, weak bool, overflow []pool.Id, limit uint32) (*Transaction, []Problem) {
	saved := g.staging
	defer func() { g.staging = saved }()

	extra := make([]Job, 0, len(overflow))
	for _, id := range overflow {
		extra = append(extra, Job{Selector: Solvable | Erase, Target: id})
	}
	g.staging = append(append([]Job{}, saved...), extra...)
	return g.solveOnce(considered, weak)
}
