package query

import (
	"strings"

	"github.com/rpmpkg/core/dependency"
	"github.com/rpmpkg/core/internal/errkind"
	"github.com/rpmpkg/core/internal/evrcmp"
	"github.com/rpmpkg/core/pool"
	"github.com/rpmpkg/core/sack"
)

// evalFilter computes the bitmap `m` a single filter contributes, to be
// intersected with (or subtracted from, under NOT) the running result
// per spec §4.2's evaluation model.
func evalFilter(q *Query, f Filter) (*pool.PackageSet, error) {
	p := q.sack.Pool()
	switch f.Key {
	case Name:
		return matchString(p, f, func(s pool.Solvable) string { return p.Str(s.Name) })
	case Sourcerpm:
		return matchString(p, f, func(s pool.Solvable) string { return s.SourceRPM })
	case Location:
		return matchString(p, f, func(s pool.Solvable) string { return s.Location })
	case Arch:
		return matchString(p, f, func(s pool.Solvable) string { return p.Str(s.Arch) })

	case Epoch:
		return matchNum(p, f, func(s pool.Solvable) int64 { return int64(evrcmp.Parse(p.Str(s.Evr)).Epoch) })
	case Version:
		return matchEvrSegment(p, f, func(e evrcmp.EVR) string { return e.Version })
	case Release:
		return matchEvrSegment(p, f, func(e evrcmp.EVR) string { return e.Release })
	case EVR:
		return matchEvrCompare(p, f)

	case Nevra:
		return matchNevra(p, f, false)
	case NevraStrict:
		return matchNevra(p, f, true)

	case Provides:
		return matchReldepList(q, f, func(s pool.Solvable) []pool.Id { return s.Provides })
	case Requires:
		return matchReldepList(q, f, func(s pool.Solvable) []pool.Id { return s.Requires })
	case Conflicts:
		return matchReldepList(q, f, func(s pool.Solvable) []pool.Id { return s.Conflicts })
	case Obsoletes:
		return matchReldepList(q, f, func(s pool.Solvable) []pool.Id { return s.Obsoletes })
	case Recommends:
		return matchReldepList(q, f, func(s pool.Solvable) []pool.Id { return s.Recommends })
	case Suggests:
		return matchReldepList(q, f, func(s pool.Solvable) []pool.Id { return s.Suggests })
	case Supplements:
		return matchReldepList(q, f, func(s pool.Solvable) []pool.Id { return s.Supplements })
	case Enhances:
		return matchReldepList(q, f, func(s pool.Solvable) []pool.Id { return s.Enhances })

	case File:
		return matchFile(q, f)

	case Reponame:
		return matchReponame(q, f)

	case Latest:
		return latestFilter(q, f, false)
	case LatestPerArch:
		return latestFilter(q, f, true)

	case Upgradable:
		return upgradableFilter(q, false)
	case Downgradable:
		return upgradableFilter(q, true)
	case Upgrades:
		return upgradesFilter(q, false)
	case Downgrades:
		return upgradesFilter(q, true)
	case UpgradesByPriority:
		return byPriorityFilter(q, false)
	case ObsoletesByPriority:
		return byPriorityFilter(q, true)

	case AdvisoryKey, AdvisoryBug, AdvisoryCVE, AdvisoryType, AdvisorySeverity:
		return advisoryFilter(q, f)

	case Empty:
		return pool.NewPackageSet(), nil

	case Pkg:
		return f.PkgMatches.Clone(), nil

	default:
		return nil, errkind.New(errkind.BadQuery, "unsupported filter key")
	}
}

// forEachCandidate applies fn to every solvable id in q's base search space
// (pkg solvables ∩ considered, per the exclude flags), skipping holes.
func forEachCandidate(q *Query, fn func(id pool.Id, s pool.Solvable)) {
	space := q.baseResult()
	for _, id := range space.ToSlice() {
		s := q.sack.Pool().Solvable(id)
		if s.IsEmpty() {
			continue
		}
		fn(id, s)
	}
}

func stringMatches(cmp CmpType, candidate string, matches []string) bool {
	for _, m := range matches {
		c, v := candidate, m
		if cmp&ICASE != 0 {
			c, v = strings.ToLower(c), strings.ToLower(v)
		}
		switch {
		case cmp&GLOB != 0:
			if globMatch(v, c) {
				return true
			}
		case cmp&SUBSTR != 0:
			if strings.Contains(c, v) {
				return true
			}
		default:
			if c == v {
				return true
			}
		}
	}
	return false
}

// globMatch implements shell-style fnmatch with `*` and `?` wildcards, the
// subset used throughout the source's NEVRA/name glob filters.
func globMatch(pattern, s string) bool {
	return globMatchRunes([]rune(pattern), []rune(s))
}

func globMatchRunes(pat, s []rune) bool {
	for len(pat) > 0 {
		switch pat[0] {
		case '*':
			for len(pat) > 0 && pat[0] == '*' {
				pat = pat[1:]
			}
			if len(pat) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if globMatchRunes(pat, s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			pat, s = pat[1:], s[1:]
		default:
			if len(s) == 0 || s[0] != pat[0] {
				return false
			}
			pat, s = pat[1:], s[1:]
		}
	}
	return len(s) == 0
}

func matchString(p *pool.Pool, f Filter, field func(pool.Solvable) string) (*pool.PackageSet, error) {
	out := pool.NewPackageSet()
	for id, s := range p.Solvables() {
		if s.IsEmpty() {
			continue
		}
		if stringMatches(f.Cmp, field(s), f.StrMatches) {
			out.Add(pool.Id(id))
		}
	}
	return out, nil
}

func matchNum(p *pool.Pool, f Filter, field func(pool.Solvable) int64) (*pool.PackageSet, error) {
	out := pool.NewPackageSet()
	for id, s := range p.Solvables() {
		if s.IsEmpty() {
			continue
		}
		v := field(s)
		for _, m := range f.NumMatches {
			if numMatches(f.Cmp, v, m) {
				out.Add(pool.Id(id))
				break
			}
		}
	}
	return out, nil
}

func numMatches(cmp CmpType, v, m int64) bool {
	switch {
	case cmp&LT != 0:
		return v < m
	case cmp&GT != 0:
		return v > m
	default:
		return v == m
	}
}

func matchEvrSegment(p *pool.Pool, f Filter, seg func(evrcmp.EVR) string) (*pool.PackageSet, error) {
	out := pool.NewPackageSet()
	for id, s := range p.Solvables() {
		if s.IsEmpty() {
			continue
		}
		v := seg(evrcmp.Parse(p.Str(s.Evr)))
		if stringMatches(f.Cmp, v, f.StrMatches) {
			out.Add(pool.Id(id))
		}
	}
	return out, nil
}

func matchEvrCompare(p *pool.Pool, f Filter) (*pool.PackageSet, error) {
	out := pool.NewPackageSet()
	for id, s := range p.Solvables() {
		if s.IsEmpty() {
			continue
		}
		cur := p.Str(s.Evr)
		for _, m := range f.StrMatches {
			if f.Cmp&GLOB != 0 {
				if globMatch(m, cur) {
					out.Add(pool.Id(id))
				}
				continue
			}
			c := evrcmp.CompareStrings(cur, m)
			if evrCmpMatches(f.Cmp, c) {
				out.Add(pool.Id(id))
			}
		}
	}
	return out, nil
}

func evrCmpMatches(cmp CmpType, c int) bool {
	switch {
	case cmp&LT != 0:
		return c < 0
	case cmp&GT != 0:
		return c > 0
	default:
		return c == 0
	}
}

// matchNevra parses "name-[epoch:]version-release.arch" and matches against
// (name, evr, arch). strict forbids GLOB and requires all three components.
func matchNevra(p *pool.Pool, f Filter, strict bool) (*pool.PackageSet, error) {
	out := pool.NewPackageSet()
	for _, raw := range f.StrMatches {
		name, evrStr, arch, ok := splitNevra(raw)
		if !ok {
			if strict {
				continue
			}
		}
		for id, s := range p.Solvables() {
			if s.IsEmpty() {
				continue
			}
			sname, sevr, sarch := p.Str(s.Name), p.Str(s.Evr), p.Str(s.Arch)
			if strict {
				if sname == name && sevr == evrStr && sarch == arch {
					out.Add(pool.Id(id))
				}
				continue
			}
			if !stringMatches(f.Cmp, sname, []string{name}) {
				continue
			}
			if evrStr != "" && evrcmp.CompareStrings(sevr, evrStr) != 0 {
				continue
			}
			if arch != "" && sarch != arch {
				continue
			}
			out.Add(pool.Id(id))
		}
	}
	return out, nil
}

// splitNevra parses "name-[epoch:]version-release.arch" into components. The
// arch is the suffix after the last '.'; version-release is everything after
// the second-to-last '-' (after the only '-' when there is just one).
func splitNevra(raw string) (name, evr, arch string, ok bool) {
	dot := strings.LastIndexByte(raw, '.')
	if dot < 0 {
		return raw, "", "", false
	}
	arch = raw[dot+1:]
	rest := raw[:dot]

	lastDash := strings.LastIndexByte(rest, '-')
	if lastDash < 0 {
		return rest, "", arch, false
	}
	secondDash := strings.LastIndexByte(rest[:lastDash], '-')
	if secondDash < 0 {
		return rest[:lastDash], rest[lastDash+1:], arch, true
	}
	name = rest[:secondDash]
	evr = rest[secondDash+1:]
	return name, evr, arch, true
}

// matchReldepList implements the Provides/Requires/... family with a
// per-call scan of each candidate's list (the sack keeps no separate index
// structure). Reldep matches compare ids: an entry matches only when it is
// one of the given interned ids, and version ranges are not intersected
// (a "bash >= 5" match does not find a "bash = 5.1" entry). String matches
// compare each entry's name under the filter's cmp flags (exact, GLOB,
// SUBSTR, ICASE); no reldep list is built from interned names.
func matchReldepList(q *Query, f Filter, list func(pool.Solvable) []pool.Id) (*pool.PackageSet, error) {
	p := q.sack.Pool()
	out := pool.NewPackageSet()

	switch f.MatchType {
	case MatchReldep:
		want := make(map[pool.Id]bool, len(f.ReldepMatches))
		for _, id := range f.ReldepMatches {
			want[id] = true
		}
		forEachCandidate(q, func(id pool.Id, s pool.Solvable) {
			for _, rid := range list(s) {
				if want[rid] {
					out.Add(id)
					return
				}
			}
		})
	case MatchStr:
		forEachCandidate(q, func(id pool.Id, s pool.Solvable) {
			for _, rid := range list(s) {
				rd := dependency.FromId(p, rid)
				if stringMatches(f.Cmp, rd.Name(), f.StrMatches) {
					out.Add(id)
					return
				}
			}
		})
	default:
		return nil, errkind.New(errkind.BadQuery, "unsupported match type for dependency filter")
	}
	return out, nil
}

// matchFile matches against a filelists-provided path list. The filelists
// extension is an injected, out-of-scope collaborator (spec §1); absent one,
// File filters simply match nothing, which is indistinguishable from "no
// filelists extension loaded" at this layer.
func matchFile(q *Query, f Filter) (*pool.PackageSet, error) {
	out := pool.NewPackageSet()
	src, ok := q.sack.FileProvidesSource()
	if !ok {
		return out, nil
	}
	for _, raw := range f.StrMatches {
		path := strings.TrimSuffix(raw, "/")
		for _, id := range src.PackagesProvidingFile(path) {
			out.Add(id)
		}
	}
	return out, nil
}

func matchReponame(q *Query, f Filter) (*pool.PackageSet, error) {
	out := pool.NewPackageSet()
	for _, repo := range q.sack.Pool().Repos() {
		if !stringMatches(f.Cmp&^NOT, repo.Name, f.StrMatches) {
			continue
		}
		for id := repo.Start; id < repo.End; id++ {
			if !q.sack.Pool().Solvable(id).IsEmpty() {
				out.Add(id)
			}
		}
	}
	return out, nil
}

// latestFilter keeps, within each name-group (or name+arch group when
// perArch), the top |N| versions (N>0) or skips the top N and keeps the rest
// (N<0), ordered by descending EVR then by ascending solvable id as a
// tiebreak.
func latestFilter(q *Query, f Filter, perArch bool) (*pool.PackageSet, error) {
	p := q.sack.Pool()
	n := int64(1)
	if len(f.NumMatches) > 0 {
		n = f.NumMatches[0]
	}

	groups := make(map[string][]pool.Id)
	forEachCandidate(q, func(id pool.Id, s pool.Solvable) {
		key := p.Str(s.Name)
		if perArch {
			key += "\x00" + p.Str(s.Arch)
		}
		groups[key] = append(groups[key], id)
	})

	out := pool.NewPackageSet()
	for _, ids := range groups {
		sortByEvrDesc(p, ids)
		keepFromTopN(p, ids, n, out)
	}
	return out, nil
}

func sortByEvrDesc(p *pool.Pool, ids []pool.Id) {
	// insertion sort: groups are small in practice and this keeps the
	// comparator simple and allocation-free.
	for i := 1; i < len(ids); i++ {
		j := i
		for j > 0 && evrLess(p, ids[j-1], ids[j]) {
			ids[j-1], ids[j] = ids[j], ids[j-1]
			j--
		}
	}
}

// evrLess orders a before b (descending EVR, ascending id tiebreak): true
// when a should sort after b.
func evrLess(p *pool.Pool, a, b pool.Id) bool {
	sa, sb := p.Solvable(a), p.Solvable(b)
	c := evrcmp.CompareStrings(p.Str(sa.Evr), p.Str(sb.Evr))
	if c != 0 {
		return c < 0
	}
	return a > b
}

// keepFromTopN adds the ids (sorted by descending EVR) whose version rank is
// below n (n >= 0) or at least -n (n < 0); ids with equal EVRs share a rank.
func keepFromTopN(p *pool.Pool, ids []pool.Id, n int64, out *pool.PackageSet) {
	rank := int64(0)
	for i, id := range ids {
		if i > 0 && evrcmp.CompareStrings(p.Str(p.Solvable(ids[i-1]).Evr), p.Str(p.Solvable(id).Evr)) != 0 {
			rank++
		}
		if (n >= 0 && rank < n) || (n < 0 && rank >= -n) {
			out.Add(id)
		}
	}
}

func isNoarchOrSame(p *pool.Pool, a, b pool.Solvable) bool {
	aa, ba := p.Str(a.Arch), p.Str(b.Arch)
	return aa == ba || aa == "noarch" || ba == "noarch"
}

// upgradableFilter returns installed solvables for which a strictly
// higher (or, if downgrade, lower) EVR exists among non-installed
// arch-compatible same-name candidates.
func upgradableFilter(q *Query, downgrade bool) (*pool.PackageSet, error) {
	p := q.sack.Pool()
	installed := p.InstalledRepo()
	out := pool.NewPackageSet()
	if installed == nil {
		return out, nil
	}

	byName := make(map[string][]pool.Id)
	forEachCandidate(q, func(id pool.Id, s pool.Solvable) {
		if s.Repo != installed {
			byName[p.Str(s.Name)] = append(byName[p.Str(s.Name)], id)
		}
	})

	for id := installed.Start; id < installed.End; id++ {
		s := p.Solvable(id)
		if s.IsEmpty() {
			continue
		}
		for _, cid := range byName[p.Str(s.Name)] {
			cs := p.Solvable(cid)
			if !isNoarchOrSame(p, s, cs) {
				continue
			}
			c := evrcmp.CompareStrings(p.Str(cs.Evr), p.Str(s.Evr))
			if (downgrade && c < 0) || (!downgrade && c > 0) {
				out.Add(id)
				break
			}
		}
	}
	return out, nil
}

// upgradesFilter returns non-installed solvables that upgrade (or downgrade)
// some installed one of the same, arch-compatible, name.
func upgradesFilter(q *Query, downgrade bool) (*pool.PackageSet, error) {
	p := q.sack.Pool()
	installed := p.InstalledRepo()
	out := pool.NewPackageSet()
	if installed == nil {
		return out, nil
	}

	installedByName := make(map[string][]pool.Solvable)
	for id := installed.Start; id < installed.End; id++ {
		s := p.Solvable(id)
		if s.IsEmpty() {
			continue
		}
		installedByName[p.Str(s.Name)] = append(installedByName[p.Str(s.Name)], s)
	}

	forEachCandidate(q, func(id pool.Id, s pool.Solvable) {
		if s.Repo == installed {
			return
		}
		for _, is := range installedByName[p.Str(s.Name)] {
			if !isNoarchOrSame(p, s, is) {
				continue
			}
			c := evrcmp.CompareStrings(p.Str(s.Evr), p.Str(is.Evr))
			if (downgrade && c < 0) || (!downgrade && c > 0) {
				out.Add(id)
				return
			}
		}
	})
	return out, nil
}

// byPriorityFilter restricts candidates of the same name to those from the
// highest-priority repo (larger Priority numerically wins, per the source's
// sign convention).
func byPriorityFilter(q *Query, obsoletesOnly bool) (*pool.PackageSet, error) {
	p := q.sack.Pool()
	bestPriority := make(map[string]int32)
	byName := make(map[string][]pool.Id)

	forEachCandidate(q, func(id pool.Id, s pool.Solvable) {
		name := p.Str(s.Name)
		byName[name] = append(byName[name], id)
		pr := int32(0)
		if s.Repo != nil {
			pr = s.Repo.Priority
		}
		if cur, ok := bestPriority[name]; !ok || pr > cur {
			bestPriority[name] = pr
		}
	})

	out := pool.NewPackageSet()
	for name, ids := range byName {
		for _, id := range ids {
			s := p.Solvable(id)
			pr := int32(0)
			if s.Repo != nil {
				pr = s.Repo.Priority
			}
			if pr != bestPriority[name] {
				continue
			}
			if obsoletesOnly && len(s.Obsoletes) == 0 {
				continue
			}
			out.Add(id)
		}
	}
	return out, nil
}

// advisoryFilter intersects with the set of packages referenced by matching
// advisories. Advisory/updateinfo metadata is an injected, out-of-scope
// collaborator (spec §1); absent one, advisory filters match nothing.
func advisoryFilter(q *Query, f Filter) (*pool.PackageSet, error) {
	out := pool.NewPackageSet()
	src, ok := q.sack.AdvisorySource()
	if !ok {
		return out, nil
	}

	p := q.sack.Pool()
	for _, adv := range src.Advisories() {
		if !advisoryKeyMatches(f, adv) {
			continue
		}
		for _, pkg := range adv.Packages {
			for id := range p.Solvables() {
				sid := pool.Id(id)
				s := p.Solvable(sid)
				if s.IsEmpty() || p.Str(s.Name) != pkg.Name || p.Str(s.Arch) != pkg.Arch {
					continue
				}
				c := evrcmp.CompareStrings(p.Str(s.Evr), pkg.EVR)
				if evrCmpMatches(f.Cmp, c) {
					out.Add(sid)
				}
			}
		}
	}
	return out, nil
}

func advisoryKeyMatches(f Filter, adv sack.Advisory) bool {
	switch f.Key {
	case AdvisoryKey:
		return stringMatches(f.Cmp, adv.Name, f.StrMatches)
	case AdvisoryBug:
		return containsAny(adv.Bugs, f.StrMatches, f.Cmp)
	case AdvisoryCVE:
		return containsAny(adv.CVEs, f.StrMatches, f.Cmp)
	case AdvisoryType:
		return stringMatches(f.Cmp, adv.Type, f.StrMatches)
	case AdvisorySeverity:
		return stringMatches(f.Cmp, adv.Severity, f.StrMatches)
	default:
		return false
	}
}

func containsAny(haystack []string, matches []string, cmp CmpType) bool {
	for _, h := range haystack {
		if stringMatches(cmp, h, matches) {
			return true
		}
	}
	return false
}
