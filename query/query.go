package query

import (
	"github.com/rpmpkg/core/internal/errkind"
	"github.com/rpmpkg/core/pool"
	"github.com/rpmpkg/core/sack"
)

// Query carries (sack, flags, filters, result, applied) per spec §3.
type Query struct {
	sack    *sack.Sack
	flags   Flags
	filters []Filter
	result  *pool.PackageSet
	applied bool
}

// New returns a fresh, unapplied Query over s.
func New(s *sack.Sack, flags Flags) *Query {
	if flags == 0 {
		flags = ApplyExcludes
	}
	return &Query{sack: s, flags: flags}
}

// Sack returns the query's underlying sack.
func (q *Query) Sack() *sack.Sack { return q.sack }

// Clone deep-copies the query, including its (possibly applied) result
// bitmap, matching the spec's ownership rule that cloning a query deep-copies
// its result (spec §5).
func (q *Query) Clone() *Query {
	nq := &Query{sack: q.sack, flags: q.flags, applied: q.applied}
	nq.filters = append(nq.filters, q.filters...)
	if q.result != nil {
		nq.result = q.result.Clone()
	}
	return nq
}

// addFilter validates the (key, cmp, matchType) triple and appends it,
// clearing `applied` so the next apply re-intersects (spec §3's invariant:
// "Adding a filter clears applied and keeps existing result to be
// re-intersected on next apply").
func (q *Query) addFilter(f Filter) error {
	if err := validateTriple(f); err != nil {
		return err
	}
	q.filters = append(q.filters, f)
	q.applied = false
	return nil
}

func validateTriple(f Filter) error {
	if f.Key == Location && f.Cmp&^NOT != EQ {
		return errkind.New(errkind.BadQuery, "LOCATION only accepts EQ")
	}
	if f.Key == NevraStrict && f.Cmp&GLOB != 0 {
		return errkind.New(errkind.BadQuery, "NEVRA_STRICT does not accept GLOB")
	}
	switch f.MatchType {
	case MatchNum:
		if len(f.NumMatches) == 0 {
			return errkind.New(errkind.BadQuery, "numeric filter requires at least one match value")
		}
	case MatchStr:
		if len(f.StrMatches) == 0 {
			return errkind.New(errkind.BadQuery, "string filter requires at least one match value")
		}
	case MatchPkg:
		if f.PkgMatches == nil {
			return errkind.New(errkind.BadQuery, "package-set filter requires a non-nil set")
		}
	case MatchReldep:
		if len(f.ReldepMatches) == 0 {
			return errkind.New(errkind.BadQuery, "reldep filter requires at least one match value")
		}
	}
	return nil
}

// AddNum adds a numeric filter (EVR ordinal comparisons, Latest/N, etc).
func (q *Query) AddNum(key KeyName, cmp CmpType, matches ...int64) error {
	return q.addFilter(Filter{Key: key, Cmp: cmp, MatchType: MatchNum, NumMatches: matches})
}

// AddStr adds a single string filter.
func (q *Query) AddStr(key KeyName, cmp CmpType, match string) error {
	return q.addFilter(Filter{Key: key, Cmp: cmp, MatchType: MatchStr, StrMatches: []string{match}})
}

// AddStrList adds a multi-value string filter (OR semantics across values).
func (q *Query) AddStrList(key KeyName, cmp CmpType, matches []string) error {
	return q.addFilter(Filter{Key: key, Cmp: cmp, MatchType: MatchStr, StrMatches: matches})
}

// AddPkgSet adds a filter matching against an explicit package set.
func (q *Query) AddPkgSet(key KeyName, cmp CmpType, matches *pool.PackageSet) error {
	return q.addFilter(Filter{Key: key, Cmp: cmp, MatchType: MatchPkg, PkgMatches: matches})
}

// AddReldep adds a filter matching a single reldep id.
func (q *Query) AddReldep(key KeyName, cmp CmpType, match pool.Id) error {
	return q.addFilter(Filter{Key: key, Cmp: cmp, MatchType: MatchReldep, ReldepMatches: []pool.Id{match}})
}

// AddReldepList adds a filter matching any of several reldep ids.
func (q *Query) AddReldepList(key KeyName, cmp CmpType, matches []pool.Id) error {
	return q.addFilter(Filter{Key: key, Cmp: cmp, MatchType: MatchReldep, ReldepMatches: matches})
}

// baseResult computes the starting point before any filters are applied:
// the sack's package solvables intersected with the considered map under
// this query's exclude-handling flags.
func (q *Query) baseResult() *pool.PackageSet {
	if q.flags&IgnoreExcludes != 0 {
		return q.sack.PkgSolvables()
	}
	ignoreRegular := q.flags&IgnoreRegularExcludes != 0
	ignoreModular := q.flags&IgnoreModularExcludes != 0
	return q.sack.ConsideredWithFlags(ignoreRegular, ignoreModular)
}

// Apply materialises the result, idempotently: a second call with no
// intervening AddFilter is a no-op (spec §8, "query.apply().apply() is
// idempotent").
func (q *Query) Apply() error {
	if q.applied {
		return nil
	}
	if q.result == nil {
		q.result = q.baseResult()
	}

	for _, f := range q.filters {
		m, err := evalFilter(q, f)
		if err != nil {
			return err
		}
		if f.Cmp&NOT != 0 {
			q.result.SubtractInPlace(m)
		} else {
			q.result.IntersectInPlace(m)
		}
	}
	q.filters = nil
	q.applied = true
	return nil
}

// Run forces apply and returns the matching solvable ids in ascending order.
func (q *Query) Run() ([]pool.Id, error) {
	if err := q.Apply(); err != nil {
		return nil, err
	}
	return q.result.ToSlice(), nil
}

// RunSet forces apply and returns the result as a PackageSet.
func (q *Query) RunSet() (*pool.PackageSet, error) {
	if err := q.Apply(); err != nil {
		return nil, err
	}
	return q.result, nil
}

// Size forces apply and returns the result's cardinality.
func (q *Query) Size() (int, error) {
	if err := q.Apply(); err != nil {
		return 0, err
	}
	return q.result.Size(), nil
}

// Empty forces apply and reports whether the result is empty.
func (q *Query) Empty() (bool, error) {
	n, err := q.Size()
	return n == 0, err
}

// Get forces apply and returns the idx'th result in ascending id order.
func (q *Query) Get(idx int) (pool.Id, error) {
	ids, err := q.Run()
	if err != nil {
		return pool.NoId, err
	}
	if idx < 0 || idx >= len(ids) {
		return pool.NoId, errkind.New(errkind.BadQuery, "index out of range")
	}
	return ids[idx], nil
}

// FilterCount returns how many currently-applied results additionally match
// a filter, without mutating q — used by the idempotence law
// query.add_filter(X).apply().size() == query.apply().filter_count(X).size().
func (q *Query) FilterCount(f Filter) (int, error) {
	if err := q.Apply(); err != nil {
		return 0, err
	}
	m, err := evalFilter(q, f)
	if err != nil {
		return 0, err
	}
	var res *pool.PackageSet
	if f.Cmp&NOT != 0 {
		res = q.result.Difference(m)
	} else {
		res = q.result.Intersection(m)
	}
	return res.Size(), nil
}

func requireApplied(a, b *Query) error {
	if a.sack != b.sack {
		return errkind.New(errkind.Internal, "set algebra across different sacks")
	}
	if err := a.Apply(); err != nil {
		return err
	}
	return b.Apply()
}

// Union mutates q to be the union of q and other (both forced to apply
// first). Both queries must be over the same sack.
func (q *Query) Union(other *Query) error {
	if err := requireApplied(q, other); err != nil {
		return err
	}
	q.result.UnionInPlace(other.result)
	return nil
}

// Intersection mutates q to be the intersection of q and other.
func (q *Query) Intersection(other *Query) error {
	if err := requireApplied(q, other); err != nil {
		return err
	}
	q.result.IntersectInPlace(other.result)
	return nil
}

// Difference mutates q to remove other's members.
func (q *Query) Difference(other *Query) error {
	if err := requireApplied(q, other); err != nil {
		return err
	}
	q.result.SubtractInPlace(other.result)
	return nil
}
