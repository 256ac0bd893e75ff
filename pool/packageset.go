package pool

import "github.com/RoaringBitmap/roaring"

// PackageSet is a dense bitmap over solvable ids belonging to one sack (spec
// §3). It is backed by a Roaring bitmap (as used for large sparse id sets in
// vincilbishop-sourcegraph's go.mod dependency graph), giving cheap
// union/intersection/difference and exact popcount without the O(n) memory
// of a plain []bool the size of the whole solvables array.
type PackageSet struct {
	bm *roaring.Bitmap
}

// NewPackageSet returns an empty PackageSet.
func NewPackageSet() *PackageSet {
	return &PackageSet{bm: roaring.New()}
}

// PackageSetFromIds builds a PackageSet containing exactly the given ids.
func PackageSetFromIds(ids ...Id) *PackageSet {
	s := NewPackageSet()
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// PackageSetRange builds a PackageSet containing [start, end).
func PackageSetRange(start, end Id) *PackageSet {
	s := NewPackageSet()
	s.bm.AddRange(uint64(start), uint64(end))
	return s
}

// Add inserts id into the set.
func (s *PackageSet) Add(id Id) { s.bm.Add(uint32(id)) }

// Remove deletes id from the set, a no-op if absent.
func (s *PackageSet) Remove(id Id) { s.bm.Remove(uint32(id)) }

// Contains reports whether id is a member.
func (s *PackageSet) Contains(id Id) bool { return s.bm.Contains(uint32(id)) }

// Size returns the popcount of the set.
func (s *PackageSet) Size() int { return int(s.bm.GetCardinality()) }

// Empty reports whether the set has no members.
func (s *PackageSet) Empty() bool { return s.bm.IsEmpty() }

// ToSlice returns the set's members in ascending order.
func (s *PackageSet) ToSlice() []Id {
	arr := s.bm.ToArray()
	ids := make([]Id, len(arr))
	for i, v := range arr {
		ids[i] = Id(v)
	}
	return ids
}

// Clone deep-copies the set, matching the spec's requirement that cloning a
// Query deep-copies its result bitmap.
func (s *PackageSet) Clone() *PackageSet {
	return &PackageSet{bm: s.bm.Clone()}
}

// Union returns a new set containing members of either s or other.
func (s *PackageSet) Union(other *PackageSet) *PackageSet {
	return &PackageSet{bm: roaring.Or(s.bm, other.bm)}
}

// Intersection returns a new set containing members of both s and other.
func (s *PackageSet) Intersection(other *PackageSet) *PackageSet {
	return &PackageSet{bm: roaring.And(s.bm, other.bm)}
}

// Difference returns a new set containing members of s not in other.
func (s *PackageSet) Difference(other *PackageSet) *PackageSet {
	return &PackageSet{bm: roaring.AndNot(s.bm, other.bm)}
}

// UnionInPlace mutates s to also contain other's members.
func (s *PackageSet) UnionInPlace(other *PackageSet) { s.bm.Or(other.bm) }

// IntersectInPlace mutates s to retain only members also in other.
func (s *PackageSet) IntersectInPlace(other *PackageSet) { s.bm.And(other.bm) }

// SubtractInPlace mutates s to remove any members also in other.
func (s *PackageSet) SubtractInPlace(other *PackageSet) { s.bm.AndNot(other.bm) }

// Equals reports whether s and other contain exactly the same ids.
func (s *PackageSet) Equals(other *PackageSet) bool {
	return s.bm.Equals(other.bm)
}
