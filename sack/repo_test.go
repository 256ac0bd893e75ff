package sack

import (
	"testing"

	"github.com/rpmpkg/core/pool"
)

type countingMetadataSource struct {
	checksum string
	loads    int
}

func (c *countingMetadataSource) Checksum() (string, error) { return c.checksum, nil }

func (c *countingMetadataSource) Load(flags LoadFlags) ([]pool.Solvable, []string, error) {
	c.loads++
	return []pool.Solvable{{}}, nil, nil
}

func TestLoadRepoSkipsDecodeOnCacheHit(t *testing.T) {
	s := newTestSack(t)
	src := &countingMetadataSource{checksum: "deadbeef"}

	if err := s.LoadRepo("fedora", src, 0); err != nil {
		t.Fatalf("LoadRepo() first call = %v", err)
	}
	if src.loads != 1 {
		t.Fatalf("loads after first LoadRepo() = %d, want 1", src.loads)
	}

	if err := s.LoadRepo("fedora", src, 0); err != nil {
		t.Fatalf("LoadRepo() second call = %v", err)
	}
	if src.loads != 1 {
		t.Fatalf("loads after cache-hit LoadRepo() = %d, want still 1 (decode should have been skipped)", src.loads)
	}
}

func TestLoadRepoReloadsWhenChecksumChanges(t *testing.T) {
	s := newTestSack(t)
	src := &countingMetadataSource{checksum: "deadbeef"}

	if err := s.LoadRepo("fedora", src, 0); err != nil {
		t.Fatalf("LoadRepo() first call = %v", err)
	}
	src.checksum = "c0ffee"
	if err := s.LoadRepo("fedora", src, 0); err != nil {
		t.Fatalf("LoadRepo() second call = %v", err)
	}
	if src.loads != 2 {
		t.Fatalf("loads after checksum change = %d, want 2 (must decode again)", src.loads)
	}
}
