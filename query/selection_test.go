package query

import (
	"testing"

	"github.com/rpmpkg/core/pool"
)

func TestFilterExtras(t *testing.T) {
	s := newTestSack(t)
	p := s.Pool()
	installed := p.NewRepo("@System")
	if err := p.SetInstalledRepo(installed); err != nil {
		t.Fatalf("SetInstalledRepo() = %v", err)
	}
	fedora := p.NewRepo("fedora")

	addPkg(s, fedora, "bash", "5.1-1", "x86_64")
	addPkg(s, installed, "bash", "5.1-1", "x86_64")
	extra := addPkg(s, installed, "local-tool", "1.0-1", "x86_64")

	q := New(s, 0)
	if err := q.FilterExtras(); err != nil {
		t.Fatalf("FilterExtras() = %v", err)
	}
	n, err := q.Size()
	if err != nil {
		t.Fatalf("Size() = %v", err)
	}
	if n != 1 || !q.result.Contains(extra) {
		t.Fatalf("FilterExtras() = %v, want only local-tool (%d)", q.result.ToSlice(), extra)
	}
}

func TestFilterRecent(t *testing.T) {
	s := newTestSack(t)
	p := s.Pool()
	repo := p.NewRepo("fedora")
	old := repo.AddSolvable(pool.Solvable{Name: p.Intern("bash"), Evr: p.Intern("5.0-1"), Arch: p.Intern("x86_64"), BuildTime: 100})
	recent := repo.AddSolvable(pool.Solvable{Name: p.Intern("zsh"), Evr: p.Intern("5.9-1"), Arch: p.Intern("x86_64"), BuildTime: 200})

	q := New(s, 0)
	if err := q.FilterRecent(150); err != nil {
		t.Fatalf("FilterRecent() = %v", err)
	}
	if q.result.Contains(old) || !q.result.Contains(recent) {
		t.Fatalf("FilterRecent(150) = %v, want only the recent package (%d)", q.result.ToSlice(), recent)
	}
}

func TestFilterDuplicated(t *testing.T) {
	s := newTestSack(t)
	p := s.Pool()
	installed := p.NewRepo("@System")
	if err := p.SetInstalledRepo(installed); err != nil {
		t.Fatalf("SetInstalledRepo() = %v", err)
	}

	dup1 := addPkg(s, installed, "kernel", "5.0-1", "x86_64")
	dup2 := addPkg(s, installed, "kernel", "5.1-1", "x86_64")
	unique := addPkg(s, installed, "bash", "5.1-1", "x86_64")

	q := New(s, 0)
	if err := q.FilterDuplicated(); err != nil {
		t.Fatalf("FilterDuplicated() = %v", err)
	}
	if !q.result.Contains(dup1) || !q.result.Contains(dup2) {
		t.Fatalf("FilterDuplicated() = %v, want both kernel entries", q.result.ToSlice())
	}
	if q.result.Contains(unique) {
		t.Fatalf("FilterDuplicated() unexpectedly kept a uniquely-named package")
	}
}

type fakeUnneededResolver struct{ set *pool.PackageSet }

func (f fakeUnneededResolver) Unneeded(debug bool) (*pool.PackageSet, error) { return f.set, nil }

func TestFilterUnneeded(t *testing.T) {
	s := newTestSack(t)
	repo := s.Pool().NewRepo("fedora")
	keep := addPkg(s, repo, "bash", "5.1-1", "x86_64")
	addPkg(s, repo, "zsh", "5.9-1", "x86_64")

	unneeded := pool.NewPackageSet()
	unneeded.Add(keep)

	q := New(s, 0)
	if err := q.FilterUnneeded(fakeUnneededResolver{set: unneeded}, false); err != nil {
		t.Fatalf("FilterUnneeded() = %v", err)
	}
	if q.result.Size() != 1 || !q.result.Contains(keep) {
		t.Fatalf("FilterUnneeded() = %v, want only %d", q.result.ToSlice(), keep)
	}
}
