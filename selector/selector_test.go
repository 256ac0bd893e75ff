package selector

import (
	"testing"

	"github.com/rpmpkg/core/internal/log"
	"github.com/rpmpkg/core/pool"
	"github.com/rpmpkg/core/query"
	"github.com/rpmpkg/core/sack"
)

func newTestSack(t *testing.T) *sack.Sack {
	t.Helper()
	s, err := sack.New(sack.Config{CacheDir: t.TempDir(), Arch: "x86_64"}, log.Nop())
	if err != nil {
		t.Fatalf("sack.New() = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func addPkg(s *sack.Sack, repo *pool.Repo, name, evr, arch string) pool.Id {
	p := s.Pool()
	return repo.AddSolvable(pool.Solvable{
		Name: p.Intern(name),
		Evr:  p.Intern(evr),
		Arch: p.Intern(arch),
	})
}

func TestIsEmpty(t *testing.T) {
	sel := New(newTestSack(t))
	if !sel.IsEmpty() {
		t.Fatalf("a fresh selector should be empty")
	}
	sel.SetName(query.EQ, "bash")
	if sel.IsEmpty() {
		t.Fatalf("a selector with a name constraint should not be empty")
	}
}

func TestResolveEmptySelectorIsBadSelector(t *testing.T) {
	sel := New(newTestSack(t))
	if _, err := sel.Resolve(); err == nil {
		t.Fatalf("Resolve() on an empty selector should return BadSelector")
	}
}

func TestResolveByName(t *testing.T) {
	s := newTestSack(t)
	repo := s.Pool().NewRepo("fedora")
	bash := addPkg(s, repo, "bash", "5.1-1", "x86_64")
	addPkg(s, repo, "zsh", "5.9-1", "x86_64")

	sel := New(s).SetName(query.EQ, "bash")
	ids, err := sel.Resolve()
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if len(ids) != 1 || ids[0] != bash {
		t.Fatalf("Resolve() = %v, want [%d]", ids, bash)
	}
}

func TestResolveAndsConstraints(t *testing.T) {
	s := newTestSack(t)
	repo := s.Pool().NewRepo("fedora")
	bashX86 := addPkg(s, repo, "bash", "5.1-1", "x86_64")
	addPkg(s, repo, "bash", "5.1-1", "aarch64")
	addPkg(s, repo, "zsh", "5.1-1", "x86_64")

	sel := New(s).SetName(query.EQ, "bash").SetArch("x86_64")
	ids, err := sel.Resolve()
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if len(ids) != 1 || ids[0] != bashX86 {
		t.Fatalf("Resolve() = %v, want only the x86_64 bash (%d)", ids, bashX86)
	}
}

func TestResolveByPackageSet(t *testing.T) {
	s := newTestSack(t)
	repo := s.Pool().NewRepo("fedora")
	bash := addPkg(s, repo, "bash", "5.1-1", "x86_64")
	addPkg(s, repo, "zsh", "5.9-1", "x86_64")

	set := pool.NewPackageSet()
	set.Add(bash)

	sel := New(s).SetPackageSet(set)
	ids, err := sel.Resolve()
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if len(ids) != 1 || ids[0] != bash {
		t.Fatalf("Resolve() = %v, want [%d]", ids, bash)
	}
}

func TestResolveByReponame(t *testing.T) {
	s := newTestSack(t)
	fedora := s.Pool().NewRepo("fedora")
	epel := s.Pool().NewRepo("epel")
	want := addPkg(s, epel, "bash", "5.1-1", "x86_64")
	addPkg(s, fedora, "bash", "5.1-1", "x86_64")

	sel := New(s).SetName(query.EQ, "bash").SetReponame("epel")
	ids, err := sel.Resolve()
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if len(ids) != 1 || ids[0] != want {
		t.Fatalf("Resolve() = %v, want only the epel bash (%d)", ids, want)
	}
}
