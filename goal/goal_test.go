package goal

import (
	"testing"

	"github.com/rpmpkg/core/dependency"
	"github.com/rpmpkg/core/internal/log"
	"github.com/rpmpkg/core/pool"
	"github.com/rpmpkg/core/sack"
	"github.com/rpmpkg/core/selector"
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

func requires(p *pool.Pool, name string) pool.Id {
	return dependency.New(p, name, 0, "").Id
}

func transactionAction(txn *Transaction, id pool.Id) (Action, bool) {
	for _, item := range txn.Items {
		if item.Id == id {
			return item.Action, true
		}
	}
	return 0, false
}

func TestSolveSimpleInstall(t *testing.T) {
	s := newTestSack(t)
	repo := s.Pool().NewRepo("fedora")
	bash := addPkg(s, repo, "bash", "5.1-1", "x86_64")

	g := New(s)
	g.Install(bash)
	if err := g.Solve(0); err != nil {
		t.Fatalf("Solve() = %v", err)
	}
	if len(g.Problems()) != 0 {
		t.Fatalf("Solve() produced problems: %v", g.Problems())
	}
	installs := g.ListInstalls()
	if len(installs) != 1 || installs[0] != bash {
		t.Fatalf("ListInstalls() = %v, want [%d]", installs, bash)
	}
	if g.GetReason(bash) != ReasonUser {
		t.Fatalf("GetReason(bash) = %v, want ReasonUser", g.GetReason(bash))
	}
}

func TestSolvePullsInDependency(t *testing.T) {
	s := newTestSack(t)
	p := s.Pool()
	repo := p.NewRepo("fedora")
	lib := addPkg(s, repo, "libfoo", "1.0-1", "x86_64")
	app := repo.AddSolvable(pool.Solvable{
		Name:     p.Intern("app"),
		Evr:      p.Intern("1.0-1"),
		Arch:     p.Intern("x86_64"),
		Requires: []pool.Id{requires(p, "libfoo")},
	})

	g := New(s)
	g.Install(app)
	if err := g.Solve(0); err != nil {
		t.Fatalf("Solve() = %v", err)
	}
	if len(g.Problems()) != 0 {
		t.Fatalf("Solve() produced problems: %v", g.Problems())
	}
	installs := g.ListInstalls()
	got := map[pool.Id]bool{}
	for _, id := range installs {
		got[id] = true
	}
	if !got[app] || !got[lib] {
		t.Fatalf("ListInstalls() = %v, want both app (%d) and libfoo (%d)", installs, app, lib)
	}
	if g.GetReason(lib) != ReasonDep {
		t.Fatalf("GetReason(libfoo) = %v, want ReasonDep", g.GetReason(lib))
	}
}

func TestSolveMissingRequireIsProblem(t *testing.T) {
	s := newTestSack(t)
	p := s.Pool()
	repo := p.NewRepo("fedora")
	app := repo.AddSolvable(pool.Solvable{
		Name:     p.Intern("app"),
		Evr:      p.Intern("1.0-1"),
		Arch:     p.Intern("x86_64"),
		Requires: []pool.Id{requires(p, "missing-lib")},
	})

	g := New(s)
	g.Install(app)
	if err := g.Solve(0); err != nil {
		t.Fatalf("Solve() = %v", err)
	}
	if len(g.Problems()) == 0 {
		t.Fatalf("Solve() with an unsatisfiable require should report a problem")
	}
	if g.Transaction() != nil {
		t.Fatalf("an unsatisfiable solve should leave Transaction() nil")
	}
}

func TestSolveUpgrade(t *testing.T) {
	s := newTestSack(t)
	p := s.Pool()
	installed := p.NewRepo("@System")
	if err := p.SetInstalledRepo(installed); err != nil {
		t.Fatalf("SetInstalledRepo() = %v", err)
	}
	old := addPkg(s, installed, "bash", "5.0-1", "x86_64")
	fedora := p.NewRepo("fedora")
	newer := addPkg(s, fedora, "bash", "5.1-1", "x86_64")

	g := New(s)
	g.UpgradeTo(newer)
	if err := g.Solve(0); err != nil {
		t.Fatalf("Solve() = %v", err)
	}
	if len(g.Problems()) != 0 {
		t.Fatalf("Solve() produced problems: %v", g.Problems())
	}
	txn := g.Transaction()
	if a, ok := transactionAction(txn, newer); !ok || a != ActionUpgrade {
		t.Fatalf("new bash action = (%v, %v), want ActionUpgrade", a, ok)
	}
	if a, ok := transactionAction(txn, old); !ok || a != ActionUpgraded {
		t.Fatalf("old bash action = (%v, %v), want ActionUpgraded", a, ok)
	}
}

func TestSolveEraseRemovesTarget(t *testing.T) {
	s := newTestSack(t)
	p := s.Pool()
	installed := p.NewRepo("@System")
	if err := p.SetInstalledRepo(installed); err != nil {
		t.Fatalf("SetInstalledRepo() = %v", err)
	}
	bash := addPkg(s, installed, "bash", "5.1-1", "x86_64")

	g := New(s)
	g.Erase(bash, false)
	if err := g.Solve(0); err != nil {
		t.Fatalf("Solve() = %v", err)
	}
	erasures := g.ListErasures()
	if len(erasures) != 1 || erasures[0] != bash {
		t.Fatalf("ListErasures() = %v, want [%d]", erasures, bash)
	}
}

func TestSolveLockedPackageRejectsInstall(t *testing.T) {
	s := newTestSack(t)
	repo := s.Pool().NewRepo("fedora")
	bash := addPkg(s, repo, "bash", "5.1-1", "x86_64")

	g := New(s)
	g.Lock(bash)
	g.Install(bash)
	if err := g.Solve(0); err != nil {
		t.Fatalf("Solve() = %v", err)
	}
	if len(g.ListInstalls()) != 0 {
		t.Fatalf("a locked install job should not select the package: %v", g.ListInstalls())
	}
}

func TestCheckProtectedRemovals(t *testing.T) {
	s := newTestSack(t)
	p := s.Pool()
	installed := p.NewRepo("@System")
	if err := p.SetInstalledRepo(installed); err != nil {
		t.Fatalf("SetInstalledRepo() = %v", err)
	}
	bash := addPkg(s, installed, "bash", "5.1-1", "x86_64")

	protectedSet := pool.NewPackageSet()
	protectedSet.Add(bash)

	g := New(s)
	g.SetProtected(protectedSet)
	g.Erase(bash, false)
	if err := g.Solve(0); err != nil {
		t.Fatalf("Solve() = %v", err)
	}
	if !g.RemovalOfProtected() {
		t.Fatalf("RemovalOfProtected() = false, want true")
	}
	if g.CountProblems() == 0 {
		t.Fatalf("CountProblems() = 0, want at least 1 for the protected removal")
	}
	lines := g.DescribeProblemRules(0)
	want := "The operation would result in removing the following protected packages: bash"
	if len(lines) != 1 || lines[0] != want {
		t.Fatalf("DescribeProblemRules(0) = %v, want [%q]", lines, want)
	}
}

func TestSolveConflictingPackagesRaisesProblemConflict(t *testing.T) {
	s := newTestSack(t)
	p := s.Pool()
	repo := p.NewRepo("fedora")
	postfix := addPkg(s, repo, "postfix", "3.5-1", "x86_64")
	sendmail := repo.AddSolvable(pool.Solvable{
		Name:      p.Intern("sendmail"),
		Evr:       p.Intern("8.15-1"),
		Arch:      p.Intern("x86_64"),
		Conflicts: []pool.Id{dependency.NewName(p, "postfix").Id},
	})

	g := New(s)
	g.Install(postfix)
	g.Install(sendmail)
	if err := g.Solve(0); err != nil {
		t.Fatalf("Solve() = %v", err)
	}
	if g.CountProblems() == 0 {
		t.Fatalf("CountProblems() = 0, want at least 1 for the postfix/sendmail conflict")
	}
	found := false
	for _, rule := range g.Problems()[len(g.Problems())-1].Rules {
		if rule.Type == ProblemConflict {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a ProblemConflict rule among %v", g.Problems())
	}
}

func TestSolveBacktracksPastConflictingProvider(t *testing.T) {
	s := newTestSack(t)
	p := s.Pool()

	installed := p.NewRepo("@System")
	if err := p.SetInstalledRepo(installed); err != nil {
		t.Fatalf("SetInstalledRepo() = %v", err)
	}
	installed.AddSolvable(pool.Solvable{
		Name:      p.Intern("base-config"),
		Evr:       p.Intern("1-1"),
		Arch:      p.Intern("x86_64"),
		Conflicts: []pool.Id{dependency.NewName(p, "sendmail").Id},
	})

	repo := p.NewRepo("fedora")
	postfix := repo.AddSolvable(pool.Solvable{
		Name:     p.Intern("postfix"),
		Evr:      p.Intern("3.5-1"),
		Arch:     p.Intern("x86_64"),
		Provides: []pool.Id{dependency.NewName(p, "mta").Id},
	})
	repo.AddSolvable(pool.Solvable{
		Name:     p.Intern("sendmail"),
		Evr:      p.Intern("8.15-1"),
		Arch:     p.Intern("x86_64"),
		Provides: []pool.Id{dependency.NewName(p, "mta").Id},
	})
	app := repo.AddSolvable(pool.Solvable{
		Name:     p.Intern("app"),
		Evr:      p.Intern("1.0-1"),
		Arch:     p.Intern("x86_64"),
		Requires: []pool.Id{dependency.NewName(p, "mta").Id},
	})

	g := New(s)
	g.Install(app)
	if err := g.Solve(0); err != nil {
		t.Fatalf("Solve() = %v", err)
	}
	if g.CountProblems() != 0 {
		t.Fatalf("CountProblems() = %d, want 0 (conflicting provider should be backtracked past): %v",
			g.CountProblems(), g.Problems())
	}
	installs := g.ListInstalls()
	if !containsID(installs, postfix) {
		t.Fatalf("ListInstalls() = %v, want postfix (id %d) selected after backtracking past conflicting sendmail", installs, postfix)
	}
}

func containsID(ids []pool.Id, want pool.Id) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

func TestInstallSelectorErrorsWhenNoMatch(t *testing.T) {
	s := newTestSack(t)
	g := New(s)
	sel := selector.New(s).SetName(0, "nonexistent")
	if err := g.InstallSelector(sel); err == nil {
		t.Fatalf("InstallSelector() with no matches should error")
	}
}

func TestFormatAllProblemRulesSingular(t *testing.T) {
	s := newTestSack(t)
	p := s.Pool()
	repo := p.NewRepo("fedora")
	app := repo.AddSolvable(pool.Solvable{
		Name:     p.Intern("app"),
		Evr:      p.Intern("1.0-1"),
		Arch:     p.Intern("x86_64"),
		Requires: []pool.Id{requires(p, "missing-lib")},
	})

	g := New(s)
	g.Install(app)
	if err := g.Solve(0); err != nil {
		t.Fatalf("Solve() = %v", err)
	}
	out := g.FormatAllProblemRules()
	if out == "" {
		t.Fatalf("FormatAllProblemRules() returned empty for an unsatisfiable solve")
	}
	if out[:9] != "Problem: " {
		t.Fatalf("FormatAllProblemRules() = %q, want it to start with %q", out, "Problem: ")
	}
}

func TestUnneededResolver(t *testing.T) {
	s := newTestSack(t)
	p := s.Pool()
	installed := p.NewRepo("@System")
	if err := p.SetInstalledRepo(installed); err != nil {
		t.Fatalf("SetInstalledRepo() = %v", err)
	}
	userPkg := addPkg(s, installed, "app", "1.0-1", "x86_64")
	orphan := addPkg(s, installed, "leftover-lib", "1.0-1", "x86_64")

	g := New(s)
	userSet := pool.NewPackageSet()
	userSet.Add(userPkg)

	resolver := NewUnneededResolver(g, stubHistory{userInstalled: userSet})
	unneeded, err := resolver.Unneeded(false)
	if err != nil {
		t.Fatalf("Unneeded() = %v", err)
	}
	if !unneeded.Contains(orphan) {
		t.Fatalf("Unneeded() = %v, want it to contain the orphaned leftover-lib (%d)", unneeded.ToSlice(), orphan)
	}
	if unneeded.Contains(userPkg) {
		t.Fatalf("Unneeded() should not contain the user-installed package %d", userPkg)
	}
}

type stubHistory struct{ userInstalled *pool.PackageSet }

func (h stubHistory) FilterUserInstalled(installed *pool.PackageSet) (*pool.PackageSet, error) {
	return h.userInstalled.Intersection(installed), nil
}
