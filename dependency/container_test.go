package dependency

import (
	"testing"

	"github.com/rpmpkg/core/pool"
)

func TestContainerPreservesInsertionOrder(t *testing.T) {
	p := pool.New()
	c := NewContainer(p)
	c.Add(NewName(p, "bash"))
	c.Add(NewName(p, "zsh"))
	c.Add(NewName(p, "bash")) // duplicates allowed

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	names := []string{c.Get(0).Name(), c.Get(1).Name(), c.Get(2).Name()}
	want := []string{"bash", "zsh", "bash"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Get(%d) = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestContainerCloneIsIndependent(t *testing.T) {
	p := pool.New()
	c := NewContainer(p)
	c.Add(NewName(p, "bash"))

	clone := c.Clone()
	clone.Add(NewName(p, "zsh"))

	if c.Len() != 1 {
		t.Fatalf("mutating a clone affected the original: Len() = %d, want 1", c.Len())
	}
	if clone.Len() != 2 {
		t.Fatalf("clone.Len() = %d, want 2", clone.Len())
	}
}

func TestContainerFromIdsCopies(t *testing.T) {
	p := pool.New()
	ids := []pool.Id{p.Intern("bash"), p.Intern("zsh")}
	c := ContainerFromIds(p, ids)
	ids[0] = pool.NoId

	if c.Get(0).Id == pool.NoId {
		t.Fatalf("ContainerFromIds should copy the id slice, not alias it")
	}
}

func TestContainerEach(t *testing.T) {
	p := pool.New()
	c := NewContainer(p)
	c.Add(NewName(p, "bash"))
	c.Add(NewName(p, "zsh"))

	var seen []string
	c.Each(func(r Reldep) { seen = append(seen, r.Name()) })
	if len(seen) != 2 || seen[0] != "bash" || seen[1] != "zsh" {
		t.Fatalf("Each() visited %v, want [bash zsh]", seen)
	}
}
