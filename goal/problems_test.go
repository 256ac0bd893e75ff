package goal

import (
	"strings"
	"testing"

	"github.com/rpmpkg/core/pool"
)

func TestDescribeProblemRulesOutOfRange(t *testing.T) {
	s := newTestSack(t)
	g := New(s)
	if rules := g.DescribeProblemRules(0); rules != nil {
		t.Fatalf("DescribeProblemRules() on an empty problem set = %v, want nil", rules)
	}
}

func TestDescribeProblemRulesDedupesIdenticalLines(t *testing.T) {
	s := newTestSack(t)
	g := New(s)
	g.lastProblems = []Problem{{Rules: []ProblemRule{
		{Type: ProblemNoCapability, Source: pool.NoId, Dep: pool.NoId},
		{Type: ProblemNoCapability, Source: pool.NoId, Dep: pool.NoId},
	}}}
	lines := g.DescribeProblemRules(0)
	if len(lines) != 1 {
		t.Fatalf("DescribeProblemRules() = %v, want exactly one deduped line", lines)
	}
}

func TestFormatAllProblemRulesMultiple(t *testing.T) {
	s := newTestSack(t)
	g := New(s)
	g.lastProblems = []Problem{
		{Rules: []ProblemRule{{Type: ProblemNoCapability, Source: pool.NoId, Dep: pool.NoId}}},
		{Rules: []ProblemRule{{Type: ProblemConflict, Source: pool.NoId, Target: pool.NoId, Dep: pool.NoId}}},
	}
	out := g.FormatAllProblemRules()
	if !strings.Contains(out, "Problem 1:") || !strings.Contains(out, "Problem 2:") {
		t.Fatalf("FormatAllProblemRules() = %q, want numbered problems", out)
	}
}

func TestFormatAllProblemRulesEmpty(t *testing.T) {
	s := newTestSack(t)
	g := New(s)
	if out := g.FormatAllProblemRules(); out != "" {
		t.Fatalf("FormatAllProblemRules() with no problems = %q, want empty", out)
	}
}
