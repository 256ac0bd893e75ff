package goal

import (
	"fmt"
	"strings"

	"github.com/rpmpkg/core/pool"
)

// DescribeProblemRules renders problem i's rules as human-readable strings
// (spec §4.3): the synthetic protected-removal problem, if present, always
// renders first and on its own; otherwise each rule is rendered through a
// fixed table and duplicate strings within the problem are dropped.
func (g *Goal) DescribeProblemRules(i int) []string {
	if i < 0 || i >= len(g.lastProblems) {
		return nil
	}
	problem := g.lastProblems[i]

	if msg, ok := describeProtectedRemoval(g.sack.Pool(), problem); ok {
		return []string{msg}
	}

	seen := make(map[string]bool)
	var out []string
	for _, rule := range problem.Rules {
		s := describeRule(g.sack.Pool(), rule)
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// describeProtectedRemoval renders the synthetic protected-removal problem
// (goal/results.go's checkProtectedRemovals) as the single combined sentence
// spec §4.3/§7 mandates, naming every hit package once by its bare name
// rather than one line per package in full NEVRA. Reports ok=false for any
// problem that isn't purely ProblemProtected rules, so ordinary solver
// problems keep going through describeRule.
func describeProtectedRemoval(p *pool.Pool, problem Problem) (string, bool) {
	if len(problem.Rules) == 0 {
		return "", false
	}
	names := make([]string, 0, len(problem.Rules))
	for _, rule := range problem.Rules {
		if rule.Type != ProblemProtected {
			return "", false
		}
		names = append(names, p.Str(p.Solvable(rule.Target).Name))
	}
	return "The operation would result in removing the following protected packages: " + strings.Join(names, ", "), true
}

func describeRule(p *pool.Pool, rule ProblemRule) string {
	switch rule.Type {
	case ProblemProtected:
		return fmt.Sprintf("%s is protected and would be removed", p.Str(p.Solvable(rule.Target).Name))
	case ProblemNoCapability:
		return fmt.Sprintf("nothing provides %s needed by %s", p.Str(rule.Dep), nevra(p, rule.Source))
	case ProblemConflict:
		return fmt.Sprintf("%s conflicts with %s provided by %s", nevra(p, rule.Source), p.Str(rule.Dep), nevra(p, rule.Target))
	case ProblemSameName:
		return fmt.Sprintf("cannot install both %s and %s", nevra(p, rule.Source), nevra(p, rule.Target))
	default:
		return "unknown problem rule"
	}
}

func nevra(p *pool.Pool, id pool.Id) string {
	if id == pool.NoId {
		return "<unknown>"
	}
	return p.NEVRA(id)
}

// FormatAllProblemRules implements spec §4.3's all-problems rendering: a
// single problem gets a bare "Problem: " prefix; multiple problems are
// numbered and bulleted.
func (g *Goal) FormatAllProblemRules() string {
	n := len(g.lastProblems)
	if n == 0 {
		return ""
	}

	var b strings.Builder
	if n == 1 {
		b.WriteString("Problem: ")
		writeBullets(&b, g.DescribeProblemRules(0))
		return b.String()
	}

	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "Problem %d: ", i+1)
		writeBullets(&b, g.DescribeProblemRules(i))
	}
	return b.String()
}

func writeBullets(b *strings.Builder, lines []string) {
	for i, l := range lines {
		if i == 0 {
			b.WriteString(l)
			continue
		}
		b.WriteString("\n  - ")
		b.WriteString(l)
	}
}
