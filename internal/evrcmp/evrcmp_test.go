package evrcmp

import "testing"

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func TestCompareStrings(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.0-1", "1.0-1", 0},
		{"1.0-1", "1.0-2", -1},
		{"1.0-2", "1.0-1", 1},
		{"1.1", "1.2", -1},
		{"1.10", "1.9", 1},
		{"1:1.0-1", "2.0-1", 1},
		{"1.0alpha", "1.0", 1},
		{"1.0", "1.0alpha", -1},
		{"1.0a", "1.0b", -1},
		{"5.1-4.fc35", "5.1-4.fc35", 0},
	}
	for _, c := range cases {
		got := sign(CompareStrings(c.a, c.b))
		if got != c.want {
			t.Errorf("CompareStrings(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestCompareIsAntisymmetric(t *testing.T) {
	pairs := [][2]string{
		{"1.0-1", "1.0-2"}, {"2.3.4", "2.3.4a"}, {"1:1.0", "0:9.0"}, {"a", "b"},
	}
	for _, p := range pairs {
		fwd := Compare(Parse(p[0]), Parse(p[1]))
		bwd := Compare(Parse(p[1]), Parse(p[0]))
		if sign(fwd) != -sign(bwd) {
			t.Errorf("Compare(%v,%v)=%d not antisymmetric with Compare(%v,%v)=%d", p[0], p[1], fwd, p[1], p[0], bwd)
		}
	}
}

func TestParseEpoch(t *testing.T) {
	e := Parse("2:5.1-4.fc35")
	if e.Epoch != 2 || e.Version != "5.1" || e.Release != "4.fc35" {
		t.Fatalf("Parse epoch:version-release got %+v", e)
	}

	noEpoch := Parse("5.1-4.fc35")
	if noEpoch.Epoch != 0 || noEpoch.Version != "5.1" || noEpoch.Release != "4.fc35" {
		t.Fatalf("Parse version-release got %+v", noEpoch)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	e := EVR{Epoch: 1, Version: "2.3", Release: "4"}
	if got := e.Render(); got != "1:2.3-4" {
		t.Fatalf("Render() = %q, want 1:2.3-4", got)
	}
	if got := Parse(e.Render()); got != e {
		t.Fatalf("Parse(Render(e)) = %+v, want %+v", got, e)
	}
}
