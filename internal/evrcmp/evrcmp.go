// Package evrcmp compares RPM-style epoch:version-release strings.
//
// The algorithm is the classic rpmvercmp segment walk: strings are split into
// alternating runs of digits and non-digits, each run compared in turn
// (numeric runs compared as numbers, alphabetic runs lexically), with a
// leading digit run always outranking a leading alpha run. It is grounded on
// the comparator libdnf delegates to libsolv's pool_evrcmp_str, as described
// in hy-iutil.cpp and exercised throughout dnf-sack.cpp's filter_latest code.
package evrcmp

import "strings"

// EVR is a parsed epoch:version-release triple.
type EVR struct {
	Epoch   int
	Version string
	Release string
}

// Parse splits "[epoch:]version[-release]" into its components. A missing
// epoch defaults to 0, matching RPM's convention that unset epoch compares
// equal to epoch 0.
func Parse(s string) EVR {
	var e EVR
	if i := strings.IndexByte(s, ':'); i >= 0 {
		if n, ok := atoiSafe(s[:i]); ok {
			e.Epoch = n
			s = s[i+1:]
		}
	}
	if i := strings.LastIndexByte(s, '-'); i >= 0 {
		e.Version = s[:i]
		e.Release = s[i+1:]
	} else {
		e.Version = s
	}
	return e
}

func atoiSafe(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// Render reassembles an EVR into its canonical "[epoch:]version[-release]"
// string form, used when a Nevra filter needs to match against a rendered
// segment.
func (e EVR) Render() string {
	var b strings.Builder
	if e.Epoch != 0 {
		b.WriteString(itoa(e.Epoch))
		b.WriteByte(':')
	}
	b.WriteString(e.Version)
	if e.Release != "" {
		b.WriteByte('-')
		b.WriteString(e.Release)
	}
	return b.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Compare implements the total order required by spec: Compare(a,b) =
// -Compare(b,a), and is transitive on equality. Epoch is compared first,
// then version, then release, each via segCompare.
func Compare(a, b EVR) int {
	if a.Epoch != b.Epoch {
		if a.Epoch < b.Epoch {
			return -1
		}
		return 1
	}
	if c := segCompare(a.Version, b.Version); c != 0 {
		return c
	}
	return segCompare(a.Release, b.Release)
}

// CompareStrings parses both operands and compares them; a convenience for
// callers holding rendered EVR strings rather than parsed EVR values.
func CompareStrings(a, b string) int {
	return Compare(Parse(a), Parse(b))
}

// segCompare compares one version or release segment using the rpmvercmp
// algorithm: walk both strings in parallel, splitting off alternating
// alphabetic/numeric runs, comparing each run, until a difference is found or
// one string is exhausted.
func segCompare(a, b string) int {
	if a == b {
		return 0
	}

	for len(a) > 0 || len(b) > 0 {
		// Skip non-alphanumeric separators (rpmvercmp treats them as
		// boundaries but otherwise ignores them).
		a = strings.TrimLeftFunc(a, isSeparator)
		b = strings.TrimLeftFunc(b, isSeparator)

		if a == "" || b == "" {
			break
		}

		var aRun, bRun string
		if isDigit(a[0]) {
			aRun, a = splitRun(a, isDigit)
			if !isDigit(b[0]) {
				// Numeric segment always wins over alphabetic.
				return 1
			}
			bRun, b = splitRun(b, isDigit)
			if c := compareNumeric(aRun, bRun); c != 0 {
				return c
			}
		} else {
			aRun, a = splitRun(a, isAlpha)
			if isDigit(b[0]) {
				return -1
			}
			bRun, b = splitRun(b, isAlpha)
			if c := strings.Compare(aRun, bRun); c != 0 {
				if c < 0 {
					return -1
				}
				return 1
			}
		}
	}

	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func isSeparator(r rune) bool {
	return !isDigit(byte(r)) && !isAlpha(byte(r))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func splitRun(s string, pred func(byte) bool) (run, rest string) {
	i := 0
	for i < len(s) && pred(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// compareNumeric compares two runs of digits as numbers, ignoring leading
// zeroes, without risking overflow on arbitrarily long digit runs.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
