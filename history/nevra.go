package history

import (
	"strconv"
	"strings"

	"github.com/rpmpkg/core/internal/errkind"
)

// splitNevra parses "name-[epoch:]version-release.arch" into its parts.
// Unlike the query engine's lenient splitter, history needs an exact,
// fully-parsed nevra since it keys rows on (name, epoch, version, release,
// arch) rather than matching against a rendered string.
func splitNevra(raw string) (name string, epoch int, version, release, arch string, err error) {
	dot := strings.LastIndexByte(raw, '.')
	if dot < 0 {
		return "", 0, "", "", "", errkind.New(errkind.BadQuery, "history: malformed nevra (missing arch): "+raw)
	}
	arch = raw[dot+1:]
	rest := raw[:dot]

	lastDash := strings.LastIndexByte(rest, '-')
	if lastDash < 0 {
		return "", 0, "", "", "", errkind.New(errkind.BadQuery, "history: malformed nevra (missing release): "+raw)
	}
	release = rest[lastDash+1:]
	rest = rest[:lastDash]

	secondDash := strings.LastIndexByte(rest, '-')
	if secondDash < 0 {
		return "", 0, "", "", "", errkind.New(errkind.BadQuery, "history: malformed nevra (missing version): "+raw)
	}
	name = rest[:secondDash]
	verPart := rest[secondDash+1:]

	if colon := strings.IndexByte(verPart, ':'); colon >= 0 {
		e, convErr := strconv.Atoi(verPart[:colon])
		if convErr != nil {
			return "", 0, "", "", "", errkind.New(errkind.BadQuery, "history: malformed nevra epoch: "+raw)
		}
		epoch = e
		version = verPart[colon+1:]
	} else {
		version = verPart
	}
	return name, epoch, version, release, arch, nil
}
