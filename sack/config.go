package sack

import (
	"fmt"
	"os"
	"os/user"
	"runtime"

	"golang.org/x/sys/unix"
)

// Config holds the configuration options recognised by the sack (spec §6).
type Config struct {
	// CacheDir is where the checksum cache database (provides.db) lives.
	// Defaults per DefaultCacheDir if empty.
	CacheDir string
	// Arch is the system architecture; AutodetectArch() fills it in if empty.
	Arch string
	// AllArch is read from and written to config files, but no code in the
	// query engine or the goal consults it: arch-compatibility checks apply
	// whatever its value.
	AllArch bool
	// RootDir is the install root. A non-"/" RootDir disables the running
	// kernel resolver (spec §4.1).
	RootDir string
	// InstallonlyLimit caps how many installonly-provider versions may
	// coexist; 0 disables enforcement.
	InstallonlyLimit uint32
	// Installonly lists provide-names treated as installonly (e.g. "kernel").
	Installonly []string
	// UseIncludesPerRepo overrides the default use_includes=true behaviour
	// per repo name.
	UseIncludesPerRepo map[string]bool
}

// DefaultCacheDir mirrors the convention in spec §6: a per-user temp path
// when unprivileged, /var/cache/hawkey when root.
func DefaultCacheDir() string {
	if os.Geteuid() == 0 {
		return "/var/cache/hawkey"
	}
	u, err := user.Current()
	name := "unknown"
	if err == nil {
		name = u.Username
	}
	return fmt.Sprintf("%s/hawkey-%s-XXXXXX", os.TempDir(), name)
}

// AutodetectArch resolves the running system's architecture via uname(2), the
// same primitive the teacher's cmd_unix.go/cmd_windows.go split uses for
// platform-specific syscalls.
func AutodetectArch() (string, error) {
	if runtime.GOOS == "windows" {
		return runtime.GOARCH, nil
	}
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", err
	}
	return cString(uts.Machine[:]), nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// normalize fills in defaults and returns a copy safe to store on a Sack.
func (c Config) normalize() (Config, error) {
	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir()
	}
	if c.Arch == "" {
		a, err := AutodetectArch()
		if err != nil {
			return c, err
		}
		c.Arch = a
	}
	if c.UseIncludesPerRepo == nil {
		c.UseIncludesPerRepo = make(map[string]bool)
	}
	return c, nil
}
