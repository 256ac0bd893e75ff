package sack

import (
	"strings"
	"testing"
)

func TestLoadConfigFileRoundTrip(t *testing.T) {
	const doc = `
[main]
cachedir = "/var/cache/hawkey"
arch = "x86_64"
installonly_limit = 3
installonlypkgs = ["kernel", "kernel-core"]
`
	cfg, err := LoadConfigFile(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadConfigFile() = %v", err)
	}
	if cfg.CacheDir != "/var/cache/hawkey" || cfg.Arch != "x86_64" || cfg.InstallonlyLimit != 3 {
		t.Fatalf("LoadConfigFile() = %+v, unexpected values", cfg)
	}
	if len(cfg.Installonly) != 2 || cfg.Installonly[0] != "kernel" {
		t.Fatalf("LoadConfigFile() installonlypkgs = %v", cfg.Installonly)
	}
}

func TestConfigMarshalUnmarshalRoundTrip(t *testing.T) {
	cfg := Config{CacheDir: "/tmp/cache", Arch: "aarch64", InstallonlyLimit: 2, Installonly: []string{"kernel"}}
	out, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	back, err := LoadConfigFile(strings.NewReader(string(out)))
	if err != nil {
		t.Fatalf("LoadConfigFile(Marshal()) = %v", err)
	}
	if back.CacheDir != cfg.CacheDir || back.Arch != cfg.Arch || back.InstallonlyLimit != cfg.InstallonlyLimit {
		t.Fatalf("round trip = %+v, want %+v", back, cfg)
	}
}
