package sack

import (
	"bytes"
	"io"
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// rawConfig mirrors the on-disk TOML layout of a dnf.conf-style config file
// (spec §6): a single [main] table holding the Config fields a deployment
// wants to pin rather than leave to CLI flags/autodetection.
type rawConfig struct {
	Main rawMain `toml:"main"`
}

type rawMain struct {
	CacheDir         string   `toml:"cachedir"`
	Arch             string   `toml:"arch"`
	AllArch          bool     `toml:"all_arch"`
	RootDir          string   `toml:"installroot"`
	InstallonlyLimit uint32   `toml:"installonly_limit"`
	Installonly      []string `toml:"installonlypkgs"`
}

// LoadConfigFile reads a dnf.conf-style TOML config from r and returns the
// Config it describes. Fields absent from the file are left zero-valued for
// normalize() to fill in.
func LoadConfigFile(r io.Reader) (Config, error) {
	buf := &bytes.Buffer{}
	if _, err := buf.ReadFrom(r); err != nil {
		return Config{}, errors.Wrap(err, "reading config file")
	}
	var raw rawConfig
	if err := toml.Unmarshal(buf.Bytes(), &raw); err != nil {
		return Config{}, errors.Wrap(err, "parsing config file as TOML")
	}
	return Config{
		CacheDir:         raw.Main.CacheDir,
		Arch:             raw.Main.Arch,
		AllArch:          raw.Main.AllArch,
		RootDir:          raw.Main.RootDir,
		InstallonlyLimit: raw.Main.InstallonlyLimit,
		Installonly:      raw.Main.Installonly,
	}, nil
}

// LoadConfigPath opens path and delegates to LoadConfigFile.
func LoadConfigPath(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "opening config file %s", path)
	}
	defer f.Close()
	return LoadConfigFile(f)
}

// Marshal renders c back to the [main]-table TOML form LoadConfigFile
// accepts, for tooling that wants to persist an effective configuration.
func (c Config) Marshal() ([]byte, error) {
	raw := rawConfig{Main: rawMain{
		CacheDir:         c.CacheDir,
		Arch:             c.Arch,
		AllArch:          c.AllArch,
		RootDir:          c.RootDir,
		InstallonlyLimit: c.InstallonlyLimit,
		Installonly:      c.Installonly,
	}}
	out, err := toml.Marshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling config to TOML")
	}
	return out, nil
}
