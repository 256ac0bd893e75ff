package sack

import "github.com/rpmpkg/core/pool"

// FileProvidesSource is the injected collaborator backing the filelists
// extension (spec §1: repository metadata parsing is out of scope). When
// none is set, File filters degrade to matching nothing rather than erroring.
type FileProvidesSource interface {
	// PackagesProvidingFile returns the solvable ids whose filelist contains
	// the exact path (no trailing slash).
	PackagesProvidingFile(path string) []pool.Id
}

// SetFileProvidesSource installs the filelists-backed lookup used by File
// filters.
func (s *Sack) SetFileProvidesSource(src FileProvidesSource) { s.fileProvides = src }

// FileProvidesSource returns the installed source, if any.
func (s *Sack) FileProvidesSource() (FileProvidesSource, bool) {
	return s.fileProvides, s.fileProvides != nil
}

// AdvisoryPackage names one (name, evr, arch) triple an advisory references.
type AdvisoryPackage struct {
	Name string
	EVR  string
	Arch string
}

// Advisory is the injected updateinfo record (spec §1: updateinfo parsing is
// out of scope) consulted by the Advisory* filter family.
type Advisory struct {
	Name     string
	Type     string
	Severity string
	Bugs     []string
	CVEs     []string
	Packages []AdvisoryPackage
}

// AdvisorySource is the injected collaborator backing the updateinfo
// extension.
type AdvisorySource interface {
	Advisories() []Advisory
}

// SetAdvisorySource installs the updateinfo-backed lookup used by Advisory*
// filters.
func (s *Sack) SetAdvisorySource(src AdvisorySource) { s.advisorySource = src }

// AdvisorySource returns the installed source, if any.
func (s *Sack) AdvisorySource() (AdvisorySource, bool) {
	return s.advisorySource, s.advisorySource != nil
}
