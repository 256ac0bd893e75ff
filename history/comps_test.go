package history

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompsGroupRoundTrip(t *testing.T) {
	s := newTestStore(t)
	id, err := s.BeginTransaction(1000, "v1", "dnf group install", 0)
	require.NoError(t, err)
	itemID, err := s.AddItem(id, RPM{ItemID: 1, Name: "group-marker", Version: "1", Release: "1", Arch: "noarch"},
		"repo", ActionInstall, ReasonUser)
	require.NoError(t, err)

	group := CompsGroup{
		ItemID:   itemID,
		GroupID:  "development",
		Name:     "Development Tools",
		PkgTypes: 1,
		Packages: []CompsGroupPackage{
			{Name: "gcc", Installed: true, PkgType: 1},
			{Name: "make", Installed: true, PkgType: 1},
		},
	}
	require.NoError(t, s.AddCompsGroup(group))

	got, err := s.GetCompsGroup(itemID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "development", got.GroupID)
	require.Len(t, got.Packages, 2)
}

func TestCompsEnvironmentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	id, err := s.BeginTransaction(1000, "v1", "dnf environment install", 0)
	require.NoError(t, err)
	itemID, err := s.AddItem(id, RPM{ItemID: 1, Name: "env-marker", Version: "1", Release: "1", Arch: "noarch"},
		"repo", ActionInstall, ReasonUser)
	require.NoError(t, err)

	env := CompsEnvironment{
		ItemID:   itemID,
		EnvironmentID: "workstation",
		Name:     "Workstation",
		PkgTypes: 1,
		Groups: []CompsEnvironmentGroup{
			{GroupID: "development", Installed: true, GroupType: 1},
		},
	}
	require.NoError(t, s.AddCompsEnvironment(env))

	got, err := s.GetCompsEnvironment(itemID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "workstation", got.EnvironmentID)
	require.Len(t, got.Groups, 1)
}
