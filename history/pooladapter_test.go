package history

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpmpkg/core/pool"
)

func TestPoolAdapterFilterUserInstalled(t *testing.T) {
	s := newTestStore(t)

	id, err := s.BeginTransaction(1000, "v1", "dnf install bash vim", 0)
	require.NoError(t, err)
	_, err = s.AddItem(id, RPM{ItemID: 1, Name: "bash", Version: "5.1", Release: "1", Arch: "x86_64"}, "repo", ActionInstall, ReasonUser)
	require.NoError(t, err)
	_, err = s.AddItem(id, RPM{ItemID: 2, Name: "readline", Version: "8.1", Release: "1", Arch: "x86_64"}, "repo", ActionInstall, ReasonDep)
	require.NoError(t, err)
	require.NoError(t, s.EndTransaction(id, 1001, "v2", StateDone))

	p := pool.New()
	sys := p.NewRepo("system")
	require.NoError(t, p.SetInstalledRepo(sys))
	bashID := sys.AddSolvable(pool.Solvable{
		Name: p.Intern("bash"), Evr: p.Intern("5.1-1"), Arch: p.Intern("x86_64"),
	})
	readlineID := sys.AddSolvable(pool.Solvable{
		Name: p.Intern("readline"), Evr: p.Intern("8.1-1"), Arch: p.Intern("x86_64"),
	})

	installed := pool.PackageSetFromIds(bashID, readlineID)
	adapter := NewPoolAdapter(s, p)
	userInstalled, err := adapter.FilterUserInstalled(installed)
	require.NoError(t, err)

	require.True(t, userInstalled.Contains(bashID))
	require.False(t, userInstalled.Contains(readlineID))
}
