package history

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpmpkg/core/internal/log"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared", log.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBeginAddEndTransaction(t *testing.T) {
	s := newTestStore(t)

	id, err := s.BeginTransaction(1000, "rpmdb-v1", "dnf install bash", 0)
	require.NoError(t, err)
	require.NotZero(t, id)

	itemID, err := s.AddItem(id, RPM{ItemID: 1, Name: "bash", Version: "5.1", Release: "4.fc35", Arch: "x86_64"},
		"fedora", ActionInstall, ReasonUser)
	require.NoError(t, err)
	require.NotZero(t, itemID)

	require.NoError(t, s.AddConsoleLine(id, 1, "Installing bash-5.1-4.fc35.x86_64"))
	require.NoError(t, s.SetItemDone("bash-5.1-4.fc35.x86_64"))
	require.NoError(t, s.EndTransaction(id, 1010, "rpmdb-v2", StateDone))

	txn, err := s.GetTransaction(id)
	require.NoError(t, err)
	require.Equal(t, StateDone, txn.State)
	require.Len(t, txn.Items, 1)
	require.Equal(t, ItemDone, txn.Items[0].State)
	require.Equal(t, "bash", txn.Items[0].RPM.Name)
	require.Len(t, txn.ConsoleOutput, 1)
}

func TestEndTransactionRejectsNonTerminalState(t *testing.T) {
	s := newTestStore(t)
	id, err := s.BeginTransaction(1000, "v1", "dnf upgrade", 0)
	require.NoError(t, err)

	err = s.EndTransaction(id, 1010, "v2", StateInProgress)
	require.Error(t, err)
}

func TestGetLastTransactionAndListTransactions(t *testing.T) {
	s := newTestStore(t)
	var last int64
	for i := 0; i < 3; i++ {
		id, err := s.BeginTransaction(int64(1000+i), "v", "cmd", 0)
		require.NoError(t, err)
		require.NoError(t, s.EndTransaction(id, int64(1000+i), "v", StateDone))
		last = id
	}

	lastTxn, err := s.GetLastTransaction()
	require.NoError(t, err)
	require.Equal(t, last, lastTxn.ID)

	ids, err := s.ListTransactions()
	require.NoError(t, err)
	require.Len(t, ids, 3)
	require.True(t, ids[0] > ids[1] && ids[1] > ids[2])
}

func TestGetRpmTransactionItemExcludesSupersededActions(t *testing.T) {
	s := newTestStore(t)

	id1, err := s.BeginTransaction(1000, "v1", "dnf install foo", 0)
	require.NoError(t, err)
	_, err = s.AddItem(id1, RPM{ItemID: 1, Name: "foo", Version: "1.0", Release: "1", Arch: "x86_64"}, "repo", ActionInstall, ReasonUser)
	require.NoError(t, err)
	require.NoError(t, s.EndTransaction(id1, 1001, "v2", StateDone))

	id2, err := s.BeginTransaction(1002, "v2", "dnf upgrade foo", 0)
	require.NoError(t, err)
	_, err = s.AddItem(id2, RPM{ItemID: 2, Name: "foo", Version: "2.0", Release: "1", Arch: "x86_64"}, "repo", ActionUpgrade, ReasonDep)
	require.NoError(t, err)
	_, err = s.AddItem(id2, RPM{ItemID: 1, Name: "foo", Version: "1.0", Release: "1", Arch: "x86_64"}, "repo", ActionUpgraded, ReasonDep)
	require.NoError(t, err)
	require.NoError(t, s.EndTransaction(id2, 1003, "v3", StateDone))

	item, err := s.GetRpmTransactionItem("foo-2.0-1.x86_64")
	require.NoError(t, err)
	require.NotNil(t, item)
	require.Equal(t, ActionUpgrade, item.Action)

	superseded, err := s.GetRpmTransactionItem("foo-1.0-1.x86_64")
	require.NoError(t, err)
	require.Nil(t, superseded)
}

func TestResolveRpmTransactionItemReasonDefaultsToUnknown(t *testing.T) {
	s := newTestStore(t)
	reason, err := s.ResolveRpmTransactionItemReason("never-installed", "x86_64", 1<<30)
	require.NoError(t, err)
	require.Equal(t, ReasonUnknown, reason)
}

func TestSearchTransactionsByRpm(t *testing.T) {
	s := newTestStore(t)
	id, err := s.BeginTransaction(1000, "v1", "dnf install foo bar", 0)
	require.NoError(t, err)
	_, err = s.AddItem(id, RPM{ItemID: 1, Name: "foo", Version: "1.0", Release: "1", Arch: "x86_64"}, "repo", ActionInstall, ReasonUser)
	require.NoError(t, err)
	_, err = s.AddItem(id, RPM{ItemID: 2, Name: "bar", Version: "1.0", Release: "1", Arch: "x86_64"}, "repo", ActionInstall, ReasonDep)
	require.NoError(t, err)
	require.NoError(t, s.EndTransaction(id, 1001, "v2", StateDone))

	ids, err := s.SearchTransactionsByRpm([]string{"foo"})
	require.NoError(t, err)
	require.Equal(t, []int64{id}, ids)

	ids, err = s.SearchTransactionsByRpm([]string{"nonexistent"})
	require.NoError(t, err)
	require.Empty(t, ids)
}
