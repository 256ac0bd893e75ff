package history

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeTransactionsOrderAndConcat(t *testing.T) {
	txns := []*Transaction{
		{ID: 2, DtBegin: 200, DtEnd: 210, UserID: 1, Cmdline: "dnf upgrade", State: StateDone,
			ConsoleOutput: []ConsoleLine{{TransID: 2, Line: "second"}},
			PerformedWith: []string{"plugin-a"}},
		{ID: 1, DtBegin: 100, DtEnd: 110, UserID: 1, Cmdline: "dnf install", State: StateDone,
			ConsoleOutput: []ConsoleLine{{TransID: 1, Line: "first"}},
			PerformedWith: []string{"plugin-a", "plugin-b"}},
	}

	m := MergeTransactions(txns)
	require.Equal(t, int64(100), m.DtBegin)
	require.Equal(t, int64(210), m.DtEnd)
	require.Equal(t, []int64{1, 2}, m.ListIDs)
	require.Equal(t, []string{"dnf install", "dnf upgrade"}, m.Cmdlines)
	require.Equal(t, []bool{true, true}, m.Done)
	require.Equal(t, "first", m.ConsoleOutput[0].Line)
	require.Equal(t, "second", m.ConsoleOutput[1].Line)
	require.ElementsMatch(t, []string{"plugin-a", "plugin-b"}, m.SoftwarePerformedWith)
}

func TestCollapseChainCancelsInstallThenRemove(t *testing.T) {
	items := []Item{
		{Action: ActionInstall, RPM: &RPM{Name: "foo", Arch: "x86_64"}},
		{Action: ActionRemove, RPM: &RPM{Name: "foo", Arch: "x86_64"}},
	}
	_, ok := collapseChain(items)
	require.False(t, ok, "install immediately followed by remove should cancel")
}

func TestCollapseChainCollapsesDowngradeUpgrade(t *testing.T) {
	items := []Item{
		{Action: ActionDowngrade, RPM: &RPM{Name: "foo", Arch: "x86_64"}},
		{Action: ActionUpgrade, RPM: &RPM{Name: "foo", Arch: "x86_64"}},
	}
	net, ok := collapseChain(items)
	require.False(t, ok, "downgrade immediately followed by upgrade should cancel to no net change")
	_ = net
}

func TestCollapseChainKeepsNonCancellingSequence(t *testing.T) {
	items := []Item{
		{Action: ActionInstall, RPM: &RPM{Name: "foo", Arch: "x86_64"}},
		{Action: ActionUpgrade, RPM: &RPM{Name: "foo", Arch: "x86_64"}},
	}
	net, ok := collapseChain(items)
	require.True(t, ok)
	require.Equal(t, ActionUpgrade, net.Action)
}
