package history

import "sort"

// MergedTransaction is the read-only view over a contiguous or sparse range
// of transactions, collapsed per spec §4.4's "Merged transaction" rules.
type MergedTransaction struct {
	DtBegin           int64
	DtEnd             int64
	RpmdbVersionBegin string
	RpmdbVersionEnd   string

	ListIDs  []int64
	UserIDs  []int64
	Cmdlines []string
	Done     []bool

	ConsoleOutput        []ConsoleLine
	SoftwarePerformedWith []string

	// Items is the net per-(name,arch) effect across the merged range (design
	// note 9.1): adjacent Install/Remove and Downgrade/Upgrade pairs cancel
	// out, and each remaining chain is reported by its last item.
	Items []Item
}

// MergeTransactions builds the merged view over txns, which must be sorted
// ascending by id; callers typically pass Store.GetTransaction results for a
// contiguous id range.
func MergeTransactions(txns []*Transaction) *MergedTransaction {
	if len(txns) == 0 {
		return &MergedTransaction{}
	}

	sorted := make([]*Transaction, len(txns))
	copy(sorted, txns)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	m := &MergedTransaction{
		DtBegin:           sorted[0].DtBegin,
		DtEnd:             sorted[len(sorted)-1].DtEnd,
		RpmdbVersionBegin: sorted[0].RpmdbVersionBegin,
		RpmdbVersionEnd:   sorted[len(sorted)-1].RpmdbVersionEnd,
	}

	withSeen := make(map[string]bool)
	for _, t := range sorted {
		m.ListIDs = append(m.ListIDs, t.ID)
		m.UserIDs = append(m.UserIDs, t.UserID)
		m.Cmdlines = append(m.Cmdlines, t.Cmdline)
		m.Done = append(m.Done, t.State == StateDone)
		m.ConsoleOutput = append(m.ConsoleOutput, t.ConsoleOutput...)
		for _, nevra := range t.PerformedWith {
			if !withSeen[nevra] {
				withSeen[nevra] = true
				m.SoftwarePerformedWith = append(m.SoftwarePerformedWith, nevra)
			}
		}
	}

	m.Items = collapseItems(sorted)
	return m
}

type nameArch struct{ name, arch string }

// collapseItems implements design note 9.1: for each (name, arch) pair
// appearing across the merged range, fold its ordered action sequence into a
// single net item, dropping (name,arch) pairs whose net effect is no-op
// (e.g. Install immediately followed by Remove).
func collapseItems(sorted []*Transaction) []Item {
	var order []nameArch
	chains := make(map[nameArch][]Item)

	for _, t := range sorted {
		for _, item := range t.Items {
			if item.RPM == nil {
				continue
			}
			key := nameArch{item.RPM.Name, item.RPM.Arch}
			if _, ok := chains[key]; !ok {
				order = append(order, key)
			}
			chains[key] = append(chains[key], item)
		}
	}

	var out []Item
	for _, key := range order {
		if net, ok := collapseChain(chains[key]); ok {
			out = append(out, net)
		}
	}
	return out
}

// collapseChain folds one (name,arch)'s ordered action list. Cancelling
// pairs (Install followed by Remove, or vice versa) annihilate; a
// Downgrade immediately followed by an Upgrade (or the reverse) collapses to
// the later action, since only the net before/after state is observable.
// Anything left after folding is reported as the chain's final item.
func collapseChain(items []Item) (Item, bool) {
	stack := items[:0:0]
	for _, it := range items {
		if len(stack) > 0 && cancels(stack[len(stack)-1].Action, it.Action) {
			stack = stack[:len(stack)-1]
			continue
		}
		stack = append(stack, it)
	}
	if len(stack) == 0 {
		return Item{}, false
	}
	return stack[len(stack)-1], true
}

func cancels(prev, next Action) bool {
	switch {
	case prev == ActionInstall && next == ActionRemove:
		return true
	case prev == ActionRemove && next == ActionInstall:
		return true
	case prev == ActionDowngrade && next == ActionUpgrade:
		return true
	case prev == ActionUpgrade && next == ActionDowngrade:
		return true
	default:
		return false
	}
}
