package history

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpmpkg/core/internal/errkind"
	"github.com/rpmpkg/core/pool"
)

// BeginTransaction allocates a new trans row in state InProgress and returns
// its id (spec §4.4, "begin_transaction").
func (s *Store) BeginTransaction(dtBegin int64, rpmdbVersionBegin, cmdline string, userID int64) (int64, error) {
	row := s.db.QueryRow(
		`INSERT INTO trans (dt_begin, rpmdb_version_begin, user_id, cmdline, state)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		dtBegin, rpmdbVersionBegin, userID, cmdline, int(StateInProgress))
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, wrapSQL(errkind.Internal, err, "history: begin transaction")
	}
	return id, nil
}

// NewTransactionToken generates an opaque idempotency token for
// BeginTransactionIdempotent: a caller (e.g. a package-manager frontend
// retrying a begin_transaction call after a dropped connection) stamps the
// same token on every retry so only the first attempt creates a row.
func NewTransactionToken() string {
	return uuid.New().String()
}

// BeginTransactionIdempotent behaves like BeginTransaction, but under a
// caller-supplied token: a retried call with the same token returns the
// original row's id instead of inserting a duplicate, via the unique partial
// index on trans.token.
func (s *Store) BeginTransactionIdempotent(token string, dtBegin int64, rpmdbVersionBegin, cmdline string, userID int64) (int64, error) {
	if _, err := uuid.Parse(token); err != nil {
		return 0, errkind.New(errkind.BadQuery, "history: transaction token must be a UUID")
	}

	row := s.db.QueryRow(`SELECT id FROM trans WHERE token = $1`, token)
	var id int64
	switch err := row.Scan(&id); err {
	case nil:
		return id, nil
	case sql.ErrNoRows:
		// fall through to insert
	default:
		return 0, wrapSQL(errkind.Internal, err, "history: lookup transaction by token")
	}

	row = s.db.QueryRow(
		`INSERT INTO trans (dt_begin, rpmdb_version_begin, user_id, cmdline, state, token)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		dtBegin, rpmdbVersionBegin, userID, cmdline, int(StateInProgress), token)
	if err := row.Scan(&id); err != nil {
		return 0, wrapSQL(errkind.Internal, err, "history: begin transaction")
	}
	return id, nil
}

// validAction is add_item's validation: every Action constant is a
// legal trans_item action.
func validAction(a Action) bool {
	return a >= ActionInstall && a <= ActionReason
}

// AddItem appends a pending trans_item row for rpm under transID, recording
// its repo, action and reason (spec §4.4, "add_item").
func (s *Store) AddItem(transID int64, rpm RPM, repoName string, action Action, reason Reason) (int64, error) {
	if !validAction(action) {
		return 0, errkind.New(errkind.BadQuery, fmt.Sprintf("history: invalid trans_item action %d", action))
	}

	repoID, err := s.ensureRepo(repoName)
	if err != nil {
		return 0, err
	}

	row := s.db.QueryRow(
		`INSERT INTO trans_item (trans_id, item_id, repo_id, action, reason, state)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		transID, int64(rpm.ItemID), repoID, int(action), int(reason), int(ItemPending))
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, wrapSQL(errkind.Internal, err, "history: add item")
	}

	_, err = s.db.Exec(
		`INSERT INTO rpm (item_id, name, epoch, version, release, arch)
		 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (item_id) DO NOTHING`,
		int64(rpm.ItemID), rpm.Name, rpm.Epoch, rpm.Version, rpm.Release, rpm.Arch)
	if err != nil {
		return 0, wrapSQL(errkind.Internal, err, "history: add item rpm row")
	}
	return id, nil
}

func (s *Store) ensureRepo(name string) (int64, error) {
	if name == "" {
		return 0, nil
	}
	var id int64
	err := s.db.QueryRow(`SELECT id FROM repo WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, wrapSQL(errkind.Internal, err, "history: lookup repo")
	}
	err = s.db.QueryRow(`INSERT INTO repo (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, wrapSQL(errkind.Internal, err, "history: insert repo")
	}
	return id, nil
}

// SetItemDone transitions the most recent trans_item matching nevra to the
// done state (spec §4.4, "set_item_done").
func (s *Store) SetItemDone(nevra string) error {
	name, epoch, version, release, arch, err := splitNevra(nevra)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(
		`UPDATE trans_item SET state = $1
		 WHERE id = (
		   SELECT ti.id FROM trans_item ti JOIN rpm r ON r.item_id = ti.item_id
		   WHERE r.name = $2 AND r.epoch = $3 AND r.version = $4 AND r.release = $5 AND r.arch = $6
		   ORDER BY ti.id DESC LIMIT 1
		 )`,
		int(ItemDone), name, epoch, version, release, arch)
	if err != nil {
		return wrapSQL(errkind.Internal, err, "history: set item done")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapSQL(errkind.Internal, err, "history: set item done rows affected")
	}
	if n == 0 {
		return errkind.New(errkind.BadQuery, "history: set_item_done: no matching item for "+nevra)
	}
	return nil
}

// EndTransaction closes transID with the given end time, rpmdb version and
// terminal state. Only Done and Error are valid terminal states (spec §4.4,
// "end_transaction").
func (s *Store) EndTransaction(transID, dtEnd int64, rpmdbVersionEnd string, state State) error {
	if state != StateDone && state != StateError {
		return errkind.New(errkind.BadQuery, "history: end_transaction: state must be Done or Error")
	}
	_, err := s.db.Exec(
		`UPDATE trans SET dt_end = $1, rpmdb_version_end = $2, state = $3 WHERE id = $4`,
		dtEnd, rpmdbVersionEnd, int(state), transID)
	if err != nil {
		return wrapSQL(errkind.Internal, err, "history: end transaction")
	}
	return nil
}

func (s *Store) loadTransaction(id int64) (*Transaction, error) {
	t := &Transaction{}
	var dtEnd sql.NullInt64
	var rpmdbEnd, releasever sql.NullString
	var userID sql.NullInt64
	row := s.db.QueryRow(
		`SELECT id, dt_begin, dt_end, rpmdb_version_begin, rpmdb_version_end, releasever, user_id, cmdline, state
		 FROM trans WHERE id = $1`, id)
	if err := row.Scan(&t.ID, &t.DtBegin, &dtEnd, &t.RpmdbVersionBegin, &rpmdbEnd, &releasever, &userID, &t.Cmdline, &t.State); err != nil {
		if err == sql.ErrNoRows {
			return nil, errkind.New(errkind.BadQuery, "history: no such transaction")
		}
		return nil, wrapSQL(errkind.Internal, err, "history: load transaction")
	}
	t.DtEnd = dtEnd.Int64
	t.RpmdbVersionEnd = rpmdbEnd.String
	t.Releasever = releasever.String
	t.UserID = userID.Int64

	items, err := s.loadItems(t.ID)
	if err != nil {
		return nil, err
	}
	t.Items = items

	console, err := s.loadConsole(t.ID)
	if err != nil {
		return nil, err
	}
	t.ConsoleOutput = console

	with, err := s.loadPerformedWith(t.ID)
	if err != nil {
		return nil, err
	}
	t.PerformedWith = with

	return t, nil
}

func (s *Store) loadItems(transID int64) ([]Item, error) {
	rows, err := s.db.Query(
		`SELECT ti.id, ti.trans_id, ti.item_id, COALESCE(r.name, ''), COALESCE(ti.replaced_by, 0),
		        ti.action, ti.reason, ti.state,
		        rp.name, rp.epoch, rp.version, rp.release, rp.arch
		 FROM trans_item ti
		 LEFT JOIN repo r ON r.id = ti.repo_id
		 LEFT JOIN rpm rp ON rp.item_id = ti.item_id
		 WHERE ti.trans_id = $1
		 ORDER BY ti.id ASC`, transID)
	if err != nil {
		return nil, wrapSQL(errkind.Internal, err, "history: load items")
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		var rpmName sql.NullString
		var epoch sql.NullInt64
		var version, release, arch sql.NullString
		if err := rows.Scan(&it.ID, &it.TransID, &it.ItemID, &it.RepoName, &it.ReplacedBy,
			&it.Action, &it.Reason, &it.State, &rpmName, &epoch, &version, &release, &arch); err != nil {
			return nil, wrapSQL(errkind.Internal, err, "history: scan item")
		}
		if rpmName.Valid {
			it.RPM = &RPM{
				ItemID:  it.ItemID,
				Name:    rpmName.String,
				Epoch:   int(epoch.Int64),
				Version: version.String,
				Release: release.String,
				Arch:    arch.String,
			}
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) loadConsole(transID int64) ([]ConsoleLine, error) {
	rows, err := s.db.Query(
		`SELECT id, trans_id, file_descriptor, line FROM console_output WHERE trans_id = $1 ORDER BY id ASC`,
		transID)
	if err != nil {
		return nil, wrapSQL(errkind.Internal, err, "history: load console output")
	}
	defer rows.Close()
	var out []ConsoleLine
	for rows.Next() {
		var l ConsoleLine
		if err := rows.Scan(&l.ID, &l.TransID, &l.FileDescriptor, &l.Line); err != nil {
			return nil, wrapSQL(errkind.Internal, err, "history: scan console line")
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) loadPerformedWith(transID int64) ([]string, error) {
	rows, err := s.db.Query(`SELECT nevra FROM trans_with WHERE trans_id = $1 ORDER BY nevra ASC`, transID)
	if err != nil {
		return nil, wrapSQL(errkind.Internal, err, "history: load performed-with")
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var nevra string
		if err := rows.Scan(&nevra); err != nil {
			return nil, wrapSQL(errkind.Internal, err, "history: scan performed-with")
		}
		out = append(out, nevra)
	}
	return out, rows.Err()
}

// AddConsoleLine appends one console_output row for transID.
func (s *Store) AddConsoleLine(transID int64, fd int, line string) error {
	_, err := s.db.Exec(
		`INSERT INTO console_output (trans_id, file_descriptor, line) VALUES ($1, $2, $3)`,
		transID, fd, line)
	return wrapSQL(errkind.Internal, err, "history: add console line")
}

// AddPerformedWith records nevra as part of transID's "software performed
// with" set.
func (s *Store) AddPerformedWith(transID int64, nevra string) error {
	_, err := s.db.Exec(
		`INSERT INTO trans_with (trans_id, nevra) VALUES ($1, $2)`, transID, nevra)
	return wrapSQL(errkind.Internal, err, "history: add performed-with")
}

// GetLastTransaction returns the transaction with the largest id (spec §4.4,
// "get_last_transaction").
func (s *Store) GetLastTransaction() (*Transaction, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM trans ORDER BY id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapSQL(errkind.Internal, err, "history: get last transaction")
	}
	return s.loadTransaction(id)
}

// ListTransactions returns all transaction ids, descending (spec §4.4,
// "list_transactions").
func (s *Store) ListTransactions() ([]int64, error) {
	rows, err := s.db.Query(`SELECT id FROM trans ORDER BY id DESC`)
	if err != nil {
		return nil, wrapSQL(errkind.Internal, err, "history: list transactions")
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapSQL(errkind.Internal, err, "history: scan transaction id")
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// GetTransaction loads one transaction by id with its items, console output
// and performed-with set.
func (s *Store) GetTransaction(id int64) (*Transaction, error) {
	return s.loadTransaction(id)
}

// GetRpmTransactionItem returns the most recent item for nevra recorded in a
// Done transaction, skipping items whose action is Downgraded, Obsoleted or
// Upgraded (spec §4.4, "get_rpm_transaction_item").
func (s *Store) GetRpmTransactionItem(nevra string) (*Item, error) {
	name, epoch, version, release, arch, err := splitNevra(nevra)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT ti.id, ti.trans_id, ti.item_id, COALESCE(r.name, ''), COALESCE(ti.replaced_by, 0),
		        ti.action, ti.reason, ti.state
		 FROM trans_item ti
		 JOIN rpm rp ON rp.item_id = ti.item_id
		 JOIN trans t ON t.id = ti.trans_id
		 LEFT JOIN repo r ON r.id = ti.repo_id
		 WHERE rp.name = $1 AND rp.epoch = $2 AND rp.version = $3 AND rp.release = $4 AND rp.arch = $5
		   AND t.state = $6
		 ORDER BY ti.id DESC`,
		name, epoch, version, release, arch, int(StateDone))
	if err != nil {
		return nil, wrapSQL(errkind.Internal, err, "history: get rpm transaction item")
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.TransID, &it.ItemID, &it.RepoName, &it.ReplacedBy,
			&it.Action, &it.Reason, &it.State); err != nil {
			return nil, wrapSQL(errkind.Internal, err, "history: scan rpm transaction item")
		}
		if nonGoalActions[it.Action] {
			continue
		}
		return &it, nil
	}
	return nil, rows.Err()
}

// ResolveRpmTransactionItemReason returns the most recent explicit reason
// recorded for (name, arch) in transactions with id ≤ maxID, defaulting to
// Unknown (spec §4.4, "resolve_rpm_transaction_item_reason").
func (s *Store) ResolveRpmTransactionItemReason(name, arch string, maxID int64) (Reason, error) {
	var reason int
	err := s.db.QueryRow(
		`SELECT ti.reason FROM trans_item ti
		 JOIN rpm rp ON rp.item_id = ti.item_id
		 WHERE rp.name = $1 AND rp.arch = $2 AND ti.trans_id <= $3
		 ORDER BY ti.id DESC LIMIT 1`,
		name, arch, maxID).Scan(&reason)
	if err == sql.ErrNoRows {
		return ReasonUnknown, nil
	}
	if err != nil {
		return ReasonUnknown, wrapSQL(errkind.Internal, err, "history: resolve reason")
	}
	return Reason(reason), nil
}

// SearchTransactionsByRpm returns the ids of transactions containing any rpm
// item whose name matches one of patterns (exact match; spec leaves glob
// expansion to the caller via the query engine's own matching, so this is a
// plain name-set lookup).
func (s *Store) SearchTransactionsByRpm(patterns []string) ([]int64, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	seen := make(map[int64]bool)
	var out []int64
	for _, p := range patterns {
		rows, err := s.db.Query(
			`SELECT DISTINCT ti.trans_id FROM trans_item ti
			 JOIN rpm rp ON rp.item_id = ti.item_id
			 WHERE rp.name = $1`, p)
		if err != nil {
			return nil, wrapSQL(errkind.Internal, err, "history: search transactions by rpm")
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, wrapSQL(errkind.Internal, err, "history: scan search result")
			}
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
		rows.Close()
	}
	return out, nil
}

// PoolAdapter binds a Store to a pool so name/arch lookups needed by
// filter_user_installed can resolve each solvable id. It structurally
// satisfies goal.HistoryUserInstalledFilter without either package importing
// the other.
type PoolAdapter struct {
	store *Store
	pool  *pool.Pool
}

// NewPoolAdapter returns a PoolAdapter for p backed by s.
func NewPoolAdapter(s *Store, p *pool.Pool) *PoolAdapter {
	return &PoolAdapter{store: s, pool: p}
}

// FilterUserInstalled restricts installed to the subset whose most recent
// recorded reason is User (spec §4.4, "filter_user_installed").
func (a *PoolAdapter) FilterUserInstalled(installed *pool.PackageSet) (*pool.PackageSet, error) {
	out := pool.NewPackageSet()
	if installed == nil {
		return out, nil
	}

	maxID, err := a.store.lastTransactionID()
	if err != nil {
		return nil, err
	}

	for _, id := range installed.ToSlice() {
		sv := a.pool.Solvable(id)
		if sv.IsEmpty() {
			continue
		}
		reason, err := a.store.ResolveRpmTransactionItemReason(a.pool.Str(sv.Name), a.pool.Str(sv.Arch), maxID)
		if err != nil {
			return nil, err
		}
		if reason == ReasonUser {
			out.Add(id)
		}
	}
	return out, nil
}

func (s *Store) lastTransactionID() (int64, error) {
	var id int64
	err := s.db.QueryRow(`SELECT COALESCE(MAX(id), 0) FROM trans`).Scan(&id)
	if err != nil {
		return 0, wrapSQL(errkind.Internal, err, "history: last transaction id")
	}
	return id, nil
}
