package history

import (
	"database/sql"

	"github.com/rpmpkg/core/internal/errkind"
)

// AddCompsGroup records one comps_group trans_item row and its package
// membership list. Supplemented from original_source: the distilled spec
// names comps_group/comps_group_package in its schema but the per-accessor
// contract list only spells out the rpm-item path; group read-back follows
// the same item_id-keyed shape.
func (s *Store) AddCompsGroup(g CompsGroup) error {
	_, err := s.db.Exec(
		`INSERT INTO comps_group (item_id, groupid, name, translated_name, pkg_types)
		 VALUES ($1, $2, $3, $4, $5)`,
		g.ItemID, g.GroupID, g.Name, g.TranslatedName, g.PkgTypes)
	if err != nil {
		return wrapSQL(errkind.Internal, err, "history: add comps group")
	}
	for _, pkg := range g.Packages {
		_, err := s.db.Exec(
			`INSERT INTO comps_group_package (group_id, name, installed, pkg_type) VALUES ($1, $2, $3, $4)`,
			g.ItemID, pkg.Name, pkg.Installed, pkg.PkgType)
		if err != nil {
			return wrapSQL(errkind.Internal, err, "history: add comps group package")
		}
	}
	return nil
}

// GetCompsGroup loads one comps_group row by its trans_item id, with its
// package membership.
func (s *Store) GetCompsGroup(itemID int64) (*CompsGroup, error) {
	g := &CompsGroup{ItemID: itemID}
	var translated sql.NullString
	err := s.db.QueryRow(
		`SELECT groupid, name, translated_name, pkg_types FROM comps_group WHERE item_id = $1`,
		itemID).Scan(&g.GroupID, &g.Name, &translated, &g.PkgTypes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapSQL(errkind.Internal, err, "history: get comps group")
	}
	g.TranslatedName = translated.String

	rows, err := s.db.Query(
		`SELECT id, group_id, name, installed, pkg_type FROM comps_group_package WHERE group_id = $1 ORDER BY id ASC`,
		itemID)
	if err != nil {
		return nil, wrapSQL(errkind.Internal, err, "history: list comps group packages")
	}
	defer rows.Close()
	for rows.Next() {
		var p CompsGroupPackage
		if err := rows.Scan(&p.ID, &p.GroupID, &p.Name, &p.Installed, &p.PkgType); err != nil {
			return nil, wrapSQL(errkind.Internal, err, "history: scan comps group package")
		}
		g.Packages = append(g.Packages, p)
	}
	return g, rows.Err()
}

// AddCompsEnvironment records one comps_environment trans_item row and its
// group membership list.
func (s *Store) AddCompsEnvironment(e CompsEnvironment) error {
	_, err := s.db.Exec(
		`INSERT INTO comps_environment (item_id, environmentid, name, translated_name, pkg_types)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.ItemID, e.EnvironmentID, e.Name, e.TranslatedName, e.PkgTypes)
	if err != nil {
		return wrapSQL(errkind.Internal, err, "history: add comps environment")
	}
	for _, grp := range e.Groups {
		_, err := s.db.Exec(
			`INSERT INTO comps_environment_group (environment_id, groupid, installed, group_type) VALUES ($1, $2, $3, $4)`,
			e.ItemID, grp.GroupID, grp.Installed, grp.GroupType)
		if err != nil {
			return wrapSQL(errkind.Internal, err, "history: add comps environment group")
		}
	}
	return nil
}

// GetCompsEnvironment loads one comps_environment row by its trans_item id,
// with its group membership.
func (s *Store) GetCompsEnvironment(itemID int64) (*CompsEnvironment, error) {
	e := &CompsEnvironment{ItemID: itemID}
	var translated sql.NullString
	err := s.db.QueryRow(
		`SELECT environmentid, name, translated_name, pkg_types FROM comps_environment WHERE item_id = $1`,
		itemID).Scan(&e.EnvironmentID, &e.Name, &translated, &e.PkgTypes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapSQL(errkind.Internal, err, "history: get comps environment")
	}
	e.TranslatedName = translated.String

	rows, err := s.db.Query(
		`SELECT id, environment_id, groupid, installed, group_type FROM comps_environment_group WHERE environment_id = $1 ORDER BY id ASC`,
		itemID)
	if err != nil {
		return nil, wrapSQL(errkind.Internal, err, "history: list comps environment groups")
	}
	defer rows.Close()
	for rows.Next() {
		var g CompsEnvironmentGroup
		if err := rows.Scan(&g.ID, &g.EnvironmentID, &g.GroupID, &g.Installed, &g.GroupType); err != nil {
			return nil, wrapSQL(errkind.Internal, err, "history: scan comps environment group")
		}
		e.Groups = append(e.Groups, g)
	}
	return e, rows.Err()
}
