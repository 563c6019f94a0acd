// Package sqlstore keeps a declaration catalog in SQLite. Raw records are
// stored and decoded on every read, so a Store is usually wrapped in
// catalog.Cached.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/dhamidi/jbind/catalog"
	"github.com/dhamidi/jbind/classfile"
	"github.com/dhamidi/jbind/java"
)

var log = commonlog.GetLogger("jbind.catalog.sql")

const schema = `
CREATE TABLE IF NOT EXISTS classes (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	unit        TEXT NOT NULL,
	name        TEXT NOT NULL,
	simple_name TEXT NOT NULL,
	flags       INTEGER NOT NULL,
	signature   TEXT NOT NULL DEFAULT '',
	super       TEXT NOT NULL DEFAULT '',
	nested      INTEGER NOT NULL DEFAULT 0,
	anonymous   INTEGER NOT NULL DEFAULT 0,
	outer       TEXT NOT NULL DEFAULT '',
	inner_flags INTEGER NOT NULL DEFAULT 0,
	UNIQUE (unit, name)
);
CREATE INDEX IF NOT EXISTS classes_name ON classes (name);
CREATE INDEX IF NOT EXISTS classes_simple_name ON classes (simple_name);

CREATE TABLE IF NOT EXISTS interfaces (
	class_id INTEGER NOT NULL REFERENCES classes (id),
	pos      INTEGER NOT NULL,
	name     TEXT NOT NULL,
	PRIMARY KEY (class_id, pos)
);

CREATE TABLE IF NOT EXISTS inner_classes (
	class_id INTEGER NOT NULL REFERENCES classes (id),
	pos      INTEGER NOT NULL,
	name     TEXT NOT NULL,
	PRIMARY KEY (class_id, pos)
);

CREATE TABLE IF NOT EXISTS methods (
	class_id   INTEGER NOT NULL REFERENCES classes (id),
	ord        INTEGER NOT NULL,
	name       TEXT NOT NULL,
	descriptor TEXT NOT NULL,
	signature  TEXT NOT NULL DEFAULT '',
	flags      INTEGER NOT NULL,
	exceptions TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (class_id, ord)
);

CREATE TABLE IF NOT EXISTS fields (
	class_id   INTEGER NOT NULL REFERENCES classes (id),
	ord        INTEGER NOT NULL,
	name       TEXT NOT NULL,
	descriptor TEXT NOT NULL,
	signature  TEXT NOT NULL DEFAULT '',
	flags      INTEGER NOT NULL,
	PRIMARY KEY (class_id, ord)
);
`

// Store is a catalog.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	// one connection keeps a :memory: database alive and serializes writers
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Add(ctx context.Context, unit string, decl *java.Declaration) (java.ClassID, error) {
	if decl == nil || decl.Class.Name == "" {
		return 0, fmt.Errorf("add to sql catalog: empty declaration")
	}
	raw := decl.Class
	raw.Unit = unit

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM classes WHERE unit = ? AND name = ?`, unit, raw.Name).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx, `
			INSERT INTO classes (unit, name, simple_name, flags, signature, super, nested, anonymous, outer, inner_flags)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			unit, raw.Name, raw.SimpleName(), int64(raw.Flags), raw.Signature, raw.SuperClass,
			raw.Nested, raw.Anonymous, raw.OuterClass, int64(raw.InnerFlags))
		if err != nil {
			return 0, fmt.Errorf("failed to insert class %s: %w", raw.Name, err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, err
		}
	case err != nil:
		return 0, fmt.Errorf("failed to look up class %s: %w", raw.Name, err)
	default:
		_, err := tx.ExecContext(ctx, `
			UPDATE classes SET simple_name = ?, flags = ?, signature = ?, super = ?, nested = ?, anonymous = ?, outer = ?, inner_flags = ?
			WHERE id = ?`,
			raw.SimpleName(), int64(raw.Flags), raw.Signature, raw.SuperClass,
			raw.Nested, raw.Anonymous, raw.OuterClass, int64(raw.InnerFlags), id)
		if err != nil {
			return 0, fmt.Errorf("failed to update class %s: %w", raw.Name, err)
		}
		for _, table := range []string{"interfaces", "inner_classes", "methods", "fields"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE class_id = ?`, id); err != nil {
				return 0, fmt.Errorf("failed to clear %s of %s: %w", table, raw.Name, err)
			}
		}
	}

	for i, name := range raw.Interfaces {
		if _, err := tx.ExecContext(ctx, `INSERT INTO interfaces (class_id, pos, name) VALUES (?, ?, ?)`, id, i, name); err != nil {
			return 0, fmt.Errorf("failed to insert interface of %s: %w", raw.Name, err)
		}
	}
	for i, name := range raw.InnerClasses {
		if _, err := tx.ExecContext(ctx, `INSERT INTO inner_classes (class_id, pos, name) VALUES (?, ?, ?)`, id, i, name); err != nil {
			return 0, fmt.Errorf("failed to insert inner class of %s: %w", raw.Name, err)
		}
	}
	for i, m := range decl.Methods {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO methods (class_id, ord, name, descriptor, signature, flags, exceptions)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, m.Name, m.Descriptor, m.Signature, int64(m.Flags), strings.Join(m.Exceptions, ","))
		if err != nil {
			return 0, fmt.Errorf("failed to insert method %s.%s: %w", raw.Name, m.Name, err)
		}
	}
	for i, f := range decl.Fields {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO fields (class_id, ord, name, descriptor, signature, flags)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, f.Name, f.Descriptor, f.Signature, int64(f.Flags))
		if err != nil {
			return 0, fmt.Errorf("failed to insert field %s.%s: %w", raw.Name, f.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit class %s: %w", raw.Name, err)
	}
	return java.ClassID(id), nil
}

const classColumns = `id, unit, name, flags, signature, super, nested, anonymous, outer, inner_flags`

func (s *Store) LookupClasses(ctx context.Context, units []string, name string) ([]*java.ClassInfo, error) {
	column := "simple_name"
	if catalog.IsQualified(name) {
		column = "name"
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+classColumns+` FROM classes WHERE `+column+` = ? ORDER BY id`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up classes %s: %w", name, err)
	}
	var raws []rawRow
	for rows.Next() {
		r, err := scanClass(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		if catalog.InUnits(units, r.raw.Unit) {
			raws = append(raws, r)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*java.ClassInfo, 0, len(raws))
	for _, r := range raws {
		c, err := s.decodeClass(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) LookupClassByID(ctx context.Context, id java.ClassID) (*java.ClassInfo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+classColumns+` FROM classes WHERE id = ?`, int64(id))
	r, err := scanClass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("class id %d: %w", id, catalog.ErrClassNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s.decodeClass(ctx, r)
}

func (s *Store) LookupMethods(ctx context.Context, classIDs []java.ClassID, name string) ([]*java.MethodInfo, error) {
	var out []*java.MethodInfo
	for _, id := range classIDs {
		class, err := s.LookupClassByID(ctx, id)
		if errors.Is(err, catalog.ErrClassNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		query := `SELECT ord, name, descriptor, signature, flags, exceptions FROM methods WHERE class_id = ?`
		args := []any{int64(id)}
		if name != "" {
			query += ` AND name IN (?, '<init>')`
			args = append(args, name)
		}
		rows, err := s.db.QueryContext(ctx, query+` ORDER BY ord`, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to look up methods of %s: %w", class.Name, err)
		}
		var raws []catalog.StoredMethod
		for rows.Next() {
			var m catalog.StoredMethod
			var flags int64
			var exceptions string
			if err := rows.Scan(&m.Order, &m.Name, &m.Descriptor, &m.Signature, &flags, &exceptions); err != nil {
				rows.Close()
				return nil, err
			}
			m.Flags = classfile.AccessFlags(flags)
			if exceptions != "" {
				m.Exceptions = strings.Split(exceptions, ",")
			}
			raws = append(raws, m)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
		out = append(out, catalog.DecodeMethods(class, raws, name)...)
	}
	return out, nil
}

func (s *Store) LookupFields(ctx context.Context, classIDs []java.ClassID, name string) ([]*java.FieldInfo, error) {
	var out []*java.FieldInfo
	for _, id := range classIDs {
		class, err := s.LookupClassByID(ctx, id)
		if errors.Is(err, catalog.ErrClassNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		query := `SELECT name, descriptor, signature, flags FROM fields WHERE class_id = ?`
		args := []any{int64(id)}
		if name != "" {
			query += ` AND name = ?`
			args = append(args, name)
		}
		rows, err := s.db.QueryContext(ctx, query+` ORDER BY ord`, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to look up fields of %s: %w", class.Name, err)
		}
		var raws []java.RawField
		for rows.Next() {
			var f java.RawField
			var flags int64
			if err := rows.Scan(&f.Name, &f.Descriptor, &f.Signature, &flags); err != nil {
				rows.Close()
				return nil, err
			}
			f.Flags = classfile.AccessFlags(flags)
			raws = append(raws, f)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
		out = append(out, catalog.DecodeFields(class, raws, "")...)
	}
	return out, nil
}

func (s *Store) LookupSuperTypeNames(ctx context.Context, classID java.ClassID, relation catalog.Relation) ([]string, error) {
	if relation == catalog.Interface {
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM classes WHERE id = ?`, int64(classID)).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("class id %d: %w", classID, catalog.ErrClassNotFound)
		}
		if err != nil {
			return nil, err
		}
		return s.names(ctx, `SELECT name FROM interfaces WHERE class_id = ? ORDER BY pos`, int64(classID))
	}
	var super string
	err := s.db.QueryRowContext(ctx, `SELECT super FROM classes WHERE id = ?`, int64(classID)).Scan(&super)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("class id %d: %w", classID, catalog.ErrClassNotFound)
	}
	if err != nil {
		return nil, err
	}
	if super == "" {
		return nil, nil
	}
	return []string{super}, nil
}

func (s *Store) LookupInnerClassNames(ctx context.Context, classIDs []java.ClassID, units []string) ([]string, error) {
	var names []string
	for _, id := range classIDs {
		var unit string
		err := s.db.QueryRowContext(ctx, `SELECT unit FROM classes WHERE id = ?`, int64(id)).Scan(&unit)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !catalog.InUnits(units, unit) {
			continue
		}
		inner, err := s.names(ctx, `SELECT name FROM inner_classes WHERE class_id = ? ORDER BY pos`, int64(id))
		if err != nil {
			return nil, err
		}
		names = append(names, inner...)
	}
	return catalog.SortedSet(names), nil
}

// Units lists the distinct units in the catalog.
func (s *Store) Units(ctx context.Context) ([]string, error) {
	return s.names(ctx, `SELECT DISTINCT unit FROM classes ORDER BY unit`)
}

func (s *Store) names(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

type rawRow struct {
	id  int64
	raw java.RawClass
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClass(row scanner) (rawRow, error) {
	var r rawRow
	var flags, innerFlags int64
	err := row.Scan(&r.id, &r.raw.Unit, &r.raw.Name, &flags, &r.raw.Signature, &r.raw.SuperClass,
		&r.raw.Nested, &r.raw.Anonymous, &r.raw.OuterClass, &innerFlags)
	r.raw.Flags = classfile.AccessFlags(flags)
	r.raw.InnerFlags = classfile.AccessFlags(innerFlags)
	return r, err
}

func (s *Store) decodeClass(ctx context.Context, r rawRow) (*java.ClassInfo, error) {
	var err error
	if r.raw.Interfaces, err = s.names(ctx, `SELECT name FROM interfaces WHERE class_id = ? ORDER BY pos`, r.id); err != nil {
		return nil, err
	}
	if r.raw.InnerClasses, err = s.names(ctx, `SELECT name FROM inner_classes WHERE class_id = ? ORDER BY pos`, r.id); err != nil {
		return nil, err
	}
	log.Debugf("decoding class %s", r.raw.Name)
	return catalog.DecodeClass(java.ClassID(r.id), r.raw), nil
}
