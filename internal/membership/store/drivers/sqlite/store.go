package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ziberlive/colive/internal/membership/store"
	"github.com/ziberlive/colive/internal/membership/store/drivers/sqlite/gen"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	dsn string
}

// NewStore opens the database at dsn with foreign keys enforced on every
// connection. Transactions take the write lock when they begin and wait up
// to busyTimeout for it, so concurrent writers queue instead of failing
// halfway through. In-memory databases are pinned to a single connection
// since each connection would otherwise see its own empty database.
func NewStore(dsn string) (*Store, error) {
	dsn = withPragma(dsn, "foreign_keys(1)")
	dsn = withPragma(dsn, "busy_timeout(5000)")
	dsn = withParam(dsn, "_txlock", "immediate")

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   gen.New(db),
		dsn: dsn,
	}, nil
}

func withPragma(dsn, pragma string) string {
	name, _, _ := strings.Cut(pragma, "(")
	if strings.Contains(dsn, "_pragma="+name) {
		return dsn
	}
	return appendParam(dsn, "_pragma="+pragma)
}

func withParam(dsn, key, value string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	return appendParam(dsn, key+"="+value)
}

func appendParam(dsn, param string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + param
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return newTx(tx), nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return mapWriteErr(tx.Commit())
}

func (s *Store) Users() store.Users             { return &usersRepo{q: s.q} }
func (s *Store) Communities() store.Communities { return &communitiesRepo{q: s.q} }
func (s *Store) Locations() store.Locations     { return &locationsRepo{q: s.q} }
func (s *Store) Invites() store.Invites         { return &invitesRepo{q: s.q} }
func (s *Store) Members() store.Members         { return &membersRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapWriteErr turns uniqueness violations into store.ErrAlreadyExists and
// lock contention that outlasted the busy timeout into store.ErrConflict.
func mapWriteErr(err error) error {
	var se *msqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return errors.Join(store.ErrAlreadyExists, err)
		}
		switch se.Code() & 0xff { // primary result code
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return errors.Join(store.ErrConflict, err)
		}
	}
	return err
}

// expectOne maps a guarded update that touched no row to ErrConflict.
func expectOne(n int64, err error) error {
	if err != nil {
		return mapWriteErr(err)
	}
	if n == 0 {
		return store.ErrConflict
	}
	return nil
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		t := nt.Time.UTC()
		return &t
	}
	return nil
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func mapNullIntPtr(n sql.NullInt64) *int {
	if n.Valid {
		v := int(n.Int64)
		return &v
	}
	return nil
}

func mapOptionalInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
