package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// Dialect captures the handful of SQL differences between MySQL and
// PostgreSQL that the repositories run into: placeholder syntax, upserts,
// generated keys and unique-violation detection.
type Dialect int

const (
	MySQL Dialect = iota
	Postgres
)

// DialectFor maps a DB_DRIVER value to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "mysql", "":
		return MySQL, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return MySQL, fmt.Errorf("unsupported database driver %q", driver)
}

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "mysql"
}

// Rebind rewrites '?' placeholders into the dialect's form.  Question marks
// inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			b.WriteByte(ch)
		case ch == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// Upsert builds an insert-or-update-on-primary-key statement.  The first
// column is the key; the rest are overwritten on conflict.
func (d Dialect) Upsert(table string, cols ...string) string {
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), ph)
	set := make([]string, 0, len(cols)-1)
	for _, c := range cols[1:] {
		if d == Postgres {
			set = append(set, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		} else {
			set = append(set, fmt.Sprintf("%s = VALUES(%s)", c, c))
		}
	}
	if d == Postgres {
		return q + fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", cols[0], strings.Join(set, ", "))
	}
	return q + " ON DUPLICATE KEY UPDATE " + strings.Join(set, ", ")
}

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InsertReturningID runs an INSERT and returns the generated key.  MySQL
// reports it through LastInsertId; PostgreSQL needs a RETURNING clause.
func (d Dialect) InsertReturningID(ctx context.Context, ex Execer, query, idCol string, args ...any) (int64, error) {
	if d == Postgres {
		var id int64
		err := ex.QueryRowContext(ctx, d.Rebind(query)+" RETURNING "+idCol, args...).Scan(&id)
		return id, err
	}
	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// IsUniqueViolation reports whether err is a duplicate-key error from
// either driver.
func IsUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}

// IsForeignKeyViolation reports whether err is a missing-reference error
// from either driver.
func IsForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1452
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23503"
	}
	return false
}
