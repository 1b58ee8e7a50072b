// Package postgres reads the rental dataset from a PostgreSQL table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	_ "github.com/lib/pq"

	"github.com/kilianp07/bikedash/core/dataset"
	"github.com/kilianp07/bikedash/core/model"
)

// DefaultTable is the table read when Config.Table is empty.
const DefaultTable = "daily_rentals"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Config holds the connection settings.
type Config struct {
	DSN   string `json:"dsn"`
	Table string `json:"table"`
}

// Open establishes a connection to the database and checks it with a ping.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	return db, nil
}

// Source loads records from a table holding the dataset columns. Extra
// columns are ignored.
type Source struct {
	DB    *sql.DB
	Table string
}

// NewSource validates the table name and returns a Source.
func NewSource(db *sql.DB, table string) (*Source, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Source{DB: db, Table: table}, nil
}

// Load reads every row ordered by date. Values are fetched as text and go
// through the same validation as the CSV loader; row numbers start at 1.
func (s *Source) Load(ctx context.Context) (*dataset.Dataset, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		selectList(), s.Table, dataset.ColDate)
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.Table, err)
	}
	defer rows.Close()

	var raws []dataset.RawRow
	for rows.Next() {
		r := dataset.RawRow{Line: len(raws) + 1}
		if err := rows.Scan(&r.Date, &r.Season, &r.Year, &r.Month, &r.Weekday, &r.Weather, &r.Count); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", r.Line, err)
		}
		raws = append(raws, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Table, err)
	}
	return dataset.FromRows(raws)
}

func selectList() string {
	cols := make([]string, len(dataset.Columns))
	for i, c := range dataset.Columns {
		cols[i] = c + "::text"
	}
	return strings.Join(cols, ", ")
}

// CreateTable creates the dataset table when it does not exist.
func (s *Source) CreateTable(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s DATE NOT NULL,
	%s SMALLINT NOT NULL,
	%s SMALLINT NOT NULL,
	%s SMALLINT NOT NULL,
	%s SMALLINT NOT NULL,
	%s SMALLINT NOT NULL,
	%s INTEGER NOT NULL
)`, s.Table, dataset.ColDate, dataset.ColSeason, dataset.ColYear, dataset.ColMonth,
		dataset.ColWeekday, dataset.ColWeather, dataset.ColCount)
	if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", s.Table, err)
	}
	return nil
}

// Import replaces the table content with records in a single transaction.
func (s *Source) Import(ctx context.Context, records []model.Record) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, "DELETE FROM "+s.Table); err != nil {
		return fmt.Errorf("clear %s: %w", s.Table, err)
	}
	placeholders := make([]string, len(dataset.Columns))
	for i := range placeholders {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.Table, strings.Join(dataset.Columns, ", "), strings.Join(placeholders, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err = stmt.ExecContext(ctx, r.Date.Format(model.DateLayout), int(r.Season), int(r.Year),
			int(r.Month), int(r.Weekday), int(r.Weather), r.Count); err != nil {
			return fmt.Errorf("insert %s: %w", r.Date.Format(model.DateLayout), err)
		}
	}
	return tx.Commit()
}
