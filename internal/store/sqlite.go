// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/outreach/pkg/types"
)

// SQLite is a Store backed by an in-memory SQLite database. The database
// is private to the Store and disappears when it is closed.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a fresh in-memory database and creates the schema.
func NewSQLite() (*SQLite, error) {
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to ":memory:" gets its own database.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	s := &SQLite{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database, discarding all leads.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS leads (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			role TEXT,
			description TEXT,
			source_url TEXT,
			email TEXT,
			status TEXT NOT NULL,
			email_subject TEXT,
			email_draft TEXT,
			date_added TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

const leadColumns = `id, name, role, description, source_url, email, status, email_subject, email_draft, date_added`

func (s *SQLite) Append(ctx context.Context, lead types.Lead) error {
	if err := validate(lead); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (`+leadColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.Name, lead.Role, lead.Description, lead.SourceURL, lead.Email,
		string(lead.Status), lead.EmailSubject, lead.EmailDraft,
		lead.DateAdded.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrDuplicateID, lead.ID)
		}
		return fmt.Errorf("inserting lead %s: %w", lead.ID, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (types.Lead, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	return scanLead(row, id)
}

func (s *SQLite) Update(ctx context.Context, id string, fn func(*types.Lead) error) (types.Lead, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Lead{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	cur, err := scanLead(tx.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id), id)
	if err != nil {
		return types.Lead{}, err
	}

	next, err := applyUpdate(cur, fn)
	if err != nil {
		return types.Lead{}, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE leads SET name=?, role=?, description=?, source_url=?, email=?,
			status=?, email_subject=?, email_draft=? WHERE id = ?`,
		next.Name, next.Role, next.Description, next.SourceURL, next.Email,
		string(next.Status), next.EmailSubject, next.EmailDraft, id,
	)
	if err != nil {
		return types.Lead{}, fmt.Errorf("updating lead %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return types.Lead{}, fmt.Errorf("committing lead %s: %w", id, err)
	}
	return next, nil
}

// List filters status in SQL. Query text is matched in Go because SQLite's
// lower() only folds ASCII.
func (s *SQLite) List(ctx context.Context, f Filter) ([]types.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads`
	var args []any
	if f.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(f.Status))
	}
	query += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying leads: %w", err)
	}
	defer rows.Close()

	leads := []types.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows, "")
		if err != nil {
			return nil, err
		}
		if f.IsEmpty() || f.Match(lead) {
			leads = append(leads, lead)
		}
	}
	return leads, rows.Err()
}

func (s *SQLite) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, count(*) FROM leads GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("counting leads: %w", err)
	}
	defer rows.Close()

	st := newStats()
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return Stats{}, fmt.Errorf("scanning stats: %w", err)
		}
		st.ByStatus[types.Status(status)] = n
		st.Total += n
	}
	return st, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(sc scanner, id string) (types.Lead, error) {
	var (
		lead                                         types.Lead
		role, desc, srcURL, email, subject, draftTxt sql.NullString
		status, added                                string
	)
	err := sc.Scan(&lead.ID, &lead.Name, &role, &desc, &srcURL, &email,
		&status, &subject, &draftTxt, &added)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Lead{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return types.Lead{}, fmt.Errorf("scanning lead: %w", err)
	}

	lead.Role = role.String
	lead.Description = desc.String
	lead.SourceURL = srcURL.String
	lead.Email = email.String
	lead.Status = types.Status(status)
	lead.EmailSubject = subject.String
	lead.EmailDraft = draftTxt.String

	t, err := time.Parse(time.RFC3339Nano, added)
	if err != nil {
		return types.Lead{}, fmt.Errorf("parsing date_added for %s: %w", lead.ID, err)
	}
	lead.DateAdded = t
	return lead, nil
}
