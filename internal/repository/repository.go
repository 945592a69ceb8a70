// Package repository implements the registration store on PostgreSQL.
// It uses pgx directly (no ORM); registrations are append-only and all
// "current" views are derived with window functions at read time.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/patterns42/workshop-registration/internal/model"
)

// RegistrationRepository handles persistence for registrations.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// CreateSchema bootstraps the registrations table. Called once at
// startup.
func (r *RegistrationRepository) CreateSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS registrations (
			id SERIAL PRIMARY KEY,
			hash VARCHAR(40) NOT NULL,
			slot_id SMALLINT NOT NULL,
			title VARCHAR(255) NOT NULL,
			insert_date TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	)
	if err != nil {
		return fmt.Errorf("create registrations table: %w", err)
	}
	return nil
}

// InsertRegistrations appends one row per pick in a single transaction
// and returns the number of rows written. Prior rows for the attendee
// are kept; they are superseded at read time, never deleted.
func (r *RegistrationRepository) InsertRegistrations(ctx context.Context, hash string, picks []model.SessionPick) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, pick := range picks {
		batch.Queue(
			`INSERT INTO registrations (hash, slot_id, title) VALUES ($1, $2, $3)`,
			hash, pick.SlotID, pick.Title,
		)
	}

	br := tx.SendBatch(ctx, batch)
	written := 0
	for range picks {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return 0, fmt.Errorf("insert registration: %w", err)
		}
		written += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return written, nil
}

// RegistrationHistory returns every registration row except those made
// by the excluded hashes, in insertion order.
func (r *RegistrationRepository) RegistrationHistory(ctx context.Context, exclude []string) ([]model.RegistrationRow, error) {
	if exclude == nil {
		exclude = []string{}
	}
	rows, err := r.db.Query(ctx,
		`SELECT hash, slot_id, title, insert_date
		 FROM registrations
		 WHERE hash <> ALL($1)
		 ORDER BY insert_date, id`,
		exclude,
	)
	if err != nil {
		return nil, fmt.Errorf("query registration history: %w", err)
	}
	defer rows.Close()

	var history []model.RegistrationRow
	for rows.Next() {
		var row model.RegistrationRow
		if err := rows.Scan(&row.Hash, &row.SlotID, &row.Title, &row.InsertedAt); err != nil {
			return nil, fmt.Errorf("scan registration row: %w", err)
		}
		history = append(history, row)
	}
	return history, rows.Err()
}

// CurrentRegistrations returns the rows of each attendee's most recent
// submission, excluded hashes filtered out. Rows sharing the latest
// timestamp (one per slot of a submission) are all included.
func (r *RegistrationRepository) CurrentRegistrations(ctx context.Context, exclude []string) ([]model.ExportRow, error) {
	if exclude == nil {
		exclude = []string{}
	}
	rows, err := r.db.Query(ctx,
		`SELECT hash, title, insert_date FROM (
			SELECT hash, title, insert_date,
			       rank() OVER (PARTITION BY hash ORDER BY insert_date DESC) AS rnk
			FROM registrations
			WHERE hash <> ALL($1)
		 ) ranked
		 WHERE rnk = 1
		 ORDER BY hash, insert_date`,
		exclude,
	)
	if err != nil {
		return nil, fmt.Errorf("query current registrations: %w", err)
	}
	defer rows.Close()

	var out []model.ExportRow
	for rows.Next() {
		var row model.ExportRow
		if err := rows.Scan(&row.Hash, &row.Title, &row.InsertedAt); err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// PreviousSessions returns the attendee's current title per slot, in
// slot order.
func (r *RegistrationRepository) PreviousSessions(ctx context.Context, hash string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT title FROM (
			SELECT title, slot_id,
			       rank() OVER (PARTITION BY slot_id ORDER BY insert_date DESC, id DESC) AS rnk
			FROM registrations
			WHERE hash = $1
		 ) ranked
		 WHERE rnk = 1
		 ORDER BY slot_id`,
		hash,
	)
	if err != nil {
		return nil, fmt.Errorf("query previous sessions: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan previous session: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}
