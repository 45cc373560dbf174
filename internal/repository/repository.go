package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"url-shortener/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// LinkRepo persists links in Postgres.
type LinkRepo struct {
	DB *sql.DB
}

func NewLinkRepo(db *sql.DB) *LinkRepo {
	return &LinkRepo{DB: db}
}

// Create inserts a new link. The unique constraint on code is the arbiter
// for concurrent creators racing on the same code; a violation surfaces as
// model.ErrCodeTaken so the caller can regenerate.
func (r *LinkRepo) Create(ctx context.Context, target, code string) (*model.Link, error) {
	q := `INSERT INTO links (target, code) VALUES ($1, $2) RETURNING id, created_at`
	var id int64
	var created time.Time
	if err := r.DB.QueryRowContext(ctx, q, target, code).Scan(&id, &created); err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrCodeTaken
		}
		return nil, fmt.Errorf("insert link: %w", err)
	}
	return &model.Link{
		ID: id, Target: target, Code: code, VisitsCount: 0, CreatedAt: created,
	}, nil
}

func (r *LinkRepo) GetByCode(ctx context.Context, code string) (*model.Link, error) {
	q := `SELECT id, target, code, visits_count, created_at FROM links WHERE code = $1`
	var l model.Link
	row := r.DB.QueryRowContext(ctx, q, code)
	if err := row.Scan(&l.ID, &l.Target, &l.Code, &l.VisitsCount, &l.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("select link by code: %w", err)
	}
	return &l, nil
}

// IncrementVisits bumps the denormalized counter with a store-side atomic
// update, never a read-modify-write from here.
func (r *LinkRepo) IncrementVisits(ctx context.Context, linkID int64) error {
	return incrementVisits(ctx, r.DB, linkID)
}

// VisitRepo persists visit events.
type VisitRepo struct {
	DB *sql.DB
}

func NewVisitRepo(db *sql.DB) *VisitRepo {
	return &VisitRepo{DB: db}
}

// Record inserts a visit row and increments the owning link's counter in a
// single transaction, so the counter and the visit rows never diverge.
func (r *VisitRepo) Record(ctx context.Context, linkID int64, utm string) (*model.Visit, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin visit tx: %w", err)
	}
	defer tx.Rollback()

	var utmVal sql.NullString
	if utm != "" {
		utmVal = sql.NullString{String: utm, Valid: true}
	}

	q := `INSERT INTO visits (link_id, utm) VALUES ($1, $2) RETURNING id, visited_at`
	var id int64
	var visited time.Time
	if err := tx.QueryRowContext(ctx, q, linkID, utmVal).Scan(&id, &visited); err != nil {
		return nil, fmt.Errorf("insert visit: %w", err)
	}

	if err := incrementVisits(ctx, tx, linkID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit visit tx: %w", err)
	}

	v := &model.Visit{ID: id, LinkID: linkID, VisitedAt: visited}
	if utmVal.Valid {
		v.UTM = &utmVal.String
	}
	return v, nil
}

// execer covers *sql.DB and *sql.Tx so the counter update runs identically
// standalone and inside the visit transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func incrementVisits(ctx context.Context, ex execer, linkID int64) error {
	q := `UPDATE links SET visits_count = visits_count + 1 WHERE id = $1`
	res, err := ex.ExecContext(ctx, q, linkID)
	if err != nil {
		return fmt.Errorf("increment visits: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
