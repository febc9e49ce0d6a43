package repository

import (
    "context"
    "database/sql"

    "github.com/natourcam/tourism-api/internal/model"
)

const tourColumns = `id, operator_id, title, description, duration_days, max_participants,
    difficulty_level, price_cents, currency, start_date, end_date,
    start_location, end_location, includes, excludes, is_active, created_at, updated_at`

// TourRepo provides CRUD operations for the 'tours' table.  Tours are
// owned by operator accounts; ownership is enforced on every mutating
// query so one operator can never touch another operator's catalog.
type TourRepo struct {
    db *sql.DB
}

// NewTourRepo constructs a TourRepo with the given DB handle.
func NewTourRepo(db *sql.DB) *TourRepo { return &TourRepo{db: db} }

func scanTour(row interface{ Scan(...any) error }, t *model.Tour) error {
    return row.Scan(
        &t.ID, &t.OperatorID, &t.Title, &t.Description, &t.DurationDays, &t.MaxParticipants,
        &t.Difficulty, &t.PriceCents, &t.Currency, &t.StartDate, &t.EndDate,
        &t.StartLocation, &t.EndLocation, &t.Includes, &t.Excludes, &t.IsActive,
        &t.CreatedAt, &t.UpdatedAt,
    )
}

// Create inserts a new tour and populates the generated ID and the
// DB-default fields (is_active, timestamps) on the given struct.
func (r *TourRepo) Create(ctx context.Context, t *model.Tour) error {
    const q = `INSERT INTO tours
        (operator_id, title, description, duration_days, max_participants, difficulty_level,
         price_cents, currency, start_date, end_date, start_location, end_location, includes, excludes)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        t.OperatorID, t.Title, t.Description, t.DurationDays, t.MaxParticipants, t.Difficulty,
        t.PriceCents, t.Currency, t.StartDate, t.EndDate, t.StartLocation, t.EndLocation,
        t.Includes, t.Excludes)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    t.ID = uint64(id)
    const sel = `SELECT ` + tourColumns + ` FROM tours WHERE id = ?`
    return scanTour(r.db.QueryRowContext(ctx, sel, t.ID), t)
}

// GetByID retrieves a tour by its ID.  It returns ErrTourNotFound when
// there is no matching row.
func (r *TourRepo) GetByID(ctx context.Context, id uint64) (*model.Tour, error) {
    const q = `SELECT ` + tourColumns + ` FROM tours WHERE id = ?`
    var t model.Tour
    if err := scanTour(r.db.QueryRowContext(ctx, q, id), &t); err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrTourNotFound
        }
        return nil, err
    }
    return &t, nil
}

// GetByIDTx is GetByID within an existing transaction.
func (r *TourRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Tour, error) {
    const q = `SELECT ` + tourColumns + ` FROM tours WHERE id = ?`
    var t model.Tour
    if err := scanTour(tx.QueryRowContext(ctx, q, id), &t); err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrTourNotFound
        }
        return nil, err
    }
    return &t, nil
}

// ListActive returns all active tours ordered by start date.  It backs
// the public browse endpoint.
func (r *TourRepo) ListActive(ctx context.Context) ([]model.Tour, error) {
    const q = `SELECT ` + tourColumns + ` FROM tours WHERE is_active = 1 ORDER BY start_date, id`
    return r.list(ctx, q)
}

// ListByOperator returns all tours (active or not) owned by an operator.
func (r *TourRepo) ListByOperator(ctx context.Context, operatorID uint64) ([]model.Tour, error) {
    const q = `SELECT ` + tourColumns + ` FROM tours WHERE operator_id = ? ORDER BY start_date, id`
    return r.list(ctx, q, operatorID)
}

func (r *TourRepo) list(ctx context.Context, q string, args ...any) ([]model.Tour, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Tour
    for rows.Next() {
        var t model.Tour
        if err := scanTour(rows, &t); err != nil {
            return nil, err
        }
        out = append(out, t)
    }
    return out, rows.Err()
}

// UpdateByIDAndOperator updates the mutable fields of a tour owned by
// the given operator.  It returns ErrTourNotFound when the tour does
// not exist and ErrForbidden when it belongs to another operator.
func (r *TourRepo) UpdateByIDAndOperator(ctx context.Context, t *model.Tour, operatorID uint64) error {
    var owner uint64
    err := r.db.QueryRowContext(ctx, `SELECT operator_id FROM tours WHERE id = ?`, t.ID).Scan(&owner)
    if err != nil {
        if err == sql.ErrNoRows {
            return ErrTourNotFound
        }
        return err
    }
    if owner != operatorID {
        return ErrForbidden
    }
    const q = `UPDATE tours SET title=?, description=?, duration_days=?, max_participants=?,
        difficulty_level=?, price_cents=?, currency=?, start_date=?, end_date=?,
        start_location=?, end_location=?, includes=?, excludes=?, is_active=?
        WHERE id=? AND operator_id=?`
    _, err = r.db.ExecContext(ctx, q,
        t.Title, t.Description, t.DurationDays, t.MaxParticipants, t.Difficulty,
        t.PriceCents, t.Currency, t.StartDate, t.EndDate, t.StartLocation, t.EndLocation,
        t.Includes, t.Excludes, t.IsActive, t.ID, operatorID)
    return err
}

// DeactivateByIDAndOperator soft-deletes a tour by clearing is_active.
// Tours are never hard-deleted: bookings and availability history keep
// referencing them.
func (r *TourRepo) DeactivateByIDAndOperator(ctx context.Context, id, operatorID uint64) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE tours SET is_active = 0 WHERE id = ? AND operator_id = ?`, id, operatorID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Distinguish missing from foreign-owned for the handler.
        var exists int
        if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM tours WHERE id = ?`, id).Scan(&exists); err != nil {
            if err == sql.ErrNoRows {
                return ErrTourNotFound
            }
            return err
        }
        return ErrForbidden
    }
    return nil
}
