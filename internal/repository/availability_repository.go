package repository

import (
    "context"
    "database/sql"

    "github.com/natourcam/tourism-api/internal/model"
)

const availabilityColumns = `id, tour_id, date, spots_total, spots_reserved, is_enabled, created_at, updated_at`

// AvailabilityRepo provides access to the 'tour_availability' table:
// the date-scoped capacity rows that bookings consume spots from.  The
// spots_reserved counter is mutated only through ReserveTx/ReleaseTx,
// which are called exclusively by the lifecycle engine's store; catalog
// code may create rows and flip is_enabled but never touches the
// counters.
type AvailabilityRepo struct {
    db *sql.DB
}

// NewAvailabilityRepo constructs an AvailabilityRepo with the given DB handle.
func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

func scanAvailability(row interface{ Scan(...any) error }, a *model.TourAvailability) error {
    return row.Scan(&a.ID, &a.TourID, &a.Date, &a.SpotsTotal, &a.SpotsReserved,
        &a.IsEnabled, &a.CreatedAt, &a.UpdatedAt)
}

// Create publishes a new availability date for a tour.  The tour+date
// pair is unique; republishing an existing date returns ErrDuplicateDate.
func (r *AvailabilityRepo) Create(ctx context.Context, a *model.TourAvailability) error {
    const q = `INSERT INTO tour_availability (tour_id, date, spots_total) VALUES (?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, a.TourID, a.Date, a.SpotsTotal)
    if err != nil {
        if isDuplicateKey(err) {
            return ErrDuplicateDate
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    a.ID = uint64(id)
    const sel = `SELECT ` + availabilityColumns + ` FROM tour_availability WHERE id = ?`
    return scanAvailability(r.db.QueryRowContext(ctx, sel, a.ID), a)
}

// GetByID retrieves an availability row or returns ErrAvailabilityNotFound.
func (r *AvailabilityRepo) GetByID(ctx context.Context, id uint64) (*model.TourAvailability, error) {
    const q = `SELECT ` + availabilityColumns + ` FROM tour_availability WHERE id = ?`
    var a model.TourAvailability
    if err := scanAvailability(r.db.QueryRowContext(ctx, q, id), &a); err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrAvailabilityNotFound
        }
        return nil, err
    }
    return &a, nil
}

// GetByIDTx is GetByID within an existing transaction.
func (r *AvailabilityRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.TourAvailability, error) {
    const q = `SELECT ` + availabilityColumns + ` FROM tour_availability WHERE id = ?`
    var a model.TourAvailability
    if err := scanAvailability(tx.QueryRowContext(ctx, q, id), &a); err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrAvailabilityNotFound
        }
        return nil, err
    }
    return &a, nil
}

// ListByTour returns all availability rows for a tour ordered by date.
func (r *AvailabilityRepo) ListByTour(ctx context.Context, tourID uint64) ([]model.TourAvailability, error) {
    const q = `SELECT ` + availabilityColumns + ` FROM tour_availability WHERE tour_id = ? ORDER BY date`
    rows, err := r.db.QueryContext(ctx, q, tourID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.TourAvailability
    for rows.Next() {
        var a model.TourAvailability
        if err := scanAvailability(rows, &a); err != nil {
            return nil, err
        }
        out = append(out, a)
    }
    return out, rows.Err()
}

// ReserveTx atomically consumes n spots from an availability row.  The
// capacity check and the increment happen in one guarded UPDATE, so the
// statement's row lock spans both: two concurrent reservations for the
// last spots can never both succeed.  When no row is updated the reason
// is diagnosed with a follow-up read.
func (r *AvailabilityRepo) ReserveTx(ctx context.Context, tx *sql.Tx, id uint64, n uint32) error {
    const q = `UPDATE tour_availability
        SET spots_reserved = spots_reserved + ?
        WHERE id = ? AND is_enabled = 1 AND spots_reserved + ? <= spots_total`
    res, err := tx.ExecContext(ctx, q, n, id, n)
    if err != nil {
        return err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if affected == 1 {
        return nil
    }
    return r.diagnoseTx(ctx, tx, id, n)
}

// diagnoseTx explains why a guarded reserve matched no row.
func (r *AvailabilityRepo) diagnoseTx(ctx context.Context, tx *sql.Tx, id uint64, n uint32) error {
    var (
        total    uint32
        reserved uint32
        enabled  bool
    )
    err := tx.QueryRowContext(ctx,
        `SELECT spots_total, spots_reserved, is_enabled FROM tour_availability WHERE id = ?`, id).
        Scan(&total, &reserved, &enabled)
    if err != nil {
        if err == sql.ErrNoRows {
            return ErrAvailabilityNotFound
        }
        return err
    }
    if !enabled {
        return ErrAvailabilityDisabled
    }
    return ErrNoCapacity
}

// ReleaseTx atomically returns n spots to an availability row.  The
// guard refuses to push spots_reserved below zero; hitting it means a
// double release upstream, which the lifecycle discipline rules out.
func (r *AvailabilityRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, id uint64, n uint32) error {
    const q = `UPDATE tour_availability
        SET spots_reserved = spots_reserved - ?
        WHERE id = ? AND spots_reserved >= ?`
    res, err := tx.ExecContext(ctx, q, n, id, n)
    if err != nil {
        return err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if affected == 0 {
        return ErrInvalidRelease
    }
    return nil
}

// SetEnabledByOperator flips the is_enabled flag on an availability
// row, verifying through the join that the calling operator owns the
// tour.  Disabled dates reject new bookings; existing bookings remain
// untouched, which is why rows are disabled rather than deleted.
func (r *AvailabilityRepo) SetEnabledByOperator(ctx context.Context, id, operatorID uint64, enabled bool) error {
    const q = `UPDATE tour_availability a
        JOIN tours t ON t.id = a.tour_id
        SET a.is_enabled = ?
        WHERE a.id = ? AND t.operator_id = ?`
    res, err := r.db.ExecContext(ctx, q, enabled, id, operatorID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        var exists int
        if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM tour_availability WHERE id = ?`, id).Scan(&exists); err != nil {
            if err == sql.ErrNoRows {
                return ErrAvailabilityNotFound
            }
            return err
        }
        return ErrForbidden
    }
    return nil
}
