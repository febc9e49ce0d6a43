package model

import "time"

// Tour statuses for the difficulty_level enum column.
const (
    DifficultyEasy        = "EASY"
    DifficultyModerate    = "MODERATE"
    DifficultyChallenging = "CHALLENGING"
    DifficultyDifficult   = "DIFFICULT"
)

// Tour represents a bookable tour package published by a tour operator.
// Pricing is per participant; the valid date range bounds the
// availability dates that may be published for the tour.
//
// Fields:
//  ID              – primary key identifier.
//  OperatorID      – user (OPERATOR role) who owns the tour.
//  Title           – tour title.
//  Description     – free-form description.
//  DurationDays    – length of the tour in days.
//  MaxParticipants – upper bound used when publishing availability.
//  Difficulty      – difficulty level (EASY..DIFFICULT).
//  PriceCents      – per-participant price in minor units.
//  Currency        – 3-letter currency code for the price.
//  StartDate       – first date on which the tour may run.
//  EndDate         – last date on which the tour may run.
//  StartLocation   – where the tour begins.
//  EndLocation     – where the tour ends.
//  Includes        – what the price covers.
//  Excludes        – what the price does not cover.
//  IsActive        – soft-delete / publication flag.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Tour struct {
    ID              uint64    // tours.id
    OperatorID      uint64    // tours.operator_id
    Title           string    // tours.title
    Description     string    // tours.description
    DurationDays    uint32    // tours.duration_days
    MaxParticipants uint32    // tours.max_participants
    Difficulty      string    // tours.difficulty_level
    PriceCents      int64     // tours.price_cents
    Currency        string    // tours.currency
    StartDate       time.Time // tours.start_date (date only)
    EndDate         time.Time // tours.end_date (date only)
    StartLocation   string    // tours.start_location
    EndLocation     string    // tours.end_location
    Includes        string    // tours.includes
    Excludes        string    // tours.excludes
    IsActive        bool      // tours.is_active
    CreatedAt       time.Time // tours.created_at
    UpdatedAt       time.Time // tours.updated_at
}

// UnitPrice returns the per-participant price as a Money value.
func (t *Tour) UnitPrice() Money {
    return Money{AmountCents: t.PriceCents, Currency: t.Currency}
}

// DateInRange reports whether d falls within the tour's valid date
// range (inclusive on both ends).  Only the date component matters.
func (t *Tour) DateInRange(d time.Time) bool {
    day := d.Truncate(24 * time.Hour)
    return !day.Before(t.StartDate) && !day.After(t.EndDate)
}
