package model

import "time"

// TourAvailability is a date-scoped capacity unit for one tour: the
// inventory slot that bookings consume spots from.  A tour has at most
// one availability row per date.  The invariant
// 0 <= SpotsReserved <= SpotsTotal holds at all times; both counters
// are mutated only through the booking lifecycle engine's reserve and
// release operations, never by catalog or presentation code.
//
// Fields:
//  ID            – primary key identifier.
//  TourID        – tour this availability date belongs to.
//  Date          – the date being offered (date only, UTC).
//  SpotsTotal    – total capacity published for the date.
//  SpotsReserved – spots currently consumed by PENDING or CONFIRMED bookings.
//  IsEnabled     – soft-disable flag; disabled dates reject new bookings
//                  but are never deleted while bookings reference them.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type TourAvailability struct {
    ID            uint64    // tour_availability.id
    TourID        uint64    // tour_availability.tour_id
    Date          time.Time // tour_availability.date
    SpotsTotal    uint32    // tour_availability.spots_total
    SpotsReserved uint32    // tour_availability.spots_reserved
    IsEnabled     bool      // tour_availability.is_enabled
    CreatedAt     time.Time // tour_availability.created_at
    UpdatedAt     time.Time // tour_availability.updated_at
}

// Remaining returns the number of spots still free on this date.
func (a *TourAvailability) Remaining() uint32 {
    if a.SpotsReserved > a.SpotsTotal {
        return 0
    }
    return a.SpotsTotal - a.SpotsReserved
}
