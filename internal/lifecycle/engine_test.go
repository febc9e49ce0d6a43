package lifecycle_test

import (
    "context"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/natourcam/tourism-api/internal/event"
    "github.com/natourcam/tourism-api/internal/lifecycle"
    "github.com/natourcam/tourism-api/internal/model"
)

// memStore is an in-memory lifecycle.Store.  A single mutex serializes
// whole transactions, which matches the row-lock discipline the MySQL
// store provides per availability row: the capacity check and increment
// are never observable half-done.  Mutations are applied to copies and
// written back only when the transaction function succeeds.
type memStore struct {
    mu           sync.Mutex
    tours        map[uint64]model.Tour
    slots        map[uint64]model.TourAvailability
    bookings     map[uint64]model.Booking
    participants map[uint64][]model.BookingParticipant
    payments     map[uint64]model.Payment // keyed by payment id
    nextID       uint64
}

func newMemStore() *memStore {
    return &memStore{
        tours:        map[uint64]model.Tour{},
        slots:        map[uint64]model.TourAvailability{},
        bookings:     map[uint64]model.Booking{},
        participants: map[uint64][]model.BookingParticipant{},
        payments:     map[uint64]model.Payment{},
        nextID:       1,
    }
}

// memTx stages changes against snapshots and commits them in one step.
type memTx struct {
    s        *memStore
    slots    map[uint64]model.TourAvailability
    bookings map[uint64]model.Booking
    payments map[uint64]model.Payment
    parts    map[uint64][]model.BookingParticipant
}

func (s *memStore) InTx(ctx context.Context, fn func(tx lifecycle.Tx) error) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    tx := &memTx{
        s:        s,
        slots:    map[uint64]model.TourAvailability{},
        bookings: map[uint64]model.Booking{},
        payments: map[uint64]model.Payment{},
        parts:    map[uint64][]model.BookingParticipant{},
    }
    if err := fn(tx); err != nil {
        return err
    }
    for id, v := range tx.slots {
        s.slots[id] = v
    }
    for id, v := range tx.bookings {
        s.bookings[id] = v
    }
    for id, v := range tx.payments {
        s.payments[id] = v
    }
    for id, v := range tx.parts {
        s.participants[id] = append(s.participants[id], v...)
    }
    return nil
}

func (t *memTx) slot(id uint64) (model.TourAvailability, bool) {
    if v, ok := t.slots[id]; ok {
        return v, true
    }
    v, ok := t.s.slots[id]
    return v, ok
}

func (t *memTx) booking(id uint64) (model.Booking, bool) {
    if v, ok := t.bookings[id]; ok {
        return v, true
    }
    v, ok := t.s.bookings[id]
    return v, ok
}

func (t *memTx) TourByID(ctx context.Context, id uint64) (*model.Tour, error) {
    v, ok := t.s.tours[id]
    if !ok {
        return nil, lifecycle.ErrTourNotFound
    }
    return &v, nil
}

func (t *memTx) SlotByID(ctx context.Context, id uint64) (*model.TourAvailability, error) {
    v, ok := t.slot(id)
    if !ok {
        return nil, lifecycle.ErrSlotNotFound
    }
    return &v, nil
}

func (t *memTx) ReserveSpots(ctx context.Context, slotID uint64, n uint32) error {
    v, ok := t.slot(slotID)
    if !ok {
        return lifecycle.ErrSlotNotFound
    }
    if !v.IsEnabled {
        return lifecycle.ErrSlotDisabled
    }
    if v.SpotsReserved+n > v.SpotsTotal {
        return lifecycle.ErrNoCapacity
    }
    v.SpotsReserved += n
    t.slots[slotID] = v
    return nil
}

func (t *memTx) ReleaseSpots(ctx context.Context, slotID uint64, n uint32) error {
    v, ok := t.slot(slotID)
    if !ok {
        return lifecycle.ErrSlotNotFound
    }
    if n > v.SpotsReserved {
        return lifecycle.ErrInvalidRelease
    }
    v.SpotsReserved -= n
    t.slots[slotID] = v
    return nil
}

func (t *memTx) InsertBooking(ctx context.Context, b *model.Booking) error {
    b.ID = t.s.nextID
    t.s.nextID++
    t.bookings[b.ID] = *b
    return nil
}

func (t *memTx) InsertParticipants(ctx context.Context, bookingID uint64, parts []model.BookingParticipant) error {
    t.parts[bookingID] = append(t.parts[bookingID], parts...)
    return nil
}

func (t *memTx) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
    v, ok := t.booking(id)
    if !ok {
        return nil, lifecycle.ErrBookingNotFound
    }
    return &v, nil
}

func (t *memTx) TransitionBooking(ctx context.Context, id uint64, from []string, to string, at time.Time) (bool, error) {
    v, ok := t.booking(id)
    if !ok {
        return false, nil
    }
    for _, f := range from {
        if v.Status == f {
            v.Status = to
            v.UpdatedAt = at
            t.bookings[id] = v
            return true, nil
        }
    }
    return false, nil
}

func (t *memTx) PaymentByBookingID(ctx context.Context, bookingID uint64) (*model.Payment, error) {
    for _, p := range t.payments {
        if p.BookingID == bookingID {
            return &p, nil
        }
    }
    for _, p := range t.s.payments {
        if p.BookingID == bookingID {
            return &p, nil
        }
    }
    return nil, lifecycle.ErrPaymentNotFound
}

func (t *memTx) InsertPayment(ctx context.Context, p *model.Payment) error {
    check := func(existing model.Payment) bool {
        return existing.TransactionRef == p.TransactionRef || existing.BookingID == p.BookingID
    }
    for _, e := range t.s.payments {
        if check(e) {
            return lifecycle.ErrDuplicateRef
        }
    }
    for _, e := range t.payments {
        if check(e) {
            return lifecycle.ErrDuplicateRef
        }
    }
    p.ID = t.s.nextID
    t.s.nextID++
    t.payments[p.ID] = *p
    return nil
}

func (t *memTx) MarkPaymentRefunded(ctx context.Context, paymentID uint64, at time.Time) (bool, error) {
    p, ok := t.payments[paymentID]
    if !ok {
        p, ok = t.s.payments[paymentID]
    }
    if !ok || p.Status != model.PaymentCompleted {
        return false, nil
    }
    p.Status = model.PaymentRefunded
    p.RefundDate = &at
    t.payments[paymentID] = p
    return true, nil
}

// recordingNotifier captures published events for assertions.
type recordingNotifier struct {
    mu     sync.Mutex
    events []event.BookingEvent
}

func (n *recordingNotifier) Publish(ctx context.Context, ev event.BookingEvent) error {
    n.mu.Lock()
    defer n.mu.Unlock()
    n.events = append(n.events, ev)
    return nil
}

func (n *recordingNotifier) types() []string {
    n.mu.Lock()
    defer n.mu.Unlock()
    out := make([]string, 0, len(n.events))
    for _, ev := range n.events {
        out = append(out, ev.Type)
    }
    return out
}

// fixture seeds a tour running all of 2026 with one availability row.
func fixture(total uint32) (*memStore, uint64) {
    s := newMemStore()
    s.tours[1] = model.Tour{
        ID:         1,
        OperatorID: 9,
        Title:      "Mount Cameroon Trek",
        PriceCents: 25000,
        Currency:   "USD",
        StartDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
        EndDate:    time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
        IsActive:   true,
    }
    s.slots[10] = model.TourAvailability{
        ID:         10,
        TourID:     1,
        Date:       time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
        SpotsTotal: total,
        IsEnabled:  true,
    }
    return s, 10
}

func usd(cents int64) model.Money {
    return model.Money{AmountCents: cents, Currency: "USD"}
}

func createReq(slotID uint64, participants uint32, total model.Money) lifecycle.CreateRequest {
    return lifecycle.CreateRequest{
        UserID:         42,
        AvailabilityID: slotID,
        Participants:   participants,
        TotalPrice:     total,
        EmergencyName:  "Ama Ngole",
        EmergencyPhone: "+237600000000",
    }
}

func TestCreateReservesCapacity(t *testing.T) {
    store, slotID := fixture(5)
    engine := lifecycle.NewEngine(store, nil)

    b, err := engine.Create(context.Background(), createReq(slotID, 3, usd(75000)))
    require.NoError(t, err)
    assert.Equal(t, model.BookingPending, b.Status)
    assert.Equal(t, int64(75000), b.TotalPriceCents)
    assert.Equal(t, uint32(3), store.slots[slotID].SpotsReserved)
}

func TestCreateRejectsZeroParticipants(t *testing.T) {
    store, slotID := fixture(5)
    engine := lifecycle.NewEngine(store, nil)

    _, err := engine.Create(context.Background(), createReq(slotID, 0, usd(0)))
    le, ok := lifecycle.AsError(err)
    require.True(t, ok)
    assert.Equal(t, lifecycle.KindValidation, le.Kind)
    assert.Equal(t, lifecycle.CodeInvalidParticipants, le.Code)
    // The slot must not have been touched.
    assert.Equal(t, uint32(0), store.slots[slotID].SpotsReserved)
}

func TestCreateRejectsPriceMismatch(t *testing.T) {
    store, slotID := fixture(5)
    engine := lifecycle.NewEngine(store, nil)

    _, err := engine.Create(context.Background(), createReq(slotID, 2, usd(49000)))
    le, ok := lifecycle.AsError(err)
    require.True(t, ok)
    assert.Equal(t, lifecycle.CodePriceMismatch, le.Code)
    assert.Equal(t, uint32(0), store.slots[slotID].SpotsReserved)
}

func TestCreateRejectsWhenSlotDisabled(t *testing.T) {
    store, slotID := fixture(5)
    slot := store.slots[slotID]
    slot.IsEnabled = false
    store.slots[slotID] = slot
    engine := lifecycle.NewEngine(store, nil)

    _, err := engine.Create(context.Background(), createReq(slotID, 1, usd(25000)))
    le, ok := lifecycle.AsError(err)
    require.True(t, ok)
    assert.Equal(t, lifecycle.KindCapacity, le.Kind)
    assert.Equal(t, lifecycle.CodeSlotDisabled, le.Code)
}

func TestCreateRejectsDateOutOfRange(t *testing.T) {
    store, slotID := fixture(5)
    slot := store.slots[slotID]
    slot.Date = time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
    store.slots[slotID] = slot
    engine := lifecycle.NewEngine(store, nil)

    _, err := engine.Create(context.Background(), createReq(slotID, 1, usd(25000)))
    le, ok := lifecycle.AsError(err)
    require.True(t, ok)
    assert.Equal(t, lifecycle.CodeDateOutOfRange, le.Code)
    assert.Equal(t, uint32(0), store.slots[slotID].SpotsReserved)
}

func TestCreateFailsClosedOnFullSlot(t *testing.T) {
    store, slotID := fixture(2)
    engine := lifecycle.NewEngine(store, nil)
    ctx := context.Background()

    _, err := engine.Create(ctx, createReq(slotID, 2, usd(50000)))
    require.NoError(t, err)
    assert.Equal(t, uint32(2), store.slots[slotID].SpotsReserved)

    _, err = engine.Create(ctx, createReq(slotID, 1, usd(25000)))
    le, ok := lifecycle.AsError(err)
    require.True(t, ok)
    assert.Equal(t, lifecycle.KindCapacity, le.Kind)
    assert.Equal(t, lifecycle.CodeInsufficientSpots, le.Code)
    assert.Equal(t, uint32(2), store.slots[slotID].SpotsReserved)
}

// Two simultaneous create calls racing for the last spot must resolve
// to exactly one success and one capacity failure, never two of either.
func TestConcurrentCreateNeverOverbooks(t *testing.T) {
    store, slotID := fixture(1)
    engine := lifecycle.NewEngine(store, nil)

    const racers = 8
    var wg sync.WaitGroup
    errs := make([]error, racers)
    for i := 0; i < racers; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, errs[i] = engine.Create(context.Background(), createReq(slotID, 1, usd(25000)))
        }(i)
    }
    wg.Wait()

    successes, capacityFailures := 0, 0
    for _, err := range errs {
        if err == nil {
            successes++
            continue
        }
        le, ok := lifecycle.AsError(err)
        require.True(t, ok)
        assert.Equal(t, lifecycle.KindCapacity, le.Kind)
        capacityFailures++
    }
    assert.Equal(t, 1, successes)
    assert.Equal(t, racers-1, capacityFailures)
    assert.Equal(t, uint32(1), store.slots[slotID].SpotsReserved)
}

func TestCancelRoundTripsCapacity(t *testing.T) {
    store, slotID := fixture(5)
    engine := lifecycle.NewEngine(store, nil)
    ctx := context.Background()

    b, err := engine.Create(ctx, createReq(slotID, 4, usd(100000)))
    require.NoError(t, err)
    require.Equal(t, uint32(4), store.slots[slotID].SpotsReserved)

    cancelled, err := engine.Cancel(ctx, b.ID, b.UserID)
    require.NoError(t, err)
    assert.Equal(t, model.BookingCancelled, cancelled.Status)
    assert.NotNil(t, cancelled.CancellationDate)
    assert.Equal(t, uint32(0), store.slots[slotID].SpotsReserved)
}

func TestCancelTwiceIsAStateError(t *testing.T) {
    store, slotID := fixture(5)
    engine := lifecycle.NewEngine(store, nil)
    ctx := context.Background()

    b, err := engine.Create(ctx, createReq(slotID, 2, usd(50000)))
    require.NoError(t, err)
    _, err = engine.Cancel(ctx, b.ID, b.UserID)
    require.NoError(t, err)

    _, err = engine.Cancel(ctx, b.ID, b.UserID)
    le, ok := lifecycle.AsError(err)
    require.True(t, ok)
    assert.Equal(t, lifecycle.KindState, le.Kind)
    assert.Equal(t, lifecycle.CodeAlreadyCancelled, le.Code)
    // The second call must not release capacity again.
    assert.Equal(t, uint32(0), store.slots[slotID].SpotsReserved)
}

func TestConcurrentCancelReleasesOnce(t *testing.T) {
    store, slotID := fixture(5)
    engine := lifecycle.NewEngine(store, nil)
    ctx := context.Background()

    b, err := engine.Create(ctx, createReq(slotID, 3, usd(75000)))
    require.NoError(t, err)

    const racers = 4
    var wg sync.WaitGroup
    errs := make([]error, racers)
    for i := 0; i < racers; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, errs[i] = engine.Cancel(ctx, b.ID, b.UserID)
        }(i)
    }
    wg.Wait()

    successes := 0
    for _, err := range errs {
        if err == nil {
            successes++
        } else {
            le, ok := lifecycle.AsError(err)
            require.True(t, ok)
            assert.Equal(t, lifecycle.KindState, le.Kind)
        }
    }
    assert.Equal(t, 1, successes)
    assert.Equal(t, uint32(0), store.slots[slotID].SpotsReserved)
}

func TestRecordPaymentConfirmsBooking(t *testing.T) {
    store, slotID := fixture(5)
    notifier := &recordingNotifier{}
    engine := lifecycle.NewEngine(store, notifier)
    ctx := context.Background()

    b, err := engine.Create(ctx, createReq(slotID, 3, usd(75000)))
    require.NoError(t, err)

    p, err := engine.RecordPayment(ctx, b.ID, model.MethodMobileMoney, "txn-001", usd(75000))
    require.NoError(t, err)
    assert.Equal(t, model.PaymentCompleted, p.Status)
    assert.NotNil(t, p.PaymentDate)
    assert.Equal(t, model.BookingConfirmed, store.bookings[b.ID].Status)
    assert.Equal(t, []string{event.TypeBookingCreated, event.TypeBookingConfirmed}, notifier.types())
}

func TestRecordPaymentRejectsAmountMismatch(t *testing.T) {
    store, slotID := fixture(5)
    engine := lifecycle.NewEngine(store, nil)
    ctx := context.Background()

    b, err := engine.Create(ctx, createReq(slotID, 3, usd(75000)))
    require.NoError(t, err)

    _, err = engine.RecordPayment(ctx, b.ID, model.MethodCreditCard, "txn-002", usd(70000))
    le, ok := lifecycle.AsError(err)
    require.True(t, ok)
    assert.Equal(t, lifecycle.KindValidation, le.Kind)
    assert.Equal(t, lifecycle.CodeAmountMismatch, le.Code)
    // Booking must remain pending.
    assert.Equal(t, model.BookingPending, store.bookings[b.ID].Status)
}

func TestRecordPaymentRejectsCurrencyMismatch(t *testing.T) {
    store, slotID := fixture(5)
    engine := lifecycle.NewEngine(store, nil)
    ctx := context.Background()

    b, err := engine.Create(ctx, createReq(slotID, 1, usd(25000)))
    require.NoError(t, err)

    _, err = engine.RecordPayment(ctx, b.ID, model.MethodCreditCard, "txn-003", model.Money{AmountCents: 25000, Currency: "EUR"})
    le, ok := lifecycle.AsError(err)
    require.True(t, ok)
    assert.Equal(t, lifecycle.CodeAmountMismatch, le.Code)
}

func TestRecordPaymentRejectsDuplicateRef(t *testing.T) {
    store, slotID := fixture(5)
    engine := lifecycle.NewEngine(store, nil)
    ctx := context.Background()

    b1, err := engine.Create(ctx, createReq(slotID, 1, usd(25000)))
    require.NoError(t, err)
    b2, err := engine.Create(ctx, createReq(slotID, 1, usd(25000)))
    require.NoError(t, err)

    _, err = engine.RecordPayment(ctx, b1.ID, model.MethodPayPal, "txn-dup", usd(25000))
    require.NoError(t, err)

    _, err = engine.RecordPayment(ctx, b2.ID, model.MethodPayPal, "txn-dup", usd(25000))
    le, ok := lifecycle.AsError(err)
    require.True(t, ok)
    assert.Equal(t, lifecycle.KindConflict, le.Kind)
    assert.Equal(t, lifecycle.CodeDuplicateRef, le.Code)
    assert.Equal(t, model.BookingPending, store.bookings[b2.ID].Status)
}

func TestRecordPaymentOnConfirmedBookingIsAStateError(t *testing.T) {
    store, slotID := fixture(5)
    engine := lifecycle.NewEngine(store, nil)
    ctx := context.Background()

    b, err := engine.Create(ctx, createReq(slotID, 1, usd(25000)))
    require.NoError(t, err)
    _, err = engine.RecordPayment(ctx, b.ID, model.MethodCreditCard, "txn-004", usd(25000))
    require.NoError(t, err)

    // Duplicate gateway webhook: the booking is no longer pending.
    _, err = engine.RecordPayment(ctx, b.ID, model.MethodCreditCard, "txn-005", usd(25000))
    le, ok := lifecycle.AsError(err)
    require.True(t, ok)
    assert.Equal(t, lifecycle.KindState, le.Kind)
    assert.Equal(t, lifecycle.CodeBookingNotPending, le.Code)
}

// Scenario A from the lifecycle contract: create, pay, cancel with
// refund, with capacity returning to its pre-create value.
func TestFullLifecycleWithRefund(t *testing.T) {
    store, slotID := fixture(5)
    notifier := &recordingNotifier{}
    engine := lifecycle.NewEngine(store, notifier)
    ctx := context.Background()

    b, err := engine.Create(ctx, createReq(slotID, 3, usd(75000)))
    require.NoError(t, err)
    require.Equal(t, uint32(3), store.slots[slotID].SpotsReserved)

    p, err := engine.RecordPayment(ctx, b.ID, model.MethodBankTransfer, "txn-100", usd(75000))
    require.NoError(t, err)
    require.Equal(t, model.BookingConfirmed, store.bookings[b.ID].Status)

    cancelled, err := engine.Cancel(ctx, b.ID, b.UserID)
    require.NoError(t, err)
    assert.Equal(t, model.BookingCancelled, cancelled.Status)
    assert.Equal(t, uint32(0), store.slots[slotID].SpotsReserved)

    refunded := store.payments[p.ID]
    assert.Equal(t, model.PaymentRefunded, refunded.Status)
    assert.NotNil(t, refunded.RefundDate)

    assert.Equal(t, []string{
        event.TypeBookingCreated,
        event.TypeBookingConfirmed,
        event.TypeBookingCancelled,
    }, notifier.types())
    last := notifier.events[len(notifier.events)-1]
    assert.True(t, last.Refunded)
}

func TestCompleteRequiresConfirmed(t *testing.T) {
    store, slotID := fixture(5)
    engine := lifecycle.NewEngine(store, nil)
    ctx := context.Background()

    b, err := engine.Create(ctx, createReq(slotID, 1, usd(25000)))
    require.NoError(t, err)

    _, err = engine.Complete(ctx, b.ID, true)
    le, ok := lifecycle.AsError(err)
    require.True(t, ok)
    assert.Equal(t, lifecycle.CodeNotConfirmed, le.Code)
}

func TestCompleteRejectsFutureDateWithoutForce(t *testing.T) {
    store, slotID := fixture(5)
    slot := store.slots[slotID]
    slot.Date = time.Now().UTC().AddDate(0, 1, 0)
    store.slots[slotID] = slot
    // Widen the tour range so the future date is bookable.
    tour := store.tours[1]
    tour.EndDate = slot.Date.AddDate(1, 0, 0)
    store.tours[1] = tour
    engine := lifecycle.NewEngine(store, nil)
    ctx := context.Background()

    b, err := engine.Create(ctx, createReq(slotID, 1, usd(25000)))
    require.NoError(t, err)
    _, err = engine.RecordPayment(ctx, b.ID, model.MethodCreditCard, "txn-200", usd(25000))
    require.NoError(t, err)

    _, err = engine.Complete(ctx, b.ID, false)
    le, ok := lifecycle.AsError(err)
    require.True(t, ok)
    assert.Equal(t, lifecycle.CodeDateNotPassed, le.Code)

    // Explicit operator action overrides the date guard.
    done, err := engine.Complete(ctx, b.ID, true)
    require.NoError(t, err)
    assert.Equal(t, model.BookingCompleted, done.Status)
    assert.NotNil(t, done.CompletedDate)
}

func TestCancelCompletedBookingIsInvalid(t *testing.T) {
    store, slotID := fixture(5)
    engine := lifecycle.NewEngine(store, nil)
    ctx := context.Background()

    b, err := engine.Create(ctx, createReq(slotID, 2, usd(50000)))
    require.NoError(t, err)
    _, err = engine.RecordPayment(ctx, b.ID, model.MethodCreditCard, "txn-300", usd(50000))
    require.NoError(t, err)
    _, err = engine.Complete(ctx, b.ID, true)
    require.NoError(t, err)

    _, err = engine.Cancel(ctx, b.ID, b.UserID)
    le, ok := lifecycle.AsError(err)
    require.True(t, ok)
    assert.Equal(t, lifecycle.KindState, le.Kind)
    assert.Equal(t, lifecycle.CodeInvalidTransition, le.Code)
    // Completion keeps the spots consumed.
    assert.Equal(t, uint32(2), store.slots[slotID].SpotsReserved)
}

// The capacity invariant 0 <= reserved <= total must hold at every
// point across arbitrary create/cancel sequences on one slot.
func TestCapacityInvariantAcrossSequences(t *testing.T) {
    store, slotID := fixture(3)
    engine := lifecycle.NewEngine(store, nil)
    ctx := context.Background()

    check := func() {
        s := store.slots[slotID]
        assert.LessOrEqual(t, s.SpotsReserved, s.SpotsTotal)
    }

    var ids []uint64
    for i := 0; i < 3; i++ {
        b, err := engine.Create(ctx, createReq(slotID, 1, usd(25000)))
        require.NoError(t, err)
        ids = append(ids, b.ID)
        check()
    }
    _, err := engine.Create(ctx, createReq(slotID, 1, usd(25000)))
    require.Error(t, err)
    check()

    for _, id := range ids {
        _, err := engine.Cancel(ctx, id, 42)
        require.NoError(t, err)
        check()
    }
    assert.Equal(t, uint32(0), store.slots[slotID].SpotsReserved)
}
