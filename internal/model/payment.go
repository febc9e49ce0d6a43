package model

import "time"

// Payment status values stored in the payments.status enum column.
const (
    PaymentPending   = "PENDING"
    PaymentCompleted = "COMPLETED"
    PaymentFailed    = "FAILED"
    PaymentRefunded  = "REFUNDED"
)

// Payment method values stored in the payments.method enum column.
const (
    MethodCreditCard   = "CREDIT_CARD"
    MethodDebitCard    = "DEBIT_CARD"
    MethodPayPal       = "PAYPAL"
    MethodBankTransfer = "BANK_TRANSFER"
    MethodMobileMoney  = "MOBILE_MONEY"
)

// Payment records the monetary settlement of exactly one booking.
// Payments form an append-only audit trail: amounts are immutable once
// set and corrections happen as new state transitions, never as edits
// or deletes.  At creation time the amount must equal the owning
// booking's total price, and REFUNDED is reachable only from
// COMPLETED, exactly once.
//
// Fields:
//  ID             – primary key identifier.
//  BookingID      – owning booking (unique: one payment per booking).
//  AmountCents    – settled amount in minor units; equals booking total.
//  Currency       – 3-letter currency code for the amount.
//  Method         – payment method enum.
//  TransactionRef – external gateway transaction reference (unique).
//  Status         – PENDING, COMPLETED, FAILED or REFUNDED.
//  PaymentDate    – when the settlement completed (nullable).
//  RefundDate     – when the refund was issued (nullable).
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Payment struct {
    ID             uint64     // payments.id
    BookingID      uint64     // payments.booking_id (unique)
    AmountCents    int64      // payments.amount_cents
    Currency       string     // payments.currency
    Method         string     // payments.method
    TransactionRef string     // payments.transaction_ref (unique)
    Status         string     // payments.status
    PaymentDate    *time.Time // payments.payment_date (nullable)
    RefundDate     *time.Time // payments.refund_date (nullable)
    CreatedAt      time.Time  // payments.created_at
    UpdatedAt      time.Time  // payments.updated_at
}

// Amount returns the settled amount as a Money value.
func (p *Payment) Amount() Money {
    return Money{AmountCents: p.AmountCents, Currency: p.Currency}
}

// ValidMethod reports whether m is one of the accepted payment methods.
func ValidMethod(m string) bool {
    switch m {
    case MethodCreditCard, MethodDebitCard, MethodPayPal, MethodBankTransfer, MethodMobileMoney:
        return true
    }
    return false
}
