package entity

import (
	"time"
)

type OwnerKind string

const (
	OwnerUser    OwnerKind = "user"
	OwnerCompany OwnerKind = "company"
)

// Balance operation types recorded on ledger lines.
const (
	OpBookingPayment = "booking_payment"
	OpBookingIncome  = "booking_income"
	OpBookingRefund  = "booking_refund"
)

// BalanceEntry is an append-only ledger line. The live Balance field on
// User/Company is the source of truth; entries are written atomically
// alongside every balance mutation and never updated afterwards.
type BalanceEntry struct {
	ID            string    `json:"id" firestore:"id"`
	OwnerID       string    `json:"owner_id" firestore:"ownerId"`
	OwnerKind     OwnerKind `json:"owner_kind" firestore:"ownerKind"`
	Date          time.Time `json:"date" firestore:"date"`
	Amount        float64   `json:"amount" firestore:"amount"`
	OperationType string    `json:"operation_type" firestore:"operationType"`
	Description   string    `json:"description" firestore:"description"`
	NewBalance    float64   `json:"new_balance" firestore:"newBalance"`
	BookingID     string    `json:"booking_id,omitempty" firestore:"bookingId,omitempty"`
}
