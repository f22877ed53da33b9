package repository

import (
	"context"

	"rentora/internal/domain/entity"
)

// BalanceSide describes one leg of a booking transfer. Amount is signed:
// negative debits the owner, positive credits it. AllowNegative lets a
// debit overdraw the balance; refunds set it on the company side, since
// a tenant is owed their money back regardless of what the company has
// spent in the meantime.
type BalanceSide struct {
	OwnerID       string
	OwnerKind     entity.OwnerKind
	Amount        float64
	OperationType string
	Description   string
	AllowNegative bool
}

// BookingTransfer is applied as a single atomic transaction: the booking
// document takes the state carried in Booking, both balances move, and
// one ledger line is appended per side. RequireStatus guards against
// concurrent transitions; a tenant debit that would overdraw fails the
// whole transfer with INSUFFICIENT_FUNDS and nothing is written.
type BookingTransfer struct {
	Booking       *entity.Booking
	RequireStatus entity.BookingStatus
	Tenant        BalanceSide
	Company       BalanceSide
}

type LedgerRepository interface {
	ApplyBookingTransfer(ctx context.Context, transfer *BookingTransfer) error
	EntriesFor(ctx context.Context, ownerID string, kind entity.OwnerKind, limit int) ([]*entity.BalanceEntry, error)
}
