package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"rentora/internal/domain/entity"
	"rentora/internal/domain/repository"
	"rentora/pkg/errors"
	"rentora/pkg/utils"
)

type firestoreLedgerRepository struct {
	client *firestore.Client
}

func NewFirestoreLedgerRepository(client *firestore.Client) repository.LedgerRepository {
	return &firestoreLedgerRepository{
		client: client,
	}
}

// ApplyBookingTransfer commits the booking state, both balance moves and
// both ledger lines in one transaction. The booking is re-read inside the
// transaction so a concurrent transition surfaces as INVALID_STATE, and a
// debit that would overdraw aborts everything with INSUFFICIENT_FUNDS.
func (r *firestoreLedgerRepository) ApplyBookingTransfer(ctx context.Context, transfer *repository.BookingTransfer) error {
	booking := transfer.Booking
	bookingRef := r.client.Collection("bookings").Doc(booking.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		bookingDoc, err := tx.Get(bookingRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Booking", nil)
			}
			return err
		}
		var current entity.Booking
		if err := bookingDoc.DataTo(&current); err != nil {
			return err
		}
		if current.Status != transfer.RequireStatus {
			return errors.InvalidState(fmt.Sprintf("booking is %s, expected %s", current.Status, transfer.RequireStatus))
		}

		sides := []repository.BalanceSide{transfer.Tenant, transfer.Company}
		refs := make([]*firestore.DocumentRef, len(sides))
		newBalances := make([]float64, len(sides))

		// All reads first, Firestore transactions forbid reads after
		// the first write.
		for i, side := range sides {
			refs[i] = r.ownerRef(side)
			doc, err := tx.Get(refs[i])
			if err != nil {
				if status.Code(err) == codes.NotFound {
					return errors.NotFound(r.ownerLabel(side.OwnerKind), nil)
				}
				return err
			}
			balance, err := doc.DataAt("balance")
			if err != nil {
				return err
			}
			newBalance := utils.Round2(asFloat(balance) + side.Amount)
			if side.Amount < 0 && newBalance < 0 && !side.AllowNegative {
				return errors.InsufficientFunds("balance would go negative")
			}
			newBalances[i] = newBalance
		}

		if err := tx.Set(bookingRef, booking); err != nil {
			return err
		}

		now := time.Now()
		for i, side := range sides {
			if err := tx.Update(refs[i], []firestore.Update{
				{Path: "balance", Value: newBalances[i]},
				{Path: "updatedAt", Value: now},
			}); err != nil {
				return err
			}

			entry := &entity.BalanceEntry{
				ID:            uuid.New().String(),
				OwnerID:       side.OwnerID,
				OwnerKind:     side.OwnerKind,
				Date:          now,
				Amount:        side.Amount,
				OperationType: side.OperationType,
				Description:   side.Description,
				NewBalance:    newBalances[i],
				BookingID:     booking.ID,
			}
			if err := tx.Set(r.client.Collection("balance_entries").Doc(entry.ID), entry); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if _, ok := err.(*errors.AppError); ok {
			return err
		}
		return errors.Internal("Failed to apply booking transfer", err)
	}

	return nil
}

func (r *firestoreLedgerRepository) EntriesFor(ctx context.Context, ownerID string, kind entity.OwnerKind, limit int) ([]*entity.BalanceEntry, error) {
	query := r.client.Collection("balance_entries").
		Where("ownerId", "==", ownerID).
		Where("ownerKind", "==", string(kind)).
		OrderBy("date", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to fetch balance entries", err)
	}

	entries := make([]*entity.BalanceEntry, 0, len(docs))
	for _, doc := range docs {
		var entry entity.BalanceEntry
		if err := doc.DataTo(&entry); err != nil {
			return nil, errors.Internal("Failed to parse balance entry", err)
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}

func (r *firestoreLedgerRepository) ownerRef(side repository.BalanceSide) *firestore.DocumentRef {
	if side.OwnerKind == entity.OwnerCompany {
		return r.client.Collection("companies").Doc(side.OwnerID)
	}
	return r.client.Collection("users").Doc(side.OwnerID)
}

func (r *firestoreLedgerRepository) ownerLabel(kind entity.OwnerKind) string {
	if kind == entity.OwnerCompany {
		return "Company"
	}
	return "User"
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}
