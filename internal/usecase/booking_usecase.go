package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"rentora/internal/domain/entity"
	"rentora/internal/domain/repository"
	"rentora/pkg/errors"
	"rentora/pkg/logger"
	"rentora/pkg/utils"
)

const (
	commissionRate = 0.15
	maxBookingDays = 90
)

type BookingUseCase struct {
	bookingRepo  repository.BookingRepository
	propertyRepo repository.PropertyRepository
	userRepo     repository.UserRepository
	companyRepo  repository.CompanyRepository
	ledgerRepo   repository.LedgerRepository
	notifier     *NotificationUseCase
}

func NewBookingUseCase(
	bookingRepo repository.BookingRepository,
	propertyRepo repository.PropertyRepository,
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	ledgerRepo repository.LedgerRepository,
	notifier *NotificationUseCase,
) *BookingUseCase {
	return &BookingUseCase{
		bookingRepo:  bookingRepo,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		companyRepo:  companyRepo,
		ledgerRepo:   ledgerRepo,
		notifier:     notifier,
	}
}

// CreateBooking validates dates and funds, checks for overlapping open
// bookings on the property and persists a Pending booking. No money
// moves here; the tenant is only debited at confirmation.
func (uc *BookingUseCase) CreateBooking(ctx context.Context, tenant *entity.User, propertyID string, startDate, endDate time.Time) (*entity.Booking, error) {
	start := dateOnly(startDate)
	end := dateOnly(endDate)
	today := dateOnly(time.Now())

	if start.Before(today) {
		return nil, errors.Validation("start date cannot be in the past", nil)
	}
	if !end.After(start) {
		return nil, errors.Validation("end date must be after start date", nil)
	}
	days := int(end.Sub(start).Hours() / 24)
	if days > maxBookingDays {
		return nil, errors.Validation(fmt.Sprintf("booking cannot exceed %d days", maxBookingDays), nil)
	}

	property, err := uc.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	// Rounded after every arithmetic step; a single final rounding
	// diverges by cents on some inputs and breaks stored totals.
	dailyPrice := utils.Round2(property.MonthlyPrice / 30)
	if dailyPrice <= 0 {
		return nil, errors.Validation("property has no valid price", nil)
	}
	totalCost := utils.Round2(float64(days) * dailyPrice)
	commission := utils.Round2(totalCost * commissionRate)
	amountToCompany := utils.Round2(totalCost - commission)

	fresh, err := uc.userRepo.GetByUsername(ctx, tenant.Username)
	if err != nil {
		return nil, err
	}
	if fresh.Balance < totalCost {
		return nil, errors.InsufficientFunds("balance does not cover the booking cost")
	}

	open, err := uc.bookingRepo.ListOpenByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	for _, existing := range open {
		if existing.Overlaps(start, end) {
			return nil, errors.Conflict("property is already booked for these dates")
		}
	}

	booking := &entity.Booking{
		PropertyID:          property.ID,
		TenantUserID:        tenant.Username,
		StartDate:           start,
		EndDate:             end,
		TotalCost:           totalCost,
		CommissionAmount:    commission,
		AmountPaidToCompany: amountToCompany,
		Status:              entity.BookingPending,
	}
	if err := uc.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	uc.notifyTeam(ctx, property.CompanyID, NotificationPayload{
		Type:  "booking_requested",
		Title: "New booking request",
		Body:  fmt.Sprintf("%s requested %s from %s to %s", tenant.Username, property.Title, start.Format("2006-01-02"), end.Format("2006-01-02")),
		Data:  map[string]interface{}{"bookingId": booking.ID, "propertyId": property.ID},
	})

	return booking, nil
}

// ConfirmBooking moves a Pending booking to Active and settles the money
// in one transaction: tenant debited the total, company credited the
// total minus commission, one ledger line each. If the tenant can no
// longer afford the booking it is auto-rejected instead; that outcome is
// a successful decision, not an error.
func (uc *BookingUseCase) ConfirmBooking(ctx context.Context, confirmer *entity.User, bookingID string) (*entity.Booking, error) {
	booking, property, err := uc.loadForCompanyAction(ctx, confirmer, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != entity.BookingPending {
		return nil, errors.InvalidState(fmt.Sprintf("cannot confirm a %s booking", booking.Status))
	}

	tenant, err := uc.userRepo.GetByUsername(ctx, booking.TenantUserID)
	if err != nil {
		return nil, err
	}
	if tenant.Balance < booking.TotalCost {
		return uc.autoReject(ctx, booking, property, confirmer)
	}

	now := time.Now()
	booking.Status = entity.BookingActive
	booking.ConfirmedAt = &now
	booking.ConfirmedBy = confirmer.Username

	transfer := &repository.BookingTransfer{
		Booking:       booking,
		RequireStatus: entity.BookingPending,
		Tenant: repository.BalanceSide{
			OwnerID:       booking.TenantUserID,
			OwnerKind:     entity.OwnerUser,
			Amount:        -booking.TotalCost,
			OperationType: entity.OpBookingPayment,
			Description:   fmt.Sprintf("Payment for booking of %s", property.Title),
		},
		Company: repository.BalanceSide{
			OwnerID:       property.CompanyID,
			OwnerKind:     entity.OwnerCompany,
			Amount:        booking.AmountPaidToCompany,
			OperationType: entity.OpBookingIncome,
			Description:   fmt.Sprintf("Income from booking of %s", property.Title),
		},
	}
	if err := uc.ledgerRepo.ApplyBookingTransfer(ctx, transfer); err != nil {
		// The balance may have dropped between the pre-check and the
		// transaction; that race still resolves to a rejection.
		if errors.Is(err, "INSUFFICIENT_FUNDS") {
			booking.Status = entity.BookingPending
			booking.ConfirmedAt = nil
			booking.ConfirmedBy = ""
			return uc.autoReject(ctx, booking, property, confirmer)
		}
		return nil, err
	}

	uc.notifier.Notify(ctx, []string{booking.TenantUserID}, NotificationPayload{
		Type:  "booking_confirmed",
		Title: "Booking confirmed",
		Body:  fmt.Sprintf("Your booking of %s is confirmed; %.2f was charged", property.Title, booking.TotalCost),
		Data:  map[string]interface{}{"bookingId": booking.ID},
	})
	uc.notifyTeam(ctx, property.CompanyID, NotificationPayload{
		Type:  "booking_confirmed",
		Title: "Booking confirmed",
		Body:  fmt.Sprintf("Booking of %s confirmed by %s", property.Title, confirmer.Username),
		Data:  map[string]interface{}{"bookingId": booking.ID},
	})

	return booking, nil
}

func (uc *BookingUseCase) autoReject(ctx context.Context, booking *entity.Booking, property *entity.Property, actor *entity.User) (*entity.Booking, error) {
	now := time.Now()
	booking.Status = entity.BookingRejected
	booking.RejectedAt = &now
	booking.RejectedBy = actor.Username
	booking.RejectedReason = "insufficient funds at confirmation"
	if err := uc.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	uc.notifyBothSides(ctx, booking, property, NotificationPayload{
		Type:  "booking_rejected",
		Title: "Booking rejected",
		Body:  fmt.Sprintf("Booking of %s was rejected: %s", property.Title, booking.RejectedReason),
		Data:  map[string]interface{}{"bookingId": booking.ID},
	})

	return booking, nil
}

// RejectBooking declines a Pending booking. The tenant was never
// debited, so no money moves.
func (uc *BookingUseCase) RejectBooking(ctx context.Context, rejecter *entity.User, bookingID, reason string) (*entity.Booking, error) {
	booking, property, err := uc.loadForCompanyAction(ctx, rejecter, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != entity.BookingPending {
		return nil, errors.InvalidState(fmt.Sprintf("cannot reject a %s booking", booking.Status))
	}

	now := time.Now()
	booking.Status = entity.BookingRejected
	booking.RejectedAt = &now
	booking.RejectedBy = rejecter.Username
	booking.RejectedReason = reason
	if err := uc.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	uc.notifyBothSides(ctx, booking, property, NotificationPayload{
		Type:  "booking_rejected",
		Title: "Booking rejected",
		Body:  fmt.Sprintf("Booking of %s was rejected: %s", property.Title, reason),
		Data:  map[string]interface{}{"bookingId": booking.ID},
	})

	return booking, nil
}

// CancelByTenant cancels the tenant's own booking. Pending bookings
// carry no money and just flip status; Active bookings are refunded in
// full, with the company debited its share in the same transaction.
func (uc *BookingUseCase) CancelByTenant(ctx context.Context, tenant *entity.User, bookingID string) (*entity.Booking, error) {
	booking, err := uc.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.TenantUserID != tenant.Username {
		return nil, errors.Forbidden("You can only cancel your own bookings", nil)
	}

	property, err := uc.propertyRepo.GetByID(ctx, booking.PropertyID)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case entity.BookingPending:
		now := time.Now()
		booking.Status = entity.BookingCancelled
		booking.CancelledAt = &now
		booking.CancelledBy = tenant.Username
		if err := uc.bookingRepo.Update(ctx, booking); err != nil {
			return nil, err
		}

	case entity.BookingActive:
		if err := uc.refund(ctx, booking, property, tenant.Username, entity.BookingCancelled, "Refund for cancelled booking"); err != nil {
			return nil, err
		}

	default:
		return nil, errors.InvalidState(fmt.Sprintf("cannot cancel a %s booking", booking.Status))
	}

	uc.notifyBothSides(ctx, booking, property, NotificationPayload{
		Type:  "booking_cancelled",
		Title: "Booking cancelled",
		Body:  fmt.Sprintf("Booking of %s was cancelled by the tenant", property.Title),
		Data:  map[string]interface{}{"bookingId": booking.ID},
	})

	return booking, nil
}

// CancelByCompanyOrAdmin annuls an Active booking on the company's or an
// admin's initiative, with the same refund flow as a tenant cancellation.
func (uc *BookingUseCase) CancelByCompanyOrAdmin(ctx context.Context, actor *entity.User, bookingID string) (*entity.Booking, error) {
	booking, property, err := uc.loadForCompanyAction(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != entity.BookingActive {
		return nil, errors.InvalidState(fmt.Sprintf("cannot annul a %s booking", booking.Status))
	}

	if err := uc.refund(ctx, booking, property, actor.Username, entity.BookingAnnulled, "administrative annulment"); err != nil {
		return nil, err
	}

	uc.notifyBothSides(ctx, booking, property, NotificationPayload{
		Type:  "booking_annulled",
		Title: "Booking annulled",
		Body:  fmt.Sprintf("Booking of %s was annulled; the payment was refunded", property.Title),
		Data:  map[string]interface{}{"bookingId": booking.ID},
	})

	return booking, nil
}

func (uc *BookingUseCase) refund(ctx context.Context, booking *entity.Booking, property *entity.Property, actor string, target entity.BookingStatus, description string) error {
	requireStatus := booking.Status
	now := time.Now()
	booking.Status = target
	booking.CancelledAt = &now
	booking.CancelledBy = actor

	transfer := &repository.BookingTransfer{
		Booking:       booking,
		RequireStatus: requireStatus,
		Tenant: repository.BalanceSide{
			OwnerID:       booking.TenantUserID,
			OwnerKind:     entity.OwnerUser,
			Amount:        booking.TotalCost,
			OperationType: entity.OpBookingRefund,
			Description:   fmt.Sprintf("%s of %s", description, property.Title),
		},
		Company: repository.BalanceSide{
			OwnerID:       property.CompanyID,
			OwnerKind:     entity.OwnerCompany,
			Amount:        -booking.AmountPaidToCompany,
			OperationType: entity.OpBookingRefund,
			Description:   fmt.Sprintf("%s of %s", description, property.Title),
			AllowNegative: true,
		},
	}
	return uc.ledgerRepo.ApplyBookingTransfer(ctx, transfer)
}

// HardDelete removes the booking record itself. Only admins may do it
// and only for settled bookings; deleting an open booking would orphan
// either pending money or a live stay.
func (uc *BookingUseCase) HardDelete(ctx context.Context, admin *entity.User, bookingID string) error {
	if admin.Role != entity.RoleAdmin {
		return errors.Forbidden("Only admins can delete bookings", nil)
	}

	booking, err := uc.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if !booking.Status.Terminal() {
		return errors.InvalidState(fmt.Sprintf("cannot delete a %s booking", booking.Status))
	}

	return uc.bookingRepo.Delete(ctx, bookingID)
}

func (uc *BookingUseCase) ListForTenant(ctx context.Context, tenant *entity.User) ([]*entity.Booking, error) {
	return uc.bookingRepo.ListByTenant(ctx, tenant.Username)
}

// ListForCompany merges the bookings of every property the company owns,
// newest first.
func (uc *BookingUseCase) ListForCompany(ctx context.Context, actor *entity.User, companyID string) ([]*entity.Booking, error) {
	if actor.Role != entity.RoleAdmin && !(actor.IsCompanySide() && actor.CompanyID == companyID) {
		return nil, errors.Forbidden("You are not a member of this company", nil)
	}

	properties, err := uc.propertyRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	var bookings []*entity.Booking
	for _, property := range properties {
		batch, err := uc.bookingRepo.ListByProperty(ctx, property.ID)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, batch...)
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})

	return bookings, nil
}

func (uc *BookingUseCase) BalanceHistory(ctx context.Context, ownerID string, kind entity.OwnerKind, limit int) ([]*entity.BalanceEntry, error) {
	return uc.ledgerRepo.EntriesFor(ctx, ownerID, kind, limit)
}

// loadForCompanyAction fetches the booking and its property and checks
// the actor may act on the company's behalf (admin, or owner/staff of
// the property's company).
func (uc *BookingUseCase) loadForCompanyAction(ctx context.Context, actor *entity.User, bookingID string) (*entity.Booking, *entity.Property, error) {
	booking, err := uc.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	property, err := uc.propertyRepo.GetByID(ctx, booking.PropertyID)
	if err != nil {
		return nil, nil, err
	}
	if actor.Role != entity.RoleAdmin && !(actor.IsCompanySide() && actor.CompanyID == property.CompanyID) {
		return nil, nil, errors.Forbidden("You cannot manage bookings for this property", nil)
	}
	return booking, property, nil
}

func (uc *BookingUseCase) notifyTeam(ctx context.Context, companyID string, payload NotificationPayload) {
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		logger.Warn("failed to load company %s for notification: %v", companyID, err)
		return
	}
	uc.notifier.Notify(ctx, company.MemberUsernames(), payload)
}

func (uc *BookingUseCase) notifyBothSides(ctx context.Context, booking *entity.Booking, property *entity.Property, payload NotificationPayload) {
	uc.notifier.Notify(ctx, []string{booking.TenantUserID}, payload)
	uc.notifyTeam(ctx, property.CompanyID, payload)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
