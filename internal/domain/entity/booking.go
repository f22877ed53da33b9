package entity

import (
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingActive    BookingStatus = "Active"
	BookingRejected  BookingStatus = "Rejected"
	BookingCancelled BookingStatus = "Cancelled"
	BookingAnnulled  BookingStatus = "Annulled"
)

// Terminal reports whether no further transition may leave the status.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingRejected, BookingCancelled, BookingAnnulled:
		return true
	}
	return false
}

type Booking struct {
	ID           string `json:"id" firestore:"id"`
	PropertyID   string `json:"propertyId" firestore:"propertyId"`
	TenantUserID string `json:"tenantUserId" firestore:"tenantUserId"`

	StartDate time.Time `json:"startDate" firestore:"startDate"`
	EndDate   time.Time `json:"endDate" firestore:"endDate"`

	TotalCost           float64 `json:"totalCost" firestore:"totalCost"`
	CommissionAmount    float64 `json:"commissionAmount" firestore:"commissionAmount"`
	AmountPaidToCompany float64 `json:"amountPaidToCompany" firestore:"amountPaidToCompany"`

	Status BookingStatus `json:"status" firestore:"status"`

	CreatedAt      time.Time  `json:"createdAt" firestore:"createdAt"`
	ConfirmedAt    *time.Time `json:"confirmedAt,omitempty" firestore:"confirmedAt,omitempty"`
	ConfirmedBy    string     `json:"confirmedBy,omitempty" firestore:"confirmedBy,omitempty"`
	RejectedAt     *time.Time `json:"rejectedAt,omitempty" firestore:"rejectedAt,omitempty"`
	RejectedBy     string     `json:"rejectedBy,omitempty" firestore:"rejectedBy,omitempty"`
	RejectedReason string     `json:"rejectedReason,omitempty" firestore:"rejectedReason,omitempty"`
	CancelledAt    *time.Time `json:"cancelledAt,omitempty" firestore:"cancelledAt,omitempty"`
	CancelledBy    string     `json:"cancelledBy,omitempty" firestore:"cancelledBy,omitempty"`
}

// Days returns the booking duration in whole days.
func (b *Booking) Days() int {
	return int(b.EndDate.Sub(b.StartDate).Hours() / 24)
}

// Overlaps is the half-open interval test used for double-booking
// detection: [start, end) intersects [b.StartDate, b.EndDate).
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && b.EndDate.After(start)
}
