package repository

import (
	"context"

	"rentora/internal/domain/entity"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	GetByID(ctx context.Context, id string) (*entity.Booking, error)
	Update(ctx context.Context, booking *entity.Booking) error
	Delete(ctx context.Context, id string) error

	ListByTenant(ctx context.Context, tenantUserID string) ([]*entity.Booking, error)
	ListByProperty(ctx context.Context, propertyID string) ([]*entity.Booking, error)

	// ListOpenByProperty returns Pending and Active bookings only, the
	// set relevant for date-overlap checks.
	ListOpenByProperty(ctx context.Context, propertyID string) ([]*entity.Booking, error)
}
