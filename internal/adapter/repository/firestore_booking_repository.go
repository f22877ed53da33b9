package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"rentora/internal/domain/entity"
	"rentora/internal/domain/repository"
	"rentora/pkg/errors"
)

type firestoreBookingRepository struct {
	client *firestore.Client
}

func NewFirestoreBookingRepository(client *firestore.Client) repository.BookingRepository {
	return &firestoreBookingRepository{
		client: client,
	}
}

func (r *firestoreBookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	booking.CreatedAt = time.Now()

	_, err := r.client.Collection("bookings").Doc(booking.ID).Set(ctx, booking)
	if err != nil {
		return errors.Internal("Failed to create booking", err)
	}

	return nil
}

func (r *firestoreBookingRepository) GetByID(ctx context.Context, id string) (*entity.Booking, error) {
	doc, err := r.client.Collection("bookings").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Booking", nil)
		}
		return nil, errors.Internal("Failed to get booking", err)
	}

	var booking entity.Booking
	if err := doc.DataTo(&booking); err != nil {
		return nil, errors.Internal("Failed to parse booking data", err)
	}

	return &booking, nil
}

func (r *firestoreBookingRepository) Update(ctx context.Context, booking *entity.Booking) error {
	_, err := r.client.Collection("bookings").Doc(booking.ID).Set(ctx, booking)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Booking", nil)
		}
		return errors.Internal("Failed to update booking", err)
	}

	return nil
}

func (r *firestoreBookingRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("bookings").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete booking", err)
	}

	return nil
}

func (r *firestoreBookingRepository) ListByTenant(ctx context.Context, tenantUserID string) ([]*entity.Booking, error) {
	query := r.client.Collection("bookings").Where("tenantUserId", "==", tenantUserID)
	return r.collect(ctx, query)
}

func (r *firestoreBookingRepository) ListByProperty(ctx context.Context, propertyID string) ([]*entity.Booking, error) {
	query := r.client.Collection("bookings").Where("propertyId", "==", propertyID)
	return r.collect(ctx, query)
}

func (r *firestoreBookingRepository) ListOpenByProperty(ctx context.Context, propertyID string) ([]*entity.Booking, error) {
	query := r.client.Collection("bookings").
		Where("propertyId", "==", propertyID).
		Where("status", "in", []string{string(entity.BookingPending), string(entity.BookingActive)})
	return r.collect(ctx, query)
}

func (r *firestoreBookingRepository) collect(ctx context.Context, query firestore.Query) ([]*entity.Booking, error) {
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to fetch bookings", err)
	}

	bookings := make([]*entity.Booking, 0, len(docs))
	for _, doc := range docs {
		var booking entity.Booking
		if err := doc.DataTo(&booking); err != nil {
			return nil, errors.Internal("Failed to parse booking data", err)
		}
		bookings = append(bookings, &booking)
	}

	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})

	return bookings, nil
}
