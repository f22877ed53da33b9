package repository

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"rentora/internal/domain/entity"
	"rentora/internal/domain/repository"
	"rentora/pkg/errors"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	doc, err := r.client.Collection("users").Doc(username).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", nil)
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}

	return &user, nil
}

type firestoreCompanyRepository struct {
	client *firestore.Client
}

func NewFirestoreCompanyRepository(client *firestore.Client) repository.CompanyRepository {
	return &firestoreCompanyRepository{
		client: client,
	}
}

func (r *firestoreCompanyRepository) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	doc, err := r.client.Collection("companies").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Company", nil)
		}
		return nil, errors.Internal("Failed to get company", err)
	}

	var company entity.Company
	if err := doc.DataTo(&company); err != nil {
		return nil, errors.Internal("Failed to parse company data", err)
	}

	return &company, nil
}

type firestorePropertyRepository struct {
	client *firestore.Client
}

func NewFirestorePropertyRepository(client *firestore.Client) repository.PropertyRepository {
	return &firestorePropertyRepository{
		client: client,
	}
}

func (r *firestorePropertyRepository) GetByID(ctx context.Context, id string) (*entity.Property, error) {
	doc, err := r.client.Collection("properties").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Property", nil)
		}
		return nil, errors.Internal("Failed to get property", err)
	}

	var property entity.Property
	if err := doc.DataTo(&property); err != nil {
		return nil, errors.Internal("Failed to parse property data", err)
	}

	return &property, nil
}

func (r *firestorePropertyRepository) ListByCompany(ctx context.Context, companyID string) ([]*entity.Property, error) {
	docs, err := r.client.Collection("properties").Where("companyId", "==", companyID).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to fetch properties", err)
	}

	properties := make([]*entity.Property, 0, len(docs))
	for _, doc := range docs {
		var property entity.Property
		if err := doc.DataTo(&property); err != nil {
			return nil, errors.Internal("Failed to parse property data", err)
		}
		properties = append(properties, &property)
	}

	sort.Slice(properties, func(i, j int) bool {
		return properties[i].Title < properties[j].Title
	})

	return properties, nil
}
