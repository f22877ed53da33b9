package repository

import (
	"context"

	"rentora/internal/domain/entity"
)

type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
}

type PropertyRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Property, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Property, error)
}
