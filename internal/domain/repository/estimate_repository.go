package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/domain/entity"
	"github.com/kipronoh/bizpilot-api/internal/domain/enum"
	"github.com/kipronoh/bizpilot-api/pkg/pagination"
)

// EstimateRepository defines the interface for estimate data operations
type EstimateRepository interface {
	Create(ctx context.Context, estimate *entity.Estimate) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Estimate, error)
	GetByReference(ctx context.Context, reference string) (*entity.Estimate, error)
	Update(ctx context.Context, estimate *entity.Estimate) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, params *EstimateFilterParams) ([]entity.Estimate, int64, error)
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Estimate, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.EstimateStatus) error
	GetNextReferenceNumber(ctx context.Context) (int, error)
}

// EstimateFilterParams contains filtering parameters for estimate queries
type EstimateFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.EstimateStatus
	CustomerID *uuid.UUID
	SortBy     string
	SortOrder  string
}

// EstimateDetailRepository defines the interface for estimate detail data operations
type EstimateDetailRepository interface {
	Create(ctx context.Context, detail *entity.EstimateDetail) error
	CreateBatch(ctx context.Context, details []entity.EstimateDetail) error
	GetByEstimateID(ctx context.Context, estimateID uuid.UUID) ([]entity.EstimateDetail, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByEstimateID(ctx context.Context, estimateID uuid.UUID) error
}
