package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/domain/entity"
	"github.com/kipronoh/bizpilot-api/internal/domain/enum"
	domainRepo "github.com/kipronoh/bizpilot-api/internal/domain/repository"
	"gorm.io/gorm"
)

type estimateRepository struct {
	db *gorm.DB
}

// NewEstimateRepository creates a new estimate repository
func NewEstimateRepository(db *gorm.DB) domainRepo.EstimateRepository {
	return &estimateRepository{db: db}
}

func (r *estimateRepository) Create(ctx context.Context, estimate *entity.Estimate) error {
	return r.db.WithContext(ctx).Create(estimate).Error
}

func (r *estimateRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Estimate, error) {
	var estimate entity.Estimate
	err := r.db.WithContext(ctx).
		Preload("Customer").
		First(&estimate, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &estimate, err
}

func (r *estimateRepository) GetByReference(ctx context.Context, reference string) (*entity.Estimate, error) {
	var estimate entity.Estimate
	err := r.db.WithContext(ctx).First(&estimate, "reference = ?", reference).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &estimate, err
}

func (r *estimateRepository) Update(ctx context.Context, estimate *entity.Estimate) error {
	return r.db.WithContext(ctx).Save(estimate).Error
}

func (r *estimateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Estimate{}, "id = ?", id).Error
}

func (r *estimateRepository) List(ctx context.Context, userID uuid.UUID, params *domainRepo.EstimateFilterParams) ([]entity.Estimate, int64, error) {
	var estimates []entity.Estimate
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Estimate{})

	// Only filter by user_id if a non-zero userID is provided (super-admin can see all)
	if userID != uuid.Nil {
		query = query.Where("user_id = ?", userID)
	}

	if params.Search != "" {
		query = query.Where("reference ILIKE ? OR customer_name ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Sorting
	sortBy := "created_at"
	sortOrder := "DESC"
	if params.SortBy != "" {
		sortBy = params.SortBy
	}
	if params.SortOrder != "" && (params.SortOrder == "ASC" || params.SortOrder == "asc") {
		sortOrder = "ASC"
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").
		Order(sortBy + " " + sortOrder).
		Find(&estimates).Error

	return estimates, total, err
}

func (r *estimateRepository) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Estimate, error) {
	var estimate entity.Estimate
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Details.Product").
		First(&estimate, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &estimate, err
}

func (r *estimateRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.EstimateStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Estimate{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *estimateRepository) GetNextReferenceNumber(ctx context.Context) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Estimate{}).Count(&count).Error
	return int(count) + 1, err
}

type estimateDetailRepository struct {
	db *gorm.DB
}

// NewEstimateDetailRepository creates a new estimate detail repository
func NewEstimateDetailRepository(db *gorm.DB) domainRepo.EstimateDetailRepository {
	return &estimateDetailRepository{db: db}
}

func (r *estimateDetailRepository) Create(ctx context.Context, detail *entity.EstimateDetail) error {
	return r.db.WithContext(ctx).Create(detail).Error
}

func (r *estimateDetailRepository) CreateBatch(ctx context.Context, details []entity.EstimateDetail) error {
	return r.db.WithContext(ctx).Create(&details).Error
}

func (r *estimateDetailRepository) GetByEstimateID(ctx context.Context, estimateID uuid.UUID) ([]entity.EstimateDetail, error) {
	var details []entity.EstimateDetail
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("estimate_id = ?", estimateID).
		Find(&details).Error
	return details, err
}

func (r *estimateDetailRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.EstimateDetail{}, "id = ?", id).Error
}

func (r *estimateDetailRepository) DeleteByEstimateID(ctx context.Context, estimateID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.EstimateDetail{}, "estimate_id = ?", estimateID).Error
}
