package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbooks/backend/internal/domain/books"
	"github.com/smallbooks/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document by (kind, id) within a company
func (r *GormDocumentRepository) FindByID(ctx context.Context, companyID uuid.UUID, kind books.DocumentKind, id uuid.UUID) (*books.Document, error) {
	var document books.Document
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND kind = ? AND id = ?", companyID, kind, id).
		First(&document).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &document, nil
}

// FindByIDForUpdate finds a document by (kind, id) and takes an exclusive row
// lock held until the surrounding transaction ends
func (r *GormDocumentRepository) FindByIDForUpdate(ctx context.Context, companyID uuid.UUID, kind books.DocumentKind, id uuid.UUID) (*books.Document, error) {
	var document books.Document
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ? AND kind = ? AND id = ?", companyID, kind, id).
		First(&document).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &document, nil
}

// FindByCompany lists documents of one kind for a company
func (r *GormDocumentRepository) FindByCompany(ctx context.Context, companyID uuid.UUID, kind books.DocumentKind, filter shared.Filter) ([]books.Document, int64, error) {
	var documents []books.Document
	var total int64

	if err := r.db.WithContext(ctx).Model(&books.Document{}).
		Where("company_id = ? AND kind = ?", companyID, kind).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := applyFilter(r.db.WithContext(ctx).
		Where("company_id = ? AND kind = ?", companyID, kind), filter)
	if err := query.Find(&documents).Error; err != nil {
		return nil, 0, err
	}
	return documents, total, nil
}

// Save creates or updates a document
func (r *GormDocumentRepository) Save(ctx context.Context, document *books.Document) error {
	return r.db.WithContext(ctx).Save(document).Error
}

// SoftDelete marks the document deleted and records who deleted it
func (r *GormDocumentRepository) SoftDelete(ctx context.Context, document *books.Document, deletedBy uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(document).
		Updates(map[string]any{
			"deleted_at": time.Now(),
			"deleted_by": deletedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies pagination and ordering shared by the list queries
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	}
	return query
}

// Ensure GormDocumentRepository implements DocumentRepository
var _ books.DocumentRepository = (*GormDocumentRepository)(nil)
