package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/event"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/repository"
	"github.com/Ramez-krichen/office-supplies-management-sub002/pkg/apperror"
)

type SupplierDTO struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"omitempty,email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	ContactPerson string `json:"contact_person"`
}

type SupplierResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	ItemCount     int64  `json:"item_count"`
}

type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SupplierService interface {
	Create(ctx context.Context, actor Actor, req SupplierDTO) (SupplierResponse, error)
	List(ctx context.Context, search string, page, limit int) ([]SupplierResponse, int64, error)
	Get(ctx context.Context, id string) (SupplierResponse, error)
	Update(ctx context.Context, actor Actor, id string, req SupplierDTO) (SupplierResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	ListCategories(ctx context.Context) ([]CategoryResponse, error)
	CreateCategory(ctx context.Context, name string) (CategoryResponse, error)
}

type supplierService struct {
	suppliers repository.SupplierRepository
	emitter   *event.Emitter
}

func NewSupplierService(suppliers repository.SupplierRepository, emitter *event.Emitter) SupplierService {
	return &supplierService{suppliers: suppliers, emitter: emitter}
}

func (s *supplierService) Create(ctx context.Context, actor Actor, req SupplierDTO) (SupplierResponse, error) {
	if req.Name == "" {
		return SupplierResponse{}, apperror.Validation("name is required")
	}

	supplier := model.Supplier{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
	}
	if err := s.suppliers.Create(ctx, &supplier); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return SupplierResponse{}, apperror.Conflict("a supplier named %s already exists", req.Name)
		}
		return SupplierResponse{}, apperror.Internal(err, "failed to create supplier")
	}

	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   model.ActionCreateSupplier,
		Entity:   model.EntitySupplier,
		EntityID: supplier.ID.String(),
		Details:  map[string]interface{}{"name": supplier.Name},
	})
	return toSupplierResponse(supplier, 0), nil
}

func (s *supplierService) List(ctx context.Context, search string, page, limit int) ([]SupplierResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	suppliers, total, err := s.suppliers.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, apperror.Internal(err, "failed to fetch suppliers")
	}

	result := make([]SupplierResponse, 0, len(suppliers))
	for _, supplier := range suppliers {
		count, countErr := s.suppliers.CountItems(ctx, supplier.ID)
		if countErr != nil {
			count = 0
		}
		result = append(result, toSupplierResponse(supplier, count))
	}
	return result, total, nil
}

func (s *supplierService) Get(ctx context.Context, id string) (SupplierResponse, error) {
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return SupplierResponse{}, apperror.Validation("invalid supplier id")
	}
	supplier, err := s.suppliers.GetByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SupplierResponse{}, apperror.NotFound("supplier not found")
		}
		return SupplierResponse{}, apperror.Internal(err, "failed to fetch supplier")
	}
	count, err := s.suppliers.CountItems(ctx, supplierID)
	if err != nil {
		count = 0
	}
	return toSupplierResponse(*supplier, count), nil
}

func (s *supplierService) Update(ctx context.Context, actor Actor, id string, req SupplierDTO) (SupplierResponse, error) {
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return SupplierResponse{}, apperror.Validation("invalid supplier id")
	}
	if req.Name == "" {
		return SupplierResponse{}, apperror.Validation("name is required")
	}

	supplier, err := s.suppliers.GetByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SupplierResponse{}, apperror.NotFound("supplier not found")
		}
		return SupplierResponse{}, apperror.Internal(err, "failed to fetch supplier")
	}

	supplier.Name = req.Name
	supplier.Email = req.Email
	supplier.Phone = req.Phone
	supplier.Address = req.Address
	supplier.ContactPerson = req.ContactPerson

	if err := s.suppliers.Update(ctx, supplier); err != nil {
		return SupplierResponse{}, apperror.Internal(err, "failed to update supplier")
	}

	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   model.ActionUpdateSupplier,
		Entity:   model.EntitySupplier,
		EntityID: supplier.ID.String(),
		Details:  map[string]interface{}{"name": supplier.Name},
	})

	count, _ := s.suppliers.CountItems(ctx, supplierID)
	return toSupplierResponse(*supplier, count), nil
}

func (s *supplierService) Delete(ctx context.Context, actor Actor, id string) error {
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid supplier id")
	}
	supplier, err := s.suppliers.GetByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("supplier not found")
		}
		return apperror.Internal(err, "failed to fetch supplier")
	}

	count, err := s.suppliers.CountItems(ctx, supplierID)
	if err != nil {
		return apperror.Internal(err, "failed to count supplier items")
	}
	if count > 0 {
		return apperror.Conflict("supplier has %d catalog items and cannot be deleted", count)
	}

	if err := s.suppliers.Delete(ctx, supplierID); err != nil {
		return apperror.Internal(err, "failed to delete supplier")
	}

	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   model.ActionDeleteSupplier,
		Entity:   model.EntitySupplier,
		EntityID: supplierID.String(),
		Details:  map[string]interface{}{"name": supplier.Name},
	})
	return nil
}

func (s *supplierService) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.suppliers.ListCategories(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "failed to fetch categories")
	}
	result := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		result = append(result, CategoryResponse{ID: c.ID.String(), Name: c.Name})
	}
	return result, nil
}

func (s *supplierService) CreateCategory(ctx context.Context, name string) (CategoryResponse, error) {
	if name == "" {
		return CategoryResponse{}, apperror.Validation("name is required")
	}
	category := model.Category{Name: name}
	if err := s.suppliers.CreateCategory(ctx, &category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return CategoryResponse{}, apperror.Conflict("a category named %s already exists", name)
		}
		return CategoryResponse{}, apperror.Internal(err, "failed to create category")
	}
	return CategoryResponse{ID: category.ID.String(), Name: category.Name}, nil
}

func toSupplierResponse(s model.Supplier, itemCount int64) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID.String(),
		Name:          s.Name,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
		ContactPerson: s.ContactPerson,
		ItemCount:     itemCount,
	}
}
