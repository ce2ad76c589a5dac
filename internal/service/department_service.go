package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/repository"
	"github.com/Ramez-krichen/office-supplies-management-sub002/pkg/apperror"
)

type DepartmentDTO struct {
	Code      string  `json:"code" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	ManagerID *string `json:"manager_id"`
}

type DepartmentResponse struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	ManagerID   string `json:"manager_id,omitempty"`
	ManagerName string `json:"manager_name,omitempty"`
}

type DepartmentService interface {
	Create(ctx context.Context, req DepartmentDTO) (DepartmentResponse, error)
	List(ctx context.Context) ([]DepartmentResponse, error)
	Get(ctx context.Context, id string) (DepartmentResponse, error)
	Update(ctx context.Context, id string, req DepartmentDTO) (DepartmentResponse, error)
	Delete(ctx context.Context, id string) error
}

type departmentService struct {
	departments repository.DepartmentRepository
	users       repository.UserRepository
}

func NewDepartmentService(departments repository.DepartmentRepository, users repository.UserRepository) DepartmentService {
	return &departmentService{departments: departments, users: users}
}

func (s *departmentService) resolveManager(ctx context.Context, managerID *string) (*uuid.UUID, error) {
	if managerID == nil || *managerID == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*managerID)
	if err != nil {
		return nil, apperror.Validation("invalid manager id")
	}
	if _, err := s.users.GetByID(ctx, id.String()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("manager not found")
		}
		return nil, apperror.Internal(err, "failed to fetch manager")
	}
	return &id, nil
}

func (s *departmentService) Create(ctx context.Context, req DepartmentDTO) (DepartmentResponse, error) {
	managerID, err := s.resolveManager(ctx, req.ManagerID)
	if err != nil {
		return DepartmentResponse{}, err
	}

	department := model.Department{Code: req.Code, Name: req.Name, ManagerID: managerID}
	if err := s.departments.Create(ctx, &department); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return DepartmentResponse{}, apperror.Conflict("a department with this code or name already exists")
		}
		return DepartmentResponse{}, apperror.Internal(err, "failed to create department")
	}
	return toDepartmentResponse(department), nil
}

func (s *departmentService) List(ctx context.Context) ([]DepartmentResponse, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "failed to fetch departments")
	}
	result := make([]DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		result = append(result, toDepartmentResponse(d))
	}
	return result, nil
}

func (s *departmentService) Get(ctx context.Context, id string) (DepartmentResponse, error) {
	departmentID, err := uuid.Parse(id)
	if err != nil {
		return DepartmentResponse{}, apperror.Validation("invalid department id")
	}
	department, err := s.departments.GetByID(ctx, departmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DepartmentResponse{}, apperror.NotFound("department not found")
		}
		return DepartmentResponse{}, apperror.Internal(err, "failed to fetch department")
	}
	return toDepartmentResponse(*department), nil
}

func (s *departmentService) Update(ctx context.Context, id string, req DepartmentDTO) (DepartmentResponse, error) {
	departmentID, err := uuid.Parse(id)
	if err != nil {
		return DepartmentResponse{}, apperror.Validation("invalid department id")
	}
	department, err := s.departments.GetByID(ctx, departmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DepartmentResponse{}, apperror.NotFound("department not found")
		}
		return DepartmentResponse{}, apperror.Internal(err, "failed to fetch department")
	}

	managerID, err := s.resolveManager(ctx, req.ManagerID)
	if err != nil {
		return DepartmentResponse{}, err
	}

	department.Code = req.Code
	department.Name = req.Name
	department.ManagerID = managerID
	department.Manager = nil

	if err := s.departments.Update(ctx, department); err != nil {
		return DepartmentResponse{}, apperror.Internal(err, "failed to update department")
	}
	return toDepartmentResponse(*department), nil
}

func (s *departmentService) Delete(ctx context.Context, id string) error {
	departmentID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid department id")
	}
	if _, err := s.departments.GetByID(ctx, departmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("department not found")
		}
		return apperror.Internal(err, "failed to fetch department")
	}
	if err := s.departments.Delete(ctx, departmentID); err != nil {
		return apperror.Internal(err, "failed to delete department")
	}
	return nil
}

func toDepartmentResponse(d model.Department) DepartmentResponse {
	resp := DepartmentResponse{
		ID:   d.ID.String(),
		Code: d.Code,
		Name: d.Name,
	}
	if d.ManagerID != nil {
		resp.ManagerID = d.ManagerID.String()
	}
	if d.Manager != nil {
		resp.ManagerName = d.Manager.Name
	}
	return resp
}
