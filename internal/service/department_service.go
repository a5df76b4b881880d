package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/survey-service/internal/domain"
	"github.com/spec-kit/survey-service/internal/repository"
	apperrors "github.com/spec-kit/survey-service/pkg/util/errorutil"
)

// DepartmentService manages departments.
type DepartmentService struct {
	departments repository.DepartmentRepository
	logger      *zap.Logger
}

// NewDepartmentService constructs the service.
func NewDepartmentService(departments repository.DepartmentRepository, logger *zap.Logger) *DepartmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{departments: departments, logger: logger}
}

// List returns departments sorted by name.
func (s *DepartmentService) List(ctx context.Context) ([]domain.Department, error) {
	depts, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return depts, nil
}

// Create adds a department. An existing name is a conflict; a unique
// violation that slips past the lookup is reported as an integrity error.
func (s *DepartmentService) Create(ctx context.Context, name string) (*domain.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("Department name is required", nil)
	}

	if _, err := s.departments.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict(fmt.Sprintf("Department '%s' already exists", name), nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInternalError(err)
	}

	dept := &domain.Department{Name: name}
	if err := s.departments.Create(ctx, dept); err != nil {
		if repository.IsIntegrityViolation(err) {
			return nil, apperrors.NewIntegrityError(
				"Database integrity error. Department might already exist.",
				http.StatusBadRequest,
				err,
			)
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("department created", zap.Int64("department_id", dept.ID), zap.String("name", dept.Name))
	return dept, nil
}
