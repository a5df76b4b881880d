package handlers

import (
	"context"

	"github.com/spec-kit/survey-service/internal/domain"
	"github.com/spec-kit/survey-service/internal/service"
)

// DepartmentService is the department behavior the HTTP layer needs.
type DepartmentService interface {
	List(ctx context.Context) ([]domain.Department, error)
	Create(ctx context.Context, name string) (*domain.Department, error)
}

// PermissionService is the permission registry and mail alert behavior.
type PermissionService interface {
	List(ctx context.Context) ([]domain.Permission, error)
	ReplaceAll(ctx context.Context, pairs []service.PairInput) error
	MailAlert(ctx context.Context, input service.MailAlertInput) (*service.MailAlertResult, error)
}

// SurveyService serves survey definitions and records responses.
type SurveyService interface {
	GetSurvey(ctx context.Context, id int64) (*domain.Survey, error)
	SubmitResponse(ctx context.Context, surveyID int64, input service.SubmissionInput) (*service.SubmissionResult, error)
}

// AuthService authenticates users.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*service.LoginResult, error)
}
