package service

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/survey-service/internal/domain"
	"github.com/spec-kit/survey-service/internal/events"
	"github.com/spec-kit/survey-service/internal/observability"
	"github.com/spec-kit/survey-service/internal/repository"
	apperrors "github.com/spec-kit/survey-service/pkg/util/errorutil"
)

// PairInput is a department pair as received from a client; either id may be absent.
type PairInput struct {
	FromDeptID *int64
	ToDeptID   *int64
}

// MailAlertInput describes a mail alert request.
type MailAlertInput struct {
	Pairs     []PairInput
	StartDate string
	EndDate   string
}

// MailAlertResult is the composed batch. UsersConsidered == 0 means no user
// belonged to any source department.
type MailAlertResult struct {
	UsersConsidered int
	Notifications   []string
	Delivery        DeliveryResult
}

// PermissionService owns the department-pair registry and composes mail alerts from it.
type PermissionService struct {
	permissions repository.PermissionRepository
	departments repository.DepartmentRepository
	users       repository.UserRepository
	notifier    Notifier
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// PermissionDependencies bundles collaborators for the permission service.
type PermissionDependencies struct {
	PermissionRepo repository.PermissionRepository
	DepartmentRepo repository.DepartmentRepository
	UserRepo       repository.UserRepository
	Notifier       Notifier
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// NewPermissionService constructs the service.
func NewPermissionService(deps PermissionDependencies) *PermissionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionService{
		permissions: deps.PermissionRepo,
		departments: deps.DepartmentRepo,
		users:       deps.UserRepo,
		notifier:    deps.Notifier,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
	}
}

// List returns the full edge set.
func (s *PermissionService) List(ctx context.Context) ([]domain.Permission, error) {
	perms, err := s.permissions.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return perms, nil
}

// ReplaceAll swaps the edge set for pairs. Every pair is validated before
// the store is touched, so a rejected request leaves the old set intact.
func (s *PermissionService) ReplaceAll(ctx context.Context, pairs []PairInput) error {
	perms, err := validatePairs(pairs)
	if err != nil {
		return err
	}

	if err := s.permissions.ReplaceAll(ctx, perms); err != nil {
		if repository.IsIntegrityViolation(err) {
			s.logger.Warn("permission replace rejected", zap.Error(err), zap.Int("pairs", len(perms)))
			return apperrors.NewIntegrityError(
				"Failed to save permissions due to data integrity issue (e.g., duplicate entry).",
				http.StatusBadRequest,
				err,
			)
		}
		return apperrors.NewInternalError(err)
	}

	s.logger.Info("permissions replaced", zap.Int("pairs", len(perms)))
	s.publish(ctx, events.New(events.EventPermissionsReplaced, events.PermissionsReplacedPayload{PairCount: len(perms)}))
	return nil
}

// MailAlert resolves which users the pairs make eligible to survey which
// departments during the window, and hands the batch to the notifier.
func (s *PermissionService) MailAlert(ctx context.Context, input MailAlertInput) (*MailAlertResult, error) {
	if len(input.Pairs) == 0 || input.StartDate == "" || input.EndDate == "" {
		return nil, apperrors.NewValidationError("Missing allowed_pairs or date range for mail alert", nil)
	}
	pairs, err := validatePairs(input.Pairs)
	if err != nil {
		return nil, err
	}
	window, err := ParseAlertWindow(input.StartDate, input.EndDate)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid date format. Expected ISO string.", map[string]any{"reason": err.Error()})
	}

	depts, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	names := make(map[int64]string, len(depts))
	for _, d := range depts {
		names[d.ID] = d.Name
	}

	users, err := s.users.ListByDepartmentNames(ctx, SourceDepartmentNames(names, pairs))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	eligibility := ResolveEligibility(names, users, pairs)
	s.recordUnresolved(eligibility)

	result := &MailAlertResult{
		UsersConsidered: eligibility.UsersConsidered,
		Notifications:   make([]string, 0, len(eligibility.Recipients)),
	}
	if eligibility.UsersConsidered == 0 {
		s.logger.Info("no users found in the relevant departments for mail alert")
		return result, nil
	}

	batch := AlertBatch{Window: window, Alerts: make([]Alert, 0, len(eligibility.Recipients))}
	for _, r := range eligibility.Recipients {
		text := r.Message(window)
		result.Notifications = append(result.Notifications, text)
		batch.Alerts = append(batch.Alerts, Alert{
			Username:   r.User.Username,
			Email:      r.User.Email,
			Department: r.Department,
			Targets:    r.Targets,
			Text:       text,
		})
	}
	s.metrics.RecordAlerts(len(batch.Alerts))

	if s.notifier != nil && len(batch.Alerts) > 0 {
		delivery, err := s.notifier.Send(ctx, batch)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		result.Delivery = delivery
	}

	s.publish(ctx, events.New(events.EventMailAlertComposed, events.MailAlertComposedPayload{
		UsersConsidered: result.UsersConsidered,
		Notifications:   len(result.Notifications),
		Delivered:       result.Delivery.Delivered,
	}))
	return result, nil
}

func (s *PermissionService) recordUnresolved(e Eligibility) {
	for i := 0; i < e.UnresolvedSources; i++ {
		s.metrics.RecordUnresolvedDepartment(observability.DepartmentRoleSource)
	}
	for i := 0; i < e.UnresolvedTargets; i++ {
		s.metrics.RecordUnresolvedDepartment(observability.DepartmentRoleTarget)
	}
	if e.UnresolvedSources > 0 || e.UnresolvedTargets > 0 {
		s.logger.Debug("mail alert pairs reference unknown departments",
			zap.Int("unresolved_from", e.UnresolvedSources),
			zap.Int("unresolved_to", e.UnresolvedTargets))
	}
}

func (s *PermissionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

func validatePairs(pairs []PairInput) ([]domain.Permission, error) {
	perms := make([]domain.Permission, 0, len(pairs))
	for i, p := range pairs {
		if p.FromDeptID == nil || p.ToDeptID == nil {
			return nil, apperrors.NewValidationError(
				"Invalid pair format: 'from_dept_id' and 'to_dept_id' are required.",
				map[string]any{"index": i},
			)
		}
		perms = append(perms, domain.Permission{FromDeptID: *p.FromDeptID, ToDeptID: *p.ToDeptID})
	}
	return perms, nil
}
