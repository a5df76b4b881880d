package service

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/survey-service/internal/domain"
	"github.com/spec-kit/survey-service/internal/events"
	"github.com/spec-kit/survey-service/internal/observability"
	"github.com/spec-kit/survey-service/internal/repository"
	apperrors "github.com/spec-kit/survey-service/pkg/util/errorutil"
)

// SurveyCache is a read-through store for survey definitions. Get returns
// (nil, nil) on a miss.
type SurveyCache interface {
	Get(ctx context.Context, id int64) (*domain.Survey, error)
	Set(ctx context.Context, survey *domain.Survey) error
}

// AnswerInput is one submitted answer. QuestionID may be absent.
type AnswerInput struct {
	QuestionID       *int64
	Rating           *int
	Remarks          *string
	SelectedOptionID *int64
}

// SubmissionInput is a survey response as received from a client.
type SubmissionInput struct {
	UserID     *int64
	Suggestion *string
	Answers    []AnswerInput
}

// SubmissionResult describes a stored response.
type SubmissionResult struct {
	ResponseID     int64
	AnswersSaved   int
	AnswersSkipped int
}

// SurveyService serves survey definitions and coordinates response submission.
type SurveyService struct {
	surveys    repository.SurveyRepository
	responses  repository.ResponseRepository
	cache      SurveyCache
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// SurveyDependencies bundles collaborators for the survey service. Cache is optional.
type SurveyDependencies struct {
	SurveyRepo   repository.SurveyRepository
	ResponseRepo repository.ResponseRepository
	Cache        SurveyCache
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// NewSurveyService constructs the service.
func NewSurveyService(deps SurveyDependencies) *SurveyService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SurveyService{
		surveys:    deps.SurveyRepo,
		responses:  deps.ResponseRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// GetSurvey returns the survey with questions sorted by order ascending.
func (s *SurveyService) GetSurvey(ctx context.Context, id int64) (*domain.Survey, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("survey cache read failed", zap.Int64("survey_id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	survey, err := s.surveys.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Survey", map[string]any{"survey_id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	sort.SliceStable(survey.Questions, func(i, j int) bool {
		return survey.Questions[i].Order < survey.Questions[j].Order
	})

	if s.cache != nil {
		if err := s.cache.Set(ctx, survey); err != nil {
			s.logger.Warn("survey cache write failed", zap.Int64("survey_id", id), zap.Error(err))
		}
	}
	return survey, nil
}

// SubmitResponse stores a response and then its answers as two separate
// commits. Answers whose question is absent or belongs to another survey are
// skipped. If the answer commit fails the response row stays committed and
// an integrity error is returned.
func (s *SurveyService) SubmitResponse(ctx context.Context, surveyID int64, input SubmissionInput) (*SubmissionResult, error) {
	if input.UserID == nil || *input.UserID == 0 {
		return nil, apperrors.NewValidationError("User ID is required for submission", nil)
	}

	exists, err := s.surveys.Exists(ctx, surveyID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !exists {
		return nil, apperrors.NewNotFound("Survey", map[string]any{"survey_id": surveyID})
	}

	resp := &domain.Response{
		SurveyID:        surveyID,
		UserID:          *input.UserID,
		SubmittedAt:     s.now().UTC(),
		FinalSuggestion: input.Suggestion,
	}
	if err := s.responses.Create(ctx, resp); err != nil {
		s.logger.Error("response insert failed", zap.Int64("survey_id", surveyID), zap.Error(err))
		return nil, apperrors.NewIntegrityError("Database error during response creation.", http.StatusInternalServerError, err)
	}

	answers, skipped, err := s.resolveAnswers(ctx, surveyID, resp.ID, input.Answers)
	if err != nil {
		return nil, err
	}

	result := &SubmissionResult{ResponseID: resp.ID, AnswersSkipped: skipped}
	if err := s.responses.CreateAnswers(ctx, answers); err != nil {
		s.logger.Error("answer insert failed; response kept without answers",
			zap.Int64("response_id", resp.ID), zap.Error(err))
		s.publishSubmitted(ctx, resp, result, true)
		return nil, apperrors.NewIntegrityError("Database error during answer submission.", http.StatusInternalServerError, err)
	}
	result.AnswersSaved = len(answers)

	s.publishSubmitted(ctx, resp, result, false)
	return result, nil
}

func (s *SurveyService) resolveAnswers(ctx context.Context, surveyID, responseID int64, inputs []AnswerInput) ([]domain.Answer, int, error) {
	answers := make([]domain.Answer, 0, len(inputs))
	skipped := 0
	for _, in := range inputs {
		if in.QuestionID == nil {
			skipped++
			s.metrics.RecordSkippedAnswer(observability.SkipMissingQuestionID)
			s.logger.Debug("answer skipped: no question id", zap.Int64("survey_id", surveyID))
			continue
		}
		_, err := s.surveys.GetQuestion(ctx, surveyID, *in.QuestionID)
		if errors.Is(err, pgx.ErrNoRows) {
			skipped++
			s.metrics.RecordSkippedAnswer(observability.SkipQuestionNotInSurvey)
			s.logger.Debug("answer skipped: question not in survey",
				zap.Int64("survey_id", surveyID), zap.Int64("question_id", *in.QuestionID))
			continue
		}
		if err != nil {
			return nil, 0, apperrors.NewInternalError(err)
		}
		answers = append(answers, domain.Answer{
			ResponseID:       responseID,
			QuestionID:       *in.QuestionID,
			Rating:           in.Rating,
			TextAnswer:       in.Remarks,
			SelectedOptionID: in.SelectedOptionID,
		})
	}
	return answers, skipped, nil
}

func (s *SurveyService) publishSubmitted(ctx context.Context, resp *domain.Response, result *SubmissionResult, rejected bool) {
	if s.dispatcher == nil {
		return
	}
	event := events.New(events.EventResponseSubmitted, events.ResponseSubmittedPayload{
		ResponseID:      resp.ID,
		SurveyID:        resp.SurveyID,
		UserID:          resp.UserID,
		AnswersSaved:    result.AnswersSaved,
		AnswersSkipped:  result.AnswersSkipped,
		AnswersRejected: rejected,
	})
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}
