package dto

import (
	"time"

	"github.com/spec-kit/survey-service/internal/domain"
	"github.com/spec-kit/survey-service/internal/service"
)

// SurveyResponse is the survey definition served to the frontend.
type SurveyResponse struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	CreatedAt   string             `json:"created_at"`
	Categories  []string           `json:"categories"`
	Questions   []QuestionResponse `json:"questions"`
}

// QuestionResponse is a question. Options is nil except for multiple_choice,
// which always carries a list, possibly empty.
type QuestionResponse struct {
	ID      int64               `json:"id"`
	Text    string              `json:"text"`
	Type    domain.QuestionType `json:"type"`
	Order   int                 `json:"order"`
	Options *[]OptionResponse   `json:"options,omitempty"`
}

// OptionResponse is a selectable choice.
type OptionResponse struct {
	ID    int64  `json:"id"`
	Text  string `json:"text"`
	Value string `json:"value"`
}

// NewSurveyResponse maps a domain survey, keeping question order.
func NewSurveyResponse(s *domain.Survey) SurveyResponse {
	resp := SurveyResponse{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		CreatedAt:   s.CreatedAt.UTC().Format(time.RFC3339Nano),
		Categories:  []string{},
		Questions:   make([]QuestionResponse, 0, len(s.Questions)),
	}
	for _, q := range s.Questions {
		qr := QuestionResponse{ID: q.ID, Text: q.Text, Type: q.Type, Order: q.Order}
		if q.Type == domain.QuestionTypeMultipleChoice {
			opts := make([]OptionResponse, 0, len(q.Options))
			for _, o := range q.Options {
				opts = append(opts, OptionResponse{ID: o.ID, Text: o.Text, Value: o.Value})
			}
			qr.Options = &opts
		}
		resp.Questions = append(resp.Questions, qr)
	}
	return resp
}

// AnswerRequest is one submitted answer; ID is the question id.
type AnswerRequest struct {
	ID               *int64  `json:"id"`
	Rating           *int    `json:"rating"`
	Remarks          *string `json:"remarks"`
	SelectedOptionID *int64  `json:"selected_option_id"`
}

// SubmitResponseRequest payload for POST /api/surveys/:id/submit_response.
type SubmitResponseRequest struct {
	UserID     *int64          `json:"user_id"`
	Answers    []AnswerRequest `json:"answers"`
	Suggestion *string         `json:"suggestion"`
}

// ToInput converts the request into the service input.
func (r SubmitResponseRequest) ToInput() service.SubmissionInput {
	in := service.SubmissionInput{
		UserID:     r.UserID,
		Suggestion: r.Suggestion,
		Answers:    make([]service.AnswerInput, 0, len(r.Answers)),
	}
	for _, a := range r.Answers {
		in.Answers = append(in.Answers, service.AnswerInput{
			QuestionID:       a.ID,
			Rating:           a.Rating,
			Remarks:          a.Remarks,
			SelectedOptionID: a.SelectedOptionID,
		})
	}
	return in
}

// SubmitResponseResult is returned with 201.
type SubmitResponseResult struct {
	Message    string `json:"message"`
	ResponseID int64  `json:"response_id"`
}
