package domain

import "time"

// Response is one user's single submission against a survey.
type Response struct {
	ID              int64
	SurveyID        int64
	UserID          int64
	SubmittedAt     time.Time
	FinalSuggestion *string
}

// Answer records a response to one question of the parent response's survey.
type Answer struct {
	ID               int64
	ResponseID       int64
	QuestionID       int64
	Rating           *int
	TextAnswer       *string
	SelectedOptionID *int64
}
