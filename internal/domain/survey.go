package domain

import "time"

// QuestionType enumerates supported question kinds.
type QuestionType string

const (
	QuestionTypeRating         QuestionType = "rating"
	QuestionTypeText           QuestionType = "text"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
)

// Survey owns an ordered set of questions.
type Survey struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	Questions   []Question `json:"questions"`
}

// Question belongs to exactly one survey. Order defines display sequence and
// need not be contiguous.
type Question struct {
	ID       int64        `json:"id"`
	SurveyID int64        `json:"survey_id"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Order    int          `json:"order"`
	Options  []Option     `json:"options,omitempty"`
}

// Option is a selectable choice for a multiple_choice question.
type Option struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
	Value      string `json:"value"`
}
