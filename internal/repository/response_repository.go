package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/survey-service/internal/domain"
)

// ResponseRepository persists survey submissions. Create and CreateAnswers
// commit independently.
type ResponseRepository interface {
	Create(ctx context.Context, resp *domain.Response) error
	CreateAnswers(ctx context.Context, answers []domain.Answer) error
}

type responseRepository struct {
	db DB
}

// NewResponseRepository builds the repository.
func NewResponseRepository(db DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) Create(ctx context.Context, resp *domain.Response) error {
	const query = `
        INSERT INTO survey_responses (survey_id, user_id, submitted_at, final_suggestion)
        VALUES ($1, $2, $3, $4)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		resp.SurveyID,
		resp.UserID,
		resp.SubmittedAt,
		resp.FinalSuggestion,
	).Scan(&resp.ID)
}

// CreateAnswers inserts all answers in one transaction.
func (r *responseRepository) CreateAnswers(ctx context.Context, answers []domain.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	const query = `
        INSERT INTO question_answers (response_id, question_id, rating, text_answer, selected_option_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id`
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		for i := range answers {
			a := &answers[i]
			if err := tx.QueryRow(ctx, query,
				a.ResponseID,
				a.QuestionID,
				a.Rating,
				a.TextAnswer,
				a.SelectedOptionID,
			).Scan(&a.ID); err != nil {
				return fmt.Errorf("insert answer for question %d: %w", a.QuestionID, err)
			}
		}
		return nil
	})
}
