package repository

import (
	"context"

	"github.com/spec-kit/survey-service/internal/domain"
)

// SurveyRepository reads survey definitions.
type SurveyRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Survey, error)
	Exists(ctx context.Context, id int64) (bool, error)
	GetQuestion(ctx context.Context, surveyID, questionID int64) (*domain.Question, error)
}

type surveyRepository struct {
	db DB
}

// NewSurveyRepository builds the repository.
func NewSurveyRepository(db DB) SurveyRepository {
	return &surveyRepository{db: db}
}

// GetByID loads a survey with its questions ordered by "order" and the
// options of its multiple_choice questions.
func (r *surveyRepository) GetByID(ctx context.Context, id int64) (*domain.Survey, error) {
	const surveyQuery = `
        SELECT id, title, COALESCE(description, ''), created_at
        FROM surveys WHERE id=$1`
	var survey domain.Survey
	if err := r.db.QueryRow(ctx, surveyQuery, id).Scan(
		&survey.ID,
		&survey.Title,
		&survey.Description,
		&survey.CreatedAt,
	); err != nil {
		return nil, err
	}

	questions, err := r.listQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	options, err := r.listOptions(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		if questions[i].Type == domain.QuestionTypeMultipleChoice {
			questions[i].Options = options[questions[i].ID]
			if questions[i].Options == nil {
				questions[i].Options = []domain.Option{}
			}
		}
	}
	survey.Questions = questions
	return &survey, nil
}

func (r *surveyRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM surveys WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}

// GetQuestion returns pgx.ErrNoRows when the question is absent or belongs to another survey.
func (r *surveyRepository) GetQuestion(ctx context.Context, surveyID, questionID int64) (*domain.Question, error) {
	const query = `
        SELECT id, survey_id, text, type::text, "order"
        FROM questions WHERE id=$1 AND survey_id=$2`
	var q domain.Question
	if err := r.db.QueryRow(ctx, query, questionID, surveyID).Scan(
		&q.ID,
		&q.SurveyID,
		&q.Text,
		&q.Type,
		&q.Order,
	); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *surveyRepository) listQuestions(ctx context.Context, surveyID int64) ([]domain.Question, error) {
	const query = `
        SELECT id, survey_id, text, type::text, "order"
        FROM questions WHERE survey_id=$1 ORDER BY "order" ASC, id ASC`
	rows, err := r.db.Query(ctx, query, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Question, 0)
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.SurveyID, &q.Text, &q.Type, &q.Order); err != nil {
			return nil, err
		}
		result = append(result, q)
	}
	return result, rows.Err()
}

func (r *surveyRepository) listOptions(ctx context.Context, surveyID int64) (map[int64][]domain.Option, error) {
	const query = `
        SELECT o.id, o.question_id, o.text, COALESCE(o.value, '')
        FROM question_options o
        JOIN questions q ON q.id = o.question_id
        WHERE q.survey_id=$1 ORDER BY o.id`
	rows, err := r.db.Query(ctx, query, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]domain.Option)
	for rows.Next() {
		var opt domain.Option
		if err := rows.Scan(&opt.ID, &opt.QuestionID, &opt.Text, &opt.Value); err != nil {
			return nil, err
		}
		result[opt.QuestionID] = append(result[opt.QuestionID], opt)
	}
	return result, rows.Err()
}
