package service

import (
	"context"
	"sort"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/survey-service/internal/domain"
	apperrors "github.com/spec-kit/survey-service/pkg/util/errorutil"
)

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }

func assertDomainError(t *testing.T, err error, code string, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	de := apperrors.ToDomainError(err)
	if de.Code != code || de.HTTPStatus != status {
		t.Fatalf("got %s/%d (%v), want %s/%d", de.Code, de.HTTPStatus, err, code, status)
	}
}

type stubDepartmentRepo struct {
	depts     []domain.Department
	nextID    int64
	createErr error
	listErr   error
}

func (r *stubDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	dept.ID = r.nextID + 100
	r.depts = append(r.depts, *dept)
	return nil
}

func (r *stubDepartmentRepo) GetByName(_ context.Context, name string) (*domain.Department, error) {
	for _, d := range r.depts {
		if d.Name == name {
			cp := d
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubDepartmentRepo) List(_ context.Context) ([]domain.Department, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := append([]domain.Department{}, r.depts...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// stubPermissionRepo mimics the table's unique and foreign key constraints
// and only swaps its contents when the whole batch is valid.
type stubPermissionRepo struct {
	perms        []domain.Permission
	knownDepts   map[int64]bool
	replaceCalls int
	replaceErr   error
}

func (r *stubPermissionRepo) List(_ context.Context) ([]domain.Permission, error) {
	return append([]domain.Permission{}, r.perms...), nil
}

func (r *stubPermissionRepo) ReplaceAll(_ context.Context, pairs []domain.Permission) error {
	r.replaceCalls++
	if r.replaceErr != nil {
		return r.replaceErr
	}
	seen := make(map[domain.Permission]bool)
	next := make([]domain.Permission, 0, len(pairs))
	for _, p := range pairs {
		if r.knownDepts != nil && (!r.knownDepts[p.FromDeptID] || !r.knownDepts[p.ToDeptID]) {
			return &pgconn.PgError{Code: "23503"}
		}
		if seen[p] {
			return &pgconn.PgError{Code: "23505"}
		}
		seen[p] = true
		next = append(next, p)
	}
	r.perms = next
	return nil
}

type stubUserRepo struct {
	users     []domain.User
	queried   [][]string
	created   []domain.User
	createErr error
	getErr    error
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	user.ID = int64(len(r.users) + len(r.created) + 1)
	r.created = append(r.created, *user)
	return nil
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, u := range r.users {
		if u.Username == username {
			cp := u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) ListByDepartmentNames(_ context.Context, names []string) ([]domain.User, error) {
	r.queried = append(r.queried, names)
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	out := make([]domain.User, 0)
	for _, u := range r.users {
		if set[u.Department] {
			out = append(out, u)
		}
	}
	return out, nil
}

type stubSurveyRepo struct {
	surveys      map[int64]*domain.Survey
	getByIDCalls int
	questionErr  error
}

func (r *stubSurveyRepo) GetByID(_ context.Context, id int64) (*domain.Survey, error) {
	r.getByIDCalls++
	s, ok := r.surveys[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	cp.Questions = append([]domain.Question{}, s.Questions...)
	return &cp, nil
}

func (r *stubSurveyRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.surveys[id]
	return ok, nil
}

func (r *stubSurveyRepo) GetQuestion(_ context.Context, surveyID, questionID int64) (*domain.Question, error) {
	if r.questionErr != nil {
		return nil, r.questionErr
	}
	s, ok := r.surveys[surveyID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	for _, q := range s.Questions {
		if q.ID == questionID {
			cp := q
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type stubResponseRepo struct {
	responses        []domain.Response
	answers          []domain.Answer
	createErr        error
	answersErr       error
	createAnswerCall int
}

func (r *stubResponseRepo) Create(_ context.Context, resp *domain.Response) error {
	if r.createErr != nil {
		return r.createErr
	}
	resp.ID = int64(len(r.responses) + 1)
	r.responses = append(r.responses, *resp)
	return nil
}

func (r *stubResponseRepo) CreateAnswers(_ context.Context, answers []domain.Answer) error {
	r.createAnswerCall++
	if r.answersErr != nil {
		return r.answersErr
	}
	r.answers = append(r.answers, answers...)
	return nil
}

type recordingNotifier struct {
	batches []AlertBatch
}

func (n *recordingNotifier) Send(_ context.Context, batch AlertBatch) (DeliveryResult, error) {
	n.batches = append(n.batches, batch)
	return DeliveryResult{Attempted: len(batch.Alerts), Delivered: len(batch.Alerts)}, nil
}

type memSurveyCache struct {
	entries map[int64]*domain.Survey
	getErr  error
}

func (c *memSurveyCache) Get(_ context.Context, id int64) (*domain.Survey, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[id], nil
}

func (c *memSurveyCache) Set(_ context.Context, survey *domain.Survey) error {
	if c.entries == nil {
		c.entries = make(map[int64]*domain.Survey)
	}
	c.entries[survey.ID] = survey
	return nil
}
