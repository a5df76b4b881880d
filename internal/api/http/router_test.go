package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/spec-kit/survey-service/internal/api/http/handlers"
	"github.com/spec-kit/survey-service/internal/auth"
	"github.com/spec-kit/survey-service/internal/domain"
	"github.com/spec-kit/survey-service/internal/observability"
	"github.com/spec-kit/survey-service/internal/service"
	apperrors "github.com/spec-kit/survey-service/pkg/util/errorutil"
)

type fakeDepartments struct {
	depts []domain.Department
}

func (f *fakeDepartments) List(context.Context) ([]domain.Department, error) { return f.depts, nil }

func (f *fakeDepartments) Create(_ context.Context, name string) (*domain.Department, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("Department name is required", nil)
	}
	for _, d := range f.depts {
		if d.Name == name {
			return nil, apperrors.NewConflict("Department '"+name+"' already exists", nil)
		}
	}
	d := domain.Department{ID: int64(len(f.depts) + 1), Name: name}
	f.depts = append(f.depts, d)
	return &d, nil
}

type fakePermissions struct {
	saved      [][]service.PairInput
	alertInput *service.MailAlertInput
	alert      *service.MailAlertResult
	err        error
}

func (f *fakePermissions) List(context.Context) ([]domain.Permission, error) {
	return []domain.Permission{{FromDeptID: 1, ToDeptID: 2}}, nil
}

func (f *fakePermissions) ReplaceAll(_ context.Context, pairs []service.PairInput) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, pairs)
	return nil
}

func (f *fakePermissions) MailAlert(_ context.Context, in service.MailAlertInput) (*service.MailAlertResult, error) {
	f.alertInput = &in
	if f.err != nil {
		return nil, f.err
	}
	return f.alert, nil
}

type fakeSurveys struct {
	submitted *service.SubmissionInput
	err       error
}

func (f *fakeSurveys) GetSurvey(_ context.Context, id int64) (*domain.Survey, error) {
	if id != 1 {
		return nil, apperrors.NewNotFound("Survey", nil)
	}
	return &domain.Survey{
		ID:        1,
		Title:     "Quarterly",
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Questions: []domain.Question{
			{ID: 5, Text: "Rate", Type: domain.QuestionTypeRating, Order: 1},
			{ID: 6, Text: "Pick", Type: domain.QuestionTypeMultipleChoice, Order: 2},
		},
	}, nil
}

func (f *fakeSurveys) SubmitResponse(_ context.Context, surveyID int64, in service.SubmissionInput) (*service.SubmissionResult, error) {
	f.submitted = &in
	if in.UserID == nil || *in.UserID == 0 {
		return nil, apperrors.NewValidationError("User ID is required for submission", nil)
	}
	if surveyID != 1 {
		return nil, apperrors.NewNotFound("Survey", nil)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &service.SubmissionResult{ResponseID: 42, AnswersSaved: len(in.Answers)}, nil
}

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, username, password string) (*service.LoginResult, error) {
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("Missing username or password", nil)
	}
	if password != "pw" {
		return nil, apperrors.NewUnauthorized("Invalid username or password")
	}
	return &service.LoginResult{
		User: &domain.User{ID: 3, Username: username, Name: "N", Email: "n@x", Department: "IT"},
		Role: "admin",
	}, nil
}

type fakePinger struct {
	err     error
	enabled bool
}

func (p fakePinger) Ping(context.Context) error { return p.err }
func (p fakePinger) Enabled() bool              { return p.enabled }

type testServer struct {
	app         *fiber.App
	permissions *fakePermissions
	surveys     *fakeSurveys
	tokens      *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	ts := &testServer{
		app:         fiber.New(),
		permissions: &fakePermissions{},
		surveys:     &fakeSurveys{},
		tokens:      auth.NewTokenManager("secret", 5),
	}
	RegisterMiddlewares(ts.app, zap.NewNop(), metrics, time.Second, "http://localhost:8080,http://localhost:8081")
	RegisterRoutes(ts.app, RouteConfig{
		Health:         handlers.NewHealthHandler("survey-service", "test", fakePinger{}, fakePinger{}),
		Departments:    handlers.NewDepartmentsHandler(&fakeDepartments{depts: []domain.Department{{ID: 1, Name: "HR"}}}),
		Permissions:    handlers.NewPermissionsHandler(ts.permissions),
		Surveys:        handlers.NewSurveysHandler(ts.surveys),
		Auth:           handlers.NewAuthHandler(fakeAuth{}),
		AuthMiddleware: auth.NewAuthMiddleware(ts.tokens, nil),
		Gatherer:       reg,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string, headers ...string) (int, map[string]any, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := ts.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var obj map[string]any
	_ = json.Unmarshal(raw, &obj)
	return resp.StatusCode, obj, raw
}

func TestDepartmentRoutes(t *testing.T) {
	ts := newTestServer(t)

	status, _, raw := ts.do(t, http.MethodGet, "/api/departments", "")
	if status != http.StatusOK || !strings.Contains(string(raw), `"name":"HR"`) {
		t.Fatalf("list: %d %s", status, raw)
	}

	status, body, _ := ts.do(t, http.MethodPost, "/api/departments", `{"name":"Finance"}`)
	if status != http.StatusCreated || body["name"] != "Finance" {
		t.Fatalf("create: %d %v", status, body)
	}

	status, body, _ = ts.do(t, http.MethodPost, "/api/departments", `{"name":"HR"}`)
	if status != http.StatusConflict || body["message"] != "Department 'HR' already exists" {
		t.Fatalf("duplicate: %d %v", status, body)
	}
	errBody := body["error"].(map[string]any)
	if errBody["code"] != apperrors.CodeConflict {
		t.Fatalf("error body = %v", errBody)
	}

	status, _, _ = ts.do(t, http.MethodPost, "/api/departments", `{}`)
	if status != http.StatusBadRequest {
		t.Fatalf("missing name: %d", status)
	}
}

func TestSavePermissions(t *testing.T) {
	ts := newTestServer(t)

	status, body, _ := ts.do(t, http.MethodPost, "/api/permissions/save",
		`{"allowed_pairs":[{"from_dept_id":1,"to_dept_id":2},{"from_dept_id":2}]}`)
	if status != http.StatusOK || body["message"] != "Permissions saved successfully" {
		t.Fatalf("save: %d %v", status, body)
	}
	pairs := ts.permissions.saved[0]
	if len(pairs) != 2 || *pairs[0].FromDeptID != 1 || pairs[1].ToDeptID != nil {
		t.Fatalf("pairs = %+v", pairs)
	}

	status, _, _ = ts.do(t, http.MethodPost, "/api/permissions/save", `{}`)
	if status != http.StatusOK || len(ts.permissions.saved[1]) != 0 {
		t.Fatalf("missing key should save the empty set: %d", status)
	}

	status, body, _ = ts.do(t, http.MethodPost, "/api/permissions/save", `{"allowed_pairs":{"from_dept_id":1}}`)
	if status != http.StatusBadRequest || body["message"] != "Invalid data format. 'allowed_pairs' must be a list." {
		t.Fatalf("non-list: %d %v", status, body)
	}
	if len(ts.permissions.saved) != 2 {
		t.Fatal("a non-list body must not reach the registry")
	}

	ts.permissions.err = apperrors.NewIntegrityError("Failed to save permissions due to data integrity issue (e.g., duplicate entry).", http.StatusBadRequest, errors.New("23505"))
	status, body, _ = ts.do(t, http.MethodPost, "/api/permissions/save", `{"allowed_pairs":[]}`)
	if status != http.StatusBadRequest || body["error"].(map[string]any)["code"] != apperrors.CodeIntegrity {
		t.Fatalf("integrity: %d %v", status, body)
	}
}

func TestMailAlertMessages(t *testing.T) {
	ts := newTestServer(t)
	reqBody := `{"allowed_pairs":[{"from_dept_id":1,"to_dept_id":2}],"start_date":"2024-07-01","end_date":"2024-07-15"}`

	ts.permissions.alert = &service.MailAlertResult{UsersConsidered: 0}
	status, body, _ := ts.do(t, http.MethodPost, "/api/permissions/mail-alert", reqBody)
	if status != http.StatusOK || body["message"] != "No relevant users found for mail alert." {
		t.Fatalf("no users: %d %v", status, body)
	}
	if details, ok := body["alert_details"].([]any); !ok || len(details) != 0 {
		t.Fatalf("alert_details = %v", body["alert_details"])
	}

	ts.permissions.alert = &service.MailAlertResult{UsersConsidered: 1, Notifications: []string{"line"}}
	status, body, _ = ts.do(t, http.MethodPost, "/api/permissions/mail-alert", reqBody)
	if status != http.StatusOK || !strings.HasPrefix(body["message"].(string), "Mail alert process initiated") {
		t.Fatalf("alert: %d %v", status, body)
	}
	if ts.permissions.alertInput.StartDate != "2024-07-01" || len(ts.permissions.alertInput.Pairs) != 1 {
		t.Fatalf("input = %+v", ts.permissions.alertInput)
	}
}

func TestGetSurveyRoute(t *testing.T) {
	ts := newTestServer(t)

	status, body, _ := ts.do(t, http.MethodGet, "/api/surveys/1", "")
	if status != http.StatusOK {
		t.Fatalf("status %d", status)
	}
	if cats, ok := body["categories"].([]any); !ok || len(cats) != 0 {
		t.Fatalf("categories = %v", body["categories"])
	}
	questions := body["questions"].([]any)
	if _, has := questions[0].(map[string]any)["options"]; has {
		t.Fatal("rating question must not carry options")
	}
	if opts, ok := questions[1].(map[string]any)["options"].([]any); !ok || len(opts) != 0 {
		t.Fatalf("multiple_choice question without rows must carry an empty options list, got %v", questions[1])
	}
	if body["created_at"] != "2024-01-02T03:04:05Z" {
		t.Fatalf("created_at = %v", body["created_at"])
	}

	status, _, _ = ts.do(t, http.MethodGet, "/api/surveys/9", "")
	if status != http.StatusNotFound {
		t.Fatalf("missing survey: %d", status)
	}
	status, _, _ = ts.do(t, http.MethodGet, "/api/surveys/abc", "")
	if status != http.StatusBadRequest {
		t.Fatalf("bad id: %d", status)
	}
}

func TestSubmitResponseRoute(t *testing.T) {
	ts := newTestServer(t)

	status, body, _ := ts.do(t, http.MethodPost, "/api/surveys/1/submit_response",
		`{"user_id":7,"answers":[{"id":5,"rating":4,"remarks":"ok"},{"rating":2}],"suggestion":"none"}`)
	if status != http.StatusCreated || body["response_id"] != float64(42) || body["message"] != "Survey submitted successfully" {
		t.Fatalf("submit: %d %v", status, body)
	}
	in := ts.surveys.submitted
	if *in.UserID != 7 || len(in.Answers) != 2 || *in.Answers[0].QuestionID != 5 || in.Answers[1].QuestionID != nil {
		t.Fatalf("input = %+v", in)
	}

	token, _, err := ts.tokens.GenerateToken(11, "eve", "user")
	if err != nil {
		t.Fatal(err)
	}
	status, _, _ = ts.do(t, http.MethodPost, "/api/surveys/1/submit_response", `{"answers":[]}`,
		fiber.HeaderAuthorization, "Bearer "+token)
	if status != http.StatusCreated || *ts.surveys.submitted.UserID != 11 {
		t.Fatalf("token user: %d %+v", status, ts.surveys.submitted)
	}

	status, body, _ = ts.do(t, http.MethodPost, "/api/surveys/1/submit_response", `{}`,
		fiber.HeaderAuthorization, "Bearer garbage")
	if status != http.StatusBadRequest || body["detail"] != "User ID is required for submission" {
		t.Fatalf("invalid token should submit anonymously: %d %v", status, body)
	}

	status, body, _ = ts.do(t, http.MethodPost, "/api/surveys/9/submit_response", `{"user_id":7}`)
	if status != http.StatusNotFound || body["detail"] != "Survey not found" {
		t.Fatalf("missing survey: %d %v", status, body)
	}

	ts.surveys.err = apperrors.NewIntegrityError("Database error during answer submission.", http.StatusInternalServerError, errors.New("fk"))
	status, body, _ = ts.do(t, http.MethodPost, "/api/surveys/1/submit_response", `{"user_id":7}`)
	if status != http.StatusInternalServerError || body["message"] != "Database error during answer submission." ||
		body["detail"] != "Database error during answer submission." {
		t.Fatalf("commit failure: %d %v", status, body)
	}
}

func TestLoginRoute(t *testing.T) {
	ts := newTestServer(t)

	status, body, _ := ts.do(t, http.MethodPost, "/login", `{"username":"root","password":"pw"}`)
	if status != http.StatusOK || body["role"] != "admin" || body["department"] != "IT" {
		t.Fatalf("login: %d %v", status, body)
	}
	status, body, _ = ts.do(t, http.MethodPost, "/login", `{"username":"root","password":"nope"}`)
	if status != http.StatusUnauthorized || body["detail"] != "Invalid username or password" {
		t.Fatalf("bad password: %d %v", status, body)
	}
	status, _, _ = ts.do(t, http.MethodPost, "/login", `{"username":"root"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("missing password: %d", status)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	status, body, _ := ts.do(t, http.MethodGet, "/health/ready", "")
	deps := body["dependencies"].(map[string]any)
	if status != http.StatusOK || deps["redis"] != "disabled" || deps["postgres"] != "ok" {
		t.Fatalf("ready: %d %v", status, body)
	}

	ts.do(t, http.MethodGet, "/api/departments", "")
	status, _, raw := ts.do(t, http.MethodGet, "/metrics", "")
	if status != http.StatusOK || !strings.Contains(string(raw), "survey_http_requests_total") {
		t.Fatalf("metrics: %d %s", status, raw)
	}
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	ts := newTestServer(t)
	status, body, _ := ts.do(t, http.MethodGet, "/api/nope", "")
	if status != http.StatusNotFound || body["error"] == nil {
		t.Fatalf("got %d %v", status, body)
	}
}

func TestReadinessFailure(t *testing.T) {
	app := fiber.New()
	h := handlers.NewHealthHandler("svc", "v", fakePinger{err: errors.New("down")}, fakePinger{enabled: true})
	app.Get("/ready", h.Ready)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ready", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestStaleTokenDoesNotBlockOpenRoutes(t *testing.T) {
	ts := newTestServer(t)
	stale := auth.NewTokenManager("rotated-secret", 5)
	token, _, err := stale.GenerateToken(3, "root", "admin")
	if err != nil {
		t.Fatal(err)
	}
	for _, header := range []string{"Bearer stale", "Bearer " + token, "Basic abc"} {
		status, _, raw := ts.do(t, http.MethodGet, "/api/departments", "", fiber.HeaderAuthorization, header)
		if status != http.StatusOK || !strings.Contains(string(raw), `"name":"HR"`) {
			t.Fatalf("%q: %d %s", header, status, raw)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/permissions/save", nil)
	req.Header.Set(fiber.HeaderOrigin, "http://localhost:8081")
	req.Header.Set(fiber.HeaderAccessControlRequestMethod, http.MethodPost)
	resp, err := ts.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("preflight status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get(fiber.HeaderAccessControlAllowOrigin); got != "http://localhost:8081" {
		t.Fatalf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/departments", nil)
	req.Header.Set(fiber.HeaderOrigin, "http://evil.example")
	resp, err = ts.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get(fiber.HeaderAccessControlAllowOrigin); got != "" {
		t.Fatalf("unlisted origin allowed: %q", got)
	}
}

func TestSavePermissionsReportsBadPairType(t *testing.T) {
	ts := newTestServer(t)
	status, body, _ := ts.do(t, http.MethodPost, "/api/permissions/save",
		`{"allowed_pairs":[{"from_dept_id":"1","to_dept_id":2}]}`)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d", status)
	}
	details, _ := body["error"].(map[string]any)["details"].(map[string]any)
	if details["index"] != float64(0) || details["reason"] == nil {
		t.Fatalf("details = %v", details)
	}
	if len(ts.permissions.saved) != 0 {
		t.Fatal("a malformed pair must not reach the registry")
	}
}
