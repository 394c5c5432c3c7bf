package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-portal/internal/config"
	"github.com/cmlabs-hris/leave-portal/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-portal/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-portal/internal/pkg/backend"
	"github.com/cmlabs-hris/leave-portal/internal/pkg/export"
	"github.com/cmlabs-hris/leave-portal/internal/pkg/jwt"
	"github.com/cmlabs-hris/leave-portal/internal/pkg/sse"
	"github.com/cmlabs-hris/leave-portal/internal/repository/httpapi"
	portalService "github.com/cmlabs-hris/leave-portal/internal/service/portal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-sessions"

type backendCall struct {
	Method string
	URI    string
}

// fakeBackend stands in for the leave service. Replies are keyed by
// "METHOD path?query".
type fakeBackend struct {
	mu      sync.Mutex
	calls   []backendCall
	replies map[string]string
	down    bool
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls = append(b.calls, backendCall{Method: r.Method, URI: r.URL.RequestURI()})
	if b.down {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
		return
	}
	reply, ok := b.replies[r.Method+" "+r.URL.RequestURI()]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, reply)
}

func (b *fakeBackend) Calls() []backendCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]backendCall(nil), b.calls...)
}

func (b *fakeBackend) SetDown(down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.down = down
}

type testPortal struct {
	server  *httptest.Server
	client  *http.Client
	backend *fakeBackend
}

func newTestPortal(t *testing.T, replies map[string]string) *testPortal {
	t.Helper()

	fb := &fakeBackend{replies: replies}
	backendSrv := httptest.NewServer(fb)
	t.Cleanup(backendSrv.Close)

	cfg := &config.Config{
		App:       config.AppConfig{Name: "leave-portal-test", Env: "test"},
		Backend:   config.BackendConfig{URL: backendSrv.URL, Timeout: 2 * time.Second},
		Session:   config.SessionConfig{Secret: handlerTestSecret, CookieName: "leave_portal_session", TokenTTL: time.Hour, IdleTimeout: time.Hour, SweepInterval: time.Minute},
		RateLimit: config.RateLimitConfig{RPS: 1000, Burst: 1000},
	}

	repo := httpapi.NewLeaveRequestRepository(backend.NewClient(cfg.Backend))
	svc := portalService.NewPortalService(repo, sse.NewHub(), portalService.Config{IdleTimeout: cfg.Session.IdleTimeout})
	jwtService := jwt.NewJWTService(cfg.Session.Secret, cfg.Session.TokenTTL, cfg.Session.CookieName, false)

	router := NewRouter(RouterDeps{
		Config:        cfg,
		Logger:        NewLogger(cfg, slog.LevelError),
		JWTService:    jwtService,
		Sessions:      middleware.Session(svc, jwtService),
		RateLimiter:   middleware.NewIPRateLimiter(1000, 1000),
		PortalHandler: NewPortalHandler(svc),
		APIHandler:    NewPortalAPIHandler(svc),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testPortal{
		server:  srv,
		client:  &http.Client{Jar: jar, Timeout: 5 * time.Second},
		backend: fb,
	}
}

func (p *testPortal) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := p.client.Get(p.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (p *testPortal) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := p.client.PostForm(p.server.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (p *testPortal) doJSON(t *testing.T, method, path, body string) (*http.Response, response.Response) {
	t.Helper()
	req, err := http.NewRequest(method, p.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := p.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env response.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

const (
	pending42  = `{"id":42,"employeeId":"E1","leaveType":"Vacation","startDate":"2024-01-01","endDate":"2024-01-03","reason":"trip","status":"Pending"}`
	approved42 = `{"id":42,"employeeId":"E1","leaveType":"Vacation","startDate":"2024-01-01","endDate":"2024-01-03","reason":"trip","status":"Approved"}`
	rejected43 = `{"id":43,"employeeId":"E2","leaveType":"Sick","startDate":"2024-03-04","endDate":"2024-03-05","reason":"flu","status":"Rejected"}`
)

func TestPortal_FirstVisit(t *testing.T) {
	p := newTestPortal(t, nil)

	resp, body := p.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, PageTitle)
	assert.Contains(t, body, "Apply Leave")
	assert.Contains(t, body, "No leaves to display.")
	assert.Contains(t, body, `<option value="Vacation" selected>`)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))

	u, _ := url.Parse(p.server.URL)
	cookies := p.client.Jar.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, "leave_portal_session", cookies[0].Name)
	assert.Empty(t, p.backend.Calls())
}

func TestPortal_SessionSurvivesRequests(t *testing.T) {
	p := newTestPortal(t, nil)

	_, _ = p.postForm(t, "/leaves/apply", url.Values{"employeeId": {"E9"}})
	_, body := p.get(t, "/")
	assert.Contains(t, body, `value="E9"`)
}

func TestPortal_TamperedCookieGetsFreshSession(t *testing.T) {
	p := newTestPortal(t, nil)

	u, _ := url.Parse(p.server.URL)
	p.client.Jar.SetCookies(u, []*http.Cookie{{Name: "leave_portal_session", Value: "not-a-token", Path: "/"}})

	resp, _ := p.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cookies := p.client.Jar.Cookies(u)
	require.Len(t, cookies, 1)
	assert.NotEqual(t, "not-a-token", cookies[0].Value)
}

func TestPortal_ApplyLeave(t *testing.T) {
	p := newTestPortal(t, map[string]string{
		"POST /leave/apply": pending42,
	})

	resp, body := p.postForm(t, "/leaves/apply", url.Values{
		"employeeId": {"E1"},
		"leaveType":  {"Vacation"},
		"startDate":  {"2024-01-01"},
		"endDate":    {"2024-01-03"},
		"reason":     {"trip"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/", resp.Request.URL.Path, "post redirects to the page")
	assert.Contains(t, body, "Leave Applied!")
	assert.Contains(t, body, "2024-01-01 - 2024-01-03")
	assert.Contains(t, body, `<span class="badge pending">Pending</span>`)
	assert.Contains(t, body, `value="E1"`)
	assert.NotContains(t, body, `name="reason" placeholder="Reason" value="trip"`)

	_, again := p.get(t, "/")
	assert.NotContains(t, again, "Leave Applied!", "notice is shown once")

	assert.Equal(t, []backendCall{{Method: http.MethodPost, URI: "/leave/apply"}}, p.backend.Calls())
}

func TestPortal_ApplyLeave_MissingField(t *testing.T) {
	p := newTestPortal(t, nil)

	_, body := p.postForm(t, "/leaves/apply", url.Values{
		"employeeId": {"E1"},
		"leaveType":  {"Sick"},
		"startDate":  {"2024-01-01"},
		"endDate":    {"2024-01-03"},
	})
	assert.Contains(t, body, "Fill all fields!")
	assert.Contains(t, body, `<option value="Sick" selected>`)
	assert.Empty(t, p.backend.Calls())
}

func TestPortal_FetchMyLeaves(t *testing.T) {
	p := newTestPortal(t, map[string]string{
		"GET /leave/E1": "[" + pending42 + "]",
	})

	_, body := p.postForm(t, "/leaves/mine", url.Values{"employeeId": {"E1"}, "reason": {"draft"}})
	assert.Contains(t, body, "<strong>Vacation</strong> | 2024-01-01 - 2024-01-03")
	assert.Contains(t, body, `value="draft"`, "other typed fields are kept")
}

func TestPortal_FetchMyLeaves_EmptyID(t *testing.T) {
	p := newTestPortal(t, nil)

	_, body := p.postForm(t, "/leaves/mine", url.Values{"employeeId": {""}})
	assert.Contains(t, body, "Enter Employee ID to fetch leaves")
	assert.Empty(t, p.backend.Calls())
}

func TestPortal_FetchMyLeaves_BackendDown(t *testing.T) {
	p := newTestPortal(t, nil)
	p.backend.SetDown(true)

	resp, body := p.postForm(t, "/leaves/mine", url.Values{"employeeId": {"E1"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Error fetching leaves. Make sure backend is running.")
}

func TestPortal_ManagerFlow(t *testing.T) {
	p := newTestPortal(t, map[string]string{
		"GET /leave":               "[" + pending42 + "," + rejected43 + "]",
		"GET /leave?employeeId=E1": "[" + pending42 + "]",
		"PUT /leave/42/approve":    approved42,
	})

	_, body := p.postForm(t, "/view/manager", nil)
	assert.Contains(t, body, "Manager Panel")
	assert.Contains(t, body, "Employee: E1")
	assert.Contains(t, body, "Employee: E2")
	assert.Equal(t, 1, strings.Count(body, `class="approve"`), "only pending rows get controls")

	_, body = p.postForm(t, "/manager/search", url.Values{"searchId": {"E1"}})
	assert.NotContains(t, body, "Employee: E2")
	assert.Contains(t, body, `value="E1"`)

	_, body = p.postForm(t, "/leaves/42/approve", nil)
	assert.Contains(t, body, `<span class="badge approved">Approved</span>`)
	assert.NotContains(t, body, `class="approve"`)

	assert.Equal(t, []backendCall{
		{Method: http.MethodGet, URI: "/leave"},
		{Method: http.MethodGet, URI: "/leave?employeeId=E1"},
		{Method: http.MethodPut, URI: "/leave/42/approve"},
	}, p.backend.Calls())
}

func TestPortal_UpdateStatus_UnknownAction(t *testing.T) {
	p := newTestPortal(t, nil)

	resp, _ := p.postForm(t, "/leaves/42/archive", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, p.backend.Calls())
}

func TestPortal_SwitchView_Unknown(t *testing.T) {
	p := newTestPortal(t, nil)

	resp, _ := p.postForm(t, "/view/admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPortal_Export(t *testing.T) {
	p := newTestPortal(t, map[string]string{
		"GET /leave": "[" + pending42 + "," + rejected43 + "]",
	})
	_, _ = p.postForm(t, "/view/manager", nil)

	resp, body := p.get(t, "/manager/export.xlsx")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, export.ContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.True(t, strings.HasPrefix(body, "PK"), "xlsx is a zip archive")
}

func TestPortal_Assets(t *testing.T) {
	p := newTestPortal(t, nil)

	resp, body := p.get(t, "/assets/app.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, ".leave-card")
}

func TestPortal_Health(t *testing.T) {
	p := newTestPortal(t, nil)

	resp, _ := p.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPortalAPI_State(t *testing.T) {
	p := newTestPortal(t, nil)

	resp, env := p.doJSON(t, http.MethodGet, "/api/v1/portal/state", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	data := env.Data.(map[string]interface{})
	assert.Equal(t, "employee", data["view"])
	assert.Equal(t, []interface{}{"Vacation", "Sick", "Work from Home"}, data["leaveTypes"])
}

func TestPortalAPI_ApplyLeave_Validation(t *testing.T) {
	p := newTestPortal(t, nil)

	resp, env := p.doJSON(t, http.MethodPost, "/api/v1/portal/leaves", `{"employeeId":"E1","leaveType":"Vacation"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "startDate")
	assert.Contains(t, env.Error.Details, "reason")
	assert.Empty(t, p.backend.Calls())
}

func TestPortalAPI_ApplyLeave(t *testing.T) {
	p := newTestPortal(t, map[string]string{
		"POST /leave/apply": pending42,
	})

	resp, env := p.doJSON(t, http.MethodPost, "/api/v1/portal/leaves",
		`{"employeeId":"E1","leaveType":"Vacation","startDate":"2024-01-01","endDate":"2024-01-03","reason":"trip"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Leave Applied!", env.Message)

	data := env.Data.(map[string]interface{})
	mine := data["employeeLeaves"].([]interface{})
	require.Len(t, mine, 1)
	assert.Equal(t, "42", mine[0].(map[string]interface{})["id"])
}

func TestPortalAPI_ListMyLeaves_MissingEmployee(t *testing.T) {
	p := newTestPortal(t, nil)

	resp, env := p.doJSON(t, http.MethodGet, "/api/v1/portal/leaves/mine", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
}

func TestPortalAPI_ListLeaves_BackendDown(t *testing.T) {
	p := newTestPortal(t, nil)
	p.backend.SetDown(true)

	resp, env := p.doJSON(t, http.MethodGet, "/api/v1/portal/leaves?employee_id=E1", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "BAD_GATEWAY", env.Error.Code)
	assert.Equal(t, []backendCall{{Method: http.MethodGet, URI: "/leave?employeeId=E1"}}, p.backend.Calls())
}

func TestPortalAPI_UpdateStatus(t *testing.T) {
	p := newTestPortal(t, map[string]string{
		"GET /leave":            "[" + pending42 + "]",
		"PUT /leave/42/approve": approved42,
	})

	resp, _ := p.doJSON(t, http.MethodGet, "/api/v1/portal/leaves", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := p.doJSON(t, http.MethodPut, "/api/v1/portal/leaves/42/approve", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Approved", env.Data.(map[string]interface{})["status"])

	resp, env = p.doJSON(t, http.MethodPut, "/api/v1/portal/leaves/42/cancel", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestPortalAPI_ApplyLeave_NoticeReportedOnce(t *testing.T) {
	p := newTestPortal(t, map[string]string{
		"POST /leave/apply": pending42,
	})

	_, env := p.doJSON(t, http.MethodPost, "/api/v1/portal/leaves",
		`{"employeeId":"E1","leaveType":"Vacation","startDate":"2024-01-01","endDate":"2024-01-03","reason":"trip"}`)
	notice := env.Data.(map[string]interface{})["notice"].(map[string]interface{})
	assert.Equal(t, "Leave Applied!", notice["message"])

	resp, env := p.doJSON(t, http.MethodGet, "/api/v1/portal/state", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, env.Data.(map[string]interface{}), "notice")
}
