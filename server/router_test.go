package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"overtime-tracker/config"
	"overtime-tracker/database"
	"overtime-tracker/models"
	"overtime-tracker/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type testApp struct {
	router *chi.Mux
	db     *gorm.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	cfg := &config.Config{
		SecretKey:         "test-secret",
		SessionTTL:        time.Hour,
		CompanyName:       "KCAL",
		DefaultDepartment: "Packaging",
	}
	router, err := NewRouter(cfg, db)
	require.NoError(t, err)

	users := services.NewUserService(db)
	for _, u := range []struct{ name, role string }{
		{"alice", "team"},
		{"bob", "team"},
		{"sam", "supervisor"},
		{"maria", "manager"},
	} {
		_, err := users.CreateUser(context.Background(), u.name, "secret1", u.role)
		require.NoError(t, err)
	}

	return &testApp{router: router, db: db}
}

func (a *testApp) do(t *testing.T, method, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/login", url.Values{"username": {username}, "password": {password}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie for %s (redirect %s)", username, rec.Header().Get("Location"))
	return nil
}

func recordForm(date string) url.Values {
	return url.Values{
		"month_year":       {"Feb 2025"},
		"section":          {"Line A"},
		"employee_name":    {"Imran Khan"},
		"employee_code":    {"E-100"},
		"date":             {date},
		"duty_in":          {"08:00"},
		"duty_out":         {"19:30"},
		"sign_of_incharge": {"signed"},
	}
}

func (a *testApp) records(t *testing.T) []models.OvertimeRecord {
	t.Helper()
	var recs []models.OvertimeRecord
	require.NoError(t, a.db.Order("id").Find(&recs).Error)
	return recs
}

func location(rec *httptest.ResponseRecorder) string {
	return rec.Header().Get("Location")
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/dashboard", "/records", "/add", "/download_File"} {
		rec := app.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", location(rec), path)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"nope"}}, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?error=Invalid+credentials", location(rec))
}

func TestDefaultManagerMustChangePassword(t *testing.T) {
	app := newTestApp(t)

	cookie := app.login(t, "admin", "admin")

	rec := app.do(t, http.MethodGet, "/dashboard", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(location(rec), "/change_password"))

	rec = app.do(t, http.MethodPost, "/change_password", url.Values{
		"current_password": {"admin"},
		"new_password":     {"better-pass"},
		"confirm_password": {"better-pass"},
	}, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(location(rec), "/login?success="))

	cookie = app.login(t, "admin", "better-pass")
	rec = app.do(t, http.MethodGet, "/dashboard", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dashboard")
}

func TestTeamCreateDropsSignOff(t *testing.T) {
	app := newTestApp(t)
	alice := app.login(t, "alice", "secret1")

	rec := app.do(t, http.MethodPost, "/add", recordForm("2025-02-10"), alice)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/add?success=Overtime+record+saved", location(rec))

	recs := app.records(t)
	require.Len(t, recs, 1)
	assert.Equal(t, "", recs[0].SignOfIncharge)
	assert.Equal(t, "alice", recs[0].CreatedBy)
	assert.Equal(t, 11.5, recs[0].TotalHours)
	assert.Equal(t, 1.5, recs[0].OvertimeHours)
}

func TestCreate_ValidationNotice(t *testing.T) {
	app := newTestApp(t)
	alice := app.login(t, "alice", "secret1")

	form := recordForm("2025-02-10")
	form.Set("duty_in", "8am")
	rec := app.do(t, http.MethodPost, "/add", form, alice)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(location(rec), "/add?error="))
	assert.Empty(t, app.records(t))
}

func TestTeamCannotEditOrDelete(t *testing.T) {
	app := newTestApp(t)
	alice := app.login(t, "alice", "secret1")

	app.do(t, http.MethodPost, "/add", recordForm("2025-02-10"), alice)
	before := app.records(t)
	require.Len(t, before, 1)

	rec := app.do(t, http.MethodPost, "/delete/1", nil, alice)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/records?error=Access+denied", location(rec))

	form := recordForm("2025-02-10")
	form.Set("employee_name", "Changed")
	rec = app.do(t, http.MethodPost, "/edit/1", form, alice)
	assert.Equal(t, "/records?error=Access+denied", location(rec))

	rec = app.do(t, http.MethodGet, "/edit/1", nil, alice)
	assert.Equal(t, "/records?error=Access+denied", location(rec))

	assert.Equal(t, before, app.records(t))
}

func TestSupervisorEditAndDelete(t *testing.T) {
	app := newTestApp(t)
	alice := app.login(t, "alice", "secret1")
	sam := app.login(t, "sam", "secret1")

	app.do(t, http.MethodPost, "/add", recordForm("2025-02-10"), alice)

	rec := app.do(t, http.MethodGet, "/edit/1", nil, sam)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Imran Khan")

	form := recordForm("2025-02-10")
	form.Set("duty_out", "07:00")
	form.Set("duty_in", "19:00")
	rec = app.do(t, http.MethodPost, "/edit/1", form, sam)
	assert.Equal(t, "/records?success=Record+updated", location(rec))

	recs := app.records(t)
	require.Len(t, recs, 1)
	assert.Equal(t, 12.0, recs[0].TotalHours)
	assert.Equal(t, 2.0, recs[0].OvertimeHours)
	assert.Equal(t, "signed", recs[0].SignOfIncharge)

	form.Set("duty_out", "bad")
	rec = app.do(t, http.MethodPost, "/edit/1", form, sam)
	assert.True(t, strings.HasPrefix(location(rec), "/edit/1?error="))

	rec = app.do(t, http.MethodPost, "/delete/1", nil, sam)
	assert.Equal(t, "/records?success=Record+deleted", location(rec))
	assert.Empty(t, app.records(t))

	rec = app.do(t, http.MethodPost, "/delete/1", nil, sam)
	assert.Equal(t, "/records?error=Record+not+found", location(rec))

	rec = app.do(t, http.MethodGet, "/edit/abc", nil, sam)
	assert.Equal(t, "/records?error=Invalid+record+ID", location(rec))
}

func TestRecordsViewIsScopedForTeam(t *testing.T) {
	app := newTestApp(t)
	alice := app.login(t, "alice", "secret1")
	bob := app.login(t, "bob", "secret1")

	form := recordForm("2025-02-10")
	form.Set("employee_name", "Alice Worker")
	app.do(t, http.MethodPost, "/add", form, alice)

	form = recordForm("2025-02-11")
	form.Set("employee_name", "Bob Worker")
	app.do(t, http.MethodPost, "/add", form, bob)

	rec := app.do(t, http.MethodGet, "/view_records?employee=worker", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Alice Worker")
	assert.NotContains(t, rec.Body.String(), "Bob Worker")

	maria := app.login(t, "maria", "secret1")
	rec = app.do(t, http.MethodGet, "/records", nil, maria)
	assert.Contains(t, rec.Body.String(), "Alice Worker")
	assert.Contains(t, rec.Body.String(), "Bob Worker")
}

func TestDownloadMonthly(t *testing.T) {
	app := newTestApp(t)
	maria := app.login(t, "maria", "secret1")
	alice := app.login(t, "alice", "secret1")

	app.do(t, http.MethodPost, "/add", recordForm("2025-02-10"), maria)
	app.do(t, http.MethodPost, "/add", recordForm("2025-03-10"), maria)

	rec := app.do(t, http.MethodGet, "/download_File?month_year=Feb+2025", nil, maria)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.SpreadsheetContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Overtime_Feb_2025.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Overtime_Feb_2025", "G3")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-10", v)
	v, err = f.GetCellValue("Overtime_Feb_2025", "G4")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	rec = app.do(t, http.MethodGet, "/download_File?month_year=Xyz+9999", nil, maria)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(location(rec), "/records?error="))

	rec = app.do(t, http.MethodGet, "/download_File", nil, maria)
	assert.True(t, strings.HasPrefix(location(rec), "/records?error="))

	rec = app.do(t, http.MethodGet, "/download_File?month_year=Feb+2025", nil, alice)
	assert.Equal(t, "/dashboard?error=Access+denied", location(rec))
}

func TestDownloadFiltered(t *testing.T) {
	app := newTestApp(t)
	alice := app.login(t, "alice", "secret1")
	bob := app.login(t, "bob", "secret1")

	app.do(t, http.MethodPost, "/add", recordForm("2025-02-10"), alice)
	app.do(t, http.MethodPost, "/add", recordForm("2025-02-11"), bob)

	rec := app.do(t, http.MethodGet, "/download_filtered?section=line", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Filtered_Overtime_")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Filtered Records")
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus alice's single record")
	assert.Equal(t, "2025-02-10", rows[1][3])
	assert.Equal(t, "Pending", rows[1][5])
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t)
	alice := app.login(t, "alice", "secret1")

	rec := app.do(t, http.MethodGet, "/logout", nil, alice)
	assert.Equal(t, "/login", location(rec))

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}
