package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"overtime-tracker/config"
	"overtime-tracker/logging"
	"overtime-tracker/models"
	"overtime-tracker/services"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type OvertimeHandler struct {
	config    *config.Config
	templates map[string]*template.Template
	records   *services.RecordService
}

func NewOvertimeHandler(cfg *config.Config, templates map[string]*template.Template, records *services.RecordService) *OvertimeHandler {
	return &OvertimeHandler{
		config:    cfg,
		templates: templates,
		records:   records,
	}
}

func (h *OvertimeHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	summary, err := h.records.Summary(r.Context(), services.ActorFor(user))
	if err != nil {
		handleServiceError(w, r, err, "/login")
		return
	}

	render(w, r, h.templates, "dashboard", page{
		"Company": h.config.CompanyName,
		"User":    user,
		"Summary": summary,
		"Error":   r.URL.Query().Get("error"),
		"Success": r.URL.Query().Get("success"),
	})
}

func (h *OvertimeHandler) NewRecordPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.templates, "add", page{
		"Company":           h.config.CompanyName,
		"DefaultDepartment": h.config.DefaultDepartment,
		"DefaultMonthYear":  time.Now().Format("Jan 2006"),
		"Today":             time.Now().Format(models.DateLayout),
		"User":              currentUser(r),
		"Error":             r.URL.Query().Get("error"),
		"Success":           r.URL.Query().Get("success"),
	})
}

func (h *OvertimeHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	if err := r.ParseForm(); err != nil {
		redirectError(w, r, "/add", "Invalid form data")
		return
	}

	rec, err := h.records.Create(r.Context(), services.ActorFor(user), recordInput(r))
	if err != nil {
		handleServiceError(w, r, err, "/add")
		return
	}

	logging.Logger.WithFields(logrus.Fields{
		"record":   rec.ID,
		"employee": rec.EmployeeCode,
		"user":     user.Username,
	}).Info("overtime record created")
	redirectSuccess(w, r, "/add", "Overtime record saved")
}

// Records lists every record the user may see with no filter applied.
func (h *OvertimeHandler) Records(w http.ResponseWriter, r *http.Request) {
	h.renderRecords(w, r, models.RecordFilter{})
}

// ViewRecords is the filtered list view.
func (h *OvertimeHandler) ViewRecords(w http.ResponseWriter, r *http.Request) {
	h.renderRecords(w, r, filterFromQuery(r))
}

func (h *OvertimeHandler) renderRecords(w http.ResponseWriter, r *http.Request, filter models.RecordFilter) {
	user := currentUser(r)
	actor := services.ActorFor(user)

	records, err := h.records.List(r.Context(), actor, filter)
	if err != nil {
		handleServiceError(w, r, err, "/records")
		return
	}

	options, err := h.records.FilterOptions(r.Context(), actor)
	if err != nil {
		handleServiceError(w, r, err, "/dashboard")
		return
	}

	render(w, r, h.templates, "records", page{
		"Company":          h.config.CompanyName,
		"User":             user,
		"Records":          records,
		"Filter":           filter,
		"Options":          options,
		"DefaultMonthYear": time.Now().Format("Jan 2006"),
		"Error":            r.URL.Query().Get("error"),
		"Success":          r.URL.Query().Get("success"),
	})
}

func (h *OvertimeHandler) EditRecordPage(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	user := currentUser(r)
	rec, err := h.records.Get(r.Context(), services.ActorFor(user), id)
	if err != nil {
		handleServiceError(w, r, err, "/records")
		return
	}

	render(w, r, h.templates, "edit", page{
		"Company": h.config.CompanyName,
		"User":    user,
		"Record":  rec,
		"Error":   r.URL.Query().Get("error"),
	})
}

func (h *OvertimeHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		redirectError(w, r, fmt.Sprintf("/edit/%d", id), "Invalid form data")
		return
	}

	user := currentUser(r)
	_, err := h.records.Edit(r.Context(), services.ActorFor(user), id, recordInput(r))
	if err != nil {
		fallback := "/records"
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			fallback = fmt.Sprintf("/edit/%d", id)
		}
		handleServiceError(w, r, err, fallback)
		return
	}

	logging.Logger.WithFields(logrus.Fields{"record": id, "user": user.Username}).Info("overtime record updated")
	redirectSuccess(w, r, "/records", "Record updated")
}

func (h *OvertimeHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	user := currentUser(r)
	if err := h.records.Delete(r.Context(), services.ActorFor(user), id); err != nil {
		handleServiceError(w, r, err, "/records")
		return
	}

	logging.Logger.WithFields(logrus.Fields{"record": id, "user": user.Username}).Info("overtime record deleted")
	redirectSuccess(w, r, "/records", "Record deleted")
}

func recordID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id == 0 {
		redirectError(w, r, "/records", "Invalid record ID")
		return 0, false
	}
	return uint(id), true
}

func recordInput(r *http.Request) services.RecordInput {
	return services.RecordInput{
		Company:        r.FormValue("company"),
		MonthYear:      r.FormValue("month_year"),
		Department:     r.FormValue("department"),
		Section:        r.FormValue("section"),
		EmployeeName:   r.FormValue("employee_name"),
		EmployeeCode:   r.FormValue("employee_code"),
		Date:           r.FormValue("date"),
		Justification:  r.FormValue("justification"),
		DutyIn:         r.FormValue("duty_in"),
		DutyOut:        r.FormValue("duty_out"),
		SignOfIncharge: r.FormValue("sign_of_incharge"),
	}
}

func filterFromQuery(r *http.Request) models.RecordFilter {
	q := r.URL.Query()
	return models.RecordFilter{
		Date:     q.Get("date"),
		Employee: q.Get("employee"),
		Section:  q.Get("section"),
	}
}
