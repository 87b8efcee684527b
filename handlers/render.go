package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"overtime-tracker/logging"
	"overtime-tracker/middleware"
	"overtime-tracker/models"
	"overtime-tracker/services"

	"github.com/sirupsen/logrus"
)

type page map[string]interface{}

func render(w http.ResponseWriter, r *http.Request, templates map[string]*template.Template, name string, data page) {
	t, ok := templates[name]
	if !ok {
		serverError(w, r, errors.New("unknown template "+name))
		return
	}
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		logging.Logger.WithError(err).WithField("reqid", middleware.GetRequestID(r)).Errorf("render %s", name)
	}
}

// redirectWith sends the browser to target with a transient notice.
func redirectWith(w http.ResponseWriter, r *http.Request, target, kind, message string) {
	u, err := url.Parse(target)
	if err != nil {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	q := u.Query()
	q.Set(kind, message)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

func redirectError(w http.ResponseWriter, r *http.Request, target, message string) {
	redirectWith(w, r, target, "error", message)
}

func redirectSuccess(w http.ResponseWriter, r *http.Request, target, message string) {
	redirectWith(w, r, target, "success", message)
}

func serverError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Logger.WithError(err).WithFields(logrus.Fields{
		"reqid":  middleware.GetRequestID(r),
		"method": r.Method,
		"uri":    r.RequestURI,
	}).Error("request failed")
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// handleServiceError maps the service error taxonomy to a notice and a
// redirect. Anything else is a server error.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		redirectError(w, r, fallback, ve.Error())
	case errors.Is(err, services.ErrAccessDenied):
		redirectError(w, r, fallback, "Access denied")
	case errors.Is(err, services.ErrNotFound):
		redirectError(w, r, fallback, "Record not found")
	default:
		serverError(w, r, err)
	}
}

func currentUser(r *http.Request) *models.User {
	return middleware.GetUserFromContext(r.Context())
}
