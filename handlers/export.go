package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"overtime-tracker/logging"
	"overtime-tracker/middleware"
	"overtime-tracker/services"

	"github.com/sirupsen/logrus"
)

type ExportHandler struct {
	records *services.RecordService
	exports *services.ExportService
}

func NewExportHandler(records *services.RecordService, exports *services.ExportService) *ExportHandler {
	return &ExportHandler{
		records: records,
		exports: exports,
	}
}

// DownloadFiltered exports the records matching the view filters. Team
// users only ever export their own records.
func (h *ExportHandler) DownloadFiltered(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	records, err := h.records.ListForDownload(r.Context(), services.ActorFor(user), filterFromQuery(r))
	if err != nil {
		handleServiceError(w, r, err, "/view_records")
		return
	}

	data, err := h.exports.ExportFiltered(records)
	if err != nil {
		serverError(w, r, err)
		return
	}

	writeSpreadsheet(w, r, services.FilteredFilename(time.Now()), data)
}

func (h *ExportHandler) DownloadMonthly(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	monthYear := strings.TrimSpace(r.URL.Query().Get("month_year"))
	if monthYear == "" {
		redirectError(w, r, "/records", "Provide month_year param e.g. ?month_year=Jan 2025")
		return
	}

	export, err := h.exports.ExportMonthly(r.Context(), services.ActorFor(user), monthYear)
	if err != nil {
		handleServiceError(w, r, err, "/records")
		return
	}

	logging.Logger.WithFields(logrus.Fields{
		"user":    user.Username,
		"month":   monthYear,
		"records": export.Records,
	}).Info("monthly export")
	writeSpreadsheet(w, r, export.Filename, export.Data)
}

func writeSpreadsheet(w http.ResponseWriter, r *http.Request, filename string, data []byte) {
	w.Header().Set("Content-Type", services.SpreadsheetContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Logger.WithError(err).WithFields(logrus.Fields{
			"reqid": middleware.GetRequestID(r),
			"file":  filename,
		}).Error("write spreadsheet")
	}
}
