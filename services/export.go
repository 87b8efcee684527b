package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"overtime-tracker/config"
	"overtime-tracker/logging"
	"overtime-tracker/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	filteredSheet   = "Filtered Records"
	createdAtLayout = "2006-01-02 15:04:05"

	logoWidth  = 120
	logoHeight = 60
)

var filteredHeaders = []string{"Employee Code", "Employee Name", "Section", "Date", "Hours", "Status"}

var monthlyHeaders = []string{
	"Company", "Month/Year", "Department", "Section", "Employee Name", "Employee Code",
	"Date", "Justification", "Duty IN Time", "Duty OUT Time", "Total Hours",
	"Overtime Hours", "Sign of Incharge", "Submitted By", "Submitted At",
}

// MonthPeriod is a calendar month named by a "Mon YYYY" label.
type MonthPeriod struct {
	Year  int
	Month time.Month
}

// ParseMonthLabel parses labels such as "Jan 2025". The month abbreviation
// is matched case-insensitively.
func ParseMonthLabel(label string) (MonthPeriod, error) {
	parts := strings.Fields(label)
	if len(parts) != 2 {
		return MonthPeriod{}, invalid("month_year", "Invalid month_year format. Use e.g. Jan 2025", nil)
	}

	m, err := time.Parse("Jan", parts[0])
	if err != nil {
		return MonthPeriod{}, invalid("month_year", "Invalid month_year format. Use e.g. Jan 2025", err)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil || year < 1 || year > 9999 {
		return MonthPeriod{}, invalid("month_year", "Invalid month_year format. Use e.g. Jan 2025", err)
	}

	return MonthPeriod{Year: year, Month: m.Month()}, nil
}

func (p MonthPeriod) FirstDay() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (p MonthPeriod) LastDay() time.Time {
	return p.FirstDay().AddDate(0, 1, -1)
}

// Label returns the canonical "Jan 2025" form.
func (p MonthPeriod) Label() string {
	return fmt.Sprintf("%s %d", p.Month.String()[:3], p.Year)
}

// MonthlyExport is a rendered monthly workbook.
type MonthlyExport struct {
	Filename string
	Records  int
	Data     []byte
}

type ExportService struct {
	db       *gorm.DB
	logoPath string
}

func NewExportService(db *gorm.DB, cfg *config.Config) *ExportService {
	return &ExportService{db: db, logoPath: cfg.LogoPath}
}

// FilteredFilename names a filtered download generated at now.
func FilteredFilename(now time.Time) string {
	return fmt.Sprintf("Filtered_Overtime_%s.xlsx", now.Format("20060102_1504"))
}

// ExportFiltered renders records as a single-sheet workbook. Hours is the
// record's total hours and Status its sign-off state.
func (s *ExportService) ExportFiltered(records []models.OvertimeRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), filteredSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(filteredSheet, "A1", &filteredHeaders); err != nil {
		return nil, err
	}

	for i := range records {
		r := &records[i]
		row := []interface{}{
			r.EmployeeCode,
			r.EmployeeName,
			r.Section,
			r.DateString(),
			r.TotalHours,
			signOffStatus(r),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(filteredSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write filtered workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportMonthly renders every record dated within the labelled month,
// oldest first. The label is validated before the store is queried.
func (s *ExportService) ExportMonthly(ctx context.Context, actor Actor, label string) (*MonthlyExport, error) {
	if !actor.Can(models.CapExportMonthly) {
		return nil, ErrAccessDenied
	}

	period, err := ParseMonthLabel(label)
	if err != nil {
		return nil, err
	}

	var records []models.OvertimeRecord
	err = s.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", datatypes.Date(period.FirstDay()), datatypes.Date(period.LastDay())).
		Order("date asc").Order("id asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load records for %s: %w", period.Label(), err)
	}

	name := "Overtime_" + strings.ReplaceAll(period.Label(), " ", "_")
	data, err := s.renderMonthly(name, records)
	if err != nil {
		return nil, err
	}

	return &MonthlyExport{
		Filename: name + ".xlsx",
		Records:  len(records),
		Data:     data,
	}, nil
}

func (s *ExportService) renderMonthly(sheet string, records []models.OvertimeRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	if err := s.embedLogo(f, sheet); err != nil {
		logging.Logger.WithError(err).WithField("logo", s.logoPath).Warn("skipping logo in monthly export")
	}

	// row 1 is left blank under the logo
	if err := f.SetSheetRow(sheet, "A2", &monthlyHeaders); err != nil {
		return nil, err
	}

	for i := range records {
		r := &records[i]
		row := []interface{}{
			r.Company,
			r.MonthYear,
			r.Department,
			r.Section,
			r.EmployeeName,
			r.EmployeeCode,
			r.DateString(),
			r.Justification,
			r.DutyIn,
			r.DutyOut,
			r.TotalHours,
			r.OvertimeHours,
			r.SignOfIncharge,
			r.CreatedBy,
			r.CreatedAt.UTC().Format(createdAtLayout),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write monthly workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// embedLogo anchors the configured logo at A1 scaled to a fixed size. A
// missing or unset logo is not an error.
func (s *ExportService) embedLogo(f *excelize.File, sheet string) error {
	if s.logoPath == "" {
		return nil
	}

	file, err := os.Open(s.logoPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	img, _, err := image.DecodeConfig(file)
	if err != nil {
		return fmt.Errorf("decode logo: %w", err)
	}
	if img.Width == 0 || img.Height == 0 {
		return errors.New("logo has no size")
	}

	return f.AddPicture(sheet, "A1", s.logoPath, &excelize.GraphicOptions{
		ScaleX:      float64(logoWidth) / float64(img.Width),
		ScaleY:      float64(logoHeight) / float64(img.Height),
		Positioning: "oneCell",
	})
}

func signOffStatus(r *models.OvertimeRecord) string {
	if r.IsSigned() {
		return "Signed"
	}
	return "Pending"
}
