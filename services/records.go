package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"overtime-tracker/config"
	"overtime-tracker/hours"
	"overtime-tracker/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const recentRecordsLimit = 8

// RecordInput carries the submitted form fields of a record.
type RecordInput struct {
	Company        string
	MonthYear      string
	Department     string
	Section        string
	EmployeeName   string
	EmployeeCode   string
	Date           string
	Justification  string
	DutyIn         string
	DutyOut        string
	SignOfIncharge string
}

func (in RecordInput) trimmed() RecordInput {
	return RecordInput{
		Company:        strings.TrimSpace(in.Company),
		MonthYear:      strings.TrimSpace(in.MonthYear),
		Department:     strings.TrimSpace(in.Department),
		Section:        strings.TrimSpace(in.Section),
		EmployeeName:   strings.TrimSpace(in.EmployeeName),
		EmployeeCode:   strings.TrimSpace(in.EmployeeCode),
		Date:           strings.TrimSpace(in.Date),
		Justification:  strings.TrimSpace(in.Justification),
		DutyIn:         strings.TrimSpace(in.DutyIn),
		DutyOut:        strings.TrimSpace(in.DutyOut),
		SignOfIncharge: strings.TrimSpace(in.SignOfIncharge),
	}
}

// InputFromRecord returns the form fields that reproduce rec.
func InputFromRecord(rec *models.OvertimeRecord) RecordInput {
	return RecordInput{
		Company:        rec.Company,
		MonthYear:      rec.MonthYear,
		Department:     rec.Department,
		Section:        rec.Section,
		EmployeeName:   rec.EmployeeName,
		EmployeeCode:   rec.EmployeeCode,
		Date:           rec.DateString(),
		Justification:  rec.Justification,
		DutyIn:         rec.DutyIn,
		DutyOut:        rec.DutyOut,
		SignOfIncharge: rec.SignOfIncharge,
	}
}

// Summary is the dashboard view of the records visible to an actor.
type Summary struct {
	Employees     int64
	OvertimeHours float64
	Pending       int64
	Recent        []models.OvertimeRecord
}

type EmployeeOption struct {
	Code string
	Name string
}

type FilterOptions struct {
	Sections  []string
	Employees []EmployeeOption
}

// RecordService implements the role-gated overtime record lifecycle.
type RecordService struct {
	db                *gorm.DB
	companyName       string
	defaultDepartment string
}

func NewRecordService(db *gorm.DB, cfg *config.Config) *RecordService {
	return &RecordService{
		db:                db,
		companyName:       cfg.CompanyName,
		defaultDepartment: cfg.DefaultDepartment,
	}
}

// Create validates the input, computes the hour fields and stores a new
// record owned by the actor. Sign-off is dropped for actors who may not set it.
func (s *RecordService) Create(ctx context.Context, actor Actor, input RecordInput) (*models.OvertimeRecord, error) {
	if !actor.Can(models.CapCreateRecord) {
		return nil, ErrAccessDenied
	}

	in := input.trimmed()
	if in.EmployeeName == "" || in.EmployeeCode == "" || in.Date == "" ||
		in.DutyIn == "" || in.DutyOut == "" || in.MonthYear == "" {
		return nil, invalid("", "Please fill required fields", nil)
	}

	day, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}

	total, overtime, err := hours.Compute(in.DutyIn, in.DutyOut)
	if err != nil {
		return nil, invalid("duty", "Invalid time", err)
	}

	company := in.Company
	if company == "" {
		company = s.companyName
	}
	department := in.Department
	if department == "" {
		department = s.defaultDepartment
	}
	signOff := ""
	if actor.Can(models.CapSetSignOff) {
		signOff = in.SignOfIncharge
	}

	rec := models.OvertimeRecord{
		Company:        company,
		MonthYear:      in.MonthYear,
		Department:     department,
		Section:        in.Section,
		EmployeeName:   in.EmployeeName,
		EmployeeCode:   in.EmployeeCode,
		Date:           datatypes.Date(day),
		Justification:  in.Justification,
		DutyIn:         in.DutyIn,
		DutyOut:        in.DutyOut,
		TotalHours:     total,
		OvertimeHours:  overtime,
		SignOfIncharge: signOff,
		CreatedBy:      actor.Username,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("create overtime record: %w", err)
	}
	return &rec, nil
}

// Get loads a record for editing.
func (s *RecordService) Get(ctx context.Context, actor Actor, id uint) (*models.OvertimeRecord, error) {
	if !actor.Can(models.CapEditRecord) {
		return nil, ErrAccessDenied
	}
	return s.find(ctx, id)
}

// Edit overwrites the mutable fields of a record and recomputes its hours.
// Nothing is written when validation fails.
func (s *RecordService) Edit(ctx context.Context, actor Actor, id uint, input RecordInput) (*models.OvertimeRecord, error) {
	if !actor.Can(models.CapEditRecord) {
		return nil, ErrAccessDenied
	}

	rec, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	in := input.trimmed()
	if in.EmployeeName == "" || in.EmployeeCode == "" || in.DutyIn == "" || in.DutyOut == "" {
		return nil, invalid("", "Please fill required fields", nil)
	}

	total, overtime, err := hours.Compute(in.DutyIn, in.DutyOut)
	if err != nil {
		return nil, invalid("duty", "Error updating record", err)
	}

	rec.EmployeeName = in.EmployeeName
	rec.EmployeeCode = in.EmployeeCode
	rec.Section = in.Section
	rec.Justification = in.Justification
	rec.DutyIn = in.DutyIn
	rec.DutyOut = in.DutyOut
	rec.SignOfIncharge = in.SignOfIncharge
	rec.TotalHours = total
	rec.OvertimeHours = overtime

	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		return nil, fmt.Errorf("update overtime record %d: %w", id, err)
	}
	return rec, nil
}

func (s *RecordService) Delete(ctx context.Context, actor Actor, id uint) error {
	if !actor.Can(models.CapDeleteRecord) {
		return ErrAccessDenied
	}

	res := s.db.WithContext(ctx).Delete(&models.OvertimeRecord{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete overtime record %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List is the primary record query: exact section match, newest first.
// Actors without list_all only ever see the records they created.
func (s *RecordService) List(ctx context.Context, actor Actor, filter models.RecordFilter) ([]models.OvertimeRecord, error) {
	return s.list(ctx, actor, filter, false)
}

// ListForDownload backs the filtered spreadsheet download. It differs from
// List only in matching section as a case-insensitive substring.
func (s *RecordService) ListForDownload(ctx context.Context, actor Actor, filter models.RecordFilter) ([]models.OvertimeRecord, error) {
	return s.list(ctx, actor, filter, true)
}

func (s *RecordService) list(ctx context.Context, actor Actor, filter models.RecordFilter, sectionSubstring bool) ([]models.OvertimeRecord, error) {
	query, err := s.visible(ctx, actor)
	if err != nil {
		return nil, err
	}

	if filter.Date != "" {
		day, err := parseDate(filter.Date)
		if err != nil {
			return nil, err
		}
		query = query.Where("date = ?", datatypes.Date(day))
	}
	if filter.Employee != "" {
		pattern := likePattern(filter.Employee)
		query = query.Where("(LOWER(employee_name) LIKE ? OR LOWER(employee_code) LIKE ?)", pattern, pattern)
	}
	if filter.Section != "" {
		if sectionSubstring {
			query = query.Where("LOWER(section) LIKE ?", likePattern(filter.Section))
		} else {
			query = query.Where("section = ?", filter.Section)
		}
	}

	var records []models.OvertimeRecord
	if err := query.Order("date desc").Order("id desc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list overtime records: %w", err)
	}
	return records, nil
}

// Summary returns the dashboard counters over the records visible to actor.
func (s *RecordService) Summary(ctx context.Context, actor Actor) (*Summary, error) {
	var sum Summary

	scoped, err := s.visible(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := scoped.Distinct("employee_code").Count(&sum.Employees).Error; err != nil {
		return nil, fmt.Errorf("count employees: %w", err)
	}
	if err := scoped.Select("COALESCE(SUM(overtime_hours), 0)").Scan(&sum.OvertimeHours).Error; err != nil {
		return nil, fmt.Errorf("sum overtime hours: %w", err)
	}
	sum.OvertimeHours = hours.Round(sum.OvertimeHours)

	if err := scoped.Where("(sign_of_incharge IS NULL OR sign_of_incharge = '')").Count(&sum.Pending).Error; err != nil {
		return nil, fmt.Errorf("count pending records: %w", err)
	}
	if err := scoped.Order("date desc").Order("id desc").Limit(recentRecordsLimit).Find(&sum.Recent).Error; err != nil {
		return nil, fmt.Errorf("load recent records: %w", err)
	}

	return &sum, nil
}

// FilterOptions lists the distinct sections and employees for the filter
// dropdowns of the records view.
func (s *RecordService) FilterOptions(ctx context.Context, actor Actor) (*FilterOptions, error) {
	var opts FilterOptions

	scoped, err := s.visible(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := scoped.Distinct().Where("section <> ''").Order("section").Pluck("section", &opts.Sections).Error; err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}

	err = scoped.Distinct("employee_code AS code", "employee_name AS name").
		Order("employee_name").
		Scan(&opts.Employees).Error
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	return &opts, nil
}

// visible scopes a record query to what the actor may list. The returned
// session can be chained from more than once.
func (s *RecordService) visible(ctx context.Context, actor Actor) (*gorm.DB, error) {
	query := s.db.WithContext(ctx).Model(&models.OvertimeRecord{})
	if actor.Can(models.CapListAll) {
		return query.Session(&gorm.Session{}), nil
	}
	if !actor.Can(models.CapListOwn) {
		return nil, ErrAccessDenied
	}
	return query.Where("created_by = ?", actor.Username).Session(&gorm.Session{}), nil
}

func (s *RecordService) find(ctx context.Context, id uint) (*models.OvertimeRecord, error) {
	var rec models.OvertimeRecord
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load overtime record %d: %w", id, err)
	}
	return &rec, nil
}

func parseDate(s string) (time.Time, error) {
	day, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, invalid("date", "Invalid date, expected YYYY-MM-DD", err)
	}
	return day, nil
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
