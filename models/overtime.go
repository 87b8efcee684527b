package models

import (
	"time"

	"gorm.io/datatypes"
)

const DateLayout = "2006-01-02"

type OvertimeRecord struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Company        string         `gorm:"not null;size:200" json:"company"`
	MonthYear      string         `gorm:"not null;size:20" json:"month_year"`
	Department     string         `gorm:"not null;size:100" json:"department"`
	Section        string         `gorm:"size:100;index" json:"section"`
	EmployeeName   string         `gorm:"not null;size:200" json:"employee_name"`
	EmployeeCode   string         `gorm:"not null;size:100;index" json:"employee_code"`
	Date           datatypes.Date `gorm:"not null;index" json:"date"`
	Justification  string         `gorm:"type:text" json:"justification"`
	DutyIn         string         `gorm:"not null;size:10" json:"duty_in"`
	DutyOut        string         `gorm:"not null;size:10" json:"duty_out"`
	TotalHours     float64        `gorm:"not null" json:"total_hours"`
	OvertimeHours  float64        `gorm:"not null" json:"overtime_hours"`
	SignOfIncharge string         `gorm:"size:200" json:"sign_of_incharge"`
	CreatedBy      string         `gorm:"not null;size:120;index" json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Day returns the record date as a UTC midnight time.
func (r *OvertimeRecord) Day() time.Time {
	return time.Time(r.Date)
}

func (r *OvertimeRecord) DateString() string {
	return r.Day().Format(DateLayout)
}

// IsSigned reports whether a supervisor or manager has signed the record off.
func (r *OvertimeRecord) IsSigned() bool {
	return r.SignOfIncharge != ""
}

// RecordFilter holds the optional predicates of a record listing. Empty
// fields are not applied.
type RecordFilter struct {
	Date     string
	Employee string
	Section  string
}

func (f RecordFilter) IsEmpty() bool {
	return f.Date == "" && f.Employee == "" && f.Section == ""
}
