// Package hours computes worked and overtime hours from duty-in/duty-out
// clock strings.
package hours

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RegularHours is the shift length after which worked time counts as overtime.
const RegularHours = 10.0

const minutesPerDay = 24 * 60

// FormatError reports a clock string that is not H:MM or HH:MM.
type FormatError struct {
	Value  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid time %q: %s", e.Value, e.Reason)
}

const clockLayout = "15:04"

// ParseClock splits an H:MM or HH:MM string into hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, 0, &FormatError{Value: s, Reason: "time format must be HH:MM"}
	}
	return t.Hour(), t.Minute(), nil
}

// TotalHours returns the span from in to out rounded to two decimals.
// When out is not strictly after in the shift is taken to end on the next
// day, so equal times yield a full 24 hours.
func TotalHours(in, out string) (float64, error) {
	inH, inM, err := ParseClock(in)
	if err != nil {
		return 0, err
	}
	outH, outM, err := ParseClock(out)
	if err != nil {
		return 0, err
	}

	start := inH*60 + inM
	end := outH*60 + outM
	if end <= start {
		end += minutesPerDay
	}

	total := decimal.NewFromInt(int64(end - start)).
		Div(decimal.NewFromInt(60)).
		Round(2)
	return total.InexactFloat64(), nil
}

// OvertimeHours returns the hours worked beyond RegularHours.
func OvertimeHours(total float64) float64 {
	return OvertimeHoursOver(total, RegularHours)
}

// OvertimeHoursOver returns max(0, total-regular) rounded to two decimals.
func OvertimeHoursOver(total, regular float64) float64 {
	ov := decimal.NewFromFloat(total).Sub(decimal.NewFromFloat(regular))
	if ov.IsNegative() {
		return 0
	}
	return ov.Round(2).InexactFloat64()
}

// Round rounds v to two decimals, half away from zero.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Compute returns both hour fields for a duty-in/duty-out pair.
func Compute(in, out string) (total, overtime float64, err error) {
	total, err = TotalHours(in, out)
	if err != nil {
		return 0, 0, err
	}
	return total, OvertimeHours(total), nil
}
