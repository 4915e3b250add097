// Package compliance computes a driver's eligibility color from the DQF
// certification fields. Evaluation is pure: same fields and clock, same
// answer.
package compliance

import (
	"time"

	"fleetlease/internal/domain/driver"
)

// Status is the tri-state eligibility signal.
type Status string

const (
	StatusGreen  Status = "green"  // Fully compliant
	StatusYellow Status = "yellow" // Compliant, but something expires soon
	StatusRed    Status = "red"    // Non-compliant, missing or expired
)

// WarningWindow is how far ahead an upcoming expiry turns the status
// yellow. The boundary is inclusive: a document expiring exactly 30 days
// out is already yellow.
const WarningWindow = 30 * 24 * time.Hour

// DateLayout is the wire format for self-submitted document dates.
const DateLayout = "2006-01-02"

// screeningValidity: background checks and drug/alcohol screenings are
// valid for one year from the screening date.
func screeningExpiry(screenedAt time.Time) time.Time {
	return screenedAt.AddDate(1, 0, 0)
}

// Evaluate maps a driver's certification fields to a compliance status.
// Any missing required field is red before any date logic runs; an
// unparseable date is treated the same as an expired one (fail closed).
// Red short-circuits; yellow is sticky until a red is found.
func Evaluate(cert driver.Certification, now time.Time) Status {
	required := []string{
		cert.CDLNumber,
		cert.CDLExpiry,
		cert.MedicalCardExpiry,
		cert.InsuranceExpiry,
		cert.MVRNumber,
		cert.BackgroundCheckedAt,
		cert.PreEmploymentScreenedAt,
		cert.DrugScreenedAt,
	}
	for _, field := range required {
		if field == "" {
			return StatusRed
		}
	}

	warning := false

	// Documents carrying their own expiry date.
	for _, raw := range []string{cert.CDLExpiry, cert.MedicalCardExpiry, cert.InsuranceExpiry} {
		switch checkExpiry(raw, now) {
		case StatusRed:
			return StatusRed
		case StatusYellow:
			warning = true
		}
	}

	// Screenings valid one year from the screening date. Pre-employment
	// screening is one-time and never expires; its presence (checked
	// above) is enough.
	for _, raw := range []string{cert.BackgroundCheckedAt, cert.DrugScreenedAt} {
		screenedAt, err := time.Parse(DateLayout, raw)
		if err != nil {
			return StatusRed
		}
		switch checkDate(screeningExpiry(screenedAt), now) {
		case StatusRed:
			return StatusRed
		case StatusYellow:
			warning = true
		}
	}

	if _, err := time.Parse(DateLayout, cert.PreEmploymentScreenedAt); err != nil {
		return StatusRed
	}

	if warning {
		return StatusYellow
	}
	return StatusGreen
}

func checkExpiry(raw string, now time.Time) Status {
	expiry, err := time.Parse(DateLayout, raw)
	if err != nil {
		return StatusRed
	}
	return checkDate(expiry, now)
}

func checkDate(expiry, now time.Time) Status {
	if expiry.Before(now) {
		return StatusRed
	}
	if !expiry.After(now.Add(WarningWindow)) {
		return StatusYellow
	}
	return StatusGreen
}
