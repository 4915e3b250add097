package compliance

import (
	"testing"
	"time"

	"fleetlease/internal/domain/driver"
)

// now is midnight UTC so day-offset boundaries land exactly where the
// warning window does.
var now = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func days(n int) string {
	return now.AddDate(0, 0, n).Format(DateLayout)
}

// fullyValid builds a certification set that evaluates green at `now`.
func fullyValid() driver.Certification {
	return driver.Certification{
		CDLNumber:               "D1204-55781",
		CDLExpiry:               days(400),
		MedicalCardExpiry:       days(200),
		InsuranceExpiry:         days(180),
		MVRNumber:               "MVR-88341",
		BackgroundCheckedAt:     days(-40),
		PreEmploymentScreenedAt: days(-700),
		DrugScreenedAt:          days(-60),
	}
}

func TestFullyValidIsGreen(t *testing.T) {
	if got := Evaluate(fullyValid(), now); got != StatusGreen {
		t.Errorf("Evaluate = %s, want %s", got, StatusGreen)
	}
}

func TestMissingFieldFailsClosed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *driver.Certification)
	}{
		{"no CDL number", func(c *driver.Certification) { c.CDLNumber = "" }},
		{"no CDL expiry", func(c *driver.Certification) { c.CDLExpiry = "" }},
		{"no medical card", func(c *driver.Certification) { c.MedicalCardExpiry = "" }},
		{"no insurance", func(c *driver.Certification) { c.InsuranceExpiry = "" }},
		{"no MVR", func(c *driver.Certification) { c.MVRNumber = "" }},
		{"no background check", func(c *driver.Certification) { c.BackgroundCheckedAt = "" }},
		{"no pre-employment screening", func(c *driver.Certification) { c.PreEmploymentScreenedAt = "" }},
		{"no drug screening", func(c *driver.Certification) { c.DrugScreenedAt = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cert := fullyValid()
			tt.mutate(&cert)
			if got := Evaluate(cert, now); got != StatusRed {
				t.Errorf("Evaluate = %s, want %s", got, StatusRed)
			}
		})
	}
}

func TestMissingFieldWinsOverEverything(t *testing.T) {
	// All dates valid and far out, but one required field absent.
	cert := fullyValid()
	cert.MVRNumber = ""
	if got := Evaluate(cert, now); got != StatusRed {
		t.Errorf("Evaluate = %s, want %s", got, StatusRed)
	}
}

func TestExpiryWindowBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		cdlExpiry string
		want      Status
	}{
		{"expired yesterday", days(-1), StatusRed},
		{"expires today", days(0), StatusYellow},
		{"expires in 30 days", days(30), StatusYellow},
		{"expires in 31 days", days(31), StatusGreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cert := fullyValid()
			cert.CDLExpiry = tt.cdlExpiry
			if got := Evaluate(cert, now); got != tt.want {
				t.Errorf("Evaluate = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestScreeningOneYearValidity(t *testing.T) {
	tests := []struct {
		name       string
		screenedAt string
		want       Status
	}{
		{"screened 13 months ago", days(-400), StatusRed},
		{"expires within window", now.AddDate(-1, 0, 20).Format(DateLayout), StatusYellow},
		{"screened recently", days(-30), StatusGreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cert := fullyValid()
			cert.DrugScreenedAt = tt.screenedAt
			if got := Evaluate(cert, now); got != tt.want {
				t.Errorf("Evaluate = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPreEmploymentScreeningNeverExpires(t *testing.T) {
	cert := fullyValid()
	cert.PreEmploymentScreenedAt = days(-365 * 10)
	if got := Evaluate(cert, now); got != StatusGreen {
		t.Errorf("Evaluate = %s, want %s", got, StatusGreen)
	}
}

func TestMalformedDateFailsClosed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *driver.Certification)
	}{
		{"garbage CDL expiry", func(c *driver.Certification) { c.CDLExpiry = "not-a-date" }},
		{"wrong layout", func(c *driver.Certification) { c.InsuranceExpiry = "03/10/2026" }},
		{"garbage screening date", func(c *driver.Certification) { c.BackgroundCheckedAt = "soon" }},
		{"garbage pre-employment date", func(c *driver.Certification) { c.PreEmploymentScreenedAt = "??" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cert := fullyValid()
			tt.mutate(&cert)
			if got := Evaluate(cert, now); got != StatusRed {
				t.Errorf("Evaluate = %s, want %s", got, StatusRed)
			}
		})
	}
}

func TestRedBeatsYellow(t *testing.T) {
	cert := fullyValid()
	cert.MedicalCardExpiry = days(10) // yellow window
	cert.InsuranceExpiry = days(-5)   // expired
	if got := Evaluate(cert, now); got != StatusRed {
		t.Errorf("Evaluate = %s, want %s", got, StatusRed)
	}
}

func TestYellowWhenOnlyWarnings(t *testing.T) {
	cert := fullyValid()
	cert.MedicalCardExpiry = days(12)
	if got := Evaluate(cert, now); got != StatusYellow {
		t.Errorf("Evaluate = %s, want %s", got, StatusYellow)
	}
}
