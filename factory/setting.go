/*
Package factory provides JSON to payment-setting conversion.

PURPOSE:
  Payment settings are configured by admins and stored as JSON
  documents. The factory converts those documents into honor.Setting
  values and validates them, so configuration changes never require a
  code change.

JSON SCHEMA:
  {
    "system": "session_per_student_category",
    "flat_monthly_rate": 1500000,
    "session_rate": 100000,
    "cpb_rate": 10000,
    "pb_rate": 15000,
    "npb_rate": 8000
  }

  Rate fields are optional; only the ones the system uses need to be
  present. Rates are whole rupiah - fractional values are rejected.

USAGE:
  f := factory.NewSettingFactory()
  setting, err := f.ParseSetting(jsonString)

  // From a preset (recommended for seeds/demos)
  jsonStr := factory.PerSessionJSON(100000)
  setting, err = f.ParseSetting(jsonStr)

SEE ALSO:
  - honor/types.go: Setting definition
  - api/handlers.go: Stores and reloads setting documents
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/sahabat/attendance-engine/honor"
	"github.com/sahabat/attendance-engine/money"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// SettingJSON is the stored representation of a payment setting.
type SettingJSON struct {
	System          string   `json:"system"`
	FlatMonthlyRate *float64 `json:"flat_monthly_rate,omitempty"`
	SessionRate     *float64 `json:"session_rate,omitempty"`
	CPBRate         *float64 `json:"cpb_rate,omitempty"`
	PBRate          *float64 `json:"pb_rate,omitempty"`
	NPBRate         *float64 `json:"npb_rate,omitempty"`
}

// CountsJSON is the request representation of usage counts. Values
// arrive as JSON numbers; fractional counts are a caller error.
type CountsJSON struct {
	SessionCount *float64 `json:"session_count,omitempty"`
	CPBCount     *float64 `json:"cpb_count,omitempty"`
	PBCount      *float64 `json:"pb_count,omitempty"`
	NPBCount     *float64 `json:"npb_count,omitempty"`
}

// =============================================================================
// SETTING FACTORY
// =============================================================================

type SettingFactory struct{}

func NewSettingFactory() *SettingFactory { return &SettingFactory{} }

// ParseSetting converts a JSON document into an honor.Setting.
// Any non-empty system name parses; the calculator is the one that
// rejects reserved or unknown systems, so admin screens can still
// display stored-but-unsupported settings.
func (f *SettingFactory) ParseSetting(jsonStr string) (honor.Setting, error) {
	var doc SettingJSON
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return honor.Setting{}, fmt.Errorf("invalid setting JSON: %w", err)
	}
	return f.FromJSON(doc)
}

// FromJSON converts an already-decoded document.
func (f *SettingFactory) FromJSON(doc SettingJSON) (honor.Setting, error) {
	if doc.System == "" {
		return honor.Setting{}, &honor.ValidationError{Field: "system", Message: "system is required"}
	}

	setting := honor.Setting{System: honor.System(doc.System)}

	fields := []struct {
		name  string
		value *float64
		dst   **money.Amount
	}{
		{"flat_monthly_rate", doc.FlatMonthlyRate, &setting.FlatMonthlyRate},
		{"session_rate", doc.SessionRate, &setting.SessionRate},
		{"cpb_rate", doc.CPBRate, &setting.CPBRate},
		{"pb_rate", doc.PBRate, &setting.PBRate},
		{"npb_rate", doc.NPBRate, &setting.NPBRate},
	}
	for _, fld := range fields {
		if fld.value == nil {
			continue
		}
		amt, err := wholeRupiah(fld.name, *fld.value)
		if err != nil {
			return honor.Setting{}, err
		}
		*fld.dst = &amt
	}

	return setting, nil
}

// ParseCounts validates and converts request counts. Absent fields
// default to zero; negative or fractional values are rejected.
func (f *SettingFactory) ParseCounts(doc CountsJSON) (honor.UsageCounts, error) {
	var counts honor.UsageCounts

	fields := []struct {
		name  string
		value *float64
		dst   *int
	}{
		{"session_count", doc.SessionCount, &counts.SessionCount},
		{"cpb_count", doc.CPBCount, &counts.CPBCount},
		{"pb_count", doc.PBCount, &counts.PBCount},
		{"npb_count", doc.NPBCount, &counts.NPBCount},
	}
	for _, fld := range fields {
		if fld.value == nil {
			continue
		}
		v := *fld.value
		if v != float64(int(v)) {
			return honor.UsageCounts{}, &honor.ValidationError{Field: fld.name, Message: "count must be a whole number"}
		}
		if v < 0 {
			return honor.UsageCounts{}, &honor.ValidationError{Field: fld.name, Message: "count must not be negative"}
		}
		*fld.dst = int(v)
	}

	return counts, nil
}

func wholeRupiah(field string, v float64) (money.Amount, error) {
	if v != float64(int64(v)) {
		return money.Amount{}, &honor.ValidationError{Field: field, Message: "rate must be whole rupiah"}
	}
	if v < 0 {
		return money.Amount{}, &honor.ValidationError{Field: field, Message: "rate must not be negative"}
	}
	return money.NewFromInt(int64(v)), nil
}

// =============================================================================
// PRESETS - Ready-made setting documents for seeds and demos
// =============================================================================

func FlatMonthlyJSON(monthlyRate int64) string {
	return fmt.Sprintf(`{"system":"flat_monthly","flat_monthly_rate":%d}`, monthlyRate)
}

func PerSessionJSON(sessionRate int64) string {
	return fmt.Sprintf(`{"system":"per_session","session_rate":%d}`, sessionRate)
}

func PerStudentCategoryJSON(cpb, pb, npb int64) string {
	return fmt.Sprintf(`{"system":"per_student_category","cpb_rate":%d,"pb_rate":%d,"npb_rate":%d}`, cpb, pb, npb)
}

func SessionPerStudentCategoryJSON(session, cpb, pb, npb int64) string {
	return fmt.Sprintf(
		`{"system":"session_per_student_category","session_rate":%d,"cpb_rate":%d,"pb_rate":%d,"npb_rate":%d}`,
		session, cpb, pb, npb)
}
