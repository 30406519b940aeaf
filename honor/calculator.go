/*
calculator.go - The four-way honor formula dispatch

FORMULAS:
  flat_monthly:
    monthly = {count: 1, rate: flatMonthlyRate, amount: rate}
    Usage counts are ignored entirely.

  per_session:
    session = {count: sessionCount, rate: sessionRate, amount: count*rate}
    sessionRate must be a configured positive rate.

  per_student_category:
    cpb/pb/npb components, each count*rate. A category with count 0
    still produces a zero-amount component so the preview screen always
    shows all three lines.

  session_per_student_category:
    The session component plus the three category components.

  Total is always the sum of component amounts.

VALIDATION (before any computation):
  - every count must be a non-negative integer
  - every rate the selected system requires must be configured and
    non-negative (positive for sessionRate)

This dispatch is the ONLY place formulas live. Screens needing names or
default inputs derive them from System metadata in types.go.
*/
package honor

import "github.com/sahabat/attendance-engine/money"

// Calculate produces a Breakdown for the setting and counts, or fails
// with ValidationError, MissingRateError, or
// UnsupportedPaymentSystemError. Pure: no clock, no randomness.
func Calculate(setting Setting, counts UsageCounts) (Breakdown, error) {
	if !setting.System.Implemented() {
		return Breakdown{}, &UnsupportedPaymentSystemError{System: setting.System}
	}
	if err := validateCounts(counts); err != nil {
		return Breakdown{}, err
	}

	b := Breakdown{System: setting.System, Total: money.Zero()}

	switch setting.System {
	case FlatMonthly:
		rate, err := requiredRate(setting.System, "flatMonthlyRate", setting.FlatMonthlyRate, false)
		if err != nil {
			return Breakdown{}, err
		}
		b.add(Component{Key: ComponentMonthly, Count: 1, Rate: rate, Amount: rate})

	case PerSession:
		if err := b.addSession(setting, counts); err != nil {
			return Breakdown{}, err
		}

	case PerStudentCategory:
		if err := b.addCategories(setting, counts); err != nil {
			return Breakdown{}, err
		}

	case SessionPerStudentCategory:
		if err := b.addSession(setting, counts); err != nil {
			return Breakdown{}, err
		}
		if err := b.addCategories(setting, counts); err != nil {
			return Breakdown{}, err
		}
	}

	return b, nil
}

func (b *Breakdown) add(c Component) {
	b.Components = append(b.Components, c)
	b.Total = b.Total.Add(c.Amount)
}

func (b *Breakdown) addSession(setting Setting, counts UsageCounts) error {
	// Session rate must be positive, not merely present: a zero session
	// rate means the setting was never really configured.
	rate, err := requiredRate(setting.System, "sessionRate", setting.SessionRate, true)
	if err != nil {
		return err
	}
	b.add(Component{
		Key:    ComponentSession,
		Count:  counts.SessionCount,
		Rate:   rate,
		Amount: rate.MulInt(counts.SessionCount),
	})
	return nil
}

func (b *Breakdown) addCategories(setting Setting, counts UsageCounts) error {
	categories := []struct {
		key   ComponentKey
		field string
		rate  *money.Amount
		count int
	}{
		{ComponentCPB, "cpbRate", setting.CPBRate, counts.CPBCount},
		{ComponentPB, "pbRate", setting.PBRate, counts.PBCount},
		{ComponentNPB, "npbRate", setting.NPBRate, counts.NPBCount},
	}
	for _, c := range categories {
		rate, err := requiredRate(setting.System, c.field, c.rate, false)
		if err != nil {
			return err
		}
		b.add(Component{Key: c.key, Count: c.count, Rate: rate, Amount: rate.MulInt(c.count)})
	}
	return nil
}

func validateCounts(counts UsageCounts) error {
	checks := []struct {
		field string
		value int
	}{
		{"sessionCount", counts.SessionCount},
		{"cpbCount", counts.CPBCount},
		{"pbCount", counts.PBCount},
		{"npbCount", counts.NPBCount},
	}
	for _, c := range checks {
		if c.value < 0 {
			return &ValidationError{Field: c.field, Message: "count must not be negative"}
		}
	}
	return nil
}

func requiredRate(system System, field string, rate *money.Amount, mustBePositive bool) (money.Amount, error) {
	if rate == nil {
		return money.Amount{}, &MissingRateError{System: system, Field: field}
	}
	if rate.IsNegative() {
		return money.Amount{}, &MissingRateError{System: system, Field: field}
	}
	if mustBePositive && rate.IsZero() {
		return money.Amount{}, &MissingRateError{System: system, Field: field}
	}
	return *rate, nil
}
