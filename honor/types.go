/*
Package honor implements tutor honorarium calculation.

PURPOSE:
  An organization configures exactly one active payment system; at the
  end of a period (or on the preview screen) the calculator turns that
  setting plus a set of usage counts into a per-component breakdown and
  a total amount. The calculator is a pure function: identical inputs
  always yield an identical Breakdown.

KEY CONCEPTS IN THIS FILE (types.go):
  - System: closed set of payment formulas (four implemented variants)
  - Setting: the active formula plus its configured rates
  - UsageCounts: session and student-category counts for a period
  - Breakdown/Component: the calculation output

STUDENT CATEGORIES:
  CPB = Calon Penerima Beasiswa (prospective scholarship recipient)
  PB  = Penerima Beasiswa (scholarship recipient)
  NPB = Non Penerima Beasiswa (non-recipient)

RESERVED SYSTEMS:
  Several named systems exist in admin lookup tables but have no
  calculation formula. The calculator rejects them with
  UnsupportedPaymentSystemError instead of guessing.

SEE ALSO:
  - calculator.go: The four-way dispatch
  - factory/setting.go: JSON to Setting conversion
*/
package honor

import "github.com/sahabat/attendance-engine/money"

// =============================================================================
// SYSTEM - Closed set of payment formulas
// =============================================================================

type System string

const (
	FlatMonthly               System = "flat_monthly"
	PerSession                System = "per_session"
	PerStudentCategory        System = "per_student_category"
	SessionPerStudentCategory System = "session_per_student_category"
)

// Reserved systems: named in admin tables, no calculation path.
const (
	ReservedPerHour           System = "per_hour"
	ReservedBasePerSession    System = "base_per_session"
	ReservedBasePerStudent    System = "base_per_student"
	ReservedBasePerHour       System = "base_per_hour"
	ReservedSessionPerStudent System = "session_per_student"
)

// Implemented returns true when the calculator has a formula for the system.
func (s System) Implemented() bool {
	switch s {
	case FlatMonthly, PerSession, PerStudentCategory, SessionPerStudentCategory:
		return true
	default:
		return false
	}
}

// UsesSessions reports whether the formula consumes the session count.
func (s System) UsesSessions() bool {
	return s == PerSession || s == SessionPerStudentCategory
}

// UsesCategories reports whether the formula consumes student-category counts.
func (s System) UsesCategories() bool {
	return s == PerStudentCategory || s == SessionPerStudentCategory
}

// =============================================================================
// DISPLAY METADATA - Single source for every screen's lookup tables
// =============================================================================

// Info carries the display metadata for a payment system. Screens derive
// names and descriptions from here instead of keeping their own tables.
type Info struct {
	System      System `json:"system"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Implemented bool   `json:"implemented"`
}

// Describe returns the display metadata for a system.
func (s System) Describe() Info {
	info := Info{System: s, Implemented: s.Implemented()}
	switch s {
	case FlatMonthly:
		info.Label = "Honor Tetap Bulanan"
		info.Description = "Nominal tetap per bulan, tidak tergantung aktivitas"
	case PerSession:
		info.Label = "Per Sesi"
		info.Description = "Tarif dikali jumlah sesi mengajar"
	case PerStudentCategory:
		info.Label = "Per Kategori Siswa"
		info.Description = "Tarif per siswa menurut kategori CPB/PB/NPB"
	case SessionPerStudentCategory:
		info.Label = "Per Sesi + Kategori Siswa"
		info.Description = "Gabungan tarif sesi dan tarif per kategori siswa"
	default:
		info.Label = string(s)
		info.Description = "Belum didukung"
	}
	return info
}

// Systems lists every known system, implemented variants first. The
// order is fixed so screens render consistently.
func Systems() []Info {
	all := []System{
		FlatMonthly, PerSession, PerStudentCategory, SessionPerStudentCategory,
		ReservedPerHour, ReservedBasePerSession, ReservedBasePerStudent,
		ReservedBasePerHour, ReservedSessionPerStudent,
	}
	infos := make([]Info, len(all))
	for i, s := range all {
		infos[i] = s.Describe()
	}
	return infos
}

// =============================================================================
// STUDENT CATEGORY
// =============================================================================

// Category is the mutually exclusive scholarship category of a student.
type Category string

const (
	CategoryCPB Category = "cpb"
	CategoryPB  Category = "pb"
	CategoryNPB Category = "npb"
)

func (c Category) Valid() bool {
	return c == CategoryCPB || c == CategoryPB || c == CategoryNPB
}

// =============================================================================
// SETTING - The active payment configuration
// =============================================================================

// Setting is the active honor formula for an organization. Only the rate
// fields relevant to System are populated; nil means not configured.
// Exactly one setting is active at a time - activation is an admin
// action handled outside this package.
type Setting struct {
	System System

	FlatMonthlyRate *money.Amount
	SessionRate     *money.Amount
	CPBRate         *money.Amount
	PBRate          *money.Amount
	NPBRate         *money.Amount
}

// =============================================================================
// USAGE COUNTS - Variable inputs for one calculation
// =============================================================================

// UsageCounts carries the per-period counts. Constructed fresh per
// calculation request; no persistent identity.
type UsageCounts struct {
	SessionCount int

	CPBCount int
	PBCount  int
	NPBCount int
}

// =============================================================================
// BREAKDOWN - Calculation output
// =============================================================================

// ComponentKey identifies one line of a breakdown.
type ComponentKey string

const (
	ComponentMonthly ComponentKey = "monthly"
	ComponentSession ComponentKey = "session"
	ComponentCPB     ComponentKey = "cpb"
	ComponentPB      ComponentKey = "pb"
	ComponentNPB     ComponentKey = "npb"
)

// Component is one line of a breakdown: count x rate = amount.
type Component struct {
	Key    ComponentKey
	Count  int
	Rate   money.Amount
	Amount money.Amount
}

// Breakdown is the full calculation result. Components keep a fixed
// order (monthly, session, cpb, pb, npb) so rendering is deterministic;
// zero-count categories are still present for display consistency.
type Breakdown struct {
	System     System
	Components []Component
	Total      money.Amount
}

// Component returns the component with the given key, if present.
func (b Breakdown) Component(key ComponentKey) (Component, bool) {
	for _, c := range b.Components {
		if c.Key == key {
			return c, true
		}
	}
	return Component{}, false
}
