package study

import "strings"

// Assignment is the tri-state treatment classification of a participant
type Assignment int

const (
	AssignmentUnknown Assignment = iota
	AssignmentControl
	AssignmentTreatment
)

func (a Assignment) String() string {
	switch a {
	case AssignmentControl:
		return "control"
	case AssignmentTreatment:
		return "treatment"
	}
	return "unknown"
}

// Section identifies one of the four sequential task sections
type Section string

// Sections in experimental order. A and D bound the experiment; their column
// groups are mandatory. B and C may be absent from a given export.
var Sections = []Section{"A", "B", "C", "D"}

// Mandatory reports whether an export without this section's columns is unusable
func (s Section) Mandatory() bool {
	return s == "A" || s == "D"
}

// AggregateColumn is the derived per-row mean column for a section (pA..pD)
func (s Section) AggregateColumn() string {
	return "p" + string(s)
}

// ShiftColumn is the derived movement-from-baseline column (shift_B..shift_D)
func (s Section) ShiftColumn() string {
	return "shift_" + string(s)
}

// Derived column names shared across stages
const (
	ColGroupLabel = "group_label"
	ColTreat      = "treat"
	ColEdad       = "edad"
	ColSexo       = "sexo_str"
	ColMujer      = "mujer"
	ColOptimismo  = "preg_optimismo"
	ColConfianza  = "preg_confianza"
	ColGKTotal    = "gk_ok_total"
	ColOptimPre   = "optim_pre"
	ColOptimPost  = "optim_post"
	ColDOptim     = "d_optim"
)

// ClassifyLabel derives the treatment assignment from a raw group label.
// The substring tests are independent: a label matching both tokens is
// ambiguous and classifies as Unknown (the caller emits the diagnostic).
func ClassifyLabel(label string) Assignment {
	lower := strings.ToLower(label)
	isTreat := strings.Contains(lower, "trat")
	isControl := strings.Contains(lower, "control")
	switch {
	case isTreat && isControl:
		return AssignmentUnknown
	case isTreat:
		return AssignmentTreatment
	case isControl:
		return AssignmentControl
	}
	return AssignmentUnknown
}

// Ambiguous reports whether a label matches both classification tokens
func Ambiguous(label string) bool {
	lower := strings.ToLower(label)
	return strings.Contains(lower, "trat") && strings.Contains(lower, "control")
}
