package study

import "strings"

// Schema is the declared mapping of logical roles to source naming patterns.
// It makes the column-matching rules a data-level configuration the rest of
// the pipeline consumes, so the heuristics test independently of any workbook.
type Schema struct {
	// IdentifierColumn is the authoritative data-row test: rows without it
	// are header/annotation noise.
	IdentifierColumn string `yaml:"identifier_column"`

	// LabelTokens qualify a string column as a group-label source when any
	// of its values contains one of them (case-insensitive).
	LabelTokens []string `yaml:"label_tokens"`

	// PositionalLabelColumn, when present in an export, is taken verbatim as
	// the label source before any token scan (pandas-style unnamed column).
	PositionalLabelColumn string `yaml:"positional_label_column"`

	// Renames maps logical control-variable names to their source columns.
	// A missing source synthesizes an all-missing target (soft dependency).
	Renames map[string]string `yaml:"renames"`

	// FemaleTokens are the accepted values for which mujer is true.
	FemaleTokens []string `yaml:"female_tokens"`

	// SectionMarker is the fixed substring a section column name carries;
	// the section letter is its trailing `_X` qualifier.
	SectionMarker string `yaml:"section_marker"`

	// GKIndicators are the four per-item accuracy columns summed into
	// gk_ok_total. All four must resolve or the metric is omitted entirely.
	GKIndicators []string `yaml:"gk_indicators"`
}

// DefaultSchema matches the known export layout of the experiment platform
func DefaultSchema() Schema {
	return Schema{
		IdentifierColumn:      "participant_id_in_session",
		LabelTokens:           []string{"grupo", "trat", "control"},
		PositionalLabelColumn: "Unnamed: 0",
		Renames: map[string]string{
			ColEdad:      "TESIS_TOTAL_C_1_player_edad",
			ColSexo:      "TESIS_TOTAL_C_1_player_Sexo",
			ColOptimismo: "TESIS_TOTAL_C_1_player_Preg_Optimismo",
			ColConfianza: "TESIS_TOTAL_C_1_player_Preg_Confianza",
		},
		FemaleTokens:  []string{"female", "mujer"},
		SectionMarker: "p_blue",
		GKIndicators: []string{
			"TESIS_TOTAL_C_1_player_gk_1_ok",
			"TESIS_TOTAL_C_1_player_gk_2_ok",
			"TESIS_TOTAL_C_1_player_gk_3_ok",
			"TESIS_TOTAL_C_1_player_gk_4_ok",
		},
	}
}

// MatchesSection reports whether a column name belongs to the section's
// column group: it contains the marker and carries the section letter as a
// trailing `_X` qualifier, case-insensitively. Column order never matters.
func (s Schema) MatchesSection(column string, section Section) bool {
	lower := strings.ToLower(column)
	if !strings.Contains(lower, strings.ToLower(s.SectionMarker)) {
		return false
	}
	return strings.HasSuffix(lower, "_"+strings.ToLower(string(section)))
}

// IsLabelToken reports whether a cell value qualifies its column as a
// group-label source.
func (s Schema) IsLabelToken(value string) bool {
	lower := strings.ToLower(value)
	for _, tok := range s.LabelTokens {
		if strings.Contains(lower, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}

// IsFemale reports whether a sex string equals an accepted female token
func (s Schema) IsFemale(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	for _, tok := range s.FemaleTokens {
		if lower == strings.ToLower(tok) {
			return true
		}
	}
	return false
}
