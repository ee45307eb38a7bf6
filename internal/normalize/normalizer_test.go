package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"shiftlab/domain/study"
	"shiftlab/domain/table"
	"shiftlab/internal/errors"
)

func rawTable(headers []string, rows ...table.Row) *table.Table {
	t := table.New(headers...)
	for _, r := range rows {
		t.AppendRow(r)
	}
	return t
}

func TestNormalizeIdentifierFilter(t *testing.T) {
	schema := study.DefaultSchema()
	raw := rawTable(
		[]string{"participant_id_in_session", "Unnamed: 0"},
		table.Row{"participant_id_in_session": table.Number(1), "Unnamed: 0": table.String("Control")},
		table.Row{"participant_id_in_session": table.Missing(), "Unnamed: 0": table.String("annotation row")},
		table.Row{"participant_id_in_session": table.Number(2), "Unnamed: 0": table.String("Tratamiento")},
	)

	res, err := New(schema, nil).Normalize(raw)
	require.NoError(t, err)
	require.Equal(t, 3, res.RowsIn)
	require.Equal(t, 2, res.RowsKept)
	for i := 0; i < res.Table.Len(); i++ {
		require.False(t, res.Table.Cell(i, schema.IdentifierColumn).IsMissing,
			"every surviving row must carry an identifier")
	}
}

func TestNormalizeMissingIdentifierColumn(t *testing.T) {
	raw := rawTable([]string{"other"}, table.Row{"other": table.Number(1)})
	_, err := New(study.DefaultSchema(), nil).Normalize(raw)
	require.Error(t, err)
	require.Equal(t, errors.CodeMissingIdentifier, errors.GetCode(err))
}

func TestForwardFill(t *testing.T) {
	schema := study.DefaultSchema()
	// Merged-cell export: the label appears only on the first row of each block
	raw := rawTable(
		[]string{"participant_id_in_session", "Unnamed: 0"},
		table.Row{"participant_id_in_session": table.Number(1), "Unnamed: 0": table.String("Control")},
		table.Row{"participant_id_in_session": table.Number(2), "Unnamed: 0": table.Missing()},
		table.Row{"participant_id_in_session": table.Number(3), "Unnamed: 0": table.Missing()},
		table.Row{"participant_id_in_session": table.Number(4), "Unnamed: 0": table.String("Tratamiento")},
		table.Row{"participant_id_in_session": table.Number(5), "Unnamed: 0": table.Missing()},
	)

	res, err := New(schema, nil).Normalize(raw)
	require.NoError(t, err)

	want := []string{"Control", "Control", "Control", "Tratamiento", "Tratamiento"}
	for i, w := range want {
		got, ok := res.Table.Cell(i, study.ColGroupLabel).AsString()
		require.True(t, ok, "row %d must carry a label", i)
		require.Equal(t, w, got, "row %d", i)
	}
	require.Equal(t, 3, res.NControl)
	require.Equal(t, 2, res.NTreat)
	require.Equal(t, "Unnamed: 0", res.LabelSource)
}

func TestLeadingGapStaysMissing(t *testing.T) {
	raw := rawTable(
		[]string{"participant_id_in_session", "Unnamed: 0"},
		table.Row{"participant_id_in_session": table.Number(1), "Unnamed: 0": table.Missing()},
		table.Row{"participant_id_in_session": table.Number(2), "Unnamed: 0": table.String("Control")},
	)
	res, err := New(study.DefaultSchema(), nil).Normalize(raw)
	require.NoError(t, err)
	require.True(t, res.Table.Cell(0, study.ColGroupLabel).IsMissing,
		"rows before the first label have nothing to fill from")
	require.Equal(t, 1, res.NUnknown)
}

func TestTokenScanFallback(t *testing.T) {
	// No positional column: the first string column with a token value wins
	raw := rawTable(
		[]string{"participant_id_in_session", "comment", "grupo_asignado"},
		table.Row{
			"participant_id_in_session": table.Number(1),
			"comment":                   table.String("ok"),
			"grupo_asignado":            table.String("Grupo Control"),
		},
		table.Row{
			"participant_id_in_session": table.Number(2),
			"comment":                   table.String("ok"),
			"grupo_asignado":            table.String("Grupo Tratamiento"),
		},
	)
	res, err := New(study.DefaultSchema(), nil).Normalize(raw)
	require.NoError(t, err)
	require.Equal(t, "grupo_asignado", res.LabelSource)
	require.Equal(t, 1, res.NControl)
	require.Equal(t, 1, res.NTreat)
}

func TestNoClassifiedRows(t *testing.T) {
	raw := rawTable(
		[]string{"participant_id_in_session", "Unnamed: 0"},
		table.Row{"participant_id_in_session": table.Number(1), "Unnamed: 0": table.String("Sesion 1")},
	)
	_, err := New(study.DefaultSchema(), nil).Normalize(raw)
	require.Error(t, err)
	require.Equal(t, errors.CodeNoClassifiedRows, errors.GetCode(err))
}

func TestAmbiguousLabelUnknown(t *testing.T) {
	raw := rawTable(
		[]string{"participant_id_in_session", "Unnamed: 0"},
		table.Row{"participant_id_in_session": table.Number(1), "Unnamed: 0": table.String("Control")},
		table.Row{"participant_id_in_session": table.Number(2), "Unnamed: 0": table.String("Trat-Control mixta")},
	)
	res, err := New(study.DefaultSchema(), nil).Normalize(raw)
	require.NoError(t, err)
	require.True(t, res.Table.Cell(1, study.ColTreat).IsMissing)
	require.Equal(t, 1, res.NUnknown)
}

func TestDeriveControls(t *testing.T) {
	schema := study.DefaultSchema()
	raw := rawTable(
		[]string{"participant_id_in_session", "Unnamed: 0",
			"TESIS_TOTAL_C_1_player_edad", "TESIS_TOTAL_C_1_player_Sexo"},
		table.Row{
			"participant_id_in_session":   table.Number(1),
			"Unnamed: 0":                  table.String("Control"),
			"TESIS_TOTAL_C_1_player_edad": table.Number(23),
			"TESIS_TOTAL_C_1_player_Sexo": table.String("Female"),
		},
		table.Row{
			"participant_id_in_session":   table.Number(2),
			"Unnamed: 0":                  table.String("Tratamiento"),
			"TESIS_TOTAL_C_1_player_edad": table.String("not a number"),
			"TESIS_TOTAL_C_1_player_Sexo": table.String("Male"),
		},
	)

	res, err := New(schema, nil).Normalize(raw)
	require.NoError(t, err)

	require.Equal(t, 23.0, res.Table.Cell(0, study.ColEdad).Float())
	require.True(t, res.Table.Cell(1, study.ColEdad).IsMissing,
		"non-numeric age must coerce to missing")
	require.Equal(t, 1.0, res.Table.Cell(0, study.ColMujer).Float())
	require.Equal(t, 0.0, res.Table.Cell(1, study.ColMujer).Float())

	// Survey sources absent from this export: synthesized as missing
	require.True(t, res.Table.HasColumn(study.ColOptimismo))
	require.True(t, res.Table.Cell(0, study.ColOptimismo).IsMissing)
}

func TestPerformanceProxyAllOrNothing(t *testing.T) {
	schema := study.DefaultSchema()
	base := []string{"participant_id_in_session", "Unnamed: 0"}

	t.Run("all four present sums ignoring missing", func(t *testing.T) {
		headers := append(append([]string{}, base...), schema.GKIndicators...)
		row := table.Row{
			"participant_id_in_session": table.Number(1),
			"Unnamed: 0":                table.String("Control"),
		}
		for i, ind := range schema.GKIndicators {
			if i == 2 {
				row[ind] = table.Missing()
			} else {
				row[ind] = table.Number(1)
			}
		}
		res, err := New(schema, nil).Normalize(rawTable(headers, row))
		require.NoError(t, err)
		require.Equal(t, 3.0, res.Table.Cell(0, study.ColGKTotal).Float())
	})

	t.Run("one indicator column absent omits the metric", func(t *testing.T) {
		headers := append(append([]string{}, base...), schema.GKIndicators[:3]...)
		row := table.Row{
			"participant_id_in_session": table.Number(1),
			"Unnamed: 0":                table.String("Control"),
		}
		for _, ind := range schema.GKIndicators[:3] {
			row[ind] = table.Number(1)
		}
		res, err := New(schema, nil).Normalize(rawTable(headers, row))
		require.NoError(t, err)
		require.True(t, res.Table.HasColumn(study.ColGKTotal))
		require.True(t, res.Table.Cell(0, study.ColGKTotal).IsMissing)
	})
}
