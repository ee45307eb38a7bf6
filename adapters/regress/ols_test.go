package regress

import (
	"testing"

	"github.com/stretchr/testify/require"

	"shiftlab/domain/study"
	"shiftlab/domain/table"
	"shiftlab/internal/errors"
)

// noisyLine builds y = 1 + 2x + e with a mean-zero alternating disturbance,
// small enough that the coefficients recover within a tight tolerance.
func noisyLine(n int) *table.Table {
	t := table.New("y", "x", "z")
	for i := 0; i < n; i++ {
		x := float64(i)
		eps := 0.1
		if i%2 == 1 {
			eps = -0.1
		}
		t.AppendRow(table.Row{
			"y": table.Number(1 + 2*x + eps),
			"x": table.Number(x),
			"z": table.Number(float64(i % 3)),
		})
	}
	return t
}

func TestFitRecoversCoefficients(t *testing.T) {
	sample := noisyLine(20)
	spec := study.ModelSpec{
		Name:      "line",
		Dependent: "y",
		Terms:     []study.Term{{Variable: "x"}},
	}

	fit, err := NewOLS().Fit(sample, spec)
	require.NoError(t, err)
	require.Equal(t, 20, fit.NObs)
	require.Greater(t, fit.RSquared, 0.99)

	intercept, ok := fit.Coefficient("const")
	require.True(t, ok)
	require.InDelta(t, 1.0, intercept.Estimate, 0.1)

	slope, ok := fit.Coefficient("x")
	require.True(t, ok)
	require.InDelta(t, 2.0, slope.Estimate, 0.02)
	require.Greater(t, slope.StdErr, 0.0)
	require.Less(t, slope.PValue, 0.001)
	require.Equal(t, "***", slope.Stars())
}

func TestFitListwiseDeletion(t *testing.T) {
	sample := noisyLine(20)
	// Knock out x on three rows: those observations must drop, not zero-fill
	for _, i := range []int{2, 7, 11} {
		sample.Rows[i]["x"] = table.Missing()
	}
	spec := study.ModelSpec{Name: "line", Dependent: "y", Terms: []study.Term{{Variable: "x"}}}

	fit, err := NewOLS().Fit(sample, spec)
	require.NoError(t, err)
	require.Equal(t, 17, fit.NObs)

	slope, _ := fit.Coefficient("x")
	require.InDelta(t, 2.0, slope.Estimate, 0.05)
}

func TestFitTooFewObservations(t *testing.T) {
	sample := noisyLine(2)
	spec := study.ModelSpec{Name: "line", Dependent: "y", Terms: []study.Term{{Variable: "x"}}}
	_, err := NewOLS().Fit(sample, spec)
	require.Error(t, err)
	require.Equal(t, errors.CodeEstimationFailed, errors.GetCode(err))
}

func TestFitSingularDesign(t *testing.T) {
	sample := table.New("y", "x", "x2")
	for i := 0; i < 10; i++ {
		x := float64(i)
		sample.AppendRow(table.Row{
			"y":  table.Number(x + 1),
			"x":  table.Number(x),
			"x2": table.Number(2 * x), // perfectly collinear
		})
	}
	spec := study.ModelSpec{
		Name:      "collinear",
		Dependent: "y",
		Terms:     []study.Term{{Variable: "x"}, {Variable: "x2"}},
	}
	_, err := NewOLS().Fit(sample, spec)
	require.Error(t, err)
	require.Equal(t, errors.CodeEstimationFailed, errors.GetCode(err))
}

func TestInteractionTerm(t *testing.T) {
	// y = 3 * (treat*x) exactly identifies the interaction coefficient
	sample := table.New("y", "treat", "x")
	for i := 0; i < 16; i++ {
		treat := float64(i % 2)
		x := float64(i)
		eps := 0.05
		if i%4 >= 2 {
			eps = -0.05
		}
		sample.AppendRow(table.Row{
			"y":     table.Number(3*treat*x + eps),
			"treat": table.Number(treat),
			"x":     table.Number(x),
		})
	}
	spec := study.ModelSpec{
		Name:      "interaction",
		Dependent: "y",
		Terms: []study.Term{
			{Variable: "treat"},
			{Variable: "x"},
			{Variable: "x", InteractWith: "treat"},
		},
	}

	fit, err := NewOLS().Fit(sample, spec)
	require.NoError(t, err)
	inter, ok := fit.Coefficient("treat:x")
	require.True(t, ok)
	require.InDelta(t, 3.0, inter.Estimate, 0.1)
}

func TestWaldEqual(t *testing.T) {
	build := func(b1, b2 float64) *table.Table {
		sample := table.New("y", "u", "v")
		for i := 0; i < 40; i++ {
			u := float64(i % 5)
			v := float64((i / 5) % 4)
			eps := 0.1
			if i%2 == 1 {
				eps = -0.1
			}
			sample.AppendRow(table.Row{
				"y": table.Number(b1*u + b2*v + eps),
				"u": table.Number(u),
				"v": table.Number(v),
			})
		}
		return sample
	}
	spec := study.ModelSpec{
		Name:      "pair",
		Dependent: "y",
		Terms:     []study.Term{{Variable: "u"}, {Variable: "v"}},
	}
	ols := NewOLS()

	t.Run("equal coefficients accept", func(t *testing.T) {
		sample := build(2, 2)
		fit, err := ols.Fit(sample, spec)
		require.NoError(t, err)
		res, err := ols.WaldEqual(sample, fit, "u", "v")
		require.NoError(t, err)
		require.Equal(t, 1, res.DF)
		require.Equal(t, "u = v", res.Hypothesis)
		require.Greater(t, res.PValue, 0.05)
	})

	t.Run("unequal coefficients reject", func(t *testing.T) {
		sample := build(2, -2)
		fit, err := ols.Fit(sample, spec)
		require.NoError(t, err)
		res, err := ols.WaldEqual(sample, fit, "u", "v")
		require.NoError(t, err)
		require.Less(t, res.PValue, 0.001)
	})

	t.Run("unknown term fails", func(t *testing.T) {
		sample := build(2, 2)
		fit, err := ols.Fit(sample, spec)
		require.NoError(t, err)
		_, err = ols.WaldEqual(sample, fit, "u", "nope")
		require.Error(t, err)
		require.Equal(t, errors.CodeEstimationFailed, errors.GetCode(err))
	})
}
