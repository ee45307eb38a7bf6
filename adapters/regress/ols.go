package regress

import (
	"fmt"
	"math"

	"shiftlab/domain/study"
	"shiftlab/domain/table"
	"shiftlab/internal/errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// OLS estimates model specifications by ordinary least squares with HC1
// heteroskedasticity-robust standard errors. It implements ports.Estimator;
// rank deficiency or too few complete observations fail the individual
// specification only.
type OLS struct{}

// NewOLS creates the gonum-backed estimator
func NewOLS() *OLS {
	return &OLS{}
}

// Fit estimates one specification against the sample
func (o *OLS) Fit(sample *table.Table, spec study.ModelSpec) (*study.FittedModel, error) {
	x, y, names, err := design(sample, spec)
	if err != nil {
		return nil, errors.EstimationFailed(spec.Name, err)
	}

	beta, cov, resid, err := solveHC1(x, y)
	if err != nil {
		return nil, errors.EstimationFailed(spec.Name, err)
	}

	n, k := x.Dims()
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - k)}

	coefs := make([]study.Coefficient, k)
	for j := 0; j < k; j++ {
		se := math.Sqrt(cov.At(j, j))
		tv := beta.AtVec(j) / se
		coefs[j] = study.Coefficient{
			Term:     names[j],
			Estimate: beta.AtVec(j),
			StdErr:   se,
			TValue:   tv,
			PValue:   2 * tDist.Survival(math.Abs(tv)),
		}
	}

	return &study.FittedModel{
		Spec:         spec,
		Coefficients: coefs,
		NObs:         n,
		RSquared:     rSquared(y, resid),
	}, nil
}

// WaldEqual tests coefficient equality termA = termB on the fitted model's
// specification, two-sided, against the chi-squared distribution with one
// degree of freedom.
func (o *OLS) WaldEqual(sample *table.Table, model *study.FittedModel, termA, termB string) (*study.WaldResult, error) {
	x, y, names, err := design(sample, model.Spec)
	if err != nil {
		return nil, errors.EstimationFailed(model.Spec.Name, err)
	}
	beta, cov, _, err := solveHC1(x, y)
	if err != nil {
		return nil, errors.EstimationFailed(model.Spec.Name, err)
	}

	idxA, idxB := -1, -1
	for j, name := range names {
		if name == termA {
			idxA = j
		}
		if name == termB {
			idxB = j
		}
	}
	if idxA < 0 || idxB < 0 {
		return nil, errors.EstimationFailed(model.Spec.Name,
			fmt.Errorf("terms %q and %q not both present", termA, termB))
	}

	diff := beta.AtVec(idxA) - beta.AtVec(idxB)
	variance := cov.At(idxA, idxA) + cov.At(idxB, idxB) - 2*cov.At(idxA, idxB)
	if variance <= 0 {
		return nil, errors.EstimationFailed(model.Spec.Name, fmt.Errorf("degenerate restriction variance"))
	}

	chi2 := diff * diff / variance
	dist := distuv.ChiSquared{K: 1}
	return &study.WaldResult{
		Hypothesis: fmt.Sprintf("%s = %s", termA, termB),
		Chi2:       chi2,
		DF:         1,
		PValue:     dist.Survival(chi2),
	}, nil
}

// solveHC1 computes the OLS coefficients, the HC1 sandwich covariance, and
// the residual vector.
func solveHC1(x *mat.Dense, y *mat.VecDense) (beta *mat.VecDense, cov *mat.Dense, resid *mat.VecDense, err error) {
	n, k := x.Dims()

	var xtx mat.Dense
	xtx.Mul(x.T(), x)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, nil, nil, fmt.Errorf("design matrix is singular: %w", err)
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	beta = mat.NewVecDense(k, nil)
	beta.MulVec(&xtxInv, &xty)

	resid = mat.NewVecDense(n, nil)
	resid.MulVec(x, beta)
	resid.SubVec(y, resid)

	// Meat of the sandwich: X' diag(e^2) X, with the HC1 small-sample scale
	meat := mat.NewDense(k, k, nil)
	for i := 0; i < n; i++ {
		e2 := resid.AtVec(i) * resid.AtVec(i)
		for a := 0; a < k; a++ {
			for b := 0; b < k; b++ {
				meat.Set(a, b, meat.At(a, b)+e2*x.At(i, a)*x.At(i, b))
			}
		}
	}

	var bread mat.Dense
	bread.Mul(&xtxInv, meat)
	cov = mat.NewDense(k, k, nil)
	cov.Mul(&bread, &xtxInv)
	cov.Scale(float64(n)/float64(n-k), cov)

	return beta, cov, resid, nil
}

// rSquared computes the coefficient of determination from the residuals
func rSquared(y, resid *mat.VecDense) float64 {
	n := y.Len()
	mean := 0.0
	for i := 0; i < n; i++ {
		mean += y.AtVec(i)
	}
	mean /= float64(n)

	ssr, sst := 0.0, 0.0
	for i := 0; i < n; i++ {
		ssr += resid.AtVec(i) * resid.AtVec(i)
		d := y.AtVec(i) - mean
		sst += d * d
	}
	if sst == 0 {
		return 0
	}
	return 1 - ssr/sst
}
