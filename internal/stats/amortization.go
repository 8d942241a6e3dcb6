package stats

import "math"

// AnnuityPayment returns the level installment that repays principal p over
// n periods at periodic rate r: P·r·(1+r)^n / ((1+r)^n − 1). With r == 0 it
// degrades to P/n. Non-positive n yields 0.
func AnnuityPayment(p, r float64, n int) float64 {
	if n <= 0 || p <= 0 {
		return 0
	}
	if r == 0 {
		return p / float64(n)
	}
	growth := math.Pow(1+r, float64(n))
	return p * r * growth / (growth - 1)
}

// SolveTenure returns the number of periods needed to repay principal p at
// periodic rate r with a fixed installment emi, rounded up.
// ok is false when the installment never amortizes the principal (emi at or
// below the interest-only payment) or the logarithm is undefined.
func SolveTenure(p, r, emi float64) (months int, ok bool) {
	if p <= 0 {
		return 0, true
	}
	if emi <= 0 || emi <= p*r {
		return 0, false
	}
	if r == 0 {
		return int(math.Ceil(p / emi)), true
	}

	n := -math.Log(1-(r*p)/emi) / math.Log(1+r)
	if math.IsNaN(n) || math.IsInf(n, 0) || n > math.MaxInt32 {
		return 0, false
	}
	return int(math.Ceil(n)), true
}

// InterestDue is the interest accrued on principal p over one period.
func InterestDue(p, r float64) float64 {
	return p * r
}
