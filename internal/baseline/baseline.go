package baseline

import (
	"math"

	"safeloan/internal/loan"
	"safeloan/internal/stats"
)

const (
	// PenaltyFlat is levied on every month the fixed installment is not covered.
	PenaltyFlat = 500.0
	// PenaltyShortfallRate is the share of the shortfall added to the flat penalty.
	PenaltyShortfallRate = 0.02
)

// State is the running position of the fixed-installment loan.
type State struct {
	Balance              float64 `json:"balance"`
	DistressAccumulated  float64 `json:"distress_accumulated"`
	PenaltiesAccumulated float64 `json:"penalties_accumulated"`
	ConsecutiveDefaults  int     `json:"consecutive_defaults"`
}

// Record is one month of the fixed-installment trajectory.
type Record struct {
	Month               int     `json:"month"`
	Income              float64 `json:"income"`
	Balance             float64 `json:"balance"`
	Distress            float64 `json:"distress"` // unpaid shortfall plus penalties to date
	Installment         float64 `json:"installment"`
	Shortfall           float64 `json:"shortfall,omitempty"`
	Penalty             float64 `json:"penalty,omitempty"`
	IsDefault           bool    `json:"is_default"`
	ConsecutiveDefaults int     `json:"consecutive_defaults"`
}

// Result is the full replay of an income history against a fixed installment.
type Result struct {
	Installment    float64  `json:"installment"`
	Trajectory     []Record `json:"trajectory"`
	MissedPayments int      `json:"missed_payments"`
	TotalPenalties float64  `json:"total_penalties"`
	Final          State    `json:"final"`
}

// FinalDistress returns the cumulative distress after the last replayed month.
func (r Result) FinalDistress() float64 {
	if len(r.Trajectory) == 0 {
		return 0
	}
	return r.Trajectory[len(r.Trajectory)-1].Distress
}

// Simulate replays incomes from month 1 against a traditional loan whose
// installment is fixed up front at the annuity amount.
//
// The balance follows the contractual schedule every month, including months
// where the installment was not covered; defaults are tracked as a separate
// cash-flow distress balance.
func Simulate(incomes []float64, principal float64, tenure int, annualRate float64) (Result, error) {
	if err := (loan.Terms{Principal: principal, TenureMonths: tenure}).Validate(); err != nil {
		return Result{}, err
	}
	if annualRate < 0 || math.IsNaN(annualRate) {
		return Result{}, loan.Invalidf("annual rate must be non-negative, got %v", annualRate)
	}
	for i, income := range incomes {
		if income < 0 || math.IsNaN(income) {
			return Result{}, loan.Invalidf("income for month %d must be non-negative, got %v", i+1, income)
		}
	}

	r := annualRate / 12
	installment := stats.AnnuityPayment(principal, r, tenure)

	res := Result{
		Installment: stats.RoundMoney(installment),
		Trajectory:  make([]Record, 0, len(incomes)),
	}
	st := State{Balance: principal}

	for i, income := range incomes {
		// 1. Amortize on schedule
		interest := st.Balance * r
		st.Balance = math.Max(0, st.Balance-(installment-interest))

		rec := Record{
			Month:       i + 1,
			Income:      income,
			Installment: res.Installment,
		}

		// 2. Cash-flow check
		if installment > income {
			shortfall := installment - income
			penalty := PenaltyFlat + shortfall*PenaltyShortfallRate

			st.DistressAccumulated += shortfall
			st.PenaltiesAccumulated += penalty
			st.ConsecutiveDefaults++
			res.MissedPayments++

			rec.IsDefault = true
			rec.Shortfall = stats.RoundMoney(shortfall)
			rec.Penalty = stats.RoundMoney(penalty)
		} else {
			surplus := income - installment
			st.DistressAccumulated = math.Max(0, st.DistressAccumulated-surplus)
			st.ConsecutiveDefaults = 0
		}

		rec.Balance = stats.RoundMoney(st.Balance)
		rec.Distress = stats.RoundMoney(st.DistressAccumulated + st.PenaltiesAccumulated)
		rec.ConsecutiveDefaults = st.ConsecutiveDefaults
		res.Trajectory = append(res.Trajectory, rec)
	}

	res.TotalPenalties = stats.RoundMoney(st.PenaltiesAccumulated)
	res.Final = State{
		Balance:              stats.RoundMoney(st.Balance),
		DistressAccumulated:  stats.RoundMoney(st.DistressAccumulated),
		PenaltiesAccumulated: res.TotalPenalties,
		ConsecutiveDefaults:  st.ConsecutiveDefaults,
	}
	return res, nil
}
