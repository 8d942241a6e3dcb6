package contract

import (
	"fmt"

	"safeloan/internal/loan"
	"safeloan/internal/structuring"
)

// EventType classifies a contract update for the audit trail.
type EventType string

const (
	EventStable EventType = "Stable"
	EventRelief EventType = "Relief"
	EventStress EventType = "Stress"
	EventClosed EventType = "Closed"
)

// Terms are the installment and tenure in force before a decision.
type Terms struct {
	Installment float64     `json:"installment"`
	Tenure      loan.Tenure `json:"tenure"`
}

// Update is the borrower-facing explanation of a restructuring decision.
type Update struct {
	Message    string    `json:"message"`
	ContractID string    `json:"contract_id"`
	EventType  EventType `json:"event_type"`
	Previous   Terms     `json:"previous"`
}

// Compose explains the move from old terms to the decision's terms.
func Compose(old Terms, d structuring.Decision) Update {
	u := Update{Previous: old}

	switch {
	case d.Action == structuring.LoanPaidOff:
		u.Message = "Loan fully repaid. No further installments are due."
		u.ContractID = "CTR-CLOSED"
		u.EventType = EventClosed
	case d.Action == structuring.MaintainStandard:
		u.Message = "Income verified stable. Standard repayment schedule maintained."
		u.ContractID = "CTR-STD-KEEP"
		u.EventType = EventStable
	case d.Action.IsRelief():
		u.Message = fmt.Sprintf("Preventive Restructuring Triggered: installment reduced to %s to mitigate default risk.", formatAmount(d.NewInstallment))
		u.ContractID = "CTR-RELIEF-" + tenureCode(d.NewTenure)
		u.EventType = EventRelief
	default:
		u.Message = fmt.Sprintf("Repayment Calibration: installment adjusted to %s based on cashflow analysis.", formatAmount(d.NewInstallment))
		u.ContractID = "CTR-ADJ-" + tenureCode(d.NewTenure)
		u.EventType = EventStress
	}

	return u
}

func tenureCode(t loan.Tenure) string {
	if t.IsIndefinite() {
		return "IO"
	}
	return fmt.Sprintf("%d", int(t))
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
