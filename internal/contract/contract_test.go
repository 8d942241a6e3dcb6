package contract

import (
	"strings"
	"testing"

	"safeloan/internal/loan"
	"safeloan/internal/structuring"
)

func TestCompose(t *testing.T) {
	old := Terms{Installment: 15000, Tenure: 30}

	tests := []struct {
		name      string
		decision  structuring.Decision
		wantID    string
		wantEvent EventType
		wantText  string
	}{
		{"Maintain", structuring.Decision{NewInstallment: 8884.88, NewTenure: 12, Action: structuring.MaintainStandard}, "CTR-STD-KEEP", EventStable, "Standard repayment schedule maintained"},
		{"Extend", structuring.Decision{NewInstallment: 13505.95, NewTenure: 36, Action: structuring.ExtendTenureRelief}, "CTR-RELIEF-36", EventRelief, "13505.95"},
		{"Safeguard", structuring.Decision{NewInstallment: 4000, NewTenure: 30, Action: structuring.SafeguardInterestOnly}, "CTR-RELIEF-30", EventRelief, "4000.00"},
		{"InterestOnly", structuring.Decision{NewInstallment: 4000, NewTenure: loan.Indefinite, Action: structuring.InterestOnlyRelief}, "CTR-RELIEF-IO", EventRelief, "mitigate default risk"},
		{"Adjust", structuring.Decision{NewInstallment: 8000, NewTenure: 14, Action: structuring.AdjustTenureMinor}, "CTR-ADJ-14", EventStress, "Repayment Calibration"},
		{"PaidOff", structuring.Decision{Action: structuring.LoanPaidOff}, "CTR-CLOSED", EventClosed, "fully repaid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(old, tt.decision)
			if got.ContractID != tt.wantID {
				t.Errorf("Expected contract ID %s, got %s", tt.wantID, got.ContractID)
			}
			if got.EventType != tt.wantEvent {
				t.Errorf("Expected event %s, got %s", tt.wantEvent, got.EventType)
			}
			if !strings.Contains(got.Message, tt.wantText) {
				t.Errorf("Expected message to contain %q, got %q", tt.wantText, got.Message)
			}
			if got.Previous != old {
				t.Errorf("Expected previous terms to be carried, got %+v", got.Previous)
			}
		})
	}
}
