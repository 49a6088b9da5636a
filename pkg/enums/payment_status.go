package enums

import "fmt"

// PaymentStatus mirrors the PIX provider transaction state.
type PaymentStatus string

const (
	PaymentStatusPendente PaymentStatus = "PENDENTE"
	PaymentStatusCompleto PaymentStatus = "COMPLETO"
	PaymentStatusFalha    PaymentStatus = "FALHA"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPendente,
	PaymentStatusCompleto,
	PaymentStatusFalha,
}

// IsValid reports whether the value matches the canonical payment status enum.
func (s PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the provider will not change this state again.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleto || s == PaymentStatusFalha
}

// ParsePaymentStatus converts the raw provider string to PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
