package enums

import "fmt"

// TransactionStatus is the status recorded against the append-only
// payment-transaction log.
type TransactionStatus string

const (
	TransactionStatusAuthorized TransactionStatus = "AUTHORIZED"
	TransactionStatusDeclined   TransactionStatus = "DECLINED"
	TransactionStatusCompleted  TransactionStatus = "COMPLETED"
	TransactionStatusPending    TransactionStatus = "PENDING"
)

var validTransactionStatuses = []TransactionStatus{
	TransactionStatusAuthorized,
	TransactionStatusDeclined,
	TransactionStatusCompleted,
	TransactionStatusPending,
}

// String implements fmt.Stringer.
func (t TransactionStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionStatus.
func (t TransactionStatus) IsValid() bool {
	for _, candidate := range validTransactionStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransactionStatus converts raw input into a TransactionStatus.
func ParseTransactionStatus(value string) (TransactionStatus, error) {
	for _, candidate := range validTransactionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction status %q", value)
}
