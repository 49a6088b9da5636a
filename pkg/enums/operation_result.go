package enums

import "fmt"

// OperationResult is the settled outcome of a tracked betting operation.
type OperationResult string

const (
	OperationResultPending OperationResult = "pending"
	OperationResultGreen   OperationResult = "green"
	OperationResultRed     OperationResult = "red"
	OperationResultVoid    OperationResult = "void"
)

var validOperationResults = []OperationResult{
	OperationResultPending,
	OperationResultGreen,
	OperationResultRed,
	OperationResultVoid,
}

// IsValid reports whether the value matches the canonical operation result enum.
func (r OperationResult) IsValid() bool {
	for _, candidate := range validOperationResults {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseOperationResult converts the raw string to OperationResult.
func ParseOperationResult(value string) (OperationResult, error) {
	for _, candidate := range validOperationResults {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid operation result %q", value)
}
