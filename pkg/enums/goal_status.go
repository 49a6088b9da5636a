package enums

import "fmt"

// GoalStatus tracks progress on a savings/profit goal.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusReached   GoalStatus = "reached"
	GoalStatusAbandoned GoalStatus = "abandoned"
)

var validGoalStatuses = []GoalStatus{
	GoalStatusActive,
	GoalStatusReached,
	GoalStatusAbandoned,
}

// IsValid reports whether the value matches the canonical goal status enum.
func (s GoalStatus) IsValid() bool {
	for _, candidate := range validGoalStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseGoalStatus converts the raw string to GoalStatus.
func ParseGoalStatus(value string) (GoalStatus, error) {
	for _, candidate := range validGoalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid goal status %q", value)
}
