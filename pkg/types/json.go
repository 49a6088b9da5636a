package types

// StringList is a JSON-serialized list column (coupon restrictions, tags).
type StringList []string

// Contains reports whether value is present in the list.
func (l StringList) Contains(value string) bool {
	for _, candidate := range l {
		if candidate == value {
			return true
		}
	}
	return false
}

// JSONMap is a free-form JSON object column.
type JSONMap map[string]any
