package common

// BoolPtr returns a pointer to a bool value
func BoolPtr(b bool) *bool {
	return &b
}
