// Package status holds the shared status string values used on users,
// organizations, engagements, and membership entries.
package status

const (
	Active   = "active"
	Inactive = "inactive"
	Pending  = "pending"
	Disabled = "disabled"
)

// IsValid reports whether s is a recognized status value.
func IsValid(s string) bool {
	switch s {
	case Active, Inactive, Pending, Disabled:
		return true
	}
	return false
}
