// models/enums.go
package models

// Severity levels reported by vendor assessments.
const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
)

// Vendor-facing vulnerability statuses.
const (
	StatusNew        = "New"
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusFixed      = "Fixed"
	StatusReopened   = "Reopened"
	StatusClosed     = "Closed"
)

// Internal workflow statuses tracked outside the vendor-facing lifecycle.
var InternalStatusOptions = []string{
	"Stuck",
	"Fix in progress",
	"False positive",
	"Exemption requested",
}

// User roles.
const (
	RoleAdmin        = "Admin"
	RoleSecurity     = "Security"
	RoleDev          = "Dev"
	RoleProductOwner = "ProductOwner"
)

// Application platforms.
const (
	PlatformWeb     = "Web"
	PlatformIOS     = "iOS"
	PlatformAndroid = "Android"
)

func ValidSeverity(s string) bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleSecurity, RoleDev, RoleProductOwner:
		return true
	}
	return false
}
