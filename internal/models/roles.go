package models

import "slices"

// Role is one of the closed set of account roles
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAnalyst Role = "analyst"
	RoleViewer  Role = "viewer"
)

// Permission names an action a role may be allowed to perform
type Permission string

const (
	PermViewDashboard   Permission = "view_dashboard"
	PermGenerateReports Permission = "generate_reports"
	PermManageUsers     Permission = "manage_users"
	PermEditReports     Permission = "edit_reports"
	PermDeleteReports   Permission = "delete_reports"
	PermResetPasswords  Permission = "reset_passwords"
	PermViewPredictions Permission = "view_predictions"
	PermSaveCSV         Permission = "save_csv"
	PermReviewReports   Permission = "review_reports"
)

// RoleInfo describes a role for display
type RoleInfo struct {
	ID          Role         `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
}

var roleTable = map[Role]RoleInfo{
	RoleAdmin: {
		ID:          RoleAdmin,
		Name:        "Admin",
		Description: "Full control over the system",
		Permissions: []Permission{
			PermViewDashboard, PermGenerateReports, PermManageUsers, PermEditReports,
			PermDeleteReports, PermResetPasswords, PermViewPredictions, PermSaveCSV,
			PermReviewReports,
		},
	},
	RoleAnalyst: {
		ID:          RoleAnalyst,
		Name:        "Analyst",
		Description: "Focused on fraud analysis and reporting",
		Permissions: []Permission{PermViewDashboard, PermGenerateReports, PermViewPredictions, PermSaveCSV},
	},
	RoleViewer: {
		ID:          RoleViewer,
		Name:        "Viewer",
		Description: "Read-only user, for awareness or external stakeholders",
		Permissions: []Permission{PermViewDashboard, PermViewPredictions},
	},
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	_, ok := roleTable[r]
	return ok
}

// Can reports whether the role grants the permission. Unknown roles grant nothing.
func (r Role) Can(p Permission) bool {
	info, ok := roleTable[r]
	if !ok {
		return false
	}
	return slices.Contains(info.Permissions, p)
}

// Roles returns every role in display order
func Roles() []RoleInfo {
	return []RoleInfo{roleTable[RoleAdmin], roleTable[RoleAnalyst], roleTable[RoleViewer]}
}
