package model

// Role determines which parts of the service a profile may call.
type Role string

const (
	RoleCitizen    Role = "client"
	RoleAdmin      Role = "admin"
	RoleWorker     Role = "worker"
	RoleSuperAdmin Role = "super_admin"
)

// Profile is the authenticated account as returned by the service.
type Profile struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	District string `json:"district"`
	Pincode  string `json:"pincode"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Registration carries the fields of a new citizen account.
type Registration struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	District string `json:"district"`
	Pincode  string `json:"pincode"`
	Password string `json:"password"`
}

// PasswordChange carries a change-password request.
type PasswordChange struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// WorkerStats is a worker's own performance summary.
type WorkerStats struct {
	WorkerName     string   `json:"worker_name"`
	TasksCompleted int      `json:"tasks_completed"`
	AverageRating  *float64 `json:"average_rating,omitempty"`
}

// DistrictSummary is the resolved-issue headline for a scope (one district
// or the whole state).
type DistrictSummary struct {
	Scope          string `json:"scope"`
	TotalResolved  int    `json:"total_problems_resolved"`
	ResolvedLast30 int    `json:"problems_resolved_last_30_days"`
}

// DistrictDetail breaks a district's issues down by status and category.
type DistrictDetail struct {
	DistrictName    string         `json:"district_name"`
	TotalIssues     int            `json:"total_problems"`
	StatusBreakdown map[string]int `json:"status_breakdown"`
	TypeBreakdown   map[string]int `json:"type_breakdown"`
}
