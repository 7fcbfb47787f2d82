package dto

const (
	StateUp       = "up"
	StateDown     = "down"
	StateDisabled = "disabled"
)

type HealthReport struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Overview is the admin dashboard summary.
type Overview struct {
	TotalUsers    int64 `json:"totalUsers"`
	TotalStudents int64 `json:"totalStudents"`
	TotalTeachers int64 `json:"totalTeachers"`
	TotalReviews  int64 `json:"totalReviewAccounts"`
	Inactive      int64 `json:"inactiveUsers"`
}
