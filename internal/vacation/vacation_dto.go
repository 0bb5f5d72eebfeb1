package vacation

type RegisterVacationRequest struct {
	EmployeeID uint   `json:"employee_id" binding:"required"`
	StartDate  string `json:"fecha_inicio" binding:"required"`
	EndDate    string `json:"fecha_fin" binding:"required"`
}

type EditVacationRequest struct {
	StartDate string `json:"fecha_inicio" binding:"required"`
	EndDate   string `json:"fecha_fin" binding:"required"`
}

type VacationResponse struct {
	ID            uint   `json:"id"`
	EmployeeID    uint   `json:"employee_id"`
	EmployeeName  string `json:"employee_name,omitempty"`
	StartDate     string `json:"fecha_inicio"`
	EndDate       string `json:"fecha_fin"`
	DaysRequested int    `json:"dias_solicitados"`
	Status        string `json:"estado"`
	RegisteredBy  string `json:"registrado_por"`
	Year          int    `json:"anio"`
}

type ActiveVacationResponse struct {
	VacationResponse
	DaysRemaining int `json:"days_remaining"`
}

type UpcomingVacationResponse struct {
	VacationResponse
	DaysUntilStart int `json:"days_until_start"`
}

// OverviewResponse buckets every approved request relative to "today".
// The three buckets are disjoint and cover the whole approved ledger.
type OverviewResponse struct {
	Active            []ActiveVacationResponse   `json:"active"`
	Upcoming          []UpcomingVacationResponse `json:"upcoming"`
	Finished          []VacationResponse         `json:"finished"`
	TotalDaysThisYear int                        `json:"total_days_this_year"`
}
