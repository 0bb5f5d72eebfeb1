package employee

type CreateEmployeeRequest struct {
	FullName   string   `json:"nombre" binding:"required,max=150"`
	Username   string   `json:"usuario" binding:"required,max=150"`
	Email      string   `json:"correo" binding:"required,email"`
	Team       string   `json:"equipo" binding:"required,max=100"`
	Manager    string   `json:"jefe"`
	AccessList []string `json:"accesos"`
	Comments   string   `json:"comentarios"`
}

type UpdateEmployeeRequest struct {
	FullName   string   `json:"nombre" binding:"required,max=150"`
	Username   string   `json:"usuario" binding:"required,max=150"`
	Email      string   `json:"correo" binding:"required,email"`
	Team       string   `json:"equipo" binding:"required,max=100"`
	Manager    string   `json:"jefe"`
	AccessList []string `json:"accesos"`
	Comments   string   `json:"comentarios"`
	Active     bool     `json:"activo"`
}

type EmployeeResponse struct {
	ID              uint     `json:"id"`
	FullName        string   `json:"nombre"`
	Username        string   `json:"usuario"`
	Email           string   `json:"correo"`
	Team            string   `json:"equipo"`
	Manager         string   `json:"jefe,omitempty"`
	AccessList      []string `json:"accesos"`
	Comments        string   `json:"comentarios,omitempty"`
	Active          bool     `json:"activo"`
	VacationBalance int      `json:"vacaciones_disponibles"`
	CreatedAt       string   `json:"created_at"`
}

type TeamCountResponse struct {
	Team  string `json:"equipo"`
	Count int64  `json:"cantidad"`
}

type StatsResponse struct {
	Total    int64               `json:"total"`
	Active   int64               `json:"activos"`
	Inactive int64               `json:"inactivos"`
	Teams    []TeamCountResponse `json:"equipos"`
}

type ImportResult struct {
	Imported int    `json:"imported"`
	Mode     string `json:"mode"`
}
