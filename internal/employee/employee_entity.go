package employee

import "time"

// Employee keeps the legacy Spanish column names so the table stays
// compatible with the data already in production.
type Employee struct {
	ID              uint   `gorm:"primaryKey"`
	FullName        string `gorm:"column:nombre;type:varchar(150);not null"`
	Username        string `gorm:"column:usuario;type:varchar(150);not null"`
	Email           string `gorm:"column:correo;type:varchar(150);not null"`
	Team            string `gorm:"column:equipo;type:varchar(100);not null;index"`
	Manager         string `gorm:"column:jefe;type:varchar(150)"`
	AccessList      string `gorm:"column:accesos;type:varchar(500)"` // comma-joined grants
	Comments        string `gorm:"column:comentarios;type:text"`
	Active          bool   `gorm:"column:activo;not null;default:true"`
	VacationBalance int    `gorm:"column:vacaciones_disponibles;not null;default:12"`
	CreatedAt       time.Time
}

func (Employee) TableName() string {
	return "employees"
}
