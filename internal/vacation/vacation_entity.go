package vacation

import (
	"time"

	"github.com/Corose/dashboard/internal/employee"
)

// Vacation is one ledger entry. Dates are an inclusive range; a single-day
// request has fecha_inicio == fecha_fin and one requested day.
type Vacation struct {
	ID            uint      `gorm:"primaryKey"`
	EmployeeID    uint      `gorm:"not null;index"`
	StartDate     time.Time `gorm:"column:fecha_inicio;type:date;not null"`
	EndDate       time.Time `gorm:"column:fecha_fin;type:date;not null"`
	DaysRequested int       `gorm:"column:dias_solicitados;not null"`
	Status        string    `gorm:"column:estado;type:varchar(20);not null;default:'APPROVED'"`
	RegisteredBy  string    `gorm:"column:registrado_por;type:varchar(150);not null"`
	Year          int       `gorm:"column:anio;not null;index"`
	CreatedAt     time.Time

	Employee *employee.Employee `gorm:"foreignKey:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Vacation) TableName() string {
	return "vacations"
}
