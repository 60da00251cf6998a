package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"example.com/backstage/services/cylinder/internal/lifecycle"
)

// GasType represents a gas product with a per-liter price
type GasType struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"uniqueIndex;not null" json:"name"`
	PricePerLiter float64        `gorm:"not null" json:"price_per_liter"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// Cylinder represents a physical gas cylinder in the database
type Cylinder struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	Code             string           `gorm:"uniqueIndex;not null" json:"code"`
	Size             lifecycle.Size   `gorm:"not null" json:"size"`
	GasTypeID        *uint            `gorm:"index" json:"gas_type_id"`
	GasType          *GasType         `gorm:"foreignKey:GasTypeID" json:"gas_type,omitempty"`
	Status           lifecycle.Status `gorm:"index;not null" json:"status"`
	FillingStartTime *time.Time       `json:"filling_start_time"`
	FillingEndTime   *time.Time       `json:"filling_end_time"`
	IsActive         bool             `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`
}

// VehicleAssignment represents one dispatch event pairing a vehicle and
// driver with a batch of cylinders
type VehicleAssignment struct {
	ID           uint                 `gorm:"primaryKey" json:"id"`
	ReferenceID  uuid.UUID            `gorm:"type:uuid;uniqueIndex" json:"reference_id"`
	VehiclePlate string               `gorm:"not null;index" json:"vehicle_plate"`
	DriverName   string               `gorm:"not null" json:"driver_name"`
	AssignedAt   time.Time            `gorm:"index" json:"assigned_at"`
	IsActive     bool                 `gorm:"not null;default:true" json:"is_active"`
	Cylinders    []CylinderAssignment `gorm:"foreignKey:VehicleAssignmentID" json:"cylinders,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	DeletedAt    gorm.DeletedAt       `gorm:"index" json:"-"`
}

// CylinderAssignment links a vehicle assignment to a cylinder
type CylinderAssignment struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	VehicleAssignmentID uint           `gorm:"index;not null" json:"vehicle_assignment_id"`
	CylinderID          uint           `gorm:"index;not null" json:"cylinder_id"`
	IsDelivered         bool           `gorm:"not null;default:false" json:"is_delivered"`
	IsReturned          bool           `gorm:"not null;default:false" json:"is_returned"`
	Cylinder            Cylinder       `gorm:"foreignKey:CylinderID" json:"-"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

// CylinderStatusHistory is the append-only audit log of status transitions.
// Indexed marks whether the row has been mirrored to the search index; the
// worker backfills rows where it is still false.
type CylinderStatusHistory struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	CylinderID     uint             `gorm:"index;not null" json:"cylinder_id"`
	PreviousStatus lifecycle.Status `json:"previous_status"`
	NewStatus      lifecycle.Status `gorm:"index" json:"new_status"`
	Source         string           `json:"source"`
	ChangedAt      time.Time        `gorm:"index" json:"changed_at"`
	Indexed        bool             `gorm:"index;not null;default:false" json:"-"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Supply represents a recorded hospital delivery
type Supply struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Date                 time.Time      `gorm:"index;not null" json:"date"`
	HospitalName         string         `gorm:"index;not null" json:"hospital_name"`
	VehiclePlate         string         `json:"vehicle_plate"`
	DriverName           string         `json:"driver_name"`
	StorekeeperName      string         `json:"storekeeper_name"`
	TechnicianName       string         `json:"technician_name"`
	RecipientName        string         `json:"recipient_name"`
	StorekeeperSignature string         `json:"storekeeper_signature"`
	RecipientSignature   string         `json:"recipient_signature"`
	TotalPrice           float64        `gorm:"not null" json:"total_price"`
	Details              []SupplyDetail `gorm:"foreignKey:SupplyID" json:"details,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// SupplyDetail is one cylinder's contribution to a supply
type SupplyDetail struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SupplyID     uint           `gorm:"index;not null" json:"supply_id"`
	CylinderCode string         `gorm:"index;not null" json:"cylinder_code"`
	GasTypeID    uint           `gorm:"not null" json:"gas_type_id"`
	Liters       float64        `gorm:"not null" json:"liters"`
	Price        float64        `gorm:"not null" json:"price"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Invoice statuses
const (
	InvoiceStatusUnpaid = "unpaid"
	InvoiceStatusPaid   = "paid"
)

// Invoice is the bill raised for a supply. At most one exists per supply,
// backed by the unique index on SupplyID.
type Invoice struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	SupplyID  uint           `gorm:"uniqueIndex;not null" json:"supply_id"`
	Amount    float64        `gorm:"not null" json:"amount"`
	Status    string         `gorm:"not null" json:"status"`
	Date      time.Time      `gorm:"index" json:"date"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// User represents an operator account. Authentication is handled by an
// external collaborator; only the schema is owned here.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         string         `json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// All returns the full set of models for migration, in dependency order.
func All() []interface{} {
	return []interface{}{
		&GasType{},
		&Cylinder{},
		&VehicleAssignment{},
		&CylinderAssignment{},
		&CylinderStatusHistory{},
		&Supply{},
		&SupplyDetail{},
		&Invoice{},
		&User{},
	}
}
