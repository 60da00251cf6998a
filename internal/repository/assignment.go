package repository

import (
	"context"

	"gorm.io/gorm"

	"example.com/backstage/services/cylinder/internal/db"
	"example.com/backstage/services/cylinder/internal/models"
)

// AssignmentRepository defines the interface for vehicle and cylinder
// assignment persistence
type AssignmentRepository interface {
	CreateVehicleAssignment(ctx context.Context, assignment *models.VehicleAssignment) error
	CreateCylinderAssignment(ctx context.Context, assignment *models.CylinderAssignment) error
	GetVehicleAssignment(ctx context.Context, id uint) (*models.VehicleAssignment, error)
	ListVehicleAssignments(ctx context.Context) ([]models.VehicleAssignment, error)
	// ActiveAssignmentForCylinder returns the cylinder assignment belonging
	// to an active vehicle assignment that has not yet been returned.
	ActiveAssignmentForCylinder(ctx context.Context, cylinderID uint) (*models.CylinderAssignment, error)
	GetCylinderAssignment(ctx context.Context, vehicleAssignmentID, cylinderID uint) (*models.CylinderAssignment, error)
	UpdateCylinderAssignment(ctx context.Context, assignment *models.CylinderAssignment) error
	// DeactivateVehicleAssignmentIfComplete clears the active flag once
	// every cylinder on the assignment has been returned.
	DeactivateVehicleAssignmentIfComplete(ctx context.Context, vehicleAssignmentID uint) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(gdb *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: gdb}
}

func (r *assignmentRepository) CreateVehicleAssignment(ctx context.Context, assignment *models.VehicleAssignment) error {
	return r.db.WithContext(ctx).Omit("Cylinders").Create(assignment).Error
}

func (r *assignmentRepository) CreateCylinderAssignment(ctx context.Context, assignment *models.CylinderAssignment) error {
	return r.db.WithContext(ctx).Omit("Cylinder").Create(assignment).Error
}

func (r *assignmentRepository) GetVehicleAssignment(ctx context.Context, id uint) (*models.VehicleAssignment, error) {
	var assignment models.VehicleAssignment
	err := r.db.WithContext(ctx).
		Preload("Cylinders").
		Preload("Cylinders.Cylinder").
		First(&assignment, id).Error
	if err != nil {
		if db.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) ListVehicleAssignments(ctx context.Context) ([]models.VehicleAssignment, error) {
	var assignments []models.VehicleAssignment
	err := r.db.WithContext(ctx).
		Preload("Cylinders").
		Order("assigned_at DESC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) ActiveAssignmentForCylinder(ctx context.Context, cylinderID uint) (*models.CylinderAssignment, error) {
	var assignment models.CylinderAssignment
	err := r.db.WithContext(ctx).
		Joins("JOIN vehicle_assignments ON vehicle_assignments.id = cylinder_assignments.vehicle_assignment_id").
		Where("cylinder_assignments.cylinder_id = ?", cylinderID).
		Where("cylinder_assignments.is_returned = ?", false).
		Where("vehicle_assignments.is_active = ?", true).
		Order("cylinder_assignments.created_at DESC").
		First(&assignment).Error
	if err != nil {
		if db.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) GetCylinderAssignment(ctx context.Context, vehicleAssignmentID, cylinderID uint) (*models.CylinderAssignment, error) {
	var assignment models.CylinderAssignment
	err := r.db.WithContext(ctx).
		Where("vehicle_assignment_id = ? AND cylinder_id = ?", vehicleAssignmentID, cylinderID).
		First(&assignment).Error
	if err != nil {
		if db.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) UpdateCylinderAssignment(ctx context.Context, assignment *models.CylinderAssignment) error {
	return r.db.WithContext(ctx).Omit("Cylinder").Save(assignment).Error
}

func (r *assignmentRepository) DeactivateVehicleAssignmentIfComplete(ctx context.Context, vehicleAssignmentID uint) error {
	var outstanding int64
	err := r.db.WithContext(ctx).
		Model(&models.CylinderAssignment{}).
		Where("vehicle_assignment_id = ? AND is_returned = ?", vehicleAssignmentID, false).
		Count(&outstanding).Error
	if err != nil {
		return err
	}
	if outstanding > 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Model(&models.VehicleAssignment{}).
		Where("id = ?", vehicleAssignmentID).
		Update("is_active", false).Error
}
