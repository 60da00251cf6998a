package repository

import (
	"context"

	"gorm.io/gorm"
)

// Set bundles the repositories that participate in a unit of work. Inside a
// transaction every repository in the set is bound to the same tx handle.
type Set struct {
	Cylinders   CylinderRepository
	GasTypes    GasTypeRepository
	Assignments AssignmentRepository
	Supplies    SupplyRepository
	Invoices    InvoiceRepository
	History     HistoryRepository
}

// Manager provides access to the repositories and to database transactions.
type Manager interface {
	Repos() Set
	Transaction(ctx context.Context, fn func(Set) error) error
}

type gormManager struct {
	db    *gorm.DB
	repos Set
}

// NewManager creates a repository manager backed by a gorm connection.
func NewManager(db *gorm.DB) Manager {
	return &gormManager{
		db:    db,
		repos: newSet(db),
	}
}

func newSet(db *gorm.DB) Set {
	return Set{
		Cylinders:   NewCylinderRepository(db),
		GasTypes:    NewGasTypeRepository(db),
		Assignments: NewAssignmentRepository(db),
		Supplies:    NewSupplyRepository(db),
		Invoices:    NewInvoiceRepository(db),
		History:     NewHistoryRepository(db),
	}
}

func (m *gormManager) Repos() Set {
	return m.repos
}

// Transaction runs fn inside a database transaction. Any error returned by
// fn rolls the whole unit of work back.
func (m *gormManager) Transaction(ctx context.Context, fn func(Set) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newSet(tx))
	})
}
