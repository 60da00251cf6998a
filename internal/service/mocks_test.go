package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"example.com/backstage/services/cylinder/internal/history"
	"example.com/backstage/services/cylinder/internal/lifecycle"
	"example.com/backstage/services/cylinder/internal/models"
	"example.com/backstage/services/cylinder/internal/repository"
)

// stubManager binds every repository to the same set of mocks and runs
// transactions by simply invoking the callback, so mock expectations observe
// exactly what the transaction would do.
type stubManager struct {
	set repository.Set
}

func (m *stubManager) Repos() repository.Set {
	return m.set
}

func (m *stubManager) Transaction(ctx context.Context, fn func(repository.Set) error) error {
	return fn(m.set)
}

type testMocks struct {
	cylinders   *mockCylinderRepo
	gasTypes    *mockGasTypeRepo
	assignments *mockAssignmentRepo
	supplies    *mockSupplyRepo
	invoices    *mockInvoiceRepo
	history     *mockHistoryRepo
}

func newTestMocks() (*stubManager, *testMocks) {
	mocks := &testMocks{
		cylinders:   new(mockCylinderRepo),
		gasTypes:    new(mockGasTypeRepo),
		assignments: new(mockAssignmentRepo),
		supplies:    new(mockSupplyRepo),
		invoices:    new(mockInvoiceRepo),
		history:     new(mockHistoryRepo),
	}
	manager := &stubManager{set: repository.Set{
		Cylinders:   mocks.cylinders,
		GasTypes:    mocks.gasTypes,
		Assignments: mocks.assignments,
		Supplies:    mocks.supplies,
		Invoices:    mocks.invoices,
		History:     mocks.history,
	}}
	return manager, mocks
}

// newTestLogger returns a history logger whose writes all no-op: the history
// table is reported absent and there is no indexer or publisher.
func newTestLogger() *history.Logger {
	return history.NewLogger(new(mockHistoryRepo), nil, nil, history.Capability{TableAvailable: false})
}

// Mock CylinderRepository

type mockCylinderRepo struct {
	mock.Mock
}

func (m *mockCylinderRepo) Create(ctx context.Context, cylinder *models.Cylinder) error {
	args := m.Called(ctx, cylinder)
	return args.Error(0)
}

func (m *mockCylinderRepo) GetByID(ctx context.Context, id uint) (*models.Cylinder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cylinder), args.Error(1)
}

func (m *mockCylinderRepo) GetByCode(ctx context.Context, code string) (*models.Cylinder, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cylinder), args.Error(1)
}

func (m *mockCylinderRepo) LockByID(ctx context.Context, id uint) (*models.Cylinder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cylinder), args.Error(1)
}

func (m *mockCylinderRepo) List(ctx context.Context, filter repository.CylinderFilter) ([]models.Cylinder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Cylinder), args.Error(1)
}

func (m *mockCylinderRepo) Update(ctx context.Context, cylinder *models.Cylinder) error {
	args := m.Called(ctx, cylinder)
	return args.Error(0)
}

func (m *mockCylinderRepo) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCylinderRepo) CountByStatus(ctx context.Context) (map[lifecycle.Status]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[lifecycle.Status]int64), args.Error(1)
}

func (m *mockCylinderRepo) ReferencedBySupply(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// Mock GasTypeRepository

type mockGasTypeRepo struct {
	mock.Mock
}

func (m *mockGasTypeRepo) Create(ctx context.Context, gasType *models.GasType) error {
	args := m.Called(ctx, gasType)
	return args.Error(0)
}

func (m *mockGasTypeRepo) GetByID(ctx context.Context, id uint) (*models.GasType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GasType), args.Error(1)
}

func (m *mockGasTypeRepo) List(ctx context.Context) ([]models.GasType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GasType), args.Error(1)
}

func (m *mockGasTypeRepo) Update(ctx context.Context, gasType *models.GasType) error {
	args := m.Called(ctx, gasType)
	return args.Error(0)
}

func (m *mockGasTypeRepo) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockGasTypeRepo) InUse(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// Mock AssignmentRepository

type mockAssignmentRepo struct {
	mock.Mock
}

func (m *mockAssignmentRepo) CreateVehicleAssignment(ctx context.Context, assignment *models.VehicleAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *mockAssignmentRepo) CreateCylinderAssignment(ctx context.Context, assignment *models.CylinderAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *mockAssignmentRepo) GetVehicleAssignment(ctx context.Context, id uint) (*models.VehicleAssignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VehicleAssignment), args.Error(1)
}

func (m *mockAssignmentRepo) ListVehicleAssignments(ctx context.Context) ([]models.VehicleAssignment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VehicleAssignment), args.Error(1)
}

func (m *mockAssignmentRepo) ActiveAssignmentForCylinder(ctx context.Context, cylinderID uint) (*models.CylinderAssignment, error) {
	args := m.Called(ctx, cylinderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CylinderAssignment), args.Error(1)
}

func (m *mockAssignmentRepo) GetCylinderAssignment(ctx context.Context, vehicleAssignmentID, cylinderID uint) (*models.CylinderAssignment, error) {
	args := m.Called(ctx, vehicleAssignmentID, cylinderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CylinderAssignment), args.Error(1)
}

func (m *mockAssignmentRepo) UpdateCylinderAssignment(ctx context.Context, assignment *models.CylinderAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *mockAssignmentRepo) DeactivateVehicleAssignmentIfComplete(ctx context.Context, vehicleAssignmentID uint) error {
	args := m.Called(ctx, vehicleAssignmentID)
	return args.Error(0)
}

// Mock SupplyRepository

type mockSupplyRepo struct {
	mock.Mock
}

func (m *mockSupplyRepo) Create(ctx context.Context, supply *models.Supply) error {
	args := m.Called(ctx, supply)
	return args.Error(0)
}

func (m *mockSupplyRepo) CreateDetail(ctx context.Context, detail *models.SupplyDetail) error {
	args := m.Called(ctx, detail)
	return args.Error(0)
}

func (m *mockSupplyRepo) GetByID(ctx context.Context, id uint) (*models.Supply, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supply), args.Error(1)
}

func (m *mockSupplyRepo) ListBetween(ctx context.Context, start, end time.Time) ([]models.Supply, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Supply), args.Error(1)
}

func (m *mockSupplyRepo) RevenueBetween(ctx context.Context, start, end time.Time) (float64, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockSupplyRepo) RevenueByHospitalBetween(ctx context.Context, start, end time.Time) ([]repository.HospitalRevenue, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.HospitalRevenue), args.Error(1)
}

// Mock InvoiceRepository

type mockInvoiceRepo struct {
	mock.Mock
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id uint) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) GetBySupplyID(ctx context.Context, supplyID uint) (*models.Invoice, error) {
	args := m.Called(ctx, supplyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) List(ctx context.Context) ([]models.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) UpdateStatus(ctx context.Context, id uint, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// Mock HistoryRepository

type mockHistoryRepo struct {
	mock.Mock
}

func (m *mockHistoryRepo) Append(ctx context.Context, entry *models.CylinderStatusHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockHistoryRepo) TableExists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockHistoryRepo) CountTransitionsBetween(ctx context.Context, start, end time.Time) (map[lifecycle.Status]int64, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[lifecycle.Status]int64), args.Error(1)
}

func (m *mockHistoryRepo) ListForCylinder(ctx context.Context, cylinderID uint) ([]models.CylinderStatusHistory, error) {
	args := m.Called(ctx, cylinderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CylinderStatusHistory), args.Error(1)
}

func (m *mockHistoryRepo) ListUnindexed(ctx context.Context, limit int) ([]models.CylinderStatusHistory, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CylinderStatusHistory), args.Error(1)
}

func (m *mockHistoryRepo) MarkIndexed(ctx context.Context, ids []uint) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}
