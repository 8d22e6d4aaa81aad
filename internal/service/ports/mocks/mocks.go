// Package mocks holds testify mocks for the service ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/stadium-tickets/internal/model"
	"github.com/iliyamo/stadium-tickets/internal/queue"
	"github.com/iliyamo/stadium-tickets/internal/repository"
)

// T is the subset of *testing.T the constructors need.
type T interface {
	mock.TestingT
	Cleanup(func())
}

type MockSectionRepo struct{ mock.Mock }

func NewMockSectionRepo(t T) *MockSectionRepo {
	m := &MockSectionRepo{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSectionRepo) GetByID(ctx context.Context, id uint64) (*model.SeatSection, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*model.SeatSection)
	return s, args.Error(1)
}

func (m *MockSectionRepo) TryReserve(ctx context.Context, sectionID uint64, qty int) (int, error) {
	args := m.Called(ctx, sectionID, qty)
	return args.Int(0), args.Error(1)
}

func (m *MockSectionRepo) Release(ctx context.Context, sectionID uint64, qty int) (repository.ReleaseResult, error) {
	args := m.Called(ctx, sectionID, qty)
	return args.Get(0).(repository.ReleaseResult), args.Error(1)
}

type MockTicketRepo struct{ mock.Mock }

func NewMockTicketRepo(t T) *MockTicketRepo {
	m := &MockTicketRepo{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTicketRepo) Create(ctx context.Context, tk *model.Ticket) error {
	return m.Called(ctx, tk).Error(0)
}

func (m *MockTicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	tk, _ := args.Get(0).(*model.Ticket)
	return tk, args.Error(1)
}

func (m *MockTicketRepo) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTicketRepo) LiveQuantity(ctx context.Context, sectionID uint64) (int, error) {
	args := m.Called(ctx, sectionID)
	return args.Int(0), args.Error(1)
}

type MockEventRepo struct{ mock.Mock }

func NewMockEventRepo(t T) *MockEventRepo {
	m := &MockEventRepo{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockEventRepo) Create(ctx context.Context, e *model.Event, seeds []repository.SectionSeed) ([]model.SeatSection, error) {
	args := m.Called(ctx, e, seeds)
	s, _ := args.Get(0).([]model.SeatSection)
	return s, args.Error(1)
}

func (m *MockEventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*model.Event)
	return e, args.Error(1)
}

func (m *MockEventRepo) List(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	args := m.Called(ctx, f)
	e, _ := args.Get(0).([]model.Event)
	return e, args.Error(1)
}

func (m *MockEventRepo) Update(ctx context.Context, e *model.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEventRepo) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type MockPublisher struct{ mock.Mock }

func NewMockPublisher(t T) *MockPublisher {
	m := &MockPublisher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPublisher) PublishTicket(ctx context.Context, ev queue.TicketEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *MockPublisher) PublishRepair(ctx context.Context, task queue.InventoryRepairTask) error {
	return m.Called(ctx, task).Error(0)
}
