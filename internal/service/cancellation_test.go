package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stadium-tickets/internal/model"
	"github.com/iliyamo/stadium-tickets/internal/queue"
	"github.com/iliyamo/stadium-tickets/internal/repository"
	"github.com/iliyamo/stadium-tickets/internal/service/ports/mocks"
)

type cancelDeps struct {
	sections *mocks.MockSectionRepo
	tickets  *mocks.MockTicketRepo
	pub      *mocks.MockPublisher
	svc      *CancellationService
}

func newCancelDeps(t *testing.T) cancelDeps {
	sections := mocks.NewMockSectionRepo(t)
	tickets := mocks.NewMockTicketRepo(t)
	pub := mocks.NewMockPublisher(t)
	log := newTestLogger(t)
	return cancelDeps{sections, tickets, pub, NewCancellationService(tickets, pub, NewCompensator(sections, pub, testLedger, log), log)}
}

func fanTicket() *model.Ticket {
	return &model.Ticket{ID: 3, EventID: 1, SeatSectionID: 10, UserID: fan.UserID, Quantity: 5}
}

func TestCancel_OwnerReleasesSeats(t *testing.T) {
	d := newCancelDeps(t)
	d.tickets.On("GetByID", mock.Anything, uint64(3)).Return(fanTicket(), nil)
	d.tickets.On("Delete", mock.Anything, uint64(3)).Return(nil)
	d.sections.On("Release", mock.Anything, uint64(10), 5).Return(repository.ReleaseResult{Available: 1000}, nil).Once()
	d.pub.On("PublishTicket", mock.Anything, mock.MatchedBy(func(ev queue.TicketEvent) bool {
		return ev.Type == queue.KeyTicketCancelled && ev.TicketID == 3 && ev.Available == 1000
	})).Return(nil)

	require.NoError(t, d.svc.Cancel(context.Background(), 3, fan))
}

func TestCancel_AdminMayCancelAnyTicket(t *testing.T) {
	d := newCancelDeps(t)
	d.tickets.On("GetByID", mock.Anything, uint64(3)).Return(fanTicket(), nil)
	d.tickets.On("Delete", mock.Anything, uint64(3)).Return(nil)
	d.sections.On("Release", mock.Anything, uint64(10), 5).Return(repository.ReleaseResult{Available: 1000}, nil)
	d.pub.On("PublishTicket", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, d.svc.Cancel(context.Background(), 3, model.Identity{UserID: 1, Role: model.RoleAdmin}))
}

func TestCancel_OtherUserIsRejected(t *testing.T) {
	d := newCancelDeps(t)
	d.tickets.On("GetByID", mock.Anything, uint64(3)).Return(fanTicket(), nil)

	err := d.svc.Cancel(context.Background(), 3, model.Identity{UserID: 99, Role: model.RoleUser})
	assert.ErrorIs(t, err, ErrUnauthorized)
	d.tickets.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCancel_UnknownTicket(t *testing.T) {
	d := newCancelDeps(t)
	d.tickets.On("GetByID", mock.Anything, uint64(3)).Return(nil, repository.ErrTicketNotFound)

	assert.ErrorIs(t, d.svc.Cancel(context.Background(), 3, fan), ErrNotFound)
}

func TestCancel_LoserOfDeleteRaceDoesNotRelease(t *testing.T) {
	d := newCancelDeps(t)
	d.tickets.On("GetByID", mock.Anything, uint64(3)).Return(fanTicket(), nil)
	d.tickets.On("Delete", mock.Anything, uint64(3)).Return(repository.ErrTicketNotFound)

	assert.ErrorIs(t, d.svc.Cancel(context.Background(), 3, fan), ErrNotFound)
	d.sections.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel_ClampedReleaseIsLogged(t *testing.T) {
	sections := mocks.NewMockSectionRepo(t)
	tickets := mocks.NewMockTicketRepo(t)
	pub := mocks.NewMockPublisher(t)
	log, buf := newCapturingLogger()
	svc := NewCancellationService(tickets, pub, NewCompensator(sections, pub, testLedger, log), log)

	tickets.On("GetByID", mock.Anything, uint64(3)).Return(fanTicket(), nil)
	tickets.On("Delete", mock.Anything, uint64(3)).Return(nil)
	sections.On("Release", mock.Anything, uint64(10), 5).
		Return(repository.ReleaseResult{Available: 1000, Clamped: true, Excess: 2}, nil)
	pub.On("PublishTicket", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.Cancel(context.Background(), 3, fan))
	assert.Contains(t, buf.String(), `"msg":"ConsistencyViolation"`)
	assert.Contains(t, buf.String(), `"excess":2`)
}

func TestCancel_FailedReleaseIsQueued(t *testing.T) {
	d := newCancelDeps(t)
	d.tickets.On("GetByID", mock.Anything, uint64(3)).Return(fanTicket(), nil)
	d.tickets.On("Delete", mock.Anything, uint64(3)).Return(nil)
	d.sections.On("Release", mock.Anything, uint64(10), 5).Return(repository.ReleaseResult{}, errors.New("timeout"))
	d.pub.On("PublishRepair", mock.Anything, mock.MatchedBy(func(task queue.InventoryRepairTask) bool {
		return task.Quantity == 5 && task.Reason == "ticket cancelled"
	})).Return(nil)
	d.pub.On("PublishTicket", mock.Anything, mock.MatchedBy(func(ev queue.TicketEvent) bool {
		return ev.Available == -1
	})).Return(nil)

	require.NoError(t, d.svc.Cancel(context.Background(), 3, fan))
	d.sections.AssertNumberOfCalls(t, "Release", testLedger.CompensationAttempts)
}

func TestCancel_QueueDownReturnsConsistencyViolation(t *testing.T) {
	d := newCancelDeps(t)
	d.tickets.On("GetByID", mock.Anything, uint64(3)).Return(fanTicket(), nil)
	d.tickets.On("Delete", mock.Anything, uint64(3)).Return(nil)
	d.sections.On("Release", mock.Anything, uint64(10), 5).Return(repository.ReleaseResult{}, errors.New("timeout"))
	d.pub.On("PublishRepair", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	assert.ErrorIs(t, d.svc.Cancel(context.Background(), 3, fan), ErrConsistencyViolation)
	d.pub.AssertNotCalled(t, "PublishTicket", mock.Anything, mock.Anything)
}
