package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stadium-tickets/internal/config"
	"github.com/iliyamo/stadium-tickets/internal/repository"
	"github.com/iliyamo/stadium-tickets/internal/service/ports/mocks"
)

func TestCompensator_BackoffStaysWithinMaxWait(t *testing.T) {
	sections := mocks.NewMockSectionRepo(t)
	pub := mocks.NewMockPublisher(t)
	cfg := config.LedgerConfig{CompensationAttempts: 10, CompensationBackoff: 20 * time.Millisecond, CompensationMaxWait: 50 * time.Millisecond}
	comp := NewCompensator(sections, pub, cfg, newTestLogger(t))

	sections.On("Release", mock.Anything, uint64(10), 2).Return(repository.ReleaseResult{}, errors.New("db down"))
	pub.On("PublishRepair", mock.Anything, mock.Anything).Return(nil)

	start := time.Now()
	out, err := comp.Release(context.Background(), 1, 10, 2, "ticket cancelled")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.True(t, out.Queued)
	assert.NotEmpty(t, out.TaskID)
	// 20ms then 40ms would total 60ms, so only the first sleep fits
	sections.AssertNumberOfCalls(t, "Release", 2)
	assert.Less(t, elapsed, time.Second)
}

func TestCompensator_BackoffLongerThanMaxWaitQueuesAtOnce(t *testing.T) {
	sections := mocks.NewMockSectionRepo(t)
	pub := mocks.NewMockPublisher(t)
	cfg := config.LedgerConfig{CompensationAttempts: 5, CompensationBackoff: time.Minute, CompensationMaxWait: 10 * time.Millisecond}
	comp := NewCompensator(sections, pub, cfg, newTestLogger(t))

	sections.On("Release", mock.Anything, uint64(10), 2).Return(repository.ReleaseResult{}, errors.New("db down"))
	pub.On("PublishRepair", mock.Anything, mock.Anything).Return(nil)

	start := time.Now()
	out, err := comp.Release(context.Background(), 1, 10, 2, "ticket cancelled")

	require.NoError(t, err)
	assert.True(t, out.Queued)
	sections.AssertNumberOfCalls(t, "Release", 1)
	assert.Less(t, time.Since(start), time.Second)
}
