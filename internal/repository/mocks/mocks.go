package mocks

import (
	"context"

	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/stretchr/testify/mock"
)

// Provider is a mock for record.Provider and record.StatusLister.
type Provider struct {
	mock.Mock
}

func (m *Provider) Fetch(ctx context.Context) ([]record.Record, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]record.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Provider) ListStatuses() []record.Status {
	args := m.Called()
	if list, ok := args.Get(0).([]record.Status); ok {
		return list
	}
	return nil
}

// RecordRepository is a mock for repository.RecordRepository.
type RecordRepository struct {
	Provider
}

func (m *RecordRepository) ReplaceAll(ctx context.Context, records []record.Record) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *RecordRepository) Get(ctx context.Context, id int64) (*record.Record, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(*record.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RecordRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
