package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/stream/internal/core"
	"github.com/edvin/stream/internal/model"
)

// ---------- Mock key resolver / store ----------

type mockKeys struct {
	mock.Mock
}

func (m *mockKeys) FindUserByKey(ctx context.Context, key string) (*model.User, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockKeys) Get(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockKeys) Ensure(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockKeys) Regenerate(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// ---------- Mock user getter ----------

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// ---------- Mock record querier ----------

type mockRecords struct {
	mock.Mock
}

func (m *mockRecords) Query(ctx context.Context, args core.RecordQueryArgs) ([]model.Record, error) {
	called := m.Called(ctx, args)
	if called.Get(0) == nil {
		return nil, called.Error(1)
	}
	return called.Get(0).([]model.Record), called.Error(1)
}

// ---------- Mock nonces ----------

type mockNonces struct {
	mock.Mock
}

func (m *mockNonces) Create(action, userID string) string {
	args := m.Called(action, userID)
	return args.String(0)
}

func (m *mockNonces) Verify(token, action, userID string) bool {
	args := m.Called(token, action, userID)
	return args.Bool(0)
}
