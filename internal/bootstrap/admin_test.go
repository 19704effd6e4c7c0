package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/spacelink/internal/model"
	"github.com/iliyamo/spacelink/internal/repository"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockStore) Create(ctx context.Context, email, password, role string, cost int) (string, error) {
	args := m.Called(ctx, email, password, role, cost)
	return args.String(0), args.Error(1)
}

func (m *mockStore) SetRole(ctx context.Context, id, role string) error {
	return m.Called(ctx, id, role).Error(0)
}

func TestEnsureAdminCreates(t *testing.T) {
	store := new(mockStore)
	ctx := context.Background()
	store.On("GetByEmail", ctx, "root@spacelink.io").Return(model.User{}, repository.ErrNotFound)
	store.On("Create", ctx, "root@spacelink.io", "pw", model.RoleAdmin, 10).Return("u1", nil)

	require.NoError(t, EnsureAdmin(ctx, store, "root@spacelink.io", "pw", 10, zap.NewNop()))
	store.AssertExpectations(t)
}

func TestEnsureAdminIdempotent(t *testing.T) {
	store := new(mockStore)
	ctx := context.Background()
	store.On("GetByEmail", ctx, "root@spacelink.io").Return(model.User{ID: "u1", Role: model.RoleAdmin}, nil)

	require.NoError(t, EnsureAdmin(ctx, store, "root@spacelink.io", "pw", 10, zap.NewNop()))
	require.NoError(t, EnsureAdmin(ctx, store, "root@spacelink.io", "pw", 10, zap.NewNop()))
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "SetRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsureAdminPromotes(t *testing.T) {
	store := new(mockStore)
	ctx := context.Background()
	store.On("GetByEmail", ctx, "root@spacelink.io").Return(model.User{ID: "u1", Role: model.RoleUser}, nil)
	store.On("SetRole", ctx, "u1", model.RoleAdmin).Return(nil)

	require.NoError(t, EnsureAdmin(ctx, store, "root@spacelink.io", "", 10, zap.NewNop()))
	store.AssertExpectations(t)
}

func TestEnsureAdminEdges(t *testing.T) {
	ctx := context.Background()

	store := new(mockStore)
	require.NoError(t, EnsureAdmin(ctx, store, "", "", 10, zap.NewNop()))
	store.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)

	store = new(mockStore)
	store.On("GetByEmail", ctx, "a@b.io").Return(model.User{}, repository.ErrNotFound)
	assert.Error(t, EnsureAdmin(ctx, store, "a@b.io", "", 10, zap.NewNop()))

	store = new(mockStore)
	store.On("GetByEmail", ctx, "a@b.io").Return(model.User{}, errors.New("db down"))
	assert.Error(t, EnsureAdmin(ctx, store, "a@b.io", "pw", 10, zap.NewNop()))

	store = new(mockStore)
	store.On("GetByEmail", ctx, "a@b.io").Return(model.User{}, repository.ErrNotFound)
	store.On("Create", ctx, "a@b.io", "pw", model.RoleAdmin, 10).Return("", repository.ErrEmailExists)
	assert.NoError(t, EnsureAdmin(ctx, store, "a@b.io", "pw", 10, zap.NewNop()))
}
