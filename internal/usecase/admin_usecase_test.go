package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAdminUC(users *UserRepoMock, audit *AuditRepoMock) *usecase.AdminUsecase {
	tx := &TxManagerStub{users: users, audit: audit}
	return usecase.NewAdminUsecase(users, audit, tx)
}

func TestAdminUsecase_ForceLogout_WritesAudit(t *testing.T) {
	users := new(UserRepoMock)
	audit := new(AuditRepoMock)
	users.On("IncrementTokenVersion", mock.Anything, int64(5)).Return(nil)
	users.On("FindByID", mock.Anything, int64(5)).Return(&model.User{ID: 5, TokenVersion: 3}, nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 1 &&
			l.Action == model.AuditActionForceLogout &&
			l.ResourceID == 5 &&
			l.AfterJSON == `{"token_version":3}`
	})).Return(nil)

	out, err := newAdminUC(users, audit).ForceLogout(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, out.NewTokenVersion)
	audit.AssertExpectations(t)
}

func TestAdminUsecase_ForceLogout_NotFound(t *testing.T) {
	users := new(UserRepoMock)
	audit := new(AuditRepoMock)
	users.On("IncrementTokenVersion", mock.Anything, int64(5)).Return(repo.ErrNotFound)

	_, err := newAdminUC(users, audit).ForceLogout(context.Background(), 1, 5)
	assertHTTPError(t, err, http.StatusNotFound, "not found")
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminUsecase_UpdateRole(t *testing.T) {
	users := new(UserRepoMock)
	audit := new(AuditRepoMock)
	uc := newAdminUC(users, audit)
	ctx := context.Background()

	_, err := uc.UpdateRole(ctx, 1, 1, "USER")
	assertHTTPError(t, err, http.StatusBadRequest, "cannot change own role")

	_, err = uc.UpdateRole(ctx, 1, 2, "ROOT")
	assertHTTPError(t, err, http.StatusBadRequest, "invalid role")

	users.On("FindByID", mock.Anything, int64(2)).Return(&model.User{ID: 2, Role: model.RoleUser, TokenVersion: 0}, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)
	users.On("IncrementTokenVersion", mock.Anything, int64(2)).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateRole && l.BeforeJSON == `{"role":"USER"}` && l.AfterJSON == `{"role":"ADMIN"}`
	})).Return(nil)

	out, err := uc.UpdateRole(ctx, 1, 2, "admin")
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", out.Role)
	assert.Equal(t, 1, out.TokenVersion)
}

func TestAdminUsecase_SetActive_DeactivateBumpsVersion(t *testing.T) {
	users := new(UserRepoMock)
	audit := new(AuditRepoMock)
	users.On("FindByID", mock.Anything, int64(2)).Return(&model.User{ID: 2, IsActive: true}, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)
	users.On("IncrementTokenVersion", mock.Anything, int64(2)).Return(nil)
	uc := newAdminUC(users, audit)

	out, err := uc.SetActive(context.Background(), 1, 2, false)
	require.NoError(t, err)
	assert.False(t, out.IsActive)
	assert.Equal(t, 1, out.TokenVersion)

	_, err = uc.SetActive(context.Background(), 1, 1, false)
	assertHTTPError(t, err, http.StatusBadRequest, "cannot deactivate yourself")
}

func TestAdminUsecase_ListUsers_Validation(t *testing.T) {
	uc := newAdminUC(new(UserRepoMock), new(AuditRepoMock))

	_, err := uc.ListUsers(context.Background(), 0, 10)
	assertHTTPError(t, err, http.StatusBadRequest, "invalid page")
	_, err = uc.ListUsers(context.Background(), 1, 101)
	assertHTTPError(t, err, http.StatusBadRequest, "invalid limit")
}

func TestAdminUsecase_ListAuditLogs_Filter(t *testing.T) {
	audit := new(AuditRepoMock)
	audit.On("List", mock.Anything, mock.MatchedBy(func(f repo.AuditLogFilter) bool {
		return f.Action != nil && *f.Action == model.AuditActionUpdateStock && f.ResourceType == nil && f.Limit == 20
	})).Return([]model.AuditLog{{ID: 1}}, nil)

	logs, err := newAdminUC(new(UserRepoMock), audit).ListAuditLogs(context.Background(), usecase.AuditLogQuery{
		Action: "UPDATE_STOCK",
		Limit:  20,
	})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
