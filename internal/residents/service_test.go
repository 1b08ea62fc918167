package residents

import (
	"context"
	"testing"
	"time"

	"github.com/donazulmira/moradores-backend/pkg/db/dbtest"
	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/enums"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
	"github.com/donazulmira/moradores-backend/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (Service, *models.User) {
	t.Helper()
	conn := dbtest.Open(t)
	admin := &models.User{
		Username: "admin", FullName: "Administradora", CPF: "52998224725",
		PasswordHash: "x", Role: enums.RoleAdministrador, Active: true,
	}
	require.NoError(t, conn.Create(admin).Error)
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn)})
	require.NoError(t, err)
	return svc, admin
}

func active(v bool) *bool { return &v }

func TestCreateNormalizesCPFAndRecordsRegistrar(t *testing.T) {
	svc, admin := newService(t)

	res, err := svc.Create(context.Background(), CreateResidentRequest{
		FullName: " Maria das Dores ",
		CPF:      "390.533.447-05",
		RG:       "12.345.678-9",
		Active:   active(true),
	}, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria das Dores", res.FullName)
	assert.Equal(t, "39053344705", res.CPF)
	assert.Equal(t, admin.ID, res.UserID)
	assert.Equal(t, admin.CPF, res.RegistrarCPF)
	assert.False(t, res.RegisteredAt.IsZero())
}

func TestCreateRejectsDuplicateAndInvalidCPF(t *testing.T) {
	svc, admin := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateResidentRequest{FullName: "A", CPF: "39053344705", RG: "1", Active: active(true)}, admin.ID)
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateResidentRequest{FullName: "B", CPF: "390.533.447-05", RG: "2", Active: active(true)}, admin.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, msgCPFConflict, pkgerrors.As(err).Message())

	_, err = svc.Create(ctx, CreateResidentRequest{FullName: "C", CPF: "111.111.111-11", RG: "3", Active: active(true)}, admin.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestUpdateAndDelete(t *testing.T) {
	svc, admin := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateResidentRequest{FullName: "José", CPF: "39053344705", RG: "1", Active: active(true)}, admin.ID)
	require.NoError(t, err)

	at := types.Timestamp{Time: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), DateOnly: true}
	updated, err := svc.Update(ctx, created.ID, UpdateResidentRequest{Active: active(false), RegisteredAt: &at})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.True(t, updated.RegisteredAt.Equal(at.Time))
	assert.Equal(t, admin.ID, updated.UserID)

	require.NoError(t, svc.Delete(ctx, created.ID))
	err = svc.Delete(ctx, created.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Update(ctx, created.ID, UpdateResidentRequest{})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestListFilters(t *testing.T) {
	svc, admin := newService(t)
	ctx := context.Background()

	for _, r := range []CreateResidentRequest{
		{FullName: "Ana Souza", CPF: "39053344705", RG: "1", Active: active(true)},
		{FullName: "Antonio Lima", CPF: "11144477735", RG: "2", Active: active(false)},
		{FullName: "Benedita Rocha", CPF: "15350946056", RG: "3", Active: active(true)},
	} {
		_, err := svc.Create(ctx, r, admin.ID)
		require.NoError(t, err)
	}

	byName, err := svc.List(ctx, ListFilter{FullName: "an"}, pagination.Params{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, byName.Total)

	inactive, err := svc.List(ctx, ListFilter{Active: active(false)}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, inactive.Data, 1)
	assert.Equal(t, "Antonio Lima", inactive.Data[0].FullName)
}
