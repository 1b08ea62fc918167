package medications

import (
	"context"
	"testing"

	"github.com/donazulmira/moradores-backend/pkg/db/dbtest"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedicationLifecycle(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: NewRepository(dbtest.Open(t))})
	require.NoError(t, err)
	ctx := context.Background()
	on := true

	dipirona, err := svc.Create(ctx, CreateMedicationRequest{Name: " Dipirona ", Active: &on})
	require.NoError(t, err)
	assert.Equal(t, "Dipirona", dipirona.Name)

	_, err = svc.Create(ctx, CreateMedicationRequest{Name: "DIPIRONA", Active: &on})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, msgNameConflict, pkgerrors.As(err).Message())

	losartana, err := svc.Create(ctx, CreateMedicationRequest{Name: "Losartana", Active: &on})
	require.NoError(t, err)

	off := false
	updated, err := svc.Update(ctx, losartana.ID, UpdateMedicationRequest{Active: &off})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	page, err := svc.List(ctx, "pir", pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, dipirona.ID, page.Data[0].ID)

	out, err := svc.Delete(ctx, dipirona.ID)
	require.NoError(t, err)
	assert.Equal(t, msgRemoved, out.Message)

	_, err = svc.Get(ctx, dipirona.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}
