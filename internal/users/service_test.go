package users

import (
	"context"
	"testing"
	"time"

	"github.com/donazulmira/moradores-backend/pkg/config"
	"github.com/donazulmira/moradores-backend/pkg/db/dbtest"
	"github.com/donazulmira/moradores-backend/pkg/enums"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
	"github.com/donazulmira/moradores-backend/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPasswordConfig = config.PasswordConfig{ArgonMemoryKB: 8 * 1024, ArgonTime: 1, ArgonParallelism: 1}

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(ServiceParams{Repo: repo, PasswordConfig: testPasswordConfig})
	require.NoError(t, err)
	return svc, repo
}

func validCreateRequest() CreateUserRequest {
	return CreateUserRequest{
		Username: "ana",
		Password: "segredo1",
		FullName: "Ana Souza",
		CPF:      "529.982.247-25",
		Email:    "Ana@Zulmira.org",
		Role:     "Enfermeiro",
	}
}

func TestCreateNormalizesAndHashes(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, "52998224725", created.CPF)
	assert.Equal(t, "ana@zulmira.org", *created.Email)
	assert.Equal(t, enums.RoleEnfermeiro, created.Role)
	assert.True(t, created.Active)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "segredo1", stored.PasswordHash)
	assert.True(t, security.CheckPassword("segredo1", stored.PasswordHash))
}

func TestCreateConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.Create(ctx, validCreateRequest())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Equal(t, cpfConflictMessage, typed.Message())

	req := validCreateRequest()
	req.CPF = "111.444.777-35"
	_, err = svc.Create(ctx, req)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, emailConflictMessage, typed.Message())
}

func TestCreateRejectsInvalidCPF(t *testing.T) {
	svc, _ := newTestService(t)
	req := validCreateRequest()
	req.CPF = "111.111.111-11"
	_, err := svc.Create(context.Background(), req)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestLookupVariants(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	for name, lookup := range map[string]Lookup{
		"cpf":   ByCPF{CPF: "52998224725"},
		"email": ByEmail{Email: "ANA@zulmira.org"},
		"role":  ByRole{Role: enums.RoleEnfermeiro},
	} {
		t.Run(name, func(t *testing.T) {
			found, err := svc.Lookup(ctx, lookup)
			require.NoError(t, err)
			assert.Equal(t, created.ID, found.ID)
		})
	}

	_, err = svc.Lookup(ctx, ByRole{Role: enums.RoleMedico})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestParseLookupRequiresExactlyOneKey(t *testing.T) {
	l, err := ParseLookup(" 529.982.247-25 ", "", "")
	require.NoError(t, err)
	assert.Equal(t, ByCPF{CPF: "52998224725"}, l)

	l, err = ParseLookup("", "", "tecnico de enfermagem")
	require.NoError(t, err)
	assert.Equal(t, ByRole{Role: enums.RoleTecnicoEnfermagem}, l)

	_, err = ParseLookup("", "", "Faxineiro")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = ParseLookup("", "", "")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	_, err = ParseLookup("52998224725", "a@b.c", "")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestUpdateReportsChangedFields(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	name := "Ana S."
	pw := "nova-senha"
	inactive := false
	res, err := svc.Update(ctx, created.ID, UpdateUserRequest{FullName: &name, Password: &pw, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "nome_completo alterado com sucesso | situacao alterado com sucesso | senha alterado com sucesso", res.Message)
	assert.False(t, res.User.Active)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, security.CheckPassword(pw, stored.PasswordHash))

	res, err = svc.Update(ctx, created.ID, UpdateUserRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, noChangesMessage, res.Message)
}

func TestUpdateEmailConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	req := validCreateRequest()
	req.CPF = "11144477735"
	req.Email = "bruno@zulmira.org"
	other, err := svc.Create(ctx, req)
	require.NoError(t, err)

	taken := "ana@zulmira.org"
	_, err = svc.Update(ctx, other.ID, UpdateUserRequest{Email: &taken})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, emailConflictMessage, typed.Message())
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	req := validCreateRequest()
	req.CPF = "11144477735"
	req.Email = "bruno@zulmira.org"
	req.FullName = "Bruno Lima"
	req.Role = "Cuidador"
	_, err = svc.Create(ctx, req)
	require.NoError(t, err)

	all, err := svc.List(ctx, ListFilter{}, pagination.Params{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)
	assert.Equal(t, 1, all.LastPage)
	assert.Equal(t, 10, all.Limit)

	filtered, err := svc.List(ctx, ListFilter{Role: "Cuidador"}, pagination.Params{Page: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, filtered.Data, 1)
	assert.Equal(t, "Bruno Lima", filtered.Data[0].FullName)
}

func TestDeleteMissingUser(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Delete(context.Background(), 404)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestResetPasswordRequiresMatchingToken(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, repo.SetResetToken(ctx, created.ID, "tok-1", fixedExpiry()))
	ok, err := repo.ResetPassword(ctx, created.ID, "tok-2", "hash")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.ResetPassword(ctx, created.ID, "tok-1", "hash")
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ResetToken)
	assert.Nil(t, stored.ResetTokenExpiry)

	ok, err = repo.ResetPassword(ctx, created.ID, "tok-1", "hash")
	require.NoError(t, err)
	assert.False(t, ok)
}

func fixedExpiry() time.Time {
	return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
}
