package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/donazulmira/moradores-backend/pkg/db/dbtest"
	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/enums"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	prompt string
	reply  string
	err    error
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.reply, g.err
}

func (g *stubGenerator) Model() string { return "gemini-test" }

func seed(t *testing.T) (*EntryRepository, []int64) {
	t.Helper()
	conn := dbtest.Open(t)
	user := &models.User{Username: "u", FullName: "U", CPF: "52998224725", PasswordHash: "x", Role: enums.RoleEnfermeiro, Active: true}
	require.NoError(t, conn.Create(user).Error)
	resident := &models.Resident{FullName: "Dona Lurdes", CPF: "39053344705", Active: true, UserID: user.ID}
	require.NoError(t, conn.Create(resident).Error)

	entries := []models.EvolutionEntry{
		{ResidentID: resident.ID, UserID: user.ID, Notes: "jantou   bem\n e dormiu cedo", OccurredAt: time.Date(2026, 8, 1, 21, 5, 0, 0, time.UTC)},
		{ResidentID: resident.ID, UserID: user.ID, Notes: strings.Repeat("a", 450), OccurredAt: time.Date(2026, 8, 1, 7, 30, 0, 0, time.UTC)},
	}
	require.NoError(t, conn.Create(&entries).Error)
	return NewEntryRepository(conn), []int64{entries[0].ID, entries[1].ID}
}

func TestGenerateReportBuildsPromptAndCleansAnswer(t *testing.T) {
	repo, ids := seed(t)
	gen := &stubGenerator{reply: "Resposta: **Plantão** tranquilo."}
	svc, err := NewService(ServiceParams{Entries: repo, Generator: gen})
	require.NoError(t, err)

	out, err := svc.GenerateReport(context.Background(), 1, GenerateRequest{
		EvolutionIDs: []int64{ids[0], ids[1], ids[0]},
		Mode:         "detalhado",
		ReportDate:   "2026-08-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "Plantão tranquilo.", out.Text)
	assert.Equal(t, "gemini-test", out.Model)
	assert.Equal(t, len([]rune(out.Text)), out.Chars)

	assert.Contains(t, gen.prompt, "Dados do dia: 01/08/2026")
	assert.Contains(t, gen.prompt, "mais detalhado")
	assert.Contains(t, gen.prompt, "[21:05] Morador: Dona Lurdes — jantou bem e dormiu cedo")
	assert.Contains(t, gen.prompt, strings.Repeat("a", 400)+"…")
	assert.Less(t, strings.Index(gen.prompt, "[07:30]"), strings.Index(gen.prompt, "[21:05]"))
}

func TestGenerateReportValidation(t *testing.T) {
	repo, ids := seed(t)
	ctx := context.Background()

	unconfigured, err := NewService(ServiceParams{Entries: repo})
	require.NoError(t, err)
	_, err = unconfigured.GenerateReport(ctx, 1, GenerateRequest{EvolutionIDs: ids})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInternal, typed.Code())
	assert.True(t, typed.IsPublic())
	assert.Equal(t, msgNotConfigured, typed.Message())

	svc, err := NewService(ServiceParams{Entries: repo, Generator: &stubGenerator{reply: "ok"}})
	require.NoError(t, err)

	_, err = svc.GenerateReport(ctx, 1, GenerateRequest{})
	assert.Equal(t, msgEmptyIDs, pkgerrors.As(err).Message())

	many := make([]int64, MaxEntries+1)
	for i := range many {
		many[i] = int64(i + 1)
	}
	_, err = svc.GenerateReport(ctx, 1, GenerateRequest{EvolutionIDs: many})
	assert.Equal(t, msgTooMany, pkgerrors.As(err).Message())

	_, err = svc.GenerateReport(ctx, 1, GenerateRequest{EvolutionIDs: []int64{ids[0], 9999}})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, msgEntriesNotFound, pkgerrors.As(err).Message())
}

func TestGenerateReportUpstreamFailure(t *testing.T) {
	repo, ids := seed(t)
	svc, err := NewService(ServiceParams{Entries: repo, Generator: &stubGenerator{err: errors.New("quota")}})
	require.NoError(t, err)

	_, err = svc.GenerateReport(context.Background(), 1, GenerateRequest{EvolutionIDs: ids})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, msgGenerateFailed, typed.Message())
	assert.True(t, typed.IsPublic())
}

func TestReportDate(t *testing.T) {
	assert.Equal(t, "Não informada", reportDate(""))
	assert.Equal(t, "25/12/2026", reportDate("2026-12-25"))
	assert.Equal(t, "ontem", reportDate("ontem"))
}
