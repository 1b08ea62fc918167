package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/donazulmira/moradores-backend/api/middleware"
	"github.com/donazulmira/moradores-backend/internal/reports"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
)

type stubReportService struct {
	create func(reports.CreateReportRequest, int64) (*reports.MutationResult, error)
	list   func(reports.ListFilter, pagination.Params) (pagination.Result[reports.ReportDTO], error)
	update func(int64, reports.UpdateReportRequest) (*reports.MutationResult, error)
}

func (s stubReportService) Create(_ context.Context, req reports.CreateReportRequest, authorID int64) (*reports.MutationResult, error) {
	return s.create(req, authorID)
}

func (s stubReportService) List(_ context.Context, filter reports.ListFilter, params pagination.Params) (pagination.Result[reports.ReportDTO], error) {
	return s.list(filter, params)
}

func (s stubReportService) Get(context.Context, int64) (*reports.ReportDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Relatório não encontrado")
}

func (s stubReportService) Update(_ context.Context, id int64, req reports.UpdateReportRequest) (*reports.MutationResult, error) {
	return s.update(id, req)
}

func (s stubReportService) Delete(context.Context, int64) (*reports.MessageResult, error) {
	return &reports.MessageResult{Message: "ok"}, nil
}

func withIdentity(req *http.Request, id int64, role string) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{ID: id, Role: role}))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestReportCreateUsesCallerAsAuthor(t *testing.T) {
	var gotAuthor int64
	var gotIDs []int64
	svc := stubReportService{create: func(req reports.CreateReportRequest, authorID int64) (*reports.MutationResult, error) {
		gotAuthor = authorID
		gotIDs = req.EvolutionIDs
		return &reports.MutationResult{Message: "Relatório criado com sucesso.", Report: &reports.ReportDTO{ID: 1, EvolutionEntryID: 3}}, nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/relatorio-geral", strings.NewReader(`{"ids_evolucoes":[3,9],"observacoes":"plantão tranquilo"}`))
	req = withIdentity(req, 42, "Enfermeiro")
	rec := httptest.NewRecorder()
	ReportCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if gotAuthor != 42 {
		t.Fatalf("expected author 42 got %d", gotAuthor)
	}
	if len(gotIDs) != 2 || gotIDs[0] != 3 || gotIDs[1] != 9 {
		t.Fatalf("unexpected ids %v", gotIDs)
	}
}

func TestReportCreateRequiresIdentity(t *testing.T) {
	svc := stubReportService{create: func(reports.CreateReportRequest, int64) (*reports.MutationResult, error) {
		t.Fatalf("service should not be called")
		return nil, nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/relatorio-geral", strings.NewReader(`{"ids_evolucoes":[3]}`))
	rec := httptest.NewRecorder()
	ReportCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestReportCreateMissingEntryIsNotFound(t *testing.T) {
	svc := stubReportService{create: func(reports.CreateReportRequest, int64) (*reports.MutationResult, error) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Evolução individual 7 não encontrada")
	}}

	req := httptest.NewRequest(http.MethodPost, "/relatorio-geral", strings.NewReader(`{"ids_evolucoes":[5,5,7]}`))
	req = withIdentity(req, 1, "Cuidador")
	rec := httptest.NewRecorder()
	ReportCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(envelope.Error.Message, "7") {
		t.Fatalf("expected missing id in message, got %q", envelope.Error.Message)
	}
}

func TestReportListParsesFilters(t *testing.T) {
	var gotFilter reports.ListFilter
	var gotParams pagination.Params
	svc := stubReportService{list: func(filter reports.ListFilter, params pagination.Params) (pagination.Result[reports.ReportDTO], error) {
		gotFilter = filter
		gotParams = params
		return pagination.NewResult([]reports.ReportDTO{}, 0, params), nil
	}}

	req := httptest.NewRequest(http.MethodGet, "/relatorio-geral?page=2&limit=5&id_usuario=3&data_inicio=2025-06-01&data_fim=2025-06-30", nil)
	rec := httptest.NewRecorder()
	ReportList(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if gotParams.Page != 2 || gotParams.Limit != 5 {
		t.Fatalf("unexpected params %+v", gotParams)
	}
	if gotFilter.UserID == nil || *gotFilter.UserID != 3 {
		t.Fatalf("expected user filter 3")
	}
	if gotFilter.From == nil || gotFilter.To == nil || !gotFilter.To.DateOnly {
		t.Fatalf("expected date range filters, got %+v", gotFilter)
	}
}

func TestReportUpdateRejectsBadID(t *testing.T) {
	svc := stubReportService{update: func(int64, reports.UpdateReportRequest) (*reports.MutationResult, error) {
		t.Fatalf("service should not be called")
		return nil, nil
	}}

	req := httptest.NewRequest(http.MethodPatch, "/relatorio-geral/abc", strings.NewReader(`{}`))
	req = withURLParam(req, "id", "abc")
	rec := httptest.NewRecorder()
	ReportUpdate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
