package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/donazulmira/moradores-backend/internal/users"
	"github.com/donazulmira/moradores-backend/pkg/enums"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
)

type stubUserService struct {
	lookups []users.Lookup
	gets    []int64
}

func (s *stubUserService) Create(context.Context, users.CreateUserRequest) (*users.UserDTO, error) {
	return &users.UserDTO{ID: 1}, nil
}

func (s *stubUserService) List(_ context.Context, _ users.ListFilter, params pagination.Params) (pagination.Result[users.UserDTO], error) {
	return pagination.NewResult([]users.UserDTO{}, 0, params), nil
}

func (s *stubUserService) Get(_ context.Context, id int64) (*users.UserDTO, error) {
	s.gets = append(s.gets, id)
	return &users.UserDTO{ID: id}, nil
}

func (s *stubUserService) Lookup(_ context.Context, lookup users.Lookup) (*users.UserDTO, error) {
	s.lookups = append(s.lookups, lookup)
	return &users.UserDTO{ID: 5}, nil
}

func (s *stubUserService) Update(_ context.Context, id int64, _ users.UpdateUserRequest) (*users.UpdateResult, error) {
	return &users.UpdateResult{Message: "ok", User: &users.UserDTO{ID: id}}, nil
}

func (s *stubUserService) Delete(context.Context, int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "Usuário não encontrado")
}

func TestUserLookupBuildsTaggedUnion(t *testing.T) {
	svc := &stubUserService{}

	req := httptest.NewRequest(http.MethodGet, "/usuario/buscar?funcao=Tecnico%20de%20Enfermagem", nil)
	rec := httptest.NewRecorder()
	UserLookup(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(svc.lookups) != 1 {
		t.Fatalf("expected one lookup, got %d", len(svc.lookups))
	}
	byRole, ok := svc.lookups[0].(users.ByRole)
	if !ok || byRole.Role != enums.RoleTecnicoEnfermagem {
		t.Fatalf("unexpected lookup %#v", svc.lookups[0])
	}
}

func TestUserLookupRejectsAmbiguousQuery(t *testing.T) {
	svc := &stubUserService{}

	for _, query := range []string{"", "?cpf=52998224725&email=a@b.com"} {
		req := httptest.NewRequest(http.MethodGet, "/usuario/buscar"+query, nil)
		rec := httptest.NewRecorder()
		UserLookup(svc, nil).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("query %q: expected 400 got %d", query, rec.Code)
		}
	}
	if len(svc.lookups) != 0 {
		t.Fatalf("service should not be called")
	}
}

func TestUserMeLoadsCaller(t *testing.T) {
	svc := &stubUserService{}

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/usuario/me", nil), 77, "Cuidador")
	rec := httptest.NewRecorder()
	UserMe(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(svc.gets) != 1 || svc.gets[0] != 77 {
		t.Fatalf("expected caller to be loaded, got %v", svc.gets)
	}
}

func TestUserDeleteNotFound(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/usuario/9", nil), "id", "9")
	rec := httptest.NewRecorder()
	UserDelete(&stubUserService{}, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
