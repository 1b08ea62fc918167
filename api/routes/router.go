package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/donazulmira/moradores-backend/api/controllers"
	"github.com/donazulmira/moradores-backend/api/middleware"
	"github.com/donazulmira/moradores-backend/internal/ai"
	"github.com/donazulmira/moradores-backend/internal/auth"
	"github.com/donazulmira/moradores-backend/internal/doctors"
	"github.com/donazulmira/moradores-backend/internal/doses"
	"github.com/donazulmira/moradores-backend/internal/evolutions"
	"github.com/donazulmira/moradores-backend/internal/medications"
	"github.com/donazulmira/moradores-backend/internal/prescriptions"
	"github.com/donazulmira/moradores-backend/internal/reports"
	"github.com/donazulmira/moradores-backend/internal/residents"
	"github.com/donazulmira/moradores-backend/internal/users"
	"github.com/donazulmira/moradores-backend/pkg/config"
	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/enums"
	"github.com/donazulmira/moradores-backend/pkg/logger"
	"github.com/donazulmira/moradores-backend/pkg/metrics"
	"github.com/donazulmira/moradores-backend/pkg/redis"
)

// UserLoader reloads the caller on every authenticated request.
type UserLoader interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Dependencies carries everything the router wires into handlers. Redis is
// optional: a nil client disables auth rate limiting and idempotency records.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	DB       controllers.Pinger
	Redis    *redis.Client
	Users    UserLoader

	AuthService         auth.Service
	UserService         users.Service
	ResidentService     residents.Service
	DoctorService       doctors.Service
	MedicationService   medications.Service
	PrescriptionService prescriptions.Service
	PrescriptionItems   prescriptions.ItemService
	DoseService         doses.Service
	EvolutionService    evolutions.Service
	ReportService       reports.Service
	AIService           ai.Service
}

var (
	anyRole = []string{enums.RoleWildcard}

	adminOnly = middleware.Roles(enums.RoleAdministrador)

	residentReaders = middleware.Roles(enums.RoleAdministrador, enums.RoleEnfermeiro, enums.RoleCuidador)

	prescriptionWriters = middleware.Roles(enums.RoleEnfermeiro, enums.RoleCuidador, enums.RoleAdministrador)

	ward = middleware.Roles(enums.RoleEnfermeiro, enums.RoleCuidador)

	evolutionAuthors = middleware.Roles(enums.RoleEnfermeiro, enums.RoleTecnicoEnfermagem, enums.RoleCuidador, enums.RoleFarmaceutico)

	evolutionEditors = middleware.Roles(enums.RoleEnfermeiro, enums.RoleTecnicoEnfermagem, enums.RoleFarmaceutico)
)

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg, deps.Metrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	// Interfaces are left nil when Redis is disabled so the middleware can
	// tell "no store" apart from a store that fails.
	var (
		rateStore        middleware.RateLimiterStore
		idempotencyStore redis.IdempotencyStore
		redisPinger      controllers.Pinger
	)
	if deps.Redis != nil {
		rateStore = deps.Redis
		idempotencyStore = deps.Redis
		redisPinger = deps.Redis
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	recoveryPolicy := middleware.NewAuthRateLimitPolicy(
		"recovery",
		cfg.AuthRateLimit.RecoveryWindow,
		cfg.AuthRateLimit.RecoveryIPLimit,
		cfg.AuthRateLimit.RecoveryEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DB,
			"redis":    redisPinger,
		}))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		login := middleware.AuthRateLimit(loginPolicy, rateStore, logg)
		recovery := middleware.AuthRateLimit(recoveryPolicy, rateStore, logg)

		r.With(login).Post("/", controllers.AuthLogin(deps.AuthService, logg))
		r.With(login).Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
		r.With(recovery).Post("/forgot-password", controllers.AuthForgotPassword(deps.AuthService, logg))
		r.With(recovery).Post("/reset-password", controllers.AuthResetPassword(deps.AuthService, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Users, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		allow := func(roles []string) func(http.Handler) http.Handler {
			return middleware.RequireRoles(logg, roles...)
		}

		r.Route("/usuario", func(r chi.Router) {
			r.With(allow(anyRole)).Get("/me", controllers.UserMe(deps.UserService, logg))
			r.With(allow(anyRole)).Get("/buscar", controllers.UserLookup(deps.UserService, logg))
			r.With(allow(anyRole)).Post("/", controllers.UserCreate(deps.UserService, logg))
			r.Group(func(r chi.Router) {
				r.Use(allow(adminOnly))
				r.Get("/", controllers.UserList(deps.UserService, logg))
				r.Get("/{id}", controllers.UserGet(deps.UserService, logg))
				r.Patch("/{id}", controllers.UserUpdate(deps.UserService, logg))
				r.Delete("/{id}", controllers.UserDelete(deps.UserService, logg))
			})
		})

		r.Route("/morador", func(r chi.Router) {
			r.With(allow(adminOnly)).Post("/", controllers.ResidentCreate(deps.ResidentService, logg))
			r.With(allow(residentReaders)).Get("/", controllers.ResidentList(deps.ResidentService, logg))
			r.With(allow(residentReaders)).Get("/{id}", controllers.ResidentGet(deps.ResidentService, logg))
			r.With(allow(adminOnly)).Patch("/{id}", controllers.ResidentUpdate(deps.ResidentService, logg))
			r.With(allow(adminOnly)).Delete("/{id}", controllers.ResidentDelete(deps.ResidentService, logg))
		})

		r.Route("/medicos", func(r chi.Router) {
			r.Use(allow(anyRole))
			r.Post("/", controllers.DoctorCreate(deps.DoctorService, logg))
			r.Get("/", controllers.DoctorList(deps.DoctorService, logg))
			r.Get("/{id}", controllers.DoctorGet(deps.DoctorService, logg))
			r.Patch("/{id}", controllers.DoctorUpdate(deps.DoctorService, logg))
			r.Delete("/{id}", controllers.DoctorDelete(deps.DoctorService, logg))
		})

		r.Route("/medicamentos", func(r chi.Router) {
			r.With(allow(adminOnly)).Post("/", controllers.MedicationCreate(deps.MedicationService, logg))
			r.With(allow(anyRole)).Get("/", controllers.MedicationList(deps.MedicationService, logg))
			r.With(allow(anyRole)).Get("/{id}", controllers.MedicationGet(deps.MedicationService, logg))
			r.With(allow(adminOnly)).Patch("/{id}", controllers.MedicationUpdate(deps.MedicationService, logg))
			r.With(allow(adminOnly)).Delete("/{id}", controllers.MedicationDelete(deps.MedicationService, logg))
		})

		r.Route("/prescricao", func(r chi.Router) {
			r.With(allow(prescriptionWriters)).Post("/", controllers.PrescriptionCreate(deps.PrescriptionService, logg))
			r.With(allow(prescriptionWriters)).Post("/completa", controllers.PrescriptionCreateComplete(deps.PrescriptionService, logg))
			r.With(allow(anyRole)).Get("/", controllers.PrescriptionList(deps.PrescriptionService, logg))
			r.With(allow(anyRole)).Get("/analitico/all", controllers.PrescriptionAnalytic(deps.PrescriptionService, logg))
			r.With(allow(anyRole)).Get("/{id}", controllers.PrescriptionGet(deps.PrescriptionService, logg))
			r.With(allow(prescriptionWriters)).Patch("/{id}", controllers.PrescriptionUpdate(deps.PrescriptionService, logg))
			r.With(allow(prescriptionWriters)).Delete("/{id}", controllers.PrescriptionDelete(deps.PrescriptionService, logg))
		})

		r.Route("/medicamento-prescricao", func(r chi.Router) {
			r.With(allow(prescriptionWriters)).Post("/", controllers.PrescriptionItemCreate(deps.PrescriptionItems, logg))
			r.With(allow(anyRole)).Get("/", controllers.PrescriptionItemList(deps.PrescriptionItems, logg))
			r.With(allow(anyRole)).Get("/{id}", controllers.PrescriptionItemGet(deps.PrescriptionItems, logg))
			r.With(allow(prescriptionWriters)).Patch("/{id}", controllers.PrescriptionItemUpdate(deps.PrescriptionItems, logg))
			r.With(allow(prescriptionWriters)).Delete("/{id}", controllers.PrescriptionItemDelete(deps.PrescriptionItems, logg))
		})

		r.Route("/medicacao", func(r chi.Router) {
			r.With(allow(ward)).Post("/", controllers.DoseCreate(deps.DoseService, logg))
			r.With(allow(anyRole)).Get("/", controllers.DoseList(deps.DoseService, logg))
			r.With(allow(anyRole)).Get("/{id}", controllers.DoseGet(deps.DoseService, logg))
			r.With(allow(ward)).Patch("/{id}", controllers.DoseUpdate(deps.DoseService, logg))
			r.With(allow(ward)).Delete("/{id}", controllers.DoseDelete(deps.DoseService, logg))
		})

		r.Route("/evolucao-individual", func(r chi.Router) {
			r.With(allow(evolutionAuthors)).Post("/", controllers.EvolutionCreate(deps.EvolutionService, logg))
			r.With(allow(evolutionAuthors)).Get("/", controllers.EvolutionList(deps.EvolutionService, logg))
			r.With(allow(evolutionAuthors)).Get("/morador/{id}", controllers.EvolutionListByResident(deps.EvolutionService, logg))
			r.With(allow(ward)).Get("/{id}", controllers.EvolutionGet(deps.EvolutionService, logg))
			r.With(allow(evolutionEditors)).Patch("/{id}", controllers.EvolutionUpdate(deps.EvolutionService, logg))
			r.With(allow(evolutionEditors)).Delete("/{id}", controllers.EvolutionDelete(deps.EvolutionService, logg))
		})

		r.Route("/relatorio-geral", func(r chi.Router) {
			r.Use(allow(ward))
			r.Post("/", controllers.ReportCreate(deps.ReportService, logg))
			r.Get("/", controllers.ReportList(deps.ReportService, logg))
			r.Get("/{id}", controllers.ReportGet(deps.ReportService, logg))
			r.Patch("/{id}", controllers.ReportUpdate(deps.ReportService, logg))
			r.Delete("/{id}", controllers.ReportDelete(deps.ReportService, logg))
		})

		r.Route("/ai", func(r chi.Router) {
			throttle := middleware.NewUserRateLimiter(cfg.AI.RatePerMinute, cfg.AI.Burst)
			r.With(allow(ward), middleware.UserRateLimit(throttle, logg)).
				Post("/gerar-relatorio", controllers.AIGenerateReport(deps.AIService, logg))
		})
	})

	return r
}
