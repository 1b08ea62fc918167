package controllers

import (
	"net/http"

	"github.com/donazulmira/moradores-backend/api/responses"
	"github.com/donazulmira/moradores-backend/api/validators"
	"github.com/donazulmira/moradores-backend/internal/ai"
	"github.com/donazulmira/moradores-backend/pkg/logger"
)

// AIGenerateReport drafts a shift report from the selected evolution entries.
func AIGenerateReport(svc ai.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "ai")
			return
		}
		identity, ok := currentUser(w, r, logg)
		if !ok {
			return
		}

		var body ai.GenerateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GenerateReport(r.Context(), identity.ID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
