package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/ArielSanroj/mommyshops-sub003/internal/api/models"
	"github.com/ArielSanroj/mommyshops-sub003/internal/api/response"
	"github.com/ArielSanroj/mommyshops-sub003/internal/ingredient"
)

const maxIngredientNameLength = 200

// Analyzer resolves an ingredient name into an analysis.
type Analyzer interface {
	Analyze(ctx context.Context, name string) (*ingredient.Analysis, error)
}

// IngredientHandler handles ingredient analysis endpoints.
type IngredientHandler struct {
	service Analyzer
}

// NewIngredientHandler creates a new IngredientHandler.
func NewIngredientHandler(service Analyzer) *IngredientHandler {
	return &IngredientHandler{service: service}
}

// Analyze handles GET /v1/ingredients/{name}.
func (h *IngredientHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		response.BadRequest(w, r, "ingredient name is not valid", []models.FieldError{
			{Field: "name", Message: "invalid percent-encoding", Code: "INVALID"},
		})
		return
	}
	if name == "" {
		response.BadRequest(w, r, "ingredient name is required", []models.FieldError{
			{Field: "name", Message: "must not be empty", Code: "REQUIRED"},
		})
		return
	}
	if len(name) > maxIngredientNameLength {
		response.BadRequest(w, r, "ingredient name is too long", []models.FieldError{
			{Field: "name", Message: "must be at most 200 characters", Code: "TOO_LONG"},
		})
		return
	}

	analysis, err := h.service.Analyze(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, ingredient.ErrNoData):
			response.ServiceUnavailable(w, r, "all ingredient data providers are unavailable")
		case errors.Is(err, ingredient.ErrNotFound):
			response.NotFound(w, r, "no data found for ingredient")
		default:
			response.InternalError(w, r, "ingredient analysis failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, toAnalysisResponse(analysis))
}

func toAnalysisResponse(a *ingredient.Analysis) models.IngredientAnalysis {
	out := models.IngredientAnalysis{
		Ingredient: a.Ingredient,
		Risk:       string(a.Risk),
		Summary:    a.Summary,
		Sources:    a.Sources,
		Degraded:   a.Degraded,
		AnalyzedAt: models.Timestamp(a.AnalyzedAt),
	}
	if out.Sources == nil {
		out.Sources = []string{}
	}

	if a.Compound != nil {
		out.Compound = &models.CompoundResponse{
			CID:              a.Compound.CID,
			IUPACName:        a.Compound.IUPACName,
			MolecularFormula: a.Compound.MolecularFormula,
			MolecularWeight:  a.Compound.MolecularWeight,
		}
	}

	for _, rec := range a.Recalls {
		item := models.RecallResponse{
			RecallNumber:       rec.RecallNumber,
			Classification:     rec.Classification,
			Status:             rec.Status,
			Reason:             rec.Reason,
			ProductDescription: rec.ProductDescription,
		}
		if !rec.InitiatedAt.IsZero() {
			ts := models.Timestamp(rec.InitiatedAt)
			item.InitiatedAt = &ts
		}
		out.Recalls = append(out.Recalls, item)
	}

	return out
}
