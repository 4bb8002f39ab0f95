package ingredient

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ArielSanroj/mommyshops-sub003/internal/provider/resilience"
)

// Predefined errors for ingredient analysis.
var (
	// ErrNotFound indicates a provider has no record of the ingredient.
	ErrNotFound = errors.New("ingredient not found")

	// ErrNoData indicates no provider could contribute any data.
	ErrNoData = errors.New("no provider data available")
)

// CompoundSource resolves an ingredient name to its chemical identity.
type CompoundSource interface {
	CompoundByName(ctx context.Context, name string) (*CompoundProperties, error)
}

// RecallSource finds enforcement reports mentioning an ingredient.
type RecallSource interface {
	RecallsForIngredient(ctx context.Context, name string, limit int) ([]Recall, error)
}

// Summarizer produces a human-readable safety summary of the gathered data.
type Summarizer interface {
	Summarize(ctx context.Context, name string, compound *CompoundProperties, recalls []Recall) (string, error)
}

// ServiceConfig holds the dependencies for the analysis service.
type ServiceConfig struct {
	Compounds  CompoundSource
	Recalls    RecallSource
	Summarizer Summarizer
	Logger     zerolog.Logger

	// RecallLimit caps how many enforcement reports are fetched per
	// ingredient. Default: 10
	RecallLimit int
}

// Service aggregates ingredient safety data from the external providers.
// Each provider call goes through the resilient client owned by the
// provider's HTTP layer; a tripped breaker or exhausted retry degrades the
// analysis instead of failing it outright.
type Service struct {
	compounds   CompoundSource
	recalls     RecallSource
	summarizer  Summarizer
	log         zerolog.Logger
	recallLimit int
}

// NewService creates an analysis service.
func NewService(cfg ServiceConfig) *Service {
	limit := cfg.RecallLimit
	if limit == 0 {
		limit = 10
	}

	return &Service{
		compounds:   cfg.Compounds,
		recalls:     cfg.Recalls,
		summarizer:  cfg.Summarizer,
		log:         cfg.Logger,
		recallLimit: limit,
	}
}

// Analyze gathers compound properties, recalls and an AI summary for the
// named ingredient. Provider failures are tolerated per provider: the
// analysis carries whatever data was available, naming the degraded
// sources. It returns ErrNoData only when every provider came up empty.
func (s *Service) Analyze(ctx context.Context, name string) (*Analysis, error) {
	name = strings.TrimSpace(name)

	analysis := &Analysis{
		Ingredient: name,
		Risk:       RiskUnknown,
		AnalyzedAt: time.Now(),
	}

	if s.compounds != nil {
		compound, err := s.compounds.CompoundByName(ctx, name)
		switch {
		case err == nil:
			analysis.Compound = compound
			analysis.Sources = append(analysis.Sources, "pubchem")
		case errors.Is(err, ErrNotFound):
			s.log.Debug().Str("ingredient", name).Msg("no compound record")
		default:
			s.logProviderFailure(name, "pubchem", err)
			analysis.Degraded = append(analysis.Degraded, "pubchem")
		}
	}

	if s.recalls != nil {
		recalls, err := s.recalls.RecallsForIngredient(ctx, name, s.recallLimit)
		if err != nil {
			s.logProviderFailure(name, "fda", err)
			analysis.Degraded = append(analysis.Degraded, "fda")
		} else {
			analysis.Recalls = recalls
			analysis.Sources = append(analysis.Sources, "fda")
		}
	}

	analysis.Risk = classifyRisk(analysis)

	if s.summarizer != nil {
		summary, err := s.summarizer.Summarize(ctx, name, analysis.Compound, analysis.Recalls)
		if err != nil {
			s.logProviderFailure(name, "ollama", err)
			analysis.Degraded = append(analysis.Degraded, "ollama")
		} else {
			analysis.Summary = summary
			analysis.Sources = append(analysis.Sources, "ollama")
		}
	}

	if len(analysis.Sources) == 0 {
		if len(analysis.Degraded) > 0 {
			return nil, ErrNoData
		}
		return nil, ErrNotFound
	}

	return analysis, nil
}

// logProviderFailure distinguishes fail-fast rejections from exhausted
// retries in the logs; both degrade the analysis the same way.
func (s *Service) logProviderFailure(ingredient, provider string, err error) {
	event := s.log.Warn().
		Str("ingredient", ingredient).
		Str("provider", provider).
		Err(err)

	if errors.Is(err, resilience.ErrBreakerOpen) {
		event.Msg("provider unavailable, circuit breaker open")
		return
	}
	event.Msg("provider lookup failed")
}

// classifyRisk derives a risk level from the gathered data. Recall class I
// means a reasonable probability of serious harm; class II means temporary
// or reversible effects.
func classifyRisk(a *Analysis) RiskLevel {
	var classI, classII bool
	for _, r := range a.Recalls {
		switch strings.ToUpper(strings.TrimSpace(r.Classification)) {
		case "CLASS I":
			classI = true
		case "CLASS II":
			classII = true
		}
	}

	switch {
	case classI:
		return RiskHigh
	case classII:
		return RiskModerate
	case len(a.Recalls) > 0:
		return RiskModerate
	case a.Compound != nil:
		return RiskLow
	default:
		return RiskUnknown
	}
}
