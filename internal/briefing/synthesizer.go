package briefing

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/briefing-cli/internal/config"
	"github.com/sells-group/briefing-cli/internal/model"
	"github.com/sells-group/briefing-cli/internal/resilience"
	"github.com/sells-group/briefing-cli/pkg/anthropic"
)

// notConfiguredError tags fallback documents produced without a model call.
const notConfiguredError = "Anthropic API not configured"

// Synthesizer turns an intelligence snapshot plus context record into a
// briefing document. A nil client puts the synthesizer in not-configured
// mode: no network calls, immediate fallback document.
type Synthesizer struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

func NewSynthesizer(client anthropic.Client, cfg config.AnthropicConfig) *Synthesizer {
	return &Synthesizer{
		client:      client,
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
	}
}

// Synthesize always returns a usable document. A contract-violating reply
// gets one fresh call; any other failure (transport, auth, quota, retry
// exhaustion) degrades to the deterministic fallback with Error set to the
// cause. Callers never see an error from this step.
func (s *Synthesizer) Synthesize(ctx context.Context, snap model.IntelligenceSnapshot, record model.ContextRecord) *model.BriefingDocument {
	if s.client == nil {
		zap.L().Warn("briefing: completion backend not configured, returning fallback")
		return FallbackDocument(notConfiguredError)
	}

	userPrompt := buildUserPrompt(snap, record)

	cfg := resilience.RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: -1, // fresh call immediately, no backoff
		ShouldRetry:    IsContractViolation,
		OnRetry:        resilience.RetryLogger("anthropic", "synthesize briefing"),
	}

	doc, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*model.BriefingDocument, error) {
		resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       s.model,
			MaxTokens:   s.maxTokens,
			System:      systemPrompt,
			Messages:    []anthropic.Message{{Role: "user", Content: userPrompt}},
			Temperature: &s.temperature,
		})
		if err != nil {
			return nil, err
		}
		resp.Usage.LogCost(s.model, "briefing")
		return parseDocument(resp.Text())
	})
	if err != nil {
		zap.L().Error("briefing: synthesis failed, returning fallback",
			zap.String("class", resilience.ClassifyError(err)),
			zap.Error(err),
		)
		return FallbackDocument(err.Error())
	}

	zap.L().Info("briefing: document synthesized",
		zap.Int("key_updates", len(doc.KeyUpdates)),
		zap.Int("conversation_starters", len(doc.ConversationStarters)),
		zap.Int("potential_objections", len(doc.PotentialObjections)),
	)
	return doc
}

// FallbackDocument is the deterministic document returned whenever synthesis
// cannot produce a model-generated one. Generic but immediately usable by a
// sales representative.
func FallbackDocument(cause string) *model.BriefingDocument {
	return &model.BriefingDocument{
		CompanyProfile: "Unable to generate full briefing due to technical issues. Manual research recommended for this lead.",
		KeyUpdates: []string{
			"Briefing generation encountered technical difficulties",
			"Manual lead research advised",
		},
		LeadAngle: "Proceed with standard qualification approach while technical issues are resolved",
		ConversationStarters: []string{
			"Tell me about your current business challenges",
			"What solutions are you currently evaluating?",
			"What's your timeline for implementing new solutions?",
		},
		PotentialObjections: []model.ObjectionEntry{
			{
				Objection: "Not interested in demos right now",
				Response:  "I understand timing is important. Can we schedule a brief 10-minute call to understand your needs better?",
			},
			{
				Objection: "We're happy with our current solution",
				Response:  "That's great to hear. I'd love to learn what's working well and see if we can add additional value.",
			},
		},
		Error: cause,
	}
}
