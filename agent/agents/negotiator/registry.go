package negotiator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
	llmx "github.com/tala-demo/recoveries-agent/agent/llm"
	promptx "github.com/tala-demo/recoveries-agent/agent/prompt"
)

type registryImpl struct {
	negotiator contractx.Negotiator
	extractor  contractx.Extractor
}

func (r *registryImpl) Negotiator() contractx.Negotiator {
	return r.negotiator
}

func (r *registryImpl) Extractor() contractx.Extractor {
	return r.extractor
}

// NewRegistry builds both model-backed agents. Prompts resolve once at
// startup; restart to pick up remote prompt edits outside the TTL.
func NewRegistry(
	ctx context.Context,
	cfg llmx.Config,
	prompts *promptx.Loader,
	tools []*schema.ToolInfo,
) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	systemPrompt, err := prompts.Load(ctx, promptx.SlugSystem)
	if err != nil {
		return nil, fmt.Errorf("load system prompt: %w", err)
	}
	extractPrompt, err := prompts.Load(ctx, promptx.SlugExtractPTP)
	if err != nil {
		return nil, fmt.Errorf("load extraction prompt: %w", err)
	}

	negotiationModelCfg := cfg.OpenRouterFor(llmx.RoleNegotiation)
	negotiationModel, err := negotiationModelCfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create negotiation model: %v", contractx.ErrProvider, err)
	}
	extractionModelCfg := cfg.OpenRouterFor(llmx.RoleExtraction)
	extractionModel, err := extractionModelCfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create extraction model: %v", contractx.ErrProvider, err)
	}

	negotiator, err := newNegotiator(ctx, negotiationModel, systemPrompt, tools)
	if err != nil {
		return nil, err
	}
	extractor, err := newExtractor(ctx, extractionModel, extractPrompt)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		negotiator: negotiator,
		extractor:  extractor,
	}, nil
}
