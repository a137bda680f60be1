package negotiator

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
	promptx "github.com/tala-demo/recoveries-agent/agent/prompt"
)

type extractorImpl struct {
	runner compose.Runnable[contractx.ExtractionRequest, extractionLLMOutput]

	systemPrompt string
}

type extractionLLMOutput struct {
	HasPTP      bool    `json:"has_ptp"`
	Amount      float64 `json:"amount,omitempty"`
	PaymentDate string  `json:"payment_date,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}

func newExtractor(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (*extractorImpl, error) {
	e := &extractorImpl{systemPrompt: systemPrompt}

	runner, err := compileStructuredGraph[contractx.ExtractionRequest, extractionLLMOutput](
		ctx, chatModel, e.assemble, "negotiator.extract_ptp")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrProvider, err)
	}
	e.runner = runner
	return e, nil
}

// Extract reads the transcript and returns the promise the customer agreed
// to, or nil when no explicit agreement exists.
func (e *extractorImpl) Extract(ctx context.Context, req contractx.ExtractionRequest) (*contractx.PTPDraft, error) {
	if len(req.Transcript) == 0 {
		return nil, nil
	}

	out, err := e.runner.Invoke(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: extraction invoke: %v", contractx.ErrProvider, err)
	}
	if !out.HasPTP {
		return nil, nil
	}
	if out.Amount == 0 || strings.TrimSpace(out.PaymentDate) == "" {
		return nil, nil
	}

	return &contractx.PTPDraft{
		Amount:      out.Amount,
		PaymentDate: strings.TrimSpace(out.PaymentDate),
		Notes:       strings.TrimSpace(out.Notes),
		Confidence:  out.Confidence,
	}, nil
}

func (e *extractorImpl) assemble(_ context.Context, req contractx.ExtractionRequest) ([]*schema.Message, error) {
	var body strings.Builder
	if strings.TrimSpace(req.CustomerContext) != "" {
		body.WriteString(req.CustomerContext)
		body.WriteString("\n\n")
	}
	body.WriteString(promptx.RenderTranscript(req.Today, req.Transcript))

	return []*schema.Message{
		schema.SystemMessage(e.systemPrompt),
		schema.UserMessage(body.String()),
	}, nil
}
