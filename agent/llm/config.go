package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
	openrouterx "github.com/tala-demo/recoveries-agent/pkg/openrouter"
)

// Role selects which model configuration a graph node runs with. Negotiation
// wants a conversational temperature; extraction wants a deterministic one.
type Role string

const (
	RoleNegotiation Role = "negotiation"
	RoleExtraction  Role = "extraction"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"anthropic/claude-sonnet-4"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	ExtractionModel       string  `envconfig:"EXTRACTION_MODEL" split_words:"true"`
	ExtractionTemperature float32 `envconfig:"EXTRACTION_TEMPERATURE" split_words:"true" default:"0"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

func (c Config) OpenRouterFor(role Role) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	if role == RoleExtraction {
		if v := strings.TrimSpace(c.ExtractionModel); v != "" {
			modelName = v
		}
		if c.ExtractionTemperature >= 0 {
			temp = c.ExtractionTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
