// Package llm adapts langchaingo chat models to the chat collaborator.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/raphaelgruber/ordermatters/internal/chat"
	"github.com/raphaelgruber/ordermatters/internal/config"
)

// ErrFatalAPI marks provider failures that retrying cannot fix:
// exhausted credit, quota or rate limits, and rejected credentials.
var ErrFatalAPI = errors.New("fatal language model API error")

var fatalMarkers = []string{
	"credit balance",
	"rate limit",
	"quota exceeded",
	"billing",
	"invalid api key",
	"authentication",
	"unauthorized",
	"401",
	"403",
}

func isFatalAPIError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range fatalMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func wrapFatalError(err error) error {
	if isFatalAPIError(err) {
		return fmt.Errorf("%w: %w", ErrFatalAPI, err)
	}
	return err
}

// UsageRecorder receives timing and token counts of each request.
type UsageRecorder interface {
	RecordLLMUsage(op string, duration time.Duration, inputTokens, outputTokens int64)
}

// OpGenerate is the operation name passed to a UsageRecorder.
const OpGenerate = "llm_generate"

// Model wraps a langchaingo model for conversational answers.
type Model struct {
	llm       llms.Model
	modelName string
	logger    *slog.Logger
	recorder  UsageRecorder
}

// NewModel creates a model for the configured provider.
func NewModel(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderBedrock:
		awsCfg, cfgErr := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if cfgErr != nil {
			return nil, fmt.Errorf("load aws config: %w", cfgErr)
		}
		model, err = bedrock.New(
			bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
			bedrock.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return NewModelFrom(model, cfg.LLMModel, logger), nil
}

// NewModelFrom wraps an existing langchaingo model.
func NewModelFrom(model llms.Model, name string, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{llm: model, modelName: name, logger: logger}
}

// WithRecorder makes m report usage of every successful request to r.
func (m *Model) WithRecorder(r UsageRecorder) *Model {
	m.recorder = r
	return m
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

// Reply answers question given a system context and the prior turns.
// Error entries of the history are not sent.
func (m *Model) Reply(ctx context.Context, system string, history []chat.Message, question string) (string, error) {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, system))
	for _, msg := range history {
		if msg.IsError {
			continue
		}
		messages = append(messages, llms.TextParts(messageType(msg.Role), msg.Text))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, question))

	start := time.Now()
	response, err := m.llm.GenerateContent(ctx, messages)
	if err != nil {
		err = wrapFatalError(err)
		if errors.Is(err, ErrFatalAPI) {
			m.logger.Error("language model rejected request", "model", m.modelName, "error", err)
		}
		return "", fmt.Errorf("generate reply: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	choice := response.Choices[0]
	if m.recorder != nil {
		in, out := tokenUsage(choice.GenerationInfo)
		m.recorder.RecordLLMUsage(OpGenerate, time.Since(start), in, out)
	}

	return choice.Content, nil
}

// tokenUsage reads token counts from provider generation info. Providers
// disagree on key names, so several are tried.
func tokenUsage(info map[string]any) (int64, int64) {
	in := firstCount(info, "PromptTokens", "InputTokens", "input_tokens", "prompt_tokens")
	out := firstCount(info, "CompletionTokens", "OutputTokens", "output_tokens", "completion_tokens")
	return in, out
}

func firstCount(info map[string]any, keys ...string) int64 {
	for _, key := range keys {
		switch v := info[key].(type) {
		case int:
			return int64(v)
		case int32:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
	}
	return 0
}

func messageType(role chat.Role) llms.ChatMessageType {
	if role == chat.RoleUser {
		return llms.ChatMessageTypeHuman
	}
	return llms.ChatMessageTypeAI
}
