package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Generator produces an answer from a system context, prior turns and a
// new question.
type Generator interface {
	Reply(ctx context.Context, system string, history []Message, question string) (string, error)
}

// Assistant runs full question cycles against a Generator.
type Assistant struct {
	gen     Generator
	system  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewAssistant creates an assistant. briefing is the fixed summary the
// model answers from. A zero timeout means no deadline beyond ctx.
func NewAssistant(gen Generator, briefing string, timeout time.Duration, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		gen:     gen,
		system:  SystemPrompt(briefing),
		timeout: timeout,
		logger:  logger,
	}
}

// SystemPrompt wraps the briefing in answering instructions.
func SystemPrompt(briefing string) string {
	return fmt.Sprintf(`You are a helpful research assistant and an expert on the study summarized below.

%s

Answer questions concisely and accurately based ONLY on this information. If you don't know, say so.`, briefing)
}

// Ask submits question to conv, waits for the generator and records the
// outcome. On a generator failure the conversation gets a terminal error
// message, which is returned together with the wrapped cause.
func (a *Assistant) Ask(ctx context.Context, conv *Conversation, question string) (Message, error) {
	history, err := conv.Submit(question)
	if err != nil {
		return Message{}, err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	answer, genErr := a.gen.Reply(ctx, a.system, history, question)
	if genErr != nil {
		a.logger.Warn("chat request failed", "error", genErr, "duration_ms", time.Since(start).Milliseconds())
		msg, err := conv.Fail(genErr)
		if err != nil {
			return Message{}, err
		}
		return msg, fmt.Errorf("generate answer: %w", genErr)
	}

	a.logger.Debug("chat answered", "duration_ms", time.Since(start).Milliseconds(), "chars", len(answer))
	return conv.Receive(answer)
}
