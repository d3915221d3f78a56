// Package providers holds integrations with external services.
package providers

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/snapdiff/snapdiff/internal/domain/regression"
)

// OpenAIAnnotator produces a short reviewer-facing note for a significant
// regression. With no API key configured it is a no-op, annotation is an
// optional aid, never a gate.
type OpenAIAnnotator struct {
	client *openai.Client
}

// NewOpenAIAnnotator creates an annotator. An empty apiKey yields a disabled
// annotator that returns empty annotations.
func NewOpenAIAnnotator(apiKey string) *OpenAIAnnotator {
	if apiKey == "" {
		return &OpenAIAnnotator{}
	}
	return &OpenAIAnnotator{client: openai.NewClient(apiKey)}
}

// Enabled reports whether annotation requests will be sent.
func (a *OpenAIAnnotator) Enabled() bool {
	return a.client != nil
}

// Annotate summarizes a regression for reviewers. Errors are returned to the
// caller to log and ignore; a failed annotation never fails an analysis.
func (a *OpenAIAnnotator) Annotate(ctx context.Context, reg *regression.Regression) (string, error) {
	if a.client == nil {
		return "", nil
	}

	prompt := fmt.Sprintf(
		"A visual regression test found %.2f%% of pixels changed (%d of %dx%d) in test %q at viewport %q, step %q. "+
			"In one short sentence, suggest what kind of UI change this magnitude typically indicates.",
		reg.PercentageDifferent, reg.PixelsDifferent, reg.Width, reg.Height,
		reg.TestName, reg.Viewport, reg.StepName)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
		MaxTokens: 120,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}
