// Package querygen generates the search queries a business is measured
// against, using Claude. The ranking engine treats it as an injected
// collaborator and only ever needs one primary and one broader query.
package querygen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/ibrhmmrana/hunter2.0-sub001/internal/model"
)

// Generator produces search queries for a business.
type Generator interface {
	// PrimaryQuery returns the single highest-value search query for
	// the business, or "" when no sensible query exists.
	PrimaryQuery(ctx context.Context, b model.Business) (string, error)
	// BroaderQuery returns a geographically/categorically broader
	// query, used when the primary query is a dead end.
	BroaderQuery(ctx context.Context, b model.Business) (string, error)
}

const primaryPrompt = `You suggest the single most valuable local search query for a business: the phrase a high-intent customer would type into a map search. Include the business's locality when known. Keep it under 8 words.

Respond with ONLY valid JSON, no other text:
{"query": "..."}`

const broaderPrompt = `You suggest a broader local search query for a business: drop niche qualifiers and narrow localities, keep the core category and the widest useful locality. Keep it under 6 words.

Respond with ONLY valid JSON, no other text:
{"query": "..."}`

type queryResponse struct {
	Query string `json:"query"`
}

// claudeGenerator implements Generator using the official SDK.
type claudeGenerator struct {
	client sdk.Client
	model  string
}

// NewClaudeGenerator creates a Generator backed by the Anthropic API.
func NewClaudeGenerator(apiKey, model string) Generator {
	return &claudeGenerator{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (g *claudeGenerator) PrimaryQuery(ctx context.Context, b model.Business) (string, error) {
	return g.generate(ctx, primaryPrompt, b)
}

func (g *claudeGenerator) BroaderQuery(ctx context.Context, b model.Business) (string, error) {
	return g.generate(ctx, broaderPrompt, b)
}

func (g *claudeGenerator) generate(ctx context.Context, systemPrompt string, b model.Business) (string, error) {
	userMsg := describeBusiness(b)

	msg, err := g.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(g.model),
		MaxTokens: 128,
		System:    []sdk.TextBlockParam{{Text: systemPrompt}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(userMsg)),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "querygen: claude request")
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return "", eris.New("querygen: empty claude response")
	}

	return ParseQueryJSON(text)
}

// ParseQueryJSON extracts the query from a model response that should
// be bare JSON but may carry surrounding text.
func ParseQueryJSON(text string) (string, error) {
	jsonStart := strings.Index(text, "{")
	jsonEnd := strings.LastIndex(text, "}")
	if jsonStart < 0 || jsonEnd < 0 || jsonEnd <= jsonStart {
		return "", eris.Errorf("querygen: no JSON in response: %s", text)
	}

	var result queryResponse
	if err := json.Unmarshal([]byte(text[jsonStart:jsonEnd+1]), &result); err != nil {
		return "", eris.Wrap(err, "querygen: parse response JSON")
	}
	return strings.TrimSpace(result.Query), nil
}

// describeBusiness renders the business facts the model needs.
func describeBusiness(b model.Business) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Business name: %s\n", b.Name)
	if c := b.CategoryLabel(); c != "" {
		fmt.Fprintf(&sb, "Category: %s\n", c)
	}
	if b.Suburb != "" {
		fmt.Fprintf(&sb, "Suburb: %s\n", b.Suburb)
	}
	if b.City != "" {
		fmt.Fprintf(&sb, "City: %s\n", b.City)
	}
	return sb.String()
}
