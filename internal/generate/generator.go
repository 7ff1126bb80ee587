// Package generate produces canvas record batches from a natural-language
// prompt using Claude. The model's output is normalized before it enters the
// session: markdown fences are stripped, the envelope is parsed, and records
// without a usable id get one synthesized, so downstream mutations can always
// address them.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/ajitpratap0/canvas-engine/internal/fields"
	"github.com/ajitpratap0/canvas-engine/internal/models"
	"github.com/ajitpratap0/canvas-engine/pkg/tokenizer"
	"github.com/ajitpratap0/canvas-engine/pkg/xmlutil"
)

// promptTokenBudget caps the user's request inside the prompt template so an
// oversized request can not crowd out the format instructions.
const promptTokenBudget = 2000

// generatePromptTemplate asks Claude for a record batch in the canvas wire
// format. User content is injected via an XML tag to prevent prompt
// injection attacks.
const generatePromptTemplate = `You are a data generation system for a canvas application. Produce a dataset matching the request below.

Output a single JSON object of the form:
{"entityRecords": [...], "metadata": {"title": "...", "enabledViews": ["table", "kanban", "gantt"]}}

Each record is an object mapping field keys to field objects:
{"apiName": "<key>", "label": "<Display Name>", "value": <value>, "type": "<text|textarea|date|dropdown|number>", "allowedValues": [...]}

Rules:
- Give every record the same field keys.
- Include exactly one "dropdown" field with 3-5 allowedValues; repeat the same allowedValues on every record.
- Include at least one "date" field with ISO dates (YYYY-MM-DD).
- Include one "text" field holding a short unique id per record.
- Generate exactly %d records.

<request>%s</request>

Output only the JSON object:`

// Generator produces record batches using the Claude API.
type Generator struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
	logger    *slog.Logger
}

// NewGenerator creates a generator backed by the Claude API.
func NewGenerator(apiKey, model string, maxTokens int, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Generator{
		client:    &c,
		model:     model,
		maxTokens: int64(maxTokens),
		logger:    logger,
	}
}

// Generate asks Claude for count records matching the prompt and normalizes
// the response into a batch.
func (g *Generator) Generate(ctx context.Context, prompt string, count int) (*models.Batch, error) {
	prompt = tokenizer.TruncateToTokenBudget(prompt, promptTokenBudget)
	fullPrompt := fmt.Sprintf(generatePromptTemplate, count, xmlutil.Escape(prompt))

	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(fullPrompt),
			),
		},
		System: []anthropic.TextBlockParam{
			{Text: "You are a precise data generation system. Output only valid JSON."},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	var responseText string
	for i := range resp.Content {
		if resp.Content[i].Type == "text" {
			responseText = resp.Content[i].Text
			break
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("generate: empty response from Claude")
	}

	g.logger.Debug("generation response", "bytes", len(responseText))

	batch, err := Normalize([]byte(responseText))
	if err != nil {
		return nil, err
	}
	g.logger.Info("generated records", "count", len(batch.Records))
	return batch, nil
}

// Normalize turns raw model output into a batch: strips markdown fences,
// parses the envelope, and synthesizes a recordId field on records that
// carry no usable id.
func Normalize(raw []byte) (*models.Batch, error) {
	batch, err := models.ParseBatch(stripFences(raw))
	if err != nil {
		return nil, fmt.Errorf("generate: parsing response: %w", err)
	}

	inferrer := fields.NewHeuristicInferrer(nil)
	roles := inferrer.Infer(batch.Records)
	for i, rec := range batch.Records {
		if rec.RecordID() != "" || fields.String(rec, roles.ID) != "" {
			continue
		}
		batch.Records[i] = withSyntheticID(rec)
	}
	return batch, nil
}

// withSyntheticID rebuilds the record with a recordId field appended.
func withSyntheticID(rec models.Record) models.Record {
	fs := make([]models.Field, 0, rec.Len()+1)
	for _, k := range rec.Keys() {
		f, _ := rec.Field(k)
		fs = append(fs, *f)
	}
	fs = append(fs, models.NewField("recordId", "Record ID", uuid.NewString(), models.FieldTypeID, nil))
	return models.NewRecord(fs...)
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return raw
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the language tag line, e.g. "json".
	if idx := strings.IndexByte(s, '\n'); idx >= 0 && !strings.ContainsAny(s[:idx], "{[") {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}
