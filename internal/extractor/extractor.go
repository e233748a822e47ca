// Package extractor reads receipt photos with Gemini and returns the
// receipt as a JSON submission.
package extractor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/receipt-bot/internal/config"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// contentGenerator sends one image plus prompt and returns the reply text.
type contentGenerator interface {
	Generate(ctx context.Context, imageFormat string, image []byte, prompt string) (string, error)
	Close() error
}

// Extractor turns photos into JSON text.
type Extractor struct {
	gen     contentGenerator
	prompt  string
	model   string
	timeout time.Duration
	logger  logging.Logger
}

// New connects to Gemini with the configured API key.
func New(ctx context.Context, cfg config.AIConfig, catalog *models.CategoryCatalog, logger logging.Logger) (*Extractor, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required when AI extraction is enabled")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	gen := &geminiGenerator{client: client, model: client.GenerativeModel(cfg.Model)}
	return newExtractor(gen, cfg, catalog, logger), nil
}

func newExtractor(gen contentGenerator, cfg config.AIConfig, catalog *models.CategoryCatalog, logger logging.Logger) *Extractor {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Extractor{
		gen:     gen,
		prompt:  BuildPrompt(cfg.PromptTemplate, catalog),
		model:   cfg.Model,
		timeout: timeout,
		logger:  logger.WithField(logging.FieldComponent, "extractor"),
	}
}

// BuildPrompt appends the allowed category keys to template.
func BuildPrompt(template string, catalog *models.CategoryCatalog) string {
	if catalog == nil {
		return template
	}
	keys := make([]string, 0, len(catalog.All()))
	for _, c := range catalog.All() {
		keys = append(keys, c.Key)
	}
	return fmt.Sprintf("%s\n\nUse exactly one of these category values for each item: %s.\nReply with the JSON only.",
		strings.TrimSpace(template), strings.Join(keys, ", "))
}

// Prompt is the full text sent with each photo.
func (e *Extractor) Prompt() string { return e.prompt }

// Extract sends the photo and returns the model's JSON, with any Markdown
// code fence removed.
func (e *Extractor) Extract(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("empty image")
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	reply, err := e.gen.Generate(ctx, imageFormat(mimeType), image, e.prompt)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	e.logger.Debug("Receipt photo extracted",
		logging.F(logging.FieldModel, e.model),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return StripCodeFences(reply), nil
}

// Close releases the Gemini client.
func (e *Extractor) Close() error {
	return e.gen.Close()
}

// imageFormat maps a MIME type to the short format genai expects.
func imageFormat(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/heic":
		return "heic"
	default:
		return "jpeg"
	}
}

// StripCodeFences removes a surrounding ``` or ```json fence.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

type geminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func (g *geminiGenerator) Generate(ctx context.Context, format string, image []byte, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.ImageData(format, image), genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from Gemini API")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text in Gemini response")
	}
	return b.String(), nil
}

func (g *geminiGenerator) Close() error {
	return g.client.Close()
}
