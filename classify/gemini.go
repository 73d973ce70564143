package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"dealradar/models"
)

// GeminiClassifier asks Gemini to pick a taxonomy category when the
// keyword table came up empty. Optional: only constructed when an API
// key is configured, and the pipeline treats any failure as "other".
type GeminiClassifier struct {
	apiKey string
	model  string
}

func NewGeminiClassifier(apiKey string) *GeminiClassifier {
	return &GeminiClassifier{apiKey: apiKey, model: "gemini-1.5-flash"}
}

// Classify sends the product text to Gemini and maps the reply back onto
// the closed taxonomy. Any answer outside the taxonomy is discarded.
func (g *GeminiClassifier) Classify(ctx context.Context, name, description string) (models.Category, error) {
	if g.apiKey == "" {
		return models.CategoryOther, fmt.Errorf("gemini api key is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return models.CategoryOther, fmt.Errorf("failed to create gemini client: %v", err)
	}
	defer client.Close()

	categories := Categories()
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}

	prompt := fmt.Sprintf(
		"Classify this product into exactly one of these categories: %s.\nReply with the category name only, nothing else.\n\nProduct: %s\n%s",
		strings.Join(names, ", "), name, description)

	model := client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return models.CategoryOther, fmt.Errorf("gemini request failed: %v", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return models.CategoryOther, fmt.Errorf("gemini returned no content")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return models.CategoryOther, fmt.Errorf("gemini returned a non-text part")
	}

	answer := models.Category(strings.ToLower(strings.TrimSpace(string(text))))
	for _, c := range categories {
		if answer == c {
			return c, nil
		}
	}
	log.WithField("answer", string(answer)).Debug("gemini answered outside the taxonomy")
	return models.CategoryOther, nil
}
