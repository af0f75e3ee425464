package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClassifier is an implementation of the Classifier interface using
// Google Gemini with a constrained JSON response schema.
type GeminiClassifier struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// classifierResponse is the structured response the model is constrained to
type classifierResponse struct {
	Tag             string  `json:"tag"`
	ConfidenceScore float64 `json:"confidence_score"`
	CleanedMessage  string  `json:"cleaned_message"`
	ExtractedName   string  `json:"extracted_name"`
}

// responseSchema mirrors the classifierResponse shape. The tag property is
// a closed enum so the model cannot invent categories.
func responseSchema() *genai.Schema {
	tags := core.AllTags()
	enum := make([]string, len(tags))
	for i, tag := range tags {
		enum[i] = string(tag)
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			core.FieldTag: {
				Type:        genai.TypeString,
				Description: "Classification tag.",
				Enum:        enum,
			},
			core.FieldConfidenceScore: {
				Type:        genai.TypeNumber,
				Description: "0 to 1 score.",
			},
			core.FieldCleanedMessage: {
				Type:        genai.TypeString,
				Description: "The core message without signatures/headers.",
			},
			core.FieldExtractedName: {
				Type:        genai.TypeString,
				Description: "The user's name if explicitly mentioned in the message; otherwise empty.",
			},
		},
		Required: []string{
			core.FieldTag,
			core.FieldConfidenceScore,
			core.FieldCleanedMessage,
			core.FieldExtractedName,
		},
	}
}

// NewGeminiClassifier creates a new Gemini classifier. An empty API key is
// not an error here: the classifier is constructed disabled and fails fast
// on the first Classify call, matching the configured-or-nothing contract.
func NewGeminiClassifier(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiClassifier, error) {
	c := &GeminiClassifier{
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}

	if apiKey == "" {
		logger.Warn("No Gemini API key configured, classifier disabled")
		return c, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = responseSchema()
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(core.SystemInstruction)},
	}

	c.client = client
	c.model = model
	return c, nil
}

// Close closes the Gemini client
func (c *GeminiClassifier) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Classify submits the combined subject/body document and parses the
// model's structured response into a Classification.
func (c *GeminiClassifier) Classify(ctx context.Context, subject, text *string) (*core.Classification, error) {
	if c.client == nil {
		return nil, core.ErrClassifierUnavailable
	}

	document := c.textProcessor.ProcessText(core.BuildDocument(subject, text), c.maxBodySize)

	resp, err := c.model.GenerateContent(ctx, genai.Text(core.PromptContent(document)))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate content with Gemini: %v", core.ErrClassifierProvider, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response from Gemini", core.ErrClassifierProvider)
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	parsed, err := parseClassifierResponse(responseText)
	if err != nil {
		return nil, err
	}

	return &core.Classification{
		Tag:             core.EmailTag(parsed.Tag),
		ConfidenceScore: parsed.ConfidenceScore,
		CleanedMessage:  parsed.CleanedMessage,
		ExtractedName:   parsed.ExtractedName,
		ModelUsed:       c.modelName,
		ClassifiedAt:    time.Now(),
		ProcessingID:    uuid.NewString(),
	}, nil
}

// parseClassifierResponse decodes the model output, falling back to the
// outermost JSON object when the response carries surrounding prose.
func parseClassifierResponse(responseText string) (*classifierResponse, error) {
	var parsed classifierResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err == nil {
		return &parsed, nil
	}

	// Try to extract JSON from the text response
	jsonStart := -1
	jsonEnd := -1
	for i := 0; i < len(responseText); i++ {
		if responseText[i] == '{' {
			jsonStart = i
			break
		}
	}
	for i := len(responseText) - 1; i >= 0; i-- {
		if responseText[i] == '}' {
			jsonEnd = i + 1
			break
		}
	}

	if jsonStart < 0 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("%w: no JSON object in model response", core.ErrClassifierProvider)
	}
	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse model response as JSON: %v", core.ErrClassifierProvider, err)
	}
	return &parsed, nil
}
