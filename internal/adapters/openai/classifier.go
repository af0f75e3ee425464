package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClassifier is an implementation of the Classifier interface using
// OpenAI chat completions in JSON mode.
type OpenAIClassifier struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// classifierResponse is the structured response expected from the model
type classifierResponse struct {
	Tag             string  `json:"tag"`
	ConfidenceScore float64 `json:"confidence_score"`
	CleanedMessage  string  `json:"cleaned_message"`
	ExtractedName   string  `json:"extracted_name"`
}

// NewOpenAIClassifier creates a new OpenAI classifier. With an empty API
// key the classifier is constructed disabled and every Classify call
// fails fast with ErrClassifierUnavailable.
func NewOpenAIClassifier(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIClassifier {
	c := &OpenAIClassifier{
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}

	if apiKey == "" {
		logger.Warn("No OpenAI API key configured, classifier disabled")
		return c
	}

	c.client = openai.NewClient(apiKey)
	return c
}

// jsonContract restates the response schema in the user prompt; OpenAI's
// JSON mode guarantees an object but not the field set.
const jsonContract = `Return a JSON object with exactly these fields:
- tag: string, one of the tags defined above
- confidence_score: number between 0 and 1
- cleaned_message: string
- extracted_name: string (empty when no name is explicitly mentioned)

Respond only with the JSON object and nothing else.`

// Classify submits the combined subject/body document and parses the
// model's JSON response into a Classification.
func (c *OpenAIClassifier) Classify(ctx context.Context, subject, text *string) (*core.Classification, error) {
	if c.client == nil {
		return nil, core.ErrClassifierUnavailable
	}

	document := c.textProcessor.ProcessText(core.BuildDocument(subject, text), c.maxBodySize)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: core.SystemInstruction,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: core.PromptContent(document) + "\n\n" + jsonContract,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create chat completion with OpenAI: %v", core.ErrClassifierProvider, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response from OpenAI", core.ErrClassifierProvider)
	}

	var parsed classifierResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse model response as JSON: %v", core.ErrClassifierProvider, err)
	}

	return &core.Classification{
		Tag:             core.EmailTag(parsed.Tag),
		ConfidenceScore: parsed.ConfidenceScore,
		CleanedMessage:  parsed.CleanedMessage,
		ExtractedName:   parsed.ExtractedName,
		ModelUsed:       c.modelName,
		ClassifiedAt:    time.Now(),
		ProcessingID:    resp.ID,
	}, nil
}
