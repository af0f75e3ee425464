package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/google/uuid"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/utils"
	"go.uber.org/zap"
)

// BedrockClassifier is an implementation of the Classifier interface using
// Amazon Bedrock. Bedrock has no schema-constrained output mode, so the
// JSON contract is restated in the prompt and enforced by parsing.
type BedrockClassifier struct {
	client        *bedrockruntime.Client
	modelID       string
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

// NewBedrockClassifier creates a new Bedrock classifier. A nil client
// means no AWS credentials resolved, and Classify fails fast.
func NewBedrockClassifier(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *BedrockClassifier {
	return &BedrockClassifier{
		client:        client,
		modelID:       modelID,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

const jsonContract = `Return a JSON object with exactly these fields:
- tag: string, one of the tags defined above
- confidence_score: number between 0 and 1
- cleaned_message: string
- extracted_name: string (empty when no name is explicitly mentioned)

Respond only with the JSON object and nothing else.`

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *BedrockClassifier) isAnthropicModel() bool {
	return strings.Contains(c.modelID, "anthropic")
}

// Classify submits the combined subject/body document and parses the
// model's JSON response into a Classification.
func (c *BedrockClassifier) Classify(ctx context.Context, subject, text *string) (*core.Classification, error) {
	if c.client == nil {
		return nil, core.ErrClassifierUnavailable
	}

	document := c.textProcessor.ProcessText(core.BuildDocument(subject, text), c.maxBodySize)
	prompt := core.SystemInstruction + "\n" + core.PromptContent(document) + "\n\n" + jsonContract

	var payload []byte
	var err error
	if c.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               fmt.Sprintf("\n\nHuman: %s\n\nAssistant:", prompt),
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to invoke Bedrock model: %v", core.ErrClassifierProvider, err)
	}

	var responseText string
	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(resp.Body, &claudeResp); err != nil {
			return nil, fmt.Errorf("%w: failed to unmarshal Claude response: %v", core.ErrClassifierProvider, err)
		}
		responseText = claudeResp.Completion
	} else {
		var genericResp struct {
			Completion string `json:"completion"`
			OutputText string `json:"outputText"`
		}
		if err := json.Unmarshal(resp.Body, &genericResp); err != nil {
			return nil, fmt.Errorf("%w: failed to unmarshal model response: %v", core.ErrClassifierProvider, err)
		}
		responseText = genericResp.Completion
		if responseText == "" {
			responseText = genericResp.OutputText
		}
	}

	parsed, err := parseClassifierResponse(responseText)
	if err != nil {
		return nil, err
	}

	return &core.Classification{
		Tag:             core.EmailTag(parsed.Tag),
		ConfidenceScore: parsed.ConfidenceScore,
		CleanedMessage:  parsed.CleanedMessage,
		ExtractedName:   parsed.ExtractedName,
		ModelUsed:       c.modelID,
		ClassifiedAt:    time.Now(),
		ProcessingID:    uuid.NewString(),
	}, nil
}

// parseClassifierResponse decodes the model output, falling back to the
// outermost JSON object when the completion carries surrounding prose.
func parseClassifierResponse(responseText string) (*classifierResponse, error) {
	var parsed classifierResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err == nil {
		return &parsed, nil
	}

	jsonStart := strings.Index(responseText, "{")
	jsonEnd := strings.LastIndex(responseText, "}")
	if jsonStart < 0 || jsonEnd < jsonStart {
		return nil, fmt.Errorf("%w: no JSON object in model response", core.ErrClassifierProvider)
	}
	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd+1]), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse model response as JSON: %v", core.ErrClassifierProvider, err)
	}
	return &parsed, nil
}
