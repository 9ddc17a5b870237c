package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/DavidBellamy/pips/puzzle"
)

// systemPrompt tells the model its one job.
const systemPrompt = `You convert a single NYT Pips screenshot into structured JSON.
Rules:
- Output must be VALID JSON that matches the provided JSON schema.
- Use zero-based row/col indices.
- Extract all valid board cells, the domino tray tiles, and regions with constraints:
    - type "equal" when all pips in the cage are identical (no value field)
    - type "notequal" when all pips in the cage differ (no value field)
    - type "greater_than" (value is an integer threshold the cage sum must exceed)
    - type "less_than" (value is an integer threshold the cage sum must stay below)
    - type "number" (value is an integer that the cage sum must equal)
    - type "none" when no badge is present.
- If uncertain, pick the most likely interpretation and remain schema-valid.`

// An Extractor holds the configuration for talking to the model.
// The zero value is not useful; use NewExtractor.
type Extractor struct {
	APIKey  string       // bearer token for the model API
	BaseURL string       // API root, without the trailing /chat/completions
	Model   string       // model name to request
	Retries int          // validation-failure retries after the first attempt
	Client  *http.Client // HTTP client to use
}

// NewExtractor builds an extractor from the environment:
// OPENAI_API_KEY (required to actually extract) and
// OPENAI_BASE_URL (defaulting to the OpenAI endpoint).
func NewExtractor() *Extractor {
	base := os.Getenv("OPENAI_BASE_URL")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	return &Extractor{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: base,
		Model:   "gpt-4o-mini",
		Retries: 1,
		Client:  http.DefaultClient,
	}
}

// ExtractFile reads a screenshot from disk and extracts the
// puzzle description it shows.
func (x *Extractor) ExtractFile(ctx context.Context, path string) (*puzzle.Summary, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read screenshot %q: %v", path, err)
	}
	return x.Extract(ctx, image)
}

// Extract sends a screenshot to the model and returns the
// validated puzzle description it extracts.  Payloads that fail
// schema or puzzle validation are retried, with the failure text
// handed back to the model, up to the configured retry count.
func (x *Extractor) Extract(ctx context.Context, image []byte) (*puzzle.Summary, error) {
	if x.APIKey == "" {
		return nil, fmt.Errorf("no API key configured (set OPENAI_API_KEY)")
	}
	dataURL := imageDataURL(image)
	var lastErr error
	for attempt := 0; attempt <= x.Retries; attempt++ {
		priorErrors := ""
		if lastErr != nil {
			priorErrors = lastErr.Error()
			log.WithFields(log.Fields{
				"attempt": attempt,
				"errors":  priorErrors,
			}).Info("retrying extraction")
		}
		payload, err := x.callModel(ctx, dataURL, priorErrors)
		if err != nil {
			// transport and API errors are terminal: retrying
			// with feedback only helps with bad payloads
			return nil, err
		}
		summary, err := ValidatePayload(payload)
		if err == nil {
			return summary, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("extraction failed after %d attempts: %v", x.Retries+1, lastErr)
}

// imageDataURL wraps raw image bytes as a base64 data URL, with
// the media type sniffed from the content.
func imageDataURL(image []byte) string {
	mime := http.DetectContentType(image)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)
}

/*

chat-completions wire format

*/

type chatRequest struct {
	Model          string          `json:"model"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Messages       []chatMessage   `json:"messages"`
}

type responseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type jsonSchemaFormat struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// callModel makes one chat-completions call and returns the raw
// response payload, before any validation.
func (x *Extractor) callModel(ctx context.Context, dataURL, priorErrors string) ([]byte, error) {
	instructions := "Extract the JSON for this puzzle."
	if priorErrors != "" {
		instructions = fmt.Sprintf(
			"Your previous JSON failed these checks:\n%s\nReturn corrected JSON that satisfies the schema.",
			priorErrors)
	}
	request := chatRequest{
		Model:       x.Model,
		Temperature: 0,
		MaxTokens:   2000,
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaFormat{
				Name:   "nyt_pips_extraction",
				Strict: true,
				Schema: json.RawMessage(puzzleSchema),
			},
		},
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: instructions},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			}},
		},
	}
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal model request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		strings.TrimRight(x.BaseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+x.APIKey)

	resp, err := x.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model call failed: %v", err)
	}
	defer resp.Body.Close()
	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("couldn't read model response: %v", err)
	}

	var response chatResponse
	if err := json.Unmarshal(responseBody, &response); err != nil {
		return nil, fmt.Errorf("couldn't decode model response (status %d): %v", resp.StatusCode, err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("model API error (status %d): %s", resp.StatusCode, response.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model API returned status %d", resp.StatusCode)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("model response has no choices")
	}
	return contentText(response.Choices[0].Message.Content)
}

// contentText flattens a message content field, which the API
// may deliver as a plain string or as a list of typed parts.
func contentText(content json.RawMessage) ([]byte, error) {
	var text string
	if err := json.Unmarshal(content, &text); err == nil {
		return []byte(text), nil
	}
	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(content, &parts); err != nil {
		return nil, fmt.Errorf("unrecognized message content shape: %s", content)
	}
	var sb strings.Builder
	for _, part := range parts {
		if part.Type == "text" || part.Type == "output_text" {
			sb.WriteString(part.Text)
		}
	}
	return []byte(sb.String()), nil
}
