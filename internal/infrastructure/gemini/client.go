package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nutriplan/backend/internal/domain"
)

// Client calls the Gemini generateContent REST API and maps its free-form
// text output into schema-validated domain values. It is the concrete
// implementation of domain.ContentGateway.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	rateLimiter *rate.Limiter
	debug       bool
}

// request/response shapes for the generateContent endpoint
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// NewClient creates a Gemini API client. requestsPerMinute bounds outbound
// calls client-side so a burst of swap requests cannot exhaust the API quota.
func NewClient(apiKey, baseURL, model string, requestsPerMinute int) *Client {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 15
	}
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		rateLimiter: limiter,
	}
}

// SetDebug enables verbose request/response logging.
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// GeneratePlan asks the model for a full multi-day plan and validates the
// result against the plan schema before returning it.
func (c *Client) GeneratePlan(ctx context.Context, req *domain.PlanRequest) (*domain.NutritionPlanResponse, error) {
	if req == nil || req.Days < 1 {
		return nil, domain.ErrInvalidRequest
	}

	text, err := c.generate(ctx, []part{{Text: buildPlanPrompt(req)}})
	if err != nil {
		return nil, err
	}

	var plan domain.NutritionPlanResponse
	if err := json.Unmarshal([]byte(extractJSON(text)), &plan); err != nil {
		log.Printf("[Gemini] plan decode error: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if err := validatePlan(&plan, req.Days); err != nil {
		return nil, err
	}
	return &plan, nil
}

// GenerateAlternativeMeal asks the model for a single replacement item and
// validates that it names a different dish within ±10% of the current
// item's calories.
func (c *Client) GenerateAlternativeMeal(ctx context.Context, req *domain.AlternativeMealRequest) (*domain.MealItem, error) {
	if req == nil || req.Current.Name == "" {
		return nil, domain.ErrInvalidRequest
	}

	text, err := c.generate(ctx, []part{{Text: buildAlternativePrompt(req)}})
	if err != nil {
		return nil, err
	}

	var item domain.MealItem
	if err := json.Unmarshal([]byte(extractJSON(text)), &item); err != nil {
		log.Printf("[Gemini] alternative decode error: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if err := validateAlternative(&item, &req.Current); err != nil {
		return nil, err
	}
	return &item, nil
}

// AnalyzeFood estimates nutrition for a described and/or photographed meal.
// At least one of description/imageBytes must be present.
func (c *Client) AnalyzeFood(ctx context.Context, description string, imageBytes []byte) (*domain.FoodAnalysis, error) {
	if strings.TrimSpace(description) == "" && len(imageBytes) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	parts := []part{{Text: buildAnalysisPrompt(description)}}
	if len(imageBytes) > 0 {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: http.DetectContentType(imageBytes),
			Data:     base64.StdEncoding.EncodeToString(imageBytes),
		}})
	}

	text, err := c.generate(ctx, parts)
	if err != nil {
		return nil, err
	}

	var analysis domain.FoodAnalysis
	if err := json.Unmarshal([]byte(extractJSON(text)), &analysis); err != nil {
		log.Printf("[Gemini] analysis decode error: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if err := validateAnalysis(&analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// generate sends one generateContent request, retrying transient failures
// up to 3 times with exponential backoff, and returns the first candidate's
// text.
func (c *Client) generate(ctx context.Context, parts []part) (string, error) {
	payload, err := json.Marshal(generateRequest{Contents: []content{{Parts: parts}}})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter error: %w", err)
		}

		body, status, err := c.doRequest(ctx, reqURL, payload)
		if err != nil {
			log.Printf("[Gemini] request error (attempt %d): %v", attempt, err)
			lastErr = err
			if sleepErr := sleepCtx(ctx, exponentialBackoff(attempt)); sleepErr != nil {
				return "", sleepErr
			}
			continue
		}

		if status != http.StatusOK {
			log.Printf("[Gemini] API error (attempt %d) - Status: %d, Body: %s", attempt, status, truncate(string(body), 500))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrGatewayFailure, status)
			// 4xx other than 429 will not improve on retry
			if status >= 400 && status < 500 && status != http.StatusTooManyRequests {
				return "", lastErr
			}
			if sleepErr := sleepCtx(ctx, exponentialBackoff(attempt)); sleepErr != nil {
				return "", sleepErr
			}
			continue
		}

		var resp generateResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
		}
		if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
			return "", fmt.Errorf("%w: no candidates in response", domain.ErrMalformedResponse)
		}

		text := resp.Candidates[0].Content.Parts[0].Text
		if c.debug {
			log.Printf("[Gemini] response text: %s", truncate(text, 2000))
		}
		return text, nil
	}

	return "", lastErr
}

func (c *Client) doRequest(ctx context.Context, reqURL string, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "NutriPlan/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrGatewayFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrGatewayFailure, err)
	}
	return body, resp.StatusCode, nil
}

// exponentialBackoff returns 500ms, 1s, 2s for attempts 1, 2, 3.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// sleepCtx sleeps for d or returns early when ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// extractJSON strips markdown code fences and slices the outermost JSON
// object; the model occasionally wraps its output in prose despite
// instructions.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		text = text[start : end+1]
	}
	return text
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
