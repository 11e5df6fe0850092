package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriplan/backend/internal/domain"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", "https://api.example.com", "gemini-2.0-flash", 15)

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.Equal(t, "gemini-2.0-flash", client.model)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

// candidateResponse wraps text the way the generateContent endpoint does
func candidateResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"text": text},
					},
				},
			},
		},
	}
}

func fakeGemini(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	// High per-minute budget so the limiter never blocks in tests
	client := NewClient("test-key", server.URL, "gemini-2.0-flash", 6000)
	return server, client
}

func planText(days int) string {
	plan := validPlan(days)
	data, _ := json.Marshal(plan)
	return string(data)
}

func TestGeneratePlan_Success(t *testing.T) {
	var gotPath string
	var gotBody generateRequest

	_, client := fakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(candidateResponse(planText(5)))
	})

	profile := testProfile()
	plan, err := client.GeneratePlan(context.Background(), &domain.PlanRequest{Profile: profile, Days: 5})

	require.NoError(t, err)
	assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", gotPath)
	assert.Len(t, plan.Days, 5)
	assert.Equal(t, "Day 1", plan.Days[0].Day)

	// Prompt carries the derived energy fields and the exact day count
	require.Len(t, gotBody.Contents, 1)
	require.NotEmpty(t, gotBody.Contents[0].Parts)
	prompt := gotBody.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "Daily calorie target: 1750 kcal")
	assert.Contains(t, prompt, `Exactly 5 days`)
	assert.Contains(t, prompt, "peanuts")
}

func TestGeneratePlan_MarkdownFencedResponse(t *testing.T) {
	_, client := fakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateResponse("```json\n" + planText(3) + "\n```"))
	})

	plan, err := client.GeneratePlan(context.Background(), &domain.PlanRequest{Profile: testProfile(), Days: 3})

	require.NoError(t, err)
	assert.Len(t, plan.Days, 3)
}

func TestGeneratePlan_MalformedText(t *testing.T) {
	_, client := fakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateResponse("sorry, I cannot help with that"))
	})

	_, err := client.GeneratePlan(context.Background(), &domain.PlanRequest{Profile: testProfile(), Days: 3})

	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGeneratePlan_WrongDayCount(t *testing.T) {
	_, client := fakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateResponse(planText(4)))
	})

	_, err := client.GeneratePlan(context.Background(), &domain.PlanRequest{Profile: testProfile(), Days: 7})

	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGeneratePlan_NoCandidates(t *testing.T) {
	_, client := fakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	})

	_, err := client.GeneratePlan(context.Background(), &domain.PlanRequest{Profile: testProfile(), Days: 3})

	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGeneratePlan_RetriesServerErrors(t *testing.T) {
	attempts := 0
	_, client := fakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(candidateResponse(planText(3)))
	})

	plan, err := client.GeneratePlan(context.Background(), &domain.PlanRequest{Profile: testProfile(), Days: 3})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Len(t, plan.Days, 3)
}

func TestGeneratePlan_NoRetryOnBadRequest(t *testing.T) {
	attempts := 0
	_, client := fakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.GeneratePlan(context.Background(), &domain.PlanRequest{Profile: testProfile(), Days: 3})

	assert.ErrorIs(t, err, domain.ErrGatewayFailure)
	assert.Equal(t, 1, attempts)
}

func TestGenerateAlternativeMeal_Success(t *testing.T) {
	replacement := domain.MealItem{
		Name:     "Salmon rice bowl",
		Calories: 650,
		Macros:   domain.MacroNutrients{Protein: 35, Carbs: 55, Fats: 20},
	}
	data, _ := json.Marshal(replacement)

	var prompt string
	_, client := fakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
		var body generateRequest
		json.NewDecoder(r.Body).Decode(&body)
		prompt = body.Contents[0].Parts[0].Text
		json.NewEncoder(w).Encode(candidateResponse(string(data)))
	})

	item, err := client.GenerateAlternativeMeal(context.Background(), &domain.AlternativeMealRequest{
		Profile:  testProfile(),
		Current:  domain.MealItem{Name: "Chicken salad", Calories: 600},
		MealType: "Lunch",
	})

	require.NoError(t, err)
	assert.Equal(t, "Salmon rice bowl", item.Name)
	assert.Contains(t, prompt, "Chicken salad")
	assert.Contains(t, prompt, "within 10% of 600 kcal")
}

func TestGenerateAlternativeMeal_RejectsSameDish(t *testing.T) {
	same := domain.MealItem{Name: "Chicken salad", Calories: 600}
	data, _ := json.Marshal(same)

	_, client := fakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateResponse(string(data)))
	})

	_, err := client.GenerateAlternativeMeal(context.Background(), &domain.AlternativeMealRequest{
		Profile: testProfile(),
		Current: domain.MealItem{Name: "Chicken salad", Calories: 600},
	})

	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestAnalyzeFood(t *testing.T) {
	analysisJSON := `{"name": "Margherita pizza slice", "calories": 285, "macros": {"protein": 12, "carbs": 36, "fats": 10}}`

	t.Run("description only", func(t *testing.T) {
		var gotBody generateRequest
		_, client := fakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&gotBody)
			json.NewEncoder(w).Encode(candidateResponse(analysisJSON))
		})

		analysis, err := client.AnalyzeFood(context.Background(), "a slice of pizza", nil)

		require.NoError(t, err)
		assert.Equal(t, "Margherita pizza slice", analysis.Name)
		assert.Equal(t, float64(285), analysis.Calories)
		require.Len(t, gotBody.Contents[0].Parts, 1)
		assert.Nil(t, gotBody.Contents[0].Parts[0].InlineData)
	})

	t.Run("image attaches an inline data part", func(t *testing.T) {
		var gotBody generateRequest
		_, client := fakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&gotBody)
			json.NewEncoder(w).Encode(candidateResponse(analysisJSON))
		})

		// PNG magic bytes so content detection yields image/png
		png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
		_, err := client.AnalyzeFood(context.Background(), "", png)

		require.NoError(t, err)
		require.Len(t, gotBody.Contents[0].Parts, 2)
		require.NotNil(t, gotBody.Contents[0].Parts[1].InlineData)
		assert.Equal(t, "image/png", gotBody.Contents[0].Parts[1].InlineData.MimeType)
		assert.NotEmpty(t, gotBody.Contents[0].Parts[1].InlineData.Data)
	})

	t.Run("requires description or image", func(t *testing.T) {
		_, client := fakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("gateway should not be called")
		})

		_, err := client.AnalyzeFood(context.Background(), "  ", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestGenerate_ContextCancellation(t *testing.T) {
	_, client := fakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(candidateResponse(planText(3)))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.GeneratePlan(ctx, &domain.PlanRequest{Profile: testProfile(), Days: 3})
	assert.Error(t, err)
}

func testProfile() domain.UserProfile {
	bmr := 1451.5
	tdee := 2250
	target := 1750
	return domain.UserProfile{
		Age:            30,
		Sex:            domain.SexFemale,
		HeightCM:       170,
		WeightKG:       70,
		ActivityLevel:  domain.ActivityModerate,
		Allergies:      []string{"peanuts"},
		MealsPerDay:    3,
		DurationDays:   5,
		Goal:           domain.GoalDeficit,
		CalculatedBMR:  &bmr,
		CalculatedTDEE: &tdee,
		TargetCalories: &target,
	}
}
