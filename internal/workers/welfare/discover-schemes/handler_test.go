package discoverschemes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-finder/internal/common/completion"
	"scheme-finder/internal/common/logger"
	"scheme-finder/internal/models"
)

// ==========================
// Test doubles
// ==========================

type fakeCompleter struct {
	text  string
	err   error
	calls int
	user  string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	f.user = user
	return f.text, f.err
}

type recordedEvent struct {
	action string
	meta   map[string]interface{}
	err    error
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *fakeRecorder) Record(ctx context.Context, action, actorID string, metadata map[string]interface{}, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{action: action, meta: metadata, err: err})
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second, DefaultMaxResults: 20}
}

func schemesJSON(n int, flag string) string {
	items := make([]map[string]interface{}, n)
	for i := range items {
		items[i] = map[string]interface{}{
			"title":             fmt.Sprintf("Scheme %d", i),
			"category":          "Health",
			"jurisdiction":      "Kerala",
			"eligibility":       flag,
			"eligibilityReason": "income below threshold",
		}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func sampleProfile() *models.Profile {
	age := 67
	state := "Kerala"
	bpl := true
	return &models.Profile{Age: &age, Location: &models.Location{State: &state}, IsBPL: &bpl}
}

// ==========================
// ParseSchemes
// ==========================

func TestParseSchemes_FencedMinimalScheme(t *testing.T) {
	schemes := ParseSchemes("```json\n[{\"title\":\"X\"}]\n```", false)

	require.Len(t, schemes, 1)
	assert.Equal(t, "X", schemes[0].Title)
	assert.Equal(t, models.SchemeOther, schemes[0].Category)
	assert.Equal(t, models.JurisdictionCentral, schemes[0].Jurisdiction)
	assert.Equal(t, models.FlagUnknown, schemes[0].Eligibility)
	assert.Equal(t, models.SchemeID("Central", "X"), schemes[0].ID)
}

func TestParseSchemes_NonArrayIsEmpty(t *testing.T) {
	for _, raw := range []string{`{}`, `{"title":"X"}`, `"none"`, `Sorry, I cannot help`, `[{"title":`, ``} {
		schemes := ParseSchemes(raw, false)
		assert.NotNil(t, schemes, "raw=%q", raw)
		assert.Empty(t, schemes, "raw=%q", raw)
	}
}

func TestParseSchemes_ElementValidation(t *testing.T) {
	raw := `[
		{"title": "PM-KISAN", "category": "agriculture", "jurisdiction": "Central", "eligibility": "eligible", "eligibilityReason": "owns farmland", "requirements": ["Land records", "Aadhaar"]},
		{"description": "no title"},
		"a bare string",
		42,
		{"title": "   "},
		{"title": "Kalaignar Magalir Urimai", "category": "Women", "jurisdiction": "tamil nadu", "eligibility": false, "eligibilityReason": "not a woman head of family"},
		{"title": "Old Age Pension", "eligibility": "eligible"},
		{"title": "Ayushman Bharat", "eligibility": "perhaps", "eligibilityReason": "?"},
		{"name": "Ujjwala Yojana", "category": "Social_Security", "eligible": true, "eligibilityReason": "BPL household"}
	]`

	schemes := ParseSchemes(raw, false)
	require.Len(t, schemes, 5)

	assert.Equal(t, "PM-KISAN", schemes[0].Title)
	assert.Equal(t, models.SchemeAgriculture, schemes[0].Category)
	assert.Equal(t, models.FlagEligible, schemes[0].Eligibility)
	assert.Equal(t, []string{"Land records", "Aadhaar"}, schemes[0].Requirements)

	assert.Equal(t, models.SchemeOther, schemes[1].Category, "unrecognised category falls back")
	assert.Equal(t, "Tamil Nadu", schemes[1].Jurisdiction)
	assert.Equal(t, models.FlagNotEligible, schemes[1].Eligibility, "boolean flag accepted")

	assert.Equal(t, models.FlagUnknown, schemes[2].Eligibility, "asserted flag without reason is downgraded")
	assert.Equal(t, models.FlagUnknown, schemes[3].Eligibility, "malformed flag is unknown")

	assert.Equal(t, "Ujjwala Yojana", schemes[4].Title)
	assert.Equal(t, models.SchemeSocialSecurity, schemes[4].Category)
	assert.Equal(t, models.FlagEligible, schemes[4].Eligibility)
}

func TestParseSchemes_PopularModeForcesUnknown(t *testing.T) {
	schemes := ParseSchemes(schemesJSON(6, "eligible"), true)
	require.Len(t, schemes, 6)
	for _, s := range schemes {
		assert.Equal(t, models.FlagUnknown, s.Eligibility)
	}
}

func TestParseSchemes_Deterministic(t *testing.T) {
	raw := "```json\n" + schemesJSON(3, "not-eligible") + "\n```"
	first := ParseSchemes(raw, false)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, ParseSchemes(raw, false)); diff != "" {
			t.Fatalf("parse not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestParseSchemes_RoundTripKeepsDisplayFields(t *testing.T) {
	schemes := ParseSchemes(schemesJSON(1, "eligible"), false)
	require.Len(t, schemes, 1)

	b, err := json.Marshal(schemes[0])
	require.NoError(t, err)
	var back models.Scheme
	require.NoError(t, json.Unmarshal(b, &back))

	assert.Equal(t, schemes[0].Title, back.Title)
	assert.Equal(t, schemes[0].Category, back.Category)
	assert.Equal(t, schemes[0].Jurisdiction, back.Jurisdiction)
	assert.Equal(t, schemes[0].Eligibility, back.Eligibility)
	assert.Equal(t, schemes[0].EligibilityReason, back.EligibilityReason)
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_Modes(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		wantMode Mode
	}{
		{"nil profile means popular", &Input{}, ModePopular},
		{"popular flag wins over profile", &Input{Profile: sampleProfile(), Popular: true}, ModePopular},
		{"profile mode", &Input{Profile: sampleProfile()}, ModeProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{text: schemesJSON(3, "eligible")}
			rec := &fakeRecorder{}
			h := NewHandler(createTestConfig(), completer, rec, logger.NewTestLogger(t))

			output, err := h.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, output.Mode)
			assert.Equal(t, 3, output.Count)

			for _, s := range output.Schemes {
				if tt.wantMode == ModePopular {
					assert.Equal(t, models.FlagUnknown, s.Eligibility)
				} else {
					assert.Equal(t, models.FlagEligible, s.Eligibility)
				}
			}
			if tt.wantMode == ModeProfile {
				assert.Contains(t, completer.user, `"state": "Kerala"`)
			}

			require.Len(t, rec.events, 1)
			assert.Equal(t, models.ActionSchemesDiscovered, rec.events[0].action)
			assert.Equal(t, string(tt.wantMode), rec.events[0].meta["mode"])
			assert.Equal(t, 3, rec.events[0].meta["count"])
		})
	}
}

func TestHandler_Execute_MaxResults(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		returned  int
		wantCount int
		wantInMsg string
	}{
		{"default when zero", 0, 30, 20, "up to 20 schemes"},
		{"default when negative", -4, 5, 5, "up to 20 schemes"},
		{"explicit bound truncates", 5, 12, 5, "up to 5 schemes"},
		{"capped at fifty", 500, 60, 50, "up to 50 schemes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{text: schemesJSON(tt.returned, "unknown")}
			h := NewHandler(createTestConfig(), completer, &fakeRecorder{}, logger.NewNoOpLogger())

			output, err := h.Execute(context.Background(), &Input{Profile: sampleProfile(), MaxResults: tt.requested})
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, len(output.Schemes))
			assert.LessOrEqual(t, len(output.Schemes), tt.wantCount)
			assert.Contains(t, completer.user, tt.wantInMsg)
		})
	}
}

func TestHandler_Execute_PopularPromptCarriesCount(t *testing.T) {
	completer := &fakeCompleter{text: `[]`}
	h := NewHandler(createTestConfig(), completer, &fakeRecorder{}, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{Popular: true, MaxResults: 7})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(completer.user, "List the 7 most broadly relevant"))
}

func TestHandler_Execute_ObjectResponseIsEmptyList(t *testing.T) {
	rec := &fakeRecorder{}
	h := NewHandler(createTestConfig(), &fakeCompleter{text: `{}`}, rec, logger.NewNoOpLogger())

	output, err := h.Execute(context.Background(), &Input{Profile: sampleProfile()})
	require.NoError(t, err)
	assert.NotNil(t, output.Schemes)
	assert.Empty(t, output.Schemes)
	assert.Equal(t, 0, output.Count)
	require.Len(t, rec.events, 1)
	assert.Equal(t, models.ActionSchemesDiscovered, rec.events[0].action)
}

func TestHandler_Execute_CompletionErrorPropagates(t *testing.T) {
	rec := &fakeRecorder{}
	completer := &fakeCompleter{err: fmt.Errorf("%w: second 429", completion.ErrRateLimited)}
	h := NewHandler(createTestConfig(), completer, rec, logger.NewNoOpLogger())

	output, err := h.Execute(context.Background(), &Input{Profile: sampleProfile()})
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, completion.ErrRateLimited))
	assert.Equal(t, 1, completer.calls, "discovery never retries on its own")

	require.Len(t, rec.events, 1)
	assert.Equal(t, models.ActionSchemeDiscoveryError, rec.events[0].action)
	assert.Error(t, rec.events[0].err)
}
