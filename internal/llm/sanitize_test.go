package llm_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightbite/freight-extract/internal/llm"
)

func TestNormalizeAndSanitizeJSON_Coerces(t *testing.T) {
	in := `{
		"total": "$1,200.00",
		"weight": "42,000 lbs",
		"origin_zip": 14892,
		"pickup_date": "3/5/23",
		"delivery_date": "next tuesday",
		"broker_name": "  Acme  ",
		"client_name": "",
		"detention": -5,
		"accessorials": {"detention": "150", "tarp": "n/a"},
		"confidence": 0.9
	}`

	out, dropped, err := llm.NormalizeAndSanitizeJSON([]byte(in), nil)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, 1200.0, m["total_rate"])
	assert.NotContains(t, m, "total")
	assert.Equal(t, 42000.0, m["weight"])
	assert.Equal(t, "14892", m["origin_zip"])
	assert.Equal(t, "2023-03-05", m["pickup_date"])
	assert.Nil(t, m["delivery_date"])
	assert.Equal(t, "Acme", m["broker_name"])
	assert.Nil(t, m["client_name"])
	assert.Nil(t, m["detention"])
	assert.Equal(t, map[string]any{"detention": 150.0}, m["accessorials"])
	assert.NotContains(t, m, "confidence")
	assert.Contains(t, dropped, "confidence(unknown)")
	assert.Contains(t, dropped, "detention")
}

func TestNormalizeAndSanitizeJSON_OutputMatchesRecordSchema(t *testing.T) {
	out, _, err := llm.NormalizeAndSanitizeJSON([]byte(`{"total_rate": "1,250", "weight": "43500", "pickup_date": "03/05/2023", "tarp": 1}`), nil)
	require.NoError(t, err)
	assert.NoError(t, llm.ValidateJSONAgainstSchema(llm.BuildRecordJSONSchema(), out))

	assert.Error(t, llm.ValidateJSONAgainstSchema(llm.BuildRecordJSONSchema(), []byte(`{"pickup_date": "March 5"}`)))
	assert.Error(t, llm.ValidateJSONAgainstSchema(llm.BuildRecordJSONSchema(), []byte(`{"surprise": 1}`)))
}

func TestNormalizeAndSanitizeJSON_RejectsNonJSON(t *testing.T) {
	_, _, err := llm.NormalizeAndSanitizeJSON([]byte("I could not find an invoice."), nil)
	assert.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, llm.StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, llm.StripCodeFence("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, llm.StripCodeFence(`  {"a":1} `))
}

func TestBuildPrompt_CapsText(t *testing.T) {
	long := make([]rune, llm.MaxPromptText+500)
	for i := range long {
		long[i] = 'é'
	}
	p := llm.BuildPrompt(string(long))
	assert.Contains(t, p, "freight invoice/BOL")
	assert.Equal(t, llm.MaxPromptText, countRune(p, 'é'))
}

func countRune(s string, r rune) int {
	n := 0
	for _, c := range s {
		if c == r {
			n++
		}
	}
	return n
}
