package ai_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recipewise/server/internal/application/ai"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		open   byte
		want   string
		wantOK bool
	}{
		{
			name:   "bare object",
			text:   `{"cuisine":"thai"}`,
			open:   '{',
			want:   `{"cuisine":"thai"}`,
			wantOK: true,
		},
		{
			name:   "fenced object with prose",
			text:   "Here you go:\n```json\n{\"cuisine\": \"thai\"}\n```\nEnjoy!",
			open:   '{',
			want:   `{"cuisine": "thai"}`,
			wantOK: true,
		},
		{
			name:   "braces inside strings",
			text:   `{"tip": "use {fresh} herbs"}`,
			open:   '{',
			want:   `{"tip": "use {fresh} herbs"}`,
			wantOK: true,
		},
		{
			name:   "escaped quote inside string",
			text:   `note {"title": "the \"best\" soup"} done`,
			open:   '{',
			want:   `{"title": "the \"best\" soup"}`,
			wantOK: true,
		},
		{
			name:   "array with nested objects",
			text:   `Results: [{"a":1},{"b":[2,3]}] trailing`,
			open:   '[',
			want:   `[{"a":1},{"b":[2,3]}]`,
			wantOK: true,
		},
		{
			name:   "skips invalid leading braces",
			text:   `{not json} then {"ok":true}`,
			open:   '{',
			want:   `{"ok":true}`,
			wantOK: true,
		},
		{
			name:   "unbalanced",
			text:   `{"title": "soup"`,
			open:   '{',
			wantOK: false,
		},
		{
			name:   "no json",
			text:   "I cannot help with that.",
			open:   '[',
			wantOK: false,
		},
		{
			name:   "unsupported delimiter",
			text:   `{"a":1}`,
			open:   '(',
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ai.ExtractJSON(tt.text, tt.open)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONCandidatesSkipsNestedValues(t *testing.T) {
	candidates := ai.JSONCandidates(`{"outer":{"inner":1}} and {"second":2}`, '{')

	assert.Equal(t, []string{`{"outer":{"inner":1}}`, `{"second":2}`}, candidates)
}

func TestFlexDecoding(t *testing.T) {
	var q struct {
		Time   ai.FlexInt     `json:"time"`
		Label  ai.FlexString  `json:"label"`
		Tags   ai.FlexStrings `json:"tags"`
		Single ai.FlexStrings `json:"single"`
		Empty  ai.FlexStrings `json:"empty"`
	}

	err := json.Unmarshal([]byte(`{"time":"30 minutes","label":45,"tags":["a",2],"single":"vegan","empty":null}`), &q)

	assert.NoError(t, err)
	assert.Equal(t, ai.FlexInt(30), q.Time)
	assert.Equal(t, ai.FlexString("45"), q.Label)
	assert.Equal(t, ai.FlexStrings{"a", "2"}, q.Tags)
	assert.Equal(t, ai.FlexStrings{"vegan"}, q.Single)
	assert.Nil(t, q.Empty)
}
