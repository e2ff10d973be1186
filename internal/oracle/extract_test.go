package oracle

import (
	"encoding/json"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		want    string
	}{
		{
			name:  "clean_json",
			input: `{"analysis_type":"TYPO","confidence":0.9}`,
			want:  `{"analysis_type":"TYPO","confidence":0.9}`,
		},
		{
			name:  "surrounding_whitespace",
			input: "   {\"confidence\":0.5}   \n",
			want:  `{"confidence":0.5}`,
		},
		{
			name:  "json_code_fence",
			input: "```json\n{\"confidence\":0.5}\n```",
			want:  `{"confidence":0.5}`,
		},
		{
			name:  "bare_code_fence",
			input: "```\n{\"confidence\":0.5}\n```",
			want:  `{"confidence":0.5}`,
		},
		{
			name:  "uppercase_fence_language",
			input: "```JSON\n{\"confidence\":0.5}\n```",
			want:  `{"confidence":0.5}`,
		},
		{
			name:  "preamble",
			input: "Here is my analysis:\n{\"confidence\":0.5}",
			want:  `{"confidence":0.5}`,
		},
		{
			name:  "postamble",
			input: "{\"confidence\":0.5}\nHope this helps!",
			want:  `{"confidence":0.5}`,
		},
		{
			name:  "braces_inside_string",
			input: `{"explanation":"block {inner} scope","confidence":0.5}`,
			want:  `{"explanation":"block {inner} scope","confidence":0.5}`,
		},
		{
			name:  "escaped_quotes_inside_string",
			input: `{"explanation":"the name \"userData\"","confidence":0.5}`,
			want:  `{"explanation":"the name \"userData\"","confidence":0.5}`,
		},
		{
			name:  "first_valid_object_wins",
			input: `{"first":1} {"second":2}`,
			want:  `{"first":1}`,
		},
		{
			name:  "invalid_object_then_valid",
			input: `{not json} {"confidence":0.5}`,
			want:  `{"confidence":0.5}`,
		},
		{
			name:  "nested_object",
			input: `{"outer":{"inner":{"deep":true}}}`,
			want:  `{"outer":{"inner":{"deep":true}}}`,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "whitespace_only",
			input:   "   \t\n  ",
			wantErr: true,
		},
		{
			name:    "no_json_at_all",
			input:   "I could not decide, sorry.",
			wantErr: true,
		},
		{
			name:    "unquoted_keys",
			input:   "{analysis_type: true}",
			wantErr: true,
		},
		{
			name:    "unterminated_object",
			input:   `{"confidence":0.5`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ExtractJSON(%q) = %s, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractJSON(%q): %v", tt.input, err)
			}
			if string(got) != tt.want {
				t.Errorf("ExtractJSON(%q) = %s, want %s", tt.input, got, tt.want)
			}
			if !json.Valid(got) {
				t.Errorf("extracted payload is not valid JSON: %s", got)
			}
		})
	}
}
