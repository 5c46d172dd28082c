// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-console/internal/form"
	"github.com/pdiddy/research-console/pkg/types"
)

func TestBuildForm(t *testing.T) {
	s := form.New()
	s, _ = s.WithField(form.FieldQuery, "nlp")
	s, _ = s.WithField(form.FieldGroqAPIKey, "gsk_123")

	v := Build(s)
	require.Len(t, v.Form.Fields, len(form.Fields))
	byField := map[form.Field]string{}
	for _, f := range v.Form.Fields {
		byField[f.Field] = f.Value
		assert.NotEmpty(t, f.Label)
	}
	assert.Equal(t, "nlp", byField[form.FieldQuery])
	assert.Equal(t, "•••••••", byField[form.FieldGroqAPIKey])
	assert.Equal(t, "5 papers", byField[form.FieldMaxResults])
	assert.Equal(t, "Llama 3.1 8B", byField[form.FieldModelName])

	assert.Equal(t, LabelSubmit, v.Form.SubmitLabel)
	assert.False(t, v.Form.SubmitDisabled)
	assert.Empty(t, v.Error)
	assert.Nil(t, v.Result)
}

func TestBuildLoadingDisablesSubmit(t *testing.T) {
	v := Build(form.New().Begin())
	assert.True(t, v.Form.SubmitDisabled)
	assert.Equal(t, LabelSubmitting, v.Form.SubmitLabel)
}

func TestBuildPanels(t *testing.T) {
	tests := []struct {
		name       string
		state      form.State
		wantError  string
		wantResult *ResultView
	}{
		{
			name:      "error only",
			state:     form.New().WithError("X"),
			wantError: "X",
		},
		{
			name:  "success renders answer verbatim and no error panel",
			state: form.New().WithError("old").Begin().WithResult(types.ResearchResult{Success: true, PapersDownloaded: 3, Answer: "  line one\nline two"}).Settle(),
			wantResult: &ResultView{
				PapersDownloaded: 3,
				Status:           StatusSuccess,
				Answer:           "  line one\nline two",
			},
		},
		{
			name:  "partial success shows fallback answer and warning",
			state: form.New().WithResult(types.ResearchResult{Success: true, PapersDownloaded: 7, Answer: "", Error: "partial"}),
			wantResult: &ResultView{
				PapersDownloaded: 7,
				Status:           StatusSuccess,
				Answer:           NoAnswerFallback,
				Warning:          "partial",
			},
		},
		{
			name:  "unsuccessful result",
			state: form.New().WithResult(types.ResearchResult{Success: false, Answer: "Process failed"}),
			wantResult: &ResultView{
				Status: StatusFailed,
				Answer: "Process failed",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Build(tt.state)
			assert.Equal(t, tt.wantError, v.Error)
			assert.Equal(t, tt.wantResult, v.Result)
		})
	}
}

func TestText(t *testing.T) {
	v := Build(form.New().WithResult(types.ResearchResult{Success: true, PapersDownloaded: 7, Error: "partial"}))

	var buf bytes.Buffer
	Text(&buf, v)
	out := buf.String()

	assert.Contains(t, out, "Papers Downloaded: 7")
	assert.Contains(t, out, "Status: Success")
	assert.Contains(t, out, NoAnswerFallback)
	assert.Contains(t, out, "Warning: partial")
	assert.NotContains(t, out, "Error:")
}

func TestTextErrorOnly(t *testing.T) {
	var buf bytes.Buffer
	Text(&buf, Build(form.New().WithError(form.MsgConnectivity)))
	assert.Equal(t, "Error: "+form.MsgConnectivity+"\n", buf.String())
}

func TestStyled(t *testing.T) {
	s := form.New().WithResult(types.ResearchResult{Success: true, PapersDownloaded: 7, Error: "partial"})
	out := Styled(Build(s))

	for _, want := range []string{LabelComplete, LabelPapers, "7", StatusSuccess, NoAnswerFallback, LabelWarning, "partial", LabelSubmit} {
		assert.Contains(t, out, want)
	}
	assert.False(t, strings.Contains(out, "✗ "+LabelError), "no error panel for a result")
}

func TestPanelsEmpty(t *testing.T) {
	assert.Empty(t, Panels(Build(form.New())))
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, Build(form.New().WithResult(types.ResearchResult{Success: true, PapersDownloaded: 2, Answer: "ok"}))))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, map[string]any{
		"result": map[string]any{
			"papers_downloaded": float64(2),
			"status":            "Success",
			"answer":            "ok",
		},
	}, got)
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, YAML(&buf, Build(form.New().WithError("X"))))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, map[string]any{"error": "X"}, got)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "•••", Mask("abc"))
}
