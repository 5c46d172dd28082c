// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns form state into what the user sees.
//
// Build is the only place display rules live: which panels appear, which
// labels they carry, what an empty answer shows. Text, Styled, JSON and
// YAML only format a View.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-console/internal/form"
)

// Display strings.
const (
	LabelSubmit      = "Start Research"
	LabelSubmitting  = "Researching..."
	LabelComplete    = "Research Complete!"
	LabelPapers      = "Papers Downloaded"
	LabelStatus      = "Status"
	LabelAnswer      = "Research Answer:"
	LabelError       = "Error"
	LabelWarning     = "Warning"
	StatusSuccess    = "Success"
	StatusFailed     = "Failed"
	NoAnswerFallback = "No answer provided"
)

// FieldView is one labelled input with its displayed value.
type FieldView struct {
	Field form.Field
	Label string
	Value string
}

// FormView is the input form section.
type FormView struct {
	Fields         []FieldView
	SubmitLabel    string
	SubmitDisabled bool
}

// ResultView is the result panel. Warning is non-empty when the result
// itself carried an error.
type ResultView struct {
	PapersDownloaded int    `json:"papers_downloaded" yaml:"papers_downloaded"`
	Status           string `json:"status" yaml:"status"`
	Answer           string `json:"answer" yaml:"answer"`
	Warning          string `json:"warning,omitempty" yaml:"warning,omitempty"`
}

// View is everything the presentation shows for one state.
type View struct {
	Form   FormView
	Error  string
	Result *ResultView
}

var fieldLabels = map[form.Field]string{
	form.FieldQuery:            "Search Query",
	form.FieldResearchQuestion: "Research Question",
	form.FieldGroqAPIKey:       "Groq API Key",
	form.FieldMaxResults:       "Max Results",
	form.FieldModelName:        "Model",
}

// Label returns the display label of f.
func Label(f form.Field) string {
	return fieldLabels[f]
}

// Build derives the view for s.
func Build(s form.State) View {
	v := View{
		Form: FormView{
			SubmitLabel:    LabelSubmit,
			SubmitDisabled: s.Loading,
		},
		Error: s.Err,
	}
	if s.Loading {
		v.Form.SubmitLabel = LabelSubmitting
	}

	for _, f := range form.Fields {
		v.Form.Fields = append(v.Form.Fields, FieldView{
			Field: f,
			Label: Label(f),
			Value: displayValue(s, f),
		})
	}

	if r := s.Result; r != nil {
		rv := &ResultView{
			PapersDownloaded: r.PapersDownloaded,
			Status:           StatusFailed,
			Answer:           r.Answer,
			Warning:          r.Error,
		}
		if r.Success {
			rv.Status = StatusSuccess
		}
		if rv.Answer == "" {
			rv.Answer = NoAnswerFallback
		}
		v.Result = rv
	}
	return v
}

func displayValue(s form.State, f form.Field) string {
	switch f {
	case form.FieldGroqAPIKey:
		return Mask(s.Params.GroqAPIKey)
	case form.FieldMaxResults:
		return strconv.Itoa(int(s.Params.MaxResults)) + " papers"
	case form.FieldModelName:
		return s.Params.ModelName.Label()
	}
	return s.Value(f)
}

// Mask hides a secret behind bullets of the same length.
func Mask(secret string) string {
	return strings.Repeat("•", len([]rune(secret)))
}

// Text writes v as plain text without the form section.
func Text(w io.Writer, v View) {
	if v.Error != "" {
		fmt.Fprintf(w, "%s: %s\n", LabelError, v.Error)
	}
	if r := v.Result; r != nil {
		fmt.Fprintln(w, LabelComplete)
		fmt.Fprintf(w, "%s: %d\n", LabelPapers, r.PapersDownloaded)
		fmt.Fprintf(w, "%s: %s\n", LabelStatus, r.Status)
		fmt.Fprintln(w)
		fmt.Fprintln(w, LabelAnswer)
		fmt.Fprintln(w, r.Answer)
		if r.Warning != "" {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "%s: %s\n", LabelWarning, r.Warning)
		}
	}
}

// outcome is the machine-readable form of a finished submission.
type outcome struct {
	Error  string      `json:"error,omitempty" yaml:"error,omitempty"`
	Result *ResultView `json:"result,omitempty" yaml:"result,omitempty"`
}

// JSON writes the outcome panels of v as indented JSON.
func JSON(w io.Writer, v View) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(outcome{Error: v.Error, Result: v.Result})
}

// YAML writes the outcome panels of v as YAML.
func YAML(w io.Writer, v View) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(outcome{Error: v.Error, Result: v.Result})
}
