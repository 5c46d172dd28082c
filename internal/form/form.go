// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package form holds the research form state and its transitions.
//
// State is a value. Every transition returns a new State and leaves the
// receiver untouched, so the submit lifecycle can be replayed and tested
// without any rendering surface.
package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/research-console/pkg/types"
)

// Field names a single input of the form. Values match the JSON names sent
// on the wire.
type Field string

const (
	FieldQuery            Field = "query"
	FieldResearchQuestion Field = "research_question"
	FieldGroqAPIKey       Field = "groq_api_key"
	FieldMaxResults       Field = "max_results"
	FieldModelName        Field = "groq_model_name"
)

// Fields lists every form field in display order.
var Fields = []Field{
	FieldQuery,
	FieldResearchQuestion,
	FieldGroqAPIKey,
	FieldMaxResults,
	FieldModelName,
}

// Fallback and connectivity messages shown in the error panel.
const (
	MsgGenericFailure = "Something went wrong"
	MsgConnectivity   = "Failed to connect to the server. Make sure the research API is running on 127.0.0.1:5000"
)

// State is the complete form state: field values, the loading flag, the
// current error message and the current result.
type State struct {
	Params  types.ResearchRequest
	Loading bool
	Err     string
	Result  *types.ResearchResult
}

// New returns the state of a freshly mounted form.
func New() State {
	return State{Params: types.DefaultRequest()}
}

// WithField returns a copy of s with a single field replaced. Membership of
// enumerated fields is not checked here; see Validate.
func (s State) WithField(f Field, value string) (State, error) {
	p := s.Params
	switch f {
	case FieldQuery:
		p.Query = value
	case FieldResearchQuestion:
		p.ResearchQuestion = value
	case FieldGroqAPIKey:
		p.GroqAPIKey = value
	case FieldMaxResults:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return s, fmt.Errorf("max_results: %q is not an integer", value)
		}
		p.MaxResults = types.MaxResults(n)
	case FieldModelName:
		p.ModelName = types.ModelName(value)
	default:
		return s, fmt.Errorf("unknown field %q", f)
	}
	s.Params = p
	return s, nil
}

// Value returns the current value of f as the input surface displays it.
func (s State) Value(f Field) string {
	switch f {
	case FieldQuery:
		return s.Params.Query
	case FieldResearchQuestion:
		return s.Params.ResearchQuestion
	case FieldGroqAPIKey:
		return s.Params.GroqAPIKey
	case FieldMaxResults:
		return strconv.Itoa(int(s.Params.MaxResults))
	case FieldModelName:
		return string(s.Params.ModelName)
	}
	return ""
}

// Validate performs the input surface's required-field check. It is not
// re-run by the submit path.
func (s State) Validate() error {
	var missing []string
	if strings.TrimSpace(s.Params.Query) == "" {
		missing = append(missing, string(FieldQuery))
	}
	if strings.TrimSpace(s.Params.ResearchQuestion) == "" {
		missing = append(missing, string(FieldResearchQuestion))
	}
	if strings.TrimSpace(s.Params.GroqAPIKey) == "" {
		missing = append(missing, string(FieldGroqAPIKey))
	}
	if len(missing) > 0 {
		return fmt.Errorf("required fields missing: %s", strings.Join(missing, ", "))
	}
	if !s.Params.MaxResults.Valid() {
		return fmt.Errorf("max_results must be one of %v, got %d", types.AllowedMaxResults, s.Params.MaxResults)
	}
	if !s.Params.ModelName.Valid() {
		return fmt.Errorf("unknown model %q", s.Params.ModelName)
	}
	return nil
}

// Begin marks a submission as started: loading is set and any previous
// error and result are cleared.
func (s State) Begin() State {
	s.Loading = true
	s.Err = ""
	s.Result = nil
	return s
}

// WithResult stores r as the current result and clears the error.
func (s State) WithResult(r types.ResearchResult) State {
	s.Result = &r
	s.Err = ""
	return s
}

// WithError stores msg as the current error and clears the result.
func (s State) WithError(msg string) State {
	s.Err = msg
	s.Result = nil
	return s
}

// Settle clears the loading flag. It is always the last transition of a
// submission.
func (s State) Settle() State {
	s.Loading = false
	return s
}

// CanSubmit reports whether the submit control is enabled.
func (s State) CanSubmit() bool {
	return !s.Loading
}
