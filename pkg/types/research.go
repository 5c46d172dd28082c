// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the wire records shared by the research console,
// its client, and the local research service.
package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MaxResults is the number of papers the service should download.
// Permitted values are listed in AllowedMaxResults.
type MaxResults int

// AllowedMaxResults lists the result counts offered by the form.
var AllowedMaxResults = []MaxResults{3, 5, 10}

// DefaultMaxResults is the result count a fresh form starts with.
const DefaultMaxResults MaxResults = 5

// Valid reports whether m is one of AllowedMaxResults.
func (m MaxResults) Valid() bool {
	for _, v := range AllowedMaxResults {
		if m == v {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts both a JSON number and a numeric JSON string.
// Browser selects post their value as a string.
func (m *MaxResults) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("max_results: %q is not an integer", s)
	}
	*m = MaxResults(n)
	return nil
}

// ModelName identifies the Groq chat model used to answer the question.
type ModelName string

const (
	ModelLlama8B    ModelName = "llama-3.1-8b-instant"
	ModelLlama70B   ModelName = "llama-3.1-70b-versatile"
	ModelMixtral8x7 ModelName = "mixtral-8x7b-32768"
)

// DefaultModel is the model a fresh form starts with.
const DefaultModel = ModelLlama8B

// AllowedModels lists the models offered by the form, in display order.
var AllowedModels = []ModelName{ModelLlama8B, ModelLlama70B, ModelMixtral8x7}

// Valid reports whether n is one of AllowedModels.
func (n ModelName) Valid() bool {
	for _, v := range AllowedModels {
		if n == v {
			return true
		}
	}
	return false
}

// Label returns the human-readable name shown next to the model selector.
func (n ModelName) Label() string {
	switch n {
	case ModelLlama8B:
		return "Llama 3.1 8B"
	case ModelLlama70B:
		return "Llama 3.1 70B"
	case ModelMixtral8x7:
		return "Mixtral 8x7B"
	default:
		return string(n)
	}
}

// ResearchRequest is the record of user-entered form fields sent to the
// research service. Field names on the wire are fixed.
type ResearchRequest struct {
	Query            string     `json:"query" yaml:"query"`
	ResearchQuestion string     `json:"research_question" yaml:"research_question"`
	GroqAPIKey       string     `json:"groq_api_key" yaml:"groq_api_key"`
	MaxResults       MaxResults `json:"max_results" yaml:"max_results"`
	ModelName        ModelName  `json:"groq_model_name" yaml:"groq_model_name"`
}

// DefaultRequest returns the parameters a freshly mounted form holds.
func DefaultRequest() ResearchRequest {
	return ResearchRequest{
		MaxResults: DefaultMaxResults,
		ModelName:  DefaultModel,
	}
}

// ResearchResult is the structured response of a completed research call.
// Error may be set alongside a usable answer; it is then a warning.
type ResearchResult struct {
	Success          bool   `json:"success" yaml:"success"`
	PapersDownloaded int    `json:"papers_downloaded" yaml:"papers_downloaded"`
	Answer           string `json:"answer" yaml:"answer"`
	Error            string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ErrorBody is the JSON shape of a failed research call.
type ErrorBody struct {
	Error string `json:"error"`
}
