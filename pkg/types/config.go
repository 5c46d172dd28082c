// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-console/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ClientConfig holds settings for the console side: where research
// requests go and how results are printed.
type ClientConfig struct {
	// Endpoint is the research service URL. Empty uses the built-in
	// local address.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Format selects the ask output: text, plain, json, or yaml.
	Format OutputFormat `json:"format" yaml:"format"`
}

// OutputFormat selects how a finished submission is printed.
type OutputFormat string

const (
	OutputText  OutputFormat = "text"
	OutputPlain OutputFormat = "plain"
	OutputJSON  OutputFormat = "json"
	OutputYAML  OutputFormat = "yaml"
)

// SearchConfig holds settings for the arXiv search stage of the service.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of entries requested from arXiv.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MaxRetries bounds 429 backoff retries (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// AcquisitionConfig holds settings for downloading paper PDFs.
type AcquisitionConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the delay between consecutive downloads.
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// PapersDir is the directory PDFs and metadata sidecars are written to.
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`
}

// IndexConfig holds settings for the per-query chunk index.
type IndexConfig struct {
	// IndexDir is the directory holding one SQLite database per query.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// ChunkSize is the chunk length in runes (default 1000).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// ChunkOverlap is the overlap between consecutive chunks (default 200).
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`

	// TopK is the number of chunks handed to the model (default 5).
	TopK int `json:"top_k" yaml:"top_k"`
}

// AIConfig holds settings for the chat completion API.
type AIConfig struct {
	// BaseURL is the OpenAI-compatible API root.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Temperature is the sampling temperature (default 0.1).
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// ServiceConfig groups the settings of the local research service.
type ServiceConfig struct {
	// Addr is the listen address (default "127.0.0.1:5000").
	Addr string `json:"addr" yaml:"addr"`

	// LogLevel is a logrus level name.
	LogLevel string `json:"log_level" yaml:"log_level"`

	Search      SearchConfig      `json:"search" yaml:"search"`
	Acquisition AcquisitionConfig `json:"acquisition" yaml:"acquisition"`
	Index       IndexConfig       `json:"index" yaml:"index"`
	AI          AIConfig          `json:"ai" yaml:"ai"`
}
