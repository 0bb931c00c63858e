// Package config defines the JSON/YAML configuration model for the trips
// ingestion job. Pipeline files are loaded from disk, overlaid with the
// BRUIN_* environment variables set by the orchestrator and linted with
// ValidatePipeline before anything runs.
//
// Example (trimmed):
//
//	{
//	  "job":      "trips",
//	  "window":   { "start_date": "2024-01-01", "end_date": "2024-04-01" },
//	  "variants": ["yellow", "green"],
//	  "source":   { "kind": "http", "base_url": "https://d37ci6vzurychx.cloudfront.net/trip-data" },
//	  "storage":  { "kind": "duckdb", "db": { "dsn": "trips.duckdb", "table": "ingestion.trips", "auto_create_table": true } }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by WithDefaults.
const (
	DefaultJob          = "trips"
	DefaultSourceKind   = "http"
	DefaultBaseURL      = "https://d37ci6vzurychx.cloudfront.net/trip-data"
	DefaultTimeout      = "30s"
	DefaultFetchWorkers = 4
	DefaultBatchSize    = 5000
	DefaultTable        = "ingestion.trips"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job labels metrics and logs.
	Job string `json:"job" yaml:"job"`

	// Window is the half-open date range [start_date, end_date).
	Window Window `json:"window" yaml:"window"`

	// Variants are the taxi types to fetch. Empty means ["yellow"].
	Variants []string `json:"variants" yaml:"variants"`

	Source  Source        `json:"source" yaml:"source"`
	Runtime RuntimeConfig `json:"runtime" yaml:"runtime"`
	Storage Storage       `json:"storage" yaml:"storage"`
	Metrics Metrics       `json:"metrics" yaml:"metrics"`
}

// Window holds ISO dates (YYYY-MM-DD); full timestamps are truncated to
// their date.
type Window struct {
	StartDate string `json:"start_date" yaml:"start_date"`
	EndDate   string `json:"end_date" yaml:"end_date"`
}

// Source selects where monthly extracts are fetched from.
type Source struct {
	// Kind is "http" or "s3".
	Kind string `json:"kind" yaml:"kind"`

	// BaseURL is the prefix object names are appended to (http).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Timeout is a Go duration string applied to each fetch, e.g. "30s".
	Timeout string `json:"timeout" yaml:"timeout"`

	// NotFoundStatuses overrides the HTTP statuses that mean "no data".
	NotFoundStatuses []int `json:"not_found_statuses" yaml:"not_found_statuses"`

	RequestsPerSecond  float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst              int     `json:"burst" yaml:"burst"`
	UserAgent          string  `json:"user_agent" yaml:"user_agent"`
	InsecureSkipVerify bool    `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`

	S3 SourceS3 `json:"s3" yaml:"s3"`
}

// SourceS3 configures the "s3" source kind.
type SourceS3 struct {
	Bucket          string `json:"bucket" yaml:"bucket"`
	Prefix          string `json:"prefix" yaml:"prefix"`
	Region          string `json:"region" yaml:"region"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	UsePathStyle    bool   `json:"use_path_style" yaml:"use_path_style"`
}

// RuntimeConfig controls concurrency and batching.
type RuntimeConfig struct {
	FetchWorkers int `json:"fetch_workers" yaml:"fetch_workers"`
	BatchSize    int `json:"batch_size" yaml:"batch_size"`
}

// Storage selects the sink. An empty kind or "none" skips loading.
type Storage struct {
	Kind string   `json:"kind" yaml:"kind"`
	DB   DBConfig `json:"db" yaml:"db"`
}

// DBConfig configures the database sink.
type DBConfig struct {
	DSN   string `json:"dsn" yaml:"dsn"`
	Table string `json:"table" yaml:"table"`

	// AutoCreateTable creates the canonical table before loading.
	AutoCreateTable bool `json:"auto_create_table" yaml:"auto_create_table"`
}

// Metrics selects the metrics backend: "", "none", "pushgateway" or
// "datadog".
type Metrics struct {
	Backend        string   `json:"backend" yaml:"backend"`
	PushgatewayURL string   `json:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string   `json:"datadog_addr" yaml:"datadog_addr"`
	Namespace      string   `json:"namespace" yaml:"namespace"`
	Tags           []string `json:"tags" yaml:"tags"`
}

// Load reads a pipeline file. ".yaml" and ".yml" are decoded as YAML,
// everything else as JSON.
func Load(path string) (Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Decode(data, filepath.Ext(path))
}

// Decode parses data in the format implied by ext.
func Decode(data []byte, ext string) (Pipeline, error) {
	var p Pipeline
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Pipeline{}, fmt.Errorf("config: decode yaml: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&p); err != nil {
			return Pipeline{}, fmt.Errorf("config: decode json: %w", err)
		}
	}
	return p, nil
}

// WithDefaults returns a copy of p with zero values filled in.
func (p Pipeline) WithDefaults() Pipeline {
	if strings.TrimSpace(p.Job) == "" {
		p.Job = DefaultJob
	}
	if p.Source.Kind == "" {
		p.Source.Kind = DefaultSourceKind
	}
	if p.Source.Kind == "http" && p.Source.BaseURL == "" {
		p.Source.BaseURL = DefaultBaseURL
	}
	if p.Source.Timeout == "" {
		p.Source.Timeout = DefaultTimeout
	}
	if p.Runtime.FetchWorkers == 0 {
		p.Runtime.FetchWorkers = DefaultFetchWorkers
	}
	if p.Runtime.BatchSize == 0 {
		p.Runtime.BatchSize = DefaultBatchSize
	}
	if p.Storage.DB.Table == "" {
		p.Storage.DB.Table = DefaultTable
	}
	return p
}

// FetchTimeout parses Source.Timeout; an empty value yields zero, which the
// sources replace with their own default.
func (s Source) FetchTimeout() (time.Duration, error) {
	if strings.TrimSpace(s.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("config: source.timeout: %w", err)
	}
	return d, nil
}

// LoadsStorage reports whether a sink is configured.
func (s Storage) LoadsStorage() bool {
	k := strings.TrimSpace(s.Kind)
	return k != "" && k != "none"
}
