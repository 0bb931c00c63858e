package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"tripetl/internal/storage"
	"tripetl/internal/window"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that is surfaced but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "variants[1]"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Known taxi types published by the TLC. Others are allowed but flagged.
var knownVariants = map[string]struct{}{
	"yellow": {},
	"green":  {},
	"fhv":    {},
	"fhvhv":  {},
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate p; callers decide whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  fmt.Sprintf("job is empty; %q will be used for metrics labeling", DefaultJob),
		})
	}
	issues = append(issues, validateWindow(p.Window)...)
	issues = append(issues, validateVariants(p.Variants)...)
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	return issues
}

func validateWindow(w Window) []Issue {
	var issues []Issue
	if strings.TrimSpace(w.StartDate) == "" {
		issues = append(issues, Issue{SeverityError, "window.start_date", "start_date must not be empty (or set " + EnvStartDate + ")"})
	}
	if strings.TrimSpace(w.EndDate) == "" {
		issues = append(issues, Issue{SeverityError, "window.end_date", "end_date must not be empty (or set " + EnvEndDate + ")"})
	}
	if len(issues) > 0 {
		return issues
	}
	if _, err := window.Parse(w.StartDate, w.EndDate); err != nil {
		issues = append(issues, Issue{SeverityError, "window", err.Error()})
	}
	return issues
}

func validateVariants(vs []string) []Issue {
	var issues []Issue
	seen := make(map[string]struct{}, len(vs))
	for i, v := range vs {
		path := fmt.Sprintf("variants[%d]", i)
		name := strings.TrimSpace(v)
		if name == "" {
			issues = append(issues, Issue{SeverityWarning, path, "blank variant is ignored"})
			continue
		}
		if _, dup := seen[name]; dup {
			issues = append(issues, Issue{SeverityWarning, path, fmt.Sprintf("duplicate variant %q is fetched once", name)})
			continue
		}
		seen[name] = struct{}{}
		if _, ok := knownVariants[name]; !ok {
			issues = append(issues, Issue{SeverityWarning, path, fmt.Sprintf("unknown variant %q; every month will likely be skipped", name)})
		}
	}
	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	switch s.Kind {
	case "", "http":
		if strings.TrimSpace(s.BaseURL) != "" {
			u, err := url.Parse(s.BaseURL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				issues = append(issues, Issue{SeverityError, "source.base_url", fmt.Sprintf("base_url %q is not an absolute http(s) URL", s.BaseURL)})
			}
		}
		for i, code := range s.NotFoundStatuses {
			if code < 400 || code > 599 {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     fmt.Sprintf("source.not_found_statuses[%d]", i),
					Message:  fmt.Sprintf("status %d is not an HTTP error status", code),
				})
			}
		}
		if s.RequestsPerSecond < 0 {
			issues = append(issues, Issue{SeverityError, "source.requests_per_second", "requests_per_second must not be negative"})
		}
		if s.Burst < 0 {
			issues = append(issues, Issue{SeverityError, "source.burst", "burst must not be negative"})
		}
	case "s3":
		if strings.TrimSpace(s.S3.Bucket) == "" {
			issues = append(issues, Issue{SeverityError, "source.s3.bucket", "s3 source requires a bucket"})
		}
		if (s.S3.AccessKeyID == "") != (s.S3.SecretAccessKey == "") {
			issues = append(issues, Issue{SeverityError, "source.s3", "access_key_id and secret_access_key must be set together"})
		}
	default:
		issues = append(issues, Issue{SeverityError, "source.kind", fmt.Sprintf("unknown source kind %q; want http or s3", s.Kind)})
	}

	if d, err := s.FetchTimeout(); err != nil {
		issues = append(issues, Issue{SeverityError, "source.timeout", err.Error()})
	} else if d < 0 {
		issues = append(issues, Issue{SeverityError, "source.timeout", "timeout must not be negative"})
	}

	return issues
}

func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue
	if r.FetchWorkers < 0 {
		issues = append(issues, Issue{SeverityError, "runtime.fetch_workers", "fetch_workers must not be negative"})
	} else if r.FetchWorkers > 32 {
		issues = append(issues, Issue{SeverityWarning, "runtime.fetch_workers", fmt.Sprintf("fetch_workers=%d; each worker holds a whole monthly file in memory", r.FetchWorkers)})
	}
	if r.BatchSize < 0 {
		issues = append(issues, Issue{SeverityError, "runtime.batch_size", "batch_size must not be negative"})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue
	if !s.LoadsStorage() {
		return nil
	}

	if kinds := storage.ListKinds(); !slices.Contains(kinds, s.Kind) {
		return []Issue{{SeverityError, "storage.kind", fmt.Sprintf("unknown storage kind %q; registered: %s", s.Kind, strings.Join(kinds, ", "))}}
	}

	switch s.Kind {
	case "duckdb":
		if strings.TrimSpace(s.DB.DSN) == "" {
			issues = append(issues, Issue{SeverityWarning, "storage.db.dsn", "empty duckdb dsn opens an in-memory database; loaded rows are lost at exit"})
		}
	default:
		if strings.TrimSpace(s.DB.DSN) == "" {
			issues = append(issues, Issue{SeverityError, "storage.db.dsn", "storage.db.dsn must not be empty"})
		}
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{SeverityWarning, "metrics.pushgateway_url", "pushgateway_url is empty; PUSHGATEWAY_URL or http://localhost:9091 will be used"})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{SeverityError, "metrics.datadog_addr", "datadog backend requires datadog_addr"})
		}
	default:
		issues = append(issues, Issue{SeverityWarning, "metrics.backend", fmt.Sprintf("unknown metrics backend %q; metrics disabled", m.Backend)})
	}
	return issues
}
