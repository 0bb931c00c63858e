package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"tripetl/internal/config"
	"tripetl/internal/datasource"
	"tripetl/internal/datasource/httpds"
	"tripetl/internal/datasource/s3ds"
	"tripetl/internal/metrics"
	"tripetl/internal/metrics/datadog"
	"tripetl/internal/metrics/prompush"
)

// newSource builds the object source selected by p.Source.Kind.
func newSource(p config.Pipeline) (datasource.Source, error) {
	timeout, err := p.Source.FetchTimeout()
	if err != nil {
		return nil, err
	}

	switch p.Source.Kind {
	case "", "http":
		var hdr http.Header
		if p.Source.UserAgent != "" {
			hdr = http.Header{"User-Agent": {p.Source.UserAgent}}
		}
		return httpds.NewClient(httpds.Config{
			BaseURL:            p.Source.BaseURL,
			Timeout:            timeout,
			NotFoundStatuses:   p.Source.NotFoundStatuses,
			RequestsPerSecond:  p.Source.RequestsPerSecond,
			Burst:              p.Source.Burst,
			InsecureSkipVerify: p.Source.InsecureSkipVerify,
			BaseHeaders:        hdr,
		}), nil
	case "s3":
		s := p.Source.S3
		return s3ds.NewClient(s3ds.Config{
			Bucket:          s.Bucket,
			Prefix:          s.Prefix,
			Region:          s.Region,
			Endpoint:        s.Endpoint,
			AccessKeyID:     s.AccessKeyID,
			SecretAccessKey: s.SecretAccessKey,
			UsePathStyle:    s.UsePathStyle,
			Timeout:         timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", p.Source.Kind)
	}
}

// setupMetrics installs the configured backend and returns the flush to run
// at exit. Backend init failures degrade to the nop backend.
func setupMetrics(p config.Pipeline, getenv func(string) string, log *slog.Logger) func() {
	nop := func() {}
	m := p.Metrics

	var (
		b   metrics.Backend
		err error
	)
	switch m.Backend {
	case "pushgateway":
		// Decide Pushgateway URL: config → env → default.
		gwURL := m.PushgatewayURL
		if gwURL == "" {
			gwURL = getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err = prompush.NewBackend(p.Job, gwURL)
		log = log.With("url", gwURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       m.DatadogAddr,
			Namespace:  m.Namespace,
			GlobalTags: m.Tags,
		})
		log = log.With("addr", m.DatadogAddr)
	case "", "none":
		log.Debug("metrics: disabled")
		return nop
	default:
		log.Warn("metrics: unknown backend; metrics disabled", "backend", m.Backend)
		return nop
	}
	if err != nil {
		log.Warn("metrics: backend init failed; using nop", "backend", m.Backend, "err", err)
		return nop
	}

	log.Info("metrics: enabled", "backend", m.Backend, "job", p.Job)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics: flush error", "err", err)
		}
	}
}
