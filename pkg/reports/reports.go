package reports

import (
	core "github.com/goliatone/go-excel-reports/components/reports"
)

// Service exposes the underlying components/reports.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}
