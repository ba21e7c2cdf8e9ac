package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/vercheck"
	"github.com/agentstation/vercheck/pkg/errors"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	AuditorFunc      func() (vercheck.Auditor, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	MetricsFileFunc  func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Auditor returns an auditor using the mock function, or an error.
func (m *Mock) Auditor() (vercheck.Auditor, error) {
	if m.AuditorFunc != nil {
		return m.AuditorFunc()
	}
	return nil, errors.NewResourceError("create", "auditor", "mock", errors.New("no auditor configured"))
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	nop := zerolog.Nop()
	return &nop
}

// OutputFormat returns the format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// MetricsFile returns the metrics path using the mock function or "".
func (m *Mock) MetricsFile() string {
	if m.MetricsFileFunc != nil {
		return m.MetricsFileFunc()
	}
	return ""
}

// Version returns the version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns the commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns the date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns the builder using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}
