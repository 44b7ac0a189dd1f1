package observe

import "errors"

var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSamplePct       = errors.New("observe: sample percentage outside [0, 1]")
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: invalid log level")
	ErrInvalidLogFormat       = errors.New("observe: invalid log format")
)

// Accepted option values. The empty string selects the default.
var (
	TracingExporters = []string{"", "none", "stdout", "otlp"}
	MetricsExporters = []string{"", "none", "stdout", "otlp", "prometheus"}
	LogLevels        = []string{"", "debug", "info", "warn", "error"}
	LogFormats       = []string{"", "json", "console"}
)

// RedactedFields are log field keys whose values are replaced with
// "[REDACTED]". Matching ignores case.
var RedactedFields = []string{
	"authorization",
	"x-api-key",
	"api_key",
	"apiKey",
	"jwt_secret",
	"password",
	"secret",
	"token",
	"credential",
}
