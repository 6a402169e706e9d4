package outputters

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/anderschbe/password-strength-meter/internal/audit"
	"github.com/anderschbe/password-strength-meter/internal/config"
	"github.com/anderschbe/password-strength-meter/internal/meter"
	"github.com/anderschbe/password-strength-meter/internal/output"
)

// Formatter renders readings and audit summaries
type Formatter interface {
	Format(summary *audit.Summary) error
	FormatReading(r meter.Reading) error
}

// FormatterFactory creates a Formatter for a format name
type FormatterFactory interface {
	CreateFormatter(format string) (Formatter, error)
}

// DefaultFormatterFactory builds the output package formatters from config
type DefaultFormatterFactory struct {
	config *config.Config
	w      io.Writer
}

// NewDefaultFormatterFactory creates a factory writing to w. A nil w means
// stdout.
func NewDefaultFormatterFactory(cfg *config.Config, w io.Writer) *DefaultFormatterFactory {
	if w == nil {
		w = os.Stdout
	}
	return &DefaultFormatterFactory{config: cfg, w: w}
}

// CreateFormatter returns the formatter for format
func (f *DefaultFormatterFactory) CreateFormatter(format string) (Formatter, error) {
	cfg := f.config
	switch format {
	case "console":
		return output.NewConsoleFormatter(f.w, cfg.Quiet, cfg.Verbose, cfg.ShowPercent, cfg.ShowText), nil
	case "json":
		return output.NewJSONFormatter(f.w, cfg.Quiet, cfg.Verbose, true, cfg.Output), nil
	case "markdown":
		return output.NewMarkdownFormatter(f.w, cfg.Quiet, cfg.Verbose, cfg.Output), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Outputter handles output formatting
type Outputter struct {
	config  *config.Config
	factory FormatterFactory
}

// NewOutputter creates a new Outputter writing to stdout
func NewOutputter(cfg *config.Config) *Outputter {
	return NewOutputterWithFactory(cfg, NewDefaultFormatterFactory(cfg, nil))
}

// NewOutputterWithFactory creates an Outputter with a custom factory
func NewOutputterWithFactory(cfg *config.Config, factory FormatterFactory) *Outputter {
	return &Outputter{
		config:  cfg,
		factory: factory,
	}
}

// Format formats the audit summary using the given format
func (o *Outputter) Format(summary *audit.Summary, format string) error {
	if summary == nil {
		return fmt.Errorf("nil summary")
	}
	if summary.StartTime.IsZero() {
		summary.StartTime = time.Now()
	}

	formatter, err := o.factory.CreateFormatter(format)
	if err != nil {
		return err
	}
	return formatter.Format(summary)
}

// FormatReading formats a single reading using the given format
func (o *Outputter) FormatReading(r meter.Reading, format string) error {
	formatter, err := o.factory.CreateFormatter(format)
	if err != nil {
		return err
	}
	return formatter.FormatReading(r)
}
