package schema

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	yamlv3 "gopkg.in/yaml.v3"
)

//go:embed schemas/*.cue
var schemaFS embed.FS

// Definitions checked by the validator.
const (
	DefConfig = "Config"
	DefLabels = "Labels"
)

// ValidationError is one schema violation.
type ValidationError struct {
	File     string
	Path     string // dotted field path, empty for whole-document errors
	Message  string
	Severity string // error, warning
}

func (e ValidationError) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(": ")
	}
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// Validator handles CUE validation
type Validator struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}
}

// LoadSchemas compiles every embedded .cue file.
func (v *Validator) LoadSchemas() error {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return fmt.Errorf("could not read embedded schemas: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".cue" {
			continue
		}
		content, err := schemaFS.ReadFile("schemas/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading schema %s: %w", entry.Name(), err)
		}

		inst := v.ctx.CompileBytes(content, cue.Filename(entry.Name()))
		if instErr := inst.Err(); instErr != nil {
			return fmt.Errorf("compiling schema %s: %w", entry.Name(), instErr)
		}
		v.schemas[strings.TrimSuffix(entry.Name(), ".cue")] = inst.Value()
	}

	if len(v.schemas) == 0 {
		return fmt.Errorf("no CUE schemas loaded")
	}
	return nil
}

// ValidateConfig checks decoded configuration data against #Config.
func (v *Validator) ValidateConfig(data map[string]any) ([]ValidationError, error) {
	return v.validate(DefConfig, data)
}

// ValidateLabels checks decoded label pack data against #Labels.
func (v *Validator) ValidateLabels(data map[string]any) ([]ValidationError, error) {
	return v.validate(DefLabels, data)
}

func (v *Validator) validate(def string, data map[string]any) ([]ValidationError, error) {
	defPath := cue.ParsePath("#" + def)
	for _, schema := range v.schemas {
		d := schema.LookupPath(defPath)
		if !d.Exists() {
			continue
		}
		return v.validateAgainstSchema(d, data)
	}
	return nil, fmt.Errorf("schema definition #%s not loaded", def)
}

func (v *Validator) validateAgainstSchema(def cue.Value, data map[string]any) ([]ValidationError, error) {
	dataValue := v.ctx.Encode(data)
	if encErr := dataValue.Err(); encErr != nil {
		return nil, fmt.Errorf("error encoding data: %w", encErr)
	}

	unified := def.Unify(dataValue)
	if err := unified.Err(); err != nil {
		return extractErrors(err), nil
	}
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return extractErrors(err), nil
	}
	return nil, nil
}

// extractErrors splits a CUE error into one ValidationError per violation.
func extractErrors(err error) []ValidationError {
	var out []ValidationError
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		out = append(out, ValidationError{
			Path:     strings.Join(e.Path(), "."),
			Message:  fmt.Sprintf(format, args...),
			Severity: "error",
		})
	}
	if len(out) == 0 {
		out = append(out, ValidationError{Message: err.Error(), Severity: "error"})
	}
	return out
}

// DecodeFile reads a YAML or JSON document into a generic map.
func DecodeFile(path string) (map[string]any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	data := make(map[string]any)
	if err := yamlv3.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return data, nil
}

// CheckFile decodes path and validates it against def. Every violation is
// returned with File set to path.
func (v *Validator) CheckFile(path, def string) ([]ValidationError, error) {
	data, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	errs, err := v.validate(def, data)
	if err != nil {
		return nil, err
	}
	for i := range errs {
		errs[i].File = path
	}
	return errs, nil
}

// JoinErrors folds violations into one error, or nil when there are none.
func JoinErrors(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}
