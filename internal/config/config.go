package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anderschbe/password-strength-meter/internal/labels"
	"github.com/anderschbe/password-strength-meter/internal/schema"
	"github.com/anderschbe/password-strength-meter/internal/scoring"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ConfigPaths are searched in order when no config file is given.
var ConfigPaths = []string{".pwmeterrc.json", ".pwmeterrc.yaml", ".pwmeterrc.yml"}

// Config represents the pwmeter configuration
type Config struct {
	MinimumLength        int  `mapstructure:"minimumLength" yaml:"minimumLength" json:"minimumLength"`
	MinimumNumbers       int  `mapstructure:"minimumNumbers" yaml:"minimumNumbers" json:"minimumNumbers"`
	MinimumLetters       int  `mapstructure:"minimumLetters" yaml:"minimumLetters" json:"minimumLetters"`
	MinimumSymbols       int  `mapstructure:"minimumSymbols" yaml:"minimumSymbols" json:"minimumSymbols"`
	RequireUpperLower    bool `mapstructure:"requireUpperLower" yaml:"requireUpperLower" json:"requireUpperLower"`
	CheckUsername        bool `mapstructure:"checkUsername" yaml:"checkUsername" json:"checkUsername"`
	UsernamePartialMatch bool `mapstructure:"usernamePartialMatch" yaml:"usernamePartialMatch" json:"usernamePartialMatch"`
	LegacyLetterCheck    bool `mapstructure:"legacyLetterCheck" yaml:"legacyLetterCheck" json:"legacyLetterCheck"`

	Format      string   `mapstructure:"format" yaml:"format" json:"format"`
	Output      string   `mapstructure:"output" yaml:"output,omitempty" json:"output,omitempty"`
	Quiet       bool     `mapstructure:"quiet" yaml:"quiet" json:"quiet"`
	Verbose     bool     `mapstructure:"verbose" yaml:"verbose" json:"verbose"`
	ShowPercent bool     `mapstructure:"showPercent" yaml:"showPercent" json:"showPercent"`
	ShowText    bool     `mapstructure:"showText" yaml:"showText" json:"showText"`
	FailUnder   int      `mapstructure:"failUnder" yaml:"failUnder" json:"failUnder"`
	Exclude     []string `mapstructure:"exclude" yaml:"exclude,omitempty" json:"exclude,omitempty"`
	LabelsFile  string   `mapstructure:"labelsFile" yaml:"labelsFile,omitempty" json:"labelsFile,omitempty"`

	Labels labels.Pack `mapstructure:"labels" yaml:"labels,omitempty" json:"labels,omitempty"`

	// File is the config file that was read, if any
	File string `mapstructure:"-" yaml:"-" json:"-"`
}

// SetDefaults registers default values with viper
func SetDefaults() {
	d := scoring.DefaultConfig()
	viper.SetDefault("minimumLength", d.MinimumLength)
	viper.SetDefault("minimumNumbers", d.MinimumNumbers)
	viper.SetDefault("minimumLetters", d.MinimumLetters)
	viper.SetDefault("minimumSymbols", d.MinimumSymbols)
	viper.SetDefault("requireUpperLower", d.RequireUpperLower)
	viper.SetDefault("checkUsername", d.CheckUsername)
	viper.SetDefault("usernamePartialMatch", d.UsernamePartialMatch)
	viper.SetDefault("legacyLetterCheck", d.LegacyLetterCheck)
	viper.SetDefault("format", "console")
	viper.SetDefault("output", "")
	viper.SetDefault("quiet", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("showPercent", false)
	viper.SetDefault("showText", true)
	viper.SetDefault("failUnder", 0)
	viper.SetDefault("labelsFile", "")
}

// LoadConfig loads configuration from defaults, the config file, PWMETER_*
// environment variables, and any flags bound to viper, in that order of
// increasing precedence. An empty configFile searches ConfigPaths.
func LoadConfig(configFile string) (*Config, error) {
	SetDefaults()

	path, err := findConfigFile(configFile)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := checkFile(path, schema.DefConfig); err != nil {
			return nil, fmt.Errorf("invalid config file: %w", err)
		}
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables
	viper.SetEnvPrefix("PWMETER")
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.File = path

	inline := config.Labels
	config.Labels = labels.Default()
	if config.LabelsFile != "" {
		file, err := labels.Load(config.LabelsFile)
		if err != nil {
			return nil, fmt.Errorf("error loading labels: %w", err)
		}
		config.Labels = config.Labels.Merge(file)
	}
	config.Labels = config.Labels.Merge(inline)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func findConfigFile(configFile string) (string, error) {
	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return configFile, nil
	}
	for _, path := range ConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

func checkFile(path, def string) error {
	v := schema.NewValidator()
	if err := v.LoadSchemas(); err != nil {
		return err
	}
	violations, err := v.CheckFile(path, def)
	if err != nil {
		return err
	}
	return schema.JoinErrors(violations)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	switch config.Format {
	case "console", "json", "markdown":
	default:
		return fmt.Errorf("invalid format: %s. Must be 'console', 'json', or 'markdown'", config.Format)
	}

	if config.MinimumLength < 1 {
		return fmt.Errorf("minimumLength must be at least 1")
	}
	minimums := map[string]int{
		"minimumNumbers": config.MinimumNumbers,
		"minimumLetters": config.MinimumLetters,
		"minimumSymbols": config.MinimumSymbols,
	}
	for name, value := range minimums {
		if value < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}

	if config.FailUnder < 0 || config.FailUnder > 100 {
		return fmt.Errorf("failUnder must be between 0 and 100")
	}

	if len(config.Labels.Steps) == 0 {
		return fmt.Errorf("labels need at least one step")
	}

	return nil
}

// Scoring returns the scorer requirements.
func (c *Config) Scoring() scoring.Config {
	return scoring.Config{
		MinimumLength:        c.MinimumLength,
		MinimumNumbers:       c.MinimumNumbers,
		MinimumLetters:       c.MinimumLetters,
		MinimumSymbols:       c.MinimumSymbols,
		RequireUpperLower:    c.RequireUpperLower,
		CheckUsername:        c.CheckUsername,
		UsernamePartialMatch: c.UsernamePartialMatch,
		LegacyLetterCheck:    c.LegacyLetterCheck,
	}
}

// LabelSet returns the effective labels.
func (c *Config) LabelSet() scoring.LabelSet {
	return c.Labels.LabelSet()
}

// SaveConfig writes config to path as JSON, or YAML for .yaml/.yml paths
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
