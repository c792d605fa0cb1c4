// Package config loads hostaudit settings from defaults, an optional YAML
// file, HOSTAUDIT_* environment variables and command-line flags, then
// validates them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/ancients-collective/hostaudit/internal/checks"
)

// EnvPrefix is prepended to every environment override, e.g. HOSTAUDIT_TIMEOUT.
const EnvPrefix = "HOSTAUDIT"

// Keys used in viper and in the YAML config file.
const (
	KeyTimeout       = "timeout"
	KeyFormat        = "format"
	KeyShow          = "show"
	KeyOutput        = "output"
	KeyID            = "id"
	KeyNoColor       = "no_color"
	KeyQuiet         = "quiet"
	KeyDebug         = "debug"
	KeyLogLevel      = "log_level"
	KeyLogFormat     = "log_format"
	KeyUnknownFactor = "scoring.unknown_factor"
	KeyPartialFactor = "scoring.partial_factor"
	KeyWeights       = "scoring.weights"
)

// DefaultTimeout bounds every probe command.
const DefaultTimeout = 10 * time.Second

// idPattern matches valid check IDs: alphanumeric, underscores, and hyphens.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Config is the validated run configuration.
type Config struct {
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Format    string        `mapstructure:"format" validate:"oneof=text json jsonl yaml"`
	Show      string        `mapstructure:"show" validate:"oneof=all findings fail pass"`
	Output    string        `mapstructure:"output" validate:"omitempty,max=4096"`
	ID        string        `mapstructure:"id" validate:"omitempty,check_id"`
	NoColor   bool          `mapstructure:"no_color"`
	Quiet     bool          `mapstructure:"quiet"`
	Debug     bool          `mapstructure:"debug"`
	LogLevel  string        `mapstructure:"log_level" validate:"oneof=trace debug info warn warning error"`
	LogFormat string        `mapstructure:"log_format" validate:"oneof=text json"`
	Scoring   Scoring       `mapstructure:"scoring"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// Scoring tunes how verdicts translate into the aggregate score.
type Scoring struct {
	UnknownFactor float64        `mapstructure:"unknown_factor" validate:"gte=0,lte=1"`
	PartialFactor float64        `mapstructure:"partial_factor" validate:"gte=0,lte=1"`
	Weights       map[string]int `mapstructure:"weights" validate:"dive,keys,check_id,endkeys,gt=0"`
}

// Checks converts the settings into the form the check registry consumes.
func (s Scoring) Checks() checks.Scoring {
	weights := make(map[string]int, len(s.Weights))
	for id, w := range s.Weights {
		weights[id] = w
	}
	return checks.Scoring{
		UnknownFactor: s.UnknownFactor,
		PartialFactor: s.PartialFactor,
		Weights:       weights,
	}
}

// SetDefaults registers the default value of every key on v. Every key must
// have a default so environment overrides are visible to Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyFormat, "text")
	v.SetDefault(KeyShow, "all")
	v.SetDefault(KeyOutput, "")
	v.SetDefault(KeyID, "")
	v.SetDefault(KeyNoColor, false)
	v.SetDefault(KeyQuiet, false)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyUnknownFactor, checks.DefaultUnknownFactor)
	v.SetDefault(KeyPartialFactor, checks.DefaultPartialFactor)

	weights := make(map[string]any, len(checks.DefaultWeights))
	for id, w := range checks.DefaultWeights {
		weights[id] = w
	}
	v.SetDefault(KeyWeights, weights)
}

// searchPaths returns the config files tried, in order, when no explicit
// file is given.
var searchPaths = func() []string {
	paths := []string{"hostaudit.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".hostaudit.yaml"))
	}
	return paths
}

// Load layers defaults, the config file, the environment and any flags
// already bound to v, and returns the validated result. An explicit cfgFile
// must exist; the implicit search paths are optional.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	file, err := locate(cfgFile)
	if err != nil {
		return Config{}, err
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %q: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = file
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	cfg.Format = strings.ToLower(cfg.Format)
	cfg.Show = strings.ToLower(cfg.Show)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func locate(cfgFile string) (string, error) {
	if cfgFile != "" {
		info, err := os.Stat(cfgFile)
		if err != nil {
			return "", fmt.Errorf("failed to read config %q: %w", cfgFile, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("config %q is a directory", cfgFile)
		}
		return cfgFile, nil
	}
	for _, p := range searchPaths() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("check_id", func(fl validator.FieldLevel) bool {
		return idPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks cfg against its struct constraints.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// formatValidationErrors converts validator errors into a single readable error.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, formatFieldError(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}

// formatFieldError converts a single field validation error to a human-readable message.
func formatFieldError(fe validator.FieldError) string {
	field := fieldName(fe)

	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "check_id":
		return fmt.Sprintf("%s must be alphanumeric with underscores and hyphens only", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// fieldName renders the namespace as a config key, e.g. "scoring.unknown_factor".
func fieldName(fe validator.FieldError) string {
	_, key, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return key
}
