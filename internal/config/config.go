// Package config loads the service configuration.
//
// Values are resolved in order of increasing priority: built-in defaults,
// a JSON file named by the -c flag or the CONFIG environment variable,
// a .env file, environment variables and command-line flags.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ErrInvalidLogLevel is returned when the configured log level is unknown.
var ErrInvalidLogLevel = errors.New("invalid log level")

// Config holds the runtime settings of the service.
type Config struct {
	RunAddr           string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel          string        `env:"LOG_LEVEL" validate:"loglevel"`
	LogFile           string        `env:"LOG_FILE" validate:"omitempty,logfile"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" validate:"gt=0"`
	ConfigFile        string        `env:"CONFIG"`
}

type jsonConfig struct {
	RunAddr           string `json:"server_address"`
	LogLevel          string `json:"log_level"`
	LogFile           string `json:"log_file"`
	ShutdownTimeout   string `json:"shutdown_timeout"`
	ReadHeaderTimeout string `json:"read_header_timeout"`
}

var defaultConfig = Config{
	RunAddr:           ":8080",
	LogLevel:          "info",
	LogFile:           "",
	ShutdownTimeout:   10 * time.Second,
	ReadHeaderTimeout: 5 * time.Second,
}

var allowedLogLevels = map[string]bool{
	"debug":  true,
	"info":   true,
	"warn":   true,
	"error":  true,
	"dpanic": true,
	"panic":  true,
	"fatal":  true,
}

// InitOption customizes New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

// WithDisableFlagsParsing makes New ignore command-line flags.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs makes New parse args instead of os.Args[1:].
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

// New builds and validates the configuration.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                os.Args[1:],
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	var valuesFromEnv Config
	err = env.Parse(&valuesFromEnv)
	if err != nil {
		return nil, err
	}

	var valuesFromFlags cliFlags
	if !options.disableFlagsParsing {
		valuesFromFlags, err = parseFlags(options.args)
		if err != nil {
			return nil, err
		}
	}

	values.ConfigFile = valuesFromEnv.ConfigFile
	if valuesFromFlags.given["c"] {
		values.ConfigFile = valuesFromFlags.values.ConfigFile
	}

	if values.ConfigFile != "" {
		err = values.applyJSONFile(values.ConfigFile)
		if err != nil {
			return nil, err
		}
	}

	values.override(valuesFromEnv)
	values.applyFlags(valuesFromFlags)

	err = validate(values)
	if err != nil {
		return nil, err
	}

	return values, nil
}

func applyDefaults(values *Config, defaults Config) {
	if values.RunAddr == "" {
		values.RunAddr = defaults.RunAddr
	}

	if values.LogLevel == "" {
		values.LogLevel = defaults.LogLevel
	}

	if values.LogFile == "" {
		values.LogFile = defaults.LogFile
	}

	if values.ShutdownTimeout == 0 {
		values.ShutdownTimeout = defaults.ShutdownTimeout
	}

	if values.ReadHeaderTimeout == 0 {
		values.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
}

// override copies every non-zero field of from into c.
func (c *Config) override(from Config) {
	if from.RunAddr != "" {
		c.RunAddr = from.RunAddr
	}

	if from.LogLevel != "" {
		c.LogLevel = from.LogLevel
	}

	if from.LogFile != "" {
		c.LogFile = from.LogFile
	}

	if from.ShutdownTimeout != 0 {
		c.ShutdownTimeout = from.ShutdownTimeout
	}

	if from.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = from.ReadHeaderTimeout
	}
}

func (c *Config) applyJSONFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var raw jsonConfig
	err = json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fromFile := Config{
		RunAddr:  raw.RunAddr,
		LogLevel: raw.LogLevel,
		LogFile:  raw.LogFile,
	}

	if raw.ShutdownTimeout != "" {
		fromFile.ShutdownTimeout, err = time.ParseDuration(raw.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("parse shutdown_timeout: %w", err)
		}
	}

	if raw.ReadHeaderTimeout != "" {
		fromFile.ReadHeaderTimeout, err = time.ParseDuration(raw.ReadHeaderTimeout)
		if err != nil {
			return fmt.Errorf("parse read_header_timeout: %w", err)
		}
	}

	c.override(fromFile)

	return nil
}

// cliFlags holds the parsed command-line values and the names of the
// flags that were given explicitly.
type cliFlags struct {
	values Config
	given  map[string]bool
}

// parseFlags runs before any other source is applied because -c decides
// which JSON file is read.
func parseFlags(args []string) (cliFlags, error) {
	parsed := cliFlags{given: map[string]bool{}}
	v := &parsed.values

	fs := flag.NewFlagSet("usersvc", flag.ContinueOnError)
	fs.StringVar(&v.RunAddr, "a", defaultConfig.RunAddr, "address and port to run server")
	fs.StringVar(&v.LogLevel, "l", defaultConfig.LogLevel, "logger level")
	fs.StringVar(&v.LogFile, "f", defaultConfig.LogFile, "rotating log file, empty to log to stderr only")
	fs.DurationVar(&v.ShutdownTimeout, "t", defaultConfig.ShutdownTimeout, "graceful shutdown timeout")
	fs.DurationVar(&v.ReadHeaderTimeout, "r", defaultConfig.ReadHeaderTimeout, "timeout for reading request headers")
	fs.StringVar(&v.ConfigFile, "c", "", "JSON config file")

	if err := fs.Parse(args); err != nil {
		return parsed, err
	}

	fs.Visit(func(f *flag.Flag) {
		parsed.given[f.Name] = true
	})

	return parsed, nil
}

// applyFlags copies the explicitly given flags into c, empty values included.
func (c *Config) applyFlags(flags cliFlags) {
	if flags.given["a"] {
		c.RunAddr = flags.values.RunAddr
	}

	if flags.given["l"] {
		c.LogLevel = flags.values.LogLevel
	}

	if flags.given["f"] {
		c.LogFile = flags.values.LogFile
	}

	if flags.given["t"] {
		c.ShutdownTimeout = flags.values.ShutdownTimeout
	}

	if flags.given["r"] {
		c.ReadHeaderTimeout = flags.values.ReadHeaderTimeout
	}
}

func validateLogFile(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	info, err := os.Stat(path)
	if err != nil {
		return os.IsNotExist(err)
	}

	return !info.IsDir()
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	return allowedLogLevels[fieldLevel.Field().String()]
}

func validate(values *Config) error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("logfile", validateLogFile)
	if err != nil {
		return err
	}

	err = validate.Struct(values)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldErr := range validationErrors {
			if fieldErr.Tag() == "loglevel" {
				return fmt.Errorf("%w: %q", ErrInvalidLogLevel, values.LogLevel)
			}
		}
	}

	return err
}
