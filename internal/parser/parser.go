package parser

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"shipgate/pkg/pipeline"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// DefaultManifestNames are the file names probed by Discover, in order.
var DefaultManifestNames = []string{"shipgate.yml", "shipgate.yaml"}

// Parse reads and validates a pipeline manifest file, returning the parsed
// Pipeline struct or an error.
func Parse(filePath string) (*pipeline.Pipeline, error) {
	// Check if file exists
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("pipeline manifest not found: %s", filePath)
	}

	// Configure Viper
	v := viper.New()
	v.SetConfigFile(filePath)
	v.SetConfigType("yaml")

	// Read the file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("pipeline manifest not found: %s", filePath)
		}
		return nil, fmt.Errorf("failed to read pipeline manifest: %w", err)
	}

	// Unmarshal into Pipeline struct
	var p pipeline.Pipeline
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline manifest - malformed YAML: %w", err)
	}

	// Validate the structure
	if err := validate.Struct(&p); err != nil {
		return nil, formatValidationError(err)
	}

	return &p, nil
}

// Load resolves the pipeline for a run. An explicit path is parsed as-is.
// With no path, a manifest discovered in the working directory wins, and the
// built-in default pipeline is the fallback.
func Load(filePath string) (*pipeline.Pipeline, error) {
	if filePath != "" {
		return Parse(filePath)
	}

	if discovered := Discover(); discovered != "" {
		return Parse(discovered)
	}

	return pipeline.Default(), nil
}

// Discover returns the first manifest file present in the working directory,
// or an empty string when none exists.
func Discover() string {
	for _, name := range DefaultManifestNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var errorMessages []string
		for _, e := range validationErrors {
			errorMessages = append(errorMessages, formatFieldError(e))
		}

		if len(errorMessages) == 1 {
			return fmt.Errorf("validation error: %s", errorMessages[0])
		}

		result := "validation errors:\n"
		for _, msg := range errorMessages {
			result += fmt.Sprintf("  - %s\n", msg)
		}
		return fmt.Errorf("%s", result)
	}
	return fmt.Errorf("validation failed: %w", err)
}

// formatFieldError formats a single validation error into a user-friendly message.
func formatFieldError(e validator.FieldError) string {
	field := e.Field()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("field '%s' is required but missing", field)
	case "required_if":
		return fmt.Sprintf("field '%s' is required (%s)", field, e.Param())
	case "eq":
		return fmt.Sprintf("field '%s' must be '%s'", field, e.Param())
	case "oneof":
		return fmt.Sprintf("field '%s' must be one of: %s", field, e.Param())
	case "min":
		return fmt.Sprintf("field '%s' must have at least %s entries", field, e.Param())
	case "url":
		return fmt.Sprintf("field '%s' must be a valid URL", field)
	default:
		return fmt.Sprintf("field '%s' failed validation (%s)", field, tag)
	}
}
