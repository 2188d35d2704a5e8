package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	HTTPConfig struct {
		Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
		Concurrency int           `yaml:"concurrency" validate:"min=1,max=64"`
		UserAgent   string        `yaml:"user_agent" validate:"required"`
		Token       SecretString  `yaml:"token,omitempty"`
	}

	// EnvConfig names environment variables consulted when no sources are
	// given on the command line.
	EnvConfig struct {
		InputJSON    string `yaml:"input_json" validate:"required"`
		InputJSONURL string `yaml:"input_json_url" validate:"required"`
	}

	InputConfig struct {
		Charset    string     `yaml:"charset" validate:"required"`
		Delimiters string     `yaml:"delimiters" validate:"required"`
		SniffLines int        `yaml:"sniff_lines" validate:"min=1,max=1000"`
		GCT        bool       `yaml:"gct"`
		JSONPath   string     `yaml:"json_path,omitempty" sanitize:"path_clean" validate:"omitempty,filepath"`
		Env        EnvConfig  `yaml:"env"`
		HTTP       HTTPConfig `yaml:"http"`
	}

	OutputConfig struct {
		Variable              string `yaml:"variable" validate:"required,excludesall=;=()"`
		DatasetID             string `yaml:"dataset_id" validate:"required"`
		DatasetName           string `yaml:"dataset_name" validate:"required"`
		LabelColumn           string `yaml:"label_column" validate:"required"`
		PrimaryKey            string `yaml:"primary_key" validate:"required"`
		IntFormat             string `yaml:"int_format" validate:"required"`
		FloatFormat           string `yaml:"float_format" validate:"required"`
		CategoricalSample     int    `yaml:"categorical_sample" validate:"min=1"`
		NameTemplate          string `yaml:"name_template"`
		FileNameTransliterate bool   `yaml:"file_name_transliterate"`
	}

	WatchConfig struct {
		Debounce time.Duration `yaml:"debounce" validate:"gte=0"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Input     InputConfig    `yaml:"input"`
		Output    OutputConfig   `yaml:"output"`
		Watch     WatchConfig    `yaml:"watch"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	OutputNameTemplateFieldName TemplateFieldName = "name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are allowed, so no yaml.Unmarshal here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
