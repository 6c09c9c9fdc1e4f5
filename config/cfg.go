package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"maps"
	"net/url"
	"os"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"mjmlc/render"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	ParseConfig struct {
		// Strict turns parse warnings into errors.
		Strict bool `yaml:"strict"`
	}

	IncludeConfig struct {
		// Root is directory includes are resolved against, when empty
		// directory of the document itself is used.
		Root        string `yaml:"root,omitempty" validate:"omitempty,dir"`
		MaxIncludes int    `yaml:"max_includes" validate:"min=1"`
		Async       bool   `yaml:"async"`
	}

	RenderConfig struct {
		KeepComments     bool              `yaml:"keep_comments"`
		MinifyStyles     bool              `yaml:"minify_styles"`
		SocialIconOrigin string            `yaml:"social_icon_origin" validate:"omitempty,url"`
		Fonts            map[string]string `yaml:"fonts" validate:"dive,keys,required,endkeys,required"`
	}

	OutputConfig struct {
		NameTemplate  string `yaml:"name_template"`
		Transliterate bool   `yaml:"transliterate"`
		Extension     string `yaml:"extension" validate:"required,startswith=."`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Parse     ParseConfig    `yaml:"parse"`
		Include   IncludeConfig  `yaml:"include"`
		Render    RenderConfig   `yaml:"render"`
		Output    OutputConfig   `yaml:"output"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// NOTE: must match yaml field name above
const OutputNameTemplateFieldName TemplateFieldName = "name_template"

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

// checkFonts makes sure every configured font points to a web stylesheet,
// renderer links them as is.
func checkFonts(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	for name, link := range cfg.Render.Fonts {
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			sl.ReportError(link, "Fonts["+name+"]", "Fonts", "font_url", name)
		}
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// Unknown keys are errors, so yaml.Unmarshal cannot be used directly
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkFonts)); err != nil {
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

// Options converts render section to renderer options.
func (conf *RenderConfig) Options() render.Options {
	opts := render.DefaultOptions()
	opts.KeepComments = conf.KeepComments
	opts.MinifyStyles = conf.MinifyStyles
	if conf.SocialIconOrigin != "" {
		opts.SocialIconOrigin = conf.SocialIconOrigin
	}
	if len(conf.Fonts) > 0 {
		opts.Fonts = maps.Clone(conf.Fonts)
	}
	return opts
}
