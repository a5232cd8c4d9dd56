// Package config provides configuration management with CLI > env > file precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/tnglemongrass/blogwriter/internal/pipeline"
)

// FileName is the per-user and per-directory config file.
const FileName = ".blogwriter.conf.yml"

// Config holds all configuration options for blogwriter.
type Config struct {
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"api-key"`
	APIBase   string        `yaml:"api-base"`
	Backend   string        `yaml:"backend"`
	MaxTokens int           `yaml:"max-tokens"`
	Stream    bool          `yaml:"stream"`
	Style     string        `yaml:"style"`
	File      string        `yaml:"file"`
	Output    string        `yaml:"output"`
	Format    string        `yaml:"format"`
	Render    bool          `yaml:"render"`
	Timeout   time.Duration `yaml:"timeout"`

	OutlineTemperature float64 `yaml:"outline-temperature"`
	ContentTemperature float64 `yaml:"content-temperature"`
	PolishTemperature  float64 `yaml:"polish-temperature"`

	Concurrency   int    `yaml:"concurrency"`
	PromptPolicy  string `yaml:"prompt-policy"`
	DefaultPrompt string `yaml:"default-prompt"`

	// Command-line only.
	Interactive bool `yaml:"-"`
	ListModels  bool `yaml:"-"`
}

// DefaultConfig returns a Config with the built-in defaults.
func DefaultConfig() *Config {
	opts := pipeline.DefaultOptions()
	return &Config{
		Model:              opts.Model,
		APIBase:            "https://api.deepseek.com/v1",
		Backend:            "http",
		Style:              "逻辑清晰，简单易懂，微信公众号，中文",
		Format:             "markdown",
		Timeout:            5 * time.Minute,
		OutlineTemperature: opts.OutlineTemperature,
		ContentTemperature: opts.ContentTemperature,
		PolishTemperature:  opts.PolishTemperature,
		Concurrency:        opts.Concurrency,
		PromptPolicy:       string(opts.PromptPolicy),
	}
}

// Load builds a Config by merging CLI flags, environment variables, and config files.
// Precedence: CLI args > env vars > config files (cwd then $HOME).
func Load(args []string) (*Config, error) {
	cfg := DefaultConfig()

	// Load config files (lowest precedence first, then overwrite).
	if home, err := os.UserHomeDir(); err == nil {
		_ = cfg.loadYAML(filepath.Join(home, FileName))
	}
	_ = cfg.loadYAML(FileName)

	// Load .env files.
	_ = godotenv.Load()

	// Apply env vars.
	cfg.applyEnv()

	// Parse CLI flags (highest precedence).
	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if _, err := pipeline.ParsePromptPolicy(c.PromptPolicy); err != nil {
		return err
	}
	switch c.Format {
	case "markdown", "html":
	default:
		return fmt.Errorf("unknown format %q (want markdown or html)", c.Format)
	}
	switch c.Backend {
	case "http", "sdk":
	default:
		return fmt.Errorf("unknown backend %q (want http or sdk)", c.Backend)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max-tokens must not be negative, got %d", c.MaxTokens)
	}
	return nil
}

// PipelineOptions maps the config onto pipeline options.
func (c *Config) PipelineOptions() pipeline.Options {
	policy, _ := pipeline.ParsePromptPolicy(c.PromptPolicy)
	opts := pipeline.Options{
		Model:              c.Model,
		Style:              c.Style,
		OutlineTemperature: c.OutlineTemperature,
		ContentTemperature: c.ContentTemperature,
		PolishTemperature:  c.PolishTemperature,
		PromptPolicy:       policy,
		DefaultPrompt:      c.DefaultPrompt,
		Concurrency:        c.Concurrency,
	}
	opts.Agent.Stream = c.Stream
	if c.MaxTokens > 0 {
		n := c.MaxTokens
		opts.Agent.MaxTokens = &n
	}
	return opts
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv() {
	if v := os.Getenv("BLOGWRITER_MODEL"); v != "" {
		c.Model = v
	}
	// Mixed-case spelling kept for existing .env files.
	if v := os.Getenv("OpenAI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		c.APIBase = v
	}
	if v := os.Getenv("OPENAI_API_BASE"); v != "" {
		c.APIBase = v
	}
	if v := os.Getenv("BLOGWRITER_STYLE"); v != "" {
		c.Style = v
	}
	if v := os.Getenv("BLOGWRITER_STREAM"); v != "" {
		c.Stream = misc.Truthy(v)
	}
}

func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("blogwriter", flag.ContinueOnError)
	fs.StringVar(&c.Model, "model", c.Model, "Model name to use")
	fs.StringVar(&c.APIKey, "api-key", c.APIKey, "API key")
	fs.StringVar(&c.APIBase, "api-base", c.APIBase, "API base URL, /chat/completions is appended")
	fs.StringVar(&c.Backend, "backend", c.Backend, "Transport (http, sdk)")
	fs.IntVar(&c.MaxTokens, "max-tokens", c.MaxTokens, "Maximum tokens per completion, 0 for provider default")
	fs.BoolVar(&c.Stream, "stream", c.Stream, "Stream completions and echo progress")
	fs.StringVar(&c.Style, "style", c.Style, "Writing style injected into the outline prompt")
	fs.StringVarP(&c.File, "file", "f", c.File, "Reference text file, - for stdin")
	fs.StringVarP(&c.Output, "output", "o", c.Output, "Where to save the article")
	fs.StringVar(&c.Format, "format", c.Format, "Output format (markdown, html)")
	fs.BoolVar(&c.Render, "render", c.Render, "Render the article in the terminal")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "Per-request timeout, 0 for none")
	fs.Float64Var(&c.OutlineTemperature, "outline-temperature", c.OutlineTemperature, "Sampling temperature for the outline")
	fs.Float64Var(&c.ContentTemperature, "content-temperature", c.ContentTemperature, "Sampling temperature for drafting")
	fs.Float64Var(&c.PolishTemperature, "polish-temperature", c.PolishTemperature, "Sampling temperature for polishing")
	fs.IntVar(&c.Concurrency, "concurrency", c.Concurrency, "Sections drafted in parallel; polishing stays sequential")
	fs.StringVar(&c.PromptPolicy, "prompt-policy", c.PromptPolicy, "Outline/prompt length mismatch handling (truncate, backfill, strict)")
	fs.StringVar(&c.DefaultPrompt, "default-prompt", c.DefaultPrompt, "Writing prompt for sections without one under backfill")
	fs.BoolVarP(&c.Interactive, "interactive", "i", c.Interactive, "Enter the reference text interactively")
	fs.BoolVar(&c.ListModels, "list-models", c.ListModels, "List models offered by the endpoint and exit")
	return fs.Parse(args)
}
