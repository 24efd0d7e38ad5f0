package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/odysseus0/aidigest/internal/model"
	"github.com/odysseus0/aidigest/internal/opml"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	defaultWindowDays        = 1
	defaultMaxEntries        = 5
	defaultFetchAttempts     = 3
	defaultRetryDelaySec     = 5
	defaultHTTPTimeoutSec    = 20
	defaultChatLimit         = 4096
	defaultChatRatePerSecond = 1.0
	defaultSMTPPort          = 587
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const (
	defaultUserAgent       = "aidigest/0.1"
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultAnthropicModel  = "claude-haiku-4-5"
	defaultTelegramAPIBase = "https://api.telegram.org"
	defaultSMTPHost        = "smtp.gmail.com"
	defaultMetricsJob      = "aidigest"
	configFolderName       = "aidigest"
	configFileName         = "config.toml"
	configPathEnvName      = "XDG_CONFIG_HOME"
)

var DefaultFacets = []string{"executive_summary", "key_insights", "product_innovation", "key_concepts"}

var DefaultSources = []model.FeedSource{
	{Name: "MIT Technology Review - AI", URL: "https://www.technologyreview.com/feed/"},
	{Name: "DeepMind Blog", URL: "https://deepmind.com/blog/feed/basic/"},
	{Name: "OpenAI Blog", URL: "https://openai.com/blog/rss/"},
	{Name: "Google AI Blog", URL: "http://googleaiblog.blogspot.com/atom.xml"},
	{Name: "IBM Research Blog - AI", URL: "https://research.ibm.com/blog/category/artificial-intelligence/feed"},
	{Name: "FAIR Blog", URL: "https://research.facebook.com/blog/ai-category/rss/"},
}

type Config struct {
	Path              string
	Sources           []model.FeedSource
	WindowDays        int
	MaxEntries        int
	FetchAttempts     int
	FetchRetryDelay   time.Duration
	HTTPTimeout       time.Duration
	UserAgent         string
	Provider          string
	Model             string
	LLMBaseURL        string
	Facets            []string
	FilterPromotional bool
	AnnounceStart     bool
	ChatLimit         int
	ChatRatePerSecond float64
	TelegramAPIBase   string
	SMTPHost          string
	SMTPPort          int
	SMTPStartTLS      bool
	PushgatewayURL    string
	MetricsJob        string
}

// Default returns the built-in configuration without consulting the
// filesystem or environment.
func Default() Config {
	return Config{
		Sources:           append([]model.FeedSource(nil), DefaultSources...),
		WindowDays:        defaultWindowDays,
		MaxEntries:        defaultMaxEntries,
		FetchAttempts:     defaultFetchAttempts,
		FetchRetryDelay:   defaultRetryDelaySec * time.Second,
		HTTPTimeout:       defaultHTTPTimeoutSec * time.Second,
		UserAgent:         defaultUserAgent,
		Provider:          ProviderOpenAI,
		Facets:            append([]string(nil), DefaultFacets...),
		FilterPromotional: true,
		AnnounceStart:     true,
		ChatLimit:         defaultChatLimit,
		ChatRatePerSecond: defaultChatRatePerSecond,
		TelegramAPIBase:   defaultTelegramAPIBase,
		SMTPHost:          defaultSMTPHost,
		SMTPPort:          defaultSMTPPort,
		SMTPStartTLS:      true,
		MetricsJob:        defaultMetricsJob,
	}
}

// LoadConfig layers defaults, the config file and AIDIGEST_* environment
// overrides. An explicit path must exist; otherwise the XDG locations are
// probed and a missing file is not an error.
func LoadConfig(explicitPath string) (Config, error) {
	cfg := Default()

	configPath, hasConfig, err := resolveConfigPath(explicitPath)
	if err != nil {
		return Config{}, err
	}
	if hasConfig {
		fileCfg, err := loadFileConfig(configPath)
		if err != nil {
			return Config{}, err
		}
		if err := applyFileConfig(&cfg, fileCfg, filepath.Dir(configPath)); err != nil {
			return Config{}, err
		}
		cfg.Path = configPath
	}

	applyEnvOverrides(&cfg)
	return finalize(cfg)
}

func finalize(cfg Config) (Config, error) {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch cfg.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return Config{}, fmt.Errorf("%w: unknown provider %q (expected openai|anthropic)", ErrInvalidConfig, cfg.Provider)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	if len(cfg.Sources) == 0 {
		return Config{}, fmt.Errorf("%w: no feed sources configured", ErrInvalidConfig)
	}
	if err := validateSources(cfg.Sources); err != nil {
		return Config{}, err
	}
	if !cfg.SMTPStartTLS && !isLoopbackHost(cfg.SMTPHost) {
		return Config{}, fmt.Errorf("%w: smtp_starttls = false requires a loopback smtp_host, got %q", ErrInvalidConfig, cfg.SMTPHost)
	}
	if len(cfg.Facets) == 0 {
		cfg.Facets = append([]string(nil), DefaultFacets...)
	}
	if cfg.FetchAttempts < 1 {
		cfg.FetchAttempts = defaultFetchAttempts
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeoutSec * time.Second
	}
	if cfg.ChatLimit <= 0 || cfg.ChatLimit > defaultChatLimit {
		cfg.ChatLimit = defaultChatLimit
	}
	if cfg.ChatRatePerSecond <= 0 {
		cfg.ChatRatePerSecond = defaultChatRatePerSecond
	}
	return cfg, nil
}

func DefaultModel(provider string) string {
	if provider == ProviderAnthropic {
		return defaultAnthropicModel
	}
	return defaultOpenAIModel
}

type sourceConfig struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

type fileConfig struct {
	WindowDays        *int           `toml:"window_days"`
	MaxEntries        *int           `toml:"max_entries"`
	FetchAttempts     *int           `toml:"fetch_attempts"`
	RetryDelaySeconds *int           `toml:"fetch_retry_delay_seconds"`
	HTTPTimeoutSec    *int           `toml:"http_timeout_seconds"`
	UserAgent         *string        `toml:"user_agent"`
	Provider          *string        `toml:"provider"`
	Model             *string        `toml:"model"`
	LLMBaseURL        *string        `toml:"llm_base_url"`
	Facets            []string       `toml:"facets"`
	FilterPromotional *bool          `toml:"filter_promotional"`
	AnnounceStart     *bool          `toml:"announce_start"`
	ChatLimit         *int           `toml:"chat_limit"`
	ChatRatePerSecond *float64       `toml:"chat_rate_per_second"`
	TelegramAPIBase   *string        `toml:"telegram_api_base"`
	SMTPHost          *string        `toml:"smtp_host"`
	SMTPPort          *int           `toml:"smtp_port"`
	SMTPStartTLS      *bool          `toml:"smtp_starttls"`
	PushgatewayURL    *string        `toml:"pushgateway_url"`
	MetricsJob        *string        `toml:"metrics_job"`
	SourcesOPML       *string        `toml:"sources_opml"`
	Sources           []sourceConfig `toml:"sources"`
}

func resolveConfigPath(explicitPath string) (string, bool, error) {
	if p := strings.TrimSpace(explicitPath); p != "" {
		info, err := os.Stat(p)
		if err != nil {
			return "", false, fmt.Errorf("%w: config path %q: %v", ErrInvalidConfig, p, err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("%w: config path %q is a directory; expected a file", ErrInvalidConfig, p)
		}
		return p, true, nil
	}

	candidates := make([]string, 0, 2)
	if xdgConfigHome := strings.TrimSpace(os.Getenv(configPathEnvName)); xdgConfigHome != "" {
		candidates = append(candidates, filepath.Join(xdgConfigHome, configFolderName, configFileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", configFolderName, configFileName))
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", false, fmt.Errorf("%w: config path %q is a directory; expected a file", ErrInvalidConfig, candidate)
			}
			return candidate, true, nil
		}
		if os.IsNotExist(err) {
			continue
		}
		return "", false, fmt.Errorf("failed to read config path %q: %w", candidate, err)
	}
	return "", false, nil
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("%w: config file %q: %v", ErrInvalidConfig, path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		unknown := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			unknown = append(unknown, key.String())
		}
		sort.Strings(unknown)
		return fileConfig{}, fmt.Errorf("%w: config file %q: unknown key(s): %s", ErrInvalidConfig, path, strings.Join(unknown, ", "))
	}
	if err := validateFileConfig(path, cfg); err != nil {
		return fileConfig{}, err
	}
	return cfg, nil
}

func validateFileConfig(path string, cfg fileConfig) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: config file %q: %s", ErrInvalidConfig, path, fmt.Sprintf(format, args...))
	}
	if cfg.WindowDays != nil && *cfg.WindowDays <= 0 {
		return invalid("window_days must be > 0")
	}
	if cfg.MaxEntries != nil && *cfg.MaxEntries <= 0 {
		return invalid("max_entries must be > 0")
	}
	if cfg.FetchAttempts != nil && *cfg.FetchAttempts < 1 {
		return invalid("fetch_attempts must be >= 1")
	}
	if cfg.RetryDelaySeconds != nil && *cfg.RetryDelaySeconds < 0 {
		return invalid("fetch_retry_delay_seconds must be >= 0")
	}
	if cfg.HTTPTimeoutSec != nil && *cfg.HTTPTimeoutSec <= 0 {
		return invalid("http_timeout_seconds must be > 0")
	}
	if cfg.ChatLimit != nil && (*cfg.ChatLimit < 256 || *cfg.ChatLimit > defaultChatLimit) {
		return invalid("chat_limit must be between 256 and %d", defaultChatLimit)
	}
	if cfg.ChatRatePerSecond != nil && *cfg.ChatRatePerSecond <= 0 {
		return invalid("chat_rate_per_second must be > 0")
	}
	if cfg.SMTPPort != nil && (*cfg.SMTPPort <= 0 || *cfg.SMTPPort > 65535) {
		return invalid("smtp_port must be a valid port")
	}
	if cfg.SMTPHost != nil && strings.TrimSpace(*cfg.SMTPHost) == "" {
		return invalid("smtp_host must be non-empty when provided")
	}
	if cfg.LLMBaseURL != nil && *cfg.LLMBaseURL != "" && !isRemote(*cfg.LLMBaseURL) {
		return invalid("llm_base_url must be an http(s) URL")
	}
	if cfg.SourcesOPML != nil && strings.TrimSpace(*cfg.SourcesOPML) == "" {
		return invalid("sources_opml must be non-empty when provided")
	}
	for i, s := range cfg.Sources {
		if strings.TrimSpace(s.URL) == "" {
			return invalid("sources[%d].url is required", i)
		}
	}
	return nil
}

func applyFileConfig(cfg *Config, fileCfg fileConfig, baseDir string) error {
	if fileCfg.WindowDays != nil {
		cfg.WindowDays = *fileCfg.WindowDays
	}
	if fileCfg.MaxEntries != nil {
		cfg.MaxEntries = *fileCfg.MaxEntries
	}
	if fileCfg.FetchAttempts != nil {
		cfg.FetchAttempts = *fileCfg.FetchAttempts
	}
	if fileCfg.RetryDelaySeconds != nil {
		cfg.FetchRetryDelay = time.Duration(*fileCfg.RetryDelaySeconds) * time.Second
	}
	if fileCfg.HTTPTimeoutSec != nil {
		cfg.HTTPTimeout = time.Duration(*fileCfg.HTTPTimeoutSec) * time.Second
	}
	if fileCfg.UserAgent != nil {
		cfg.UserAgent = *fileCfg.UserAgent
	}
	if fileCfg.Provider != nil {
		cfg.Provider = *fileCfg.Provider
	}
	if fileCfg.Model != nil {
		cfg.Model = *fileCfg.Model
	}
	if fileCfg.LLMBaseURL != nil {
		cfg.LLMBaseURL = *fileCfg.LLMBaseURL
	}
	if len(fileCfg.Facets) > 0 {
		cfg.Facets = append([]string(nil), fileCfg.Facets...)
	}
	if fileCfg.FilterPromotional != nil {
		cfg.FilterPromotional = *fileCfg.FilterPromotional
	}
	if fileCfg.AnnounceStart != nil {
		cfg.AnnounceStart = *fileCfg.AnnounceStart
	}
	if fileCfg.ChatLimit != nil {
		cfg.ChatLimit = *fileCfg.ChatLimit
	}
	if fileCfg.ChatRatePerSecond != nil {
		cfg.ChatRatePerSecond = *fileCfg.ChatRatePerSecond
	}
	if fileCfg.TelegramAPIBase != nil {
		cfg.TelegramAPIBase = *fileCfg.TelegramAPIBase
	}
	if fileCfg.SMTPHost != nil {
		cfg.SMTPHost = *fileCfg.SMTPHost
	}
	if fileCfg.SMTPPort != nil {
		cfg.SMTPPort = *fileCfg.SMTPPort
	}
	if fileCfg.SMTPStartTLS != nil {
		cfg.SMTPStartTLS = *fileCfg.SMTPStartTLS
	}
	if fileCfg.PushgatewayURL != nil {
		cfg.PushgatewayURL = *fileCfg.PushgatewayURL
	}
	if fileCfg.MetricsJob != nil {
		cfg.MetricsJob = *fileCfg.MetricsJob
	}

	var sources []model.FeedSource
	if fileCfg.SourcesOPML != nil {
		opmlPath := *fileCfg.SourcesOPML
		if !filepath.IsAbs(opmlPath) && !isRemote(opmlPath) {
			opmlPath = filepath.Join(baseDir, opmlPath)
		}
		fromOPML, err := opml.ReadOPML(opmlPath)
		if err != nil {
			return fmt.Errorf("%w: sources_opml %q: %v", ErrInvalidConfig, opmlPath, err)
		}
		sources = append(sources, fromOPML...)
	}
	for _, s := range fileCfg.Sources {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			name = strings.TrimSpace(s.URL)
		}
		sources = append(sources, model.FeedSource{Name: name, URL: strings.TrimSpace(s.URL)})
	}
	if len(sources) > 0 {
		cfg.Sources = sources
	}
	return nil
}

func validateSources(sources []model.FeedSource) error {
	seen := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("%w: duplicate source name %q", ErrInvalidConfig, s.Name)
		}
		seen[s.Name] = struct{}{}
		if !isRemote(s.URL) {
			return fmt.Errorf("%w: source %q: url must be http(s), got %q", ErrInvalidConfig, s.Name, s.URL)
		}
	}
	return nil
}

// isLoopbackHost matches the hosts net/smtp will send PLAIN credentials to
// without TLS.
func isLoopbackHost(host string) bool {
	switch strings.TrimSpace(host) {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

func isRemote(v string) bool {
	return strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://")
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("AIDIGEST_WINDOW_DAYS"); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WindowDays = n
		}
	}
	if v, ok := os.LookupEnv("AIDIGEST_MAX_ENTRIES"); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxEntries = n
		}
	}
	if v, ok := os.LookupEnv("AIDIGEST_HTTP_TIMEOUT_SECONDS"); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPTimeout = time.Duration(n) * time.Second
		}
	}
	if v, ok := os.LookupEnv("AIDIGEST_USER_AGENT"); ok && v != "" {
		cfg.UserAgent = v
	}
	if v, ok := os.LookupEnv("AIDIGEST_PROVIDER"); ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := os.LookupEnv("AIDIGEST_MODEL"); ok && v != "" {
		cfg.Model = v
	}
	if v, ok := os.LookupEnv("AIDIGEST_LLM_BASE_URL"); ok && v != "" {
		cfg.LLMBaseURL = v
	}
	if v, ok := os.LookupEnv("AIDIGEST_TELEGRAM_API_BASE"); ok && v != "" {
		cfg.TelegramAPIBase = v
	}
	if v, ok := os.LookupEnv("AIDIGEST_SMTP_HOST"); ok && v != "" {
		cfg.SMTPHost = v
	}
	if v, ok := os.LookupEnv("AIDIGEST_SMTP_PORT"); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 65535 {
			cfg.SMTPPort = n
		}
	}
	if v, ok := os.LookupEnv("AIDIGEST_PUSHGATEWAY_URL"); ok && v != "" {
		cfg.PushgatewayURL = v
	}
}
