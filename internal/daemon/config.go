// Package daemon holds process-level configuration for the assistant bot.
// Configuration lives in a single TOML file; secrets (bot token, API key)
// may be overridden through the environment so they stay out of the file.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kdziekansky/telegram2/internal/domain"
)

// Config is the full bot configuration.
type Config struct {
	Bot      BotConfig      `toml:"bot"`
	Telegram TelegramConfig `toml:"telegram"`
	LLM      LLMConfig      `toml:"llm"`
	Credits  CreditsConfig  `toml:"credits"`
	Catalog  []PackageEntry `toml:"catalog"`
	Stars    []StarsEntry   `toml:"stars"`
	Modes    []ModeEntry    `toml:"modes"`
	Storage  StorageConfig  `toml:"storage"`
	API      APIConfig      `toml:"api"`
	Log      LogConfig      `toml:"log"`
}

// BotConfig holds identity and access settings.
type BotConfig struct {
	Name            string  `toml:"name"`
	DefaultLanguage string  `toml:"default_language"`
	AdminIDs        []int64 `toml:"admin_ids"`
}

// TelegramConfig holds Bot API transport settings.
type TelegramConfig struct {
	Token          string `toml:"token"`
	BaseURL        string `toml:"base_url"`
	PollTimeoutSec int    `toml:"poll_timeout_sec"`
}

// LLMConfig holds completion-provider settings.
type LLMConfig struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	DefaultModel   string `toml:"default_model"`
	ImageModel     string `toml:"image_model"`
	VisionModel    string `toml:"vision_model"`
	RequestTimeout string `toml:"request_timeout"` // Go duration, e.g. "90s"
}

// CreditsConfig is the cost model. The ledger itself never sees these —
// handlers price an operation here, check sufficiency, then debit.
type CreditsConfig struct {
	MessageCosts       map[string]int64 `toml:"message_costs"` // per model
	DefaultMessageCost int64            `toml:"default_message_cost"`
	ImageCost          int64            `toml:"image_cost"`
	DocumentCost       int64            `toml:"document_cost"`
	PhotoCost          int64            `toml:"photo_cost"`
	LowBalanceWarning  int64            `toml:"low_balance_warning"`
	WelcomeGrant       int64            `toml:"welcome_grant"`
	ReferrerBonus      int64            `toml:"referrer_bonus"`
	InviteeBonus       int64            `toml:"invitee_bonus"`
	HistoryLimit       int              `toml:"history_limit"` // stats transaction count
	ContextMessages    int              `toml:"context_messages"`
}

// PackageEntry is one purchasable credit bundle.
type PackageEntry struct {
	ID      int     `toml:"id"`
	Name    string  `toml:"name"`
	Credits int64   `toml:"credits"`
	Price   float64 `toml:"price"`
}

// StarsEntry maps a Telegram Stars amount to credits.
type StarsEntry struct {
	Stars   int   `toml:"stars"`
	Credits int64 `toml:"credits"`
}

// ModeEntry is a chat persona with its own system prompt and cost.
type ModeEntry struct {
	ID         string `toml:"id"`
	Name       string `toml:"name"`
	Prompt     string `toml:"prompt"`
	CreditCost int64  `toml:"credit_cost"`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	Path string `toml:"path"`
}

// APIConfig controls the admin/ops HTTP server.
type APIConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// DefaultConfig returns production defaults. The cost table mirrors the
// pricing shown to users in /credits.
func DefaultConfig() Config {
	var cfg Config
	cfg.Bot.Name = "Assistant"
	cfg.Bot.DefaultLanguage = "pl"

	cfg.Telegram.BaseURL = "https://api.telegram.org"
	cfg.Telegram.PollTimeoutSec = 50

	cfg.LLM.BaseURL = "https://api.openai.com"
	cfg.LLM.DefaultModel = "gpt-3.5-turbo"
	cfg.LLM.ImageModel = "dall-e-3"
	cfg.LLM.VisionModel = "gpt-4o"
	cfg.LLM.RequestTimeout = "90s"

	cfg.Credits.MessageCosts = map[string]int64{
		"gpt-3.5-turbo": 1,
		"gpt-4o":        3,
		"gpt-4":         5,
	}
	cfg.Credits.DefaultMessageCost = 1
	cfg.Credits.ImageCost = 10
	cfg.Credits.DocumentCost = 5
	cfg.Credits.PhotoCost = 8
	cfg.Credits.LowBalanceWarning = 5
	cfg.Credits.WelcomeGrant = 20
	cfg.Credits.ReferrerBonus = 50
	cfg.Credits.InviteeBonus = 25
	cfg.Credits.HistoryLimit = 10
	cfg.Credits.ContextMessages = 20

	cfg.Catalog = []PackageEntry{
		{ID: 1, Name: "Starter", Credits: 100, Price: 4.99},
		{ID: 2, Name: "Standard", Credits: 300, Price: 13.99},
		{ID: 3, Name: "Premium", Credits: 700, Price: 29.99},
		{ID: 4, Name: "Pro", Credits: 1500, Price: 49.99},
	}

	cfg.Stars = []StarsEntry{
		{Stars: 100, Credits: 110},
		{Stars: 250, Credits: 300},
		{Stars: 500, Credits: 650},
		{Stars: 1000, Credits: 1400},
	}

	cfg.Modes = []ModeEntry{
		{ID: "assistant", Name: "Assistant", Prompt: "You are a helpful assistant.", CreditCost: 1},
		{ID: "translator", Name: "Translator", Prompt: "You translate text precisely, preserving tone and formatting.", CreditCost: 1},
		{ID: "coder", Name: "Programmer", Prompt: "You are an expert programmer. Answer with working code and short explanations.", CreditCost: 3},
		{ID: "creative", Name: "Creative writer", Prompt: "You write vivid, original prose on request.", CreditCost: 3},
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	cfg.Storage.Path = filepath.Join(home, ".assistant", "bot.db")

	cfg.API.Enabled = true
	cfg.API.Host = "127.0.0.1"
	cfg.API.Port = 8090
	cfg.API.Metrics = true

	cfg.Log.Level = "info"
	return cfg
}

// Load reads cfg from path (missing file is fine — defaults apply) and then
// applies environment overrides for secrets.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	return cfg, nil
}

// Validate checks the settings a running bot cannot do without.
func (c Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram token missing (set [telegram].token or TELEGRAM_BOT_TOKEN)")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key missing (set [llm].api_key or OPENAI_API_KEY)")
	}
	if len(c.Catalog) == 0 {
		return fmt.Errorf("credit catalog is empty")
	}
	return nil
}

// Packages converts the configured catalog into domain packages,
// preserving file order.
func (c Config) Packages() []domain.CreditPackage {
	out := make([]domain.CreditPackage, 0, len(c.Catalog))
	for _, p := range c.Catalog {
		out = append(out, domain.CreditPackage{ID: p.ID, Name: p.Name, Credits: p.Credits, Price: p.Price})
	}
	return out
}

// StarsOptions converts the configured stars table, preserving file order.
func (c Config) StarsOptions() []domain.StarsOption {
	out := make([]domain.StarsOption, 0, len(c.Stars))
	for _, s := range c.Stars {
		out = append(out, domain.StarsOption{Stars: s.Stars, Credits: s.Credits})
	}
	return out
}

// ChatModes converts the configured personas, preserving file order.
func (c Config) ChatModes() []domain.ChatMode {
	out := make([]domain.ChatMode, 0, len(c.Modes))
	for _, m := range c.Modes {
		out = append(out, domain.ChatMode{ID: m.ID, Name: m.Name, Prompt: m.Prompt, CreditCost: m.CreditCost})
	}
	return out
}

// MessageCost returns the per-message cost for a model.
func (c Config) MessageCost(model string) int64 {
	if cost, ok := c.Credits.MessageCosts[model]; ok {
		return cost
	}
	return c.Credits.DefaultMessageCost
}

// IsAdmin reports whether id is in the configured admin list.
func (c Config) IsAdmin(id int64) bool {
	for _, a := range c.Bot.AdminIDs {
		if a == id {
			return true
		}
	}
	return false
}

// RequestTimeout parses the configured LLM timeout, defaulting to 90s.
func (c Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.RequestTimeout)
	if err != nil || d <= 0 {
		return 90 * time.Second
	}
	return d
}
