// engine/internal/config/config.go
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig       `yaml:"app" json:"app"`
	Browser   BrowserConfig   `yaml:"browser" json:"browser"`
	Pass      PassConfig      `yaml:"pass" json:"pass"`
	Apply     ApplyConfig     `yaml:"apply" json:"apply"`
	Filters   FilterConfig    `yaml:"filters" json:"filters"`
	Tailoring TailoringConfig `yaml:"tailoring" json:"tailoring"`
	LLM       LLMConfig       `yaml:"llm" json:"llm"`
	Ledger    LedgerConfig    `yaml:"ledger" json:"ledger"`
	Notify    NotifyConfig    `yaml:"notify" json:"notify"`
	Diag      DiagConfig      `yaml:"diag" json:"diag"`
	Selectors Selectors       `yaml:"selectors" json:"selectors"`
}

type AppConfig struct {
	Port    int    `yaml:"port" json:"port"`
	DataDir string `yaml:"data_dir" json:"data_dir"`
	LogFile string `yaml:"log_file" json:"log_file"`
}

type BrowserConfig struct {
	Headless   bool   `yaml:"headless" json:"headless"`
	SlowMoMs   int    `yaml:"slow_mo_ms" json:"slow_mo_ms"`
	ProfileDir string `yaml:"profile_dir" json:"profile_dir"`
	SearchURL  string `yaml:"search_url" json:"search_url"`
	// Upper bound on UI actions (clicks, uploads) per second.
	ActionsPerSecond float64 `yaml:"actions_per_second" json:"actions_per_second"`
	ActionBurst      int     `yaml:"action_burst" json:"action_burst"`
}

type PassConfig struct {
	Schedule           string `yaml:"schedule" json:"schedule"`
	RunOnStartup       bool   `yaml:"run_on_startup" json:"run_on_startup"`
	TopN               int    `yaml:"top_n" json:"top_n"`
	DiscoveryTimeoutMs int    `yaml:"discovery_timeout_ms" json:"discovery_timeout_ms"`
	CardSettleMs       int    `yaml:"card_settle_ms" json:"card_settle_ms"`
	CooldownSeconds    int    `yaml:"cooldown_seconds" json:"cooldown_seconds"`
}

type ApplyConfig struct {
	AutoSubmit     bool `yaml:"auto_submit" json:"auto_submit"`
	MaxSteps       int  `yaml:"max_steps" json:"max_steps"`
	ClickSettleMs  int  `yaml:"click_settle_ms" json:"click_settle_ms"`
	StepSettleMs   int  `yaml:"step_settle_ms" json:"step_settle_ms"`
	ModalTimeoutMs int  `yaml:"modal_timeout_ms" json:"modal_timeout_ms"`
}

type FilterConfig struct {
	Block []string `yaml:"block" json:"block"`
	Allow []string `yaml:"allow" json:"allow"`
}

type TailoringConfig struct {
	Enabled             bool   `yaml:"enabled" json:"enabled"`
	BaseDocument        string `yaml:"base_document" json:"base_document"`
	CandidateName       string `yaml:"candidate_name" json:"candidate_name"`
	StagingDir          string `yaml:"staging_dir" json:"staging_dir"`
	MaxDescriptionChars int    `yaml:"max_description_chars" json:"max_description_chars"`
	MaxProfileChars     int    `yaml:"max_profile_chars" json:"max_profile_chars"`
	RetentionHours      int    `yaml:"retention_hours" json:"retention_hours"`
	Pitch               bool   `yaml:"pitch" json:"pitch"`
}

type LLMConfig struct {
	Provider       string `yaml:"provider" json:"provider"` // ollama | googleai
	Model          string `yaml:"model" json:"model"`
	OllamaHost     string `yaml:"ollama_host" json:"ollama_host"`
	GeminiAPIKey   string `yaml:"-" json:"-"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
}

type LedgerConfig struct {
	Backend       string `yaml:"backend" json:"backend"` // sqlite | file | redis
	Path          string `yaml:"path" json:"path"`
	RedisAddr     string `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string `yaml:"-" json:"-"`
	RedisDB       int    `yaml:"redis_db" json:"redis_db"`
	RedisKey      string `yaml:"redis_key" json:"redis_key"`
}

type NotifyConfig struct {
	WebhookURL     string   `yaml:"-" json:"-"`
	KafkaBrokers   []string `yaml:"kafka_brokers" json:"kafka_brokers"`
	KafkaTopic     string   `yaml:"kafka_topic" json:"kafka_topic"`
	TimeoutSeconds int      `yaml:"timeout_seconds" json:"timeout_seconds"`
}

type DiagConfig struct {
	Dir      string `yaml:"dir" json:"dir"`
	S3Bucket string `yaml:"s3_bucket" json:"s3_bucket"`
	S3Prefix string `yaml:"s3_prefix" json:"s3_prefix"`
	S3Region string `yaml:"s3_region" json:"s3_region"`
}

// Selectors lists the DOM variants probed for each affordance, in priority order.
type Selectors struct {
	Cards        string   `yaml:"cards" json:"cards"`
	CardIDAttr   string   `yaml:"card_id_attr" json:"card_id_attr"`
	Title        []string `yaml:"title" json:"title"`
	Description  []string `yaml:"description" json:"description"`
	OverlayClose string   `yaml:"overlay_close" json:"overlay_close"`
	ApplyTrigger []string `yaml:"apply_trigger" json:"apply_trigger"`
	Modal        string   `yaml:"modal" json:"modal"`
	Upload       string   `yaml:"upload" json:"upload"`
	Submit       []string `yaml:"submit" json:"submit"`
	Review       []string `yaml:"review" json:"review"`
	Advance      []string `yaml:"advance" json:"advance"`
}

func Default() Config {
	var c Config

	c.App.Port = 38471
	c.App.DataDir = "."
	c.App.LogFile = "autoapply.log"

	c.Browser.Headless = true
	c.Browser.SlowMoMs = 1000
	c.Browser.ProfileDir = "chrome_profile"
	c.Browser.SearchURL = "https://www.linkedin.com/jobs/search/?keywords=Cybersecurity%20OR%20AI&f_AL=true&f_WT=2&location=United%20States"
	c.Browser.ActionsPerSecond = 1
	c.Browser.ActionBurst = 2

	c.Pass.Schedule = "0 */5 * * * *"
	c.Pass.RunOnStartup = true
	c.Pass.TopN = 5
	c.Pass.DiscoveryTimeoutMs = 15000
	c.Pass.CardSettleMs = 3000
	c.Pass.CooldownSeconds = 10

	c.Apply.AutoSubmit = true
	c.Apply.MaxSteps = 9
	c.Apply.ClickSettleMs = 2000
	c.Apply.StepSettleMs = 1500
	c.Apply.ModalTimeoutMs = 10000

	c.Filters.Block = []string{
		"Sales", "Account Executive", "Business Development", "SDR", "BDR",
		"Account Manager", "Customer Success", "Recruiter", "Marketing", "Head of",
	}
	c.Filters.Allow = []string{
		"Cyber", "Security", "AI", "Artificial Intelligence", "Analyst", "Engineer",
		"Developer", "Architect", "SOC", "Penetration", "Red Team", "Blue Team",
		"Automation", "Threat", "Vulnerability", "GRC", "Product", "Intern",
	}

	c.Tailoring.Enabled = true
	c.Tailoring.BaseDocument = "resume.pdf"
	c.Tailoring.CandidateName = "Sam"
	c.Tailoring.StagingDir = "tailored"
	c.Tailoring.MaxDescriptionChars = 3000
	c.Tailoring.MaxProfileChars = 4000
	c.Tailoring.RetentionHours = 24
	c.Tailoring.Pitch = true

	c.LLM.Provider = "ollama"
	c.LLM.Model = "llama3.1"
	c.LLM.TimeoutSeconds = 120

	c.Ledger.Backend = "sqlite"
	c.Ledger.Path = "applied_jobs.json"
	c.Ledger.RedisAddr = "localhost:6379"
	c.Ledger.RedisKey = "autoapply:applied"

	c.Notify.KafkaTopic = "autoapply.applications"
	c.Notify.TimeoutSeconds = 10

	c.Diag.Dir = "debug"

	c.Selectors = Selectors{
		Cards:      ".job-card-container",
		CardIDAttr: "data-job-id",
		Title: []string{
			"h2.t-24",
			".job-details-jobs-unified-top-card__job-title",
			"h1.t-24",
		},
		Description: []string{
			"#job-details",
			".jobs-description__content",
			".jobs-box__html-content",
		},
		OverlayClose: ".msg-overlay-bubble-header__control--close-btn",
		ApplyTrigger: []string{
			"button.jobs-apply-button",
			"button:has-text('Easy Apply')",
			".jobs-apply-button--top-card button",
		},
		Modal:   ".artdeco-modal",
		Upload:  "input[type='file']",
		Submit:  []string{"button:has-text('Submit application')"},
		Review:  []string{"button:has-text('Review')"},
		Advance: []string{"button:has-text('Next')"},
	}
	return c
}

// Load reads a YAML file over the defaults; keys missing from the file keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func (a ApplyConfig) ClickSettle() time.Duration  { return ms(a.ClickSettleMs) }
func (a ApplyConfig) StepSettle() time.Duration   { return ms(a.StepSettleMs) }
func (a ApplyConfig) ModalTimeout() time.Duration { return ms(a.ModalTimeoutMs) }

func (p PassConfig) DiscoveryTimeout() time.Duration { return ms(p.DiscoveryTimeoutMs) }
func (p PassConfig) CardSettle() time.Duration       { return ms(p.CardSettleMs) }
func (p PassConfig) Cooldown() time.Duration {
	return time.Duration(p.CooldownSeconds) * time.Second
}

func (t TailoringConfig) Retention() time.Duration {
	return time.Duration(t.RetentionHours) * time.Hour
}
