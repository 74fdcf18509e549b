package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// CronParser accepts the six-field (seconds first) schedules used by pass.schedule.
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NormalizeAndValidate returns a normalized copy plus the validation report.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Filters.Block = trimList(out.Filters.Block)
	out.Filters.Allow = trimList(out.Filters.Allow)
	out.Notify.KafkaBrokers = trimList(out.Notify.KafkaBrokers)

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if _, err := CronParser.Parse(out.Pass.Schedule); err != nil {
		res.addErr("pass.schedule %q is not a valid cron expression: %v", out.Pass.Schedule, err)
	}
	if out.Pass.TopN <= 0 {
		res.addErr("pass.top_n must be > 0")
	} else if out.Pass.TopN > 25 {
		res.addWarn("pass.top_n is high (%d); long passes are more likely to trip anti-automation checks.", out.Pass.TopN)
	}
	if out.Pass.CooldownSeconds < 0 {
		res.addErr("pass.cooldown_seconds must be >= 0")
	}

	if out.Apply.MaxSteps <= 0 {
		res.addErr("apply.max_steps must be > 0")
	}
	if out.Apply.ModalTimeoutMs <= 0 {
		res.addErr("apply.modal_timeout_ms must be > 0")
	}
	if out.Apply.ClickSettleMs < 0 || out.Apply.StepSettleMs < 0 {
		res.addErr("apply settle intervals must be >= 0")
	}
	if out.Apply.StepSettleMs < 500 {
		res.addWarn("apply.step_settle_ms is very low (%d); steps may be probed before they render.", out.Apply.StepSettleMs)
	}

	if out.Browser.ActionsPerSecond <= 0 {
		res.addErr("browser.actions_per_second must be > 0")
	}
	if strings.TrimSpace(out.Browser.SearchURL) == "" {
		res.addErr("browser.search_url is required")
	}

	if len(out.Filters.Allow) == 0 {
		res.addWarn("filters.allow is empty; every title will be rejected.")
	}
	blockSet := map[string]bool{}
	for _, b := range out.Filters.Block {
		blockSet[strings.ToLower(b)] = true
	}
	for _, a := range out.Filters.Allow {
		if blockSet[strings.ToLower(a)] {
			res.addWarn("term appears in both allow and block: %q", a)
		}
	}

	if strings.TrimSpace(out.Tailoring.BaseDocument) == "" {
		res.addErr("tailoring.base_document is required")
	}
	if out.Tailoring.Enabled {
		if out.Tailoring.MaxDescriptionChars <= 0 {
			res.addErr("tailoring.max_description_chars must be > 0 when tailoring.enabled=true")
		}
		if strings.TrimSpace(out.Tailoring.StagingDir) == "" {
			res.addErr("tailoring.staging_dir is required when tailoring.enabled=true")
		}
	}
	if out.Tailoring.RetentionHours <= 0 {
		res.addErr("tailoring.retention_hours must be > 0")
	}

	switch out.LLM.Provider {
	case "ollama", "googleai":
	default:
		res.addErr("llm.provider must be ollama or googleai, got %q", out.LLM.Provider)
	}

	switch out.Ledger.Backend {
	case "sqlite":
	case "file":
		if strings.TrimSpace(out.Ledger.Path) == "" {
			res.addErr("ledger.path is required when ledger.backend=file")
		}
	case "redis":
		if strings.TrimSpace(out.Ledger.RedisAddr) == "" {
			res.addErr("ledger.redis_addr is required when ledger.backend=redis")
		}
	default:
		res.addErr("ledger.backend must be sqlite, file or redis, got %q", out.Ledger.Backend)
	}

	if len(out.Notify.KafkaBrokers) > 0 && strings.TrimSpace(out.Notify.KafkaTopic) == "" {
		res.addErr("notify.kafka_topic is required when notify.kafka_brokers is set")
	}

	s := out.Selectors
	if s.Cards == "" || s.CardIDAttr == "" || s.Modal == "" || s.Upload == "" {
		res.addErr("selectors.cards, card_id_attr, modal and upload are required")
	}
	for name, list := range map[string][]string{
		"title": s.Title, "apply_trigger": s.ApplyTrigger,
		"submit": s.Submit, "review": s.Review, "advance": s.Advance,
	} {
		if len(list) == 0 {
			res.addErr("selectors.%s must have at least 1 variant", name)
		}
	}

	return out, res
}
