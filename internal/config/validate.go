package config

import (
	"fmt"
	"strings"
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

// Validate checks a loaded config for fatal mistakes and likely footguns.
func Validate(cfg Config) Validation {
	var res Validation

	if len(cfg.Sources) == 0 && !cfg.Email.Enabled {
		res.addWarn("no sources configured and email disabled; sync cycles will do nothing")
	}

	if cfg.Sync.IntervalMinutes < 5 {
		res.addWarn("sync.interval_minutes is very low (%d) and may hit rate limits", cfg.Sync.IntervalMinutes)
	}
	if cfg.Sync.CleanupChance > 1 {
		res.addErr("sync.cleanup_chance must be <= 1, got %v", cfg.Sync.CleanupChance)
	}

	seen := map[string]bool{}
	for i, s := range cfg.Sources {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			res.addErr("sources[%d]: name is required", i)
			continue
		}
		if seen[strings.ToLower(name)] {
			res.addErr("sources[%d]: duplicate source name %q", i, name)
		}
		seen[strings.ToLower(name)] = true

		if strings.TrimSpace(s.BaseURL) == "" {
			res.addErr("sources[%d] (%s): base_url is required", i, name)
		}
		if s.KeyringAccount != "" && s.KeyHeader == "" {
			res.addErr("sources[%d] (%s): key_header is required when keyring_account is set", i, name)
		}
	}

	if cfg.Email.Enabled {
		if strings.TrimSpace(cfg.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if cfg.Email.IMAPPort == 0 {
			res.addErr("email.imap_port is required when email.enabled=true")
		}
		if strings.TrimSpace(cfg.Email.Username) == "" {
			res.addErr("email.username is required when email.enabled=true")
		}
		if len(cfg.Email.SearchSubjectAny) == 0 {
			res.addWarn("email.search_subject_any is empty; the mailbox source may find nothing")
		}
	}

	return res
}
