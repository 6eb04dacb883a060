package redact

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/sonnes/dakiya/core"
)

// Config controls which rules the Redactor applies.
type Config struct {
	Secrets    bool
	PII        bool
	ExtraRules []Rule
	Allowlist  []string // regex patterns to skip
}

// ParseConfig builds a Config from rule group names ("secrets", "pii").
// Blank names are ignored; an empty list yields a Config with no rules.
func ParseConfig(names []string) (Config, error) {
	var cfg Config
	for _, n := range names {
		switch strings.TrimSpace(strings.ToLower(n)) {
		case "":
		case "secrets":
			cfg.Secrets = true
		case "pii":
			cfg.PII = true
		default:
			return Config{}, fmt.Errorf("unknown redaction rule %q", n)
		}
	}
	return cfg, nil
}

// Enabled reports whether cfg selects any rule.
func (cfg Config) Enabled() bool {
	return cfg.Secrets || cfg.PII || len(cfg.ExtraRules) > 0
}

// Redactor masks sensitive substrings in message text before it is stored.
type Redactor struct {
	rules []Rule
	allow *regexp.Regexp // nil when nothing is allowlisted
}

// New creates a Redactor from the given config. Allowlist patterns that do
// not compile are ignored.
func New(cfg Config) *Redactor {
	var rules []Rule
	if cfg.Secrets {
		rules = append(rules, SecretRules()...)
	}
	if cfg.PII {
		rules = append(rules, PIIRules()...)
	}

	r := &Redactor{rules: append(rules, cfg.ExtraRules...)}

	alts := lo.FilterMap(cfg.Allowlist, func(p string, _ int) (string, bool) {
		_, err := regexp.Compile(p)
		return "(?:" + p + ")", err == nil && p != ""
	})
	if len(alts) > 0 {
		r.allow = regexp.MustCompile(strings.Join(alts, "|"))
	}
	return r
}

// Transform implements core.Transformer.
func (r *Redactor) Transform(c *core.Conversation) error {
	for i := range c.Messages {
		c.Messages[i].Text = r.Redact(c.Messages[i].Text)
	}
	return nil
}

// hit is a match to be replaced with text.
type hit struct {
	Match
	text string
}

// Redact applies all rules to s. Where matches overlap, the one starting
// first wins, and the longer one on a tie. Allowlisted values are kept.
func (r *Redactor) Redact(s string) string {
	if s == "" || len(r.rules) == 0 {
		return s
	}

	hits := r.find(s)
	if len(hits) == 0 {
		return s
	}
	slices.SortFunc(hits, func(a, b hit) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(b.End, a.End))
	})

	var b strings.Builder
	b.Grow(len(s))
	pos := 0
	for _, h := range hits {
		if h.Start < pos {
			continue
		}
		b.WriteString(s[pos:h.Start])
		b.WriteString(h.text)
		pos = h.End
	}
	b.WriteString(s[pos:])
	return b.String()
}

func (r *Redactor) find(s string) []hit {
	var hits []hit
	for _, rule := range r.rules {
		for _, m := range rule.Detect(s) {
			if r.allow != nil && r.allow.MatchString(m.Value) {
				continue
			}
			hits = append(hits, hit{Match: m, text: rule.Replacement(m)})
		}
	}
	return hits
}
