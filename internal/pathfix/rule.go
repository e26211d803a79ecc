package pathfix

import (
	"bytes"
	"strings"

	"git.home.luguber.info/inful/docpathfix/internal/config"
	"git.home.luguber.info/inful/docpathfix/internal/foundation/errors"
)

// Rule is a literal prefix substitution.
type Rule struct {
	Bad  string
	Good string
}

// DefaultRule returns the rewrite for a generator writing to buildOutput.
func DefaultRule(buildOutput string) Rule {
	return Rule{Bad: config.DefaultBad(buildOutput), Good: config.DefaultGood}
}

// Validate rejects an empty bad prefix and rules that would not be idempotent.
func (r Rule) Validate() error {
	if r.Bad == "" {
		return errors.ConfigError("rewrite rule has an empty bad prefix").Build()
	}
	if strings.Contains(r.Good, r.Bad) {
		return errors.ConfigError("rewrite rule is not idempotent").
			WithContext("bad", r.Bad).
			WithContext("good", r.Good).
			Build()
	}
	return nil
}

// Apply replaces every occurrence of the bad prefix. It returns the input slice
// unchanged when there is nothing to replace.
func (r Rule) Apply(content []byte) ([]byte, int) {
	bad := []byte(r.Bad)
	n := bytes.Count(content, bad)
	if n == 0 {
		return content, 0
	}
	return bytes.ReplaceAll(content, bad, []byte(r.Good)), n
}
