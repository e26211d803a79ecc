package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docpathfix/internal/foundation/errors"
	"git.home.luguber.info/inful/docpathfix/internal/logfields"
	"git.home.luguber.info/inful/docpathfix/internal/metrics"
	"git.home.luguber.info/inful/docpathfix/internal/observability"
	"git.home.luguber.info/inful/docpathfix/internal/pathfix"
)

// NeedsFixPrefix starts every line printed by 'check' for an offending file.
const NeedsFixPrefix = "needs fix "

// CheckCmd implements the 'check' command. Nothing on disk is modified.
type CheckCmd struct {
	Selection `embed:""`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, c.Selection)
	if err != nil {
		return err
	}
	corrector, err := pathfix.New(correctorOptions(cfg, g.stdout(), metrics.NoopRecorder{}))
	if err != nil {
		return err
	}

	ctx := runContext(context.Background(), "check", cfg)
	offenders, err := corrector.Check(ctx)
	if err != nil {
		return err
	}

	total := 0
	for _, res := range offenders {
		total += res.Replacements
		fmt.Fprintf(g.stdout(), "%s%s (%d)\n", NeedsFixPrefix, res.Path, res.Replacements)
	}
	if len(offenders) > 0 {
		return errors.ValidationError("malformed paths found").
			WithContext("files", len(offenders)).
			WithContext("occurrences", total).
			WithContext("root", cfg.Root).
			Build()
	}

	observability.InfoContext(ctx, "No malformed paths found", logfields.Root(cfg.Root))
	return nil
}
