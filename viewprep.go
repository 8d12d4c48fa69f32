package tablesync

import (
	"context"
	"fmt"
)

// viewPreparer is component A: when configured, it (re)creates the source
// view and its dependencies before anything else runs (spec §4.A).
type viewPreparer struct{}

// prepare executes each statement in cfg.ViewDependencies in order against
// the source connection, then executes cfg.ViewDefinition. DDL here is
// assumed to auto-commit on engines that behave that way (spec §2, §5) - this
// is acceptable because nothing transactional precedes it. report's view
// fields are updated per spec §4.A's attempted-before-successful-after rule.
func (viewPreparer) prepare(ctx context.Context, cfg *SyncConfig, report *SyncReport) error {
	if !cfg.ShouldCreateView {
		return nil
	}

	report.ViewCreationAttempted = true

	for i, stmt := range cfg.ViewDependencies {
		ctx, span := startDBSpan(ctx, "view_dependency", stmt, spanAttrs(cfg.SourceName, cfg.LiveTableName)...)
		_, err := cfg.SourceDB.ExecContext(ctx, stmt)
		endSpan(span, err)
		if err != nil {
			return fmt.Errorf("%w: executing view dependency statement %d: %v", ErrConfiguration, i, err)
		}
	}

	ctx, span := startDBSpan(ctx, "view_definition", cfg.ViewDefinition, spanAttrs(cfg.SourceName, cfg.LiveTableName)...)
	_, err := cfg.SourceDB.ExecContext(ctx, cfg.ViewDefinition)
	endSpan(span, err)
	if err != nil {
		return fmt.Errorf("%w: executing view definition: %v", ErrConfiguration, err)
	}

	report.ViewCreationSuccessful = true
	report.infof("source view prepared")
	return nil
}
