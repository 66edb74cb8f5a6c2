package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/carlock/internal/audit"
	"github.com/PolarWolf314/carlock/internal/configs"
	kerrors "github.com/PolarWolf314/carlock/internal/errors"
)

// LogOptions configures the log workflow.
type LogOptions struct {
	Settings configs.Settings

	// Operation keeps only entries of this operation when set.
	Operation string

	// Limit is the maximum number of most recent entries. 0 means no limit.
	Limit int
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	// Entries are the filtered audit log entries, oldest first.
	Entries []audit.Entry

	// Total is the count of entries before filtering.
	Total int
}

// Log reads and filters the audit log.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Limit < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", kerrors.ErrMalformedInput, opts.Limit)
	}

	entries, err := audit.ReadEntries(opts.Settings)
	if err != nil {
		return nil, fmt.Errorf("%w: reading audit log: %v", kerrors.ErrIOFailure, err)
	}

	return &LogResult{
		Entries: audit.Filter(entries, opts.Operation, opts.Limit),
		Total:   len(entries),
	}, nil
}
