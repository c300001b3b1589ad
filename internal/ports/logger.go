package ports

import "github.com/bft-labs/actionq/pkg/log"

// Logger is the structured logger used by the application layer.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors, re-exported so internal packages import a single port.
var (
	String   = log.String
	Int      = log.Int
	Time     = log.Time
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
	With     = log.With
)
