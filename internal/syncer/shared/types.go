package shared

import (
	"context"
	"io/fs"
	"time"

	"github.com/temirov/reposync/internal/execshell"
)

const (
	// OriginRemoteNameConstant identifies the default upstream remote.
	OriginRemoteNameConstant = "origin"
	// PublickeyDeniedStderrConstant is the stderr fragment that triggers the HTTPS clone fallback.
	PublickeyDeniedStderrConstant = "Permission denied (publickey)"
)

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FileSystem exposes filesystem operations required by syncer services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, permissions fs.FileMode) error
	RemoveAll(path string) error
}

// GitExecutor exposes the subset of shell execution used by syncer services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}
