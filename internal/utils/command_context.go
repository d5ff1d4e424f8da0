package utils

import "context"

const (
	manifestPathContextKeyConstant = commandContextKey("manifestPath")
)

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithManifestPath attaches the resolved fleet manifest path to the provided context.
func (accessor CommandContextAccessor) WithManifestPath(parentContext context.Context, manifestPath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, manifestPathContextKeyConstant, manifestPath)
}

// ManifestPath extracts the fleet manifest path from the provided context.
func (accessor CommandContextAccessor) ManifestPath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	manifestPath, manifestPathAvailable := executionContext.Value(manifestPathContextKeyConstant).(string)
	if !manifestPathAvailable {
		return "", false
	}
	return manifestPath, true
}
