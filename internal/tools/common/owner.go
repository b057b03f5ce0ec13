package common

import (
	"context"

	"github.com/aetherhq/aether/internal/server"
)

// GetOwnerFromArgs extracts the owner id from request arguments. An
// explicit owner argument wins, then the session owner attached to the
// request context by the HTTP transport. Falls back to "default" for
// single-user stdio deployments.
func GetOwnerFromArgs(ctx context.Context, args map[string]interface{}) string {
	if ownerVal, ok := args["owner"].(string); ok && ownerVal != "" {
		return ownerVal
	}
	if owner := server.OwnerFromContext(ctx); owner != "" {
		return owner
	}
	return "default"
}

// GetStringArg returns the named string argument or the fallback when the
// argument is absent or not a string.
func GetStringArg(args map[string]interface{}, name, fallback string) string {
	if val, ok := args[name].(string); ok && val != "" {
		return val
	}
	return fallback
}

// GetStringSliceArg returns the named argument as a string slice. JSON
// arrays arrive as []interface{}; non-string elements are skipped.
func GetStringSliceArg(args map[string]interface{}, name string) []string {
	raw, ok := args[name].([]interface{})
	if !ok {
		return nil
	}

	var values []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			values = append(values, s)
		}
	}
	return values
}
