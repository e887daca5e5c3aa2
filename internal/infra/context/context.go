// Package context carries per-invocation values through context.Context.
package context

type contextKey string
