// Package plugin defines the plugin interfaces of the ptpdump pipeline and
// the registries plugins add themselves to.
package plugin

import "context"

// Plugin is the base interface for all plugins.
type Plugin interface {
	Name() string
	Init(cfg map[string]any) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
