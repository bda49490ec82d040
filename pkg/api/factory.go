// Package api provides factory implementations for dependency injection
package api

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServer builds a server over the given collaborators
func (f *DefaultServerFactory) CreateServer(config ServerConfig, deps Dependencies) *Server {
	return NewServer(config, deps)
}
