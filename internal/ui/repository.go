package ui

import (
	"context"

	"github.com/quickstart-labs/hubctl/internal/api"
)

// EntityRepository is what the home view needs to list and create entities
// and to hear about definitions changing on the hub.
type EntityRepository interface {
	GetEntities() ([]api.Entity, error)
	CreateEntity(input api.CreateEntityInput) (*api.Entity, error)
	// SubscribeEntityChanges streams changed definition paths until ctx is
	// cancelled.
	SubscribeEntityChanges(ctx context.Context) (<-chan string, error)
}

// FlowRepository creates and runs flows.
type FlowRepository interface {
	CreateFlow(entity api.Entity, flowType api.FlowType, input api.CreateFlowInput) (*api.Flow, error)
	GetInputFlowOptions(flow api.Flow) (api.RunOptions, error)
	RunInputFlow(flow api.Flow, options api.RunOptions) error
	RunHarmonizeFlow(flow api.Flow) error
}

// Backend is the full hub surface used by the TUI. *api.Client satisfies it.
type Backend interface {
	EntityRepository
	FlowRepository
	Status() (*api.Status, error)
}

var _ Backend = (*api.Client)(nil)
