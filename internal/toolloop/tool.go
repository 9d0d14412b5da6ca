package toolloop

import (
	"context"
	"encoding/json"
	"time"
)

// Tool is the capability contract internal/toolset implementations
// satisfy. Grounded on the teacher's internal/tools/registry.go Tool
// interface, trimmed to what the batch executor needs: approval
// policy is resolved upstream by config.ApprovalPolicy, not by the
// tool itself.
type Tool interface {
	Name() string
	InputSchema() json.RawMessage
	Timeout() time.Duration
	Execute(ctx context.Context, argsJSON json.RawMessage) (string, error)
}

// Registry resolves a tool call's name to an executable Tool.
// Implemented by internal/toolset.Registry; tools discovered by
// internal/mcpclient are registered into it as plain Tools.
type Registry interface {
	Lookup(name string) (Tool, bool)

	// List returns every tool the registry holds, for advertising
	// specs to a provider at stream start. Order is unspecified.
	List() []Tool
}
