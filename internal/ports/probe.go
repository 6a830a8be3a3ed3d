package ports

import (
	"context"

	"chatbot-bootstrap/internal/types"
)

// ProberPort performs a single reachability attempt. The context bounds
// the attempt; implementations must not retry internally.
type ProberPort interface {
	Probe(ctx context.Context, endpoint types.Endpoint) error
}
