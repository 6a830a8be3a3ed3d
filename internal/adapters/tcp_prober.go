package adapters

import (
	"context"
	"net"

	"chatbot-bootstrap/internal/ports"
	"chatbot-bootstrap/internal/types"
)

// TCPProberAdapter opens and immediately closes a TCP connection, the same
// check as "nc -z host port".
type TCPProberAdapter struct {
	Dialer net.Dialer
}

func NewTCPProberAdapter() TCPProberAdapter {
	return TCPProberAdapter{}
}

func (a TCPProberAdapter) Probe(ctx context.Context, endpoint types.Endpoint) error {
	conn, err := a.Dialer.DialContext(ctx, "tcp", endpoint.Address())
	if err != nil {
		return err
	}
	return conn.Close()
}

var _ ports.ProberPort = TCPProberAdapter{}
