package types

import (
	"net"
	"strconv"
)

// Endpoint is a TCP address the supervisor waits on before delegating.
type Endpoint struct {
	Host string
	Port int
	// Source is the text or environment reference the endpoint was
	// parsed from, kept for log messages.
	Source string
}

func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e Endpoint) String() string {
	return e.Address()
}
