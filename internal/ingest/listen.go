package ingest

import (
	"context"
	"fmt"
	"net"
)

// Listen opens the UDP socket the ingest loop reads from
func Listen(ctx context.Context, address string, reuseAddr bool) (net.PacketConn, error) {
	lc := net.ListenConfig{}
	if reuseAddr {
		lc.Control = reuseAddrControl()
	}

	conn, err := lc.ListenPacket(ctx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}
	return conn, nil
}
