// Package emit provides the one-way messaging sinks that carry the
// pipeline's edge-triggered string tokens downstream. Every sink implements
// Emitter; the detectors only ever see the interface.
package emit

import (
	"log"
	"net"
)

// Emitter consumes one token per distinct value change. Implementations
// must not block the frame loop for longer than a network write.
type Emitter interface {
	Emit(token string)
}

// Func adapts a function to the Emitter interface.
type Func func(token string)

// Emit calls f.
func (f Func) Emit(token string) { f(token) }

// Multi fans one token out to several sinks, in order.
type Multi []Emitter

// Emit forwards the token to every sink.
func (m Multi) Emit(token string) {
	for _, e := range m {
		e.Emit(token)
	}
}

// UDP sends each token as one datagram, matching the original one-way
// channel contract: fire and forget, no acknowledgement.
type UDP struct {
	conn net.Conn
}

// NewUDP creates a UDP emitter for addr (host:port).
func NewUDP(addr string) (*UDP, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}
	return &UDP{conn: conn}, nil
}

// Emit writes the token as a single datagram. Delivery failures are logged
// and otherwise ignored; the channel is best effort.
func (u *UDP) Emit(token string) {
	if _, err := u.conn.Write([]byte(token)); err != nil {
		log.Printf("udp emit %q: %v", token, err)
	}
}

// Close releases the socket.
func (u *UDP) Close() error {
	return u.conn.Close()
}
