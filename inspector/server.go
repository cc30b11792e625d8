// Package inspector implements the optional remote-debug channel: a
// WebSocket server speaking a minimal slice of the Chrome DevTools
// Protocol, gated behind config.Options.InspectorEnabled(). This path must
// never run in production — enabling it also forces bounds and stack
// checks back on (config.Options.EffectiveBoundsChecks), since a debugger
// single-stepping through raw guest memory needs every access checked.
package inspector

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/wasmdb/wasmexec/config"
	"github.com/wasmdb/wasmexec/errors"
)

// Server accepts one CDT WebSocket connection and pumps its message loop
// until the debugger signals it is done setting breakpoints.
type Server struct {
	port uint16
	log  *zap.Logger
}

// New returns a Server for cfg's CDT port, or nil if the inspector isn't
// enabled. Callers treat a nil Server as "run the query the normal way".
func New(cfg config.Options, log *zap.Logger) *Server {
	if !cfg.InspectorEnabled() {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{port: cfg.CDTPort, log: log}
}

// cdtMessage is the minimal envelope this server recognizes; every other
// field a devtools frontend sends is passed through unexamined.
type cdtMessage struct {
	ID     int             `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Run blocks accepting exactly one WebSocket connection at 127.0.0.1:port,
// logs the devtools:// URL to attach with, and pumps incoming frames until
// one carries method "Runtime.runIfWaitingForDebugger" — the signal that
// the attached debugger finished setting up and the guest may run. At that
// point Run calls onResume, which the caller wires to the actual query
// execution, and returns onResume's result.
func (s *Server) Run(ctx context.Context, onResume func() error) error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Invariant(errors.PhaseInspector, "listen on %s: %v", addr, err)
	}
	defer ln.Close()

	s.log.Info("inspector waiting for devtools",
		zap.String("url", fmt.Sprintf("devtools://devtools/bundled/inspector.html?experiments=true&v8only=true&ws=%s", addr)))

	connCh := make(chan *websocket.Conn, 1)
	acceptErrCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			acceptErrCh <- err
			return
		}
		connCh <- c
	})
	httpSrv := &http.Server{Handler: mux}
	go httpSrv.Serve(ln)
	defer httpSrv.Close()

	var conn *websocket.Conn
	select {
	case conn = <-connCh:
	case err := <-acceptErrCh:
		return errors.Invariant(errors.PhaseInspector, "accept: %v", err)
	case <-ctx.Done():
		return ctx.Err()
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		var msg cdtMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return errors.Invariant(errors.PhaseInspector, "read: %v", err)
		}
		s.log.Debug("cdt message", zap.String("method", msg.Method))
		if msg.Method == "Runtime.runIfWaitingForDebugger" {
			return onResume()
		}
	}
}
