package control

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"os"

	"github.com/input-remapper/inputremapperd/internal/injector"
)

// wireRequest is one line of the control socket's newline-delimited
// JSON protocol. No repo in the retrieval pack implements an IPC
// transport, so this line-delimited JSON-over-unix-socket shape is
// built directly on stdlib net/bufio/encoding/json rather than
// imitating a pack repo -- see DESIGN.md for why no ecosystem RPC
// library was reached for instead.
type wireRequest struct {
	Op         string `json:"op"`
	GroupKey   string `json:"group_key,omitempty"`
	PresetName string `json:"preset_name,omitempty"`
	ConfigDir  string `json:"config_dir,omitempty"`
	Echo       string `json:"echo,omitempty"`
}

type wireResponse struct {
	OK    bool            `json:"ok"`
	Found bool            `json:"found,omitempty"`
	State *injector.State `json:"state,omitempty"`
	Echo  string          `json:"echo,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Server accepts connections on a unix socket and dispatches each
// line-delimited request to a Controller. One connection may issue any
// number of requests; each is answered in arrival order.
type Server struct {
	path     string
	listener net.Listener
	ctrl     *Controller
	logger   *log.Logger
}

// NewServer creates (removing any stale socket file first, matching
// the usual unix-socket daemon idiom) and listens on path.
func NewServer(path string, ctrl *Controller, logger *log.Logger) (*Server, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("control: remove stale socket %s: %w", path, err)
	}
	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("control: listen on %s: %w", path, err)
	}
	return &Server{path: path, listener: l, ctrl: ctrl, logger: logger}, nil
}

// Serve accepts connections until ctx is done or the listener errors.
// It blocks; callers run it in its own goroutine.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("control: accept: %w", err)
		}
		go s.handleConn(ctx, conn)
	}
}

// Close removes the socket file. Call after Serve has returned.
func (s *Server) Close() error {
	return os.Remove(s.path)
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	enc := json.NewEncoder(conn)
	for scanner.Scan() {
		var req wireRequest
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			_ = enc.Encode(wireResponse{Error: fmt.Sprintf("bad request: %v", err)})
			continue
		}
		resp := s.dispatch(ctx, req)
		if err := enc.Encode(resp); err != nil {
			if s.logger != nil {
				s.logger.Printf("control: write response: %v", err)
			}
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req wireRequest) wireResponse {
	switch req.Op {
	case "start_injecting":
		ok, err := s.ctrl.StartInjecting(ctx, req.GroupKey, req.PresetName)
		return errorOrOK(ok, err)
	case "stop_injecting":
		return errorOrOK(true, s.ctrl.StopInjecting(ctx, req.GroupKey))
	case "stop_all":
		return errorOrOK(true, s.ctrl.StopAll(ctx))
	case "get_state":
		st, found, err := s.ctrl.GetState(ctx, req.GroupKey)
		if err != nil {
			return wireResponse{Error: err.Error()}
		}
		return wireResponse{OK: true, Found: found, State: &st}
	case "set_config_dir":
		return errorOrOK(true, s.ctrl.SetConfigDir(ctx, req.ConfigDir))
	case "autoload":
		return errorOrOK(true, s.ctrl.Autoload(ctx, req.ConfigDir))
	case "autoload_single":
		ok, err := s.ctrl.AutoloadSingle(ctx, req.ConfigDir, req.GroupKey)
		return errorOrOK(ok, err)
	case "hello":
		if err := s.ctrl.Hello(ctx); err != nil {
			return wireResponse{Error: err.Error()}
		}
		return wireResponse{OK: true, Echo: req.Echo}
	default:
		return wireResponse{Error: fmt.Sprintf("control: unknown op %q", req.Op)}
	}
}

func errorOrOK(ok bool, err error) wireResponse {
	if err != nil {
		return wireResponse{Error: err.Error()}
	}
	return wireResponse{OK: ok}
}
