package control

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/input-remapper/inputremapperd/internal/injector"
)

// Client is a thin synchronous client for the control socket, used by
// cmd/inputremapperctl and internal/statustui -- neither of which
// links the Supervisor directly, only this wire protocol.
type Client struct {
	conn    net.Conn
	scanner *bufio.Scanner
	enc     *json.Encoder
}

// Dial connects to the daemon's control socket at path.
func Dial(path string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, timeout)
	if err != nil {
		return nil, fmt.Errorf("control: dial %s: %w", path, err)
	}
	return &Client{conn: conn, scanner: bufio.NewScanner(conn), enc: json.NewEncoder(conn)}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) roundTrip(req wireRequest) (wireResponse, error) {
	if err := c.enc.Encode(req); err != nil {
		return wireResponse{}, fmt.Errorf("control: send request: %w", err)
	}
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return wireResponse{}, fmt.Errorf("control: read response: %w", err)
		}
		return wireResponse{}, fmt.Errorf("control: connection closed")
	}
	var resp wireResponse
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return wireResponse{}, fmt.Errorf("control: decode response: %w", err)
	}
	if resp.Error != "" {
		return resp, fmt.Errorf("control: %s", resp.Error)
	}
	return resp, nil
}

// StartInjecting calls start_injecting over the wire.
func (c *Client) StartInjecting(groupKey, presetName string) (bool, error) {
	resp, err := c.roundTrip(wireRequest{Op: "start_injecting", GroupKey: groupKey, PresetName: presetName})
	return resp.OK, err
}

// StopInjecting calls stop_injecting over the wire.
func (c *Client) StopInjecting(groupKey string) error {
	_, err := c.roundTrip(wireRequest{Op: "stop_injecting", GroupKey: groupKey})
	return err
}

// StopAll calls stop_all over the wire.
func (c *Client) StopAll() error {
	_, err := c.roundTrip(wireRequest{Op: "stop_all"})
	return err
}

// GetState calls get_state over the wire.
func (c *Client) GetState(groupKey string) (injector.State, bool, error) {
	resp, err := c.roundTrip(wireRequest{Op: "get_state", GroupKey: groupKey})
	if err != nil {
		return injector.State{}, false, err
	}
	if resp.State == nil {
		return injector.State{}, resp.Found, nil
	}
	return *resp.State, resp.Found, nil
}

// SetConfigDir calls set_config_dir over the wire.
func (c *Client) SetConfigDir(path string) error {
	_, err := c.roundTrip(wireRequest{Op: "set_config_dir", ConfigDir: path})
	return err
}

// Autoload calls autoload over the wire.
func (c *Client) Autoload(autoloadPath string) error {
	_, err := c.roundTrip(wireRequest{Op: "autoload", ConfigDir: autoloadPath})
	return err
}

// AutoloadSingle calls autoload_single over the wire.
func (c *Client) AutoloadSingle(autoloadPath, groupKey string) (bool, error) {
	resp, err := c.roundTrip(wireRequest{Op: "autoload_single", ConfigDir: autoloadPath, GroupKey: groupKey})
	return resp.OK, err
}

// Hello performs the liveness check, round-tripping s through the
// daemon and reporting whether it echoed back unchanged.
func (c *Client) Hello(s string) (bool, error) {
	resp, err := c.roundTrip(wireRequest{Op: "hello", Echo: s})
	if err != nil {
		return false, err
	}
	return resp.Echo == s, nil
}
