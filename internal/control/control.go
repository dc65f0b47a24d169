// Package control implements SPEC_FULL.md component K: the wire-
// format-agnostic RPC surface spec.md §6 assigns the supervisor
// process (start_injecting/stop_injecting/stop_all/get_state/
// set_config_dir/autoload/autoload_single/hello), fronting a single
// *injector.Supervisor.
//
// Grounded on other_examples/oxoao-resetti's ctl.Controller.run: one
// goroutine owns the Supervisor and selects on a request channel;
// every exported method here only ever builds a request, posts it,
// and waits on its own reply channel -- it never touches the
// Supervisor directly. This generalizes "one select loop serializes
// everything" from resetti's X11/OBS/input event fan-in to one
// command queue fed by however many client connections the transport
// in server.go accepts.
package control

import (
	"context"
	"fmt"

	"github.com/input-remapper/inputremapperd/internal/injector"
)

// request is one posted command plus the reply channel run() answers
// on. Every field not needed by op is left zero.
type request struct {
	op         string
	groupKey   string
	presetName string
	configDir  string

	reply chan response
}

type response struct {
	ok    bool
	state injector.State
	found bool
	err   error
}

// Controller owns one *injector.Supervisor and serializes every
// mutating call to it through a single goroutine (Run). It is safe to
// call its exported methods from any number of goroutines
// concurrently; they only ever send on reqs and block on their own
// reply channel.
type Controller struct {
	sup  *injector.Supervisor
	reqs chan request
}

// NewController wraps sup. Call Run in its own goroutine before using
// any exported method -- a send on reqs blocks forever otherwise.
func NewController(sup *injector.Supervisor) *Controller {
	return &Controller{sup: sup, reqs: make(chan request)}
}

// Run is the command loop: it owns every call into the Supervisor and
// exits when ctx is done. Exported-method calls watch only their own
// ctx: once Run has exited, a call is no longer served and returns its
// own ctx's error when that ctx is done.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-c.reqs:
			c.handle(req)
		}
	}
}

func (c *Controller) handle(req request) {
	var resp response
	switch req.op {
	case "start_injecting":
		ok, err := c.sup.Start(req.groupKey, req.presetName)
		resp = response{ok: ok, err: err}
	case "stop_injecting":
		c.sup.Stop(req.groupKey)
	case "stop_all":
		c.sup.StopAll()
	case "get_state":
		st, found := c.sup.GetState(req.groupKey)
		resp = response{state: st, found: found}
	case "set_config_dir":
		c.sup.SetPresetDir(req.configDir)
	case "autoload":
		cfg, err := injector.LoadAutoloadConfig(req.configDir)
		if err != nil {
			resp = response{err: err}
			break
		}
		_, err = c.sup.Autoload(cfg)
		resp = response{err: err}
	case "autoload_single":
		cfg, err := injector.LoadAutoloadConfig(req.configDir)
		if err != nil {
			resp = response{err: err}
			break
		}
		ok, err := c.sup.AutoloadSingle(cfg, req.groupKey)
		resp = response{ok: ok, err: err}
	case "hello":
		resp = response{ok: true}
	default:
		resp = response{err: fmt.Errorf("control: unknown op %q", req.op)}
	}
	req.reply <- resp
}

func (c *Controller) call(ctx context.Context, req request) (response, error) {
	req.reply = make(chan response, 1)
	select {
	case <-ctx.Done():
		return response{}, ctx.Err()
	case c.reqs <- req:
	}
	select {
	case <-ctx.Done():
		return response{}, ctx.Err()
	case resp := <-req.reply:
		return resp, nil
	}
}

// StartInjecting implements start_injecting(group_key, preset_name) -> bool.
func (c *Controller) StartInjecting(ctx context.Context, groupKey, presetName string) (bool, error) {
	resp, err := c.call(ctx, request{op: "start_injecting", groupKey: groupKey, presetName: presetName})
	if err != nil {
		return false, err
	}
	return resp.ok, resp.err
}

// StopInjecting implements stop_injecting(group_key) -> void.
func (c *Controller) StopInjecting(ctx context.Context, groupKey string) error {
	_, err := c.call(ctx, request{op: "stop_injecting", groupKey: groupKey})
	return err
}

// StopAll implements stop_all() -> void.
func (c *Controller) StopAll(ctx context.Context) error {
	_, err := c.call(ctx, request{op: "stop_all"})
	return err
}

// GetState implements get_state(group_key) -> InjectorState.
func (c *Controller) GetState(ctx context.Context, groupKey string) (injector.State, bool, error) {
	resp, err := c.call(ctx, request{op: "get_state", groupKey: groupKey})
	if err != nil {
		return injector.State{}, false, err
	}
	return resp.state, resp.found, nil
}

// SetConfigDir implements set_config_dir(path) -> void.
func (c *Controller) SetConfigDir(ctx context.Context, path string) error {
	_, err := c.call(ctx, request{op: "set_config_dir", configDir: path})
	return err
}

// Autoload implements autoload() -> void, reading the autoload JSON
// file at autoloadPath.
func (c *Controller) Autoload(ctx context.Context, autoloadPath string) error {
	resp, err := c.call(ctx, request{op: "autoload", configDir: autoloadPath})
	if err != nil {
		return err
	}
	return resp.err
}

// AutoloadSingle implements autoload_single(group_key) -> void.
func (c *Controller) AutoloadSingle(ctx context.Context, autoloadPath, groupKey string) (bool, error) {
	resp, err := c.call(ctx, request{op: "autoload_single", configDir: autoloadPath, groupKey: groupKey})
	if err != nil {
		return false, err
	}
	return resp.ok, resp.err
}

// Hello implements hello(s) -> s, a liveness check; s is echoed by the
// transport layer (server.go), not by the command loop, since it needs
// no Supervisor access at all. It is kept here as a no-op command so
// a client can also exercise it end-to-end through the same queue the
// mutating commands use.
func (c *Controller) Hello(ctx context.Context) error {
	_, err := c.call(ctx, request{op: "hello"})
	return err
}
