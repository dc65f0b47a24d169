package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/input-remapper/inputremapperd/internal/config"
	"github.com/input-remapper/inputremapperd/internal/control"
	"github.com/input-remapper/inputremapperd/internal/statustui"
)

const dialTimeout = 2 * time.Second

func usage() {
	fmt.Fprintf(os.Stderr, `usage: inputremapperctl [-socket path] <command> [args]

commands:
  status  group_key...           launch the live status dashboard
  start   group_key preset_name  start injecting preset_name for group_key
  stop    group_key               stop the injection for group_key
  stop-all                        stop every running injection
  hello                           check the daemon is reachable
`)
}

func run() int {
	socketOverride := flag.String("socket", "", "override the control socket path from config.toml")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		return 2
	}

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	socketPath := cfg.SocketPath
	if *socketOverride != "" {
		socketPath = *socketOverride
	}

	client, err := control.Dial(socketPath, dialTimeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to %s: %v\n", socketPath, err)
		return 1
	}
	defer client.Close()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "status":
		return runStatus(client, rest)
	case "start":
		return runStart(client, rest)
	case "stop":
		return runStop(client, rest)
	case "stop-all":
		return runStopAll(client)
	case "hello":
		return runHello(client)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		return 2
	}
}

func runStatus(client *control.Client, groupKeys []string) int {
	if len(groupKeys) == 0 {
		fmt.Fprintln(os.Stderr, "status requires at least one group_key")
		return 2
	}
	logger := log.New(os.Stderr, "[inputremapperctl] ", log.Ltime)
	model := statustui.NewModel(client, groupKeys, logger)
	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
		return 1
	}
	return 0
}

func runStart(client *control.Client, args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "start requires group_key and preset_name")
		return 2
	}
	started, err := client.StartInjecting(args[0], args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "start_injecting: %v\n", err)
		return 1
	}
	if !started {
		fmt.Println("not started (device not grabbed; see status for the reason)")
		return 1
	}
	fmt.Println("started")
	return 0
}

func runStop(client *control.Client, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "stop requires group_key")
		return 2
	}
	if err := client.StopInjecting(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "stop_injecting: %v\n", err)
		return 1
	}
	return 0
}

func runStopAll(client *control.Client) int {
	if err := client.StopAll(); err != nil {
		fmt.Fprintf(os.Stderr, "stop_all: %v\n", err)
		return 1
	}
	return 0
}

func runHello(client *control.Client) int {
	ok, err := client.Hello("inputremapperctl")
	if err != nil {
		fmt.Fprintf(os.Stderr, "hello: %v\n", err)
		return 1
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "hello: echo mismatch")
		return 1
	}
	fmt.Println("daemon reachable")
	return 0
}

func main() {
	os.Exit(run())
}
