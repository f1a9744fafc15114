// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and dispatch for orderdesk.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdSignup
	CmdLogout
	CmdWhoami
	CmdProducts
	CmdOrders
	CmdCart
	CmdConfig
	CmdVersion
	CmdHelp
)

var commandNames = map[Command]string{
	CmdTUI:      "tui",
	CmdLogin:    "login",
	CmdSignup:   "signup",
	CmdLogout:   "logout",
	CmdWhoami:   "whoami",
	CmdProducts: "products",
	CmdOrders:   "orders",
	CmdCart:     "cart",
	CmdConfig:   "config",
	CmdVersion:  "version",
	CmdHelp:     "help",
}

// String returns the command name as typed.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	JSON       bool   // Output in JSON format
	Verbose    bool   // Debug logging to stderr
	Gateway    string // Overrides gateway.base_url
	ConfigPath string // Explicit config file

	// Subcommand is the first argument after the command
	Subcommand string

	// Unknown is set when the command name was not recognized
	Unknown string

	// Raw args (remaining after global flag parsing)
	Raw []string
}

const usageText = `orderdesk - terminal client for the OrderService gateway

Usage:
  orderdesk                              Start the terminal UI (default)
  orderdesk tui                          Start the terminal UI
  orderdesk login [--username U] [--password-stdin]
                                         Sign in and store the session
  orderdesk signup                       Create an account (does not sign in)
  orderdesk logout                       End the session and empty the cart
  orderdesk whoami [--remote]            Show the stored profile; --remote asks the gateway
  orderdesk products [list|show ID]      Browse the inventory
  orderdesk orders [mine|all|show ID|cancel ID|create ITEM:QTY...]
                                         Manage orders ("all" is admin only)
  orderdesk cart [list|add ID [QTY]|remove ID|clear|checkout]
                                         Manage the local cart
  orderdesk config [show|get KEY|set KEY VALUE|path]
                                         View and modify configuration
  orderdesk version                      Show version
  orderdesk help [--md]                  Show this help; --md prints the key reference

Global flags:
  --json              Machine-readable output
  --gateway URL       Gateway base URL for this run
  --config PATH       Use a specific config file
  -v, --verbose       Debug logging to stderr

Exit codes:
  0 ok, 1 error, 2 usage, 3 config, 4 not signed in or not allowed,
  5 gateway unreachable, 6 rejected by the gateway, 7 not found, 8 timeout

Environment:
  ORDERDESK_HOME, ORDERDESK_GATEWAY_URL, ORDERDESK_TIMEOUT, ORDERDESK_INSECURE,
  ORDERDESK_SESSION_BACKEND, ORDERDESK_LOG_LEVEL, ORDERDESK_LOG_FILE, ORDERDESK_THEME

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "orderdesk version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses command-line arguments and returns the command and args.
// Unknown commands fall through to help so a typo never opens the TUI.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)
	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	name := strings.ToLower(remaining[0])
	parsed.Raw = remaining[1:]
	if len(parsed.Raw) > 0 {
		parsed.Subcommand = parsed.Raw[0]
	}

	switch name {
	case "tui", "ui":
		return CmdTUI, parsed
	case "login", "signin":
		return CmdLogin, parsed
	case "signup", "register":
		return CmdSignup, parsed
	case "logout", "signout":
		return CmdLogout, parsed
	case "whoami", "me":
		return CmdWhoami, parsed
	case "products", "product", "inventory":
		return CmdProducts, parsed
	case "orders", "order":
		return CmdOrders, parsed
	case "cart":
		return CmdCart, parsed
	case "config":
		return CmdConfig, parsed
	case "version", "--version":
		return CmdVersion, parsed
	case "help", "-h", "--help":
		return CmdHelp, parsed
	}
	parsed.Unknown = name
	return CmdHelp, parsed
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--json":
			parsed.JSON = true
		case arg == "-v" || arg == "--verbose":
			parsed.Verbose = true
		case arg == "--gateway" && i+1 < len(args):
			i++
			parsed.Gateway = args[i]
		case strings.HasPrefix(arg, "--gateway="):
			parsed.Gateway = strings.TrimPrefix(arg, "--gateway=")
		case arg == "--config" && i+1 < len(args):
			i++
			parsed.ConfigPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			parsed.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, parsed
}

// =============================================================================
// DISPATCH
// =============================================================================

// Run executes a one-shot command against the real terminal and returns the
// process exit code. CmdTUI is handled by the caller.
func Run(cmd Command, args Args) int {
	return RunWith(cmd, args, StdStreams())
}

// RunWith is Run with explicit streams.
func RunWith(cmd Command, args Args, streams Streams) int {
	var err error
	switch cmd {
	case CmdVersion:
		err = HandleVersion(streams.Out, args)
	case CmdHelp:
		err = HandleHelp(streams.Out, args)
	default:
		err = runWithEnv(cmd, args, streams)
	}
	if err != nil {
		DisplayError(streams.Out, streams.Err, cmd.String(), err, args.JSON)
	}
	return GetExitCode(err)
}

func runWithEnv(cmd Command, args Args, streams Streams) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	logger, err := NewLogger(cfg, args)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	env, err := NewEnv(cfg, streams, logger)
	if err != nil {
		return err
	}
	defer env.Close()
	return env.Execute(cmd, args)
}

// Execute runs cmd against env.
func (e *Env) Execute(cmd Command, args Args) error {
	e.JSON = args.JSON
	switch cmd {
	case CmdLogin:
		return e.HandleLogin(args)
	case CmdSignup:
		return e.HandleSignup(args)
	case CmdLogout:
		return e.HandleLogout(args)
	case CmdWhoami:
		return e.HandleWhoami(args)
	case CmdProducts:
		return e.HandleProducts(args)
	case CmdOrders:
		return e.HandleOrders(args)
	case CmdCart:
		return e.HandleCart(args)
	case CmdConfig:
		return e.HandleConfig(args)
	case CmdVersion:
		return HandleVersion(e.Out, args)
	case CmdHelp:
		return HandleHelp(e.Out, args)
	}
	return fmt.Errorf("%s cannot run as a one-shot command", cmd)
}

// HandleVersion handles the "version" command.
func HandleVersion(w io.Writer, args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Print(w)
	}
	PrintVersion(w)
	return nil
}
