// Package app is tiffin's composition root and command tree.
//
// Run builds a cobra command tree and executes it. Before any subcommand
// runs, the root command's PersistentPreRunE wires the process:
//
//  1. Load ~/.config/tiffin/config.toml (or --config) and apply flag overrides
//  2. Build the phuslu logger (stderr, or the log file for --log-file and monitor --tui)
//  3. Open the session backend (TOML file or badger) and load it into a state.Store
//  4. Build the cookie extractor, the request executor and the API client
//
// Commands:
//
//	login     save a session from a pasted browser Cookie header
//	logout    forget the session
//	search    search restaurants
//	menu      show a restaurant's menu
//	status    show one order's status
//	monitor   follow an order until it finishes (--interval, --tui)
//	orders    list active orders
//	order     place an order (--item ID[:QTY], --address, --payment)
//	logs      tail the log file (-n, --grep, --level)
//
// API failures are printed by the command itself (with a login hint for an
// expired session) and returned wrapped in ErrReported so main does not print
// them twice. Cancellation through the context ends a command quietly.
package app
