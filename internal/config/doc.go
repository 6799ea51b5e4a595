// Package config loads tiffin's TOML configuration.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/tiffin/config.toml
//  3. If the file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing or blank, use defaults
//
// # Default Values
//
//   - API base: https://www.swiggy.com/dapi
//   - Coordinates: 12.9716, 77.5946
//   - Request timeout: 15s, rate limit: 2 requests/s
//   - Pending-auth status: 202
//   - Poll interval: 30s
//   - Terminal statuses: delivered, cancelled, failed
//   - Session file: ~/.config/tiffin/session.toml
//     (badger backend: ~/.local/share/tiffin/session.db)
//
// # TOML Format
//
//	base_url = "https://www.swiggy.com"
//	api_path = "/dapi"
//	latitude = 12.9716
//	longitude = 77.5946
//	request_timeout = 15
//	rate_limit = 2
//	pending_auth_status = 202
//	poll_interval = 30
//	terminal_statuses = ["delivered", "cancelled", "failed"]
//	theme = "auto"
//
//	[session]
//	backend = "file"        # or "badger"
//	path = "~/.config/tiffin/session.toml"
//
//	[log]
//	level = "warn"
//	file = "~/.local/share/tiffin/tiffin.log"
//
//	[credentials]
//	token_cookie = "__SW"
//	bearer = true
//
//	[credentials.cookie_roles]
//	__SW = "token"
//	_sid = "session_id"
//	_device_id = "device_id"
//
// Durations are whole seconds. Tilde expansion is applied to every path.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML parse errors ("parse config: ...") and values that
// can never work (negative poll interval, unknown session backend, a
// pending-auth status outside 100-599). A missing file is not an error.
package config
