// Package ui renders tiffin's terminal output.
//
// Printer writes the one-shot command output (search results, menus, order
// status, the orders list) using lipgloss styles from a Theme. Colors are
// chosen per writer, so piped output stays plain text.
//
// Monitoring has two front ends. LineNotifier prints one timestamped line per
// status change and a banner when the order finishes. RunMonitorTUI runs the
// poller in a goroutine and shows the same events in a Bubble Tea view; events
// reach the program through Program.Send and quitting the view cancels the
// poll loop.
//
// Themes: Nightfox (default, also used for "auto"), Kanagawa, Slate and Plain.
package ui
