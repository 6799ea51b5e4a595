// Package logtail reads and formats tiffin's log file for the logs command.
//
// Read returns the last N lines using a ring buffer, so memory stays
// proportional to N rather than the file size. A missing file is not an
// error; it simply has no lines.
//
// The log file holds one JSON object per line as written by phuslu/log.
// Parse turns a line into an Entry and Format renders it as
//
//	2026-10-19T14:03:09.120+05:30 WARN  status poll failed order_id=ord_1 tick=3
//
// with extra fields sorted by key. Lines that are not JSON pass through
// unchanged. Filter applies a case-insensitive substring match and an
// optional minimum level before formatting.
package logtail
