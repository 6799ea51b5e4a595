// Package session persists the credential set between tiffin invocations.
//
// Two backends implement Store: FileStore writes a TOML file (the default,
// ~/.config/tiffin/session.toml) and BadgerStore keeps a single record in a
// badgerhold database. Both create their directory with mode 0700; the
// TOML file is written 0600 via a temporary file and rename.
//
// Load never returns an error. A missing store is simply empty; a corrupt or
// unreadable one is logged as a warning and also treated as empty, so a bad
// session file degrades to "not logged in" instead of breaking every
// command. Encoding is deterministic, which makes Save(Load()) byte-stable.
package session
