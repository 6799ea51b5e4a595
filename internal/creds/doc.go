// Package creds models the credential material tiffin carries between runs.
//
// A Set holds the primary token, the raw cookie jar and any auxiliary
// session ids. Sets are values: Apply and Merge return a new Set plus a
// changed flag rather than mutating in place, so the request executor can
// take a Set in and hand a (possibly refreshed) Set back without touching
// storage.
//
// Merging never removes data. An empty incoming value is ignored, and an id
// missing from a response leaves the stored id untouched. Applying the same
// updates twice yields the same Set and reports changed=false the second
// time, which is what lets callers persist only when something moved.
//
// The Extractor recognises credentials in Set-Cookie headers through a
// RoleMap (cookie name -> role). The default map covers the web app's
// session cookies; new names are a configuration change:
//
//	[credentials.cookie_roles]
//	__SW = "token"
//	_sid = "session_id"
//	_device_id = "device_id"
package creds
