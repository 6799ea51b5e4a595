package creds

import (
	"maps"
	"net/http"
	"slices"
	"strings"
)

// RoleMap maps cookie names to credential roles, e.g. "__SW" -> RoleToken.
type RoleMap map[string]string

// DefaultRoleMap returns the cookie names the web app uses for its session.
func DefaultRoleMap() RoleMap {
	return RoleMap{
		"__SW":       RoleToken,
		"_sid":       "session_id",
		"_device_id": "device_id",
	}
}

// Extractor turns Set-Cookie response headers into credential updates.
type Extractor struct {
	roles RoleMap
}

// NewExtractor builds an Extractor. A nil or empty map falls back to
// DefaultRoleMap.
func NewExtractor(roles RoleMap) *Extractor {
	if len(roles) == 0 {
		roles = DefaultRoleMap()
	}
	clean := make(RoleMap, len(roles))
	for name, role := range roles {
		name = strings.TrimSpace(name)
		role = strings.TrimSpace(role)
		if name == "" || role == "" {
			continue
		}
		clean[name] = role
	}
	return &Extractor{roles: clean}
}

// TokenCookie returns the cookie name carrying the primary token, if any.
func (e *Extractor) TokenCookie() string {
	if e == nil {
		return ""
	}
	for _, name := range slices.Sorted(maps.Keys(e.roles)) {
		if e.roles[name] == RoleToken {
			return name
		}
	}
	return ""
}

// Roles returns a copy of the configured mapping.
func (e *Extractor) Roles() RoleMap {
	if e == nil {
		return nil
	}
	return maps.Clone(e.roles)
}

// Extract inspects every Set-Cookie header. Each cookie with a value yields
// a RoleCookie update, and cookies named in the role map yield an extra
// update for their role. A response without cookies yields nothing.
func (e *Extractor) Extract(header http.Header) []Update {
	if e == nil || len(header) == 0 {
		return nil
	}
	cookies := (&http.Response{Header: header}).Cookies()
	if len(cookies) == 0 {
		return nil
	}
	updates := make([]Update, 0, len(cookies))
	for _, c := range cookies {
		if c.Value == "" || c.MaxAge < 0 {
			continue
		}
		updates = append(updates, Update{Role: RoleCookie, Name: c.Name, Value: c.Value})
		if role, ok := e.roles[c.Name]; ok {
			updates = append(updates, Update{Role: role, Name: c.Name, Value: c.Value})
		}
	}
	return updates
}

// FromCookies applies role mapping to plain cookie updates, as produced by
// ParseCookieHeader, so a pasted browser header populates the token and
// auxiliary ids as well as the cookie jar.
func (e *Extractor) FromCookies(cookies []Update) []Update {
	out := make([]Update, 0, len(cookies)*2)
	for _, c := range cookies {
		out = append(out, c)
		if e == nil || c.Role != RoleCookie {
			continue
		}
		if role, ok := e.roles[c.Name]; ok {
			out = append(out, Update{Role: role, Name: c.Name, Value: c.Value})
		}
	}
	return out
}
