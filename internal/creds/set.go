package creds

import (
	"maps"
	"slices"
	"strings"
)

// Roles understood by Set.Apply. Any other role names an auxiliary id.
const (
	RoleToken  = "token"
	RoleCookie = "cookie"
)

// Set is the full authentication state for one account session.
type Set struct {
	BearerToken string            `toml:"bearer_token,omitempty"`
	Cookies     map[string]string `toml:"cookies,omitempty"`
	AuxIDs      map[string]string `toml:"aux_ids,omitempty"`
}

// Update is a single piece of credential material. Name is the cookie name
// for RoleCookie updates and is informational otherwise.
type Update struct {
	Role  string
	Name  string
	Value string
}

// IsEmpty reports whether the set carries no credential material at all.
func (s Set) IsEmpty() bool {
	if strings.TrimSpace(s.BearerToken) != "" {
		return false
	}
	for _, v := range s.Cookies {
		if v != "" {
			return false
		}
	}
	for _, v := range s.AuxIDs {
		if v != "" {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so callers can mutate maps freely.
func (s Set) Clone() Set {
	return Set{
		BearerToken: s.BearerToken,
		Cookies:     cloneMap(s.Cookies),
		AuxIDs:      cloneMap(s.AuxIDs),
	}
}

// Equal compares two sets, treating nil and empty maps alike.
func (s Set) Equal(other Set) bool {
	return s.BearerToken == other.BearerToken &&
		mapsEqual(s.Cookies, other.Cookies) &&
		mapsEqual(s.AuxIDs, other.AuxIDs)
}

// Apply merges updates into a copy of s. Existing values are overwritten
// only by non-empty values; nothing is ever removed. changed reports whether
// the result differs from s.
func (s Set) Apply(updates []Update) (Set, bool) {
	next := s.Clone()
	changed := false
	for _, u := range updates {
		value := strings.TrimSpace(u.Value)
		if value == "" {
			continue
		}
		switch role := strings.TrimSpace(u.Role); role {
		case "":
			continue
		case RoleToken:
			if next.BearerToken != value {
				next.BearerToken = value
				changed = true
			}
		case RoleCookie:
			name := strings.TrimSpace(u.Name)
			if name == "" {
				continue
			}
			if next.Cookies == nil {
				next.Cookies = make(map[string]string)
			}
			if next.Cookies[name] != value {
				next.Cookies[name] = value
				changed = true
			}
		default:
			if next.AuxIDs == nil {
				next.AuxIDs = make(map[string]string)
			}
			if next.AuxIDs[role] != value {
				next.AuxIDs[role] = value
				changed = true
			}
		}
	}
	return next, changed
}

// Merge folds every non-empty field of other into s.
func (s Set) Merge(other Set) (Set, bool) {
	updates := make([]Update, 0, 1+len(other.Cookies)+len(other.AuxIDs))
	if other.BearerToken != "" {
		updates = append(updates, Update{Role: RoleToken, Value: other.BearerToken})
	}
	for _, name := range slices.Sorted(maps.Keys(other.Cookies)) {
		updates = append(updates, Update{Role: RoleCookie, Name: name, Value: other.Cookies[name]})
	}
	for _, role := range slices.Sorted(maps.Keys(other.AuxIDs)) {
		updates = append(updates, Update{Role: role, Value: other.AuxIDs[role]})
	}
	return s.Apply(updates)
}

// CookieHeader renders the Cookie request header. Cookies are emitted in
// name order; when tokenCookie is set and the token is not already present
// under that name it is appended.
func (s Set) CookieHeader(tokenCookie string) string {
	pairs := make([]string, 0, len(s.Cookies)+1)
	for _, name := range slices.Sorted(maps.Keys(s.Cookies)) {
		value := s.Cookies[name]
		if value == "" {
			continue
		}
		pairs = append(pairs, name+"="+value)
	}
	tokenCookie = strings.TrimSpace(tokenCookie)
	if tokenCookie != "" && s.BearerToken != "" && s.Cookies[tokenCookie] == "" {
		pairs = append(pairs, tokenCookie+"="+s.BearerToken)
	}
	return strings.Join(pairs, "; ")
}

// ParseCookieHeader splits a raw "a=1; b=2" header, as copied from browser
// developer tools, into cookie updates. Malformed fragments are skipped.
func ParseCookieHeader(raw string) []Update {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "Cookie:")
	raw = strings.TrimPrefix(raw, "cookie:")

	var updates []Update
	for _, part := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		updates = append(updates, Update{Role: RoleCookie, Name: name, Value: value})
	}
	return updates
}

func cloneMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	return maps.Clone(in)
}

func mapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if other, ok := b[k]; !ok || other != v {
			return false
		}
	}
	return true
}
