package creds

import (
	"net/http"
	"testing"
)

func TestApplyIsIdempotent(t *testing.T) {
	base := Set{BearerToken: "old", Cookies: map[string]string{"_sid": "s1"}}
	updates := []Update{
		{Role: RoleToken, Value: "new"},
		{Role: RoleCookie, Name: "_sid", Value: "s2"},
		{Role: "device_id", Value: "dev-1"},
	}

	once, changed := base.Apply(updates)
	if !changed {
		t.Fatalf("first apply changed = false, want true")
	}
	twice, changed := once.Apply(updates)
	if changed {
		t.Fatalf("second apply changed = true, want false")
	}
	if !once.Equal(twice) {
		t.Fatalf("apply not idempotent: %+v vs %+v", once, twice)
	}
	if once.BearerToken != "new" || once.Cookies["_sid"] != "s2" || once.AuxIDs["device_id"] != "dev-1" {
		t.Fatalf("unexpected merge result: %+v", once)
	}
}

func TestApplyDoesNotMutateReceiver(t *testing.T) {
	base := Set{Cookies: map[string]string{"a": "1"}}
	_, _ = base.Apply([]Update{{Role: RoleCookie, Name: "a", Value: "2"}})
	if base.Cookies["a"] != "1" {
		t.Fatalf("receiver mutated: %+v", base.Cookies)
	}
}

func TestApplyIgnoresEmptyValues(t *testing.T) {
	base := Set{BearerToken: "tok", AuxIDs: map[string]string{"session_id": "sid"}}
	got, changed := base.Apply([]Update{
		{Role: RoleToken, Value: ""},
		{Role: "session_id", Value: "   "},
		{Role: RoleCookie, Name: "", Value: "x"},
		{Role: "", Value: "orphan"},
	})
	if changed {
		t.Fatalf("changed = true, want false")
	}
	if !got.Equal(base) {
		t.Fatalf("got %+v, want %+v", got, base)
	}
}

func TestMergeKeepsMissingIDs(t *testing.T) {
	base := Set{BearerToken: "tok", AuxIDs: map[string]string{"session_id": "sid", "device_id": "dev"}}
	got, changed := base.Merge(Set{AuxIDs: map[string]string{"session_id": "sid2"}})
	if !changed {
		t.Fatalf("changed = false, want true")
	}
	if got.AuxIDs["device_id"] != "dev" || got.AuxIDs["session_id"] != "sid2" || got.BearerToken != "tok" {
		t.Fatalf("unexpected merge: %+v", got)
	}
}

func TestEqualTreatsNilAndEmptyMapsAlike(t *testing.T) {
	a := Set{BearerToken: "x"}
	b := Set{BearerToken: "x", Cookies: map[string]string{}, AuxIDs: map[string]string{}}
	if !a.Equal(b) {
		t.Fatalf("expected sets to be equal")
	}
}

func TestIsEmpty(t *testing.T) {
	if !(Set{}).IsEmpty() {
		t.Fatalf("zero set should be empty")
	}
	if (Set{AuxIDs: map[string]string{"device_id": "d"}}).IsEmpty() {
		t.Fatalf("set with aux id should not be empty")
	}
}

func TestCookieHeader(t *testing.T) {
	s := Set{
		BearerToken: "tok",
		Cookies:     map[string]string{"b": "2", "a": "1", "empty": ""},
	}
	if got, want := s.CookieHeader("__SW"), "a=1; b=2; __SW=tok"; got != want {
		t.Fatalf("CookieHeader = %q, want %q", got, want)
	}

	s.Cookies["__SW"] = "tok"
	if got, want := s.CookieHeader("__SW"), "__SW=tok; a=1; b=2"; got != want {
		t.Fatalf("CookieHeader = %q, want %q", got, want)
	}
	if got, want := s.CookieHeader(""), "__SW=tok; a=1; b=2"; got != want {
		t.Fatalf("CookieHeader(no token) = %q, want %q", got, want)
	}
}

func TestParseCookieHeader(t *testing.T) {
	got := ParseCookieHeader("Cookie: __SW=abc; _sid=s1 ; junk; =novalue; empty=")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (%+v)", len(got), got)
	}
	if got[0].Name != "__SW" || got[0].Value != "abc" || got[1].Name != "_sid" || got[1].Value != "s1" {
		t.Fatalf("unexpected updates: %+v", got)
	}
}

func TestExtractMapsRoles(t *testing.T) {
	header := http.Header{}
	header.Add("Set-Cookie", "__SW=token-1; Path=/; HttpOnly")
	header.Add("Set-Cookie", "_device_id=dev-9; Path=/")
	header.Add("Set-Cookie", "tracking=zzz")
	header.Add("Set-Cookie", "_sid=; Max-Age=0")

	updates := NewExtractor(nil).Extract(header)
	got, _ := Set{}.Apply(updates)

	if got.BearerToken != "token-1" {
		t.Fatalf("BearerToken = %q, want token-1", got.BearerToken)
	}
	if got.AuxIDs["device_id"] != "dev-9" {
		t.Fatalf("device_id = %q, want dev-9", got.AuxIDs["device_id"])
	}
	if _, ok := got.AuxIDs["session_id"]; ok {
		t.Fatalf("expired session cookie should be ignored")
	}
	if got.Cookies["tracking"] != "zzz" {
		t.Fatalf("tracking cookie not retained: %+v", got.Cookies)
	}
}

func TestExtractWithoutCookies(t *testing.T) {
	if updates := NewExtractor(nil).Extract(http.Header{"Content-Type": {"application/json"}}); len(updates) != 0 {
		t.Fatalf("updates = %+v, want none", updates)
	}
}

func TestCustomRoleMap(t *testing.T) {
	ex := NewExtractor(RoleMap{"auth": RoleToken, "": "ignored", "sess": " "})
	if got := ex.TokenCookie(); got != "auth" {
		t.Fatalf("TokenCookie = %q, want auth", got)
	}
	if roles := ex.Roles(); len(roles) != 1 {
		t.Fatalf("roles = %+v, want 1 entry", roles)
	}

	header := http.Header{"Set-Cookie": {"auth=xyz"}}
	got, _ := Set{}.Apply(ex.Extract(header))
	if got.BearerToken != "xyz" {
		t.Fatalf("BearerToken = %q, want xyz", got.BearerToken)
	}
}

func TestFromCookies(t *testing.T) {
	ex := NewExtractor(nil)
	got, _ := Set{}.Apply(ex.FromCookies(ParseCookieHeader("__SW=t; _sid=s; other=o")))
	if got.BearerToken != "t" || got.AuxIDs["session_id"] != "s" || got.Cookies["other"] != "o" {
		t.Fatalf("unexpected set: %+v", got)
	}
}
