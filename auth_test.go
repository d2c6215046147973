package pingrab

import (
	"path/filepath"
	"testing"
)

func TestImportJSON(t *testing.T) {
	t.Parallel()

	auth := NewAuthContext()
	n, err := auth.ImportJSON([]byte(`[
		{"name": "_pinterest_sess", "value": "abc", "domain": ".pinterest.com"},
		{"name": "csrftoken", "value": "xyz"},
		{"name": "", "value": "orphan value"},
		{"name": "no_value"}
	]`))
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d cookies, want 2 (malformed entries skipped)", n)
	}
	if !auth.Authenticated() {
		t.Error("Authenticated() = false after import")
	}
	if got := auth.Cookies()["_pinterest_sess"]; got != "abc" {
		t.Errorf("session cookie = %q, want %q", got, "abc")
	}
}

func TestImportJSONRejectsGarbage(t *testing.T) {
	t.Parallel()

	auth := NewAuthContext()
	if _, err := auth.ImportJSON([]byte(`{"not": "an array"}`)); err == nil {
		t.Error("ImportJSON accepted a non-array document")
	}
	if _, err := auth.ImportJSON([]byte(`[{"name":"","value":""}]`)); err == nil {
		t.Error("ImportJSON accepted an export with no usable entries")
	}
	if auth.Authenticated() {
		t.Error("rejected imports must leave the context anonymous")
	}
}

func TestImportJSONReplacesWholesale(t *testing.T) {
	t.Parallel()

	auth := NewAuthContext()
	mustImport(t, auth, `[{"name":"old","value":"1"}]`)
	mustImport(t, auth, `[{"name":"new","value":"2"}]`)

	cookies := auth.Cookies()
	if _, stale := cookies["old"]; stale {
		t.Error("previous bundle survived a re-import")
	}
	if cookies["new"] != "2" {
		t.Errorf("cookies after re-import = %v", cookies)
	}
}

func TestCookiesSnapshotIsolated(t *testing.T) {
	t.Parallel()

	auth := NewAuthContext()
	mustImport(t, auth, `[{"name":"k","value":"v"}]`)

	snap := auth.Cookies()
	snap["k"] = "tampered"
	if auth.Cookies()["k"] != "v" {
		t.Error("mutating the snapshot changed the stored bundle")
	}
}

func TestAuthFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cookies.json")

	auth := NewAuthContext()
	mustImport(t, auth, `[{"name":"_pinterest_sess","value":"abc"}]`)
	if err := auth.SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	restored := NewAuthContext()
	if err := restored.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if restored.Cookies()["_pinterest_sess"] != "abc" {
		t.Errorf("restored cookies = %v", restored.Cookies())
	}
}

func TestLoadFileMissingIsAnonymous(t *testing.T) {
	t.Parallel()

	auth := NewAuthContext()
	if err := auth.LoadFile(filepath.Join(t.TempDir(), "absent.json")); err != nil {
		t.Fatalf("LoadFile on missing file: %v", err)
	}
	if auth.Authenticated() {
		t.Error("missing cookie file produced an authenticated context")
	}
}

func mustImport(t *testing.T, auth *AuthContext, doc string) {
	t.Helper()
	if _, err := auth.ImportJSON([]byte(doc)); err != nil {
		t.Fatalf("ImportJSON(%s): %v", doc, err)
	}
}
