package skillcrypto

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"skillmint/internal/core"
)

func TestDeriveKeyIsDeterministicPerUser(t *testing.T) {
	k1 := DeriveKey("alice", "skill-1", "demo")
	k2 := DeriveKey("alice", "skill-1", "demo")
	if string(k1) != string(k2) {
		t.Fatal("expected deterministic key derivation for the same inputs")
	}

	k3 := DeriveKey("bob", "skill-1", "demo")
	if string(k1) == string(k3) {
		t.Fatal("expected different users to derive different keys")
	}
}

func TestSealUnsealRoundTrip(t *testing.T) {
	key := DeriveKey("alice", "skill-1", "demo")
	plaintext := []byte("hello skill")

	sealed, err := Seal(plaintext, key)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	recovered, err := Unseal(sealed, key)
	if err != nil {
		t.Fatalf("unseal: %v", err)
	}
	if string(recovered) != string(plaintext) {
		t.Fatalf("expected round trip to preserve plaintext, got %q", recovered)
	}
}

func TestVerifyTokenRejectsWrongKey(t *testing.T) {
	key := DeriveKey("alice", "skill-1", "demo")
	wrongKey := DeriveKey("mallory", "skill-1", "demo")

	token, err := SealVerifyToken(key)
	if err != nil {
		t.Fatalf("seal verify token: %v", err)
	}
	if err := VerifyToken(token, key); err != nil {
		t.Fatalf("expected correct key to verify, got: %v", err)
	}
	if err := VerifyToken(token, wrongKey); err == nil {
		t.Fatal("expected wrong key to fail verification")
	}
}

func TestPackAndVerifyAndUnpackRoundTrip(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "SKILL.md"), []byte("---\nname: demo\n---\nbody"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(src, "assets"), 0o755); err != nil {
		t.Fatalf("mkdir assets: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "assets", "logo.png"), []byte("binarydata"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	packed, err := Pack(src, "alice", "demo", "alice", "1.0.0", "claude-sonnet", []string{"demo"})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	unpacked, err := VerifyAndUnpack(packed.Archive, "alice")
	if err != nil {
		t.Fatalf("verify and unpack: %v", err)
	}
	if !reflect.DeepEqual(unpacked.Manifest, packed.Manifest) {
		t.Fatalf("expected manifest to round trip, got %+v vs %+v", unpacked.Manifest, packed.Manifest)
	}
	if string(unpacked.Files["SKILL.md"]) != "---\nname: demo\n---\nbody" {
		t.Fatalf("unexpected SKILL.md contents: %q", unpacked.Files["SKILL.md"])
	}
	if string(unpacked.Files["assets/logo.png"]) != "binarydata" {
		t.Fatalf("unexpected asset contents: %q", unpacked.Files["assets/logo.png"])
	}
}

func TestVerifyAndUnpackRejectsWrongUsername(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "SKILL.md"), []byte("content"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	packed, err := Pack(src, "alice", "demo", "alice", "1.0.0", "", nil)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	_, err = VerifyAndUnpack(packed.Archive, "mallory")
	if err == nil {
		t.Fatal("expected wrong username to fail")
	}
	if core.KindOf(err) != core.KindWrongUsername {
		t.Fatalf("expected WRONG_USERNAME, got %v", core.KindOf(err))
	}
}

func TestVerifyAndUnpackRejectsBadArchive(t *testing.T) {
	_, err := VerifyAndUnpack([]byte("not a zip"), "alice")
	if err == nil {
		t.Fatal("expected bad archive to fail")
	}
	if core.KindOf(err) != core.KindBadArchive {
		t.Fatalf("expected BAD_ARCHIVE, got %v", core.KindOf(err))
	}
}
