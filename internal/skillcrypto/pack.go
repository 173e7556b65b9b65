package skillcrypto

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"skillmint/internal/core"
)

// Manifest is the plaintext manifest.json member of a skill package. See
// spec.md §3.
type Manifest struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Version           string   `json:"version"`
	Author            string   `json:"author"`
	RecommendedModel  string   `json:"recommended_model,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	CreatedAt         string   `json:"created_at"`
	UsernameHint      string   `json:"username_hint,omitempty"`
	EncryptedVerify   string   `json:"encrypted_verify"`
}

// PackResult is the outcome of Pack: the manifest that was written and
// the in-memory ZIP bytes.
type PackResult struct {
	Manifest Manifest
	Archive  []byte
}

// Pack walks sourceDir, seals every regular file under a per-user key
// derived from username, and produces a ZIP archive with a plaintext
// manifest.json and one encrypted/<rel>.enc entry per file.
func Pack(sourceDir, username, name, author, version, recommendedModel string, tags []string) (*PackResult, error) {
	skillID := uuid.NewString()
	key := DeriveKey(username, skillID, name)

	verifyToken, err := SealVerifyToken(key)
	if err != nil {
		return nil, err
	}

	manifest := Manifest{
		ID:               skillID,
		Name:             name,
		Description:      "",
		Version:          version,
		Author:           author,
		RecommendedModel: recommendedModel,
		Tags:             tags,
		CreatedAt:        time.Now().UTC().Format(time.RFC3339),
		EncryptedVerify:  base64.StdEncoding.EncodeToString(verifyToken),
	}

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	manifestBytes, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, core.Wrap(core.KindIO, err, "marshal manifest")
	}
	mw, err := zw.Create("manifest.json")
	if err != nil {
		return nil, core.Wrap(core.KindIO, err, "create manifest entry")
	}
	if _, err := mw.Write(manifestBytes); err != nil {
		return nil, core.Wrap(core.KindIO, err, "write manifest entry")
	}

	err = filepath.Walk(sourceDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		plaintext, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		sealed, err := Seal(plaintext, key)
		if err != nil {
			return err
		}
		entry, err := zw.Create("encrypted/" + rel + ".enc")
		if err != nil {
			return err
		}
		_, err = entry.Write(sealed)
		return err
	})
	if err != nil {
		return nil, core.Wrap(core.KindIO, err, "pack skill files")
	}

	if err := zw.Close(); err != nil {
		return nil, core.Wrap(core.KindIO, err, "finalize archive")
	}

	return &PackResult{Manifest: manifest, Archive: buf.Bytes()}, nil
}

// UnpackResult holds the recovered manifest and the decrypted file map,
// keyed by the original relative path.
type UnpackResult struct {
	Manifest Manifest
	Files    map[string][]byte
}

// VerifyAndUnpack reads a ZIP archive, derives the key for username,
// checks the verify token before touching any file, then decrypts every
// encrypted/<rel>.enc entry. Any decryption failure after a passing
// verify token surfaces as KindCryptoFailure (corruption); a failing
// verify token surfaces as KindWrongUsername.
func VerifyAndUnpack(archive []byte, username string) (*UnpackResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, core.Wrap(core.KindBadArchive, err, "open archive")
	}

	var manifestFile *zip.File
	encrypted := map[string]*zip.File{}
	for _, f := range zr.File {
		switch {
		case f.Name == "manifest.json":
			manifestFile = f
		case strings.HasPrefix(f.Name, "encrypted/") && strings.HasSuffix(f.Name, ".enc"):
			rel := strings.TrimSuffix(strings.TrimPrefix(f.Name, "encrypted/"), ".enc")
			encrypted[rel] = f
		}
	}
	if manifestFile == nil {
		return nil, core.NewError(core.KindBadArchive, "missing manifest.json")
	}

	manifest, err := readManifest(manifestFile)
	if err != nil {
		return nil, err
	}

	key := DeriveKey(username, manifest.ID, manifest.Name)

	verifyToken, err := base64.StdEncoding.DecodeString(manifest.EncryptedVerify)
	if err != nil {
		return nil, core.Wrap(core.KindBadArchive, err, "decode verify token")
	}
	if err := VerifyToken(verifyToken, key); err != nil {
		return nil, err
	}

	files := make(map[string][]byte, len(encrypted))
	for rel, f := range encrypted {
		sealed, err := readZipFile(f)
		if err != nil {
			return nil, core.Wrap(core.KindIO, err, "read %s", f.Name)
		}
		plaintext, err := Unseal(sealed, key)
		if err != nil {
			return nil, core.Wrap(core.KindCryptoFailure, err, "decrypt %s", rel)
		}
		files[rel] = plaintext
	}

	return &UnpackResult{Manifest: manifest, Files: files}, nil
}

func readManifest(f *zip.File) (Manifest, error) {
	raw, err := readZipFile(f)
	if err != nil {
		return Manifest{}, core.Wrap(core.KindBadArchive, err, "read manifest.json")
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return Manifest{}, core.Wrap(core.KindBadArchive, err, "parse manifest.json")
	}
	return m, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// WriteFiles materializes an UnpackResult's files under destDir,
// preserving relative paths.
func WriteFiles(result *UnpackResult, destDir string) error {
	for rel, content := range result.Files {
		target := filepath.Join(destDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return core.Wrap(core.KindIO, err, "create directory for %s", rel)
		}
		if err := os.WriteFile(target, content, 0o644); err != nil {
			return core.Wrap(core.KindIO, err, "write %s", rel)
		}
	}
	return nil
}
