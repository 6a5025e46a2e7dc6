package estimator

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the manifest's name inside a model directory.
const ManifestFile = "manifest.yaml"

// Estimator kinds.
const (
	KindLinear     = "linear"
	KindNaiveBayes = "naive_bayes"
	KindONNX       = "onnx"
)

// ErrManifestNotFound is returned when the model directory has no manifest.
var ErrManifestNotFound = errors.New("estimator: model manifest not found")

// Manifest lists the artifacts of a model directory.
type Manifest struct {
	Version     string                    `yaml:"version"`
	Vectorizers map[string]ArtifactSpec   `yaml:"vectorizers"`
	Estimators  map[string]EstimatorSpec  `yaml:"estimators"`
	Info        map[string]map[string]any `yaml:"info"`
}

// ArtifactSpec points at one file. SHA256, when set, is verified before
// the file is decoded.
type ArtifactSpec struct {
	Path   string `yaml:"path"`
	SHA256 string `yaml:"sha256"`
}

// EstimatorSpec describes one estimator role.
type EstimatorSpec struct {
	Kind       string `yaml:"kind"`
	Path       string `yaml:"path"`
	SHA256     string `yaml:"sha256"`
	Vectorizer string `yaml:"vectorizer"`
	// Columns names a JSON array with the feature column order of a
	// tabular estimator.
	Columns string `yaml:"columns"`
	// Features is the ONNX input width. It defaults to the paired
	// vectorizer's dimension or the column count.
	Features int    `yaml:"features"`
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
}

// LoadManifest reads dir/manifest.yaml.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrManifestNotFound
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// resolveArtifactPath joins rel onto dir and rejects anything that would
// escape it.
func resolveArtifactPath(dir, rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", errors.New("artifact path is empty")
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("artifact path %q must be relative", rel)
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("artifact path %q escapes the model directory", rel)
	}
	return filepath.Join(dir, clean), nil
}

// verifyChecksum compares the file's SHA-256 with want. An empty want
// skips the check.
func verifyChecksum(path, want string) error {
	want = strings.TrimSpace(want)
	if want == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash %s: %w", path, err)
	}
	if got := hex.EncodeToString(h.Sum(nil)); !strings.EqualFold(got, want) {
		return fmt.Errorf("sha256 mismatch for %s: expected %s got %s", filepath.Base(path), want, got)
	}
	return nil
}
