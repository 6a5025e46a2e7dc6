package estimator

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	json "github.com/goccy/go-json"

	"github.com/straja-ai/rakshak/internal/logging"
)

// Estimator roles.
const (
	RoleTextLR = "text-lr"
	RoleTextNB = "text-nb"
	RoleTextRF = "text-rf"
	RoleURLRF  = "url-rf"
	RoleJob    = "job-detector"
)

// Vectorizer names.
const (
	VectorizerText = "text-tfidf"
	VectorizerJob  = "job-tfidf"
)

// requiredVectorizer pins each role to the only vectorizer it may consume.
// RoleURLRF takes aligned URL features and no vectorizer.
var requiredVectorizer = map[string]string{
	RoleTextLR: VectorizerText,
	RoleTextNB: VectorizerText,
	RoleTextRF: VectorizerText,
	RoleURLRF:  "",
	RoleJob:    VectorizerJob,
}

// Artifact describes one entry of the model catalog.
type Artifact struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Catalog lists every artifact the service knows about, in display order.
var Catalog = []Artifact{
	{VectorizerText, "TF-IDF Vectorizer"},
	{RoleTextLR, "Logistic Regression (Text)"},
	{RoleTextNB, "Naive Bayes (Text)"},
	{RoleTextRF, "Random Forest (Text)"},
	{RoleURLRF, "Random Forest (URL)"},
	{VectorizerJob, "TF-IDF (Job)"},
	{RoleJob, "Logistic Regression (Job)"},
}

// ArtifactStatus reports whether one catalog entry is loaded.
type ArtifactStatus struct {
	Name   string `json:"name"`
	Loaded bool   `json:"loaded"`
	Status string `json:"status"`
}

// Set is one immutable generation of loaded artifacts. Build it with the
// Add methods, then publish it through a Registry; it must not be modified
// after that.
type Set struct {
	Version  string
	Dir      string
	LoadedAt time.Time

	vectorizers map[string]Vectorizer
	estimators  map[string]Estimator
	pairing     map[string]string
	urlColumns  []string
	info        map[string]map[string]any
	closers     []io.Closer
}

// NewSet returns an empty set.
func NewSet(version string) *Set {
	return &Set{
		Version:     version,
		LoadedAt:    time.Now(),
		vectorizers: make(map[string]Vectorizer),
		estimators:  make(map[string]Estimator),
		pairing:     make(map[string]string),
		info:        make(map[string]map[string]any),
	}
}

// AddVectorizer registers v under name.
func (s *Set) AddVectorizer(name string, v Vectorizer) {
	s.vectorizers[name] = v
}

// AddEstimator registers e for role, bound to the named vectorizer. Known
// roles must be bound to their own vectorizer and the vectorizer must
// already be present.
func (s *Set) AddEstimator(role, vectorizer string, e Estimator) error {
	if want, known := requiredVectorizer[role]; known && want != vectorizer {
		return fmt.Errorf("estimator %s: must be paired with %q, got %q", role, want, vectorizer)
	}
	if vectorizer != "" {
		v, ok := s.vectorizers[vectorizer]
		if !ok {
			return fmt.Errorf("estimator %s: vectorizer %q not loaded", role, vectorizer)
		}
		if d, ok := e.(interface{ Dim() int }); ok && d.Dim() != v.Dim() {
			return fmt.Errorf("estimator %s: expects %d features, vectorizer %s produces %d", role, d.Dim(), vectorizer, v.Dim())
		}
	}
	s.estimators[role] = e
	s.pairing[role] = vectorizer
	if c, ok := e.(io.Closer); ok {
		s.closers = append(s.closers, c)
	}
	return nil
}

// SetURLColumns records the URL estimator's feature column order.
func (s *Set) SetURLColumns(cols []string) {
	s.urlColumns = append([]string(nil), cols...)
}

// SetInfo records descriptive metadata for a model family, e.g. accuracy.
func (s *Set) SetInfo(family string, info map[string]any) {
	s.info[family] = info
}

func (s *Set) Vectorizer(name string) (Vectorizer, bool) {
	v, ok := s.vectorizers[name]
	return v, ok
}

func (s *Set) Estimator(role string) (Estimator, bool) {
	e, ok := s.estimators[role]
	return e, ok
}

// Pipeline returns the estimator of role together with the vectorizer it
// was bound to.
func (s *Set) Pipeline(role string) (Vectorizer, Estimator, bool) {
	e, ok := s.estimators[role]
	if !ok {
		return nil, nil, false
	}
	v, ok := s.vectorizers[s.pairing[role]]
	if !ok {
		return nil, nil, false
	}
	return v, e, true
}

// URLColumns returns a copy of the URL estimator's column order.
func (s *Set) URLColumns() []string {
	return append([]string(nil), s.urlColumns...)
}

// Info returns a copy of the model metadata.
func (s *Set) Info() map[string]map[string]any {
	out := make(map[string]map[string]any, len(s.info))
	for family, kv := range s.info {
		cp := make(map[string]any, len(kv))
		for k, v := range kv {
			cp[k] = v
		}
		out[family] = cp
	}
	return out
}

// Has reports whether name is a loaded vectorizer or estimator.
func (s *Set) Has(name string) bool {
	if _, ok := s.vectorizers[name]; ok {
		return true
	}
	_, ok := s.estimators[name]
	return ok
}

// Loaded lists the names of all loaded artifacts, sorted.
func (s *Set) Loaded() []string {
	out := make([]string, 0, len(s.vectorizers)+len(s.estimators))
	for name := range s.vectorizers {
		out = append(out, name)
	}
	for name := range s.estimators {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Status reports every catalog entry, keyed by artifact key.
func (s *Set) Status() map[string]ArtifactStatus {
	out := make(map[string]ArtifactStatus, len(Catalog))
	for _, a := range Catalog {
		st := ArtifactStatus{Name: a.Name, Loaded: s.Has(a.Key), Status: "not loaded"}
		if st.Loaded {
			st.Status = "active"
		}
		out[a.Key] = st
	}
	return out
}

// Close releases native resources held by the set's estimators.
func (s *Set) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadOptions tunes Load.
type LoadOptions struct {
	SharedLibraryPath string
	Logger            logging.Logger
	// RetireAfter is how long a registry keeps a replaced set open.
	// Zero means 30s.
	RetireAfter time.Duration
}

// Load reads the manifest in dir and every artifact it lists. Artifacts
// load independently: one that fails is logged, reported in the returned
// errors and left out of the set, while the rest still load. The returned
// set is never nil.
func Load(dir string, opts LoadOptions) (*Set, []error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String("model_dir", dir))

	set := NewSet("")
	set.Dir = dir

	manifest, err := LoadManifest(dir)
	if err != nil {
		logger.Warn("model manifest not loaded", logging.Error(err))
		return set, []error{err}
	}
	set.Version = manifest.Version
	for family, info := range manifest.Info {
		set.SetInfo(family, info)
	}

	var errs []error
	fail := func(name string, err error) {
		err = fmt.Errorf("%s: %w", name, err)
		logger.Warn("model artifact not loaded", logging.String("artifact", name), logging.Error(err))
		errs = append(errs, err)
	}

	for _, name := range sortedKeys(manifest.Vectorizers) {
		spec := manifest.Vectorizers[name]
		v, err := loadVectorizer(dir, spec)
		if err != nil {
			fail(name, err)
			continue
		}
		set.AddVectorizer(name, v)
		logger.Info("vectorizer loaded", logging.String("artifact", name), logging.Int("features", v.Dim()))
	}

	for _, role := range sortedKeys(manifest.Estimators) {
		spec := manifest.Estimators[role]
		if err := loadEstimator(set, dir, role, spec, opts); err != nil {
			fail(role, err)
			continue
		}
		logger.Info("estimator loaded", logging.String("artifact", role), logging.String("kind", spec.Kind))
	}

	return set, errs
}

func loadVectorizer(dir string, spec ArtifactSpec) (Vectorizer, error) {
	path, err := resolveArtifactPath(dir, spec.Path)
	if err != nil {
		return nil, err
	}
	if err := verifyChecksum(path, spec.SHA256); err != nil {
		return nil, err
	}
	return LoadTFIDF(path)
}

func loadEstimator(set *Set, dir, role string, spec EstimatorSpec, opts LoadOptions) error {
	path, err := resolveArtifactPath(dir, spec.Path)
	if err != nil {
		return err
	}
	if err := verifyChecksum(path, spec.SHA256); err != nil {
		return err
	}

	var columns []string
	if spec.Columns != "" {
		columns, err = loadColumns(dir, spec.Columns)
		if err != nil {
			return err
		}
	}

	var e Estimator
	switch spec.Kind {
	case KindLinear:
		e, err = LoadLinear(path)
	case KindNaiveBayes:
		e, err = LoadNaiveBayes(path)
	case KindONNX:
		features := spec.Features
		if features == 0 {
			if v, ok := set.Vectorizer(spec.Vectorizer); ok {
				features = v.Dim()
			} else {
				features = len(columns)
			}
		}
		e, err = LoadONNX(path, ONNXOptions{
			Features:          features,
			InputName:         spec.Input,
			OutputName:        spec.Output,
			SharedLibraryPath: opts.SharedLibraryPath,
		})
	default:
		return fmt.Errorf("unknown estimator kind %q", spec.Kind)
	}
	if err != nil {
		return err
	}

	if err := set.AddEstimator(role, spec.Vectorizer, e); err != nil {
		if c, ok := e.(io.Closer); ok {
			_ = c.Close()
		}
		return err
	}
	if role == RoleURLRF {
		set.SetURLColumns(columns)
	}
	return nil
}

func loadColumns(dir, rel string) ([]string, error) {
	path, err := resolveArtifactPath(dir, rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cols []string
	if err := json.Unmarshal(data, &cols); err != nil {
		return nil, fmt.Errorf("decode columns %s: %w", rel, err)
	}
	return cols, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
