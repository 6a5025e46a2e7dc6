package estimator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Default tensor names of a converted scikit-learn classifier.
const (
	DefaultONNXInput  = "float_input"
	DefaultONNXOutput = "probabilities"
)

// ErrClosed is returned by an ONNXEstimator after Close.
var ErrClosed = errors.New("estimator: closed")

// ONNXOptions describes the graph of an ONNX classifier. The input is a
// float tensor of shape [1, Features]; the output holds one probability per
// class.
type ONNXOptions struct {
	Features          int
	Classes           int
	InputName         string
	OutputName        string
	SharedLibraryPath string
}

// ONNXEstimator runs a converted classifier through onnxruntime. The
// session and its tensors are allocated once; Run calls are serialized.
type ONNXEstimator struct {
	session  *ort.AdvancedSession
	input    *ort.Tensor[float32]
	output   *ort.Tensor[float32]
	features int
	closed   bool

	mu sync.Mutex
}

var runtimeMu sync.Mutex

// initRuntime points onnxruntime at its shared library and initializes the
// environment once per process.
func initRuntime(modelDir, libPath string) error {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}
	if libPath == "" {
		libPath = resolveSharedLibraryPath(modelDir)
	}
	if libPath == "" {
		return errors.New("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or models.onnxruntime_library")
	}
	ort.SetSharedLibraryPath(libPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

// LoadONNX opens the model at path.
func LoadONNX(path string, opts ONNXOptions) (*ONNXEstimator, error) {
	if opts.Features <= 0 {
		return nil, fmt.Errorf("onnx %s: feature count must be positive", path)
	}
	if opts.Classes <= 0 {
		opts.Classes = 2
	}
	if opts.InputName == "" {
		opts.InputName = DefaultONNXInput
	}
	if opts.OutputName == "" {
		opts.OutputName = DefaultONNXOutput
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", path, err)
	}
	if err := initRuntime(filepath.Dir(path), opts.SharedLibraryPath); err != nil {
		return nil, err
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(opts.Features)))
	if err != nil {
		return nil, fmt.Errorf("allocate input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(opts.Classes)))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		path,
		[]string{opts.InputName},
		[]string{opts.OutputName},
		[]ort.Value{input},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &ONNXEstimator{
		session:  session,
		input:    input,
		output:   output,
		features: opts.Features,
	}, nil
}

func (e *ONNXEstimator) Dim() int { return e.features }

// PredictProba returns the probability of class 1, or of class 0 for a
// single-output graph.
func (e *ONNXEstimator) PredictProba(x Vector) (float64, error) {
	if x.Dim != e.features {
		return 0, fmt.Errorf("%w: vector has %d features, model %d", ErrDimension, x.Dim, e.features)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, ErrClosed
	}
	x.ToFloat32(e.input.GetData())

	if err := e.session.Run(); err != nil {
		return 0, fmt.Errorf("onnx run: %w", err)
	}

	probs := e.output.GetData()
	switch len(probs) {
	case 0:
		return 0, errors.New("onnx run: empty output")
	case 1:
		return float64(probs[0]), nil
	default:
		return float64(probs[1]), nil
	}
}

// Close releases the session. It waits for an in-flight prediction.
func (e *ONNXEstimator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	if err := e.session.Destroy(); err != nil {
		errs = append(errs, err)
	}
	if err := e.input.Destroy(); err != nil {
		errs = append(errs, err)
	}
	if err := e.output.Destroy(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// resolveSharedLibraryPath locates a platform-specific onnxruntime shared
// library. ONNXRUNTIME_SHARED_LIBRARY_PATH wins; otherwise common names are
// probed next to the models and in system library dirs.
func resolveSharedLibraryPath(modelDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.dylib",
		"onnxruntime.dylib",
		"libonnxruntime.so",
		"onnxruntime.so",
		"onnxruntime.dll",
	}
	dirs := []string{
		modelDir,
		filepath.Join(modelDir, "lib"),
		".",
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
