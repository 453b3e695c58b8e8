package common

import (
	"errors"
	"fmt"
)

var (
	// ErrFatalAsset marks failures that make an asset unusable: a malformed container,
	// an undecodable image or an unsupported pixel format. No partial model survives it.
	ErrFatalAsset = errors.New("fatal asset error")

	// ErrFatalResource marks GPU object creation failures. The render invocation that hit it is aborted.
	ErrFatalResource = errors.New("fatal resource error")

	// ErrFrameSkipped marks a frame that was not rendered because no presentable image was available.
	// It never escapes a render call as an error; callers see it only through logs and FrameResult.
	ErrFrameSkipped = errors.New("frame skipped")
)

// AssetError reports a fatal asset failure together with the stage that produced it.
type AssetError struct {
	Stage string
	Err   error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("asset %s: %v", e.Stage, e.Err)
}

func (e *AssetError) Unwrap() []error {
	return []error{ErrFatalAsset, e.Err}
}

// ResourceError reports a fatal GPU resource failure together with the resource label.
type ResourceError struct {
	Label string
	Err   error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource %q: %v", e.Label, e.Err)
}

func (e *ResourceError) Unwrap() []error {
	return []error{ErrFatalResource, e.Err}
}

// NewAssetError wraps err as a fatal asset error for the given stage.
//
// Parameters:
//   - stage: the parsing or decoding stage that failed (e.g. "decode", "mesh", "image")
//   - err: the underlying error
//
// Returns:
//   - error: an *AssetError matching ErrFatalAsset under errors.Is
func NewAssetError(stage string, err error) error {
	return &AssetError{Stage: stage, Err: err}
}

// NewResourceError wraps err as a fatal resource error for the given GPU object label.
//
// Parameters:
//   - label: the debug label of the GPU object being created
//   - err: the underlying error
//
// Returns:
//   - error: a *ResourceError matching ErrFatalResource under errors.Is
func NewResourceError(label string, err error) error {
	return &ResourceError{Label: label, Err: err}
}
