// Package kerr defines the error kinds surfaced by the analysis pipeline
// kernel (configuration, archive acquisition, check/transform failures,
// non-convergence, cancellation).
package kerr

import "errors"

// Sentinel error kinds. Wrap with fmt.Errorf("...: %w", ErrXxx) to attach
// context; callers identify the kind with errors.Is.
var (
	// ErrConfigurationInvalid signals a schema violation, an unknown
	// extension id referenced from a transform block, an incomplete
	// severity mapping, or an unknown criticality name. Surfaced before
	// any analysis begins.
	ErrConfigurationInvalid = errors.New("configuration invalid")

	// ErrArtifactUnresolved signals that an archive could not be
	// obtained. Fatal to the run unless the driver tolerates it.
	ErrArtifactUnresolved = errors.New("artifact unresolved")

	// ErrAnalysisCompletionFailure signals a transient failure from an
	// analyzer's lazy resolution, retried up to a bounded count before
	// becoming fatal for the affected element.
	ErrAnalysisCompletionFailure = errors.New("analysis completion failure")

	// ErrCheckFailure is captured and attached as a synthetic difference
	// on the current pair; the walk continues.
	ErrCheckFailure = errors.New("check failure")

	// ErrTransformFailure is captured and attached as a synthetic
	// difference on the current pair; the walk continues.
	ErrTransformFailure = errors.New("transform failure")

	// ErrTransformNonConvergence signals a block did not reach a
	// fixpoint within its iteration cap. Fatal to the run.
	ErrTransformNonConvergence = errors.New("transform block did not converge")

	// ErrRunCancelled surfaces when the injected cancellation token is
	// set at an element boundary.
	ErrRunCancelled = errors.New("run cancelled")
)

// FatalError wraps a kind with the pair/element context it occurred at, so
// a driver can report it both as a fatal difference and in its fatal list.
type FatalError struct {
	Kind    error
	Element string // human-readable string of the element in question, if any
	Cause   error
}

func (e *FatalError) Error() string {
	if e.Element == "" {
		return e.Kind.Error() + ": " + e.Cause.Error()
	}
	return e.Kind.Error() + " at " + e.Element + ": " + e.Cause.Error()
}

func (e *FatalError) Unwrap() error { return e.Kind }

// Is allows errors.Is(err, kerr.ErrCheckFailure) to match a *FatalError
// whose Kind is that sentinel, without also matching on Cause.
func (e *FatalError) Is(target error) bool { return errors.Is(e.Kind, target) }
