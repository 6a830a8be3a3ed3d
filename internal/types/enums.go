package types

type DependencyType string

const (
	DependencyTypeApt DependencyType = "apt"
	DependencyTypePip DependencyType = "pip"
)

type ConstraintOp string

const (
	ConstraintOpNone   ConstraintOp = ""
	ConstraintOpEq     ConstraintOp = "="
	ConstraintOpEq2    ConstraintOp = "=="
	// ConstraintOpArbitrary is the pip "===" string-equality match.
	ConstraintOpArbitrary ConstraintOp = "==="
	ConstraintOpNe     ConstraintOp = "!="
	ConstraintOpCompat ConstraintOp = "~="
	ConstraintOpGte    ConstraintOp = ">="
	ConstraintOpLte    ConstraintOp = "<="
	ConstraintOpGt     ConstraintOp = ">"
	ConstraintOpLt     ConstraintOp = "<"
)

// BuildStep names one stage of the build-time pipeline, in execution order.
type BuildStep string

const (
	BuildStepRuntime     BuildStep = "runtime"
	BuildStepSystem      BuildStep = "system-packages"
	BuildStepDeps        BuildStep = "dependencies"
	BuildStepEntrypoint  BuildStep = "entrypoint"
	BuildStepMaterialize BuildStep = "source"
)

// BuildSteps lists every build step in the order the pipeline runs them.
func BuildSteps() []BuildStep {
	return []BuildStep{
		BuildStepRuntime,
		BuildStepSystem,
		BuildStepDeps,
		BuildStepEntrypoint,
		BuildStepMaterialize,
	}
}

type SupervisorState string

const (
	SupervisorStateStart      SupervisorState = "start"
	SupervisorStateWaiting    SupervisorState = "waiting"
	SupervisorStateReady      SupervisorState = "ready"
	SupervisorStateRunning    SupervisorState = "running"
	SupervisorStateTerminated SupervisorState = "terminated"
	SupervisorStateFailed     SupervisorState = "failed"
	SupervisorStateCancelled  SupervisorState = "cancelled"
)

// DelegationMode selects how the supervisor hands control to the
// application once every endpoint is reachable.
type DelegationMode string

const (
	// DelegationModeExec replaces the supervisor process image with the
	// application, which inherits the PID.
	DelegationModeExec DelegationMode = "exec"
	// DelegationModeSupervise starts the application as a child, forwards
	// signals to it and propagates its exit code.
	DelegationModeSupervise DelegationMode = "supervise"
)

type BackoffKind string

const (
	BackoffConstant    BackoffKind = "constant"
	BackoffExponential BackoffKind = "exponential"
)
