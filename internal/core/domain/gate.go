package domain

// Skip reasons reported by Evaluate.
const (
	ReasonNotTag            = "not a tag"
	ReasonToolchainMismatch = "toolchain mismatch"
	ReasonNoDeploy          = "no deploy configured"
)

// Decision is the outcome of evaluating a deploy gate.
type Decision struct {
	Open   bool
	Reason string
}

// GateOpen is the decision letting before_deploy and the publisher run.
var GateOpen = Decision{Open: true}

// Skipped returns a closed gate with the given reason.
func Skipped(reason string) Decision {
	return Decision{Reason: reason}
}

// Evaluate decides whether the deploy runs for the given event. It has no
// side effects, so repeated calls with equal inputs agree.
func Evaluate(cond ConditionSpec, ev RunEvent) Decision {
	if cond.TagsOnly && !ev.IsTag {
		return Skipped(ReasonNotTag)
	}
	if cond.RequiredToolchainVersion != "" && cond.RequiredToolchainVersion != ev.ToolchainVersion {
		return Skipped(ReasonToolchainMismatch)
	}
	return GateOpen
}
