package domain

// Notification is one message handed to a sink.
type Notification struct {
	Channel    string
	Recipients []string
	Report     *RunReport
	// Changed reports whether the outcome differs from the previous run.
	Changed bool
}

// Subject returns a one-line summary of the run.
func (n Notification) Subject() string {
	status := "passed"
	if !n.Report.Outcome.Kind.IsSuccess() {
		status = "failed"
	}
	if n.Report.Outcome.Kind == OutcomeDeployFailed {
		status = "deploy failed"
	}
	ref := n.Report.Event.Ref
	if tag := n.Report.Event.Tag(); tag != "" {
		ref = tag
	}
	if ref == "" {
		return "Run " + n.Report.RunID + " " + status
	}
	return "Run " + n.Report.RunID + " (" + ref + ") " + status
}
