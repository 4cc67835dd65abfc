package chat

// WindowPolicy bounds how much history goes into a model request. LastN of
// zero (or negative) sends the full log; a positive LastN keeps only the most
// recent N messages by position.
type WindowPolicy struct {
	LastN int
}

// Assemble builds the exact ordered message list for one model invocation:
// the system preamble first (when non-empty), then the windowed history in
// stored order, then the pending message. The pending message is never
// dropped by the window. Pure function; callers own the inputs.
func Assemble(history []Message, preamble string, pending Message, policy WindowPolicy) []Message {
	if policy.LastN > 0 && len(history) > policy.LastN {
		history = history[len(history)-policy.LastN:]
	}

	out := make([]Message, 0, len(history)+2)
	if preamble != "" {
		out = append(out, Message{
			Role:      RoleSystem,
			Content:   Content{Text: preamble},
			Timestamp: pending.Timestamp,
		})
	}
	out = append(out, history...)
	return append(out, pending)
}
