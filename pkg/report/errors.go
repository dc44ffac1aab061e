package report

// Errors is the ordered list of validation failures collected on a report.
// An empty list means the report is valid.
type Errors []string

// Add appends a failure message.
func (e *Errors) Add(message string) {
	*e = append(*e, message)
}

// FullMessages returns the messages in the order they were added.
func (e Errors) FullMessages() []string {
	out := make([]string, len(e))
	copy(out, e)
	return out
}

func (e Errors) Empty() bool {
	return len(e) == 0
}

func (e Errors) Len() int {
	return len(e)
}
