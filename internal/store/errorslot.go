package store

// ErrorSlot is the single process-wide "current error" the UI shows.
// It carries plain messages, no codes.
type ErrorSlot struct {
	Value[string]
}

// Report stores err's message. A nil err is ignored.
func (e *ErrorSlot) Report(err error) {
	if err == nil {
		return
	}
	e.Set(err.Error())
}

// Clear empties the slot.
func (e *ErrorSlot) Clear() {
	e.Set("")
}
