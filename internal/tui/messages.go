package tui

import "time"

// RenderTickMsg triggers a re-read of the stores.
type RenderTickMsg time.Time

// ActionDoneMsg reports that a user action finished. Its outcome is in the stores.
type ActionDoneMsg struct{ Action string }

// RefreshDoneMsg reports the end of a manual status refresh.
type RefreshDoneMsg struct{ Err error }
