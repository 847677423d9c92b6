package tui

import "github.com/ensigniasec/pizza-timer/internal/timer"

// Message types for Bubble Tea update loop.

// engineEventMsg carries one Engine event into the update loop.
type engineEventMsg struct{ Event timer.Event }

// engineClosedMsg signals the Engine closed its subscription.
type engineClosedMsg struct{}
