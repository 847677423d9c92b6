package tui

// Package-level constants to avoid magic numbers and improve readability.
const (
	// eventBufferSize is the Engine subscription buffer for the view.
	eventBufferSize = 256

	maxProgressWidth = 48
	minProgressWidth = 10
	// frameMargin is the horizontal space around the progress bar.
	frameMargin = 4

	// historyMax bounds the completed-interval list.
	historyMax        = 50
	historyViewLines  = 3
	settingsCharLimit = 6
	settingsWidth     = 8

	headerText      = "LET'S GET IT DONE, BABY!"
	invalidSettings = "Please enter positive numbers for both focus and break times."
)
