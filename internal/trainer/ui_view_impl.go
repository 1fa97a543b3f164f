package trainer

// UIViewImpl defines the interface for framework-specific UI implementations
type UIViewImpl interface {
	// Initialize is called after construction to set up framework-specific widgets
	Initialize(controller *UIController)

	// SetupKeyboardHandlers routes operator keys to the controller
	SetupKeyboardHandlers(controller *UIController)

	// Run starts the UI framework and blocks until it exits
	Run() error

	// Stop stops the UI framework
	Stop()

	// Draw refreshes/redraws the UI
	Draw() error

	// GetLogViewHeight returns the visible height of the log view, 0 when
	// the view has no log pane
	GetLogViewHeight() int

	ClearLogView()
	WriteLogLine(line string) error

	// UpdateWorkoutState redraws the clock, status lines and prompt
	UpdateWorkoutState(state WorkoutState)
}
