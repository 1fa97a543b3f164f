package trainer

import "log"

// Runner is the part of WorkoutRunner the controller drives.
type Runner interface {
	Start()
	Pause()
	Resume()
	RepeatAnnouncement()
	Quit()
	Shutdown()
}

// UIController handles operator input and coordinates with the UIModel
type UIController struct {
	model            *UIModel
	runner           Runner
	closeOnFinish    bool
	logger           *log.Logger
	statusUnregister func()
}

type NewUIControllerArg struct {
	Model  *UIModel
	Runner Runner
	// CloseOnFinish closes the view as soon as the workout ends. Otherwise
	// the view stays up after a finished or failed run until the quit key.
	CloseOnFinish bool
	Logger        *log.Logger
}

func NewUIController(arg NewUIControllerArg) *UIController {
	if arg.Model == nil {
		panic("UIController: model cannot be nil")
	}
	if arg.Runner == nil {
		panic("UIController: runner cannot be nil")
	}
	if arg.Logger == nil {
		panic("UIController: logger cannot be nil")
	}

	c := &UIController{
		model:         arg.Model,
		runner:        arg.Runner,
		closeOnFinish: arg.CloseOnFinish,
		logger:        arg.Logger,
	}
	c.statusUnregister = c.model.ListenToStatus(c.onStatusChanged)
	return c
}

// onStatusChanged closes the application when the run ends by quitting,
// or by any means when closeOnFinish is set. It runs on the goroutine
// that changed the status.
func (c *UIController) onStatusChanged(status RunStatus) {
	c.logger.Printf("UIController: workout %s", status)
	if status == RunStatusCancelled || (c.closeOnFinish && status.Terminal()) {
		c.model.RequestCloseApplication()
	}
}

// OnKey dispatches an operator key. It reports whether the key was
// handled.
func (c *UIController) OnKey(key rune) bool {
	status := c.model.GetWorkoutState().Status
	for _, binding := range KeysFor(status) {
		if binding.Key != key {
			continue
		}
		switch key {
		case KeyStart.Key:
			c.StartWorkout()
		case KeyPause.Key:
			c.PauseWorkout()
		case KeyResume.Key:
			c.ResumeWorkout()
		case KeyAnnounce.Key:
			c.RepeatAnnouncement()
		case KeyQuit.Key:
			c.Quit()
		}
		return true
	}
	return false
}

func (c *UIController) StartWorkout() {
	c.runner.Start()
}

func (c *UIController) PauseWorkout() {
	c.logger.Printf("UIController: pause")
	c.runner.Pause()
}

func (c *UIController) ResumeWorkout() {
	c.logger.Printf("UIController: resume")
	c.runner.Resume()
}

// TogglePause pauses a running workout or resumes a paused one
func (c *UIController) TogglePause() {
	switch c.model.GetWorkoutState().Status {
	case RunStatusRunning:
		c.PauseWorkout()
	case RunStatusPaused:
		c.ResumeWorkout()
	}
}

func (c *UIController) RepeatAnnouncement() {
	c.runner.RepeatAnnouncement()
}

// Quit cancels a run in progress, or closes the application when the run
// is already over.
func (c *UIController) Quit() {
	if c.model.GetWorkoutState().Status.Terminal() {
		c.model.RequestCloseApplication()
		return
	}
	c.runner.Quit()
}

// Shutdown stops listening and shuts the runner down
func (c *UIController) Shutdown() {
	c.statusUnregister()
	c.runner.Shutdown()
}
