package trainer

import (
	"fmt"
	"log"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	clockLit  = "█"
	clockDark = " "
)

// CursesUIViewImpl implements UIViewImpl using tview (curses-based terminal UI)
type CursesUIViewImpl struct {
	logger         *log.Logger
	app            *tview.Application
	redZoneSeconds int

	mainFlex    *tview.Flex
	header      *tview.TextView
	statusPanel *tview.TextView
	clockPanel  *tview.TextView
	messageLine *tview.TextView
	promptLine  *tview.TextView
	logView     *tview.TextView
	footer      *tview.TextView
}

type NewCursesUIViewArg struct {
	Logger         *log.Logger
	App            *tview.Application
	RedZoneSeconds int
}

func NewCursesUIView(arg NewCursesUIViewArg) *CursesUIViewImpl {
	if arg.Logger == nil {
		panic("CursesUIViewImpl: logger cannot be nil")
	}
	if arg.App == nil {
		panic("CursesUIViewImpl: app cannot be nil")
	}
	return &CursesUIViewImpl{
		logger:         arg.Logger,
		app:            arg.App,
		redZoneSeconds: arg.RedZoneSeconds,
	}
}

// Initialize sets up the tview widgets
func (ui *CursesUIViewImpl) Initialize(controller *UIController) {
	ui.header = ui.bar()
	ui.footer = ui.bar()

	ui.statusPanel = tview.NewTextView().SetDynamicColors(true)

	ui.clockPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	ui.messageLine = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	ui.promptLine = tview.NewTextView().SetDynamicColors(true)

	// Don't use SetChangedFunc with app.Draw(): BaseUIView draws after
	// every update, and a changed func can hang once the app has stopped.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Log ")

	ui.mainFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.header, 1, 0, false).
		AddItem(ui.statusPanel, 4, 0, false).
		AddItem(ui.clockPanel, GlyphHeight+2, 0, false).
		AddItem(ui.messageLine, 1, 0, false).
		AddItem(ui.promptLine, 1, 0, false).
		AddItem(ui.logView, 0, 1, false).
		AddItem(ui.footer, 1, 0, false)
}

func (ui *CursesUIViewImpl) bar() *tview.TextView {
	bar := tview.NewTextView().SetDynamicColors(true)
	bar.SetBackgroundColor(tcell.ColorWhite)
	bar.SetTextColor(tcell.ColorBlack)
	return bar
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *CursesUIViewImpl) SetupKeyboardHandlers(controller *UIController) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			controller.Quit()
			return nil
		case tcell.KeyRune:
			if event.Rune() == ' ' {
				controller.TogglePause()
				return nil
			}
			if !controller.OnKey(toLowerRune(event.Rune())) {
				ui.logger.Printf("UI: invalid key %q", event.Rune())
			}
			return nil
		}
		return event
	})
}

func toLowerRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// UpdateWorkoutState redraws everything that depends on the run
func (ui *CursesUIViewImpl) UpdateWorkoutState(state WorkoutState) {
	ui.header.SetText(ui.barText(Title, Version))
	ui.footer.SetText(ui.barText(Title, state.PlanName))

	ui.statusPanel.SetText(fmt.Sprintf(
		" SET/CIRCUIT      : [blue]%s[-]\n CURRENT INTERVAL : [blue]%s[-]\n NEXT INTERVAL    : [blue]%s[-]\n PHASE            : [blue]%d/%d[-]",
		state.SetCircuitLine(),
		tview.Escape(strings.ToUpper(state.CurrentLabel())),
		tview.Escape(strings.ToUpper(state.NextLabel())),
		state.PhaseIndex+1, state.PhaseCount,
	))

	color := "white"
	if state.Remaining <= ui.redZoneSeconds && state.Remaining > 0 {
		color = "red"
	}
	rows := BigClock(FormatClock(state.Remaining), clockLit, clockDark)
	ui.clockPanel.SetText("\n[" + color + "]" + strings.Join(rows, "\n") + "[-]")

	ui.messageLine.SetText(statusMessage(state))
	ui.promptLine.SetText(" " + promptText(state.Status))
}

func (ui *CursesUIViewImpl) barText(left, right string) string {
	_, _, width, _ := ui.header.GetInnerRect()
	gap := width - len(left) - len(right) - 2
	if gap < 1 {
		gap = 1
	}
	return " " + tview.Escape(left) + strings.Repeat(" ", gap) + tview.Escape(right)
}

// statusMessage is the one-line banner under the clock.
func statusMessage(state WorkoutState) string {
	switch state.Status {
	case RunStatusWaitingToStart:
		return "[yellow]Press S to start[-]"
	case RunStatusPaused:
		return "[yellow]PAUSED[-]"
	case RunStatusFinished:
		return "[green]WORKOUT COMPLETE[-]"
	case RunStatusCancelled:
		return "[gray]WORKOUT CANCELLED[-]"
	case RunStatusFailed:
		return "[red]" + tview.Escape(fmt.Sprintf("FAILED: %v", state.Err)) + "[-]"
	default:
		return ""
	}
}

// promptText renders "COMMAND [(p)ause, (q)uit] : " for the keys valid
// in status.
func promptText(status RunStatus) string {
	keys := KeysFor(status)
	help := make([]string, 0, len(keys))
	for _, k := range keys {
		help = append(help, k.Help)
	}
	return PromptLabel + " " + tview.Escape("["+strings.Join(help, ", ")+"]") + " : "
}

// GetLogViewHeight returns the visible height of the log view
func (ui *CursesUIViewImpl) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

// ClearLogView clears the log view
func (ui *CursesUIViewImpl) ClearLogView() {
	ui.logView.Clear()
}

// WriteLogLine writes a line to the log view
func (ui *CursesUIViewImpl) WriteLogLine(line string) error {
	_, err := fmt.Fprint(ui.logView, tview.Escape(line))
	return err
}

// Draw refreshes/redraws the UI
func (ui *CursesUIViewImpl) Draw() error {
	ui.app.Draw()
	return nil
}

// Run starts the UI and blocks until it exits
func (ui *CursesUIViewImpl) Run() error {
	return ui.app.SetRoot(ui.mainFlex, true).Run()
}

// Stop stops the UI framework
func (ui *CursesUIViewImpl) Stop() {
	ui.app.Stop()
}
