package progress

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// RunUI runs the status window event loop. It is the body of the hidden
// internal-launch-ui subcommand: a background goroutine reads one status
// line at a time from stdin and the window shows the most recent one until
// the parent kills the process.
func RunUI(appVersion string) {
	a := app.New()
	w := a.NewWindow("XLM")

	heading := widget.NewLabelWithStyle(
		"Starting XIVLauncher\n(this may take a moment)",
		fyne.TextAlignCenter,
		fyne.TextStyle{Bold: true},
	)
	status := widget.NewLabel("")
	versionLabel := widget.NewLabel(fmt.Sprintf("XLM %s", appVersion))
	busy := widget.NewProgressBarInfinite()

	w.SetContent(container.NewBorder(
		nil,
		container.NewVBox(busy, container.NewHBox(status, versionLabel)),
		nil,
		nil,
		container.NewCenter(heading),
	))
	w.Resize(fyne.NewSize(800, 500))
	w.SetFixedSize(true)
	w.CenterOnScreen()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			fyne.DoAndWait(func() {
				status.SetText(line)
			})
		}
		// Stdin closing means the parent is gone; it kills us momentarily,
		// so just stop reading.
	}()

	w.ShowAndRun()
}
