package pymend

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// runLogTUI opens a browser over all recorded run logs: header with the log
// tabs, scrollable content view, footer with key help. Tab/arrow keys cycle
// between logs, newest first.
func runLogTUI() error {
	names, err := listRunLogs()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No run logs recorded yet.")
		return nil
	}

	active := 0
	app := tview.NewApplication()

	headerBox := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetTextAlign(tview.AlignLeft)
	headerBox.SetBorder(true)
	headerBox.SetTitle("pymend Run Log Viewer")

	logView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetScrollable(true)
	logView.SetBorder(true)

	footerBox := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetTextAlign(tview.AlignLeft)
	footerBox.SetBorder(true)
	footerBox.SetText("[yellow]Tab/→[white] next log  [yellow]←[white] previous log  [yellow]g/G[white] top/bottom  [yellow]q[white] quit")

	show := func() {
		var tabs []string
		for i, n := range names {
			label := strings.TrimSuffix(n, ".log.xz")
			if i == active {
				tabs = append(tabs, "[black:yellow] "+label+" [-:-]")
			} else {
				tabs = append(tabs, " "+label+" ")
			}
		}
		headerBox.SetText(strings.Join(tabs, "|"))

		logView.Clear()
		lines, err := readRunLog(names[active])
		if err != nil {
			fmt.Fprintf(logView, "[red]failed to read %s: %v", names[active], err)
			return
		}
		fmt.Fprint(tview.ANSIWriter(logView), strings.Join(lines, "\n"))
		logView.ScrollToBeginning()
	}
	show()

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerBox, 3, 0, false).
		AddItem(logView, 0, 1, true).
		AddItem(footerBox, 3, 0, false)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc:
			app.Stop()
			return nil
		case tcell.KeyTab, tcell.KeyRight:
			active = (active + 1) % len(names)
			show()
			return nil
		case tcell.KeyLeft:
			active = (active - 1 + len(names)) % len(names)
			show()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q':
				app.Stop()
				return nil
			case 'g':
				logView.ScrollToBeginning()
				return nil
			case 'G':
				logView.ScrollToEnd()
				return nil
			}
		}
		return event
	})

	if err := app.SetRoot(flex, true).SetFocus(logView).Run(); err != nil {
		return fmt.Errorf("log viewer failed: %w", err)
	}
	return nil
}
