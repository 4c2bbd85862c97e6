package cmd

import (
	"fmt"
	"os"
	"time"
)

// typewriter prints only the suffix the delivery engine appended since the
// last partial, so growing-prefix callbacks render as a typing effect.
type typewriter struct {
	printed int
}

func (t *typewriter) print(text string) {
	if len(text) <= t.printed {
		return
	}
	fmt.Print(text[t.printed:])
	t.printed = len(text)
}

// finish prints any remainder of the final text and terminates the line.
// Atomic deliveries never produce partials, so the whole answer lands here.
func (t *typewriter) finish(text string) {
	t.print(text)
	fmt.Println()
}

// showSpinner displays a spinner animation while waiting for response
func showSpinner(done chan bool) {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	i := 0
	for {
		select {
		case <-done:
			// Clear the spinner line
			fmt.Fprint(os.Stderr, "\r\033[K")
			return
		default:
			fmt.Fprintf(os.Stderr, "\r%s Waiting for response...", spinners[i])
			i = (i + 1) % len(spinners)
			time.Sleep(80 * time.Millisecond)
		}
	}
}
