package cli

import (
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RunWithSpinner runs fn behind a progress spinner unless quiet mode is
// enabled. The spinner is stopped before fn's error is returned so failure
// output never interleaves with the animation.
func RunWithSpinner(quiet bool, message string, fn func() error) error {
	if quiet {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Start()
	defer s.Stop()

	if err := fn(); err != nil {
		s.FinalMSG = text.FgRed.Sprint("✗ "+message) + "\n"
		return err
	}
	return nil
}
