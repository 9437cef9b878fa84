package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/petspot/petspot-backend/internal/reportflow"
)

// reportResult is what a finished scripted run produced
type reportResult struct {
	AnnouncementID     string
	ManagementPassword string
}

// errStepRejected is returned when a step refuses to continue
var errStepRejected = errors.New("step rejected the answers")

// runReport drives c through every step with the scripted answers, printing
// effects to out as they are produced
func runReport(ctx context.Context, c *reportflow.Controller, a *Answers, copyPassword bool, out io.Writer) (*reportResult, error) {
	dispatch := func(intents ...reportflow.Intent) error {
		for _, in := range intents {
			if err := c.Dispatch(ctx, in); err != nil {
				return fmt.Errorf("%s step: %w", c.CurrentStep(), err)
			}
		}
		printEffects(out, c.DrainEffects())
		return nil
	}

	// Microchip
	if err := dispatch(append(a.microchipIntents(), reportflow.ContinueClicked{})...); err != nil {
		return nil, err
	}
	if err := expectStep(c, reportflow.StepPhoto); err != nil {
		return nil, err
	}

	// Photo
	if a.Photo != "" {
		if err := dispatch(reportflow.PhotoSelected{Handle: a.Photo}); err != nil {
			return nil, err
		}
		c.Wait()
	}
	if err := dispatch(reportflow.ContinueClicked{}); err != nil {
		return nil, err
	}
	if err := expectStep(c, reportflow.StepDescription); err != nil {
		return nil, err
	}

	// Description
	intents, err := a.descriptionIntents()
	if err != nil {
		return nil, err
	}
	if err := dispatch(append(intents, reportflow.ContinueClicked{})...); err != nil {
		return nil, err
	}
	if err := expectStep(c, reportflow.StepContact); err != nil {
		return nil, fieldErrorsReport(err, c.DescriptionState().Errors)
	}

	// Contact and submission
	if err := dispatch(append(a.contactIntents(), reportflow.Submit{})...); err != nil {
		return nil, err
	}
	if err := expectStep(c, reportflow.StepSummary); err != nil {
		state := c.ContactState()
		if state.Error != nil {
			snap := c.Snapshot()
			if snap.AnnouncementID != "" {
				fmt.Fprintf(out, "announcement %s was created, management password %s\n", snap.AnnouncementID, snap.ManagementPassword)
			}
			return nil, state.Error
		}
		return nil, fieldErrorsReport(err, state.Errors)
	}

	summary := c.SummaryState()
	result := &reportResult{AnnouncementID: summary.AnnouncementID, ManagementPassword: summary.ManagementPassword}

	if copyPassword {
		if err := dispatch(reportflow.CopyPasswordClicked{}); err != nil {
			return nil, err
		}
	}
	if err := dispatch(reportflow.CloseClicked{}); err != nil {
		return nil, err
	}
	return result, nil
}

func expectStep(c *reportflow.Controller, want reportflow.Step) error {
	if got := c.CurrentStep(); got != want {
		return fmt.Errorf("%w: still on %s step", errStepRejected, got)
	}
	return nil
}

func fieldErrorsReport(err error, fields map[reportflow.Field]string) error {
	if len(fields) == 0 {
		return err
	}
	names := make([]string, 0, len(fields))
	for f := range fields {
		names = append(names, string(f))
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, n+": "+fields[reportflow.Field(n)])
	}
	return fmt.Errorf("%w (%s)", err, strings.Join(parts, "; "))
}

func printEffects(out io.Writer, effects []reportflow.Effect) {
	for _, e := range effects {
		switch e := e.(type) {
		case reportflow.NavigatedForward:
			fmt.Fprintf(out, "-> %s\n", e.To)
		case reportflow.NavigatedBack:
			fmt.Fprintf(out, "<- %s\n", e.To)
		case reportflow.ShowToast:
			fmt.Fprintf(out, "!  %s\n", e.Message)
		case reportflow.OpenLocationSettings:
			fmt.Fprintln(out, "!  enable location services to share your position")
		case reportflow.ExitFlow:
			fmt.Fprintln(out, "done")
		}
	}
}
