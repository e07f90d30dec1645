package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fastygo/taskboard/client/dashboard"
	"github.com/fastygo/taskboard/client/navigation"
	"github.com/fastygo/taskboard/domain"
)

const shortIDLength = 8

func renderState(w io.Writer, state navigation.State) {
	switch state.View() {
	case domain.ViewDashboard:
		fmt.Fprintln(w, "Signed in.")
	case domain.ViewConfirmation:
		fmt.Fprintln(w, "Account created.")
	case domain.ViewLanding:
		fmt.Fprintln(w, "Not signed in.")
	default:
		fmt.Fprintf(w, "State: %s\n", state)
	}
	if state.Notice != "" {
		fmt.Fprintln(w, state.Notice)
	}
}

func renderSnapshot(w io.Writer, snap dashboard.Snapshot) {
	if snap.UserLabel != "" {
		fmt.Fprintf(w, "Signed in as %s\n\n", snap.UserLabel)
	}
	if len(snap.Tasks) == 0 {
		fmt.Fprintln(w, "No tasks yet. Add one with `taskboard add <title>`.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, task := range snap.Tasks {
		mark := " "
		if task.Completed {
			mark = "x"
		}
		fmt.Fprintf(tw, "[%s]\t%s\t%s\t%s\n", mark, shortID(task.ID), task.Title, task.CreatedLabel())
		if task.Description != "" {
			fmt.Fprintf(tw, "\t\t  %s\t\n", task.Description)
		}
	}
	_ = tw.Flush()
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}
