package main

import "github.com/fatih/color"

var (
	colorGreen  = color.New(color.FgGreen).SprintFunc()
	colorYellow = color.New(color.FgYellow).SprintFunc()
	colorRed    = color.New(color.FgRed).SprintFunc()
	colorCyan   = color.New(color.FgCyan).SprintFunc()
)

// colorizePriority highlights p0/p1 in red, p2 in yellow, leaving the
// rest uncolored so a scrolled terminal still draws the eye to what's
// urgent.
func colorizePriority(priority string) string {
	switch priority {
	case "p0", "p1":
		return colorRed(priority)
	case "p2":
		return colorYellow(priority)
	default:
		return priority
	}
}

// colorizeStatus highlights closed issues in green and tombstoned ones
// in red; open/in_progress print plain.
func colorizeStatus(status string) string {
	switch status {
	case "closed":
		return colorGreen(status)
	case "tombstone":
		return colorRed(status)
	default:
		return status
	}
}
