// Package nav builds the console sidebar for the signed-in user.
package nav

import "github.com/fleetops/fleet-console/internal/shared"

// Entry is one static menu link. Perms lists the permissions of which the
// user needs at least one; an empty list means everyone signed in.
type Entry struct {
	Label string
	Href  string
	Icon  string
	Perms []string
}

// Group is a titled block of menu entries.
type Group struct {
	Title   string
	Entries []Entry
}

// Menu is the full console menu before role filtering.
var Menu = []Group{
	{
		Title: "Overview",
		Entries: []Entry{
			{Label: "Dashboard", Href: "/", Icon: iconHome, Perms: []string{shared.PermDashboardView}},
		},
	},
	{
		Title: "Masters",
		Entries: []Entry{
			{Label: "List of Values", Href: "/masters/list-of-values", Icon: iconList, Perms: []string{shared.PermLOVView}},
		},
	},
	{
		Title: "Administration",
		Entries: []Entry{
			{Label: "Job Queue", Href: "/jobs/health", Icon: iconQueue, Perms: []string{shared.PermJobsView}},
			{Label: "Metrics", Href: "/metrics", Icon: iconChart, Perms: []string{shared.PermJobsView}},
		},
	},
}

const (
	iconHome  = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="18" height="18" fill="none" stroke="currentColor" stroke-width="2" aria-hidden="true"><path d="M3 11l9-8 9 8"/><path d="M5 10v10h14V10"/></svg>`
	iconList  = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="18" height="18" fill="none" stroke="currentColor" stroke-width="2" aria-hidden="true"><line x1="8" y1="6" x2="21" y2="6"/><line x1="8" y1="12" x2="21" y2="12"/><line x1="8" y1="18" x2="21" y2="18"/><circle cx="4" cy="6" r="1"/><circle cx="4" cy="12" r="1"/><circle cx="4" cy="18" r="1"/></svg>`
	iconQueue = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="18" height="18" fill="none" stroke="currentColor" stroke-width="2" aria-hidden="true"><rect x="3" y="4" width="18" height="4"/><rect x="3" y="10" width="18" height="4"/><rect x="3" y="16" width="18" height="4"/></svg>`
	iconChart = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="18" height="18" fill="none" stroke="currentColor" stroke-width="2" aria-hidden="true"><polyline points="3 17 9 11 13 15 21 7"/></svg>`
)
