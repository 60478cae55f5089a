// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing the myFlix catalog:
//  1. [MovieListView] : Browse the catalog with favorites marked
//  2. [DetailView] : Inspect a movie, its genre, or its director
//  3. [ProfileView] : Review the signed-in user's profile and favorites
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Favorite toggles route through a shared favorites.Synchronizer; its update
// channel is drained as a tea.Cmd so every view observes the same cache and
// the latest notice is shown in the status line.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, f, g, d, p, q)
// with contextual help displayed via charmbracelet/bubbles/help.
package ui
