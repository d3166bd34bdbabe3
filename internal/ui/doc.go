// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing and curating a watchlist:
//  1. [WatchlistView] : Browse the saved watchlist and toggle watched state
//  2. [SearchView] : Type a query to search the movie provider
//  3. [ResultsView] : Pick a search result to add to the watchlist
//  4. [DetailView] : Full details for the selected movie
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Engine calls run inside tea.Cmd closures so the event loop never blocks on
// the worker pool; results come back as typed messages.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual
// help displayed via charmbracelet/bubbles/help.
package ui
