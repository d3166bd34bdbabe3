package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"watchlater/internal/formatter"
	"watchlater/internal/models"
	"watchlater/internal/tasks"
)

// ViewState identifies which screen the TUI is showing.
type ViewState int

const (
	WatchlistView ViewState = iota
	SearchView
	ResultsView
	DetailView
)

// Model is the bubbletea model for the watchlist browser.
type Model struct {
	ctx       context.Context
	view      ViewState
	movies    *tasks.MovieEngine
	watchlist *tasks.WatchlistEngine
	userID    int64

	watchlistList list.Model
	resultsList   list.Model
	searchInput   textinput.Model
	selected      *models.Movie

	help   help.Model
	keys   keyMap
	width  int
	height int
	status string
	err    error
}

// watchlistItem wraps [tasks.WatchlistItem] to implement list.Item.
type watchlistItem struct {
	item tasks.WatchlistItem
}

func (i watchlistItem) FilterValue() string { return i.item.Movie.Title }
func (i watchlistItem) Title() string {
	mark := "○"
	if i.item.Entry.Watched {
		mark = styles.watched.Render("✓")
	}
	return fmt.Sprintf("%s %s", mark, i.item.Movie.Title)
}
func (i watchlistItem) Description() string {
	desc := formatter.FormatReleaseDate(i.item.Movie.ReleaseDate)
	if i.item.Movie.VoteAverage > 0 {
		desc = fmt.Sprintf("%s • rated %s", desc, formatter.FormatVoteAverage(i.item.Movie.VoteAverage))
	}
	return desc
}

// movieItem wraps [models.Movie] to implement list.Item.
type movieItem struct {
	movie models.Movie
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string       { return i.movie.Title }
func (i movieItem) Description() string {
	desc := formatter.FormatReleaseDate(i.movie.ReleaseDate)
	if i.movie.VoteAverage > 0 {
		desc = fmt.Sprintf("%s • rated %s", desc, formatter.FormatVoteAverage(i.movie.VoteAverage))
	}
	return desc
}

type watchlistFetchedMsg struct {
	items []tasks.WatchlistItem
	err   error
}

type resultsFetchedMsg struct {
	movies []models.Movie
	err    error
}

type detailFetchedMsg struct {
	movie *models.Movie
	err   error
}

type entryChangedMsg struct {
	status string
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, movies *tasks.MovieEngine, watchlist *tasks.WatchlistEngine, userID int64) *Model {
	input := textinput.New()
	input.Placeholder = "movie title..."
	input.CharLimit = 120

	return &Model{
		ctx:         ctx,
		view:        WatchlistView,
		movies:      movies,
		watchlist:   watchlist,
		userID:      userID,
		searchInput: input,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init initializes the TUI by loading the user's watchlist.
func (m *Model) Init() tea.Cmd {
	return m.fetchWatchlist()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.watchlistList.Width() == 0 {
			m.watchlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.resultsList.Width() == 0 {
			m.resultsList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case WatchlistView:
			return m.handleWatchlistKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case ResultsView:
			return m.handleResultsKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case watchlistFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.items))
		for i, it := range msg.items {
			items[i] = watchlistItem{item: it}
		}
		m.watchlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.watchlistList.Title = "Watch Later"
		m.watchlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case resultsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = WatchlistView
			return m, nil
		}
		items := make([]list.Item, len(msg.movies))
		for i, movie := range msg.movies {
			items[i] = movieItem{movie: movie}
		}
		m.resultsList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.resultsList.Title = fmt.Sprintf("Results for '%s'", m.searchInput.Value())
		m.resultsList.SetSize(m.width-4, m.height-8)
		m.view = ResultsView
		return m, nil

	case detailFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = WatchlistView
			return m, nil
		}
		m.selected = msg.movie
		m.view = DetailView
		return m, nil

	case entryChangedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.status = msg.status
		return m, m.fetchWatchlist()
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case WatchlistView:
		return m.renderWatchlist()
	case SearchView:
		return m.renderSearch()
	case ResultsView:
		return m.renderResults()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleWatchlistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		m.view = SearchView
		return m, textinput.Blink
	case "w":
		if it, ok := m.selectedWatchlistItem(); ok {
			return m, m.toggleWatched(it)
		}
	case "x":
		if it, ok := m.selectedWatchlistItem(); ok {
			return m, m.removeEntry(it)
		}
	case "enter":
		if it, ok := m.selectedWatchlistItem(); ok {
			return m, m.fetchDetail(it.item.Movie.TMDBID)
		}
	}

	var cmd tea.Cmd
	m.watchlistList, cmd = m.watchlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = WatchlistView
		return m, nil
	case "enter":
		query := m.searchInput.Value()
		if query != "" {
			return m, m.search(query)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = WatchlistView
		return m, nil
	case "enter":
		selected := m.resultsList.SelectedItem()
		if selected != nil {
			if mi, ok := selected.(movieItem); ok {
				return m, m.addToWatchlist(mi.movie.TMDBID)
			}
		}
	}

	var cmd tea.Cmd
	m.resultsList, cmd = m.resultsList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.selected = nil
		m.view = WatchlistView
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case WatchlistView:
		m.watchlistList, cmd = m.watchlistList.Update(msg)
	case ResultsView:
		m.resultsList, cmd = m.resultsList.Update(msg)
	}
	return m, cmd
}

func (m *Model) selectedWatchlistItem() (watchlistItem, bool) {
	selected := m.watchlistList.SelectedItem()
	if selected == nil {
		return watchlistItem{}, false
	}
	it, ok := selected.(watchlistItem)
	return it, ok
}

func (m *Model) fetchWatchlist() tea.Cmd {
	return func() tea.Msg {
		items, err := m.watchlist.ListWatchlistDetailed(m.userID).Await()
		return watchlistFetchedMsg{items: items, err: err}
	}
}

func (m *Model) search(query string) tea.Cmd {
	return func() tea.Msg {
		movies, err := m.movies.SearchMovies(m.ctx, nil, query).Await()
		return resultsFetchedMsg{movies: movies, err: err}
	}
}

func (m *Model) fetchDetail(tmdbID int) tea.Cmd {
	return func() tea.Msg {
		movie, err := m.movies.GetMovieDetails(m.ctx, tmdbID).Await()
		return detailFetchedMsg{movie: movie, err: err}
	}
}

func (m *Model) addToWatchlist(tmdbID int) tea.Cmd {
	return func() tea.Msg {
		_, err := m.watchlist.AddToWatchlist(m.userID, tmdbID).Await()
		return entryChangedMsg{status: "added to watchlist", err: err}
	}
}

func (m *Model) toggleWatched(it watchlistItem) tea.Cmd {
	tmdbID := it.item.Movie.TMDBID
	watched := it.item.Entry.Watched
	return func() tea.Msg {
		var err error
		status := "marked watched"
		if watched {
			_, err = m.watchlist.MarkUnwatched(m.userID, tmdbID).Await()
			status = "marked unwatched"
		} else {
			_, err = m.watchlist.MarkWatched(m.userID, tmdbID).Await()
		}
		return entryChangedMsg{status: status, err: err}
	}
}

func (m *Model) removeEntry(it watchlistItem) tea.Cmd {
	tmdbID := it.item.Movie.TMDBID
	return func() tea.Msg {
		_, err := m.watchlist.RemoveFromWatchlist(m.userID, tmdbID).Await()
		return entryChangedMsg{status: "removed from watchlist", err: err}
	}
}

func (m *Model) renderWatchlist() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.search, m.keys.watched, m.keys.remove, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	status := ""
	if m.status != "" {
		status = styles.ok.Render(m.status) + "\n"
	}

	return fmt.Sprintf("%s\n%s\n%s", m.watchlistList.View(), status, helpView)
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Search movies")
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.searchInput.View(), helpView)
}

func (m *Model) renderResults() string {
	addKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add"))
	helpKeys := []key.Binding{addKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.resultsList.View(), helpView)
}

func (m *Model) renderDetail() string {
	movie := m.selected
	if movie == nil {
		return styles.err.Render("No movie selected\n\nPress esc to go back")
	}

	title := styles.title.Render(movie.Title)
	info := fmt.Sprintf(
		"\nReleased: %s\nRuntime: %s\nRating: %s (%s votes)\nBudget: %s\nRevenue: %s\n",
		formatter.FormatReleaseDate(movie.ReleaseDate),
		formatter.FormatRuntime(movie.Runtime),
		formatter.FormatVoteAverage(movie.VoteAverage),
		formatter.FormatVoteCount(movie.VoteCount),
		formatter.FormatMoney(movie.Budget),
		formatter.FormatMoney(movie.Revenue),
	)

	overview := ""
	if movie.Overview != "" {
		overview = "\n" + movie.Overview + "\n"
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s%s%s\n%s", title, info, overview, helpView)
}
