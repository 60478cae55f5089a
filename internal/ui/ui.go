package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/myflix/internal/favorites"
	"github.com/desertthunder/myflix/internal/models"
	"github.com/desertthunder/myflix/internal/services"
	"github.com/desertthunder/myflix/internal/session"
	"github.com/desertthunder/myflix/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MovieListView ViewState = iota
	DetailView
	ProfileView
)

// detailKind selects what the detail view shows for the selected movie.
type detailKind int

const (
	movieDetail detailKind = iota
	genreDetail
	directorDetail
)

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	api       services.Service
	store     session.Store
	sync      *favorites.Synchronizer
	width     int
	height    int
	movieList list.Model
	movies    []models.Movie
	selected  *models.Movie
	detail    detailKind
	profile   *models.User
	updates   <-chan favorites.Update
	notice    *favorites.Notice
	err       error
	help      help.Model
	keys      keyMap
}

type moviesFetchedMsg struct {
	movies []models.Movie
	err    error
}

type profileFetchedMsg struct {
	user *models.User
	err  error
}

type favoritesUpdateMsg favorites.Update

type toggleFailedMsg struct {
	err error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, api services.Service, store session.Store, sync *favorites.Synchronizer) *Model {
	return &Model{
		ctx:     ctx,
		view:    MovieListView,
		api:     api,
		store:   store,
		sync:    sync,
		updates: sync.Subscribe(),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init fetches the catalog and primes the favorites cache.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchMovies(), m.refreshFavorites(), m.waitForUpdate())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.movieList.Width() != 0 {
			m.movieList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case MovieListView:
			return m.handleMovieListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ProfileView:
			return m.handleProfileKeys(msg)
		}

	case moviesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.movies = msg.movies
		m.movieList = list.New(m.movieItems(), list.NewDefaultDelegate(), 0, 0)
		m.movieList.Title = "myFlix Movies"
		m.movieList.SetSize(m.width-4, m.height-8)
		return m, nil

	case profileFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = MovieListView
			return m, nil
		}
		m.profile = msg.user
		m.view = ProfileView
		return m, nil

	case favoritesUpdateMsg:
		update := favorites.Update(msg)
		if update.Kind != favorites.Refreshed {
			notice := update.Notice
			m.notice = &notice
		}
		if len(m.movieList.Items()) > 0 {
			m.movieList.SetItems(m.movieItems())
		}
		return m, m.waitForUpdate()

	case toggleFailedMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case MovieListView:
		return m.renderMovieList()
	case DetailView:
		return m.renderDetail()
	case ProfileView:
		return m.renderProfile()
	default:
		return ""
	}
}

func (m *Model) handleMovieListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if movie, ok := m.selectedMovie(); ok {
			m.selected = movie
			m.detail = movieDetail
			m.view = DetailView
		}
		return m, nil
	case "g":
		if movie, ok := m.selectedMovie(); ok {
			m.selected = movie
			m.detail = genreDetail
			m.view = DetailView
		}
		return m, nil
	case "d":
		if movie, ok := m.selectedMovie(); ok {
			m.selected = movie
			m.detail = directorDetail
			m.view = DetailView
		}
		return m, nil
	case "f":
		if movie, ok := m.selectedMovie(); ok {
			return m, m.toggleFavorite(*movie)
		}
		return m, nil
	case "p":
		return m, m.fetchProfile()
	}

	var cmd tea.Cmd
	m.movieList, cmd = m.movieList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = MovieListView
		return m, nil
	case "f":
		if m.selected != nil {
			return m, m.toggleFavorite(*m.selected)
		}
	}
	return m, nil
}

func (m *Model) handleProfileKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = MovieListView
		return m, nil
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == MovieListView {
		m.movieList, cmd = m.movieList.Update(msg)
	}
	return m, cmd
}

func (m *Model) selectedMovie() (*models.Movie, bool) {
	selected := m.movieList.SelectedItem()
	if selected == nil {
		return nil, false
	}
	item, ok := selected.(movieItem)
	if !ok {
		return nil, false
	}
	movie := item.movie
	return &movie, true
}

func (m *Model) movieItems() []list.Item {
	items := make([]list.Item, len(m.movies))
	for i, movie := range m.movies {
		items[i] = movieItem{movie: movie, favorite: m.sync.IsFavorite(movie.ID)}
	}
	return items
}

func (m *Model) fetchMovies() tea.Cmd {
	return func() tea.Msg {
		movies, err := m.api.Movies(m.ctx)
		return moviesFetchedMsg{movies: movies, err: err}
	}
}

func (m *Model) refreshFavorites() tea.Cmd {
	return func() tea.Msg {
		if err := m.sync.Refresh(m.ctx); err != nil {
			return toggleFailedMsg{err: err}
		}
		return nil
	}
}

func (m *Model) fetchProfile() tea.Cmd {
	return func() tea.Msg {
		current, ok := session.User(m.store)
		if !ok {
			return profileFetchedMsg{err: fmt.Errorf("not logged in")}
		}
		user, err := m.api.User(m.ctx, current.ID)
		return profileFetchedMsg{user: user, err: err}
	}
}

// toggleFavorite routes through the shared synchronizer. API failures
// arrive as a notice via the update channel; only errors that bypass the
// channel (a missing session) surface here.
func (m *Model) toggleFavorite(movie models.Movie) tea.Cmd {
	return func() tea.Msg {
		if err := m.sync.Toggle(m.ctx, movie); errors.Is(err, shared.ErrNotAuthenticated) {
			return toggleFailedMsg{err: err}
		}
		return nil
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			return nil
		}
		return favoritesUpdateMsg(update)
	}
}

func (m *Model) renderMovieList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.fav, m.keys.profile, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n%s", m.movieList.View(), m.renderNotice(), helpView)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}

	var title, body string
	switch m.detail {
	case genreDetail:
		title = styles.title.Render(m.selected.Genre.Name)
		body = m.selected.Genre.Description
	case directorDetail:
		title = styles.title.Render(m.selected.Director.Name)
		body = m.selected.Director.Bio
		if m.selected.Director.Birth != "" {
			body = fmt.Sprintf("Born: %s\n\n%s", m.selected.Director.Birth, body)
		}
	default:
		marker := ""
		if m.sync.IsFavorite(m.selected.ID) {
			marker = styles.ok.Render(" ♥")
		}
		title = styles.title.Render(m.selected.Title) + marker
		body = fmt.Sprintf(
			"Director: %s\nGenre: %s\n\n%s",
			m.selected.Director.Name,
			m.selected.Genre.Name,
			m.selected.Description,
		)
	}

	helpKeys := []key.Binding{m.keys.fav, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n\n%s\n%s\n%s", title, body, m.renderNotice(), helpView)
}

func (m *Model) renderProfile() string {
	if m.profile == nil {
		return ""
	}

	title := styles.title.Render(m.profile.Username)
	info := fmt.Sprintf(
		"Email: %s\nBirthday: %s\nFavorites: %d",
		m.profile.Email,
		m.profile.Birthday,
		len(m.sync.Favorites()),
	)

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s\n%s", title, info, m.renderNotice(), helpView)
}

// renderNotice shows the latest favorites notice in a status line.
func (m *Model) renderNotice() string {
	if m.notice == nil {
		return ""
	}
	if m.notice.Err {
		return styles.warn.Render(m.notice.Message)
	}
	return styles.ok.Render(m.notice.Message)
}
