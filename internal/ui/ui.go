package ui

import (
	"context"
	"errors"
	"net/url"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/playlister/internal/auth"
	"github.com/desertthunder/playlister/internal/models"
	"github.com/desertthunder/playlister/internal/player"
	"github.com/desertthunder/playlister/internal/shared"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// Sessions checks for and destroys the Spotify session.
type Sessions interface {
	EnsureSession(ctx context.Context, current *url.URL) (*auth.Session, error)
	Logout(ctx context.Context) error
}

// Catalog resolves playlist ids to metadata.
type Catalog interface {
	Load(ctx context.Context, ids []string) ([]models.Playlist, error)
}

// Controller is the playback device as driven by the player screen.
type Controller interface {
	Start(ctx context.Context)
	Updates() <-chan player.Snapshot
	Snapshot() player.Snapshot
	Play(contextURI string)
	TogglePlayPause(ctx context.Context) error
	SkipNext(ctx context.Context) error
	SkipPrevious(ctx context.Context) error
	Close()
}

// ModelOpts wires the model to its collaborators.
type ModelOpts struct {
	Sessions    Sessions
	Catalog     Catalog
	PlaylistIDs []string
	// Authorize runs the interactive login and returns once a session exists.
	Authorize func(ctx context.Context) error
	// NewPlayer builds a fresh controller each time the player screen opens.
	NewPlayer func() Controller
	Logger    *log.Logger
}

// screen is one of loadingScreen, errorScreen, loginScreen, catalogScreen or playerScreen.
type screen interface {
	isScreen()
}

type loadingScreen struct{ label string }

type errorScreen struct{ message string }

type loginScreen struct{}

type catalogScreen struct{}

type playerScreen struct{ playlist models.Playlist }

func (loadingScreen) isScreen() {}
func (errorScreen) isScreen()   {}
func (loginScreen) isScreen()   {}
func (catalogScreen) isScreen() {}
func (playerScreen) isScreen()  {}

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	sessions    Sessions
	catalog     Catalog
	playlistIDs []string
	authorize   func(ctx context.Context) error
	newPlayer   func() Controller
	logger      *log.Logger

	screen    screen
	width     int
	height    int
	playlists []models.Playlist
	list      list.Model
	selection Selection

	player Controller
	snap   player.Snapshot
	status string

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	m := &Model{
		ctx:         ctx,
		sessions:    opts.Sessions,
		catalog:     opts.Catalog,
		playlistIDs: opts.PlaylistIDs,
		authorize:   opts.Authorize,
		newPlayer:   opts.NewPlayer,
		logger:      shared.WithLogger(opts.Logger, "component", "ui"),
		screen:      loadingScreen{},
		width:       defaultWidth,
		height:      defaultHeight,
		help:        newHelp(),
		keys:        newKeyMap(),
	}
	m.list = m.newList()
	return m
}

// Init checks for an existing session.
func (m *Model) Init() tea.Cmd {
	m.screen = loadingScreen{}
	return m.checkSession()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.listSize())
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			m.closePlayer()
			return m, tea.Quit
		}
		switch m.screen.(type) {
		case errorScreen:
			return m.handleErrorKeys(msg)
		case loginScreen:
			return m.handleLoginKeys(msg)
		case catalogScreen:
			return m.handleCatalogKeys(msg)
		case playerScreen:
			return m.handlePlayerKeys(msg)
		}
		return m, nil

	case sessionCheckedMsg:
		switch {
		case msg.err == nil:
			m.screen = loadingScreen{}
			return m, m.loadCatalog()
		case errors.Is(msg.err, shared.ErrNotAuthenticated):
			m.screen = loginScreen{}
		default:
			m.screen = errorScreen{message: shared.UserMessage(msg.err)}
		}
		return m, nil

	case authorizedMsg:
		if msg.err != nil {
			m.logger.Error("login failed", "error", msg.err)
			m.screen = errorScreen{message: shared.UserMessage(msg.err)}
			return m, nil
		}
		return m, m.Init()

	case catalogLoadedMsg:
		if msg.err != nil {
			m.logger.Error("catalog load failed", "error", msg.err)
			m.screen = errorScreen{message: shared.UserMessage(msg.err)}
			return m, nil
		}
		m.playlists = msg.playlists
		m.list = m.newList()
		m.screen = catalogScreen{}
		return m, nil

	case snapshotMsg:
		if msg.source != m.player {
			return m, nil
		}
		m.snap = msg.snap
		return m, waitForSnapshot(msg.source)

	case playerStoppedMsg:
		return m, nil

	case transportDoneMsg:
		if msg.err != nil {
			m.status = shared.UserMessage(msg.err)
		} else {
			m.status = ""
		}
		return m, nil

	case loggedOutMsg:
		if msg.err != nil {
			m.logger.Warn("logout failed", "error", msg.err)
		}
		return m, m.Init()
	}

	if _, ok := m.screen.(catalogScreen); ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleErrorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.retry) {
		return m, m.Init()
	}
	return m, nil
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.login) {
		m.screen = loadingScreen{label: "Waiting for Spotify authorization in your browser..."}
		return m, m.login()
	}
	return m, nil
}

func (m *Model) handleCatalogKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		item, ok := m.list.SelectedItem().(playlistItem)
		if !ok {
			return m, nil
		}
		if m.selection.Select(item.playlist) {
			return m, m.list.SetItems(playlistItems(m.playlists, &m.selection))
		}
		return m, nil
	case key.Matches(msg, m.keys.play):
		p, ok := m.selection.Play()
		if !ok {
			return m, nil
		}
		return m, m.openPlayer(p)
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handlePlayerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.closePlayer()
		m.screen = catalogScreen{}
		return m, nil
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	case key.Matches(msg, m.keys.toggle):
		return m, m.transport(Controller.TogglePlayPause)
	case key.Matches(msg, m.keys.next):
		return m, m.transport(Controller.SkipNext)
	case key.Matches(msg, m.keys.previous):
		return m, m.transport(Controller.SkipPrevious)
	}
	return m, nil
}

func (m *Model) openPlayer(p models.Playlist) tea.Cmd {
	m.closePlayer()
	ctrl := m.newPlayer()
	ctrl.Start(m.ctx)
	ctrl.Play(p.URI)

	m.player = ctrl
	m.snap = ctrl.Snapshot()
	m.status = ""
	m.screen = playerScreen{playlist: p}
	m.logger.Info("opening player", "playlist", p.ID)
	return waitForSnapshot(ctrl)
}

func (m *Model) closePlayer() {
	if m.player == nil {
		return
	}
	m.player.Close()
	m.player = nil
	m.snap = player.Snapshot{}
}

func (m *Model) newList() list.Model {
	w, h := m.listSize()
	l := list.New(playlistItems(m.playlists, &m.selection), newDelegate(), w, h)
	l.Title = "PICK YOUR PLAYLIST"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

func newDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	accent := styles.selected.GetForeground()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(accent).BorderLeftForeground(accent).Bold(true)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.BorderLeftForeground(accent)
	return d
}

func newHelp() help.Model {
	h := help.New()
	h.Styles.ShortKey = styles.help.Bold(true)
	h.Styles.ShortDesc = styles.help
	h.Styles.ShortSeparator = styles.help
	return h
}

func (m *Model) listSize() (int, int) {
	return m.width - 4, m.height - 10
}

func (m *Model) checkSession() tea.Cmd {
	return func() tea.Msg {
		_, err := m.sessions.EnsureSession(m.ctx, nil)
		return sessionCheckedMsg{err: err}
	}
}

func (m *Model) login() tea.Cmd {
	return func() tea.Msg {
		return authorizedMsg{err: m.authorize(m.ctx)}
	}
}

func (m *Model) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.catalog.Load(m.ctx, m.playlistIDs)
		return catalogLoadedMsg{playlists: playlists, err: err}
	}
}

// logout tears down the player and selection before the session is destroyed.
func (m *Model) logout() tea.Cmd {
	m.closePlayer()
	m.selection.Clear()
	m.playlists = nil
	m.screen = loadingScreen{}
	return func() tea.Msg {
		return loggedOutMsg{err: m.sessions.Logout(m.ctx)}
	}
}

func (m *Model) transport(op func(Controller, context.Context) error) tea.Cmd {
	ctrl := m.player
	if ctrl == nil {
		return nil
	}
	return func() tea.Msg {
		return transportDoneMsg{err: op(ctrl, m.ctx)}
	}
}

func waitForSnapshot(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ctrl.Updates()
		if !ok {
			return playerStoppedMsg{source: ctrl}
		}
		return snapshotMsg{source: ctrl, snap: snap}
	}
}
