package ui

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/playlister/internal/auth"
	"github.com/desertthunder/playlister/internal/models"
	"github.com/desertthunder/playlister/internal/player"
	"github.com/desertthunder/playlister/internal/shared"
)

type fakeSessions struct {
	err     error
	logouts int
}

func (f *fakeSessions) EnsureSession(context.Context, *url.URL) (*auth.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &auth.Session{}, nil
}

func (f *fakeSessions) Logout(context.Context) error {
	f.logouts++
	f.err = shared.ErrNotAuthenticated
	return nil
}

type fakeCatalog struct {
	playlists []models.Playlist
	err       error
	calls     int
}

func (f *fakeCatalog) Load(context.Context, []string) ([]models.Playlist, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.playlists, nil
}

type fakeController struct {
	updates chan player.Snapshot
	once    sync.Once

	started bool
	closed  bool
	played  string
	toggles int
	nexts   int
	prevs   int
	err     error
}

func newFakeController() *fakeController {
	return &fakeController{updates: make(chan player.Snapshot, 1)}
}

func (f *fakeController) Start(context.Context) { f.started = true }

func (f *fakeController) Updates() <-chan player.Snapshot { return f.updates }

func (f *fakeController) Snapshot() player.Snapshot {
	return player.Snapshot{State: player.Uninitialized, Playback: models.PlaybackState{Paused: true}}
}

func (f *fakeController) Play(uri string) { f.played = uri }

func (f *fakeController) TogglePlayPause(context.Context) error {
	f.toggles++
	return f.err
}

func (f *fakeController) SkipNext(context.Context) error {
	f.nexts++
	return f.err
}

func (f *fakeController) SkipPrevious(context.Context) error {
	f.prevs++
	return f.err
}

func (f *fakeController) Close() {
	f.once.Do(func() {
		f.closed = true
		close(f.updates)
	})
}

var testPlaylists = []models.Playlist{
	{ID: "p1", Name: "Morning Focus", Description: "Calm instrumentals for deep work sessions", URI: "spotify:playlist:p1"},
	{ID: "p2", Name: "Evening Jazz", Description: "Smooth", URI: "spotify:playlist:p2"},
}

type harness struct {
	model       *Model
	sessions    *fakeSessions
	catalog     *fakeCatalog
	controllers []*fakeController
	authorized  int
	authErr     error
}

func newHarness(t *testing.T, sessionErr error) *harness {
	t.Helper()
	h := &harness{
		sessions: &fakeSessions{err: sessionErr},
		catalog:  &fakeCatalog{playlists: testPlaylists},
	}
	h.model = NewModel(context.Background(), ModelOpts{
		Sessions:    h.sessions,
		Catalog:     h.catalog,
		PlaylistIDs: []string{"p1", "p2"},
		Authorize: func(context.Context) error {
			h.authorized++
			if h.authErr == nil {
				h.sessions.err = nil
			}
			return h.authErr
		},
		NewPlayer: func() Controller {
			c := newFakeController()
			h.controllers = append(h.controllers, c)
			return c
		},
		Logger: log.New(io.Discard),
	})
	return h
}

// drive runs cmd and feeds its messages back into the model until no command remains.
func (h *harness) drive(cmd tea.Cmd) {
	for i := 0; cmd != nil && i < 10; i++ {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = h.model.Update(msg)
	}
}

func (h *harness) press(msg tea.KeyMsg) tea.Cmd {
	_, cmd := h.model.Update(msg)
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (h *harness) boot() {
	h.drive(h.model.Init())
}

func (h *harness) selectAndPlay(t *testing.T) *fakeController {
	t.Helper()
	h.press(tea.KeyMsg{Type: tea.KeyEnter})
	h.model.Update(runes("p"))
	if len(h.controllers) == 0 {
		t.Fatal("expected a player to be created")
	}
	return h.controllers[len(h.controllers)-1]
}

func TestModel(t *testing.T) {
	t.Run("Unauthenticated Shows Login", func(t *testing.T) {
		h := newHarness(t, shared.ErrNotAuthenticated)
		h.boot()

		if _, ok := h.model.screen.(loginScreen); !ok {
			t.Fatalf("expected login screen, got %T", h.model.screen)
		}
		if !strings.Contains(h.model.View(), "Connect to Spotify") {
			t.Error("expected connect button in view")
		}
		if h.catalog.calls != 0 {
			t.Error("expected no catalog load without a session")
		}
	})

	t.Run("Expired Session Shows Login", func(t *testing.T) {
		h := newHarness(t, errors.Join(shared.ErrNotAuthenticated, shared.ErrTokenExpired))
		h.boot()
		if _, ok := h.model.screen.(loginScreen); !ok {
			t.Fatalf("expected login screen, got %T", h.model.screen)
		}
	})

	t.Run("Authenticated Loads Catalog", func(t *testing.T) {
		h := newHarness(t, nil)
		h.boot()

		if _, ok := h.model.screen.(catalogScreen); !ok {
			t.Fatalf("expected catalog screen, got %T", h.model.screen)
		}
		view := h.model.View()
		for _, want := range []string{"PICK YOUR PLAYLIST", "Morning Focus", "Evening Jazz", "Playlist • Calm instrumentals for deep w"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected view to contain %q", want)
			}
		}
		if strings.Contains(view, "START PLAYING") {
			t.Error("expected no play button before a selection")
		}
	})

	t.Run("Login Then Catalog", func(t *testing.T) {
		h := newHarness(t, shared.ErrNotAuthenticated)
		h.boot()

		cmd := h.press(runes("l"))
		if _, ok := h.model.screen.(loadingScreen); !ok {
			t.Fatalf("expected loading screen while authorizing, got %T", h.model.screen)
		}
		h.drive(cmd)

		if h.authorized != 1 {
			t.Errorf("expected one authorization, got %d", h.authorized)
		}
		if _, ok := h.model.screen.(catalogScreen); !ok {
			t.Fatalf("expected catalog screen, got %T", h.model.screen)
		}
	})

	t.Run("Login Failure Shows Error", func(t *testing.T) {
		h := newHarness(t, shared.ErrNotAuthenticated)
		h.authErr = shared.NewAppError(shared.KindAuth, shared.MsgConnectFailed, errors.New("boom"))
		h.boot()
		h.drive(h.press(runes("l")))

		s, ok := h.model.screen.(errorScreen)
		if !ok {
			t.Fatalf("expected error screen, got %T", h.model.screen)
		}
		if s.message != shared.MsgConnectFailed {
			t.Errorf("expected %q, got %q", shared.MsgConnectFailed, s.message)
		}
	})

	t.Run("Catalog Failure And Retry", func(t *testing.T) {
		h := newHarness(t, nil)
		h.catalog.err = shared.NewAppError(shared.KindCatalogLoad, shared.MsgCatalogFailed, errors.New("502"))
		h.boot()

		if _, ok := h.model.screen.(errorScreen); !ok {
			t.Fatalf("expected error screen, got %T", h.model.screen)
		}
		if !strings.Contains(h.model.View(), shared.MsgCatalogFailed) {
			t.Error("expected catalog failure message in view")
		}

		h.catalog.err = nil
		h.drive(h.press(runes("r")))
		if _, ok := h.model.screen.(catalogScreen); !ok {
			t.Fatalf("expected catalog screen after retry, got %T", h.model.screen)
		}
		if h.catalog.calls != 2 {
			t.Errorf("expected 2 catalog loads, got %d", h.catalog.calls)
		}
	})

	t.Run("Empty Catalog", func(t *testing.T) {
		h := newHarness(t, nil)
		h.catalog.playlists = []models.Playlist{}
		h.boot()
		if !strings.Contains(h.model.View(), "No playlists found") {
			t.Error("expected empty catalog message")
		}
		h.model.Update(runes("p"))
		if len(h.controllers) != 0 {
			t.Error("expected no player without a selection")
		}
	})

	t.Run("Selecting Replaces Previous Selection", func(t *testing.T) {
		h := newHarness(t, nil)
		h.boot()

		h.press(tea.KeyMsg{Type: tea.KeyEnter})
		h.press(tea.KeyMsg{Type: tea.KeyDown})
		h.press(tea.KeyMsg{Type: tea.KeyEnter})

		if h.model.selection.IsSelected("p1") {
			t.Error("expected p1 to be deselected")
		}
		if !h.model.selection.IsSelected("p2") {
			t.Error("expected p2 to be selected")
		}
		view := h.model.View()
		if !strings.Contains(view, "● Evening Jazz") || strings.Contains(view, "● Morning Focus") {
			t.Error("expected only Evening Jazz to be marked")
		}
		if !strings.Contains(view, "START PLAYING") {
			t.Error("expected play button once selected")
		}
	})

	t.Run("Play Opens Player", func(t *testing.T) {
		h := newHarness(t, nil)
		h.boot()
		ctrl := h.selectAndPlay(t)

		if !ctrl.started {
			t.Error("expected controller to be started")
		}
		if ctrl.played != "spotify:playlist:p1" {
			t.Errorf("expected play request for p1, got %q", ctrl.played)
		}
		if _, ok := h.model.screen.(playerScreen); !ok {
			t.Fatalf("expected player screen, got %T", h.model.screen)
		}
		if !strings.Contains(h.model.View(), "Initializing player...") {
			t.Error("expected initializing message before the device is ready")
		}
	})

	t.Run("Snapshots Render Track", func(t *testing.T) {
		h := newHarness(t, nil)
		h.boot()
		ctrl := h.selectAndPlay(t)

		snap := player.Snapshot{
			State:    player.Ready,
			DeviceID: "dev-1",
			Playback: models.PlaybackState{
				Track: &models.Track{Name: "So What", Artists: []string{"Miles Davis", "John Coltrane"}},
			},
		}
		_, cmd := h.model.Update(snapshotMsg{source: ctrl, snap: snap})
		if cmd == nil {
			t.Error("expected the snapshot wait to be re-armed")
		}

		view := h.model.View()
		for _, want := range []string{"So What", "Miles Davis, John Coltrane", "⏸"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected view to contain %q", want)
			}
		}
	})

	t.Run("Ready Without Track", func(t *testing.T) {
		h := newHarness(t, nil)
		h.boot()
		ctrl := h.selectAndPlay(t)
		h.model.Update(snapshotMsg{source: ctrl, snap: player.Snapshot{State: player.Ready, Playback: models.PlaybackState{Paused: true}}})

		view := h.model.View()
		if !strings.Contains(view, "No track playing") || !strings.Contains(view, "▶") {
			t.Error("expected idle player view")
		}
	})

	t.Run("Stale Snapshots Are Ignored", func(t *testing.T) {
		h := newHarness(t, nil)
		h.boot()
		h.selectAndPlay(t)

		stale := newFakeController()
		_, cmd := h.model.Update(snapshotMsg{source: stale, snap: player.Snapshot{State: player.Errored}})
		if cmd != nil {
			t.Error("expected no re-arm for a stale controller")
		}
		if h.model.snap.State == player.Errored {
			t.Error("expected stale snapshot to be dropped")
		}
	})

	t.Run("Errored Player Shows Premium Note", func(t *testing.T) {
		h := newHarness(t, nil)
		h.boot()
		ctrl := h.selectAndPlay(t)
		snap := player.Snapshot{
			State: player.Errored,
			Err:   shared.NewAppError(shared.KindScope, shared.MsgScopeRemediation, nil),
		}
		h.model.Update(snapshotMsg{source: ctrl, snap: snap})

		view := h.model.View()
		for _, want := range []string{"Player Error", "log out and log in again", "Premium account"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected view to contain %q", want)
			}
		}
	})

	t.Run("Transport Keys", func(t *testing.T) {
		h := newHarness(t, nil)
		h.boot()
		ctrl := h.selectAndPlay(t)

		h.drive(h.press(tea.KeyMsg{Type: tea.KeySpace}))
		h.drive(h.press(runes("n")))
		h.drive(h.press(runes("b")))

		if ctrl.toggles != 1 || ctrl.nexts != 1 || ctrl.prevs != 1 {
			t.Errorf("expected one call each, got toggle=%d next=%d prev=%d", ctrl.toggles, ctrl.nexts, ctrl.prevs)
		}

		ctrl.err = shared.ErrDeviceNotReady
		h.drive(h.press(runes("n")))
		if !strings.Contains(h.model.View(), shared.ErrDeviceNotReady.Error()) {
			t.Error("expected transport error in status line")
		}
	})

	t.Run("Back Closes Player And Keeps Selection", func(t *testing.T) {
		h := newHarness(t, nil)
		h.boot()
		ctrl := h.selectAndPlay(t)

		h.press(tea.KeyMsg{Type: tea.KeyEsc})

		if !ctrl.closed {
			t.Error("expected controller to be closed")
		}
		if _, ok := h.model.screen.(catalogScreen); !ok {
			t.Fatalf("expected catalog screen, got %T", h.model.screen)
		}
		if !h.model.selection.IsSelected("p1") {
			t.Error("expected selection to survive leaving the player")
		}

		h.model.Update(runes("p"))
		if len(h.controllers) != 2 {
			t.Errorf("expected a fresh controller per play, got %d", len(h.controllers))
		}
	})

	t.Run("Logout Clears Selection", func(t *testing.T) {
		h := newHarness(t, nil)
		h.boot()
		ctrl := h.selectAndPlay(t)

		h.drive(h.press(runes("o")))

		if h.sessions.logouts != 1 {
			t.Errorf("expected one logout, got %d", h.sessions.logouts)
		}
		if !ctrl.closed {
			t.Error("expected player to be torn down on logout")
		}
		if _, ok := h.model.selection.Selected(); ok {
			t.Error("expected selection to be cleared")
		}
		if _, ok := h.model.screen.(loginScreen); !ok {
			t.Fatalf("expected login screen after logout, got %T", h.model.screen)
		}
	})

	t.Run("Quit Closes Player", func(t *testing.T) {
		h := newHarness(t, nil)
		h.boot()
		ctrl := h.selectAndPlay(t)

		cmd := h.press(runes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
		if !ctrl.closed {
			t.Error("expected player to be closed on quit")
		}
	})

	t.Run("Closed Updates Stop Waiting", func(t *testing.T) {
		ctrl := newFakeController()
		ctrl.Close()
		if _, ok := waitForSnapshot(ctrl)().(playerStoppedMsg); !ok {
			t.Error("expected playerStoppedMsg on a closed channel")
		}
	})
}

func TestPaletteWiring(t *testing.T) {
	t.Run("Selected Row Uses Accent", func(t *testing.T) {
		d := newDelegate()
		if d.Styles.SelectedTitle.GetForeground() != styles.selected.GetForeground() {
			t.Errorf("expected selected title foreground %v, got %v",
				styles.selected.GetForeground(), d.Styles.SelectedTitle.GetForeground())
		}
	})

	t.Run("Help Uses Help Style", func(t *testing.T) {
		h := newHelp()
		if h.Styles.ShortDesc.GetForeground() != styles.help.GetForeground() {
			t.Errorf("expected help foreground %v, got %v",
				styles.help.GetForeground(), h.Styles.ShortDesc.GetForeground())
		}
	})
}
