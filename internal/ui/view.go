package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/playlister/internal/player"
	"github.com/desertthunder/playlister/internal/shared"
)

// View renders the current screen.
func (m *Model) View() string {
	switch s := m.screen.(type) {
	case loadingScreen:
		return m.renderLoading(s)
	case errorScreen:
		return m.renderError(s)
	case loginScreen:
		return m.renderLogin()
	case catalogScreen:
		return m.renderCatalog()
	case playerScreen:
		return m.renderPlayer(s)
	default:
		return ""
	}
}

func (m *Model) renderLoading(s loadingScreen) string {
	label := s.label
	if label == "" {
		label = "Loading..."
	}
	return styles.muted.Render(label) + "\n\n" + m.help.ShortHelpView([]key.Binding{m.keys.quit})
}

func (m *Model) renderError(s errorScreen) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.err.Render("Error"),
		s.message,
	)
	return fmt.Sprintf("%s\n\n%s", body, m.help.ShortHelpView([]key.Binding{m.keys.retry, m.keys.quit}))
}

func (m *Model) renderLogin() string {
	title := styles.title.Render("Spotify Playlists Player")
	button := styles.panel.Render(styles.ok.Render("Connect to Spotify"))
	return fmt.Sprintf("%s\n%s\n\n%s", title, button, m.help.ShortHelpView([]key.Binding{m.keys.login, m.keys.quit}))
}

func (m *Model) renderCatalog() string {
	var b strings.Builder
	if len(m.playlists) == 0 {
		b.WriteString(styles.title.Render("PICK YOUR PLAYLIST"))
		b.WriteString("\n")
		b.WriteString(styles.muted.Render("No playlists found"))
	} else {
		b.WriteString(m.list.View())
	}
	b.WriteString("\n")
	b.WriteString(styles.muted.Render("Choose from our curated playlists"))

	bindings := []key.Binding{m.keys.up, m.keys.down, m.keys.enter}
	if p, ok := m.selection.Play(); ok {
		b.WriteString("\n\n")
		b.WriteString(styles.panel.Render(styles.ok.Render("START PLAYING") + "  " + styles.muted.Render(p.Name)))
		bindings = append(bindings, m.keys.play)
	}
	bindings = append(bindings, m.keys.logout, m.keys.quit)

	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(bindings))
	return b.String()
}

func (m *Model) renderPlayer(s playerScreen) string {
	var b strings.Builder
	b.WriteString(styles.title.Render(s.playlist.Name))
	b.WriteString("\n")
	b.WriteString(styles.panel.Render(m.renderDevice()))
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styles.err.Render(m.status))
	}

	bindings := []key.Binding{m.keys.back, m.keys.logout, m.keys.quit}
	if m.snap.State == player.Ready {
		bindings = append([]key.Binding{m.keys.toggle, m.keys.previous, m.keys.next}, bindings...)
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(bindings))
	return b.String()
}

func (m *Model) renderDevice() string {
	snap := m.snap
	switch snap.State {
	case player.Errored:
		return lipgloss.JoinVertical(lipgloss.Left,
			styles.err.Render("Player Error"),
			snap.ErrorMessage(),
			"",
			styles.muted.Render(shared.MsgPremiumNote),
		)
	case player.Ready:
	default:
		if snap.State == player.Offline {
			return styles.muted.Render("Device went offline. Press esc and start again.")
		}
		return styles.muted.Render("Initializing player...")
	}

	name := "No track playing"
	var artists, art string
	if t := snap.Playback.Track; t != nil {
		name = t.Name
		artists = t.ArtistLine()
		art = t.Art()
	}

	control := "▶"
	if snap.Playing() {
		control = "⏸"
	}

	lines := []string{styles.ok.Render(name)}
	if artists != "" {
		lines = append(lines, artists)
	}
	if art != "" {
		lines = append(lines, styles.muted.Render(art))
	}
	lines = append(lines, "", fmt.Sprintf("⏮   %s   ⏭", control))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
