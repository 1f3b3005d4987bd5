package catalog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playlister/internal/models"
	"github.com/desertthunder/playlister/internal/shared"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultPlaylistIDs is the curated catalog, in display order.
var DefaultPlaylistIDs = []string{
	"36yuZ4TB4cGbxnQWPqkaS0",
	"075GyZyTBt4JXJV1RCoTHY",
	"2LGLsZkCnS2nmvGzQJgM1G",
}

// Fetcher resolves one playlist.
type Fetcher interface {
	FetchPlaylist(ctx context.Context, id string) (models.Playlist, error)
}

// Loader fans out one fetch per identifier.
type Loader struct {
	fetcher Fetcher
	logger  *log.Logger
}

// NewLoader creates a [Loader].
func NewLoader(fetcher Fetcher, logger *log.Logger) *Loader {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Loader{fetcher: fetcher, logger: shared.WithLogger(logger, "component", "catalog")}
}

// Load resolves ids concurrently. The result has the same order as ids.
func (l *Loader) Load(ctx context.Context, ids []string) ([]models.Playlist, error) {
	playlists := make([]models.Playlist, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			p, err := l.fetcher.FetchPlaylist(gctx, id)
			if err != nil {
				return fmt.Errorf("playlist %s: %w", id, err)
			}
			playlists[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		l.logger.Error("failed to load catalog", "error", err)
		return nil, shared.NewAppError(shared.KindCatalogLoad, shared.MsgCatalogFailed, err)
	}

	l.logger.Info("catalog loaded", "count", len(playlists))
	return playlists, nil
}

// SpotifyFetcher fetches playlists through the Web API.
type SpotifyFetcher struct {
	client *spotify.Client
}

// NewSpotifyFetcher builds a fetcher on an authorized HTTP client.
func NewSpotifyFetcher(httpClient *http.Client, opts ...spotify.ClientOption) *SpotifyFetcher {
	return &SpotifyFetcher{client: spotify.New(httpClient, opts...)}
}

// FetchPlaylist implements [Fetcher].
func (f *SpotifyFetcher) FetchPlaylist(ctx context.Context, id string) (models.Playlist, error) {
	fp, err := f.client.GetPlaylist(ctx, spotify.ID(id))
	if err != nil {
		return models.Playlist{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return PlaylistFromSpotify(fp), nil
}

// PlaylistFromSpotify converts the API representation.
func PlaylistFromSpotify(fp *spotify.FullPlaylist) models.Playlist {
	images := make([]models.Image, 0, len(fp.Images))
	for _, img := range fp.Images {
		images = append(images, models.Image{URL: img.URL, Width: int(img.Width), Height: int(img.Height)})
	}

	return models.Playlist{
		ID:          string(fp.ID),
		Name:        fp.Name,
		Description: fp.Description,
		Images:      images,
		URI:         string(fp.URI),
		TrackCount:  int(fp.Tracks.Total),
	}
}
