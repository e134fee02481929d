package browse

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/domain"
	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/session"
)

// View selects which paginated list the user is looking at. Each view keeps
// its own page counter; switching views never resets the other one.
type View string

const (
	ViewSearch View = "search"
	ViewRated  View = "rated"
)

// RatedPageSize is how many rated movies one page shows.
const RatedPageSize = 6

// DefaultDebounce is the quiescence window for search input.
const DefaultDebounce = 500 * time.Millisecond

const offlineMessage = "no internet connection"

// Controller is the client-side search/rating state machine: debounced
// search, two-view pagination, optimistic rating writes and reconciliation
// against the server's rated list. All state is guarded by one mutex; the
// only asynchronous continuations are the debounce timer and rating pushes.
type Controller struct {
	gw       Gateway
	sessions *session.Manager
	logger   *zap.Logger
	debounce time.Duration
	baseCtx  context.Context

	mu         sync.Mutex
	timer      *time.Timer
	view       View
	query      string
	searchPage int
	ratedPage  int
	totalPages int
	loading    bool
	errMsg     string
	offline    bool
	movies     []domain.Movie
	rated      []domain.RatedMovie
	ratings    map[int64]int
	statuses   map[int64]domain.RatingStatus
	ratingErr  map[int64]string
	busy       map[int64]bool
}

// State is a consistent snapshot of the controller for rendering and tests.
type State struct {
	View            View
	Query           string
	SearchPage      int
	RatedPage       int
	TotalPages      int
	Loading         bool
	Error           string
	Movies          []domain.Movie
	Rated           []domain.RatedMovie
	RatedPageItems  []domain.RatedMovie
	RatedTotalPages int
}

// NewController constructs the browser core. debounce <= 0 uses
// DefaultDebounce. ctx bounds all network work the controller starts.
func NewController(ctx context.Context, gw Gateway, sessions *session.Manager, debounce time.Duration, logger *zap.Logger) *Controller {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Controller{
		gw:         gw,
		sessions:   sessions,
		logger:     logger,
		debounce:   debounce,
		baseCtx:    ctx,
		view:       ViewSearch,
		searchPage: 1,
		ratedPage:  1,
		ratings:    make(map[int64]int),
		statuses:   make(map[int64]domain.RatingStatus),
		ratingErr:  make(map[int64]string),
		busy:       make(map[int64]bool),
	}
}

// OnQueryChange buffers the query immediately and schedules a fetch once the
// input has been quiet for the debounce window. A new call within the window
// cancels the pending timer and restarts it; only the last query fetches.
func (c *Controller) OnQueryChange(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.query = text
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if text == "" {
		c.loading = false
		return
	}
	c.loading = true
	c.timer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		c.searchPage = 1
		c.mu.Unlock()
		c.fetchSearch(1, text)
	})
}

// OnPageChange moves the given view to a page. The search view refetches
// immediately; the rated view only re-slices the already-fetched list.
func (c *Controller) OnPageChange(page int, view View) {
	if page < 1 {
		page = 1
	}
	switch view {
	case ViewSearch:
		c.mu.Lock()
		c.searchPage = page
		c.loading = true
		query := c.query
		c.mu.Unlock()
		c.fetchSearch(page, query)
	case ViewRated:
		c.mu.Lock()
		if max := c.ratedPageCountLocked(); page > max {
			page = max
		}
		c.ratedPage = page
		c.mu.Unlock()
	}
}

// SetView switches the active view. Activating the rated view refreshes the
// authoritative rated list from the server.
func (c *Controller) SetView(view View) {
	c.mu.Lock()
	c.view = view
	c.mu.Unlock()
	if view == ViewRated {
		c.refreshRated()
	}
}

// Rate applies the rating optimistically and dispatches the write in the
// background. value 0 removes the rating. There is no per-movie write queue;
// rapid re-rating interleaves at the network layer.
func (c *Controller) Rate(movie domain.Movie, value int) {
	if value < 0 || value > 10 {
		c.logger.Warn("rating out of range ignored",
			zap.Int64("movie_id", movie.ID), zap.Int("value", value))
		return
	}

	c.mu.Lock()
	c.ratings[movie.ID] = value
	c.statuses[movie.ID] = domain.RatingPending
	delete(c.ratingErr, movie.ID)
	c.busy[movie.ID] = true
	c.upsertRatedLocked(movie, value)
	c.mu.Unlock()

	go c.pushRating(movie, value)
}

// SetOnline feeds connectivity events. Going offline raises a banner that
// overrides all content; coming back clears every error.
func (c *Controller) SetOnline(online bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offline = !online
	if online {
		c.errMsg = ""
	}
}

// Close stops the pending debounce timer, if any.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.loading = false
}

// Snapshot returns a consistent view of the controller state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := c.ratedViewLocked()
	totalRated := (len(filtered) + RatedPageSize - 1) / RatedPageSize

	start := (c.ratedPage - 1) * RatedPageSize
	var pageItems []domain.RatedMovie
	if start < len(filtered) {
		end := start + RatedPageSize
		if end > len(filtered) {
			end = len(filtered)
		}
		pageItems = filtered[start:end]
	}

	errMsg := c.errMsg
	if c.offline {
		errMsg = offlineMessage
	}

	movies := make([]domain.Movie, len(c.movies))
	copy(movies, c.movies)

	return State{
		View:            c.view,
		Query:           c.query,
		SearchPage:      c.searchPage,
		RatedPage:       c.ratedPage,
		TotalPages:      c.totalPages,
		Loading:         c.loading,
		Error:           errMsg,
		Movies:          movies,
		Rated:           filtered,
		RatedPageItems:  pageItems,
		RatedTotalPages: totalRated,
	}
}

// Rating returns the locally known rating for a movie, 0 when unrated.
func (c *Controller) Rating(movieID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ratings[movieID]
}

// RatingStatus reports the write lifecycle tag for a movie's rating.
func (c *Controller) RatingStatus(movieID int64) domain.RatingStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statuses[movieID]
}

// RatingError returns the per-movie rating error, "" when none.
func (c *Controller) RatingError(movieID int64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ratingErr[movieID]
}

// Busy reports whether a rating write for the movie is still in flight; UIs
// use it to disable further rating input on that movie.
func (c *Controller) Busy(movieID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy[movieID]
}

func (c *Controller) fetchSearch(page int, query string) {
	result, err := c.gw.Search(c.baseCtx, query, page)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		// Deliberate policy: clear the stale result set and show the banner.
		// Retry happens through the next query or page change.
		c.movies = nil
		c.errMsg = err.Error()
		return
	}
	c.errMsg = ""
	c.movies = result.Movies
	c.totalPages = result.TotalPages
	// The page stays within [1, totalPages] after every successful fetch.
	if c.totalPages > 0 && c.searchPage > c.totalPages {
		c.searchPage = c.totalPages
	}
}

func (c *Controller) pushRating(movie domain.Movie, value int) {
	var token string
	if value > 0 {
		ensured, err := c.sessions.Ensure(c.baseCtx)
		if err != nil {
			c.mu.Lock()
			c.ratingErr[movie.ID] = "no guest session available"
			c.statuses[movie.ID] = domain.RatingFailed
			c.busy[movie.ID] = false
			c.mu.Unlock()
			return
		}
		token = ensured
	} else {
		// Removal is best-effort with whatever session exists; it never
		// creates one.
		token = c.sessions.Cached()
	}

	_, err := c.gw.SaveRating(c.baseCtx, token, movie, value)
	if err != nil {
		// No rollback: the optimistic state stands, only the tag records it.
		c.mu.Lock()
		c.ratingErr[movie.ID] = err.Error()
		c.statuses[movie.ID] = domain.RatingFailed
		c.busy[movie.ID] = false
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.statuses[movie.ID] = domain.RatingConfirmed
	c.busy[movie.ID] = false
	refresh := c.view == ViewRated
	c.mu.Unlock()

	if refresh {
		c.refreshRated()
	}
}

// refreshRated replaces local rated state with the server's view. The server
// wins over any optimistic entries.
func (c *Controller) refreshRated() {
	token := c.sessions.Cached()
	list, err := c.gw.RatedMovies(c.baseCtx, token)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.errMsg = err.Error()
		return
	}
	c.errMsg = ""
	c.rated = list
	seen := make(map[int64]bool, len(list))
	for _, entry := range list {
		seen[entry.ID] = true
		c.ratings[entry.ID] = entry.Rating
		c.statuses[entry.ID] = domain.RatingConfirmed
	}
	// Ratings the server no longer has are dropped; a write still in flight
	// keeps its optimistic entry until it resolves.
	for id := range c.ratings {
		if !seen[id] && !c.busy[id] {
			delete(c.ratings, id)
			delete(c.statuses, id)
			delete(c.ratingErr, id)
		}
	}
	if max := c.ratedPageCountLocked(); c.ratedPage > max {
		c.ratedPage = max
	}
}

func (c *Controller) upsertRatedLocked(movie domain.Movie, value int) {
	for i := range c.rated {
		if c.rated[i].ID == movie.ID {
			c.rated[i].Movie = movie
			c.rated[i].Rating = value
			return
		}
	}
	c.rated = append(c.rated, domain.RatedMovie{Movie: movie, Rating: value})
}

// ratedPageCountLocked reports how many pages the rated view spans, at
// least 1.
func (c *Controller) ratedPageCountLocked() int {
	n := (len(c.ratedViewLocked()) + RatedPageSize - 1) / RatedPageSize
	if n < 1 {
		n = 1
	}
	return n
}

// ratedViewLocked filters to entries whose rating is still above zero, so a
// removal disappears from the view before the delete round-trip resolves.
func (c *Controller) ratedViewLocked() []domain.RatedMovie {
	out := make([]domain.RatedMovie, 0, len(c.rated))
	for _, entry := range c.rated {
		if entry.Rating > 0 {
			out = append(out, entry)
		}
	}
	return out
}
