// tmdb-mock is a standalone stand-in for the TMDB API, enough to run the
// server and browser core without real credentials: movie search, the genre
// list, guest sessions, and per-session rating endpoints.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const pageSize = 20

type movieEntry struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  *string `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	GenreIDs    []int32 `json:"genre_ids"`
}

type guestSession struct {
	expiresAt time.Time
	ratings   map[int64]float64
	order     []int64
}

type mockServer struct {
	mu       sync.Mutex
	movies   []movieEntry
	sessions map[string]*guestSession
	ttl      time.Duration
}

func main() {
	var (
		port = flag.String("port", "9098", "port to listen on")
		data = flag.String("data", "", "path to a JSON array of movies (built-in sample when empty)")
		ttl  = flag.Duration("session-ttl", 24*time.Hour, "guest session lifetime")
	)
	flag.Parse()

	movies := builtinMovies()
	if *data != "" {
		file, err := os.ReadFile(*data)
		if err != nil {
			log.Fatalf("read mock data: %v", err)
		}
		if err := json.Unmarshal(file, &movies); err != nil {
			log.Fatalf("parse mock data: %v", err)
		}
	}

	srv := &mockServer{
		movies:   movies,
		sessions: make(map[string]*guestSession),
		ttl:      *ttl,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/movie", srv.handleSearch)
	mux.HandleFunc("GET /genre/movie/list", srv.handleGenres)
	mux.HandleFunc("GET /authentication/guest_session/new", srv.handleNewSession)
	mux.HandleFunc("POST /movie/{id}/rating", srv.handleRate)
	mux.HandleFunc("DELETE /movie/{id}/rating", srv.handleDeleteRating)
	mux.HandleFunc("GET /guest_session/{id}/rated/movies", srv.handleRatedMovies)

	addr := ":" + *port
	log.Printf("mock tmdb listening on %s (%d movies)", addr, len(movies))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func (s *mockServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("query"))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	var matches []movieEntry
	for _, m := range s.movies {
		if query == "" || strings.Contains(strings.ToLower(m.Title), query) {
			matches = append(matches, m)
		}
	}

	totalPages := (len(matches) + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	results := []movieEntry{}
	if start < len(matches) {
		end := start + pageSize
		if end > len(matches) {
			end = len(matches)
		}
		results = matches[start:end]
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"page":          page,
		"results":       results,
		"total_pages":   totalPages,
		"total_results": len(matches),
	})
}

func (s *mockServer) handleGenres(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"genres": []map[string]interface{}{
			{"id": 18, "name": "Drama"},
			{"id": 28, "name": "Action"},
			{"id": 35, "name": "Comedy"},
			{"id": 878, "name": "Science Fiction"},
		},
	})
}

func (s *mockServer) handleNewSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	expires := time.Now().UTC().Add(s.ttl)

	s.mu.Lock()
	s.sessions[id] = &guestSession{expiresAt: expires, ratings: make(map[int64]float64)}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"guest_session_id": id,
		"expires_at":       expires.Format("2006-01-02 15:04:05") + " UTC",
	})
}

func (s *mockServer) handleRate(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeStatus(w, http.StatusNotFound, "The resource you requested could not be found.")
		return
	}

	var body struct {
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Value < 0.5 || body.Value > 10 {
		writeStatus(w, http.StatusBadRequest, "value must be between 0.5 and 10.0")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.session(r.URL.Query().Get("guest_session_id"))
	if !ok {
		writeStatus(w, http.StatusUnauthorized, "Authentication failed.")
		return
	}
	if _, rated := sess.ratings[movieID]; !rated {
		sess.order = append(sess.order, movieID)
	}
	sess.ratings[movieID] = body.Value
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status_code":    1,
		"status_message": "Success.",
	})
}

func (s *mockServer) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeStatus(w, http.StatusNotFound, "The resource you requested could not be found.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.session(r.URL.Query().Get("guest_session_id"))
	if !ok {
		writeStatus(w, http.StatusUnauthorized, "Authentication failed.")
		return
	}
	delete(sess.ratings, movieID)
	for i, id := range sess.order {
		if id == movieID {
			sess.order = append(sess.order[:i], sess.order[i+1:]...)
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status_code":    13,
		"status_message": "The item/record was deleted successfully.",
	})
}

func (s *mockServer) handleRatedMovies(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		writeStatus(w, http.StatusUnauthorized, "Authentication failed.")
		return
	}

	results := []map[string]interface{}{}
	for _, id := range sess.order {
		value := sess.ratings[id]
		for _, m := range s.movies {
			if m.ID == id {
				results = append(results, map[string]interface{}{
					"id":           m.ID,
					"title":        m.Title,
					"overview":     m.Overview,
					"poster_path":  m.PosterPath,
					"release_date": m.ReleaseDate,
					"vote_average": m.VoteAverage,
					"genre_ids":    m.GenreIDs,
					"rating":       value,
				})
				break
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"page":          1,
		"results":       results,
		"total_pages":   1,
		"total_results": len(results),
	})
}

// session must be called with s.mu held.
func (s *mockServer) session(id string) (*guestSession, bool) {
	sess, ok := s.sessions[id]
	if !ok || time.Now().After(sess.expiresAt) {
		return nil, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeStatus(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"status_code":    status,
		"status_message": message,
	})
}

func builtinMovies() []movieEntry {
	poster := func(p string) *string { return &p }
	return []movieEntry{
		{ID: 9693, Title: "The Return of the Living Dead", Overview: "A warehouse mishap releases a gas that reanimates the dead.", PosterPath: poster("/oIyyCEOLwuZHhN5QaMCencfbGWP.jpg"), ReleaseDate: "1985-08-16", VoteAverage: 7.2, GenreIDs: []int32{35, 27}},
		{ID: 122, Title: "The Lord of the Rings: The Return of the King", Overview: "Aragorn is revealed as the heir to the ancient kings.", PosterPath: poster("/rCzpDGLbOoPwLjy3OAm5NUPOTrC.jpg"), ReleaseDate: "2003-12-17", VoteAverage: 8.5, GenreIDs: []int32{12, 14, 28}},
		{ID: 1892, Title: "Return of the Jedi", Overview: "Luke Skywalker leads a mission to rescue his friend Han Solo.", PosterPath: poster("/jQYlydvHm3kUix1f8prMucrplhm.jpg"), ReleaseDate: "1983-05-25", VoteAverage: 7.9, GenreIDs: []int32{12, 28, 878}},
		{ID: 603, Title: "The Matrix", Overview: "A hacker learns the truth about his reality.", PosterPath: poster("/f89U3ADr1oiB1s9GkdPOEpXUk5H.jpg"), ReleaseDate: "1999-03-30", VoteAverage: 8.2, GenreIDs: []int32{28, 878}},
		{ID: 27205, Title: "Inception", Overview: "A thief who steals corporate secrets through dream-sharing technology.", PosterPath: poster("/oYuLEt3zVCKq57qu2F8dT7NIa6f.jpg"), ReleaseDate: "2010-07-15", VoteAverage: 8.4, GenreIDs: []int32{28, 878, 12}},
		{ID: 550, Title: "Fight Club", Overview: "An insomniac office worker crosses paths with a soap maker.", PosterPath: nil, ReleaseDate: "1999-10-15", VoteAverage: 8.4, GenreIDs: []int32{18}},
	}
}
