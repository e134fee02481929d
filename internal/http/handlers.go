package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/domain"
	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/repository"
	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/tmdb"
)

const maxRequestBody = 1 << 20 // 1 MiB

// defaultQuery matches the original behavior of showing results for "return"
// before the user has typed anything.
const defaultQuery = "return"

type errorResponse struct {
	ErrorMessage string `json:"errorMessage"`
}

type searchEnvelope struct {
	Movies     []domain.Movie `json:"movies"`
	TotalPages int            `json:"total_pages"`
}

type genresEnvelope struct {
	Genres []domain.Genre `json:"genres"`
}

type guestSessionEnvelope struct {
	GuestSessionID string `json:"guest_session_id"`
	ExpiresAt      string `json:"expires_at"`
}

// rateRequest is the tagged boundary type for rating submissions. A value of
// 0 removes the rating.
type rateRequest struct {
	MovieID     int64   `json:"movieId" validate:"required,gt=0"`
	Value       int     `json:"value" validate:"gte=0,lte=10"`
	Title       string  `json:"title" validate:"required"`
	Overview    string  `json:"overview"`
	PosterPath  *string `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average" validate:"gte=0,lte=10"`
	GenreIDs    []int32 `json:"genre_ids"`
}

type rateEnvelope struct {
	Message     string              `json:"message"`
	RatedMovies []domain.RatedMovie `json:"ratedMovies"`
}

func (s *Server) handleSearchMovies(w http.ResponseWriter, r *http.Request) {
	query, page, err := buildSearchParams(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.tmdb.SearchMovies(r.Context(), query, page)
	if err != nil {
		s.respondUpstreamError(w, err, "search movies")
		return
	}

	s.respondJSON(w, http.StatusOK, searchEnvelope{
		Movies:     result.Movies,
		TotalPages: result.TotalPages,
	})
}

func buildSearchParams(values url.Values) (string, int, error) {
	query := strings.TrimSpace(values.Get("query"))
	if query == "" {
		query = defaultQuery
	}

	page := 1
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return "", 0, fmt.Errorf("invalid page value")
		}
		page = parsed
	}
	return query, page, nil
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.tmdb.Genres(r.Context())
	if err != nil {
		s.respondUpstreamError(w, err, "fetch genres")
		return
	}
	s.respondJSON(w, http.StatusOK, genresEnvelope{Genres: genres})
}

func (s *Server) handleGuestSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.tmdb.CreateGuestSession(r.Context())
	if err != nil {
		s.logger.Error("create guest session failed", zap.Error(err))
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to create guest session",
		})
		return
	}
	s.respondJSON(w, http.StatusOK, guestSessionEnvelope{
		GuestSessionID: session.ID,
		ExpiresAt:      session.ExpiresAt.Format(time.RFC3339),
	})
}

func (s *Server) handleSaveRating(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			s.respondError(w, http.StatusInternalServerError, "Failed to validate request")
			return
		}
		s.respondError(w, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}

	sessionID := strings.TrimSpace(r.Header.Get("X-Guest-Session"))

	var (
		list    []domain.RatedMovie
		message string
		err     error
	)
	if req.Value == 0 {
		list, err = s.ratings.Delete(r.Context(), sessionID, req.MovieID)
		message = "Rating removed"
	} else {
		entry := domain.RatedMovie{
			Movie: domain.Movie{
				ID:          req.MovieID,
				Title:       req.Title,
				Overview:    req.Overview,
				PosterPath:  req.PosterPath,
				ReleaseDate: req.ReleaseDate,
				VoteAverage: req.VoteAverage,
				GenreIDs:    req.GenreIDs,
			},
			Rating: req.Value,
		}
		list, err = s.ratings.Upsert(r.Context(), sessionID, entry)
		message = "Rating saved"
	}
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, rateEnvelope{Message: message, RatedMovies: list})
}

func (s *Server) handleListRated(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.Header.Get("X-Guest-Session"))
	list, err := s.ratings.List(r.Context(), sessionID)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, list)
}

// respondUpstreamError mirrors upstream HTTP errors with their status; a
// transport failure gets a generic message instead, but both surface as the
// same errorMessage shape.
func (s *Server) respondUpstreamError(w http.ResponseWriter, err error, op string) {
	var statusErr *tmdb.StatusError
	if errors.As(err, &statusErr) {
		s.respondError(w, statusErr.Code, fmt.Sprintf("TMDB error: %d", statusErr.Code))
		return
	}
	s.logger.Error("tmdb request failed", zap.String("op", op), zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, "could not retrieve data from TMDB")
}

func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNoSession):
		s.respondError(w, http.StatusUnauthorized, "guest session required")
	default:
		var statusErr *tmdb.StatusError
		if errors.As(err, &statusErr) {
			s.respondError(w, statusErr.Code, fmt.Sprintf("TMDB error: %d", statusErr.Code))
			return
		}
		s.logger.Error("rating store error", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Failed to process rating")
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Error("failed to encode response", zap.Error(err))
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{ErrorMessage: message})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusUnprocessableEntity, "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "Unable to parse request body")
	}
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("invalid value for field %s (%s)", fe.Field(), fe.Tag())
	}
	return "invalid request payload"
}
