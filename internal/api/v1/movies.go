// Package v1 provides the movie resource routes of the Marena API.
package v1

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marena/marena-api/internal/api/common"
	"github.com/marena/marena-api/internal/service"
	"github.com/marena/marena-api/internal/validators"
)

const internalErrorMessage = "internal server error"

// Routes handles the movie resource
type Routes struct {
	service service.MovieService
}

// NewRoutes creates movie routes backed by svc
func NewRoutes(svc service.MovieService) *Routes {
	return &Routes{service: svc}
}

// Router creates a router for the movie resource, to be mounted at /movies
func Router(svc service.MovieService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()
	r.Get("/", routes.listMovies)
	r.Post("/", routes.createMovie)
	r.Get("/{id}", routes.getMovie)
	r.Put("/{id}", routes.updateMovie)
	r.Delete("/{id}", routes.deleteMovie)

	return r
}

// listMovies handles GET /movies
//
// @Summary		List movies
// @Description	Get every movie in the catalogue
// @Tags			movies
// @Produce		json
// @Success		200	{array}		service.Movie
// @Failure		500	{object}	common.ErrorResponse
// @Router			/movies [get]
func (rr *Routes) listMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := rr.service.ListMovies(r.Context())
	if err != nil {
		writeInternalError(w, r, "list movies", err)
		return
	}
	if movies == nil {
		movies = []*service.Movie{}
	}

	common.WriteJSONResponse(w, movies, http.StatusOK)
}

// getMovie handles GET /movies/{id}
//
// @Summary		Get movie
// @Tags			movies
// @Produce		json
// @Param			id	path		int	true	"Movie id"
// @Success		200	{object}	service.Movie
// @Failure		400	{object}	common.ErrorResponse
// @Failure		404	{object}	common.ErrorResponse
// @Failure		500	{object}	common.ErrorResponse
// @Router			/movies/{id} [get]
func (rr *Routes) getMovie(w http.ResponseWriter, r *http.Request) {
	id, err := common.ParseIDParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	movie, err := rr.service.GetMovie(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrMovieNotFound) {
			common.WriteErrorResponse(w, fmt.Sprintf("movie %d not found", id), http.StatusNotFound)
			return
		}
		writeInternalError(w, r, "get movie", err)
		return
	}

	common.WriteJSONResponse(w, movie, http.StatusOK)
}

// createMovie handles POST /movies
//
// @Summary		Create movie
// @Description	Store a new movie. Any id in the body is ignored.
// @Tags			movies
// @Accept			json
// @Produce		json
// @Param			movie	body		service.Movie	true	"Movie"
// @Success		201		{object}	service.Movie
// @Failure		400		{object}	common.ErrorResponse
// @Failure		500		{object}	common.ErrorResponse
// @Router			/movies [post]
func (rr *Routes) createMovie(w http.ResponseWriter, r *http.Request) {
	movie, ok := decodeMovie(w, r)
	if !ok {
		return
	}

	created, err := rr.service.CreateMovie(r.Context(), movie)
	if err != nil {
		writeInternalError(w, r, "create movie", err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/movies/%d", created.ID))
	common.WriteJSONResponse(w, created, http.StatusCreated)
}

// updateMovie handles PUT /movies/{id}
//
// @Summary		Replace movie
// @Description	Replace all fields of a movie. The body id must match the path id.
// @Tags			movies
// @Accept			json
// @Param			id		path	int				true	"Movie id"
// @Param			movie	body	service.Movie	true	"Movie"
// @Success		204
// @Failure		400	{object}	common.ErrorResponse
// @Failure		404	{object}	common.ErrorResponse
// @Failure		500	{object}	common.ErrorResponse
// @Router			/movies/{id} [put]
func (rr *Routes) updateMovie(w http.ResponseWriter, r *http.Request) {
	id, err := common.ParseIDParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	movie, ok := decodeMovie(w, r)
	if !ok {
		return
	}

	_, err = rr.service.UpdateMovie(r.Context(), id, movie)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, service.ErrMovieIDMismatch):
		common.WriteErrorResponse(w,
			fmt.Sprintf("movie id %d does not match path id %d", movie.ID, id), http.StatusBadRequest)
	case errors.Is(err, service.ErrMovieNotFound):
		common.WriteErrorResponse(w, fmt.Sprintf("movie %d not found", id), http.StatusNotFound)
	default:
		writeInternalError(w, r, "update movie", err)
	}
}

// deleteMovie handles DELETE /movies/{id}
//
// @Summary		Delete movie
// @Tags			movies
// @Param			id	path	int	true	"Movie id"
// @Success		204
// @Failure		400	{object}	common.ErrorResponse
// @Failure		404	{object}	common.ErrorResponse
// @Failure		500	{object}	common.ErrorResponse
// @Router			/movies/{id} [delete]
func (rr *Routes) deleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := common.ParseIDParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	deleted, err := rr.service.DeleteMovie(r.Context(), id)
	if err != nil {
		writeInternalError(w, r, "delete movie", err)
		return
	}
	if !deleted {
		common.WriteErrorResponse(w, fmt.Sprintf("movie %d not found", id), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeMovie reads and validates a movie payload. On failure the 400
// response has already been written.
func decodeMovie(w http.ResponseWriter, r *http.Request) (*service.Movie, bool) {
	var movie service.Movie
	if err := common.DecodeJSONBody(w, r, &movie); err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	if err := validators.ValidateMovieFields(movie.Name, movie.Score, movie.Genres, movie.Year); err != nil {
		common.WriteErrorResponse(w, "invalid movie: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	return &movie, true
}

// writeInternalError logs the cause and replies with a generic 500
func writeInternalError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	slog.ErrorContext(r.Context(), "Movie request failed",
		"operation", operation,
		"error", err,
		"request_id", middleware.GetReqID(r.Context()))
	common.WriteErrorResponse(w, internalErrorMessage, http.StatusInternalServerError)
}
