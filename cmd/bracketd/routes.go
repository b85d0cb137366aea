package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
	"github.com/AdamBeresnev/bracketd/internal/httputil"
	"github.com/AdamBeresnev/bracketd/internal/metrics"
	"github.com/AdamBeresnev/bracketd/internal/middleware"
	"github.com/AdamBeresnev/bracketd/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type services struct {
	tournaments *service.TournamentService
	matches     *service.MatchService
	players     *service.PlayerService
}

type bracketView struct {
	Tournament *bracket.Tournament `json:"tournament"`
	RootID     int                 `json:"root_id"`
	Columns    []columnView        `json:"columns"`
	Edges      []bracket.Edge      `json:"edges"`
}

type columnView struct {
	Round   int             `json:"round"`
	Matches []bracket.Match `json:"matches"`
}

func newRouter(svc services, recorder *metrics.Recorder, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestLogger(logger, recorder))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", recorder.Handler())

	r.Get("/snapshot", func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.tournaments.FetchAll(r.Context())
		if err != nil {
			httputil.Error(w, "Failed to fetch snapshot", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, snap)
	})

	r.Get("/players", func(w http.ResponseWriter, r *http.Request) {
		players, err := svc.players.ListPlayers(r.Context())
		if err != nil {
			httputil.Error(w, "Failed to list players", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, players)
	})

	r.Route("/tournaments", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			tournaments, err := svc.tournaments.ListTournaments(r.Context())
			if err != nil {
				httputil.Error(w, "Failed to list tournaments", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, tournaments)
		})

		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := intParam(w, r, "id")
			if !ok {
				return
			}
			data, err := svc.tournaments.GetTournamentData(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to get tournament", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, data.Tournament)
		})

		r.Get("/{id}/bracket", func(w http.ResponseWriter, r *http.Request) {
			id, ok := intParam(w, r, "id")
			if !ok {
				return
			}
			data, err := svc.tournaments.GetTournamentData(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to get bracket", err)
				return
			}

			view := bracketView{
				Tournament: data.Tournament,
				RootID:     data.RootID,
				Edges:      data.Edges,
			}
			for _, col := range data.Columns() {
				view.Columns = append(view.Columns, columnView{Round: col.RoundNumber, Matches: col.Matches})
			}
			httputil.WriteJSON(w, http.StatusOK, view)
		})
	})

	r.Get("/matches/{id}/children", func(w http.ResponseWriter, r *http.Request) {
		id, ok := intParam(w, r, "id")
		if !ok {
			return
		}
		edge, err := svc.matches.GetMatchChildren(r.Context(), id)
		if err != nil {
			httputil.Error(w, "Failed to get match children", err)
			return
		}
		// null for a leaf match
		httputil.WriteJSON(w, http.StatusOK, edge)
	})

	r.Get("/matches/{id}/games", func(w http.ResponseWriter, r *http.Request) {
		id, ok := intParam(w, r, "id")
		if !ok {
			return
		}
		games, err := svc.matches.GetGames(r.Context(), id)
		if err != nil {
			httputil.Error(w, "Failed to get games", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, games)
	})

	r.Post("/games/{id}/score", func(w http.ResponseWriter, r *http.Request) {
		id, ok := intParam(w, r, "id")
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			httputil.BadRequest(w, "Invalid form data", err)
			return
		}
		slot, err := strconv.Atoi(r.Form.Get("slot"))
		if err != nil {
			httputil.BadRequest(w, "Invalid slot", err)
			return
		}
		delta, err := parseDelta(r.Form.Get("delta"))
		if err != nil {
			httputil.BadRequest(w, "Invalid delta", err)
			return
		}

		game, err := svc.matches.AdjustScore(r.Context(), id, bracket.Slot(slot), delta)
		if err != nil {
			httputil.Error(w, "Failed to adjust score", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, game)
	})

	return r
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		httputil.BadRequest(w, fmt.Sprintf("Invalid %s %q", name, raw), err)
		return 0, false
	}
	return n, true
}

func parseDelta(raw string) (int, error) {
	switch raw {
	case "+", "+1", "1":
		return 1, nil
	case "-", "-1":
		return -1, nil
	default:
		return 0, fmt.Errorf("delta must be +1 or -1, got %q", raw)
	}
}
