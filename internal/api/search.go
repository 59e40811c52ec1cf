package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/frank/internal/finder"
)

// SearchRequest is the body of POST /search and POST /discover. Session is
// optional; with it, only the newest request of that session is recorded.
type SearchRequest struct {
	Query   string `json:"query"`
	Mode    string `json:"mode,omitempty"`
	Session string `json:"session,omitempty"`
}

// SearchResponse is the data of a search or discover reply.
type SearchResponse struct {
	finder.Outcome
	Session  string `json:"session,omitempty"`
	Sequence uint64 `json:"sequence,omitempty"`
	// Applied is false when a newer request in the same session superseded
	// this one before it finished.
	Applied bool `json:"applied"`
}

func handleSearch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SearchRequest
		if !decodeBody(w, r, &req) {
			return
		}
		mode, err := finder.ParseMode(req.Mode)
		if err != nil {
			httpError(w, http.StatusBadRequest, codeInvalidRequest, "%v", err)
			return
		}
		run(w, r, deps, req.Session, func(ctx context.Context) (finder.Outcome, error) {
			return deps.Finder.Search(ctx, req.Query, mode)
		})
	}
}

func handleDiscover(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SearchRequest
		if !decodeBody(w, r, &req) {
			return
		}
		run(w, r, deps, req.Session, func(ctx context.Context) (finder.Outcome, error) {
			return deps.Finder.Discover(ctx, req.Query)
		})
	}
}

// run executes action, recording the outcome in the named session when it is
// still the session's latest request.
func run(w http.ResponseWriter, r *http.Request, deps Deps, sessionID string, action func(context.Context) (finder.Outcome, error)) {
	var (
		sess  *finder.Session
		token uint64
	)
	if sessionID != "" {
		sess = deps.Sessions.GetOrCreate(sessionID)
		token = sess.Begin()
	}

	out, err := action(r.Context())
	if err != nil {
		httpError(w, http.StatusInternalServerError, codeInternal, "%v", err)
		return
	}

	resp := SearchResponse{Outcome: out, Applied: true}
	if sess != nil {
		resp.Session = sess.ID
		resp.Sequence = token
		resp.Applied = sess.Commit(token, out)
	}
	ok(w, resp)
}

func handleGetSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, found := deps.Sessions.Get(chi.URLParam(r, "id"))
		if !found {
			httpError(w, http.StatusNotFound, codeNotFound, "session not found")
			return
		}
		ok(w, sess.Snapshot())
	}
}

func handleDropSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.Sessions.Drop(chi.URLParam(r, "id")) {
			httpError(w, http.StatusNotFound, codeNotFound, "session not found")
			return
		}
		ok(w, map[string]string{"status": "dropped"})
	}
}
