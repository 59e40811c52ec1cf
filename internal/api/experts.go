package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/frank/internal/expert"
	"github.com/kalambet/frank/internal/roster"
)

func handleListExperts(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, codeInvalidRequest, "%v", err)
			return
		}
		page, err := deps.Roster.List(f)
		if errors.Is(err, roster.ErrInvalidPage) {
			httpError(w, http.StatusBadRequest, codeInvalidRequest, "%v", err)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, codeInternal, "listing experts: %v", err)
			return
		}
		ok(w, page)
	}
}

func parseFilter(r *http.Request) (roster.Filter, error) {
	q := r.URL.Query()
	f := roster.Filter{
		Query:        q.Get("query"),
		Industry:     q.Get("industry"),
		Function:     q.Get("function"),
		Location:     q.Get("location"),
		Type:         expert.Type(q.Get("type")),
		Availability: expert.Availability(q.Get("availability")),
	}
	var err error
	if f.Limit, err = intParam(q.Get("limit")); err != nil {
		return f, errors.New("limit must be an integer")
	}
	if f.Offset, err = intParam(q.Get("offset")); err != nil {
		return f, errors.New("offset must be an integer")
	}
	if s := q.Get("minRating"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || v > 5 {
			return f, errors.New("minRating must be a number between 0 and 5")
		}
		f.MinRating = &v
	}
	return f, nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func handleGetExpert(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := deps.Roster.Get(chi.URLParam(r, "id"))
		if errors.Is(err, roster.ErrNotFound) {
			httpError(w, http.StatusNotFound, codeNotFound, "expert not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, codeInternal, "getting expert: %v", err)
			return
		}
		ok(w, e)
	}
}

func handlePatchExpert(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p expert.Patch
		if !decodeBody(w, r, &p) {
			return
		}
		e, err := deps.Roster.Update(r.Context(), chi.URLParam(r, "id"), p)
		writeEdit(w, e, err)
	}
}

type itemRequest struct {
	Value string `json:"value"`
}

func handleAddExpertise(deps Deps) http.HandlerFunc {
	return addItem(deps.Roster.AddExpertise)
}

func handleRemoveExpertise(deps Deps) http.HandlerFunc {
	return removeItem(deps.Roster.RemoveExpertise)
}

func handleAddCertification(deps Deps) http.HandlerFunc {
	return addItem(deps.Roster.AddCertification)
}

func handleRemoveCertification(deps Deps) http.HandlerFunc {
	return removeItem(deps.Roster.RemoveCertification)
}

func addItem(add func(ctx context.Context, id, value string) (expert.Expert, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req itemRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Value) == "" {
			httpError(w, http.StatusBadRequest, codeInvalidRequest, "value is required")
			return
		}
		e, err := add(r.Context(), chi.URLParam(r, "id"), req.Value)
		writeEdit(w, e, err)
	}
}

func removeItem(remove func(ctx context.Context, id string, i int) (expert.Expert, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		i, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			httpError(w, http.StatusBadRequest, codeInvalidRequest, "index must be an integer")
			return
		}
		e, err := remove(r.Context(), chi.URLParam(r, "id"), i)
		writeEdit(w, e, err)
	}
}

func writeEdit(w http.ResponseWriter, e expert.Expert, err error) {
	switch {
	case err == nil:
		ok(w, e)
	case errors.Is(err, roster.ErrNotFound):
		httpError(w, http.StatusNotFound, codeNotFound, "expert not found")
	case validationError(w, err):
	case errors.Is(err, expert.ErrIndexOutOfRange):
		httpError(w, http.StatusBadRequest, codeInvalidRequest, "%v", err)
	default:
		httpError(w, http.StatusInternalServerError, codeInternal, "updating expert: %v", err)
	}
}
