// Package handlers provides HTTP handlers for Music-City-Go. This file contains
// the endpoint that exposes the aggregated listening insights used to build
// the city view.

package handlers

import (
	"net/http"
	"strings"
)

// DegradedHeader lists the upstream resources that were replaced by empty
// collections. It is absent when every fetch succeeded.
const DegradedHeader = "X-Degraded-Sources"

// bearerToken reads the credential from the token query parameter, falling
// back to an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	h := r.Header.Get("Authorization")
	if len(h) > len("Bearer ") && strings.EqualFold(h[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}

// CityDataJSON aggregates the caller's top artists, top tracks and recent
// plays. Upstream failures never fail the request; they are reported in the
// DegradedHeader instead.
func (app *Application) CityDataJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		respondJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	token := bearerToken(r)
	if token == "" {
		respondJSONError(w, http.StatusBadRequest, "token is required")
		return
	}
	res := app.Engine.Aggregate(r.Context(), token)
	if len(res.Degraded) > 0 {
		names := make([]string, len(res.Degraded))
		for i, d := range res.Degraded {
			names[i] = string(d)
		}
		w.Header().Set(DegradedHeader, strings.Join(names, ","))
		requestLogger(r).WithField("degraded", names).Warn("city data served with partial upstream data")
	}
	respondJSON(w, http.StatusOK, res.Response)
}
