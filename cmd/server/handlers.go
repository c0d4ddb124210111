package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"datafeed/internal/export"
	"datafeed/internal/httpx"
	"datafeed/internal/logging"
	"datafeed/internal/provider"
	"datafeed/internal/schema"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type api struct {
	ex      *provider.Executor
	timeout time.Duration
}

func (a *api) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/v1/providers", a.handleProviders)
	mux.HandleFunc("GET /api/v1/{provider}/{model}", a.handleGetFetch)
	mux.HandleFunc("POST /api/v1/{provider}/{model}", a.handlePostFetch)
	return mux
}

type providerInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Website     string   `json:"website"`
	Credentials []string `json:"credentials"`
	Models      []string `json:"models"`
}

func (a *api) handleProviders(w http.ResponseWriter, r *http.Request) {
	reg := a.ex.Registry()
	out := make([]providerInfo, 0)
	for _, name := range reg.Names() {
		p, err := reg.Provider(name)
		if err != nil {
			continue
		}
		creds := p.Credentials
		if creds == nil {
			creds = []string{}
		}
		out = append(out, providerInfo{
			Name:        p.Name,
			Description: p.Description,
			Website:     p.Website,
			Credentials: creds,
			Models:      p.Models(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"providers": out})
}

// handleGetFetch turns query parameters into fetch params. A repeated
// parameter is joined with commas, so ?symbol=A&symbol=B equals ?symbol=A,B.
// The reserved parameter "format" selects json (default) or xlsx.
func (a *api) handleGetFetch(w http.ResponseWriter, r *http.Request) {
	params := make(map[string]any)
	for k, vs := range r.URL.Query() {
		if k == "format" {
			continue
		}
		params[k] = strings.Join(vs, ",")
	}
	a.fetch(w, r, params)
}

func (a *api) handlePostFetch(w http.ResponseWriter, r *http.Request) {
	params := make(map[string]any)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&params); err != nil {
		writeError(w, r, http.StatusBadRequest, errors.New("invalid JSON body: expected an object of parameters"))
		return
	}
	delete(params, "format")
	a.fetch(w, r, params)
}

func (a *api) fetch(w http.ResponseWriter, r *http.Request, params map[string]any) {
	providerName, model := r.PathValue("provider"), r.PathValue("model")
	ctx := r.Context()
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	recs, err := a.ex.Execute(ctx, providerName, model, params)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	res := export.NewResult(providerName, model, recs)

	if r.URL.Query().Get("format") == "xlsx" {
		b, err := export.XLSX(ctx, res)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+providerName+"_"+model+`.xlsx"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := export.WriteJSON(w, res); err != nil {
		slog.Error("write response", slog.String("rqID", logging.RequestID(ctx)), slog.String("err", err.Error()))
	}
}

// statusFor maps pipeline errors to HTTP statuses.
func statusFor(err error) int {
	var (
		verr *schema.ValidationError
		merr *provider.MissingCredentialError
		uerr *provider.UnauthorizedError
		terr *httpx.TransportError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, provider.ErrUnknownProvider), errors.Is(err, provider.ErrUnknownModel):
		return http.StatusNotFound
	case errors.Is(err, provider.ErrEmptyData):
		return http.StatusNotFound
	case errors.As(err, &merr), errors.As(err, &uerr):
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &terr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []schema.FieldError `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Problems
	}
	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request failed",
		slog.String("rqID", logging.RequestID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("err", err.Error()))
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
