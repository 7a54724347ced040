package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/blogbuilder/internal/eventstore"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/server/responses"
	"git.home.luguber.info/inful/blogbuilder/internal/trigger"
)

const (
	headerEvent       = "X-GitHub-Event"
	headerGiteaEvent  = "X-Gitea-Event"
	headerSignature   = "X-Hub-Signature-256"
	headerSignatureV1 = "X-Hub-Signature"
	defaultListLimit  = 20
)

func newBuildID() string { return uuid.NewString() }

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, responses.WebhookResponse{Status: "rejected", Reason: "payload too large"})
			return
		}
		s.errors.WriteErrorResponse(w, r, ferrors.ValidationError("failed to read webhook body").WithCause(err).Build())
		return
	}

	if secret := s.opts.WebhookSecret; secret != "" {
		sig := r.Header.Get(headerSignature)
		if sig == "" {
			sig = r.Header.Get(headerSignatureV1)
		}
		if !trigger.ValidateSignature(body, sig, secret) {
			s.logger.Warn("Rejected webhook with invalid signature", logfields.RemoteAddr(r.RemoteAddr))
			s.errors.WriteErrorResponse(w, r, ferrors.NewError(ferrors.CategoryAuth, "invalid webhook signature").Build())
			return
		}
	}

	event := r.Header.Get(headerEvent)
	if event == "" {
		event = r.Header.Get(headerGiteaEvent)
	}
	switch event {
	case "ping":
		writeJSON(w, http.StatusOK, responses.WebhookResponse{Status: "pong", Event: event})
		return
	case "push":
	default:
		writeJSON(w, http.StatusAccepted, responses.WebhookResponse{Status: "ignored", Event: event, Reason: "not a push event"})
		return
	}

	ev, err := trigger.ParseGitHubPush(body)
	if err != nil {
		s.errors.WriteErrorResponse(w, r, ferrors.ValidationError("invalid push payload").WithCause(err).Build())
		return
	}
	if !ev.IsBranch(s.builder.MainBranch()) {
		writeJSON(w, http.StatusAccepted, responses.WebhookResponse{
			Status: "ignored", Event: event, Ref: ev.Ref, Reason: "not the main branch",
		})
		return
	}

	id, err := s.Enqueue(ev)
	if err != nil {
		s.errors.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, responses.WebhookResponse{Status: "queued", Event: event, Ref: ev.Ref, BuildID: id})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := responses.HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now().UTC(),
		Version:    s.opts.Version,
		Uptime:     time.Since(s.startedAt).Seconds(),
		QueueDepth: s.queue.depth(),
		Building:   s.queue.building.Load(),
	}
	if last := s.builder.Last(); last != nil {
		lb := &responses.LastBuild{
			BuildID:  last.BuildID,
			State:    last.State.String(),
			Ref:      last.Ref,
			Skipped:  last.Skipped,
			Duration: last.Duration.String(),
		}
		if last.Err != nil {
			lb.Error = last.Err.Error()
		}
		resp.LastBuild = lb
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		s.errors.WriteErrorResponse(w, r, ferrors.NewError(ferrors.CategoryNotFound, "build history is disabled").Build())
		return
	}
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.errors.WriteErrorResponse(w, r, ferrors.ValidationError("limit must be a positive integer").
				WithContext("limit", raw).
				Build())
			return
		}
		limit = n
	}
	builds, err := s.opts.History.Summaries(r.Context(), limit)
	if err != nil {
		s.errors.WriteErrorResponse(w, r, err)
		return
	}
	if builds == nil {
		builds = []eventstore.BuildSummary{}
	}
	writeJSON(w, http.StatusOK, responses.BuildListResponse{Builds: builds})
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		s.errors.WriteErrorResponse(w, r, ferrors.NewError(ferrors.CategoryNotFound, "build history is disabled").Build())
		return
	}
	summary, err := s.opts.History.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		s.errors.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
