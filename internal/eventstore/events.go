package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// EventType names a build history event.
type EventType string

const (
	TypeBuildStarted    EventType = "build.started"
	TypeBuildTransition EventType = "build.transition"
	TypeBuildFinished   EventType = "build.finished"
)

// BuildStarted is the payload of a build.started event.
type BuildStarted struct {
	Trigger    string `json:"trigger"`
	Ref        string `json:"ref"`
	Commit     string `json:"commit,omitempty"`
	Repository string `json:"repository,omitempty"`
}

// BuildTransition is the payload of a build.transition event.
type BuildTransition struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// BuildFinished is the payload of a build.finished event.
type BuildFinished struct {
	State      string `json:"state"`
	Skipped    bool   `json:"skipped,omitempty"`
	Error      string `json:"error,omitempty"`
	ErrorStage string `json:"error_stage,omitempty"`
	Documents  int    `json:"documents"`
	Pages      int    `json:"pages"`
	Digest     string `json:"digest,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// NewEvent marshals payload into an Event stamped with at.
func NewEvent(buildID string, typ EventType, at time.Time, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, errors.EventStoreError("failed to marshal event payload").
			WithCause(err).
			WithContext("build_id", buildID).
			WithContext("type", string(typ)).
			Build()
	}
	return Event{BuildID: buildID, Type: typ, Timestamp: at, Payload: data}, nil
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return errors.EventStoreError("failed to unmarshal event payload").
			WithCause(err).
			WithContext("build_id", e.BuildID).
			WithContext("type", string(e.Type)).
			Build()
	}
	return nil
}
