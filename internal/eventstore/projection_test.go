package eventstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProject_IgnoresEventsWithoutBuildID(t *testing.T) {
	ev, err := NewEvent("", TypeBuildStarted, time.Now(), BuildStarted{})
	require.NoError(t, err)
	require.Empty(t, Project([]Event{ev}))
}

func TestProject_UndecodablePayload(t *testing.T) {
	now := time.Now()
	events := []Event{
		{BuildID: "x", Type: TypeBuildStarted, Timestamp: now, Payload: []byte("{")},
		{BuildID: "x", Type: TypeBuildFinished, Timestamp: now.Add(time.Second), Payload: []byte("not json")},
	}
	out := Project(events)
	require.Len(t, out, 1)
	if out[0].FinishedAt == nil {
		t.Errorf("finished event should still close the build")
	}
	require.Equal(t, statusRunning, out[0].State)
}

func TestEventDecodeError(t *testing.T) {
	ev := Event{BuildID: "x", Type: TypeBuildFinished, Payload: []byte("{")}
	var p BuildFinished
	require.Error(t, ev.Decode(&p))
}
