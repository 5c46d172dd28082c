// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package submit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-console/internal/client"
	"github.com/pdiddy/research-console/internal/form"
	"github.com/pdiddy/research-console/pkg/types"
)

// fakePoster records requests and returns a canned outcome. When release is
// non-nil, Submit signals started and blocks until release is closed.
type fakePoster struct {
	mu       sync.Mutex
	requests []types.ResearchRequest
	result   types.ResearchResult
	err      error
	started  chan struct{}
	release  chan struct{}
	sawState func() form.State
	during   form.State
}

func (f *fakePoster) Submit(_ context.Context, req types.ResearchRequest) (types.ResearchResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	if f.sawState != nil {
		f.during = f.sawState()
	}
	f.mu.Unlock()
	if f.release != nil {
		close(f.started)
		<-f.release
	}
	return f.result, f.err
}

func filledState(t *testing.T) form.State {
	t.Helper()
	s := form.New()
	var err error
	s, err = s.WithField(form.FieldQuery, "quantum computing")
	require.NoError(t, err)
	s, err = s.WithField(form.FieldResearchQuestion, "What is a qubit?")
	require.NoError(t, err)
	s, err = s.WithField(form.FieldGroqAPIKey, "gsk_test")
	require.NoError(t, err)
	return s
}

func TestSubmitOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		result     types.ResearchResult
		err        error
		wantErr    string
		wantResult *types.ResearchResult
	}{
		{
			name:       "success",
			result:     types.ResearchResult{Success: true, PapersDownloaded: 5, Answer: "A qubit is..."},
			wantResult: &types.ResearchResult{Success: true, PapersDownloaded: 5, Answer: "A qubit is..."},
		},
		{
			name:    "application error with message",
			err:     &client.APIError{Status: 400, Message: "X"},
			wantErr: "X",
		},
		{
			name:    "application error without message",
			err:     &client.APIError{Status: 500},
			wantErr: form.MsgGenericFailure,
		},
		{
			name:    "connectivity failure",
			err:     &client.ConnectivityError{Err: errors.New("connection refused")},
			wantErr: form.MsgConnectivity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poster := &fakePoster{result: tt.result, err: tt.err}
			h := New(poster, filledState(t).WithError("stale error"))

			var seen []form.State
			h.Subscribe(func(s form.State) { seen = append(seen, s) })
			poster.sawState = h.State

			final, err := h.Submit(context.Background())
			if tt.err != nil {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.True(t, poster.during.Loading, "loading must be set before the call starts")
			assert.Empty(t, poster.during.Err, "previous error is cleared on begin")

			assert.False(t, final.Loading)
			assert.Equal(t, final, h.State())
			assert.Equal(t, tt.wantErr, final.Err)
			assert.Equal(t, tt.wantResult, final.Result)

			require.Len(t, seen, 3, "begin, outcome, settle")
			assert.True(t, seen[0].Loading)
			assert.True(t, seen[1].Loading)
			assert.False(t, seen[2].Loading)
		})
	}
}

func TestSubmitRejectsReentry(t *testing.T) {
	poster := &fakePoster{
		result:  types.ResearchResult{Success: true, Answer: "done"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	h := New(poster, filledState(t))

	done := make(chan form.State)
	go func() {
		s, _ := h.Submit(context.Background())
		done <- s
	}()
	<-poster.started

	assert.True(t, h.State().Loading)
	_, err := h.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInFlight)

	close(poster.release)
	final := <-done
	assert.False(t, final.Loading)
	require.NotNil(t, final.Result)
	assert.Equal(t, "done", final.Result.Answer)
	assert.Len(t, poster.requests, 1)
}

func TestSubmitUsesSnapshot(t *testing.T) {
	poster := &fakePoster{
		result:  types.ResearchResult{Success: true},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	h := New(poster, filledState(t))

	done := make(chan struct{})
	go func() {
		h.Submit(context.Background())
		close(done)
	}()
	<-poster.started

	require.NoError(t, h.Update(form.FieldQuery, "edited mid-flight"))
	close(poster.release)
	<-done

	require.Len(t, poster.requests, 1)
	assert.Equal(t, "quantum computing", poster.requests[0].Query)
	assert.Equal(t, "edited mid-flight", h.State().Params.Query, "the edit itself is kept")
}

func TestUpdate(t *testing.T) {
	h := New(&fakePoster{}, form.New())

	var notified int
	h.Subscribe(func(form.State) { notified++ })

	require.NoError(t, h.Update(form.FieldMaxResults, "10"))
	assert.Equal(t, types.MaxResults(10), h.State().Params.MaxResults)
	assert.Equal(t, 1, notified)

	assert.Error(t, h.Update(form.FieldMaxResults, "ten"))
	assert.Equal(t, types.MaxResults(10), h.State().Params.MaxResults)
	assert.Equal(t, 1, notified, "failed edits do not notify")
}

func TestSubmitAfterFailureCanResubmit(t *testing.T) {
	poster := &fakePoster{err: &client.ConnectivityError{Err: errors.New("down")}}
	h := New(poster, filledState(t))

	s, _ := h.Submit(context.Background())
	assert.Equal(t, form.MsgConnectivity, s.Err)

	poster.err = nil
	poster.result = types.ResearchResult{Success: true, Answer: "back"}
	s, err := h.Submit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, s.Err)
	require.NotNil(t, s.Result)
	assert.Equal(t, "back", s.Result.Answer)
	assert.Len(t, poster.requests, 2)
}
