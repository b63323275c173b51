package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadreport/internal/engine"
	"roadreport/internal/model"
)

// fakeSessionCache mimics the Redis cache: values survive as JSON copies, so
// mutations after Set never leak back.
type fakeSessionCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{store: make(map[string][]byte)}
}

func (c *fakeSessionCache) Set(ctx context.Context, state *model.DialogueState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[state.ID] = data
	return nil
}

func (c *fakeSessionCache) Get(ctx context.Context, id string) (*model.DialogueState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.store[id]
	if !ok {
		return nil, nil
	}
	var state model.DialogueState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *fakeSessionCache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, id)
	return nil
}

type fakeReportRepo struct {
	mu      sync.Mutex
	created []*model.SubmittedReport
}

func (r *fakeReportRepo) Create(ctx context.Context, report *model.SubmittedReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, report)
	return nil
}

func (r *fakeReportRepo) GetByID(ctx context.Context, id string) (*model.SubmittedReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rep := range r.created {
		if rep.ID == id {
			return rep, nil
		}
	}
	return nil, nil
}

func (r *fakeReportRepo) List(ctx context.Context, mode model.Mode, limit int64) ([]*model.SubmittedReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created, nil
}

// flakySheet serves the Sheets append endpoint and can be toggled to fail.
type flakySheet struct {
	mu      sync.Mutex
	fail    bool
	appends int
}

func (f *flakySheet) handler(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	f.appends++
	w.WriteHeader(http.StatusOK)
}

func (f *flakySheet) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *flakySheet) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appends
}

func newTestSessionService(t *testing.T) (*SessionService, *fakeSessionCache, *fakeReportRepo, *flakySheet) {
	t.Helper()

	sheet := &flakySheet{}
	srv := httptest.NewServer(http.HandlerFunc(sheet.handler))
	t.Cleanup(srv.Close)

	sessions := newFakeSessionCache()
	repo := &fakeReportRepo{}
	phrasing := NewPhrasingServiceWith(phrasingCfg("", "http://unused"))
	sheets := NewSheetClient(sheetCfg(srv.URL))
	auth := NewAuthService()

	return NewSessionService(sessions, repo, phrasing, sheets, auth), sessions, repo, sheet
}

// seedCompleteComplaint stores a complaint session with every askable slot
// filled except the last one.
func seedCompleteComplaint(t *testing.T, svc *SessionService, sessions *fakeSessionCache) string {
	t.Helper()
	ctx := context.Background()

	resp, err := svc.CreateSession(ctx, model.ModeComplaint)
	require.NoError(t, err)

	state, err := sessions.Get(ctx, resp.SessionID)
	require.NoError(t, err)

	machine := engine.NewMachine(model.ModeComplaint)
	for _, slot := range machine.Schema().Askable() {
		state.Record[slot.ID] = "filled"
	}
	delete(state.Record, model.SlotDateComplaint)
	state.CurrentSlot = machine.Schema().NextUnfilled(state.Record)
	require.NoError(t, sessions.Set(ctx, state))

	return resp.SessionID
}

func TestCreateSessionMintsScopedToken(t *testing.T) {
	svc, _, _, _ := newTestSessionService(t)
	ctx := context.Background()

	resp, err := svc.CreateSession(ctx, model.ModeFeedback)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, model.PhaseAsking, resp.Phase)
	assert.NotEmpty(t, resp.Greeting)

	state, err := svc.GetSession(ctx, resp.SessionID)
	require.NoError(t, err)
	require.Len(t, state.Transcript, 1, "the greeting is part of the transcript")
	assert.Equal(t, model.RoleAssistant, state.Transcript[0].Role)
}

func TestCreateSessionRejectsUnknownMode(t *testing.T) {
	svc, _, _, _ := newTestSessionService(t)

	_, err := svc.CreateSession(context.Background(), model.Mode("GOSSIP"))
	require.Error(t, err)
}

func TestHandleTurnUnknownSession(t *testing.T) {
	svc, _, _, _ := newTestSessionService(t)

	_, err := svc.HandleTurn(context.Background(), "nope", "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestHandleTurnRecordsAndAdvances(t *testing.T) {
	svc, _, _, _ := newTestSessionService(t)
	ctx := context.Background()

	resp, err := svc.CreateSession(ctx, model.ModeComplaint)
	require.NoError(t, err)

	reply, err := svc.HandleTurn(ctx, resp.SessionID, "TOYOTA CAMRY 2020 crash in Austin TX")
	require.NoError(t, err)

	assert.Equal(t, engine.TurnRecorded, reply.Kind)
	assert.False(t, reply.Submitted)
	assert.Contains(t, reply.Recorded, model.SlotMake)
	assert.Contains(t, reply.Recorded, model.SlotState)
	require.NotNil(t, reply.CurrentSlot)
	assert.Equal(t, model.SlotModel, *reply.CurrentSlot)

	state, err := svc.GetSession(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "Toyota", state.Record[model.SlotMake])
	assert.Len(t, state.Transcript, 3, "greeting, user turn, assistant turn")
}

func TestHandleTurnSubmitsOnCompletion(t *testing.T) {
	svc, sessions, repo, sheet := newTestSessionService(t)
	ctx := context.Background()
	id := seedCompleteComplaint(t, svc, sessions)

	reply, err := svc.HandleTurn(ctx, id, "2025-05-30")
	require.NoError(t, err)

	assert.True(t, reply.Submitted)
	assert.Equal(t, engine.TurnCompleted, reply.Kind)
	assert.Equal(t, 1, sheet.count())

	state, err := svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseSubmitted, state.Phase)
	assert.NotEmpty(t, state.Record[model.SlotTimestamp])

	require.Len(t, repo.created, 1)
	assert.Equal(t, id, repo.created[0].SessionID)

	_, err = svc.HandleTurn(ctx, id, "one more thing")
	assert.ErrorIs(t, err, ErrSessionSubmitted)
}

func TestHandleTurnFailedSubmitAllowsRetry(t *testing.T) {
	svc, sessions, repo, sheet := newTestSessionService(t)
	ctx := context.Background()
	id := seedCompleteComplaint(t, svc, sessions)
	sheet.setFail(true)

	reply, err := svc.HandleTurn(ctx, id, "2025-05-30")
	require.NoError(t, err)

	assert.False(t, reply.Submitted)
	assert.NotEmpty(t, reply.SubmitError)
	assert.Empty(t, repo.created)

	state, err := svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseAsking, state.Phase, "a failed append keeps the session pre-terminal")
	assert.Equal(t, "2025-05-30", state.Record[model.SlotDateComplaint], "collected data survives the failure")

	// Next turn is a retry, not new data.
	sheet.setFail(false)
	reply, err = svc.HandleTurn(ctx, id, "did it go through?")
	require.NoError(t, err)

	assert.True(t, reply.Submitted)
	assert.Equal(t, 1, sheet.count())
	assert.Equal(t, "2025-05-30", mustGet(t, svc, id).Record[model.SlotDateComplaint],
		"the retry utterance never overwrites the record")
}

func TestFeedbackReviewFlow(t *testing.T) {
	svc, _, repo, sheet := newTestSessionService(t)
	ctx := context.Background()

	resp, err := svc.CreateSession(ctx, model.ModeFeedback)
	require.NoError(t, err)
	id := resp.SessionID

	_, err = svc.Review(ctx, id)
	assert.ErrorIs(t, err, ErrNotInReview, "review is only reachable once every slot is filled")

	answers := []string{
		"Subaru", "Outback", "2019", "42000 miles", "family trips",
		"4", "the cargo space", "the infotainment lag", "yes", "nothing else",
	}
	var last *TurnReply
	for _, a := range answers {
		last, err = svc.HandleTurn(ctx, id, a)
		require.NoError(t, err)
	}
	assert.Equal(t, engine.TurnReviewReady, last.Kind)
	assert.Equal(t, model.PhaseReview, last.Phase)
	assert.False(t, last.Submitted, "review mode never submits on slot completion")

	entries, err := svc.Review(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 10)
	assert.Equal(t, model.SlotMake, entries[0].Field)
	assert.Equal(t, "Subaru", entries[0].Value)

	reply, err := svc.ConfirmReview(ctx, id, map[model.SlotID]string{model.SlotMake: "Lexus"})
	require.NoError(t, err)
	assert.True(t, reply.Submitted)
	assert.Equal(t, 1, sheet.count())

	require.Len(t, repo.created, 1)
	assert.Equal(t, "Lexus", repo.created[0].Fields["Make"], "review edits land in the archive")
	assert.Equal(t, model.PhaseSubmitted, mustGet(t, svc, id).Phase)
}

func TestConfirmReviewFailureStaysInReview(t *testing.T) {
	svc, _, _, sheet := newTestSessionService(t)
	ctx := context.Background()

	resp, err := svc.CreateSession(ctx, model.ModeFeedback)
	require.NoError(t, err)
	id := resp.SessionID

	answers := []string{
		"Subaru", "Outback", "2019", "42000 miles", "family trips",
		"4", "the cargo space", "the infotainment lag", "yes", "nothing else",
	}
	for _, a := range answers {
		_, err = svc.HandleTurn(ctx, id, a)
		require.NoError(t, err)
	}

	sheet.setFail(true)
	reply, err := svc.ConfirmReview(ctx, id, nil)
	require.NoError(t, err)
	assert.False(t, reply.Submitted)

	assert.Equal(t, model.PhaseReview, mustGet(t, svc, id).Phase, "confirm can be retried after a failed append")
}

func TestResetStartsOver(t *testing.T) {
	svc, _, _, _ := newTestSessionService(t)
	ctx := context.Background()

	resp, err := svc.CreateSession(ctx, model.ModeComplaint)
	require.NoError(t, err)
	id := resp.SessionID

	_, err = svc.HandleTurn(ctx, id, "Toyota Camry 2020")
	require.NoError(t, err)

	reset, err := svc.Reset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseAsking, reset.Phase)
	assert.NotEmpty(t, reset.Greeting)

	state := mustGet(t, svc, id)
	assert.Empty(t, state.Record)
	require.NotNil(t, state.CurrentSlot)
	assert.Equal(t, model.SlotMake, *state.CurrentSlot)
}

func mustGet(t *testing.T, svc *SessionService, id string) *model.DialogueState {
	t.Helper()
	state, err := svc.GetSession(context.Background(), id)
	require.NoError(t, err)
	return state
}
