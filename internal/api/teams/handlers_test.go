package teams

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mandrade85ma-cloud/site/internal/db"
	"github.com/mandrade85ma-cloud/site/internal/ratelimit"
	teamsvc "github.com/mandrade85ma-cloud/site/internal/teams"
	"github.com/mandrade85ma-cloud/site/internal/testutil"
)

const (
	eventID     = "6f1c2b9e-2d4a-4c1e-9a7b-0c3d5e7f9a11"
	organizerID = "0b7e8f2a-1c3d-4e5f-8a9b-1c2d3e4f5a6b"
	playerOne   = "11111111-1111-4111-8111-111111111111"
	playerTwo   = "22222222-2222-4222-8222-222222222222"
	playerThree = "33333333-3333-4333-8333-333333333333"
	playerFour  = "44444444-4444-4444-8444-444444444444"
	missingID   = "99999999-9999-4999-8999-999999999999"
)

func setupTeamsTest(t *testing.T, teamsEnabled bool) *db.DB {
	t.Helper()

	database := testutil.NewTestDB(t)
	testutil.InsertProfile(t, database, organizerID, "Organizador")
	testutil.InsertEvent(t, database, eventID, organizerID, teamsEnabled)
	for i, id := range []string{playerOne, playerTwo, playerThree, playerFour} {
		testutil.InsertProfile(t, database, id, "")
		testutil.InsertRSVP(t, database, eventID, id, "accepted", i)
	}

	service = nil
	serviceOnce = sync.Once{}
	if err := InitHandlers(database); err != nil {
		t.Fatalf("init handlers: %v", err)
	}

	t.Cleanup(func() {
		service = nil
		serviceOnce = sync.Once{}
		InitRateLimit(nil, false)
	})

	return database
}

func newEventRequest(method, suffix, id, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/api/v1/events/"+id+suffix, nil)
	} else {
		req = httptest.NewRequest(method, "/api/v1/events/"+id+suffix, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetPathValue(eventIDPathKey, id)
	return req
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, recorder.Body.String())
	}
}

func TestHandleRoster(t *testing.T) {
	setupTeamsTest(t, true)

	recorder := httptest.NewRecorder()
	HandleRoster(recorder, newEventRequest(http.MethodGet, "/roster", eventID, ""))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", recorder.Code, recorder.Body.String())
	}
	if recorder.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("content type: %s", recorder.Header().Get("Content-Type"))
	}

	var resp rosterResponse
	decodeBody(t, recorder, &resp)
	if len(resp.Players) != 4 {
		t.Fatalf("expected 4 players, got %d", len(resp.Players))
	}
	first := resp.Players[0]
	if first.UserID != playerOne || first.Name != playerOne {
		t.Fatalf("unexpected first player %+v", first)
	}
	if first.EffectiveRating() != teamsvc.DefaultRating || first.Goalkeeper() {
		t.Fatalf("expected default annotations, got %+v", first)
	}
}

func TestHandleGenerateAndFetchTeams(t *testing.T) {
	setupTeamsTest(t, true)

	ratingsBody := `{"ratings":[
		{"userId":"` + playerOne + `","rating":5},
		{"userId":"` + playerTwo + `","rating":4},
		{"userId":"` + playerThree + `","rating":3},
		{"userId":"` + playerFour + `","rating":2}
	]}`
	recorder := httptest.NewRecorder()
	HandleSaveRatings(recorder, newEventRequest(http.MethodPut, "/ratings", eventID, ratingsBody))
	if recorder.Code != http.StatusOK {
		t.Fatalf("save ratings status: %d body: %s", recorder.Code, recorder.Body.String())
	}

	recorder = httptest.NewRecorder()
	HandleGenerateTeams(recorder, newEventRequest(http.MethodPost, "/teams", eventID, `{"createdBy":"`+organizerID+`"}`))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("generate status: %d body: %s", recorder.Code, recorder.Body.String())
	}

	var generated generateTeamsResponse
	decodeBody(t, recorder, &generated)
	if generated.EventID != eventID {
		t.Fatalf("expected event id %s, got %s", eventID, generated.EventID)
	}
	if generated.Stats.SumA != 7 || generated.Stats.SumB != 7 || generated.Stats.Diff != 0 {
		t.Fatalf("unexpected stats %+v", generated.Stats)
	}

	recorder = httptest.NewRecorder()
	HandleTeamsResult(recorder, newEventRequest(http.MethodGet, "/teams", eventID, ""))
	if recorder.Code != http.StatusOK {
		t.Fatalf("result status: %d body: %s", recorder.Code, recorder.Body.String())
	}

	var stored teamsvc.StoredResult
	decodeBody(t, recorder, &stored)
	if len(stored.TeamA) != 2 || stored.TeamA[0].UserID != playerOne || stored.TeamA[1].UserID != playerFour {
		t.Fatalf("unexpected stored team A %+v", stored.TeamA)
	}
	if stored.CreatedBy != organizerID {
		t.Fatalf("expected created by %s, got %s", organizerID, stored.CreatedBy)
	}
	if len(stored.Warnings) != 1 {
		t.Fatalf("expected the no-goalkeeper warning, got %q", stored.Warnings)
	}
}

func TestHandlersErrorStatuses(t *testing.T) {
	tests := []struct {
		name         string
		teamsEnabled bool
		handler      http.HandlerFunc
		method       string
		suffix       string
		id           string
		body         string
		wantStatus   int
	}{
		{name: "invalid event id", teamsEnabled: true, handler: HandleRoster, method: http.MethodGet, suffix: "/roster", id: "abc", wantStatus: http.StatusBadRequest},
		{name: "unknown event", teamsEnabled: true, handler: HandleRoster, method: http.MethodGet, suffix: "/roster", id: missingID, wantStatus: http.StatusNotFound},
		{name: "teams disabled", teamsEnabled: false, handler: HandleRoster, method: http.MethodGet, suffix: "/roster", id: eventID, wantStatus: http.StatusConflict},
		{name: "not generated", teamsEnabled: true, handler: HandleTeamsResult, method: http.MethodGet, suffix: "/teams", id: eventID, wantStatus: http.StatusNotFound},
		{name: "malformed ratings body", teamsEnabled: true, handler: HandleSaveRatings, method: http.MethodPut, suffix: "/ratings", id: eventID, body: `{"ratings":`, wantStatus: http.StatusBadRequest},
		{name: "invalid rating user id", teamsEnabled: true, handler: HandleSaveRatings, method: http.MethodPut, suffix: "/ratings", id: eventID, body: `{"ratings":[{"userId":"p1","rating":3}]}`, wantStatus: http.StatusBadRequest},
		{name: "rating out of range", teamsEnabled: true, handler: HandleSaveRatings, method: http.MethodPut, suffix: "/ratings", id: eventID, body: `{"ratings":[{"userId":"` + playerOne + `","rating":7}]}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "empty ratings", teamsEnabled: true, handler: HandleSaveRatings, method: http.MethodPut, suffix: "/ratings", id: eventID, body: `{"ratings":[]}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "player not confirmed", teamsEnabled: true, handler: HandleSaveRatings, method: http.MethodPut, suffix: "/ratings", id: eventID, body: `{"ratings":[{"userId":"` + missingID + `","rating":3}]}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "missing creator", teamsEnabled: true, handler: HandleGenerateTeams, method: http.MethodPost, suffix: "/teams", id: eventID, body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "unknown creator", teamsEnabled: true, handler: HandleGenerateTeams, method: http.MethodPost, suffix: "/teams", id: eventID, body: `{"createdBy":"` + missingID + `"}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "generate disabled", teamsEnabled: false, handler: HandleGenerateTeams, method: http.MethodPost, suffix: "/teams", id: eventID, body: `{"createdBy":"` + organizerID + `"}`, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTeamsTest(t, tt.teamsEnabled)

			recorder := httptest.NewRecorder()
			tt.handler(recorder, newEventRequest(tt.method, tt.suffix, tt.id, tt.body))

			if recorder.Code != tt.wantStatus {
				t.Fatalf("status: expected %d, got %d body: %s", tt.wantStatus, recorder.Code, recorder.Body.String())
			}
			var body map[string]string
			decodeBody(t, recorder, &body)
			if body["error"] == "" {
				t.Fatalf("expected error message, got %s", recorder.Body.String())
			}
		})
	}
}

func TestHandleGenerateTeamsRateLimited(t *testing.T) {
	setupTeamsTest(t, true)
	limiter := ratelimit.New(&ratelimit.Config{EventCooldown: time.Minute, MaxIPPerHour: 100})
	t.Cleanup(limiter.Close)
	InitRateLimit(limiter, false)

	body := `{"createdBy":"` + organizerID + `"}`
	recorder := httptest.NewRecorder()
	HandleGenerateTeams(recorder, newEventRequest(http.MethodPost, "/teams", eventID, body))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("first generate status: %d body: %s", recorder.Code, recorder.Body.String())
	}

	recorder = httptest.NewRecorder()
	HandleGenerateTeams(recorder, newEventRequest(http.MethodPost, "/teams", eventID, body))
	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("second generate status: %d", recorder.Code)
	}
	if recorder.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestHandleGenerateTeamsFailuresAreNotThrottled(t *testing.T) {
	setupTeamsTest(t, true)
	limiter := ratelimit.New(&ratelimit.Config{EventCooldown: time.Minute, MaxIPPerHour: 100})
	t.Cleanup(limiter.Close)
	InitRateLimit(limiter, false)

	recorder := httptest.NewRecorder()
	HandleGenerateTeams(recorder, newEventRequest(http.MethodPost, "/teams", eventID, `{"createdBy":"`+missingID+`"}`))
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	HandleGenerateTeams(recorder, newEventRequest(http.MethodPost, "/teams", eventID, `{"createdBy":"`+organizerID+`"}`))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("status after failed attempt: %d body: %s", recorder.Code, recorder.Body.String())
	}
}

func TestHandlersRequireInit(t *testing.T) {
	service = nil
	serviceOnce = sync.Once{}

	recorder := httptest.NewRecorder()
	HandleRoster(recorder, newEventRequest(http.MethodGet, "/roster", eventID, ""))
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status: %d", recorder.Code)
	}
}

func TestInitHandlersRequiresDatabase(t *testing.T) {
	if err := InitHandlers(nil); err == nil {
		t.Fatalf("expected error for nil database")
	}
}
