package assistant

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/hub"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/store"
	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

// writeRecorder counts store writes so tests can assert that rejected
// calls never touched the store.
type writeRecorder struct {
	store.Store
	writes int
}

func (w *writeRecorder) JoinEvent(ctx context.Context, eventID, userID string) (int, error) {
	w.writes++
	return w.Store.JoinEvent(ctx, eventID, userID)
}

func (w *writeRecorder) LeaveEvent(ctx context.Context, eventID, userID string) (int, error) {
	w.writes++
	return w.Store.LeaveEvent(ctx, eventID, userID)
}

func (w *writeRecorder) UpsertVote(ctx context.Context, goodieID, userID string, value int) (int, error) {
	w.writes++
	return w.Store.UpsertVote(ctx, goodieID, userID, value)
}

func (w *writeRecorder) ClearVote(ctx context.Context, goodieID, userID string) (int, error) {
	w.writes++
	return w.Store.ClearVote(ctx, goodieID, userID)
}

func (w *writeRecorder) ToggleCollection(ctx context.Context, goodieID, userID string) (bool, int, error) {
	w.writes++
	return w.Store.ToggleCollection(ctx, goodieID, userID)
}

func (w *writeRecorder) CreateComment(ctx context.Context, comment *models.Comment) error {
	w.writes++
	return w.Store.CreateComment(ctx, comment)
}

func (w *writeRecorder) DeleteComment(ctx context.Context, id string) error {
	w.writes++
	return w.Store.DeleteComment(ctx, id)
}

// capture collects every broadcast message the hub delivers.
type capture struct {
	messages []models.BroadcastMessage
}

func (c *capture) Send(data string) error {
	var msg models.BroadcastMessage
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		return err
	}
	c.messages = append(c.messages, msg)
	return nil
}

type fixture struct {
	registry *Registry
	store    *writeRecorder
	capture  *capture
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	recorder := &writeRecorder{Store: store.NewMemoryStore()}
	sink := &capture{}
	h := hub.New()
	h.Register(sink)

	registry := NewRegistry(nil, nil)
	toolset := NewToolset(recorder, h, nil)
	if err := toolset.RegisterAll(registry); err != nil {
		t.Fatal(err)
	}
	return &fixture{registry: registry, store: recorder, capture: sink}
}

func (f *fixture) seedEvent(t *testing.T, id, title string) {
	t.Helper()
	now := time.Now().UTC()
	err := f.store.CreateEvent(context.Background(), &models.Event{
		ID:          id,
		Title:       title,
		CreatedByID: "creator",
		Category:    models.CategoryMeetup,
		StartDate:   now.Add(time.Hour),
		EndDate:     now.Add(2 * time.Hour),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) seedGoodie(t *testing.T, id, name string) {
	t.Helper()
	now := time.Now().UTC()
	err := f.store.CreateGoodie(context.Background(), &models.Goodie{
		ID:          id,
		Name:        name,
		CreatedByID: "creator",
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func sessionContext(userID string) *RunContext {
	return NewRunContext(&models.Session{User: models.User{ID: userID}}, nil, nil)
}

func anonymousContext() *RunContext {
	return NewRunContext(nil, nil, nil)
}

func (f *fixture) execute(t *testing.T, rc *RunContext, tool, params string) map[string]any {
	t.Helper()
	result, err := f.registry.Execute(context.Background(), rc, tool, json.RawMessage(params))
	if err != nil {
		t.Fatalf("%s failed: %v", tool, err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content), &payload); err != nil {
		t.Fatalf("%s returned invalid JSON: %v", tool, err)
	}
	return payload
}

func assertErrorKind(t *testing.T, result *ToolResult, kind string) {
	t.Helper()
	if result == nil {
		t.Fatal("expected a tagged error result, got nil")
	}
	if !result.IsError {
		t.Fatalf("expected error result, got %s", result.Content)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(result.Content), &payload); err != nil {
		t.Fatalf("error result is not valid JSON: %v", err)
	}
	if payload["error"] != kind {
		t.Fatalf("got error %q, want %q", payload["error"], kind)
	}
}

func TestMutatingToolsRequireSession(t *testing.T) {
	cases := []struct {
		tool   string
		params string
	}{
		{"joinEvent", `{"eventId": "e1"}`},
		{"leaveEvent", `{"eventId": "e1"}`},
		{"voteGoodie", `{"goodieId": "g1", "value": 1}`},
		{"clearGoodieVote", `{"goodieId": "g1"}`},
		{"toggleCollectGoodie", `{"goodieId": "g1"}`},
		{"createComment", `{"eventId": "e1", "content": "hi"}`},
		{"deleteComment", `{"commentId": "c1"}`},
	}

	for _, tc := range cases {
		t.Run(tc.tool, func(t *testing.T) {
			f := newFixture(t)
			f.seedEvent(t, "e1", "Opening Party")
			f.seedGoodie(t, "g1", "Sticker")

			result, err := f.registry.Execute(context.Background(), anonymousContext(), tc.tool, json.RawMessage(tc.params))
			if err != nil {
				t.Fatal(err)
			}
			assertErrorKind(t, result, ErrAuthRequired)
			if f.store.writes != 0 {
				t.Fatalf("anonymous call performed %d store writes", f.store.writes)
			}
		})
	}
}

func TestVoteAggregateUnderRepeats(t *testing.T) {
	f := newFixture(t)
	f.seedGoodie(t, "g1", "Sticker")
	rc := sessionContext("u1")

	var last map[string]any
	for _, value := range []int{1, 1, -1, 1} {
		params, _ := json.Marshal(map[string]any{"goodieId": "g1", "value": value})
		last = f.execute(t, rc, "voteGoodie", string(params))
	}

	if got := last["userVote"].(float64); got != 1 {
		t.Errorf("final user vote %v, want 1", got)
	}
	if got := last["voteSum"].(float64); got != 1 {
		t.Errorf("vote sum %v, want 1 (latest vote only, no duplicate rows)", got)
	}

	// A second voter shifts the aggregate by exactly their latest vote.
	other := f.execute(t, sessionContext("u2"), "voteGoodie", `{"goodieId": "g1", "value": -1}`)
	if got := other["voteSum"].(float64); got != 0 {
		t.Errorf("vote sum with second voter %v, want 0", got)
	}

	// Every vote broadcast carries the post-write aggregate.
	var updates []models.BroadcastMessage
	for _, msg := range f.capture.messages {
		if msg.Type == models.BroadcastGoodieUpdated {
			updates = append(updates, msg)
		}
	}
	if len(updates) != 5 {
		t.Fatalf("got %d goodie_updated broadcasts, want 5", len(updates))
	}
	final := updates[len(updates)-1]
	if final.Goodie == nil || final.Goodie.VoteSum != 0 {
		t.Errorf("final broadcast aggregate %+v, want voteSum 0", final.Goodie)
	}
}

func TestClearVote(t *testing.T) {
	f := newFixture(t)
	f.seedGoodie(t, "g1", "Sticker")
	rc := sessionContext("u1")

	f.execute(t, rc, "voteGoodie", `{"goodieId": "g1", "value": 1}`)
	payload := f.execute(t, rc, "clearGoodieVote", `{"goodieId": "g1"}`)

	if got := payload["voteSum"].(float64); got != 0 {
		t.Errorf("vote sum after clear %v, want 0", got)
	}
	if got := payload["userVote"].(float64); got != 0 {
		t.Errorf("user vote after clear %v, want 0", got)
	}
}

func TestJoinThenLeaveScenario(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "e1", "Opening Party")
	rc := sessionContext("u1")

	joined := f.execute(t, rc, "joinEvent", `{"eventId": "e1"}`)
	if got := joined["attendees"].(float64); got != 1 {
		t.Fatalf("attendees after join %v, want 1", got)
	}

	// Joining twice must not inflate the count.
	again := f.execute(t, rc, "joinEvent", `{"eventId": "e1"}`)
	if got := again["attendees"].(float64); got != 1 {
		t.Fatalf("attendees after repeat join %v, want 1", got)
	}

	left := f.execute(t, rc, "leaveEvent", `{"eventId": "e1"}`)
	if got := left["attendees"].(float64); got != 0 {
		t.Fatalf("attendees after leave %v, want 0", got)
	}

	var counts []int
	for _, msg := range f.capture.messages {
		if msg.Type == models.BroadcastParticipantChanged {
			if msg.EventID != "e1" || msg.Attendees == nil {
				t.Fatalf("malformed participant_changed: %+v", msg)
			}
			counts = append(counts, *msg.Attendees)
		}
	}
	want := []int{1, 1, 0}
	if len(counts) != len(want) {
		t.Fatalf("got %d participant_changed broadcasts, want %d", len(counts), len(want))
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("broadcast %d carried attendees %d, want %d", i, counts[i], want[i])
		}
	}
}

func TestToggleCollectGoodie(t *testing.T) {
	f := newFixture(t)
	f.seedGoodie(t, "g1", "Sticker")
	rc := sessionContext("u1")

	first := f.execute(t, rc, "toggleCollectGoodie", `{"goodieId": "g1"}`)
	if first["collected"] != true {
		t.Fatalf("first toggle: %v", first)
	}
	if got := first["collectors"].(float64); got != 1 {
		t.Fatalf("collectors after first toggle %v, want 1", got)
	}

	second := f.execute(t, rc, "toggleCollectGoodie", `{"goodieId": "g1"}`)
	if second["collected"] != false {
		t.Fatalf("second toggle: %v", second)
	}
	if got := second["collectors"].(float64); got != 0 {
		t.Fatalf("collectors after second toggle %v, want 0", got)
	}

	var collects []models.BroadcastMessage
	for _, msg := range f.capture.messages {
		if msg.Type == models.BroadcastGoodieCollected {
			collects = append(collects, msg)
		}
	}
	if len(collects) != 2 {
		t.Fatalf("got %d goodie_collected broadcasts, want 2", len(collects))
	}
	if collects[0].UserID != "u1" || collects[0].Collected == nil || !*collects[0].Collected {
		t.Errorf("first collect broadcast: %+v", collects[0])
	}
	if collects[1].Collected == nil || *collects[1].Collected {
		t.Errorf("second collect broadcast: %+v", collects[1])
	}
}

func TestForbiddenCommentDelete(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "e1", "Opening Party")

	created := f.execute(t, sessionContext("u1"), "createComment", `{"eventId": "e1", "content": "see you there"}`)
	commentID := created["id"].(string)

	params, _ := json.Marshal(map[string]string{"commentId": commentID})
	result, err := f.registry.Execute(context.Background(), sessionContext("u2"), "deleteComment", params)
	if err != nil {
		t.Fatal(err)
	}
	assertErrorKind(t, result, ErrForbidden)

	if _, err := f.store.GetComment(context.Background(), commentID); err != nil {
		t.Fatalf("comment should remain after forbidden delete: %v", err)
	}

	// The author may delete it.
	own := f.execute(t, sessionContext("u1"), "deleteComment", string(params))
	if own["deleted"] != true {
		t.Fatalf("author delete: %v", own)
	}
}

func TestInformationLookupNotFound(t *testing.T) {
	f := newFixture(t)

	for _, tool := range []string{"getEventInformation", "getGoodieInformation"} {
		t.Run(tool, func(t *testing.T) {
			result, err := f.registry.Execute(context.Background(), anonymousContext(), tool, json.RawMessage(`{"id": "missing"}`))
			if err != nil {
				t.Fatal(err)
			}
			assertErrorKind(t, result, ErrNotFound)
		})
	}
}

func TestGetEventInformationPersonalization(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "e1", "Opening Party")
	f.execute(t, sessionContext("u1"), "joinEvent", `{"eventId": "e1"}`)

	t.Run("anonymous omits personalized fields", func(t *testing.T) {
		payload := f.execute(t, anonymousContext(), "getEventInformation", `{"id": "e1"}`)
		if _, present := payload["userJoined"]; present {
			t.Error("anonymous lookup carried userJoined")
		}
		if got := payload["attendees"].(float64); got != 1 {
			t.Errorf("attendees %v, want 1", got)
		}
	})

	t.Run("session decorates with membership", func(t *testing.T) {
		payload := f.execute(t, sessionContext("u1"), "getEventInformation", `{"id": "e1"}`)
		if payload["userJoined"] != true {
			t.Errorf("userJoined = %v, want true", payload["userJoined"])
		}
	})
}

func TestGetGoodieInformationPersonalization(t *testing.T) {
	f := newFixture(t)
	f.seedGoodie(t, "g1", "Sticker")
	f.execute(t, sessionContext("u1"), "voteGoodie", `{"goodieId": "g1", "value": -1}`)
	f.execute(t, sessionContext("u1"), "toggleCollectGoodie", `{"goodieId": "g1"}`)

	payload := f.execute(t, sessionContext("u1"), "getGoodieInformation", `{"id": "g1"}`)
	if got := payload["userVote"].(float64); got != -1 {
		t.Errorf("userVote %v, want -1", got)
	}
	if payload["userCollected"] != true {
		t.Errorf("userCollected = %v, want true", payload["userCollected"])
	}
	if got := payload["voteSum"].(float64); got != -1 {
		t.Errorf("voteSum %v, want -1", got)
	}
	if got := payload["collectors"].(float64); got != 1 {
		t.Errorf("collectors %v, want 1", got)
	}
}

func TestEventsAdvancedFilters(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "e1", "Morning Meetup")
	f.seedEvent(t, "e2", "Evening Signing")
	f.execute(t, sessionContext("u1"), "joinEvent", `{"eventId": "e2"}`)

	t.Run("joinedOnly anonymous refused", func(t *testing.T) {
		result, err := f.registry.Execute(context.Background(), anonymousContext(), "getEventsAdvanced", json.RawMessage(`{"joinedOnly": true}`))
		if err != nil {
			t.Fatal(err)
		}
		assertErrorKind(t, result, ErrAuthRequired)
	})

	t.Run("mineOnly anonymous refused", func(t *testing.T) {
		result, err := f.registry.Execute(context.Background(), anonymousContext(), "getEventsAdvanced", json.RawMessage(`{"mineOnly": true}`))
		if err != nil {
			t.Fatal(err)
		}
		assertErrorKind(t, result, ErrAuthRequired)
	})

	t.Run("joinedOnly with session", func(t *testing.T) {
		payload := f.execute(t, sessionContext("u1"), "getEventsAdvanced", `{"joinedOnly": true}`)
		events := payload["events"].([]any)
		if len(events) != 1 {
			t.Fatalf("got %d events, want 1", len(events))
		}
		entry := events[0].(map[string]any)
		if entry["id"] != "e2" {
			t.Errorf("got event %v, want e2", entry["id"])
		}
		if entry["joined"] != true {
			t.Errorf("joined flag = %v, want true", entry["joined"])
		}
	})

	t.Run("anonymous listing has no joined flag", func(t *testing.T) {
		payload := f.execute(t, anonymousContext(), "getEventsAdvanced", `{}`)
		for _, raw := range payload["events"].([]any) {
			entry := raw.(map[string]any)
			if _, present := entry["joined"]; present {
				t.Errorf("unfiltered listing carried joined flag: %v", entry)
			}
		}
	})

	t.Run("text search", func(t *testing.T) {
		payload := f.execute(t, anonymousContext(), "getEventsAdvanced", `{"search": "signing"}`)
		events := payload["events"].([]any)
		if len(events) != 1 {
			t.Fatalf("got %d events, want 1", len(events))
		}
	})
}

func TestMyEventsAndGoodies(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "e1", "Morning Meetup")
	f.seedGoodie(t, "g1", "Sticker")
	f.seedGoodie(t, "g2", "Tote Bag")
	rc := sessionContext("u1")
	f.execute(t, rc, "joinEvent", `{"eventId": "e1"}`)
	f.execute(t, rc, "toggleCollectGoodie", `{"goodieId": "g2"}`)

	events := f.execute(t, rc, "getMyEvents", `{}`)["events"].([]any)
	if len(events) != 1 {
		t.Fatalf("got %d joined events, want 1", len(events))
	}

	goodies := f.execute(t, rc, "getMyGoodies", `{}`)["goodies"].([]any)
	if len(goodies) != 1 {
		t.Fatalf("got %d collected goodies, want 1", len(goodies))
	}
	if goodies[0].(map[string]any)["id"] != "g2" {
		t.Errorf("collected goodie %v, want g2", goodies[0])
	}
}

func TestGetStats(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "e1", "Morning Meetup")
	f.seedGoodie(t, "g1", "Sticker")
	f.execute(t, sessionContext("u1"), "joinEvent", `{"eventId": "e1"}`)
	f.execute(t, sessionContext("u1"), "voteGoodie", `{"goodieId": "g1", "value": 1}`)

	payload := f.execute(t, anonymousContext(), "getStats", `{}`)
	checks := map[string]float64{"events": 1, "goodies": 1, "participants": 1, "votes": 1}
	for field, want := range checks {
		if got := payload[field].(float64); got != want {
			t.Errorf("%s = %v, want %v", field, got, want)
		}
	}
}

func TestResolveGoodieThroughRegistry(t *testing.T) {
	f := newFixture(t)
	f.seedGoodie(t, "g1", "Sticker Pack")
	f.seedGoodie(t, "g2", "Sticker")
	f.seedGoodie(t, "g3", "Free Sticker Pack")

	payload := f.execute(t, anonymousContext(), "resolveGoodie", `{"query": "Sticker"}`)
	matches := payload["matches"].([]any)
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	if matches[0].(map[string]any)["id"] != "g2" {
		t.Errorf("best match %v, want exact match g2", matches[0])
	}
}

func TestRegistryValidation(t *testing.T) {
	f := newFixture(t)
	f.seedGoodie(t, "g1", "Sticker")

	t.Run("missing required field", func(t *testing.T) {
		result, err := f.registry.Execute(context.Background(), sessionContext("u1"), "voteGoodie", json.RawMessage(`{"goodieId": "g1"}`))
		if err != nil {
			t.Fatal(err)
		}
		assertErrorKind(t, result, ErrInvalidInput)
		if f.store.writes != 0 {
			t.Fatal("invalid input reached the store")
		}
	})

	t.Run("wrong enum value", func(t *testing.T) {
		result, err := f.registry.Execute(context.Background(), sessionContext("u1"), "voteGoodie", json.RawMessage(`{"goodieId": "g1", "value": 2}`))
		if err != nil {
			t.Fatal(err)
		}
		assertErrorKind(t, result, ErrInvalidInput)
	})

	t.Run("unknown tool", func(t *testing.T) {
		result, err := f.registry.Execute(context.Background(), anonymousContext(), "launchFireworks", json.RawMessage(`{}`))
		if err != nil {
			t.Fatal(err)
		}
		assertErrorKind(t, result, ErrInvalidInput)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		result, err := f.registry.Execute(context.Background(), anonymousContext(), "getStats", json.RawMessage(`{`))
		if err != nil {
			t.Fatal(err)
		}
		assertErrorKind(t, result, ErrInvalidInput)
	})
}
