package store

import (
	"errors"
	"testing"
)

func TestSessionRepository_Create(t *testing.T) {
	repo := newTestStore(t).Sessions()

	sess := &Session{Width: 1000, Height: 800}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("Create should assign an ID")
	}
	if sess.StartedAt.IsZero() {
		t.Error("StartedAt should be set after create")
	}

	got, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Width != 1000 || got.Height != 800 {
		t.Errorf("size = %dx%d, want 1000x800", got.Width, got.Height)
	}
	if got.EndedAt != nil {
		t.Error("a new session should not have ended")
	}
}

func TestSessionRepository_CreateKeepsID(t *testing.T) {
	repo := newTestStore(t).Sessions()

	sess := &Session{ID: "fixed", Width: 1, Height: 1}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.ID != "fixed" {
		t.Errorf("ID = %q, want %q", sess.ID, "fixed")
	}
	if err := repo.Create(&Session{ID: "fixed"}); err == nil {
		t.Error("duplicate ID should fail")
	}
}

func TestSessionRepository_Finish(t *testing.T) {
	repo := newTestStore(t).Sessions()
	sess := &Session{Width: 10, Height: 10}
	repo.Create(sess)

	if err := repo.Finish(sess.ID, 1234); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	got, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Ticks != 1234 {
		t.Errorf("Ticks = %d, want 1234", got.Ticks)
	}
	if got.EndedAt == nil {
		t.Error("EndedAt should be set after finish")
	}

	if err := repo.Finish("missing", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Finish(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_GetByIDNotFound(t *testing.T) {
	repo := newTestStore(t).Sessions()

	if _, err := repo.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	repo := newTestStore(t).Sessions()

	ids := make([]string, 3)
	for i := range ids {
		sess := &Session{Width: 10, Height: 10}
		if err := repo.Create(sess); err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids[i] = sess.ID
	}

	all, err := repo.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List returned %d sessions, want 3", len(all))
	}
	if all[0].ID != ids[2] {
		t.Errorf("newest session should be first, got %q want %q", all[0].ID, ids[2])
	}

	limited, err := repo.List(2)
	if err != nil {
		t.Fatalf("List(2): %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d sessions", len(limited))
	}
}

func TestSessionRepository_Events(t *testing.T) {
	repo := newTestStore(t).Sessions()
	sess := &Session{Width: 10, Height: 10}
	repo.Create(sess)

	events := []PinchEvent{
		{SessionID: sess.ID, Hand: "RIGHT", Pinched: true, Tick: 7, X: 1, Y: 2},
		{SessionID: sess.ID, Hand: "LEFT", Pinched: true, Tick: 3, X: 3, Y: 4},
		{SessionID: sess.ID, Hand: "RIGHT", Pinched: false, Tick: 12, X: 5, Y: 6},
	}
	if err := repo.AddEvents(events); err != nil {
		t.Fatalf("AddEvents: %v", err)
	}
	if err := repo.AddEvents(nil); err != nil {
		t.Errorf("AddEvents(nil): %v", err)
	}

	got, err := repo.Events(sess.ID)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Events returned %d, want 3", len(got))
	}
	if got[0].Tick != 3 || got[0].Hand != "LEFT" {
		t.Errorf("events should be in tick order, first = %+v", got[0])
	}
	if got[2].Pinched {
		t.Error("last event should be a release")
	}
	if got[1].X != 1 || got[1].Y != 2 {
		t.Errorf("position = (%v, %v), want (1, 2)", got[1].X, got[1].Y)
	}
}

func TestSessionRepository_EventsConstraints(t *testing.T) {
	repo := newTestStore(t).Sessions()

	err := repo.AddEvents([]PinchEvent{{SessionID: "ghost", Hand: "LEFT", Tick: 1}})
	if err == nil {
		t.Error("events for an unknown session should violate the foreign key")
	}

	sess := &Session{Width: 10, Height: 10}
	repo.Create(sess)
	err = repo.AddEvents([]PinchEvent{{SessionID: sess.ID, Hand: "MIDDLE", Tick: 1}})
	if err == nil {
		t.Error("unknown hand label should be rejected")
	}
}

func TestSessionRepository_DeleteCascades(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()
	sess := &Session{Width: 10, Height: 10}
	repo.Create(sess)
	repo.AddEvents([]PinchEvent{{SessionID: sess.ID, Hand: "LEFT", Pinched: true, Tick: 1}})

	if err := repo.Delete(sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var count int
	s.DB().QueryRow("SELECT COUNT(*) FROM pinch_events").Scan(&count)
	if count != 0 {
		t.Errorf("events should cascade on delete, %d left", count)
	}
	if err := repo.Delete(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}
