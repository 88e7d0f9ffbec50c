package service

import (
	"context"
	"errors"
	"image"
	"testing"

	"imgbind/bind"
	"imgbind/data"
	"imgbind/internal/recorder"
	"imgbind/internal/repo"
)

func newTestService(t *testing.T) (Fetch, *bind.Env, *repo.InMemoryFetchRepo, chan recorder.Outcome) {
	t.Helper()
	env := bind.NewEnv()
	r := repo.NewInMemoryFetchRepo()
	out := make(chan recorder.Outcome, 8)
	return NewFetch(nil, r, env, out), env, r, out
}

func drain(out chan recorder.Outcome) []recorder.Outcome {
	var got []recorder.Outcome
	for {
		select {
		case o := <-out:
			got = append(got, o)
		default:
			return got
		}
	}
}

func TestSubmitInvalidURL(t *testing.T) {
	svc, _, r, _ := newTestService(t)
	for _, bad := range []string{"", "   ", "not a url", "/relative"} {
		if _, err := svc.Submit(context.Background(), bad); !data.IsKind(err, data.InvalidURLString) {
			t.Fatalf("%q: expected InvalidURLString, got %v", bad, err)
		}
	}
	if list, _ := r.List(context.Background()); len(list) != 0 {
		t.Fatalf("rejected submissions left records behind")
	}
}

func TestSubmitSimulatedSuccess(t *testing.T) {
	svc, env, _, out := newTestService(t)
	env.Sim.AutorespondWithImage("a.png", image.NewRGBA(image.Rect(0, 0, 8, 6)))

	rec, err := svc.Submit(context.Background(), "http://x.com/a.png")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if rec.Status != repo.StatusPending {
		t.Fatalf("submitted record status = %s", rec.Status)
	}

	// The simulated session resolves synchronously inside Submit.
	got := drain(out)
	if len(got) != 2 {
		t.Fatalf("outcomes = %+v", got)
	}
	if got[0].Kind != data.EventRequestSent {
		t.Fatalf("first outcome = %s", got[0].Kind)
	}
	if got[1].Kind != data.EventResponseSuccess || got[1].RecordID != rec.ID {
		t.Fatalf("second outcome = %+v", got[1])
	}
	if got[1].Width != 8 || got[1].Height != 6 {
		t.Fatalf("dimensions = %dx%d", got[1].Width, got[1].Height)
	}

	// The session already finished, so there is nothing left to cancel.
	if err := svc.Cancel(context.Background(), rec.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("Cancel after completion = %v", err)
	}
}

func TestSubmitSimulatedError(t *testing.T) {
	svc, env, _, out := newTestService(t)
	env.Sim.AutorespondWithError("a.png", nil, nil)

	rec, err := svc.Submit(context.Background(), "http://x.com/a.png")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	got := drain(out)
	if len(got) != 2 || got[1].Kind != data.EventResponseError {
		t.Fatalf("outcomes = %+v", got)
	}
	if !data.IsKind(got[1].Err, data.SimulatedError) {
		t.Fatalf("err = %v", got[1].Err)
	}
	if got[1].RecordID != rec.ID {
		t.Fatalf("outcome for wrong record: %+v", got[1])
	}
}

func TestCancelInFlight(t *testing.T) {
	svc, env, _, out := newTestService(t)
	// A rule with no auto-response keeps the session pending.
	env.Sim.Simulate("a.png")

	rec, err := svc.Submit(context.Background(), "http://x.com/a.png")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	drain(out)

	if err := svc.Cancel(context.Background(), rec.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	got := drain(out)
	if len(got) != 1 || got[0].Kind != data.EventRequestCancelled || got[0].RecordID != rec.ID {
		t.Fatalf("outcomes = %+v", got)
	}

	if err := svc.Cancel(context.Background(), rec.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("second Cancel = %v", err)
	}
}

func TestListAndGet(t *testing.T) {
	svc, env, _, _ := newTestService(t)
	env.Sim.AutorespondWithImage("a.png", image.NewRGBA(image.Rect(0, 0, 1, 1)))

	rec, _ := svc.Submit(context.Background(), "http://x.com/a.png")

	list, err := svc.List(context.Background())
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}
	got, err := svc.Get(context.Background(), rec.ID)
	if err != nil || got.URL != "http://x.com/a.png" {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("Get missing = %v", err)
	}
}
