package sim

import (
	"image"
	"testing"

	"imgbind/data"
)

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 1, 1))
}

type captured struct {
	images []image.Image
	errors []error
}

func (c *captured) start(s *Session) {
	s.Start(
		func(img image.Image, meta *data.ResponseMeta) { c.images = append(c.images, img) },
		func(err error, meta *data.ResponseMeta) { c.errors = append(c.errors, err) },
	)
}

func TestRegistryMatchesBySubstring(t *testing.T) {
	r := NewRegistry()
	r.Simulate("35px.jpg")

	if _, ok := r.SessionFor("http://site.com/images/35px.jpg"); !ok {
		t.Fatalf("expected substring match")
	}
	if _, ok := r.SessionFor("http://site.com/images/90px.jpg"); ok {
		t.Fatalf("unexpected match")
	}
	// Matching is case-sensitive.
	if _, ok := r.SessionFor("http://site.com/images/35PX.JPG"); ok {
		t.Fatalf("case-insensitive match not wanted")
	}
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	r.Simulate("a.png")
	r.Clear()
	if _, ok := r.SessionFor("http://x.com/a.png"); ok {
		t.Fatalf("rule survived Clear")
	}
}

func TestAutorespondWithImageFiresAtStart(t *testing.T) {
	r := NewRegistry()
	img := testImage()
	r.AutorespondWithImage("a.png", img)

	s, ok := r.SessionFor("http://x.com/a.png")
	if !ok {
		t.Fatalf("expected match")
	}

	var c captured
	c.start(s)
	if len(c.images) != 1 || c.images[0] != img {
		t.Fatalf("auto-response not delivered synchronously: %+v", c)
	}
	if len(c.errors) != 0 {
		t.Fatalf("unexpected errors: %v", c.errors)
	}
}

func TestAutorespondWithNilErrorBecomesSimulated(t *testing.T) {
	r := NewRegistry()
	r.AutorespondWithError("a.png", nil, nil)

	s, _ := r.SessionFor("http://x.com/a.png")
	var c captured
	c.start(s)
	if len(c.errors) != 1 {
		t.Fatalf("expected one error, got %+v", c)
	}
	if !data.IsKind(c.errors[0], data.SimulatedError) {
		t.Fatalf("expected SimulatedError, got %v", c.errors[0])
	}
}

func TestLastMatchingAutoresponseWins(t *testing.T) {
	r := NewRegistry()
	first := testImage()
	second := testImage()
	r.AutorespondWithImage("site.com", first)
	r.AutorespondWithImage("a.png", second)

	s, _ := r.SessionFor("http://site.com/a.png")
	var c captured
	c.start(s)
	if len(c.images) != 1 || c.images[0] != second {
		t.Fatalf("expected the later rule's image, got %+v", c)
	}
}

func TestManualRespondBroadcastsToSpawnedSessions(t *testing.T) {
	r := NewRegistry()
	rule := r.Simulate("a.png")

	s1, _ := r.SessionFor("http://x.com/a.png")
	s2, _ := r.SessionFor("http://y.com/a.png")
	var c1, c2 captured
	c1.start(s1)
	c2.start(s2)

	img := testImage()
	rule.RespondWithImage(img)

	if len(c1.images) != 1 || len(c2.images) != 1 {
		t.Fatalf("broadcast missed a session: %+v %+v", c1, c2)
	}
}

func TestSessionAttachedToAllMatchingRules(t *testing.T) {
	r := NewRegistry()
	ruleA := r.Simulate("site.com")
	ruleB := r.Simulate("a.png")

	s, _ := r.SessionFor("http://site.com/a.png")
	var c captured
	c.start(s)

	ruleA.RespondWithError(nil, nil)
	if len(c.errors) != 1 {
		t.Fatalf("first rule's response not delivered: %+v", c)
	}
	// The second rule reaches the same session, but the outcome is spent.
	ruleB.RespondWithImage(testImage())
	if len(c.images) != 0 || len(c.errors) != 1 {
		t.Fatalf("second outcome delivered: %+v", c)
	}
}

func TestRespondBeforeStartIsQueued(t *testing.T) {
	r := NewRegistry()
	r.Simulate("a.png")

	s, _ := r.SessionFor("http://x.com/a.png")
	img := testImage()
	s.RespondWithImage(img)

	var c captured
	c.start(s)
	if len(c.images) != 1 || c.images[0] != img {
		t.Fatalf("queued outcome not delivered at Start: %+v", c)
	}
}

func TestOnlyFirstOutcomeDelivered(t *testing.T) {
	r := NewRegistry()
	r.Simulate("a.png")

	s, _ := r.SessionFor("http://x.com/a.png")
	var c captured
	c.start(s)

	s.RespondWithImage(testImage())
	s.RespondWithImage(testImage())
	s.RespondWithError(nil, nil)

	if len(c.images) != 1 || len(c.errors) != 0 {
		t.Fatalf("more than one outcome delivered: %+v", c)
	}
}

func TestCancelMakesSessionInert(t *testing.T) {
	r := NewRegistry()
	r.Simulate("a.png")

	s, _ := r.SessionFor("http://x.com/a.png")
	var c captured
	c.start(s)
	s.Cancel()

	s.RespondWithImage(testImage())
	s.RespondWithError(nil, nil)
	if len(c.images) != 0 || len(c.errors) != 0 {
		t.Fatalf("cancelled session delivered an outcome: %+v", c)
	}
}

func TestCancelDropsQueuedAutoresponse(t *testing.T) {
	r := NewRegistry()
	r.AutorespondWithImage("a.png", testImage())

	s, _ := r.SessionFor("http://x.com/a.png")
	s.Cancel()

	var c captured
	c.start(s)
	if len(c.images) != 0 || len(c.errors) != 0 {
		t.Fatalf("cancel did not drop the queued outcome: %+v", c)
	}
}
