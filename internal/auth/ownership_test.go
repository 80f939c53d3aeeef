package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/saas-backend/internal/domain"
	apperrors "github.com/spec-kit/saas-backend/pkg/util"
)

type note struct {
	ID      string
	OwnerID string
}

type fakeNoteLookup struct {
	notes map[string]note
	calls int
}

func (f *fakeNoteLookup) FindResource(_ context.Context, id string) (note, error) {
	f.calls++
	n, ok := f.notes[id]
	if !ok {
		return note{}, apperrors.NewNotFound("note", nil)
	}
	return n, nil
}

func newGuardApp(lookup *fakeNoteLookup, principal *Principal) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code, "details": de.Details})
		},
	})

	attach := func(c *fiber.Ctx) error {
		if principal != nil {
			setPrincipal(c, principal)
		}
		return c.Next()
	}
	guard := RequireOwnership[note](lookup, func(n note) string { return n.OwnerID })
	okHandler := func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) }

	app.Get("/notes/:id", attach, guard, okHandler)
	app.Get("/notes", attach, guard, okHandler)
	return app
}

func doGuardRequest(t *testing.T, app *fiber.App, path string) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestOwnershipGuard_OwnerAllowed(t *testing.T) {
	t.Parallel()

	lookup := &fakeNoteLookup{notes: map[string]note{"n1": {ID: "n1", OwnerID: "alice"}}}
	app := newGuardApp(lookup, &Principal{ID: "alice", Role: domain.RoleUser})

	if status := doGuardRequest(t, app, "/notes/n1"); status != http.StatusOK {
		t.Fatalf("owner request: got %d, want 200", status)
	}
}

func TestOwnershipGuard_NonOwnerForbidden(t *testing.T) {
	t.Parallel()

	lookup := &fakeNoteLookup{notes: map[string]note{"n1": {ID: "n1", OwnerID: "alice"}}}
	app := newGuardApp(lookup, &Principal{ID: "bob", Role: domain.RoleUser})

	if status := doGuardRequest(t, app, "/notes/n1"); status != http.StatusForbidden {
		t.Fatalf("non-owner request: got %d, want 403", status)
	}
}

func TestOwnershipGuard_AdminBypassesOwnership(t *testing.T) {
	t.Parallel()

	lookup := &fakeNoteLookup{notes: map[string]note{"n1": {ID: "n1", OwnerID: "alice"}}}
	app := newGuardApp(lookup, &Principal{ID: "root", Role: domain.RoleAdmin})

	if status := doGuardRequest(t, app, "/notes/n1"); status != http.StatusOK {
		t.Fatalf("admin request: got %d, want 200", status)
	}
	if lookup.calls != 0 {
		t.Fatalf("admin bypass must not hit the store, got %d lookups", lookup.calls)
	}
}

func TestOwnershipGuard_MissingResourceID(t *testing.T) {
	t.Parallel()

	lookup := &fakeNoteLookup{notes: map[string]note{}}
	app := newGuardApp(lookup, &Principal{ID: "alice", Role: domain.RoleUser})

	if status := doGuardRequest(t, app, "/notes"); status != http.StatusForbidden {
		t.Fatalf("missing id: got %d, want 403", status)
	}
	if lookup.calls != 0 {
		t.Fatalf("missing id must fail before any store lookup, got %d lookups", lookup.calls)
	}
}

func TestOwnershipGuard_ResourceNotFound(t *testing.T) {
	t.Parallel()

	lookup := &fakeNoteLookup{notes: map[string]note{}}
	app := newGuardApp(lookup, &Principal{ID: "alice", Role: domain.RoleUser})

	if status := doGuardRequest(t, app, "/notes/missing"); status != http.StatusNotFound {
		t.Fatalf("absent resource: got %d, want 404", status)
	}
}

func TestOwnershipGuard_NoPrincipal(t *testing.T) {
	t.Parallel()

	lookup := &fakeNoteLookup{notes: map[string]note{"n1": {ID: "n1", OwnerID: "alice"}}}
	app := newGuardApp(lookup, nil)

	if status := doGuardRequest(t, app, "/notes/n1"); status != http.StatusUnauthorized {
		t.Fatalf("no principal: got %d, want 401", status)
	}
}
