package activitymap_test

import (
	"testing"
	"time"

	auth "github.com/goliatone/go-task-auth"
	"github.com/goliatone/go-task-auth/activitymap"
)

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	event := auth.ActivityEvent{
		EventType: auth.ActivityEventLogoutAll,
		UserID:    "user-100",
		Metadata: map[string]any{
			"revoked": 3,
		},
		OccurredAt: ts,
	}

	out := activitymap.Normalize(event)

	if out.ActorID != "user-100" {
		t.Fatalf("expected actor_id user-100, got %q", out.ActorID)
	}
	if out.Verb != string(auth.ActivityEventLogoutAll) {
		t.Fatalf("expected verb %q, got %q", auth.ActivityEventLogoutAll, out.Verb)
	}
	if out.ObjectType != "user" {
		t.Fatalf("expected object_type user, got %q", out.ObjectType)
	}
	if out.ObjectID != "user-100" {
		t.Fatalf("expected object_id user-100, got %q", out.ObjectID)
	}
	if out.Channel != "auth" {
		t.Fatalf("expected channel auth, got %q", out.Channel)
	}
	if !out.OccurredAt.Equal(ts) {
		t.Fatalf("expected occurred_at %v, got %v", ts, out.OccurredAt)
	}
	if out.Metadata["revoked"] != 3 {
		t.Fatalf("expected metadata revoked 3, got %#v", out.Metadata["revoked"])
	}
	if _, ok := out.Metadata[activitymap.MetadataKeyOutcome]; ok {
		t.Fatalf("did not expect an outcome for %q", out.Verb)
	}
}

func TestNormalizeLoginFailureUsesActorFallback(t *testing.T) {
	t.Parallel()

	event := auth.ActivityEvent{
		EventType: auth.ActivityEventLoginFailure,
		Metadata: map[string]any{
			activitymap.MetadataKeyIdentifier: "ghost@example.com",
		},
	}

	out := activitymap.Normalize(event)

	if out.ActorID != "anonymous" {
		t.Fatalf("expected actor_id anonymous, got %q", out.ActorID)
	}
	if out.ObjectID != "" {
		t.Fatalf("expected empty object_id, got %q", out.ObjectID)
	}
	if out.Metadata[activitymap.MetadataKeyOutcome] != "failure" {
		t.Fatalf("expected outcome failure, got %#v", out.Metadata[activitymap.MetadataKeyOutcome])
	}
	if out.Metadata[activitymap.MetadataKeyIdentifier] != "ghost@example.com" {
		t.Fatalf("expected identifier to be preserved, got %#v", out.Metadata[activitymap.MetadataKeyIdentifier])
	}
	if out.OccurredAt.IsZero() {
		t.Fatal("expected occurred_at to be defaulted")
	}
}

func TestNormalizeOptions(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	event := auth.ActivityEvent{EventType: auth.ActivityEventLoginSuccess}

	out := activitymap.Normalize(event,
		activitymap.WithDefaultChannel(" http "),
		activitymap.WithDefaultObjectType("account"),
		activitymap.WithActorFallback("system"),
		activitymap.WithClock(func() time.Time { return fixed }),
		nil,
	)

	if out.Channel != "http" {
		t.Fatalf("expected channel http, got %q", out.Channel)
	}
	if out.ObjectType != "account" {
		t.Fatalf("expected object_type account, got %q", out.ObjectType)
	}
	if out.ActorID != "system" {
		t.Fatalf("expected actor_id system, got %q", out.ActorID)
	}
	if !out.OccurredAt.Equal(fixed) {
		t.Fatalf("expected occurred_at %v, got %v", fixed, out.OccurredAt)
	}
	if out.Metadata[activitymap.MetadataKeyOutcome] != "success" {
		t.Fatalf("expected outcome success, got %#v", out.Metadata[activitymap.MetadataKeyOutcome])
	}
}

func TestNormalizeDoesNotMutateEvent(t *testing.T) {
	t.Parallel()

	meta := map[string]any{"fields": []string{"name"}}
	event := auth.ActivityEvent{EventType: auth.ActivityEventLoginSuccess, UserID: "u", Metadata: meta}

	out := activitymap.Normalize(event)
	out.Metadata["extra"] = true

	if _, ok := meta["extra"]; ok {
		t.Fatal("normalized metadata must not alias the event metadata")
	}
	if _, ok := meta[activitymap.MetadataKeyOutcome]; ok {
		t.Fatal("outcome must not be written into the event metadata")
	}
}
