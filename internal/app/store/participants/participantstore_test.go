package participantstore_test

import (
	"testing"
	"time"

	participantstore "github.com/dalemusser/attesthub/internal/app/store/participants"
	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/domain/models"
	"github.com/dalemusser/attesthub/internal/testutil"
)

func TestReplaceAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := participantstore.New(db)

	doc := models.EngagementParticipants{
		EngagementID: "eng-001",
		Participants: []models.Participant{{
			UserID:   "u1",
			FullName: "Ada Kessler",
			Email:    "ada@example.com",
			Roles:    []string{"leadAuditor"},
			Status:   "active",
			JoinedAt: time.Now().UTC(),
		}},
		RebuiltAt: time.Now().UTC(),
	}
	if err := store.Replace(ctx, doc); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := store.Get(ctx, "eng-001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Participants) != 1 || got.Participants[0].UserID != "u1" {
		t.Errorf("participants: got %+v", got.Participants)
	}

	// Replace swaps the whole document; the old row set is gone.
	doc.Participants = []models.Participant{{UserID: "u2", FullName: "Ben Okafor", Status: "active"}}
	if err := store.Replace(ctx, doc); err != nil {
		t.Fatalf("second Replace: %v", err)
	}
	got, err = store.Get(ctx, "eng-001")
	if err != nil {
		t.Fatalf("Get after replace: %v", err)
	}
	if len(got.Participants) != 1 || got.Participants[0].UserID != "u2" {
		t.Errorf("participants after replace: got %+v", got.Participants)
	}
}

func TestGet_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := participantstore.New(db)

	if _, err := store.Get(ctx, "eng-404"); !apperr.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestCountRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := participantstore.New(db)

	if err := store.Replace(ctx, models.EngagementParticipants{
		EngagementID: "eng-001",
		Participants: []models.Participant{{UserID: "u1"}, {UserID: "u2"}},
	}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := store.Replace(ctx, models.EngagementParticipants{
		EngagementID: "eng-002",
		Participants: []models.Participant{{UserID: "u3"}},
	}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	n, err := store.CountRows(ctx)
	if err != nil {
		t.Fatalf("CountRows: %v", err)
	}
	if n != 3 {
		t.Errorf("CountRows: got %d, want 3", n)
	}
}

func TestDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := participantstore.New(db)

	if err := store.Replace(ctx, models.EngagementParticipants{EngagementID: "eng-001"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := store.Delete(ctx, "eng-001"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "eng-001"); !apperr.IsNotFound(err) {
		t.Errorf("expected NotFoundError after delete, got %v", err)
	}
}
