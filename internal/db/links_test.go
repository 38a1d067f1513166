package db_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"shortlinks/internal/db"
	"shortlinks/internal/models"
	"shortlinks/internal/testutil"
)

func TestListOptionsNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   db.ListOptions
		want db.ListOptions
		ok   bool
	}{
		{
			name: "empty defaults",
			in:   db.ListOptions{},
			want: db.ListOptions{Page: 1, PerPage: 20, SortBy: "created_at", Order: "desc"},
			ok:   true,
		},
		{
			name: "negative page clamped",
			in:   db.ListOptions{Page: -3, PerPage: 10, SortBy: "click_count", Order: "asc"},
			want: db.ListOptions{Page: 1, PerPage: 10, SortBy: "click_count", Order: "asc"},
			ok:   true,
		},
		{
			name: "per_page capped",
			in:   db.ListOptions{Page: 2, PerPage: 500, SortBy: "short_code", Order: "asc"},
			want: db.ListOptions{Page: 2, PerPage: 100, SortBy: "short_code", Order: "asc"},
			ok:   true,
		},
		{
			name: "unknown sort column rejected",
			in:   db.ListOptions{SortBy: "password_hash"},
			ok:   false,
		},
		{
			name: "unknown order rejected",
			in:   db.ListOptions{SortBy: "created_at", Order: "sideways"},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.in
			ok := opts.Normalize()
			if ok != tt.ok {
				t.Fatalf("Normalize() = %v, want %v", ok, tt.ok)
			}
			if tt.ok && opts != tt.want {
				t.Errorf("normalized = %+v, want %+v", opts, tt.want)
			}
		})
	}
}

func TestCreateLinkDuplicateCode(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner, _ := testutil.CreatePrincipal(t, database, models.RoleUser, "alice", "Password1")
	testutil.CreateLink(t, database, owner, "abc123", "https://example.com", true, nil)

	dup := &models.Link{
		Code:        "abc123",
		Destination: "https://example.org",
		UserID:      owner.ID,
		Permanent:   true,
	}
	err := database.CreateLink(ctx, dup)
	if !errors.Is(err, db.ErrDuplicateCode) {
		t.Fatalf("CreateLink() error = %v, want ErrDuplicateCode", err)
	}
}

func TestCodeExists(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner, _ := testutil.CreatePrincipal(t, database, models.RoleUser, "alice", "Password1")
	testutil.CreateLink(t, database, owner, "abc123", "https://example.com", true, nil)

	exists, err := database.CodeExists(ctx, "abc123")
	if err != nil || !exists {
		t.Errorf("CodeExists(abc123) = %v, %v; want true, nil", exists, err)
	}
	exists, err = database.CodeExists(ctx, "zzz999")
	if err != nil || exists {
		t.Errorf("CodeExists(zzz999) = %v, %v; want false, nil", exists, err)
	}
}

func TestRecordAccessConcurrent(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner, _ := testutil.CreatePrincipal(t, database, models.RoleUser, "alice", "Password1")
	link := testutil.CreateLink(t, database, owner, "abc123", "https://example.com", true, nil)

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- database.RecordAccess(ctx, link.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("RecordAccess() error = %v", err)
		}
	}

	got, err := database.GetLinkByCode(ctx, "abc123")
	if err != nil {
		t.Fatalf("GetLinkByCode() error = %v", err)
	}
	// Every concurrent access must land; no lost updates.
	if got.ClickCount != n {
		t.Errorf("ClickCount = %d, want %d", got.ClickCount, n)
	}
	if got.LastAccessed == nil {
		t.Error("LastAccessed not stamped")
	}
}

func TestRecordAccessMissingLink(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	owner, _ := testutil.CreatePrincipal(t, database, models.RoleUser, "alice", "Password1")
	link := testutil.CreateLink(t, database, owner, "abc123", "https://example.com", true, nil)

	ctx := context.Background()
	if err := database.DeleteLinkByCodeForUser(ctx, "abc123", owner.ID); err != nil {
		t.Fatalf("DeleteLinkByCodeForUser() error = %v", err)
	}

	err := database.RecordAccess(ctx, link.ID)
	if !errors.Is(err, db.ErrLinkNotFound) {
		t.Fatalf("RecordAccess() error = %v, want ErrLinkNotFound", err)
	}
}

func TestGetLinksByUserPagination(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner, _ := testutil.CreatePrincipal(t, database, models.RoleUser, "alice", "Password1")
	other, _ := testutil.CreatePrincipal(t, database, models.RoleUser, "mallory", "Password1")

	for i := 0; i < 7; i++ {
		testutil.CreateLink(t, database, owner,
			fmt.Sprintf("mine%02d", i), "https://example.com", true, nil)
	}
	testutil.CreateLink(t, database, other, "theirs1", "https://example.net", true, nil)

	opts := db.ListOptions{Page: 2, PerPage: 3, SortBy: "short_code", Order: "asc"}
	if !opts.Normalize() {
		t.Fatal("options did not normalize")
	}

	links, total, err := database.GetLinksByUser(ctx, owner.ID, opts)
	if err != nil {
		t.Fatalf("GetLinksByUser() error = %v", err)
	}
	if total != 7 {
		t.Errorf("total = %d, want 7 (other users' links must not count)", total)
	}
	if len(links) != 3 {
		t.Fatalf("page size = %d, want 3", len(links))
	}
	if links[0].Code != "mine03" {
		t.Errorf("page 2 starts at %q, want mine03", links[0].Code)
	}
	for _, l := range links {
		if l.UserID != owner.ID {
			t.Errorf("link %q belongs to someone else", l.Code)
		}
	}
}

func TestGetLinksByUserSortByClicks(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner, _ := testutil.CreatePrincipal(t, database, models.RoleUser, "alice", "Password1")
	quiet := testutil.CreateLink(t, database, owner, "quiet1", "https://example.com", true, nil)
	busy := testutil.CreateLink(t, database, owner, "busy01", "https://example.com", true, nil)
	_ = quiet

	for i := 0; i < 3; i++ {
		if err := database.RecordAccess(ctx, busy.ID); err != nil {
			t.Fatalf("RecordAccess() error = %v", err)
		}
	}

	opts := db.ListOptions{SortBy: "click_count", Order: "desc"}
	opts.Normalize()
	links, _, err := database.GetLinksByUser(ctx, owner.ID, opts)
	if err != nil {
		t.Fatalf("GetLinksByUser() error = %v", err)
	}
	if len(links) != 2 || links[0].Code != "busy01" {
		t.Errorf("most-clicked first: got %+v", links)
	}
}

func TestGetAllLinks(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	alice, _ := testutil.CreatePrincipal(t, database, models.RoleUser, "alice", "Password1")
	mallory, _ := testutil.CreatePrincipal(t, database, models.RoleUser, "mallory", "Password1")
	testutil.CreateLink(t, database, alice, "abc123", "https://example.com", true, nil)
	testutil.CreateLink(t, database, mallory, "def456", "https://example.org", true, nil)

	opts := db.ListOptions{}
	opts.Normalize()
	links, total, err := database.GetAllLinks(ctx, opts)
	if err != nil {
		t.Fatalf("GetAllLinks() error = %v", err)
	}
	if total != 2 || len(links) != 2 {
		t.Errorf("total = %d, page = %d; want 2, 2", total, len(links))
	}
}

func TestDeleteLinkByCodeForUser(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner, _ := testutil.CreatePrincipal(t, database, models.RoleUser, "alice", "Password1")
	intruder, _ := testutil.CreatePrincipal(t, database, models.RoleUser, "mallory", "Password1")
	testutil.CreateLink(t, database, owner, "abc123", "https://example.com", true, nil)

	// Someone else's code deletes nothing.
	err := database.DeleteLinkByCodeForUser(ctx, "abc123", intruder.ID)
	if !errors.Is(err, db.ErrLinkNotFound) {
		t.Fatalf("foreign delete error = %v, want ErrLinkNotFound", err)
	}

	if err := database.DeleteLinkByCodeForUser(ctx, "abc123", owner.ID); err != nil {
		t.Fatalf("owner delete error = %v", err)
	}
	_, err = database.GetLinkByCode(ctx, "abc123")
	if !errors.Is(err, db.ErrLinkNotFound) {
		t.Fatalf("link survived deletion: %v", err)
	}
}

func TestDeleteExpiredLinks(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner, _ := testutil.CreatePrincipal(t, database, models.RoleUser, "alice", "Password1")
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	testutil.CreateLink(t, database, owner, "old001", "https://example.com", false, &past)
	testutil.CreateLink(t, database, owner, "new001", "https://example.com", false, &future)
	testutil.CreateLink(t, database, owner, "perm01", "https://example.com", true, nil)

	deleted, err := database.DeleteExpiredLinks(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredLinks() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	if _, err := database.GetLinkByCode(ctx, "old001"); !errors.Is(err, db.ErrLinkNotFound) {
		t.Errorf("expired link still present: %v", err)
	}
	for _, code := range []string{"new001", "perm01"} {
		if _, err := database.GetLinkByCode(ctx, code); err != nil {
			t.Errorf("live link %q swept: %v", code, err)
		}
	}
}

func TestGetSystemStats(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	alice, _ := testutil.CreatePrincipal(t, database, models.RoleUser, "alice", "Password1")
	testutil.CreatePrincipal(t, database, models.RoleUser, "idle_user", "Password1")

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	testutil.CreateLink(t, database, alice, "perm01", "https://example.com", true, nil)
	live := testutil.CreateLink(t, database, alice, "live01", "https://example.com", false, &future)
	testutil.CreateLink(t, database, alice, "old001", "https://example.com", false, &past)

	for i := 0; i < 4; i++ {
		if err := database.RecordAccess(ctx, live.ID); err != nil {
			t.Fatalf("RecordAccess() error = %v", err)
		}
	}

	stats, err := database.GetSystemStats(ctx, now)
	if err != nil {
		t.Fatalf("GetSystemStats() error = %v", err)
	}

	if stats.TotalURLs != 3 {
		t.Errorf("TotalURLs = %d, want 3", stats.TotalURLs)
	}
	if stats.ActiveURLs != 2 {
		t.Errorf("ActiveURLs = %d, want 2", stats.ActiveURLs)
	}
	if stats.ExpiredURLs != 1 {
		t.Errorf("ExpiredURLs = %d, want 1", stats.ExpiredURLs)
	}
	if stats.PermanentURLs != 1 {
		t.Errorf("PermanentURLs = %d, want 1", stats.PermanentURLs)
	}
	if stats.TotalClicks != 4 {
		t.Errorf("TotalClicks = %d, want 4", stats.TotalClicks)
	}
	if stats.TotalUsers != 2 {
		t.Errorf("TotalUsers = %d, want 2", stats.TotalUsers)
	}
	if stats.ActiveUsers != 1 {
		t.Errorf("ActiveUsers = %d, want 1 (only alice owns links)", stats.ActiveUsers)
	}
}
