package storage

import (
	"testing"
	"time"

	"github.com/lumina-fans/idolcms/internal/clock"
	"github.com/lumina-fans/idolcms/internal/rid"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(t0)
	s, err := Open(t.TempDir(), Options{Clock: clk, IDs: &rid.Sequence{}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, clk
}

var (
	admin  = entity.Actor{UserID: "usr_admin", Role: entity.RoleAdmin}
	editor = entity.Actor{UserID: "usr_editor", Role: entity.RoleEditor}
	fan    = entity.Actor{UserID: "usr_fan", Role: entity.RoleUser}
	other  = entity.Actor{UserID: "usr_other", Role: entity.RoleUser}
)

func newPost(title, slug string) *entity.Post {
	return &entity.Post{Article: entity.Article{Title: title, Slug: slug}}
}
