package services

import (
	"context"
	"testing"

	"github.com/lborres/careerguide/core"
)

// Requirement: lenient accessors turn failures into false instead of errors.
func TestStorage_LenientAccessors(t *testing.T) {
	ctx := context.Background()
	store := NewFailingStore()
	s := NewStorage(store, nil)

	if !s.SetItem(ctx, "k", map[string]int{"a": 1}) {
		t.Fatal("SetItem() = false")
	}
	var out map[string]int
	if !s.GetItem(ctx, "k", &out) || out["a"] != 1 {
		t.Errorf("GetItem() = %v", out)
	}
	if s.GetItem(ctx, "missing", &out) {
		t.Error("GetItem(missing) = true")
	}

	store.FailSet("k")
	if s.SetItem(ctx, "k", 1) {
		t.Error("SetItem() should report failure")
	}
	store.FailGet("k")
	if s.GetItem(ctx, "k", &out) {
		t.Error("GetItem() should report failure")
	}
	store.FailRemove()
	if s.MultiRemove(ctx, "k") || s.RemoveItem(ctx, "k") {
		t.Error("remove should report failure")
	}
}

func TestStorage_StrictLoad(t *testing.T) {
	ctx := context.Background()
	store := NewFailingStore()
	s := NewStorage(store, nil)
	_ = store.SetItem(ctx, core.KeyUserData, []byte(`not json`))

	var user core.UserRecord
	found, err := s.Load(ctx, core.KeyUserData, &user)
	if err == nil || found {
		t.Errorf("Load(corrupt) = %v, %v; want error", found, err)
	}

	found, err = s.Load(ctx, core.KeyAuthToken, new(string))
	if err != nil || found {
		t.Errorf("Load(missing) = %v, %v; want false, nil", found, err)
	}
}

// Requirement: a failed session write restores the previous values.
func TestSessionStore_PersistRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewFailingStore()
	ss := NewSessionStore(NewStorage(store, nil))

	if err := ss.Persist(ctx, "OLD", core.UserRecord{"name": "Old"}, core.RoleStudent); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	before := store.Dump(ctx)

	store.FailSet(core.KeyUserRole)
	err := ss.Persist(ctx, "NEW", core.UserRecord{"name": "New"}, core.RoleCounselor)
	if err == nil {
		t.Fatal("Persist() should fail")
	}

	after := store.Dump(ctx)
	for k, v := range before {
		if after[k] != v {
			t.Errorf("%s = %s, want %s", k, after[k], v)
		}
	}
}

func TestSessionStore_SaveUserModes(t *testing.T) {
	ctx := context.Background()
	ss := NewSessionStore(NewStorage(NewFailingStore(), nil))
	_ = ss.Persist(ctx, "T", core.UserRecord{"name": "Ada", "email": "a@b.co"}, core.RoleStudent)

	merged, err := ss.SaveUser(ctx, core.UserRecord{"bio": "hi"}, core.Merge)
	if err != nil || merged["email"] != "a@b.co" || merged["bio"] != "hi" {
		t.Errorf("Merge = %v, %v", merged, err)
	}

	replaced, err := ss.SaveUser(ctx, core.UserRecord{"name": "Ada"}, core.Replace)
	if err != nil || len(replaced) != 1 {
		t.Errorf("Replace = %v, %v", replaced, err)
	}
	stored, _ := ss.User(ctx)
	if len(stored) != 1 || stored["name"] != "Ada" {
		t.Errorf("stored user = %v", stored)
	}
}
