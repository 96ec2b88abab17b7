package store

import (
	"context"
	"testing"

	"github.com/erazemk/motoinvent/internal/db"
	"github.com/erazemk/motoinvent/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "taller", "hash123", model.RoleManager)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Role != model.RoleManager {
		t.Errorf("expected role 'manager', got %q", user.Role)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got == nil || got.Username != "taller" {
		t.Errorf("expected username 'taller', got %+v", got)
	}
}

func TestGetUserByUsernameMissing(t *testing.T) {
	database := db.NewTestDB(t)

	user, err := GetUserByUsername(context.Background(), database, "nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
}

func TestDuplicateUsernameRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, "alice", "hash", model.RoleUser); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := CreateUser(ctx, database, "alice", "hash", model.RoleUser); err == nil {
		t.Error("expected error for duplicate username")
	}
}

func TestCountAndListUsers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	n, err := CountUsers(ctx, database)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 users, got %d", n)
	}

	CreateUser(ctx, database, "alice", "hash", model.RoleAdmin)
	CreateUser(ctx, database, "bob", "hash", model.RoleUser)

	users, err := ListUsers(ctx, database)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Username != "alice" {
		t.Errorf("expected users ordered by id, got %q first", users[0].Username)
	}
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "alice", "old", model.RoleUser)
	if err := UpdateUserPassword(ctx, database, user.ID, "new"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.PasswordHash != "new" {
		t.Errorf("expected updated hash, got %q", got.PasswordHash)
	}
}

func TestDeleteUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "alice", "hash", model.RoleUser)
	if err := DeleteUser(ctx, database, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if got, _ := GetUserByUsername(ctx, database, "alice"); got != nil {
		t.Errorf("expected deleted user hidden, got %+v", got)
	}
	if err := DeleteUser(ctx, database, user.ID); err == nil {
		t.Error("expected error deleting twice")
	}

	// The name is free again.
	if _, err := CreateUser(ctx, database, "alice", "hash", model.RoleUser); err != nil {
		t.Errorf("expected username reusable after delete: %v", err)
	}
}
