package api

import (
	"net/http"
	"testing"
)

func createTestGroup(t *testing.T, env *testEnv, name string) GroupView {
	t.Helper()

	w := env.request(t, http.MethodPost, "/admin/groups", env.admin.ID, map[string]any{
		"name": name,
	})
	assertStatusCode(t, w, http.StatusCreated)

	var group GroupView
	decodeData(t, w, &group)
	return group
}

func TestCreateGroup(t *testing.T) {
	env := newTestEnv(t)

	group := createTestGroup(t, env, "Engineering")
	if group.Name != "Engineering" {
		t.Errorf("name = %s, want Engineering", group.Name)
	}
	if group.Members != 0 {
		t.Errorf("members = %d, want 0", group.Members)
	}

	w := env.request(t, http.MethodPost, "/admin/groups", env.admin.ID, map[string]any{})
	assertStatusCode(t, w, http.StatusBadRequest)
	assertErrorResponse(t, w, "validation_error")
}

func TestGroupMembership(t *testing.T) {
	env := newTestEnv(t)
	group := createTestGroup(t, env, "Sales")

	w := env.request(t, http.MethodPost, "/admin/groups/"+group.ID+"/members", env.admin.ID, map[string]any{
		"userIds": []string{env.employee.ID},
	})
	assertStatusCode(t, w, http.StatusOK)

	var result struct {
		Added   int `json:"added"`
		Skipped int `json:"skipped"`
		Removed int `json:"removed"`
	}
	decodeData(t, w, &result)
	if result.Added != 1 {
		t.Errorf("added = %d, want 1", result.Added)
	}

	// Re-adding is a skip, not an error.
	w = env.request(t, http.MethodPost, "/admin/groups/"+group.ID+"/members", env.admin.ID, map[string]any{
		"userIds": []string{env.employee.ID},
	})
	assertStatusCode(t, w, http.StatusOK)
	decodeData(t, w, &result)
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}

	w = env.request(t, http.MethodGet, "/admin/groups/"+group.ID+"/members", env.admin.ID, nil)
	assertStatusCode(t, w, http.StatusOK)

	var members []GroupMemberView
	decodeData(t, w, &members)
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(members))
	}
	if members[0].UserID != env.employee.ID {
		t.Errorf("member = %s, want %s", members[0].UserID, env.employee.ID)
	}

	w = env.request(t, http.MethodDelete, "/admin/groups/"+group.ID+"/members", env.admin.ID, map[string]any{
		"userIds": []string{env.employee.ID},
	})
	assertStatusCode(t, w, http.StatusOK)
	decodeData(t, w, &result)
	if result.Removed != 1 {
		t.Errorf("removed = %d, want 1", result.Removed)
	}

	w = env.request(t, http.MethodGet, "/admin/groups/"+group.ID, env.admin.ID, nil)
	assertStatusCode(t, w, http.StatusOK)

	var fetched GroupView
	decodeData(t, w, &fetched)
	if fetched.Members != 0 {
		t.Errorf("members = %d, want 0 after removal", fetched.Members)
	}
}

func TestUpdateAndDeleteGroup(t *testing.T) {
	env := newTestEnv(t)
	group := createTestGroup(t, env, "Temp")

	w := env.request(t, http.MethodPut, "/admin/groups/"+group.ID, env.admin.ID, map[string]any{
		"name":        "Permanent",
		"description": "All hands",
	})
	assertStatusCode(t, w, http.StatusOK)

	var updated GroupView
	decodeData(t, w, &updated)
	if updated.Name != "Permanent" {
		t.Errorf("name = %s, want Permanent", updated.Name)
	}
	if updated.Description != "All hands" {
		t.Errorf("description = %s, want 'All hands'", updated.Description)
	}

	w = env.request(t, http.MethodDelete, "/admin/groups/"+group.ID, env.admin.ID, nil)
	assertStatusCode(t, w, http.StatusNoContent)

	w = env.request(t, http.MethodGet, "/admin/groups/"+group.ID, env.admin.ID, nil)
	assertStatusCode(t, w, http.StatusNotFound)
}
