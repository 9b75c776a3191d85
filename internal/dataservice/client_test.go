package dataservice_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/dataservice"
	"github.com/rosterd/rosterd/internal/domain"
)

func TestResolvedActiveStaff_FlattensAndDeduplicates(t *testing.T) {
	groupID := uuid.New()
	shared := uuid.New()
	other := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wantPath := fmt.Sprintf("/api/v1/groups/%s/resolved-members", groupID)
		if r.URL.Path != wantPath {
			t.Errorf("path = %s, want %s", r.URL.Path, wantPath)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"data": [
				{"group_id": %q, "group_name": "Ward A", "members": [
					{"id": %q, "name": "Kanat", "status": "ACTIVE"},
					{"id": %q, "name": "Marat", "status": "INACTIVE"}
				]},
				{"group_id": %q, "group_name": "Ward B", "members": [
					{"id": %q, "name": "Leyla", "status": "ACTIVE"},
					{"id": %q, "name": "Kanat", "status": "ACTIVE"}
				]}
			],
			"total": 2
		}`, uuid.New(), shared, uuid.New(), uuid.New(), other, shared)
	}))
	defer srv.Close()

	staff, err := dataservice.NewClient(srv.URL).ResolvedActiveStaff(context.Background(), groupID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(staff) != 2 {
		t.Fatalf("got %d staff, want 2 (inactive filtered, duplicate collapsed)", len(staff))
	}
	if staff[0].ID != shared || staff[1].ID != other {
		t.Errorf("order not preserved: %v then %v", staff[0].ID, staff[1].ID)
	}
	for _, s := range staff {
		if s.Status != domain.StaffActive {
			t.Errorf("inactive staff %s leaked through", s.ID)
		}
	}
}

func TestResolvedActiveStaff_Non200_ReturnsErrorWithBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"Group not found"}`)
	}))
	defer srv.Close()

	_, err := dataservice.NewClient(srv.URL).ResolvedActiveStaff(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("want error for 404 response")
	}
	if got := err.Error(); !strings.Contains(got, "404") || !strings.Contains(got, "Group not found") {
		t.Errorf("error %q does not carry status and body", got)
	}
}

func TestResolvedActiveStaff_BadJSON_ReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{not json`)
	}))
	defer srv.Close()

	_, err := dataservice.NewClient(srv.URL).ResolvedActiveStaff(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("want error for malformed body")
	}
}

func TestResolvedActiveStaff_ContextCancelled_ReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dataservice.NewClient(srv.URL).ResolvedActiveStaff(ctx, uuid.New())
	if err == nil {
		t.Fatal("want error for cancelled context")
	}
}
