package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func newTestClient(baseURL string, pageLimit, maxDepth int) *Client {
	return NewClient(Config{
		BaseURL:   baseURL,
		AppID:     "app-id",
		AppSecret: "app-secret",
		PageLimit: pageLimit,
		MaxDepth:  maxDepth,
		Timeout:   time.Second,
	})
}

func TestListFriendsSignsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/100/friends" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		q := r.URL.Query()
		if q.Get("access_token") != "token" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if q.Get("appsecret_proof") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(friendsPage{Data: []Friend{{ID: "200", FirstName: "Ada"}}})
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server.URL, 25, 10)
	friends, err := client.ListFriends(context.Background(), "100", FriendQuery{AccessToken: "token"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(friends) != 1 || friends[0].ID != "200" {
		t.Fatalf("unexpected friends: %+v", friends)
	}
}

func TestListFriendsAllPagesToExhaustion(t *testing.T) {
	// 2 full pages of 2 then a short page
	pages := [][]Friend{
		{{ID: "1"}, {ID: "2"}},
		{{ID: "3"}, {ID: "4"}},
		{{ID: "5"}},
	}

	var offsets []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		offsets = append(offsets, offset)

		page := offset / 2
		if page >= len(pages) {
			_ = json.NewEncoder(w).Encode(friendsPage{})
			return
		}
		_ = json.NewEncoder(w).Encode(friendsPage{Data: pages[page]})
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server.URL, 2, 10)
	friends, err := client.ListFriendsAll(context.Background(), "100", "token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(friends) != 5 {
		t.Fatalf("expected 5 friends, got %d", len(friends))
	}
	if len(offsets) != 3 || offsets[2] != 4 {
		t.Fatalf("unexpected paging offsets: %v", offsets)
	}
}

func TestListFriendsAllStopsAtDepthCap(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(friendsPage{Data: []Friend{{ID: "1"}, {ID: "2"}}})
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server.URL, 2, 3)
	friends, err := client.ListFriendsAll(context.Background(), "100", "token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 pages, got %d", calls)
	}
	if len(friends) != 6 {
		t.Fatalf("expected 6 friends, got %d", len(friends))
	}
}

func TestListFriendsAllAbortsOnPageError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"token expired"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(friendsPage{Data: []Friend{{ID: "1"}, {ID: "2"}}})
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server.URL, 2, 10)
	_, err := client.ListFriendsAll(context.Background(), "100", "token")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "token expired" {
		t.Fatalf("unexpected message: %q", apiErr.Message)
	}
}

func TestMutualFriendsBulkSkipsFailedEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("batch") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		okBody := `{"id":"200","context":{"all_mutual_friends":{"data":[{"id":"300","first_name":"Bob"},{"id":"400"}]}}}`
		responses := []batchResponse{
			{Code: http.StatusOK, Body: okBody},
			{Code: http.StatusForbidden, Body: `{"error":{"message":"denied"}}`},
			{Code: http.StatusOK, Body: `not json`},
		}
		_ = json.NewEncoder(w).Encode(responses)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server.URL, 100, 10)
	mutuals, err := client.MutualFriendsBulk(context.Background(), []string{"200", "201", "202"}, "token", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mutuals) != 2 {
		t.Fatalf("expected 2 mutual friends, got %d", len(mutuals))
	}
	for i, m := range mutuals {
		if m.FriendID != "200" {
			t.Fatalf("mutual %d: expected friend id 200, got %q", i, m.FriendID)
		}
	}
}

func TestMutualFriendsBulkEmptyInput(t *testing.T) {
	client := newTestClient("http://localhost:1", 100, 10)
	mutuals, err := client.MutualFriendsBulk(context.Background(), nil, "token", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mutuals != nil {
		t.Fatalf("expected nil result, got %v", mutuals)
	}
}

func TestAPIErrorFormat(t *testing.T) {
	err := &APIError{StatusCode: 400, Message: "bad token"}
	want := fmt.Sprintf("facebook api error: status=%d message=%s", 400, "bad token")
	if err.Error() != want {
		t.Fatalf("unexpected error string: %q", err.Error())
	}
}
