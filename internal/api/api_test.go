package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/garderoba/internal/auth"
	"github.com/erazemk/garderoba/internal/db"
	"github.com/erazemk/garderoba/internal/model"
	"github.com/erazemk/garderoba/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	store.CreateUser(ctx, database, "admin", string(hash), model.RoleAdmin)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp.Token == "" {
		t.Fatal("empty token from login")
	}

	return server, loginResp.Token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func doJSON(t *testing.T, req *http.Request, wantStatus int, target any) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d", req.Method, req.URL.Path, wantStatus, resp.StatusCode)
	}
	if target != nil {
		json.NewDecoder(resp.Body).Decode(target)
	}
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedAccess(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	resp, _ := http.Get(server.URL + "/api/costumes")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	doJSON(t, req, http.StatusOK, nil)

	// The same token no longer works.
	req, _ = authRequest("GET", server.URL+"/api/costumes", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

// Drives the inventory through the API the way a client would: set up a
// location, add a costume, loan it out and bring it back.
func TestCostumeAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	var location struct {
		ID         string `json:"id"`
		DetailLine string `json:"detail_line"`
	}
	req, _ := authRequest("POST", server.URL+"/api/locations", token, map[string]string{
		"name": "Rack A", "room": "Backstage", "storage_type": model.StorageRack,
	})
	doJSON(t, req, http.StatusCreated, &location)
	if location.DetailLine == "" {
		t.Error("expected derived detail line in location response")
	}

	var costume struct {
		ID                string `json:"id"`
		AvailableQuantity int    `json:"available_quantity"`
		Status            string `json:"status"`
	}
	req, _ = authRequest("POST", server.URL+"/api/costumes", token, map[string]any{
		"name": "Pirate Coat", "total_quantity": 3, "location_id": location.ID,
	})
	doJSON(t, req, http.StatusCreated, &costume)
	if costume.AvailableQuantity != 3 || costume.Status != model.CostumeAvailable {
		t.Errorf("unexpected fresh costume view: %+v", costume)
	}

	// Loan 2 out.
	req, _ = authRequest("POST", server.URL+"/api/costumes/"+costume.ID+"/checkout", token, map[string]any{
		"checked_out_by": "Jane", "quantity": 2, "due_date": time.Now().AddDate(0, 0, 7),
	})
	var loan struct {
		ID string `json:"id"`
	}
	doJSON(t, req, http.StatusCreated, &loan)

	req, _ = authRequest("GET", server.URL+"/api/costumes/"+costume.ID, token, nil)
	doJSON(t, req, http.StatusOK, &costume)
	if costume.AvailableQuantity != 1 || costume.Status != model.CostumePartiallyCheckedOut {
		t.Errorf("after check-out: %+v", costume)
	}

	// Over-quantity loan is the client's fault.
	req, _ = authRequest("POST", server.URL+"/api/costumes/"+costume.ID+"/checkout", token, map[string]any{
		"checked_out_by": "Sam", "quantity": 2, "due_date": time.Now().AddDate(0, 0, 7),
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for over-quantity check-out, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Bring both back.
	req, _ = authRequest("POST", server.URL+"/api/costumes/"+costume.ID+"/checkin", token, map[string]any{
		"check_out_id": loan.ID, "quantity": 2,
	})
	doJSON(t, req, http.StatusOK, &costume)
	if costume.AvailableQuantity != 3 || costume.Status != model.CostumeAvailable {
		t.Errorf("after check-in: %+v", costume)
	}
}

func TestDeleteLocationConflict(t *testing.T) {
	server, token := setupTestServer(t)

	var location struct {
		ID string `json:"id"`
	}
	req, _ := authRequest("POST", server.URL+"/api/locations", token, map[string]string{
		"name": "Rack A", "room": "Backstage", "storage_type": model.StorageRack,
	})
	doJSON(t, req, http.StatusCreated, &location)

	req, _ = authRequest("POST", server.URL+"/api/costumes", token, map[string]any{
		"name": "Pirate Coat", "total_quantity": 1, "location_id": location.ID,
	})
	doJSON(t, req, http.StatusCreated, nil)

	req, _ = authRequest("DELETE", server.URL+"/api/locations/"+location.ID, token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for occupied location, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestEventAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	var event struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	req, _ := authRequest("POST", server.URL+"/api/events", token, map[string]any{
		"name": "Spring Play", "date": time.Now().AddDate(0, 0, 14),
	})
	doJSON(t, req, http.StatusCreated, &event)
	if event.Status != model.EventUpcoming {
		t.Errorf("expected upcoming event, got %q", event.Status)
	}

	var events []eventView
	req, _ = authRequest("GET", server.URL+"/api/events", token, nil)
	doJSON(t, req, http.StatusOK, &events)
	if len(events) != 1 {
		t.Errorf("expected 1 event, got %d", len(events))
	}

	req, _ = authRequest("DELETE", server.URL+"/api/events/"+event.ID, token, nil)
	doJSON(t, req, http.StatusOK, nil)

	req, _ = authRequest("GET", server.URL+"/api/events/"+event.ID, token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRoleBasedAccess(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("pass"), bcrypt.DefaultCost)
	member, _ := store.CreateUser(ctx, database, "member1", string(hash), model.RoleMember)

	memberToken, _ := auth.GenerateToken(testJWTSecret, member.ID, member.Username, member.Role)

	// Members may mutate inventory.
	req, _ := authRequest("POST", server.URL+"/api/locations", memberToken, map[string]string{
		"name": "Boxes", "room": "Attic", "storage_type": model.StorageBox,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("expected 201 for member creating location, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Destructive lifecycle commands are admin only.
	for _, path := range []string{"/api/reset", "/api/demo"} {
		req, _ = authRequest("POST", server.URL+path, memberToken, nil)
		resp, _ = http.DefaultClient.Do(req)
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("expected 403 for member on %s, got %d", path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestActivityEndpoint(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/demo", token, nil)
	doJSON(t, req, http.StatusOK, nil)

	var records []model.ActivityRecord
	req, _ = authRequest("GET", server.URL+"/api/activity?limit=3", token, nil)
	doJSON(t, req, http.StatusOK, &records)
	if len(records) == 0 || len(records) > 3 {
		t.Errorf("expected up to 3 activity records, got %d", len(records))
	}
}
