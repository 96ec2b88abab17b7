package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/erazemk/motoinvent/internal/auth"
	"github.com/erazemk/motoinvent/internal/db"
	"github.com/erazemk/motoinvent/internal/model"
	"github.com/erazemk/motoinvent/internal/store"
	"github.com/erazemk/motoinvent/internal/websocket"
)

const testJWTSecret = "test-secret"

type testSite struct {
	*httptest.Server
	inv *store.Inventory
}

func setupSite(t *testing.T) *testSite {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	inv := store.NewInventory(store.SettingsBlobs{DB: database}, model.Catalog)
	if err := inv.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	router, err := NewRouter(database, testJWTSecret, inv, websocket.NewHub(slog.Default()))
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	for _, u := range []struct{ name, role string }{
		{"admin", model.RoleAdmin},
		{"encargado", model.RoleManager},
		{"mecanico", model.RoleUser},
	} {
		hash, _ := auth.HashPassword("password")
		if _, err := store.CreateUser(ctx, database, u.name, hash, u.role); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}

	return &testSite{Server: server, inv: inv}
}

// browser logs in and returns a client that keeps the session cookie.
func (s *testSite) browser(t *testing.T, username string) *http.Client {
	t.Helper()
	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}

	resp, err := client.PostForm(s.URL+"/login", url.Values{"username": {username}, "password": {"password"}})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	resp.Body.Close()
	if resp.Request.URL.Path != "/" {
		t.Fatalf("login as %s landed on %s", username, resp.Request.URL.Path)
	}
	return client
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestLoginRequired(t *testing.T) {
	s := setupSite(t)

	for _, path := range []string{"/", "/scan", "/settings", "/users", "/models/tucan/print"} {
		resp, err := http.Get(s.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.Request.URL.Path != "/login" {
			t.Errorf("GET %s: landed on %s, want /login", path, resp.Request.URL.Path)
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	s := setupSite(t)

	resp, err := http.PostForm(s.URL+"/login", url.Values{"username": {"admin"}, "password": {"nope"}})
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Usuario o contraseña incorrectos.") {
		t.Error("expected login error message")
	}
}

func TestDashboardListsModels(t *testing.T) {
	s := setupSite(t)
	client := s.browser(t, "mecanico")

	resp, err := client.Get(s.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	for _, m := range model.Catalog {
		if !strings.Contains(body, `id="modelo-`+m.ID+`"`) {
			t.Errorf("missing section for %s", m.ID)
		}
	}
	if !strings.Contains(body, "Inventario vacío") {
		t.Error("expected empty inventory row")
	}
	if strings.Contains(body, `name="item_id"`) {
		t.Error("read-only user should not see the item form")
	}
}

func TestItemLifecycle(t *testing.T) {
	s := setupSite(t)
	client := s.browser(t, "encargado")

	resp, err := client.PostForm(s.URL+"/models/tucan/items", url.Values{
		"name": {"Bobina encendido"}, "quantity": {"3"}, "location": {"a1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Bobina encendido") {
		t.Fatal("added item not shown on dashboard")
	}

	items, _ := s.inv.Items("tucan")
	if len(items) != 1 || items[0].Location != "A1" || items[0].Quantity != 3 {
		t.Fatalf("stored items = %+v", items)
	}
	id := items[0].ID

	resp, _ = client.PostForm(s.URL+"/models/tucan/items/"+id+"/edit", nil)
	body = readBody(t, resp)
	if !strings.Contains(body, `value="`+id+`"`) {
		t.Error("edit form should carry the item id")
	}
	if _, ok := s.inv.Editing("tucan"); !ok {
		t.Error("expected an edit session")
	}

	resp, _ = client.PostForm(s.URL+"/models/tucan/items", url.Values{
		"item_id": {id}, "name": {"Bobina"}, "quantity": {"5"}, "location": {"A2"},
	})
	resp.Body.Close()
	item, err := s.inv.Item("tucan", id)
	if err != nil || item.Name != "Bobina" || item.Quantity != 5 {
		t.Fatalf("after update: %+v, %v", item, err)
	}
	if _, ok := s.inv.Editing("tucan"); ok {
		t.Error("edit session should end after saving")
	}

	resp, _ = client.PostForm(s.URL+"/models/tucan/items/"+id+"/delete", nil)
	resp.Body.Close()
	if items, _ := s.inv.Items("tucan"); len(items) != 0 {
		t.Errorf("after delete: %+v", items)
	}
}

func TestItemSubmitErrors(t *testing.T) {
	s := setupSite(t)
	client := s.browser(t, "encargado")

	tests := []struct {
		name   string
		path   string
		form   url.Values
		status int
		msg    string
	}{
		{"blank name", "/models/tucan/items", url.Values{"name": {" "}, "quantity": {"1"}}, http.StatusBadRequest, "Escribe el nombre del repuesto."},
		{"bad quantity", "/models/tucan/items", url.Values{"name": {"Freno"}, "quantity": {"x"}}, http.StatusBadRequest, "Cantidad inválida."},
		{"long location", "/models/tucan/items", url.Values{"name": {"Freno"}, "quantity": {"1"}, "location": {"ESTANTE-123"}}, http.StatusBadRequest, "La ubicación admite hasta 10 caracteres."},
		{"unknown model", "/models/vespa/items", url.Values{"name": {"Freno"}, "quantity": {"1"}}, http.StatusNotFound, ""},
		{"missing item", "/models/tucan/items", url.Values{"item_id": {"nope"}, "name": {"Freno"}, "quantity": {"1"}}, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.PostForm(s.URL+tt.path, tt.form)
			if err != nil {
				t.Fatal(err)
			}
			body := readBody(t, resp)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.msg != "" && !strings.Contains(body, tt.msg) {
				t.Errorf("body missing %q", tt.msg)
			}
		})
	}

	if items, _ := s.inv.Items("tucan"); len(items) != 0 {
		t.Errorf("failed submissions changed inventory: %+v", items)
	}
}

func TestReadOnlyUserCannotMutate(t *testing.T) {
	s := setupSite(t)
	client := s.browser(t, "mecanico")

	resp, err := client.PostForm(s.URL+"/models/tucan/items", url.Values{"name": {"Freno"}, "quantity": {"1"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}

	resp, _ = client.Get(s.URL + "/users")
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("users page status = %d, want 403", resp.StatusCode)
	}
}

func TestPrintPage(t *testing.T) {
	s := setupSite(t)
	s.inv.AddItem(context.Background(), "lechuza", store.ItemInput{Name: "Cadena", Quantity: 2, Location: "B3"})
	client := s.browser(t, "mecanico")

	resp, err := client.Get(s.URL + "/models/lechuza/print")
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "LECHUZA 200CC") || !strings.Contains(body, "[B3] Cadena") {
		t.Errorf("unexpected print page: %s", body)
	}

	resp, _ = client.Get(s.URL + "/models/vespa/print")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown model status = %d, want 404", resp.StatusCode)
	}
}

func TestScanPage(t *testing.T) {
	s := setupSite(t)
	client := s.browser(t, "mecanico")

	resp, err := client.Get(s.URL + "/scan?modelo=canario")
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, `value="canario" selected`) {
		t.Error("requested model should be preselected")
	}
	if !strings.Contains(body, "/static/camera.js") {
		t.Error("scan page should load the camera script")
	}
}

func TestUsersAndSettings(t *testing.T) {
	s := setupSite(t)
	admin := s.browser(t, "admin")

	resp, err := admin.PostForm(s.URL+"/users", url.Values{
		"username": {"nuevo"}, "password": {"password"}, "role": {model.RoleUser},
	})
	if err != nil {
		t.Fatal(err)
	}
	if body := readBody(t, resp); !strings.Contains(body, "nuevo") {
		t.Fatal("new user not listed")
	}

	resp, _ = admin.PostForm(s.URL+"/users", url.Values{
		"username": {"corto"}, "password": {"abc"}, "role": {model.RoleUser},
	})
	if body := readBody(t, resp); !strings.Contains(body, "al menos 8 caracteres") {
		t.Error("expected short password error")
	}

	user := s.browser(t, "nuevo")
	resp, _ = user.PostForm(s.URL+"/settings", url.Values{
		"current_password": {"wrong-one"}, "new_password": {"password2"},
	})
	if body := readBody(t, resp); !strings.Contains(body, "La contraseña actual no es correcta.") {
		t.Error("expected wrong current password error")
	}

	resp, _ = user.PostForm(s.URL+"/settings", url.Values{
		"current_password": {"password"}, "new_password": {"password2"},
	})
	if body := readBody(t, resp); !strings.Contains(body, "Contraseña actualizada.") {
		t.Error("expected password change confirmation")
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	s := setupSite(t)
	client := s.browser(t, "admin")

	jar := client.Jar
	u, _ := url.Parse(s.URL)
	cookies := jar.Cookies(u)

	resp, err := client.PostForm(s.URL+"/logout", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	// Replay the old cookie; the token must be rejected.
	replay, _ := cookiejar.New(nil)
	replay.SetCookies(u, cookies)
	resp, err = (&http.Client{Jar: replay}).Get(s.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.Request.URL.Path != "/login" {
		t.Errorf("revoked session landed on %s", resp.Request.URL.Path)
	}
}
