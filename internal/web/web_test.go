package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zaloga/internal/backend"
	"github.com/erazemk/zaloga/internal/backend/backendtest"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/session"
)

var testNow = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	api    *backendtest.Server
	server *httptest.Server
	client *http.Client
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	api := backendtest.New(t)
	api.Now = func() time.Time { return testNow }
	api.AddUser(t, "Ada Admin", "admin@example.com", "password", model.RoleAdmin)
	api.AddUser(t, "Max Manager", "manager@example.com", "password", model.RoleManager)

	router, err := NewRouter(backend.New(api.APIURL(), 5*time.Second), Options{
		Now: func() time.Time { return testNow },
	})
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testEnv{api: api, server: server, client: client}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.server.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (e *testEnv) login(t *testing.T, email string) {
	t.Helper()
	resp, _ := e.post(t, "/login", url.Values{"email": {email}, "password": {"password"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func assertRedirectsToLogin(t *testing.T, resp *http.Response) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestPublicPages(t *testing.T) {
	env := setupTestServer(t)

	for _, path := range []string{"/", "/login", "/register"} {
		resp, _ := env.get(t, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, body := env.get(t, "/no/such/page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "/no/such/page")
}

func TestLoggedOutIsRedirected(t *testing.T) {
	env := setupTestServer(t)

	for _, path := range []string{"/dashboard", "/profile", "/checkInSupply", "/supplyTransactions", "/supply", "/equipment", "/maintenanceRecords"} {
		resp, _ := env.get(t, path)
		assertRedirectsToLogin(t, resp)
	}
}

func TestManagerCannotOpenAdminRoutes(t *testing.T) {
	env := setupTestServer(t)
	env.login(t, "manager@example.com")

	resp, _ := env.get(t, "/dashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.get(t, "/checkOutEquipment")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	for _, path := range []string{"/supply", "/supply/add", "/equipment", "/maintenanceRecords"} {
		resp, _ := env.get(t, path)
		assertRedirectsToLogin(t, resp)
	}
	resp, _ = env.post(t, "/supply/delete/1", nil)
	assertRedirectsToLogin(t, resp)
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	env := setupTestServer(t)

	resp, body := env.post(t, "/login", url.Values{"email": {"admin@example.com"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid email or password")

	resp, body = env.post(t, "/login", url.Values{"email": {"not-an-email"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "password is required")
}

func TestCorruptedSessionIsLoggedOut(t *testing.T) {
	env := setupTestServer(t)
	u, _ := url.Parse(env.server.URL)
	env.client.Jar.SetCookies(u, []*http.Cookie{
		{Name: session.KeyCredential, Value: "garbage"},
		{Name: session.KeyRole, Value: "garbage"},
	})

	resp, _ := env.get(t, "/dashboard")
	assertRedirectsToLogin(t, resp)
}

func TestLogout(t *testing.T) {
	env := setupTestServer(t)
	env.login(t, "admin@example.com")

	resp, _ := env.get(t, "/supply")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.post(t, "/logout", nil)
	assertRedirectsToLogin(t, resp)

	resp, _ = env.get(t, "/dashboard")
	assertRedirectsToLogin(t, resp)
}

func TestRegister(t *testing.T) {
	env := setupTestServer(t)

	resp, _ := env.post(t, "/register", url.Values{
		"name": {"New"}, "email": {"new@example.com"}, "password": {"pw"}, "phoneNumber": {"555"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, body := env.get(t, "/login")
	assert.Contains(t, body, "User registered successfully")

	resp, _ = env.post(t, "/login", url.Values{"email": {"new@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestSupplyAdmin(t *testing.T) {
	env := setupTestServer(t)
	env.login(t, "admin@example.com")

	resp, body := env.post(t, "/supply/add", url.Values{"name": {""}, "sku": {"X"}, "quantity": {"abc"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "quantity must be a number")
	assert.Contains(t, body, "name is required")

	resp, _ = env.post(t, "/supply/add", url.Values{"name": {"Gloves"}, "sku": {"GLV"}, "quantity": {"50"}, "price": {"1.5"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/supply", resp.Header.Get("Location"))

	resp, body = env.get(t, "/supply")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Gloves")
	assert.Contains(t, body, "Supply added successfully")

	id := env.api.Supplies()[0].ID
	resp, body = env.get(t, "/supply/edit/"+strconv.FormatInt(id, 10))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="GLV"`)

	resp, _ = env.post(t, "/supply/edit/"+strconv.FormatInt(id, 10), url.Values{"name": {"Nitrile"}, "sku": {"GLV"}, "quantity": {"50"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "Nitrile", env.api.Supplies()[0].Name)

	_, body = env.get(t, "/supply?q=nitr")
	assert.Contains(t, body, "Nitrile")

	resp, _ = env.post(t, "/supply/delete/"+strconv.FormatInt(id, 10), nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Empty(t, env.api.Supplies())

	resp, _ = env.post(t, "/supply/delete/"+strconv.FormatInt(id, 10), nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = env.get(t, "/supply")
	assert.Contains(t, body, "Supply not found")
}

func TestEquipmentAdmin(t *testing.T) {
	env := setupTestServer(t)
	env.login(t, "admin@example.com")

	resp, body := env.post(t, "/equipment/add", url.Values{"name": {"Drill"}, "serialNumber": {"D-1"}, "status": {"BROKEN"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "status must be one of")

	resp, _ = env.post(t, "/equipment/add", url.Values{"name": {"Drill"}, "serialNumber": {"D-1"}, "status": {model.EquipmentAvailable}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = env.get(t, "/equipment?status=AVAILABLE")
	assert.Contains(t, body, "Drill")
	_, body = env.get(t, "/equipment?status=MAINTENANCE")
	assert.NotContains(t, body, "Drill")

	id := strconv.FormatInt(env.api.Equipment()[0].ID, 10)
	resp, _ = env.post(t, "/equipment/delete/"+id, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Empty(t, env.api.Equipment())
}

func TestSupplyCheckOutListsOnlyStock(t *testing.T) {
	env := setupTestServer(t)
	env.api.AddSupply(model.Supply{Name: "Masks", CurrentStock: 5})
	env.api.AddSupply(model.Supply{Name: "Empty box", CurrentStock: 0})
	env.login(t, "manager@example.com")

	_, body := env.get(t, "/checkOutSupply")
	assert.Contains(t, body, "Masks")
	assert.NotContains(t, body, "Empty box")

	_, body = env.get(t, "/checkInSupply")
	assert.Contains(t, body, "Empty box")
}

func TestSupplyCheckOut(t *testing.T) {
	env := setupTestServer(t)
	masks := env.api.AddSupply(model.Supply{Name: "Masks", CurrentStock: 5})
	env.login(t, "manager@example.com")
	id := strconv.FormatInt(masks.ID, 10)

	resp, body := env.post(t, "/checkOutSupply", url.Values{"supplyId": {id}, "quantity": {"9"}})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "Insufficient stock")

	resp, _ = env.post(t, "/checkOutSupply", url.Values{"supplyId": {id}, "quantity": {"2"}, "notes": {"ER"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/supplyTransactions", resp.Header.Get("Location"))
	assert.Equal(t, 3.0, env.api.Supplies()[0].CurrentStock)

	_, body = env.get(t, "/supplyTransactions?type=CHECK_OUT")
	assert.Contains(t, body, "Masks")
	assert.Contains(t, body, "CHECK OUT")
}

func TestEquipmentCheckOutListsOnlyAvailable(t *testing.T) {
	env := setupTestServer(t)
	env.api.AddEquipment(model.Equipment{Name: "Ladder"})
	env.api.AddEquipment(model.Equipment{Name: "Forklift", Status: model.EquipmentMaintenance})
	env.login(t, "manager@example.com")

	_, body := env.get(t, "/checkOutEquipment")
	assert.Contains(t, body, "Ladder")
	assert.NotContains(t, body, "Forklift")
}

func TestEquipmentCheckInListsAllEquipment(t *testing.T) {
	env := setupTestServer(t)
	ladder := env.api.AddEquipment(model.Equipment{Name: "Ladder"})
	env.api.AddEquipment(model.Equipment{Name: "Drill", Status: model.EquipmentInUse, LastCheckedOutBy: "Bo"})
	env.login(t, "manager@example.com")

	_, body := env.get(t, "/checkInEquipment")
	assert.Contains(t, body, "Ladder (AVAILABLE)")
	assert.Contains(t, body, "Drill (IN_USE), with Bo")

	resp, body := env.post(t, "/checkInEquipment", url.Values{
		"equipmentId": {strconv.FormatInt(ladder.ID, 10)},
		"hoursUsed":   {"1"},
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "Equipment is not checked out")
	assert.Contains(t, body, "Ladder (AVAILABLE)")
}

func TestMaintenanceCycle(t *testing.T) {
	env := setupTestServer(t)
	lathe := env.api.AddEquipment(model.Equipment{Name: "Lathe"})
	env.login(t, "admin@example.com")
	id := strconv.FormatInt(lathe.ID, 10)

	resp, _ := env.post(t, "/maintenanceRecords/start", url.Values{"equipmentId": {id}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body := env.post(t, "/maintenanceRecords/end", url.Values{"equipmentId": {id}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "maintenance performed is required")

	resp, _ = env.post(t, "/maintenanceRecords/end", url.Values{"equipmentId": {id}, "maintenancePerformed": {"New belt"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = env.get(t, "/maintenanceRecords?equipment="+id)
	assert.Contains(t, body, "New belt")
}

func seedMarch(env *testEnv) (a, b model.Supply) {
	a = env.api.AddSupply(model.Supply{Name: "A", CurrentStock: 10})
	b = env.api.AddSupply(model.Supply{Name: "B", CurrentStock: 10})
	env.api.AddSupplyTransaction(model.SupplyTransaction{Type: model.KindCheckIn, Quantity: model.NewAmount(3), SupplyID: a.ID, Timestamp: "2024-03-05T09:00:00"})
	env.api.AddSupplyTransaction(model.SupplyTransaction{Type: model.KindCheckOut, Quantity: model.NewAmount(2), SupplyID: a.ID, Timestamp: "2024-03-05T10:00:00"})
	env.api.AddSupplyTransaction(model.SupplyTransaction{Type: model.KindCheckIn, Quantity: model.NewAmount(1), SupplyID: b.ID, Timestamp: "2024-03-05T11:00:00"})
	env.api.AddSupplyTransaction(model.SupplyTransaction{Type: model.KindCheckIn, Quantity: model.NewAmount(7), SupplyID: a.ID, Timestamp: "2024-04-01T11:00:00"})
	return a, b
}

func TestDashboardSeries(t *testing.T) {
	env := setupTestServer(t)
	a, _ := seedMarch(env)
	env.login(t, "manager@example.com")

	resp, body := env.get(t, "/dashboard/series?source=supply&month=3&year=2024&type=CHECK_IN")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var series seriesResponse
	require.NoError(t, json.Unmarshal([]byte(body), &series))
	require.Len(t, series.Days, 31)
	assert.Equal(t, 2, series.Days[4].Count)
	assert.Equal(t, 4.0, series.Days[4].Quantity)
	assert.Equal(t, 0, series.Days[0].Count)
	assert.Equal(t, 2, series.TotalCount)
	assert.Equal(t, "ALL", series.Subject)

	_, body = env.get(t, "/dashboard/series?month=3&year=2024&subject="+strconv.FormatInt(a.ID, 10))
	require.NoError(t, json.Unmarshal([]byte(body), &series))
	assert.Equal(t, 2, series.Days[4].Count)
	assert.Equal(t, 5.0, series.Days[4].Quantity)

	// The echoed filter can be sent back as is.
	resp, body = env.get(t, "/dashboard/series?month=3&year=2024&type=ALL&subject=ALL")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal([]byte(body), &series))
	assert.Equal(t, "ALL", series.Subject)
	assert.Equal(t, "ALL", series.Type)
	assert.Equal(t, 3, series.TotalCount)

	_, body = env.get(t, "/dashboard/series?month=2&year=2024")
	require.NoError(t, json.Unmarshal([]byte(body), &series))
	assert.Len(t, series.Days, 29)

	resp, _ = env.get(t, "/dashboard/series?month=13&year=2024")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = env.get(t, "/dashboard/series?source=warehouse")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDashboardDefaultsToCurrentMonth(t *testing.T) {
	env := setupTestServer(t)
	seedMarch(env)
	env.login(t, "manager@example.com")

	_, body := env.get(t, "/dashboard/series")
	var series seriesResponse
	require.NoError(t, json.Unmarshal([]byte(body), &series))
	assert.Equal(t, 3, series.Month)
	assert.Equal(t, 2024, series.Year)
	assert.Equal(t, 3, series.TotalCount)
}

func TestDashboardPage(t *testing.T) {
	env := setupTestServer(t)
	seedMarch(env)
	env.api.AddSupply(model.Supply{Name: "Bandages", CurrentStock: 2, ReorderLevel: 5, MaximumQuantity: 20})
	env.api.AddEquipment(model.Equipment{Name: "Generator", TotalHours: 95, MaintenanceIntervalHours: 100})
	env.login(t, "manager@example.com")

	resp, body := env.get(t, "/dashboard?month=3&year=2024")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Bandages")
	assert.Contains(t, body, "Generator")
	assert.Contains(t, body, "3 transactions")
	assert.Contains(t, body, "Login successful")

	resp, body = env.get(t, "/dashboard?month=nope")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "month must be a number")
}

func TestDashboardChart(t *testing.T) {
	env := setupTestServer(t)
	seedMarch(env)
	env.login(t, "manager@example.com")

	resp, body := env.get(t, "/dashboard/chart.png?month=3&year=2024&metric=quantity")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "\x89PNG"))
}

func TestDashboardBackendFailureDegrades(t *testing.T) {
	env := setupTestServer(t)
	env.login(t, "manager@example.com")
	env.api.Close()

	resp, body := env.get(t, "/dashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Failed to load supplies")

	resp, _ = env.get(t, "/dashboard/series")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestProfile(t *testing.T) {
	env := setupTestServer(t)
	env.login(t, "admin@example.com")

	resp, body := env.get(t, "/profile")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Ada Admin")
	assert.Contains(t, body, "admin@example.com")
	assert.Contains(t, body, "Administrator")
}

func TestPaginate(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	page, p := Paginate(httptest.NewRequest(http.MethodGet, "/supply?page=3&q=x", nil), items)
	assert.Equal(t, []int{20, 21, 22, 23, 24}, page)
	assert.Equal(t, 3, p.Pages)
	assert.True(t, p.HasPrev)
	assert.False(t, p.HasNext)
	assert.Equal(t, "?page=2&q=x", p.URL(p.Prev()))

	page, p = Paginate(httptest.NewRequest(http.MethodGet, "/supply?page=99", nil), items)
	assert.Len(t, page, 5)
	assert.Equal(t, 3, p.Page)

	page, p = Paginate(httptest.NewRequest(http.MethodGet, "/supply?page=-1", nil), []int(nil))
	assert.Empty(t, page)
	assert.Equal(t, 1, p.Pages)
	assert.False(t, p.HasNext)
}

func TestFieldLabel(t *testing.T) {
	assert.Equal(t, "serial number", fieldLabel("SerialNumber"))
	assert.Equal(t, "sku", fieldLabel("SKU"))
	assert.Equal(t, "total hours input", fieldLabel("TotalHoursInput"))
}
