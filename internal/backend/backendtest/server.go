// Package backendtest runs an in-process inventory backend for tests. It
// speaks the same envelopes as the real API, issues HS256 bearer tokens and
// keeps everything in memory.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/zaloga/internal/auth"
	"github.com/erazemk/zaloga/internal/model"
)

const signingKey = "backendtest-signing-key"

// timeLayout is the local date-time format the backend emits.
const timeLayout = "2006-01-02T15:04:05"

type account struct {
	user model.User
	hash []byte
}

// Server is a fake backend.
type Server struct {
	*httptest.Server

	// Now stamps new transactions and is the clock tokens are issued and checked by.
	Now func() time.Time

	mu          sync.Mutex
	nextID      int64
	accounts    map[string]*account
	supplies    []model.Supply
	equipment   []model.Equipment
	supplyTx    []model.SupplyTransaction
	equipmentTx []model.EquipmentTransaction
	maintenance []model.MaintenanceRecord
	hits        map[string]int
}

// New starts a fake backend that is closed when the test ends.
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		Now:      time.Now,
		nextID:   1,
		accounts: make(map[string]*account),
		hits:     make(map[string]int),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// APIURL returns the API base URL.
func (s *Server) APIURL() string {
	return s.Server.URL + "/api"
}

func (s *Server) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// AddUser creates an account and returns its id.
func (s *Server) AddUser(t *testing.T, name, email, password, role string) int64 {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.accounts[email] = &account{
		user: model.User{ID: id, Name: name, Email: email, Role: role},
		hash: hash,
	}
	return id
}

// Token issues a bearer token for email without going through login.
func (s *Server) Token(t *testing.T, email string) string {
	t.Helper()
	s.mu.Lock()
	acc, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok {
		t.Fatalf("no account %q", email)
	}
	token, err := issue(acc.user, s.Now())
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	return token
}

// AddSupply stores a supply and returns it with its id.
func (s *Server) AddSupply(sup model.Supply) model.Supply {
	s.mu.Lock()
	defer s.mu.Unlock()
	sup.ID = s.id()
	s.supplies = append(s.supplies, sup)
	return sup
}

// AddEquipment stores equipment and returns it with its id.
func (s *Server) AddEquipment(eq model.Equipment) model.Equipment {
	s.mu.Lock()
	defer s.mu.Unlock()
	eq.ID = s.id()
	if eq.Status == "" {
		eq.Status = model.EquipmentAvailable
	}
	s.equipment = append(s.equipment, eq)
	return eq
}

// AddSupplyTransaction stores a supply transaction as is.
func (s *Server) AddSupplyTransaction(tx model.SupplyTransaction) model.SupplyTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.id()
	s.supplyTx = append(s.supplyTx, tx)
	return tx
}

// AddEquipmentTransaction stores an equipment transaction as is.
func (s *Server) AddEquipmentTransaction(tx model.EquipmentTransaction) model.EquipmentTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.id()
	s.equipmentTx = append(s.equipmentTx, tx)
	return tx
}

// Supplies returns a copy of the stored supplies.
func (s *Server) Supplies() []model.Supply {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Supply(nil), s.supplies...)
}

// Equipment returns a copy of the stored equipment.
func (s *Server) Equipment() []model.Equipment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Equipment(nil), s.equipment...)
}

// Hits returns how many times the route pattern was requested.
func (s *Server) Hits(pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[pattern]
}

func issue(u model.User, now time.Time) (string, error) {
	claims := auth.Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(6 * 30 * 24 * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.count)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate(false))
			r.Get("/users/current", s.currentUser)

			r.Get("/supplies/all", s.listSupplies)
			r.Get("/supplies/search", s.searchSupplies)
			r.Get("/supplies/{id}", s.getSupply)
			r.Get("/equipment/all", s.listEquipment)
			r.Get("/equipment/{id}", s.getEquipment)

			r.Post("/supplyTransactions/checkInSupply", s.moveSupply(model.KindCheckIn))
			r.Post("/supplyTransactions/checkOutSupply", s.moveSupply(model.KindCheckOut))
			r.Get("/supplyTransactions/all", s.listSupplyTx)
			r.Get("/supplyTransactions/by-month-year", s.supplyTxByMonth)
			r.Get("/supplyTransactions/{id}", s.getSupplyTx)

			r.Post("/equipmentTransactions/checkInEquipment", s.checkInEquipment)
			r.Post("/equipmentTransactions/checkOutEquipment", s.checkOutEquipment)
			r.Get("/equipmentTransactions/all", s.listEquipmentTx)
			r.Get("/equipmentTransactions/by-month-year", s.equipmentTxByMonth)
			r.Get("/equipmentTransactions/{id}", s.getEquipmentTx)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate(true))
			r.Post("/supplies/add", s.saveSupply)
			r.Put("/supplies/update/{id}", s.saveSupply)
			r.Delete("/supplies/delete/{id}", s.deleteSupply)
			r.Post("/equipment/add", s.saveEquipment)
			r.Put("/equipment/update/{id}", s.saveEquipment)
			r.Delete("/equipment/delete/{id}", s.deleteEquipment)

			r.Post("/maintenance/start", s.startMaintenance)
			r.Post("/maintenance/end", s.endMaintenance)
			r.Get("/maintenance/all", s.listMaintenance)
			r.Get("/maintenance/equipment/{id}", s.maintenanceByEquipment)
		})
	})
	return r
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if pattern := chi.RouteContext(r.Context()).RoutePattern(); pattern != "" {
			s.mu.Lock()
			s.hits[r.Method+" "+strings.TrimPrefix(pattern, "/api")]++
			s.mu.Unlock()
		}
	})
}

type userKey struct{}

func (s *Server) authenticate(admin bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				reply(w, http.StatusUnauthorized, "Missing bearer token", nil)
				return
			}
			var claims auth.Claims
			_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
				return []byte(signingKey), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.Now))
			if err != nil {
				reply(w, http.StatusUnauthorized, "Invalid token", nil)
				return
			}
			if admin && claims.Role != model.RoleAdmin {
				reply(w, http.StatusForbidden, "Access denied", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(withEmail(r, claims.Subject)))
		})
	}
}

// reply writes an envelope. extra is merged into it.
func reply(w http.ResponseWriter, status int, message string, extra map[string]any) {
	body := map[string]any{"status": status}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		reply(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		reply(w, http.StatusBadRequest, "Invalid id", nil)
		return 0, false
	}
	return id, true
}

func monthYear(r *http.Request) (int, int) {
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	return month, year
}

func inMonth(raw string, month, year int) bool {
	t, ok := model.ParseTimestamp(raw)
	return ok && int(t.Month()) == month && t.Year() == year
}
