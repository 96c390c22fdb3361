package backendtest

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/zaloga/internal/backend"
	"github.com/erazemk/zaloga/internal/model"
)

func withEmail(r *http.Request, email string) context.Context {
	return context.WithValue(r.Context(), userKey{}, email)
}

func (s *Server) caller(r *http.Request) model.User {
	email, _ := r.Context().Value(userKey{}).(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.accounts[email]; ok {
		return acc.user
	}
	return model.User{Email: email}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req backend.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		reply(w, http.StatusBadRequest, "Name, email and password are required", nil)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		reply(w, http.StatusInternalServerError, "Could not hash password", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[req.Email]; ok {
		reply(w, http.StatusBadRequest, "Email already registered", nil)
		return
	}
	s.accounts[req.Email] = &account{
		user: model.User{ID: s.id(), Name: req.Name, Email: req.Email, PhoneNumber: req.PhoneNumber, Role: model.RoleManager},
		hash: hash,
	}
	reply(w, http.StatusOK, "User registered successfully", nil)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req backend.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	acc, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(req.Password)) != nil {
		reply(w, http.StatusBadRequest, "Invalid email or password", nil)
		return
	}
	token, err := issue(acc.user, s.Now())
	if err != nil {
		reply(w, http.StatusInternalServerError, "Could not issue token", nil)
		return
	}
	reply(w, http.StatusOK, "Login successful", map[string]any{"token": token, "role": acc.user.Role})
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	reply(w, http.StatusOK, "", map[string]any{"user": s.caller(r)})
}

func (s *Server) listSupplies(w http.ResponseWriter, r *http.Request) {
	reply(w, http.StatusOK, "", map[string]any{"supplies": s.Supplies()})
}

func (s *Server) searchSupplies(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("searchValue"))
	var out []model.Supply
	for _, sup := range s.Supplies() {
		if strings.Contains(strings.ToLower(sup.Name), q) || strings.Contains(strings.ToLower(sup.SKU), q) {
			out = append(out, sup)
		}
	}
	reply(w, http.StatusOK, "", map[string]any{"supplies": out})
}

func (s *Server) supplyIndex(id int64) int {
	return slices.IndexFunc(s.supplies, func(x model.Supply) bool { return x.ID == id })
}

func (s *Server) equipmentIndex(id int64) int {
	return slices.IndexFunc(s.equipment, func(x model.Equipment) bool { return x.ID == id })
}

func (s *Server) getSupply(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.supplyIndex(id)
	if i < 0 {
		reply(w, http.StatusNotFound, "Supply not found", nil)
		return
	}
	reply(w, http.StatusOK, "", map[string]any{"supply": s.supplies[i]})
}

func (s *Server) saveSupply(w http.ResponseWriter, r *http.Request) {
	var in backend.SupplyInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !strings.Contains(r.URL.Path, "/update/") {
		s.supplies = append(s.supplies, model.Supply{
			ID: s.id(), Name: in.Name, SKU: in.SKU, Price: in.Price, Description: in.Description,
			Quantity: in.Quantity, CurrentStock: in.Quantity, MaximumQuantity: in.Quantity,
		})
		reply(w, http.StatusOK, "Supply added successfully", nil)
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	i := s.supplyIndex(id)
	if i < 0 {
		reply(w, http.StatusNotFound, "Supply not found", nil)
		return
	}
	sup := &s.supplies[i]
	sup.Name, sup.SKU, sup.Price, sup.Description, sup.Quantity = in.Name, in.SKU, in.Price, in.Description, in.Quantity
	reply(w, http.StatusOK, "Supply updated successfully", nil)
}

func (s *Server) deleteSupply(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.supplyIndex(id)
	if i < 0 {
		reply(w, http.StatusNotFound, "Supply not found", nil)
		return
	}
	s.supplies = slices.Delete(s.supplies, i, i+1)
	reply(w, http.StatusOK, "Supply deleted successfully", nil)
}

func (s *Server) listEquipment(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("equipmentStatus")
	var out []model.Equipment
	for _, eq := range s.Equipment() {
		if status == "" || eq.Status == status {
			out = append(out, eq)
		}
	}
	reply(w, http.StatusOK, "", map[string]any{"equipments": out})
}

func (s *Server) getEquipment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.equipmentIndex(id)
	if i < 0 {
		reply(w, http.StatusNotFound, "Equipment not found", nil)
		return
	}
	reply(w, http.StatusOK, "", map[string]any{"equipment": s.equipment[i]})
}

func (s *Server) saveEquipment(w http.ResponseWriter, r *http.Request) {
	var in backend.EquipmentInput
	if !decode(w, r, &in) {
		return
	}
	if in.Status != "" && !model.ValidEquipmentStatus(in.Status) {
		reply(w, http.StatusBadRequest, "Invalid equipment status", nil)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !strings.Contains(r.URL.Path, "/update/") {
		s.equipment = append(s.equipment, model.Equipment{
			ID: s.id(), Name: in.Name, SerialNumber: in.SerialNumber, Status: in.Status,
			Location: in.Location, Description: in.Description,
		})
		reply(w, http.StatusOK, "Equipment added successfully", nil)
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	i := s.equipmentIndex(id)
	if i < 0 {
		reply(w, http.StatusNotFound, "Equipment not found", nil)
		return
	}
	eq := &s.equipment[i]
	eq.Name, eq.SerialNumber, eq.Status, eq.Location, eq.Description = in.Name, in.SerialNumber, in.Status, in.Location, in.Description
	reply(w, http.StatusOK, "Equipment updated successfully", nil)
}

func (s *Server) deleteEquipment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.equipmentIndex(id)
	if i < 0 {
		reply(w, http.StatusNotFound, "Equipment not found", nil)
		return
	}
	s.equipment = slices.Delete(s.equipment, i, i+1)
	reply(w, http.StatusOK, "Equipment deleted successfully", nil)
}

func (s *Server) moveSupply(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in backend.SupplyMovement
		if !decode(w, r, &in) {
			return
		}
		if in.Quantity <= 0 {
			reply(w, http.StatusBadRequest, "Quantity must be positive", nil)
			return
		}
		user := s.caller(r)

		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.supplyIndex(in.SupplyID)
		if i < 0 {
			reply(w, http.StatusNotFound, "Supply not found", nil)
			return
		}
		sup := &s.supplies[i]
		if kind == model.KindCheckOut {
			if in.Quantity > sup.CurrentStock {
				reply(w, http.StatusBadRequest, "Insufficient stock", nil)
				return
			}
			sup.CurrentStock -= in.Quantity
		} else {
			sup.CurrentStock += in.Quantity
		}
		s.supplyTx = append(s.supplyTx, model.SupplyTransaction{
			ID: s.id(), Type: kind, Quantity: model.NewAmount(in.Quantity), Note: in.Notes,
			Timestamp: s.Now().Format(timeLayout), SupplyID: sup.ID, SupplyName: sup.Name, UserName: user.Name,
		})
		reply(w, http.StatusOK, "Supply "+strings.ToLower(kind.Label())+" recorded", nil)
	}
}

func (s *Server) listSupplyTx(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.SupplyTransaction
	for _, tx := range s.supplyTx {
		if filter == "" || string(tx.Kind()) == filter {
			out = append(out, tx)
		}
	}
	reply(w, http.StatusOK, "", map[string]any{"supplyTransactions": out})
}

func (s *Server) supplyTxByMonth(w http.ResponseWriter, r *http.Request) {
	month, year := monthYear(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.SupplyTransaction
	for _, tx := range s.supplyTx {
		if inMonth(tx.When(), month, year) {
			out = append(out, tx)
		}
	}
	reply(w, http.StatusOK, "", map[string]any{"supplyTransactions": out})
}

func (s *Server) getSupplyTx(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.supplyTx {
		if tx.ID == id {
			reply(w, http.StatusOK, "", map[string]any{"supplyTransaction": tx})
			return
		}
	}
	reply(w, http.StatusNotFound, "Transaction not found", nil)
}

func (s *Server) checkOutEquipment(w http.ResponseWriter, r *http.Request) {
	var in backend.EquipmentCheckOut
	if !decode(w, r, &in) {
		return
	}
	user := s.caller(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.equipmentIndex(in.EquipmentID)
	if i < 0 {
		reply(w, http.StatusNotFound, "Equipment not found", nil)
		return
	}
	eq := &s.equipment[i]
	if eq.Status != model.EquipmentAvailable {
		reply(w, http.StatusBadRequest, "Equipment is not available", nil)
		return
	}
	now := s.Now().Format(timeLayout)
	eq.Status = model.EquipmentInUse
	eq.LastCheckedOutBy = user.Name
	eq.LastCheckOutTime = now
	s.equipmentTx = append(s.equipmentTx, model.EquipmentTransaction{
		ID: s.id(), Type: model.KindCheckOut, TotalHoursInput: model.NewAmount(in.TotalHoursInput), Note: in.Note,
		Timestamp: now, EquipmentID: eq.ID, EquipmentName: eq.Name, UserName: user.Name,
	})
	reply(w, http.StatusOK, "Equipment checked out", nil)
}

func (s *Server) checkInEquipment(w http.ResponseWriter, r *http.Request) {
	var in backend.EquipmentCheckIn
	if !decode(w, r, &in) {
		return
	}
	if in.HoursUsed < 0 {
		reply(w, http.StatusBadRequest, "Hours used cannot be negative", nil)
		return
	}
	user := s.caller(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.equipmentIndex(in.EquipmentID)
	if i < 0 {
		reply(w, http.StatusNotFound, "Equipment not found", nil)
		return
	}
	eq := &s.equipment[i]
	if eq.Status != model.EquipmentInUse {
		reply(w, http.StatusBadRequest, "Equipment is not checked out", nil)
		return
	}
	eq.Status = model.EquipmentAvailable
	eq.TotalHours += in.HoursUsed
	s.equipmentTx = append(s.equipmentTx, model.EquipmentTransaction{
		ID: s.id(), Type: model.KindCheckIn, HoursLogged: model.NewAmount(in.HoursUsed), Description: in.Description,
		Timestamp: s.Now().Format(timeLayout), EquipmentID: eq.ID, EquipmentName: eq.Name, UserName: user.Name,
	})
	reply(w, http.StatusOK, "Equipment checked in", nil)
}

func (s *Server) listEquipmentTx(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("equipmentTransactionFilter")
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.EquipmentTransaction
	for _, tx := range s.equipmentTx {
		if filter == "" || string(tx.Kind()) == filter {
			out = append(out, tx)
		}
	}
	reply(w, http.StatusOK, "", map[string]any{"equipmentTransactions": out})
}

func (s *Server) equipmentTxByMonth(w http.ResponseWriter, r *http.Request) {
	month, year := monthYear(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.EquipmentTransaction
	for _, tx := range s.equipmentTx {
		if inMonth(tx.When(), month, year) {
			out = append(out, tx)
		}
	}
	reply(w, http.StatusOK, "", map[string]any{"equipmentTransactions": out})
}

func (s *Server) getEquipmentTx(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.equipmentTx {
		if tx.ID == id {
			reply(w, http.StatusOK, "", map[string]any{"equipmentTransaction": tx})
			return
		}
	}
	reply(w, http.StatusNotFound, "Transaction not found", nil)
}

func (s *Server) startMaintenance(w http.ResponseWriter, r *http.Request) {
	var in backend.MaintenanceStart
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.equipmentIndex(in.EquipmentID)
	if i < 0 {
		reply(w, http.StatusNotFound, "Equipment not found", nil)
		return
	}
	eq := &s.equipment[i]
	if eq.Status != model.EquipmentAvailable {
		reply(w, http.StatusBadRequest, "Equipment must be available to start maintenance", nil)
		return
	}
	eq.Status = model.EquipmentMaintenance
	reply(w, http.StatusOK, "Maintenance started", nil)
}

func (s *Server) endMaintenance(w http.ResponseWriter, r *http.Request) {
	var in backend.MaintenanceEnd
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.equipmentIndex(in.EquipmentID)
	if i < 0 {
		reply(w, http.StatusNotFound, "Equipment not found", nil)
		return
	}
	eq := &s.equipment[i]
	if eq.Status != model.EquipmentMaintenance {
		reply(w, http.StatusBadRequest, "Equipment is not in maintenance", nil)
		return
	}
	eq.Status = model.EquipmentAvailable
	eq.LastMaintenanceHours = eq.TotalHours
	snapshot := *eq
	s.maintenance = append(s.maintenance, model.MaintenanceRecord{
		ID: s.id(), MaintenancePerformed: in.MaintenancePerformed, Note: in.Note,
		TotalHoursAtMaintenance: eq.TotalHours, PerformedAt: s.Now().Format(timeLayout), Equipment: &snapshot,
	})
	reply(w, http.StatusOK, "Maintenance completed", nil)
}

func (s *Server) listMaintenance(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply(w, http.StatusOK, "", map[string]any{"maintenanceRecords": append([]model.MaintenanceRecord(nil), s.maintenance...)})
}

func (s *Server) maintenanceByEquipment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.MaintenanceRecord
	for _, rec := range s.maintenance {
		if rec.Equipment != nil && rec.Equipment.ID == id {
			out = append(out, rec)
		}
	}
	reply(w, http.StatusOK, "", map[string]any{"maintenanceRecords": out})
}
