package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/zaloga/internal/backend"
	"github.com/erazemk/zaloga/internal/model"
)

// direction is one side of a check-in/check-out page pair.
type direction struct {
	kind  model.Kind
	path  string
	title string
}

var (
	checkIn  = direction{kind: model.KindCheckIn, path: "/checkInSupply", title: "Check in supply"}
	checkOut = direction{kind: model.KindCheckOut, path: "/checkOutSupply", title: "Check out supply"}
)

type supplyMovementPage struct {
	PageData
	Action   string
	CheckOut bool
	Supplies []model.Supply
	Form     supplyMovementForm
}

// movableSupplies lists the supplies a movement may pick from. Only
// supplies with stock can be checked out.
func (s *Server) movableSupplies(r *http.Request, d direction) ([]model.Supply, string) {
	supplies, err := s.Backend.ListSupplies(r.Context(), token(r))
	if err != nil {
		return nil, loadError(err, "supplies")
	}
	if d.kind != model.KindCheckOut {
		return supplies, ""
	}
	inStock := supplies[:0:0]
	for _, sup := range supplies {
		if sup.CurrentStock > 0 {
			inStock = append(inStock, sup)
		}
	}
	return inStock, ""
}

// SupplyMovementPage handles GET /checkInSupply and GET /checkOutSupply.
func (s *Server) SupplyMovementPage(d direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := &supplyMovementPage{
			PageData: s.page(w, r, d.title),
			Action:   d.path,
			CheckOut: d.kind == model.KindCheckOut,
		}
		if id, err := strconv.ParseInt(r.URL.Query().Get("supply"), 10, 64); err == nil {
			data.Form.Supply = id
		}
		data.Supplies, data.Error = s.movableSupplies(r, d)
		s.Templates.Render(w, "supply_movement.html", data)
	}
}

// SupplyMovementSubmit handles POST /checkInSupply and POST /checkOutSupply.
func (s *Server) SupplyMovementSubmit(d direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := newFormReader(r)
		form := supplyMovementForm{
			Supply:   f.ID("supplyId", "supply"),
			Quantity: f.Float("quantity", "quantity"),
			Notes:    f.String("notes"),
		}

		errs := append(f.errors, s.validateForm(form)...)
		var err error
		msg := ""
		if len(errs) == 0 {
			m := backend.SupplyMovement{SupplyID: form.Supply, Quantity: form.Quantity, Notes: form.Notes}
			if d.kind == model.KindCheckOut {
				msg, err = s.Backend.CheckOutSupply(r.Context(), token(r), m)
			} else {
				msg, err = s.Backend.CheckInSupply(r.Context(), token(r), m)
			}
			if err == nil {
				s.redirectWithFlash(w, r, "/supplyTransactions", FlashSuccess, orDefault(msg, d.title+" recorded"))
				return
			}
			slog.Error("failed to record supply movement", "kind", d.kind, "supply", form.Supply, "error", err)
		}

		data := &supplyMovementPage{
			PageData: s.page(w, r, d.title),
			Action:   d.path,
			CheckOut: d.kind == model.KindCheckOut,
			Form:     form,
		}
		data.Supplies, data.Error = s.movableSupplies(r, d)
		status := http.StatusUnprocessableEntity
		if err != nil {
			data.Error = backend.Message(err, "Failed to record transaction")
			status = http.StatusBadGateway
		}
		data.Errors = errs
		s.Templates.RenderStatus(w, status, "supply_movement.html", data)
	}
}

type equipmentCheckInPage struct {
	PageData
	Equipment []model.Equipment
	Form      equipmentCheckInForm
}

// EquipmentCheckInPage handles GET /checkInEquipment. All equipment is
// offered; the backend rejects items that are not checked out.
func (s *Server) EquipmentCheckInPage(w http.ResponseWriter, r *http.Request) {
	data := &equipmentCheckInPage{PageData: s.page(w, r, "Check in equipment")}
	data.Equipment, data.Error = s.equipmentWithStatus(r, "")
	s.Templates.Render(w, "equipment_checkin.html", data)
}

// EquipmentCheckInSubmit handles POST /checkInEquipment.
func (s *Server) EquipmentCheckInSubmit(w http.ResponseWriter, r *http.Request) {
	f := newFormReader(r)
	form := equipmentCheckInForm{
		Equipment:   f.ID("equipmentId", "equipment"),
		HoursUsed:   f.Float("hoursUsed", "hours used"),
		Description: f.String("description"),
	}

	errs := append(f.errors, s.validateForm(form)...)
	var err error
	if len(errs) == 0 {
		var msg string
		msg, err = s.Backend.CheckInEquipment(r.Context(), token(r), backend.EquipmentCheckIn{
			EquipmentID: form.Equipment,
			HoursUsed:   form.HoursUsed,
			Description: form.Description,
		})
		if err == nil {
			s.redirectWithFlash(w, r, "/equipmentTransactions", FlashSuccess, orDefault(msg, "Equipment checked in"))
			return
		}
		slog.Error("failed to check in equipment", "equipment", form.Equipment, "error", err)
	}

	data := &equipmentCheckInPage{PageData: s.page(w, r, "Check in equipment"), Form: form}
	data.Equipment, data.Error = s.equipmentWithStatus(r, "")
	status := http.StatusUnprocessableEntity
	if err != nil {
		data.Error = backend.Message(err, "Failed to check in equipment")
		status = http.StatusBadGateway
	}
	data.Errors = errs
	s.Templates.RenderStatus(w, status, "equipment_checkin.html", data)
}

type equipmentCheckOutPage struct {
	PageData
	Equipment []model.Equipment
	Form      equipmentCheckOutForm
}

// EquipmentCheckOutPage handles GET /checkOutEquipment. Only available
// equipment can be handed out.
func (s *Server) EquipmentCheckOutPage(w http.ResponseWriter, r *http.Request) {
	data := &equipmentCheckOutPage{PageData: s.page(w, r, "Check out equipment")}
	data.Equipment, data.Error = s.equipmentWithStatus(r, model.EquipmentAvailable)
	s.Templates.Render(w, "equipment_checkout.html", data)
}

// EquipmentCheckOutSubmit handles POST /checkOutEquipment.
func (s *Server) EquipmentCheckOutSubmit(w http.ResponseWriter, r *http.Request) {
	f := newFormReader(r)
	form := equipmentCheckOutForm{
		Equipment:       f.ID("equipmentId", "equipment"),
		TotalHoursInput: f.Float("totalHoursInput", "total hours"),
		Note:            f.String("note"),
	}

	errs := append(f.errors, s.validateForm(form)...)
	var err error
	if len(errs) == 0 {
		var msg string
		msg, err = s.Backend.CheckOutEquipment(r.Context(), token(r), backend.EquipmentCheckOut{
			EquipmentID:     form.Equipment,
			TotalHoursInput: form.TotalHoursInput,
			Note:            form.Note,
		})
		if err == nil {
			s.redirectWithFlash(w, r, "/equipmentTransactions", FlashSuccess, orDefault(msg, "Equipment checked out"))
			return
		}
		slog.Error("failed to check out equipment", "equipment", form.Equipment, "error", err)
	}

	data := &equipmentCheckOutPage{PageData: s.page(w, r, "Check out equipment"), Form: form}
	data.Equipment, data.Error = s.equipmentWithStatus(r, model.EquipmentAvailable)
	status := http.StatusUnprocessableEntity
	if err != nil {
		data.Error = backend.Message(err, "Failed to check out equipment")
		status = http.StatusBadGateway
	}
	data.Errors = errs
	s.Templates.RenderStatus(w, status, "equipment_checkout.html", data)
}

func (s *Server) equipmentWithStatus(r *http.Request, status string) ([]model.Equipment, string) {
	equipment, err := s.Backend.ListEquipment(r.Context(), token(r), status)
	if err != nil {
		return nil, loadError(err, "equipment")
	}
	return equipment, ""
}

// listFilter is the type and optional month of a transaction list.
type listFilter struct {
	Kind  model.Kind
	Month int
	Year  int
}

func parseListFilter(r *http.Request) listFilter {
	q := r.URL.Query()
	var f listFilter
	if k, ok := model.ParseKind(q.Get("type")); ok {
		f.Kind = k
	}
	month, errM := strconv.Atoi(q.Get("month"))
	year, errY := strconv.Atoi(q.Get("year"))
	if errM == nil && errY == nil && month >= 1 && month <= 12 {
		f.Month, f.Year = month, year
	}
	return f
}

func (f listFilter) byMonth() bool { return f.Month != 0 }

// SupplyTransactionsPage handles GET /supplyTransactions.
func (s *Server) SupplyTransactionsPage(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r)

	var (
		txs []model.SupplyTransaction
		err error
	)
	if filter.byMonth() {
		txs, err = s.Backend.SupplyTransactionsByMonth(r.Context(), token(r), filter.Month, filter.Year)
		if filter.Kind != "" {
			kept := txs[:0]
			for _, tx := range txs {
				if tx.Kind() == filter.Kind {
					kept = append(kept, tx)
				}
			}
			txs = kept
		}
	} else {
		txs, err = s.Backend.ListSupplyTransactions(r.Context(), token(r), string(filter.Kind))
	}

	data := &struct {
		PageData
		Filter       listFilter
		Kinds        []model.Kind
		Transactions []model.SupplyTransaction
		Pagination   Pagination
	}{PageData: s.page(w, r, "Supply transactions"), Filter: filter, Kinds: model.Kinds}
	if err != nil {
		data.Error = loadError(err, "supply transactions")
	}
	data.Transactions, data.Pagination = Paginate(r, txs)

	s.Templates.Render(w, "supply_transactions.html", data)
}

// SupplyTransactionPage handles GET /supplyTransactions/{id}.
func (s *Server) SupplyTransactionPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.NotFound(w, r)
		return
	}

	data := &struct {
		PageData
		Transaction *model.SupplyTransaction
	}{PageData: s.page(w, r, "Supply transaction")}

	tx, err := s.Backend.GetSupplyTransaction(r.Context(), token(r), id)
	if err != nil {
		data.Error = loadError(err, "supply transaction")
	}
	data.Transaction = tx

	s.Templates.Render(w, "supply_transaction.html", data)
}

// EquipmentTransactionsPage handles GET /equipmentTransactions.
func (s *Server) EquipmentTransactionsPage(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r)

	var (
		txs []model.EquipmentTransaction
		err error
	)
	if filter.byMonth() {
		txs, err = s.Backend.EquipmentTransactionsByMonth(r.Context(), token(r), filter.Month, filter.Year)
		if filter.Kind != "" {
			kept := txs[:0]
			for _, tx := range txs {
				if tx.Kind() == filter.Kind {
					kept = append(kept, tx)
				}
			}
			txs = kept
		}
	} else {
		txs, err = s.Backend.ListEquipmentTransactions(r.Context(), token(r), string(filter.Kind))
	}

	data := &struct {
		PageData
		Filter       listFilter
		Kinds        []model.Kind
		Transactions []model.EquipmentTransaction
		Pagination   Pagination
	}{PageData: s.page(w, r, "Equipment transactions"), Filter: filter, Kinds: model.Kinds}
	if err != nil {
		data.Error = loadError(err, "equipment transactions")
	}
	data.Transactions, data.Pagination = Paginate(r, txs)

	s.Templates.Render(w, "equipment_transactions.html", data)
}

// EquipmentTransactionPage handles GET /equipmentTransactions/{id}.
func (s *Server) EquipmentTransactionPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.NotFound(w, r)
		return
	}

	data := &struct {
		PageData
		Transaction *model.EquipmentTransaction
	}{PageData: s.page(w, r, "Equipment transaction")}

	tx, err := s.Backend.GetEquipmentTransaction(r.Context(), token(r), id)
	if err != nil {
		data.Error = loadError(err, "equipment transaction")
	}
	data.Transaction = tx

	s.Templates.Render(w, "equipment_transaction.html", data)
}
