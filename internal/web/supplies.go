package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/zaloga/internal/backend"
	"github.com/erazemk/zaloga/internal/model"
)

// SuppliesPage handles GET /supply. A non-empty "q" searches by name or SKU.
func (s *Server) SuppliesPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var (
		supplies []model.Supply
		err      error
	)
	if query != "" {
		supplies, err = s.Backend.SearchSupplies(r.Context(), token(r), query)
	} else {
		supplies, err = s.Backend.ListSupplies(r.Context(), token(r))
	}

	data := &struct {
		PageData
		Query      string
		Supplies   []model.Supply
		Pagination Pagination
	}{PageData: s.page(w, r, "Supplies"), Query: query}
	if err != nil {
		data.Error = loadError(err, "supplies")
	}
	data.Supplies, data.Pagination = Paginate(r, supplies)

	s.Templates.Render(w, "supplies.html", data)
}

type supplyFormPage struct {
	PageData
	ID   int64
	Form supplyForm
}

// SupplyFormPage handles GET /supply/add and GET /supply/edit/{id}.
func (s *Server) SupplyFormPage(w http.ResponseWriter, r *http.Request) {
	data := &supplyFormPage{PageData: s.page(w, r, "Add supply")}

	if urlParam(r, "id") != "" {
		id, ok := pathID(r, "id")
		if !ok {
			s.NotFound(w, r)
			return
		}
		data.Title = "Edit supply"
		data.ID = id

		supply, err := s.Backend.GetSupply(r.Context(), token(r), id)
		if err != nil {
			data.Error = loadError(err, "supply")
		} else {
			data.Form = supplyForm{
				Name:        supply.Name,
				SKU:         supply.SKU,
				Quantity:    supply.Quantity,
				Price:       supply.Price,
				Description: supply.Description,
			}
		}
	}

	s.Templates.Render(w, "supply_form.html", data)
}

// SupplyFormSubmit handles POST /supply/add and POST /supply/edit/{id}.
func (s *Server) SupplyFormSubmit(w http.ResponseWriter, r *http.Request) {
	f := newFormReader(r)
	form := supplyForm{
		Name:        f.String("name"),
		SKU:         f.String("sku"),
		Quantity:    f.Float("quantity", "quantity"),
		Price:       f.Float("price", "price"),
		Description: f.String("description"),
	}

	data := &supplyFormPage{PageData: s.page(w, r, "Add supply"), Form: form}
	editing := urlParam(r, "id") != ""
	if editing {
		id, ok := pathID(r, "id")
		if !ok {
			s.NotFound(w, r)
			return
		}
		data.Title = "Edit supply"
		data.ID = id
	}

	if errs := append(f.errors, s.validateForm(form)...); len(errs) > 0 {
		data.Errors = errs
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "supply_form.html", data)
		return
	}

	in := backend.SupplyInput{
		Name:        form.Name,
		SKU:         form.SKU,
		Quantity:    form.Quantity,
		Price:       form.Price,
		Description: form.Description,
	}
	var (
		msg string
		err error
	)
	if editing {
		msg, err = s.Backend.UpdateSupply(r.Context(), token(r), data.ID, in)
	} else {
		msg, err = s.Backend.CreateSupply(r.Context(), token(r), in)
	}
	if err != nil {
		slog.Error("failed to save supply", "id", data.ID, "error", err)
		data.Error = backend.Message(err, "Failed to save supply")
		s.Templates.RenderStatus(w, http.StatusBadGateway, "supply_form.html", data)
		return
	}

	s.redirectWithFlash(w, r, "/supply", FlashSuccess, orDefault(msg, "Supply saved"))
}

// SupplyDelete handles POST /supply/delete/{id}.
func (s *Server) SupplyDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.NotFound(w, r)
		return
	}

	msg, err := s.Backend.DeleteSupply(r.Context(), token(r), id)
	if err != nil {
		slog.Error("failed to delete supply", "id", id, "error", err)
		s.redirectWithFlash(w, r, "/supply", FlashDestructive, backend.Message(err, "Failed to delete supply"))
		return
	}
	s.redirectWithFlash(w, r, "/supply", FlashSuccess, orDefault(msg, "Supply deleted"))
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
