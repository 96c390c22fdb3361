package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/zaloga/internal/backend"
	"github.com/erazemk/zaloga/internal/model"
)

// EquipmentPage handles GET /equipment. An optional "status" narrows the
// list.
func (s *Server) EquipmentPage(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if !model.ValidEquipmentStatus(status) {
		status = ""
	}

	equipment, err := s.Backend.ListEquipment(r.Context(), token(r), status)

	data := &struct {
		PageData
		Status     string
		Statuses   []string
		Equipment  []model.Equipment
		Pagination Pagination
	}{PageData: s.page(w, r, "Equipment"), Status: status, Statuses: model.EquipmentStatuses}
	if err != nil {
		data.Error = loadError(err, "equipment")
	}
	data.Equipment, data.Pagination = Paginate(r, equipment)

	s.Templates.Render(w, "equipment.html", data)
}

type equipmentFormPage struct {
	PageData
	ID       int64
	Form     equipmentForm
	Statuses []string
}

// EquipmentFormPage handles GET /equipment/add and GET /equipment/edit/{id}.
func (s *Server) EquipmentFormPage(w http.ResponseWriter, r *http.Request) {
	data := &equipmentFormPage{
		PageData: s.page(w, r, "Add equipment"),
		Form:     equipmentForm{Status: model.EquipmentAvailable},
		Statuses: model.EquipmentStatuses,
	}

	if urlParam(r, "id") != "" {
		id, ok := pathID(r, "id")
		if !ok {
			s.NotFound(w, r)
			return
		}
		data.Title = "Edit equipment"
		data.ID = id

		eq, err := s.Backend.GetEquipment(r.Context(), token(r), id)
		if err != nil {
			data.Error = loadError(err, "equipment")
		} else {
			data.Form = equipmentForm{
				Name:         eq.Name,
				SerialNumber: eq.SerialNumber,
				Status:       eq.Status,
				Location:     eq.Location,
				Description:  eq.Description,
			}
		}
	}

	s.Templates.Render(w, "equipment_form.html", data)
}

// EquipmentFormSubmit handles POST /equipment/add and POST /equipment/edit/{id}.
func (s *Server) EquipmentFormSubmit(w http.ResponseWriter, r *http.Request) {
	f := newFormReader(r)
	form := equipmentForm{
		Name:         f.String("name"),
		SerialNumber: f.String("serialNumber"),
		Status:       f.String("status"),
		Location:     f.String("location"),
		Description:  f.String("description"),
	}

	data := &equipmentFormPage{PageData: s.page(w, r, "Add equipment"), Form: form, Statuses: model.EquipmentStatuses}
	editing := urlParam(r, "id") != ""
	if editing {
		id, ok := pathID(r, "id")
		if !ok {
			s.NotFound(w, r)
			return
		}
		data.Title = "Edit equipment"
		data.ID = id
	}

	if errs := s.validateForm(form); len(errs) > 0 {
		data.Errors = errs
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "equipment_form.html", data)
		return
	}

	in := backend.EquipmentInput{
		Name:         form.Name,
		SerialNumber: form.SerialNumber,
		Status:       form.Status,
		Location:     form.Location,
		Description:  form.Description,
	}
	var (
		msg string
		err error
	)
	if editing {
		msg, err = s.Backend.UpdateEquipment(r.Context(), token(r), data.ID, in)
	} else {
		msg, err = s.Backend.CreateEquipment(r.Context(), token(r), in)
	}
	if err != nil {
		slog.Error("failed to save equipment", "id", data.ID, "error", err)
		data.Error = backend.Message(err, "Failed to save equipment")
		s.Templates.RenderStatus(w, http.StatusBadGateway, "equipment_form.html", data)
		return
	}

	s.redirectWithFlash(w, r, "/equipment", FlashSuccess, orDefault(msg, "Equipment saved"))
}

// EquipmentDelete handles POST /equipment/delete/{id}.
func (s *Server) EquipmentDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.NotFound(w, r)
		return
	}

	msg, err := s.Backend.DeleteEquipment(r.Context(), token(r), id)
	if err != nil {
		slog.Error("failed to delete equipment", "id", id, "error", err)
		s.redirectWithFlash(w, r, "/equipment", FlashDestructive, backend.Message(err, "Failed to delete equipment"))
		return
	}
	s.redirectWithFlash(w, r, "/equipment", FlashSuccess, orDefault(msg, "Equipment deleted"))
}
