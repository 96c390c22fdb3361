package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/zaloga/internal/backend"
	"github.com/erazemk/zaloga/internal/model"
)

type maintenancePage struct {
	PageData
	EquipmentID   int64
	Records       []model.MaintenanceRecord
	Pagination    Pagination
	Available     []model.Equipment
	InMaintenance []model.Equipment
	Start         maintenanceStartForm
	End           maintenanceEndForm
}

// loadMaintenance fills the records and the equipment pickers of the page. Failures
// are reported on the page and leave the affected list empty.
func (s *Server) loadMaintenance(r *http.Request, data *maintenancePage) {
	var (
		records                  []model.MaintenanceRecord
		available, inMaintenance []model.Equipment
		recordsErr, eqErr        error
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		if data.EquipmentID != 0 {
			records, recordsErr = s.Backend.MaintenanceRecordsByEquipment(ctx, token(r), data.EquipmentID)
		} else {
			records, recordsErr = s.Backend.ListMaintenanceRecords(ctx, token(r))
		}
		return nil
	})
	g.Go(func() error {
		all, err := s.Backend.ListEquipment(ctx, token(r), "")
		if err != nil {
			eqErr = err
			return nil
		}
		for _, eq := range all {
			switch eq.Status {
			case model.EquipmentAvailable:
				available = append(available, eq)
			case model.EquipmentMaintenance:
				inMaintenance = append(inMaintenance, eq)
			}
		}
		return nil
	})
	_ = g.Wait()

	if recordsErr != nil {
		data.Error = loadError(recordsErr, "maintenance records")
	} else if eqErr != nil {
		data.Error = loadError(eqErr, "equipment")
	}
	data.Records, data.Pagination = Paginate(r, records)
	data.Available = available
	data.InMaintenance = inMaintenance
}

// MaintenancePage handles GET /maintenanceRecords. An optional "equipment"
// id narrows the records to one piece of equipment.
func (s *Server) MaintenancePage(w http.ResponseWriter, r *http.Request) {
	data := &maintenancePage{PageData: s.page(w, r, "Maintenance records")}
	if id, err := strconv.ParseInt(r.URL.Query().Get("equipment"), 10, 64); err == nil && id > 0 {
		data.EquipmentID = id
	}
	s.loadMaintenance(r, data)
	s.Templates.Render(w, "maintenance.html", data)
}

// MaintenanceStartSubmit handles POST /maintenanceRecords/start.
func (s *Server) MaintenanceStartSubmit(w http.ResponseWriter, r *http.Request) {
	f := newFormReader(r)
	form := maintenanceStartForm{
		Equipment:   f.ID("equipmentId", "equipment"),
		Description: f.String("description"),
	}

	errs := append(f.errors, s.validateForm(form)...)
	var err error
	if len(errs) == 0 {
		var msg string
		msg, err = s.Backend.StartMaintenance(r.Context(), token(r), backend.MaintenanceStart{
			EquipmentID: form.Equipment,
			Description: form.Description,
		})
		if err == nil {
			s.redirectWithFlash(w, r, "/maintenanceRecords", FlashSuccess, orDefault(msg, "Maintenance started"))
			return
		}
		slog.Error("failed to start maintenance", "equipment", form.Equipment, "error", err)
	}

	s.renderMaintenanceError(w, r, errs, err, "Failed to start maintenance", func(d *maintenancePage) { d.Start = form })
}

// MaintenanceEndSubmit handles POST /maintenanceRecords/end.
func (s *Server) MaintenanceEndSubmit(w http.ResponseWriter, r *http.Request) {
	f := newFormReader(r)
	form := maintenanceEndForm{
		Equipment:            f.ID("equipmentId", "equipment"),
		MaintenancePerformed: f.String("maintenancePerformed"),
		Note:                 f.String("note"),
	}

	errs := append(f.errors, s.validateForm(form)...)
	var err error
	if len(errs) == 0 {
		var msg string
		msg, err = s.Backend.EndMaintenance(r.Context(), token(r), backend.MaintenanceEnd{
			EquipmentID:          form.Equipment,
			MaintenancePerformed: form.MaintenancePerformed,
			Note:                 form.Note,
		})
		if err == nil {
			s.redirectWithFlash(w, r, "/maintenanceRecords", FlashSuccess, orDefault(msg, "Maintenance completed"))
			return
		}
		slog.Error("failed to end maintenance", "equipment", form.Equipment, "error", err)
	}

	s.renderMaintenanceError(w, r, errs, err, "Failed to end maintenance", func(d *maintenancePage) { d.End = form })
}

func (s *Server) renderMaintenanceError(w http.ResponseWriter, r *http.Request, errs []string, err error, fallback string, keep func(*maintenancePage)) {
	data := &maintenancePage{PageData: s.page(w, r, "Maintenance records")}
	keep(data)
	s.loadMaintenance(r, data)

	status := http.StatusUnprocessableEntity
	if err != nil {
		data.Error = backend.Message(err, fallback)
		status = http.StatusBadGateway
	}
	data.Errors = errs
	s.Templates.RenderStatus(w, status, "maintenance.html", data)
}
