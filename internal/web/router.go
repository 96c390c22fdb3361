package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/zaloga/internal/backend"
	"github.com/erazemk/zaloga/internal/gate"
	"github.com/erazemk/zaloga/internal/session"
	webembed "github.com/erazemk/zaloga/web"
)

// Options configures the web client.
type Options struct {
	Codec         session.Codec
	SecureCookies bool
	Now           func() time.Time
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(client *backend.Client, opts Options) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	if opts.Codec == nil {
		opts.Codec = session.DefaultObfuscator()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		Backend:       client,
		Templates:     templates,
		Codec:         opts.Codec,
		SecureCookies: opts.SecureCookies,
		Now:           opts.Now,
		validate:      validator.New(),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware)

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	r.Group(func(r chi.Router) {
		r.Use(session.Middleware(s.Codec, s.SecureCookies))
		r.NotFound(s.NotFound)

		r.Group(func(pr chi.Router) {
			pr.Use(gate.Require(gate.PublicRoute))
			pr.Get("/", s.Home)
			pr.Get("/login", s.LoginPage)
			pr.Post("/login", s.LoginSubmit)
			pr.Get("/register", s.RegisterPage)
			pr.Post("/register", s.RegisterSubmit)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(gate.Require(gate.AuthenticatedRoute))
			pr.Post("/logout", s.Logout)
			pr.Get("/profile", s.Profile)

			pr.Get("/dashboard", s.Dashboard)
			pr.Get("/dashboard/chart.png", s.DashboardChart)
			pr.Get("/dashboard/series", s.DashboardSeries)

			pr.Get("/checkInSupply", s.SupplyMovementPage(checkIn))
			pr.Post("/checkInSupply", s.SupplyMovementSubmit(checkIn))
			pr.Get("/checkOutSupply", s.SupplyMovementPage(checkOut))
			pr.Post("/checkOutSupply", s.SupplyMovementSubmit(checkOut))
			pr.Get("/supplyTransactions", s.SupplyTransactionsPage)
			pr.Get("/supplyTransactions/{id}", s.SupplyTransactionPage)

			pr.Get("/checkInEquipment", s.EquipmentCheckInPage)
			pr.Post("/checkInEquipment", s.EquipmentCheckInSubmit)
			pr.Get("/checkOutEquipment", s.EquipmentCheckOutPage)
			pr.Post("/checkOutEquipment", s.EquipmentCheckOutSubmit)
			pr.Get("/equipmentTransactions", s.EquipmentTransactionsPage)
			pr.Get("/equipmentTransactions/{id}", s.EquipmentTransactionPage)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(gate.Require(gate.AdminRoute))
			pr.Get("/supply", s.SuppliesPage)
			pr.Get("/supply/add", s.SupplyFormPage)
			pr.Post("/supply/add", s.SupplyFormSubmit)
			pr.Get("/supply/edit/{id}", s.SupplyFormPage)
			pr.Post("/supply/edit/{id}", s.SupplyFormSubmit)
			pr.Post("/supply/delete/{id}", s.SupplyDelete)

			pr.Get("/equipment", s.EquipmentPage)
			pr.Get("/equipment/add", s.EquipmentFormPage)
			pr.Post("/equipment/add", s.EquipmentFormSubmit)
			pr.Get("/equipment/edit/{id}", s.EquipmentFormPage)
			pr.Post("/equipment/edit/{id}", s.EquipmentFormSubmit)
			pr.Post("/equipment/delete/{id}", s.EquipmentDelete)

			pr.Get("/maintenanceRecords", s.MaintenancePage)
			pr.Post("/maintenanceRecords/start", s.MaintenanceStartSubmit)
			pr.Post("/maintenanceRecords/end", s.MaintenanceEndSubmit)
		})
	})

	return r, nil
}

func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
