package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// User management
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")

	// Clients and projects
	r.HandleFunc("/api/client", deps.ClientHandler.ListClients).Methods("GET")
	r.HandleFunc("/api/client", deps.ClientHandler.CreateClient).Methods("POST")
	r.HandleFunc("/api/client/{clientId}", deps.ClientHandler.GetClient).Methods("GET")
	r.HandleFunc("/api/client/{clientId}", deps.ClientHandler.UpdateClient).Methods("PUT")
	r.HandleFunc("/api/client/{clientId}", deps.ClientHandler.DeleteClient).Methods("DELETE")
	r.HandleFunc("/api/client/{clientId}/project", deps.ClientHandler.ListProjects).Methods("GET")
	r.HandleFunc("/api/client/{clientId}/project", deps.ClientHandler.CreateProject).Methods("POST")

	// Rates
	r.HandleFunc("/api/rate/resolve", deps.RateHandler.Resolve).Methods("GET")
	r.HandleFunc("/api/rate", deps.RateHandler.List).Methods("GET")
	r.HandleFunc("/api/rate", deps.RateHandler.Create).Methods("POST")
	r.HandleFunc("/api/rate/{rateId}", deps.RateHandler.Update).Methods("PUT")
	r.HandleFunc("/api/rate/{rateId}", deps.RateHandler.Delete).Methods("DELETE")

	// Activities
	r.HandleFunc("/api/activity", deps.ActivityHandler.List).Methods("GET")
	r.HandleFunc("/api/activity", deps.ActivityHandler.Create).Methods("POST")
	r.HandleFunc("/api/activity/{activityId}", deps.ActivityHandler.Get).Methods("GET")
	r.HandleFunc("/api/activity/{activityId}", deps.ActivityHandler.Update).Methods("PUT")
	r.HandleFunc("/api/activity/{activityId}", deps.ActivityHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/activity/{activityId}/transition", deps.ActivityHandler.Transition).Methods("POST")

	// Time ledger
	r.HandleFunc("/api/activity/{activityId}/span", deps.TimeEntryHandler.List).Methods("GET")
	r.HandleFunc("/api/activity/{activityId}/span", deps.TimeEntryHandler.Record).Methods("POST")
	r.HandleFunc("/api/activity/{activityId}/total", deps.TimeEntryHandler.Total).Methods("GET")
	r.HandleFunc("/api/span/{spanId}", deps.TimeEntryHandler.Update).Methods("PUT")
	r.HandleFunc("/api/span/{spanId}", deps.TimeEntryHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/span/{spanId}/close", deps.TimeEntryHandler.Close).Methods("POST")

	// Work timer
	r.HandleFunc("/api/timer", deps.TimerHandler.Current).Methods("GET")
	r.HandleFunc("/api/timer/start", deps.TimerHandler.Start).Methods("POST")
	r.HandleFunc("/api/timer/pause", deps.TimerHandler.Pause).Methods("POST")
	r.HandleFunc("/api/timer/resume", deps.TimerHandler.Resume).Methods("POST")
	r.HandleFunc("/api/timer/stop", deps.TimerHandler.Stop).Methods("POST")
	r.HandleFunc("/api/timer/reset", deps.TimerHandler.Reset).Methods("POST")

	// Invoices
	r.HandleFunc("/api/invoice", deps.InvoiceHandler.List).Methods("GET")
	r.HandleFunc("/api/invoice", deps.InvoiceHandler.Create).Methods("POST")
	r.HandleFunc("/api/invoice/{invoiceId}", deps.InvoiceHandler.Get).Methods("GET")
	r.HandleFunc("/api/invoice/{invoiceId}", deps.InvoiceHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/invoice/{invoiceId}/csv", deps.InvoiceHandler.Csv).Methods("GET")
	r.HandleFunc("/api/invoice/{invoiceId}/discount", deps.InvoiceHandler.UpdateDiscount).Methods("PUT")
	r.HandleFunc("/api/invoice/{invoiceId}/issue", deps.InvoiceHandler.Issue).Methods("POST")
	r.HandleFunc("/api/invoice/{invoiceId}/pay", deps.InvoiceHandler.Pay).Methods("POST")
	r.HandleFunc("/api/invoice/{invoiceId}/void", deps.InvoiceHandler.Void).Methods("POST")

	// Revenue thresholds
	r.HandleFunc("/api/threshold", deps.ThresholdHandler.Current).Methods("GET")
}
