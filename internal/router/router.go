package routes

import (
	"net/http"

	_ "github.com/oggyb/sms-gateway/internal/docs" // swagger docs
	"github.com/oggyb/sms-gateway/internal/response"
	swaggerHandler "github.com/swaggo/http-swagger"
)

// AppDeps bundles the handlers and middleware the router wires together.
type AppDeps struct {
	Home    HomeHandler
	Account AccountHandler
	SMS     SMSHandler
	Auth    func(http.Handler) http.Handler
}

type HomeHandler interface {
	Index(w http.ResponseWriter, r *http.Request)
	Health(w http.ResponseWriter, r *http.Request)
}

type AccountHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Balance(w http.ResponseWriter, r *http.Request)
	Charge(w http.ResponseWriter, r *http.Request)
}

type SMSHandler interface {
	Send(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

// Register mounts every route on mux under the given API prefix (e.g.
// "/api/v1"). Account-creation is unauthenticated (an account has no
// api_key yet); every other tenant-scoped route is wrapped in d.Auth.
func Register(mux *http.ServeMux, d AppDeps, prefix string) {
	mux.HandleFunc("GET /{$}", d.Home.Index)
	mux.HandleFunc("GET /health", d.Home.Health)

	mux.HandleFunc("POST "+prefix+"/accounts", d.Account.Create)
	mux.Handle("GET "+prefix+"/accounts/balance", d.Auth(http.HandlerFunc(d.Account.Balance)))
	mux.Handle("POST "+prefix+"/accounts/charge", d.Auth(http.HandlerFunc(d.Account.Charge)))

	mux.Handle("POST "+prefix+"/sms/send", d.Auth(http.HandlerFunc(d.SMS.Send)))
	mux.Handle("GET "+prefix+"/sms", d.Auth(http.HandlerFunc(d.SMS.List)))
	mux.Handle("GET "+prefix+"/sms/{id}", d.Auth(http.HandlerFunc(d.SMS.Get)))

	mux.HandleFunc("GET /swagger/", swaggerHandler.WrapHandler)

	// Fallback handler for undefined routes (404).
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.RespondError(w, http.StatusNotFound, "route not found")
	}))
}
