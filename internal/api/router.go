package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/garderoba/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	locationsHandler := &LocationsHandler{DB: db}
	costumesHandler := &CostumesHandler{DB: db}
	eventsHandler := &EventsHandler{DB: db}
	activityHandler := &ActivityHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Locations.
	mux.Handle("GET /api/locations", authMW(http.HandlerFunc(locationsHandler.List)))
	mux.Handle("POST /api/locations", authMW(http.HandlerFunc(locationsHandler.Create)))
	mux.Handle("GET /api/locations/{id}", authMW(http.HandlerFunc(locationsHandler.Get)))
	mux.Handle("PUT /api/locations/{id}", authMW(http.HandlerFunc(locationsHandler.Update)))
	mux.Handle("DELETE /api/locations/{id}", authMW(http.HandlerFunc(locationsHandler.Delete)))
	mux.Handle("POST /api/locations/{id}/reassign", authMW(http.HandlerFunc(locationsHandler.Reassign)))
	mux.Handle("PUT /api/locations/{id}/image", authMW(http.HandlerFunc(locationsHandler.UploadImage)))
	mux.Handle("GET /api/locations/{id}/image", authMW(http.HandlerFunc(locationsHandler.GetImage)))

	// Costumes.
	mux.Handle("GET /api/costumes", authMW(http.HandlerFunc(costumesHandler.List)))
	mux.Handle("POST /api/costumes", authMW(http.HandlerFunc(costumesHandler.Create)))
	mux.Handle("POST /api/costumes/move", authMW(http.HandlerFunc(costumesHandler.Move)))
	mux.Handle("GET /api/costumes/{id}", authMW(http.HandlerFunc(costumesHandler.Get)))
	mux.Handle("PUT /api/costumes/{id}", authMW(http.HandlerFunc(costumesHandler.Update)))
	mux.Handle("DELETE /api/costumes/{id}", authMW(http.HandlerFunc(costumesHandler.Delete)))
	mux.Handle("POST /api/costumes/{id}/checkout", authMW(http.HandlerFunc(costumesHandler.CheckOut)))
	mux.Handle("POST /api/costumes/{id}/checkin", authMW(http.HandlerFunc(costumesHandler.CheckIn)))
	mux.Handle("GET /api/costumes/{id}/events", authMW(http.HandlerFunc(costumesHandler.AssignedEvents)))
	mux.Handle("POST /api/costumes/{id}/images", authMW(http.HandlerFunc(costumesHandler.UploadImage)))
	mux.Handle("GET /api/costumes/{id}/images/{position}", authMW(http.HandlerFunc(costumesHandler.GetImage)))

	// Events.
	mux.Handle("GET /api/events", authMW(http.HandlerFunc(eventsHandler.List)))
	mux.Handle("POST /api/events", authMW(http.HandlerFunc(eventsHandler.Create)))
	mux.Handle("GET /api/events/{id}", authMW(http.HandlerFunc(eventsHandler.Get)))
	mux.Handle("PUT /api/events/{id}", authMW(http.HandlerFunc(eventsHandler.Update)))
	mux.Handle("DELETE /api/events/{id}", authMW(http.HandlerFunc(eventsHandler.Delete)))
	mux.Handle("PUT /api/events/{id}/image", authMW(http.HandlerFunc(eventsHandler.UploadImage)))
	mux.Handle("GET /api/events/{id}/image", authMW(http.HandlerFunc(eventsHandler.GetImage)))

	// Activity log and lifecycle.
	mux.Handle("GET /api/activity", authMW(http.HandlerFunc(activityHandler.List)))
	mux.Handle("POST /api/demo", authMW(requireAdmin(http.HandlerFunc(activityHandler.LoadDemo))))
	mux.Handle("POST /api/reset", authMW(requireAdmin(http.HandlerFunc(activityHandler.Reset))))

	return mux
}
