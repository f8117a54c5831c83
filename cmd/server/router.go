package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/smarttime/smarttime-api/internal/api"
	apiMiddleware "github.com/smarttime/smarttime-api/internal/api/middleware"
)

// routes builds the application router with all middleware and endpoints.
func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.verifier)
	taskHandler := api.NewTaskHandler(app.tasks, app.reminders, app.queue)
	scheduleHandler := api.NewScheduleHandler(app.schedule)
	jobHandler := api.NewJobHandler(app.queue)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks", taskHandler.ListTasks)
			r.Post("/tasks/parse", taskHandler.ParseText)
			r.Post("/tasks/parse/async", taskHandler.ParseTextAsync)
			r.Delete("/tasks/by-description", taskHandler.DeleteByDescription)
			r.Post("/tasks/delete/day", taskHandler.DeleteDay)
			r.Post("/tasks/delete/week", taskHandler.DeleteWeek)
			r.Post("/tasks/delete/month", taskHandler.DeleteMonth)
			r.Get("/tasks/reminders", taskHandler.Reminders)
			r.Get("/tasks/upcoming", taskHandler.Upcoming)
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Put("/tasks/{id}", taskHandler.UpdateTask)
			r.Delete("/tasks/{id}", taskHandler.DeleteTask)

			r.Post("/schedule/analyze", scheduleHandler.Analyze)
			r.Post("/schedule/confirm", scheduleHandler.Confirm)

			r.Get("/jobs/{id}", jobHandler.GetJob)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
