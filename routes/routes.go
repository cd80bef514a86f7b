package routes

import (
	"github.com/Dosada05/session-system/handlers"
	"github.com/Dosada05/session-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes собирает все маршруты API на переданном роутере.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	sportHandler *handlers.SportHandler,
	sessionHandler *handlers.SessionHandler,
	groupHandler *handlers.GroupHandler,
	attendanceHandler *handlers.AttendanceHandler,
	usageHandler *handlers.UsageHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)

	router.Get("/swagger/doc.json", handlers.SwaggerDoc)
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/sports", func(r chi.Router) {
		r.Get("/", sportHandler.List)
		r.Get("/{sportID}", sportHandler.GetByID)
	})

	router.Route("/sessions", func(r chi.Router) {
		// Просмотр открыт всем; видимость проверяется при вступлении, не при чтении.
		r.Get("/", sessionHandler.List)
		r.Get("/{sessionID}", sessionHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", sessionHandler.Create)
			r.Put("/{sessionID}", sessionHandler.Update)
			r.Delete("/{sessionID}", sessionHandler.Delete)
			r.Post("/{sessionID}/join", sessionHandler.Join)
			r.Post("/{sessionID}/leave", sessionHandler.Leave)
			r.Post("/{sessionID}/publish", sessionHandler.Publish)
			r.Post("/{sessionID}/lock", sessionHandler.Lock)
			r.Post("/{sessionID}/cancel", sessionHandler.Cancel)
			r.Put("/{sessionID}/score", sessionHandler.SetScore)

			r.Get("/{sessionID}/attendance", attendanceHandler.GetSheet)
			r.Post("/{sessionID}/attendance/presence", attendanceHandler.MarkPresence)
			r.Post("/{sessionID}/attendance/external/{attendeeID}", attendanceHandler.MarkExternalPresence)
		})
	})

	router.Route("/groups", func(r chi.Router) {
		r.Get("/", groupHandler.List)
		r.Get("/{groupID}", groupHandler.GetByID)
		r.Get("/{groupID}/members", groupHandler.ListMembers)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", groupHandler.Create)
			r.Put("/{groupID}", groupHandler.Update)
			r.Delete("/{groupID}", groupHandler.Delete)
			r.Post("/{groupID}/join", groupHandler.Join)
			r.Post("/{groupID}/leave", groupHandler.Leave)
			r.Post("/{groupID}/cover", groupHandler.UploadCover)

			r.Get("/{groupID}/requests", groupHandler.ListRequests)
			r.Post("/{groupID}/requests/{requestID}/approve", groupHandler.ApproveRequest)
			r.Post("/{groupID}/requests/{requestID}/reject", groupHandler.RejectRequest)

			r.Post("/{groupID}/members/{userID}", groupHandler.AddMember)
			r.Delete("/{groupID}/members/{userID}", groupHandler.RemoveMember)

			r.Get("/{groupID}/external", groupHandler.ListExternalMembers)
			r.Post("/{groupID}/external", groupHandler.AddExternalMember)
			r.Delete("/{groupID}/external/{memberID}", groupHandler.RemoveExternalMember)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/me/usage", usageHandler.Current)
		// Браузерные клиенты передают токен query-параметром.
		r.Get("/ws/sessions/{sessionID}", webSocketHandler.ServeWs)
	})
}
