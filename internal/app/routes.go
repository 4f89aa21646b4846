package app

import (
	"net/http"

	"github.com/prodyhq/prody/internal/handler"
	"github.com/prodyhq/prody/internal/middleware"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	mid := middleware.New(app.ErrorHandler, app.Logger, app.DB.User(), app.Tokens, &app.Config)

	routeHandler := handler.NewRouteHandler(&handler.RouteHandler{
		DB:         app.DB,
		ErrHandler: app.ErrorHandler,
		Mailer:     app.Mailer,
		Helper:     app.Helper,
		Cache:      app.Cache,
		Tokens:     app.Tokens,
		Google:     app.Google,
		Uploader:   app.FileUploader,
		Hub:        app.Hub,
		Activity:   app.Activity,
		Config:     &app.Config,
	})

	mux.HandleFunc("GET /status", routeHandler.HandleHealthCheck)

	// Auth
	mux.HandleFunc("POST /auth/signup", routeHandler.HandleAuthSignup)
	mux.HandleFunc("POST /auth/resend-otp", routeHandler.HandleAuthResendOTP)
	mux.HandleFunc("POST /auth/verify-email", routeHandler.HandleAuthVerifyEmail)
	mux.HandleFunc("POST /auth/signin", routeHandler.HandleAuthSignin)
	mux.HandleFunc("POST /auth/forgot-password", routeHandler.HandleAuthForgotPassword)
	mux.HandleFunc("POST /auth/reset-password", routeHandler.HandleAuthResetPassword)
	mux.HandleFunc("POST /auth/google", routeHandler.HandleAuthGoogle)
	mux.HandleFunc("POST /auth/refresh", routeHandler.HandleAuthRefresh)
	mux.Handle("GET /auth/me", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleAuthMe)))

	// Tasks
	mux.Handle("POST /api/tasks", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleCreateTask)))
	mux.Handle("GET /api/tasks", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleListTasks)))
	mux.Handle("GET /api/tasks/{id}", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleGetTask)))
	mux.Handle("POST /api/tasks/update", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleUpdateTask)))
	mux.Handle("DELETE /api/tasks/delete/{id}", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleDeleteTask)))

	// Meetings
	mux.Handle("POST /api/meetings", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleCreateMeeting)))
	mux.Handle("GET /api/meetings", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleListMeetings)))
	mux.Handle("GET /api/meetings/{id}", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleGetMeeting)))
	mux.Handle("PUT /api/meetings/{id}", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleUpdateMeeting)))
	mux.Handle("DELETE /api/meetings/{id}", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleDeleteMeeting)))
	mux.Handle("POST /api/meetings/{id}/join", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleJoinMeeting)))

	// Notifications
	mux.Handle("GET /api/notifications", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleListNotifications)))
	mux.Handle("PUT /api/notifications/{id}/read", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleMarkNotificationRead)))
	mux.Handle("DELETE /api/notifications/{id}", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleDeleteNotification)))

	// Organizations
	mux.Handle("POST /api/organizations", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleCreateOrganization)))
	mux.Handle("GET /api/organizations/me", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleGetMyOrganization)))

	// Activity log
	mux.Handle("GET /api/activity-logs", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleListActivityLogs)))

	// Analytics
	mux.Handle("GET /api/analytics/dashboard", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleAnalyticsDashboard)))
	mux.Handle("GET /api/analytics/tasks", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleAnalyticsTasks)))
	mux.Handle("GET /api/analytics/meetings", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleAnalyticsMeetings)))
	mux.Handle("GET /api/analytics/admin/user-activity", mid.RequireAdminUser(http.HandlerFunc(routeHandler.HandleAnalyticsUserActivity)))

	// Users
	mux.Handle("POST /api/users/me/avatar", mid.RequireAuthenticatedUser(http.HandlerFunc(routeHandler.HandleChangeAvatar)))

	// Realtime push; authenticates itself from the token query param
	// before upgrading, so it sits outside the Authenticate chain's
	// RequireAuthenticatedUser wrappers.
	mux.HandleFunc("GET /ws", routeHandler.HandleWebsocket(app.Hub))

	return mid.CORS(mid.LogAccess(mid.RecoverPanic(mid.Authenticate(mux))))
}
