package router

import (
	"go-auth-api/handler"
	"go-auth-api/service"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "go-auth-api/docs" // swagger spec registration
)

func NewRouter(accountHandler *handler.AccountHandler, authService *service.AuthService) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	mux.Handle("POST /api/auth/signup", handler.ErrorHandlingMiddleware(accountHandler.SignUp))
	mux.Handle("POST /api/auth/signin", handler.ErrorHandlingMiddleware(accountHandler.SignIn))
	mux.Handle("POST /api/auth/refresh", handler.ErrorHandlingMiddleware(accountHandler.Refresh))
	mux.Handle("POST /api/auth/external", handler.ErrorHandlingMiddleware(accountHandler.ExternalSignIn))
	mux.Handle("GET /api/auth/confirm/{userId}/{token}", handler.ErrorHandlingMiddleware(accountHandler.ConfirmEmail))
	mux.Handle("POST /api/auth/forgot-password", handler.ErrorHandlingMiddleware(accountHandler.ForgotPassword))
	mux.Handle("POST /api/auth/reset-password/{userId}/{token}", handler.ErrorHandlingMiddleware(accountHandler.ResetPassword))

	// Routes below require a valid access token.
	authRequired := handler.AuthMiddleware(authService)
	mux.Handle("POST /api/auth/signout", authRequired(handler.ErrorHandlingMiddleware(accountHandler.SignOut)))
	mux.Handle("DELETE /api/auth/external/{provider}", authRequired(handler.ErrorHandlingMiddleware(accountHandler.UnlinkExternal)))

	return mux
}
