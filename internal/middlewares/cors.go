package middlewares

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/edulane/survey-backend/internal/config"
)

func CorsMiddleware(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   config.EnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})(next)
}
