package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS 包装整个HTTP Handler，预检请求在进入gin之前处理
// allowedOrigins为空时允许任意来源
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", HeaderRequestID},
		ExposedHeaders:   []string{HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           600,
	})
	return c.Handler
}
