package auth

import (
	"net/http"

	"snake-arena/logging"
)

// RequireAdmin wraps an admin handler with bearer-token validation.
// The token may come from the Authorization header or, for convenience
// when poking the endpoint from a browser, a "token" query parameter.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if t := r.URL.Query().Get("token"); t != "" {
				authHeader = "Bearer " + t
			}
		}

		tokenString, err := ExtractTokenFromHeader(authHeader)
		if err != nil {
			http.Error(w, "Unauthorized: Missing token", http.StatusUnauthorized)
			return
		}

		claims, err := ValidateToken(tokenString)
		if err != nil {
			logging.Log.Infof("admin token rejected: %v", err)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}
		if claims.Role != "admin" {
			http.Error(w, "Unauthorized: Insufficient role", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}
