// utils/utils.go
package utils

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// errorLabels are the canonical error names the frontend matches on.
var errorLabels = map[int]string{
	http.StatusBadRequest:          "Bad request",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not found",
	http.StatusConflict:            "Conflict",
	http.StatusInternalServerError: "Internal server error",
}

// RespondWithError writes a stable {error, message} body for the status.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	label, ok := errorLabels[code]
	if !ok {
		label = http.StatusText(code)
	}
	RespondWithJSON(w, code, map[string]string{"error": label, "message": message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
