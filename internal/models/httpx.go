package models

import (
	"encoding/json"
	"net/http"
)

// Problem представляет ответ об ошибке в стиле RFC 7807.
// Code — машинно-читаемый вид ошибки (invalid_credentials, otp_expired...),
// по нему клиент решает, что делать дальше; Detail — текст для человека.
type Problem struct {
	Title  string `json:"title"`            // краткое название
	Status int    `json:"status"`           // HTTP код
	Code   string `json:"code,omitempty"`   // вид ошибки
	Detail string `json:"detail,omitempty"` // подробности
	Extra  any    `json:"extra,omitempty"`  // произвольные поля (map/struct)
}

func WriteProblem(w http.ResponseWriter, status int, code, title, detail string, extra any) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Problem{
		Title:  title,
		Status: status,
		Code:   code,
		Detail: detail,
		Extra:  extra,
	})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
