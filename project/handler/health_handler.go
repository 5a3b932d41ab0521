package handler

import (
	"net/http"
)

// HealthHandler は死活監視用のヘルスチェックエンドポイントです
type HealthHandler struct{}

// NewHealthHandler はヘルスチェックハンドラーを作成します
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP は /health エンドポイント
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
