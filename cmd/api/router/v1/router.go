package v1

import (
	"github.com/gin-gonic/gin"

	inboxhttp "textback/internal/pkg/inbox/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, deps inboxhttp.Deps) {
	v1 := r.Group("/api/v1")
	inboxhttp.RegisterRoutes(v1, deps)
}
