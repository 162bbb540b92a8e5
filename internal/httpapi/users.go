package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/oj-engine/gojudge/internal/core"
)

type userRequest struct {
	ID   *int   `json:"id"`
	Name string `json:"name"`
}

// createUser implements POST /users: append a new user, or update an
// existing one's name when `id` is supplied.
func (h *Handler) createUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, core.InvalidArgument("malformed request body: %v", err))
		return
	}
	if req.Name == "" {
		Fail(c, core.InvalidArgument("name is required"))
		return
	}

	user, err := h.rs.Users.Upsert(req.ID, req.Name)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, user)
}

// listUsers implements GET /users.
func (h *Handler) listUsers(c *gin.Context) {
	Success(c, h.rs.Users.All())
}
