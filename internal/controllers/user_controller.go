package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmatrack/backend/internal/models"
	"github.com/rmatrack/backend/internal/services"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

func (uc *UserController) GetCurrentUser(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}
	user, err := uc.users.Get(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	user.Password = ""
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (uc *UserController) List(c *gin.Context) {
	users, err := uc.users.List()
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range users {
		users[i].Password = ""
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// Owners lists users eligible for RMA assignment.
func (uc *UserController) Owners(c *gin.Context) {
	users, err := uc.users.Owners()
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range users {
		users[i].Password = ""
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"required"`
	Role     string `json:"role"`
	IsOwner  bool   `json:"isOwner"`
}

func (uc *UserController) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := uc.users.Create(services.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     models.UserRole(req.Role),
		IsOwner:  req.IsOwner,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	user.Password = ""
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "User created", "user": user})
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (uc *UserController) SetRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := uc.users.SetRole(id, models.UserRole(req.Role))
	if err != nil {
		respondError(c, err)
		return
	}
	user.Password = ""
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Role updated", "user": user})
}

func (uc *UserController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := uc.users.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted"})
}
