package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// Register customer baru; staff dan admin dibuat lewat CreateStaff
func (uc *UserController) Register(c *gin.Context) {
	type request struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := uc.createUser(req.Name, req.Email, req.Password, models.RoleCustomer, nil)
	if err != nil {
		uc.respondCreateError(c, err)
		return
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id": user.ID,
	})
}

// CreateStaff -> admin membuat akun staff/admin untuk satu restoran
func (uc *UserController) CreateStaff(c *gin.Context) {
	var req struct {
		Name         string `json:"name" binding:"required"`
		Email        string `json:"email" binding:"required,email"`
		Password     string `json:"password" binding:"required,min=8"`
		Role         string `json:"role" binding:"required,oneof=staff admin"`
		RestaurantID *uint  `json:"restaurant_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := currentActor(c)
	// admin yang terikat restoran hanya boleh membuat akun di restorannya
	if actor.RestaurantID != nil {
		if req.RestaurantID != nil && *req.RestaurantID != *actor.RestaurantID {
			utils.RespondError(c, http.StatusForbidden, errors.New("cannot create users for another restaurant"))
			return
		}
		req.RestaurantID = actor.RestaurantID
	}
	if req.Role == models.RoleStaff && req.RestaurantID == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("restaurant_id is required for staff"))
		return
	}
	if req.RestaurantID != nil {
		var restaurant models.Restaurant
		if err := uc.DB.First(&restaurant, *req.RestaurantID).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
			return
		}
	}

	user, err := uc.createUser(req.Name, req.Email, req.Password, req.Role, req.RestaurantID)
	if err != nil {
		uc.respondCreateError(c, err)
		return
	}

	utils.InfoLogger.Printf("Staff account created: %s (role=%s) by user %d", user.Email, user.Role, actor.UserID)
	utils.RespondJSON(c, http.StatusCreated, "User created", user)
}

func (uc *UserController) createUser(name, email, password, role string, restaurantID *uint) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Password:     string(hashed),
		Role:         role,
		RestaurantID: restaurantID,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (uc *UserController) respondCreateError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique") ||
		strings.Contains(strings.ToLower(err.Error()), "duplicate") {
		utils.RespondError(c, http.StatusConflict, errors.New("email already registered"))
		return
	}
	utils.ErrorLogger.Printf("Error creating user: %v", err)
	utils.RespondMessage(c, http.StatusInternalServerError, "internal error")
}

// Login user -> return JWT
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role, user.RestaurantID)
	if err != nil {
		utils.RespondMessage(c, http.StatusInternalServerError, "internal error")
		return
	}

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":         token,
		"user_role":     user.Role,
		"restaurant_id": user.RestaurantID,
	})
}

// GetProfile -> memeriksa user dari JWT
func (uc *UserController) GetProfile(c *gin.Context) {
	actor := currentActor(c)

	var user models.User
	if err := uc.DB.First(&user, actor.UserID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", user)
}

// GetAllUsers -> admin melihat akun; admin restoran hanya melihat restorannya
func (uc *UserController) GetAllUsers(c *gin.Context) {
	actor := currentActor(c)

	q := uc.DB.Order("id ASC")
	if actor.RestaurantID != nil {
		q = q.Where("restaurant_id = ?", *actor.RestaurantID)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		utils.ErrorLogger.Printf("Error listing users: %v", err)
		utils.RespondMessage(c, http.StatusInternalServerError, "internal error")
		return
	}

	utils.RespondJSON(c, http.StatusOK, "All users", users)
}
