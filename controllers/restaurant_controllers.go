package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/utils"
	"gorm.io/gorm"
)

type RestaurantController struct {
	DB *gorm.DB
}

func NewRestaurantController(db *gorm.DB) *RestaurantController {
	return &RestaurantController{DB: db}
}

// CreateRestaurant -> hanya admin global (tanpa restaurant_id)
func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	if actor := currentActor(c); actor.RestaurantID != nil {
		utils.RespondError(c, http.StatusForbidden, errors.New("only a global admin can add restaurants"))
		return
	}

	var req struct {
		Name    string `json:"name" binding:"required"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	restaurant := models.Restaurant{
		Name:    strings.TrimSpace(req.Name),
		Address: req.Address,
		Phone:   req.Phone,
	}
	if err := rc.DB.Create(&restaurant).Error; err != nil {
		utils.ErrorLogger.Printf("Error creating restaurant: %v", err)
		utils.RespondMessage(c, http.StatusInternalServerError, "internal error")
		return
	}

	utils.InfoLogger.Printf("New restaurant created: %s (id=%d)", restaurant.Name, restaurant.ID)
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created", restaurant)
}

func (rc *RestaurantController) GetAllRestaurants(c *gin.Context) {
	var restaurants []models.Restaurant
	if err := rc.DB.Order("name ASC").Find(&restaurants).Error; err != nil {
		utils.ErrorLogger.Printf("Error listing restaurants: %v", err)
		utils.RespondMessage(c, http.StatusInternalServerError, "internal error")
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", restaurants)
}

func (rc *RestaurantController) GetRestaurant(c *gin.Context) {
	id, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
			return
		}
		utils.RespondMessage(c, http.StatusInternalServerError, "internal error")
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}
