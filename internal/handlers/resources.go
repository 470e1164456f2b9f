// internal/handlers/resources.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"relief-hub/internal/models"
	"relief-hub/internal/services"
	"relief-hub/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ResourceHandler struct {
	resourceCollection   *mongo.Collection
	geoMatch             *services.GeoMatchService
	enforceCapacityLimit bool
}

type CreateResourceRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=200"`
	Category    string `json:"category" binding:"required,oneof=SHELTER FOOD MEDICAL WATER CLOTHING OTHER"`
	Status      string `json:"status" binding:"omitempty,oneof=AVAILABLE LIMITED UNAVAILABLE TEMPORARILY_CLOSED"`
	Description string `json:"description,omitempty" binding:"max=2000"`

	Latitude  *float64 `json:"latitude,omitempty" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude,omitempty" binding:"omitempty,min=-180,max=180"`

	Address        string `json:"address,omitempty"`
	City           string `json:"city,omitempty"`
	Country        string `json:"country,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty" binding:"omitempty,email"`
	OperatingHours string `json:"operating_hours,omitempty"`

	Capacity         *int `json:"capacity,omitempty" binding:"omitempty,min=0"`
	CurrentOccupancy *int `json:"current_occupancy,omitempty" binding:"omitempty,min=0"`
}

type ResourceFilters struct {
	Type     string `form:"type"`
	Status   string `form:"status"`
	Verified *bool  `form:"verified"`
}

func NewResourceHandler(resourceCollection *mongo.Collection, geoMatch *services.GeoMatchService, enforceCapacityLimit bool) *ResourceHandler {
	return &ResourceHandler{
		resourceCollection:   resourceCollection,
		geoMatch:             geoMatch,
		enforceCapacityLimit: enforceCapacityLimit,
	}
}

// GetResources lists resources with store-level equality filters. No
// geo filter here; that lives on /resources/search.
func (h *ResourceHandler) GetResources(c *gin.Context) {
	var filters ResourceFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	query := bson.M{}
	if filters.Type != "" {
		query["category"] = filters.Type
	}
	if filters.Status != "" {
		query["status"] = filters.Status
	}
	if filters.Verified != nil {
		query["is_verified"] = *filters.Verified
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := h.resourceCollection.Find(ctx, query, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}
	defer cursor.Close(ctx)

	resources := []models.Resource{}
	if err := cursor.All(ctx, &resources); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding resources",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resources": resources,
		"count":     len(resources),
	})
}

func (h *ResourceHandler) GetResource(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid resource ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var resource models.Resource
	err = h.resourceCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&resource)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Resource not found",
		})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"resource": resource})
}

// SearchResources finds resources within a radius of a query point.
// latitude and longitude are required; radius defaults server-side.
func (h *ResourceHandler) SearchResources(c *gin.Context) {
	latStr := c.Query("latitude")
	lngStr := c.Query("longitude")
	if latStr == "" || lngStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "latitude and longitude are required",
		})
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "latitude must be a number",
		})
		return
	}

	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "longitude must be a number",
		})
		return
	}

	radius := 0.0
	if radiusStr := c.Query("radius"); radiusStr != "" {
		radius, err = strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "radius must be a positive number",
			})
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	matches, err := h.geoMatch.FindResourcesNear(ctx, lat, lng, radius)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCoordinates) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": matches,
		"count":   len(matches),
	})
}

func (h *ResourceHandler) CreateResource(c *gin.Context) {
	var req CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	if req.Status == "" {
		req.Status = models.ResourceStatusAvailable
	}

	if (req.Latitude == nil) != (req.Longitude == nil) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "latitude and longitude must be provided together",
		})
		return
	}

	now := time.Now()
	resource := models.Resource{
		Name:             req.Name,
		Category:         req.Category,
		Status:           req.Status,
		Description:      req.Description,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Address:          req.Address,
		City:             req.City,
		Country:          req.Country,
		Phone:            req.Phone,
		Email:            req.Email,
		OperatingHours:   req.OperatingHours,
		Capacity:         req.Capacity,
		CurrentOccupancy: req.CurrentOccupancy,
		IsVerified:       true,
		SubmittedBy:      userID,
		VerifiedBy:       &userID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if !h.validateResource(c, &resource) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.resourceCollection.InsertOne(ctx, resource)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating resource",
		})
		return
	}

	resource.ID = result.InsertedID.(primitive.ObjectID)
	c.JSON(http.StatusCreated, gin.H{"resource": resource})
}

func (h *ResourceHandler) UpdateResource(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid resource ID",
		})
		return
	}

	var req CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if req.Status == "" {
		req.Status = models.ResourceStatusAvailable
	}

	update := bson.M{
		"name":              req.Name,
		"category":          req.Category,
		"status":            req.Status,
		"description":       req.Description,
		"latitude":          req.Latitude,
		"longitude":         req.Longitude,
		"address":           req.Address,
		"city":              req.City,
		"country":           req.Country,
		"phone":             req.Phone,
		"email":             req.Email,
		"operating_hours":   req.OperatingHours,
		"capacity":          req.Capacity,
		"current_occupancy": req.CurrentOccupancy,
		"updated_at":        time.Now(),
	}

	if h.enforceCapacityLimit && req.Capacity != nil && req.CurrentOccupancy != nil && *req.CurrentOccupancy > *req.Capacity {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Validation failed",
			"details": []validator.FieldError{
				{Field: "current_occupancy", Message: "must not exceed capacity"},
			},
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.resourceCollection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating resource",
		})
		return
	}

	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Resource not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resource updated"})
}

func (h *ResourceHandler) DeleteResource(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid resource ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.resourceCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error deleting resource",
		})
		return
	}

	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Resource not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resource deleted"})
}

func (h *ResourceHandler) validateResource(c *gin.Context, resource *models.Resource) bool {
	if fieldErrs := validator.Struct(resource); fieldErrs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": fieldErrs,
		})
		return false
	}

	// Over-capacity is a configurable rule, off by default.
	if h.enforceCapacityLimit && resource.IsOverCapacity() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Validation failed",
			"details": []validator.FieldError{
				{Field: "current_occupancy", Message: "must not exceed capacity"},
			},
		})
		return false
	}

	return true
}
