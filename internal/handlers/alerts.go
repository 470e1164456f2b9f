// internal/handlers/alerts.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"relief-hub/internal/models"
	"relief-hub/internal/services"
	"relief-hub/internal/ws"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AlertHandler struct {
	alertCollection *mongo.Collection
	geoMatch        *services.GeoMatchService
	notifications   *services.NotificationService
	hub             *ws.Hub
}

type CreateAlertRequest struct {
	Title    string `json:"title" binding:"required,min=3,max=200"`
	Message  string `json:"message" binding:"required,min=3,max=2000"`
	Severity string `json:"severity" binding:"required,oneof=INFO WARNING DANGER CRITICAL"`

	Latitude  *float64 `json:"latitude,omitempty" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude,omitempty" binding:"omitempty,min=-180,max=180"`
	RadiusKm  float64  `json:"radius_km,omitempty" binding:"omitempty,gt=0,max=1000"`

	Address       string     `json:"address,omitempty"`
	AffectedAreas []string   `json:"affected_areas,omitempty"`
	Instructions  string     `json:"instructions,omitempty"`
	StartsAt      *time.Time `json:"starts_at,omitempty"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
}

func NewAlertHandler(alertCollection *mongo.Collection, geoMatch *services.GeoMatchService, notifications *services.NotificationService, hub *ws.Hub) *AlertHandler {
	return &AlertHandler{
		alertCollection: alertCollection,
		geoMatch:        geoMatch,
		notifications:   notifications,
		hub:             hub,
	}
}

// GetActiveAlerts lists alerts with active=true ordered by severity
// desc, then creation time desc. The start/end window is advisory and
// not filtered on.
func (h *AlertHandler) GetActiveAlerts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := h.alertCollection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}
	defer cursor.Close(ctx)

	alerts := []models.Alert{}
	if err := cursor.All(ctx, &alerts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding alerts",
		})
		return
	}

	// Severity is an ordered enum, not a stored numeric field, so the
	// ordering is applied in-process.
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].Severity.Rank() != alerts[j].Severity.Rank() {
			return alerts[i].Severity.Rank() > alerts[j].Severity.Rank()
		}
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// GetAlertsByLocation returns the active alerts whose impact zone
// contains the query point.
func (h *AlertHandler) GetAlertsByLocation(c *gin.Context) {
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	matches, err := h.geoMatch.FindAlertsAffecting(ctx, lat, lng)
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

func (h *AlertHandler) GetAlert(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid alert ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var alert models.Alert
	err = h.alertCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&alert)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Alert not found",
		})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alert": alert})
}

func (h *AlertHandler) CreateAlert(c *gin.Context) {
	var req CreateAlertRequest
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

	if (req.Latitude == nil) != (req.Longitude == nil) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "latitude and longitude must be provided together",
		})
		return
	}

	radius := req.RadiusKm
	if radius == 0 {
		radius = models.DefaultAlertRadiusKm
	}

	now := time.Now()
	startsAt := now
	if req.StartsAt != nil {
		startsAt = *req.StartsAt
	}

	alert := models.Alert{
		Title:         req.Title,
		Message:       req.Message,
		Severity:      models.AlertSeverity(req.Severity),
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		RadiusKm:      radius,
		Address:       req.Address,
		AffectedAreas: req.AffectedAreas,
		Instructions:  req.Instructions,
		IsActive:      true,
		StartsAt:      startsAt,
		EndsAt:        req.EndsAt,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.alertCollection.InsertOne(ctx, alert)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating alert",
		})
		return
	}

	alert.ID = result.InsertedID.(primitive.ObjectID)

	h.hub.Broadcast(ws.Message{Type: services.AlertEventCreated, Data: alert})
	h.notifications.NotifyAlert(services.AlertEventCreated, &alert)

	c.JSON(http.StatusCreated, gin.H{"alert": alert})
}

// DeactivateAlert marks an alert inactive. Alerts never auto-expire;
// this is the operator's off switch.
func (h *AlertHandler) DeactivateAlert(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid alert ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var alert models.Alert
	err = h.alertCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}},
	).Decode(&alert)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Alert not found",
		})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error deactivating alert",
		})
		return
	}

	alert.IsActive = false

	h.hub.Broadcast(ws.Message{Type: services.AlertEventDeactivated, Data: alert})
	h.notifications.NotifyAlert(services.AlertEventDeactivated, &alert)

	c.JSON(http.StatusOK, gin.H{"message": "Alert deactivated"})
}

func (h *AlertHandler) DeleteAlert(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid alert ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.alertCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error deleting alert",
		})
		return
	}

	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Alert not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Alert deleted"})
}
