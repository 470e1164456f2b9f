// internal/handlers/submissions.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"relief-hub/internal/models"
	"relief-hub/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SubmissionHandler struct {
	submissionCollection *mongo.Collection
	moderation           *services.ModerationService
}

type CreateSubmissionRequest struct {
	Type       string                 `json:"type" binding:"required,oneof=NEW_RESOURCE RESOURCE_UPDATE REPORT"`
	ResourceID string                 `json:"resource_id,omitempty"`
	Data       map[string]interface{} `json:"data" binding:"required"`
}

type RejectSubmissionRequest struct {
	ReviewNotes string `json:"review_notes,omitempty" binding:"max=1000"`
}

type SubmissionFilters struct {
	Status string `form:"status"`
	Type   string `form:"type"`
}

func NewSubmissionHandler(submissionCollection *mongo.Collection, moderation *services.ModerationService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionCollection: submissionCollection,
		moderation:           moderation,
	}
}

// CreateSubmission records a community-proposed change, stamped with
// the caller as submitter, in PENDING state.
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	var req CreateSubmissionRequest
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

	submissionType := models.SubmissionType(req.Type)

	var resourceID *primitive.ObjectID
	if req.ResourceID != "" {
		id, err := primitive.ObjectIDFromHex(req.ResourceID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid resource_id",
			})
			return
		}
		resourceID = &id
	}

	// RESOURCE_UPDATE without a target is rejected up front, before it
	// ever reaches a reviewer.
	if submissionType == models.SubmissionTypeResourceUpdate && resourceID == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "resource_id is required for RESOURCE_UPDATE submissions",
		})
		return
	}

	submission := models.Submission{
		Type:        submissionType,
		ResourceID:  resourceID,
		Data:        req.Data,
		Status:      models.SubmissionStatusPending,
		SubmittedBy: userID,
		CreatedAt:   time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.submissionCollection.InsertOne(ctx, submission)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating submission",
		})
		return
	}

	submission.ID = result.InsertedID.(primitive.ObjectID)
	c.JSON(http.StatusCreated, gin.H{"submission": submission})
}

// GetSubmissions lists submissions for reviewers, filtered by status
// and type.
func (h *SubmissionHandler) GetSubmissions(c *gin.Context) {
	var filters SubmissionFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	query := bson.M{}
	if filters.Status != "" {
		query["status"] = filters.Status
	}
	if filters.Type != "" {
		query["type"] = filters.Type
	}

	h.listSubmissions(c, query)
}

// GetMySubmissions lists the caller's own submissions.
func (h *SubmissionHandler) GetMySubmissions(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	h.listSubmissions(c, bson.M{"submitted_by": userID})
}

func (h *SubmissionHandler) listSubmissions(c *gin.Context, query bson.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := h.submissionCollection.Find(ctx, query, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}
	defer cursor.Close(ctx)

	submissions := []models.Submission{}
	if err := cursor.All(ctx, &submissions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding submissions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": submissions,
		"count":       len(submissions),
	})
}

// ApproveSubmission runs the APPROVE transition with its type-specific
// catalog side effect.
func (h *SubmissionHandler) ApproveSubmission(c *gin.Context) {
	submissionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid submission ID",
		})
		return
	}

	reviewerID, ok := callerID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	submission, err := h.moderation.Approve(ctx, submissionID, reviewerID)
	if err != nil {
		respondModerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

// RejectSubmission runs the REJECT transition. No catalog side effect.
func (h *SubmissionHandler) RejectSubmission(c *gin.Context) {
	submissionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid submission ID",
		})
		return
	}

	reviewerID, ok := callerID(c)
	if !ok {
		return
	}

	var req RejectSubmissionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"details": err.Error(),
			})
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	submission, err := h.moderation.Reject(ctx, submissionID, reviewerID, req.ReviewNotes)
	if err != nil {
		respondModerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

// respondModerationError maps the moderation error taxonomy onto HTTP
// statuses: validation 400, missing 404, double transition 409,
// anything else (store failures) 500.
func respondModerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSubmissionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrSubmissionAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrMissingResourceID), errors.Is(err, services.ErrInvalidSubmissionData):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
	}
}
