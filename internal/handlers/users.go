// internal/handlers/users.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"relief-hub/internal/middleware"
	"relief-hub/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserHandler struct {
	userCollection *mongo.Collection
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=USER VOLUNTEER ADMIN"`
}

type UserFilters struct {
	Role     string `form:"role"`
	Verified *bool  `form:"verified"`
}

func NewUserHandler(userCollection *mongo.Collection) *UserHandler {
	return &UserHandler{userCollection: userCollection}
}

// GetUsers lists accounts for administrators.
func (h *UserHandler) GetUsers(c *gin.Context) {
	var filters UserFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	query := bson.M{}
	if filters.Role != "" {
		query["role"] = filters.Role
	}
	if filters.Verified != nil {
		query["is_verified"] = *filters.Verified
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := h.userCollection.Find(ctx, query, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

// UpdateRole changes an account's role. Admins cannot touch other
// admins, and nobody can change their own role.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	callerIDValue, ok := callerID(c)
	if !ok {
		return
	}
	if callerIDValue == targetID {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Cannot change own role",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var target models.User
	err = h.userCollection.FindOne(ctx, bson.M{"_id": targetID}).Decode(&target)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "User not found",
		})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}

	callerRole := models.UserRole(c.GetString(middleware.ContextUserRole))
	if !callerRole.CanManageUser(target.RoleValue()) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Cannot manage this user",
		})
		return
	}

	_, err = h.userCollection.UpdateOne(ctx, bson.M{"_id": targetID}, bson.M{
		"$set": bson.M{"role": req.Role, "updated_at": time.Now()},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating role",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

// VerifyUser marks an account as verified.
func (h *UserHandler) VerifyUser(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.userCollection.UpdateOne(ctx, bson.M{"_id": targetID}, bson.M{
		"$set": bson.M{"is_verified": true, "updated_at": time.Now()},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error verifying user",
		})
		return
	}

	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "User not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User verified"})
}

// DeleteUser removes an account. Same management rules as role changes.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	callerIDValue, ok := callerID(c)
	if !ok {
		return
	}
	if callerIDValue == targetID {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Cannot delete own account",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var target models.User
	err = h.userCollection.FindOne(ctx, bson.M{"_id": targetID}).Decode(&target)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "User not found",
		})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}

	callerRole := models.UserRole(c.GetString(middleware.ContextUserRole))
	if !callerRole.CanManageUser(target.RoleValue()) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Cannot manage this user",
		})
		return
	}

	if _, err := h.userCollection.DeleteOne(ctx, bson.M{"_id": targetID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error deleting user",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
