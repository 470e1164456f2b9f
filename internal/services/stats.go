// internal/services/stats.go
package services

import (
	"context"
	"fmt"

	"relief-hub/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DashboardStats is the aggregate snapshot behind the admin dashboard.
type DashboardStats struct {
	TotalResources      int64            `json:"total_resources"`
	VerifiedResources   int64            `json:"verified_resources"`
	ResourcesByStatus   map[string]int64 `json:"resources_by_status"`
	ResourcesByCategory map[string]int64 `json:"resources_by_category"`
	ActiveAlerts        int64            `json:"active_alerts"`
	PendingSubmissions  int64            `json:"pending_submissions"`
	TotalUsers          int64            `json:"total_users"`
	UsersByRole         map[string]int64 `json:"users_by_role"`
}

// StatsService produces dashboard counts. Pure read aggregation, no
// business logic.
type StatsService struct {
	resources   *mongo.Collection
	alerts      *mongo.Collection
	submissions *mongo.Collection
	users       *mongo.Collection
}

func NewStatsService(resources, alerts, submissions, users *mongo.Collection) *StatsService {
	return &StatsService{
		resources:   resources,
		alerts:      alerts,
		submissions: submissions,
		users:       users,
	}
}

func (s *StatsService) Collect(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		ResourcesByStatus:   make(map[string]int64),
		ResourcesByCategory: make(map[string]int64),
		UsersByRole:         make(map[string]int64),
	}

	var err error

	if stats.TotalResources, err = s.resources.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("counting resources: %w", err)
	}
	if stats.VerifiedResources, err = s.resources.CountDocuments(ctx, bson.M{"is_verified": true}); err != nil {
		return nil, fmt.Errorf("counting verified resources: %w", err)
	}

	for _, status := range models.ResourceStatuses() {
		count, err := s.resources.CountDocuments(ctx, bson.M{"status": status})
		if err != nil {
			return nil, fmt.Errorf("counting resources with status %s: %w", status, err)
		}
		stats.ResourcesByStatus[status] = count
	}

	for _, category := range models.ResourceCategories() {
		count, err := s.resources.CountDocuments(ctx, bson.M{"category": category})
		if err != nil {
			return nil, fmt.Errorf("counting resources in category %s: %w", category, err)
		}
		stats.ResourcesByCategory[category] = count
	}

	if stats.ActiveAlerts, err = s.alerts.CountDocuments(ctx, bson.M{"is_active": true}); err != nil {
		return nil, fmt.Errorf("counting active alerts: %w", err)
	}

	if stats.PendingSubmissions, err = s.submissions.CountDocuments(ctx, bson.M{"status": models.SubmissionStatusPending}); err != nil {
		return nil, fmt.Errorf("counting pending submissions: %w", err)
	}

	if stats.TotalUsers, err = s.users.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}

	for _, role := range models.AllRoles() {
		count, err := s.users.CountDocuments(ctx, bson.M{"role": role.String()})
		if err != nil {
			return nil, fmt.Errorf("counting users with role %s: %w", role, err)
		}
		stats.UsersByRole[role.String()] = count
	}

	return stats, nil
}
