package interfaces

import (
	"context"

	"ecowaste/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)

	// GetByIDs returns the accounts that exist, keyed by id.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)

	IncrementTotals(ctx context.Context, id primitive.ObjectID, earnings, weight float64) error
	SetRole(ctx context.Context, id primitive.ObjectID, role models.UserRole) error
}
