package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecowaste/internal/models"
	"ecowaste/internal/repositories/interfaces"
	"ecowaste/internal/utils"
	"ecowaste/pkg/cache"
	"ecowaste/pkg/database"
	"ecowaste/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type userRepository struct {
	collection *mongo.Collection
	cache      cache.Cache
	cacheTTL   time.Duration
	metrics    *metrics.Metrics
}

// NewUserRepository builds the account store. cacheStore may be nil, in
// which case every lookup goes to MongoDB.
func NewUserRepository(db *mongo.Database, cacheStore cache.Cache, cacheTTL time.Duration, m *metrics.Metrics) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection(database.UsersCollection),
		cache:      cacheStore,
		cacheTTL:   cacheTTL,
		metrics:    m,
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.UserRoleUser
	}

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.WrapAppError(utils.ErrConflict, utils.ErrMsgUserExists, err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID reads through the cache. Cached copies carry no password hash.
func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if user := r.getUserFromCache(ctx, id); user != nil {
		return user, nil
	}

	user, err := r.findOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}

	r.cacheUser(ctx, user)

	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"phone": strings.TrimSpace(phone)})
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	result := make(map[primitive.ObjectID]*models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	for _, user := range users {
		result[user.ID] = user
	}

	return result, nil
}

func (r *userRepository) IncrementTotals(ctx context.Context, id primitive.ObjectID, earnings, weight float64) error {
	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{
				"total_earnings":        earnings,
				"total_waste_collected": weight,
			},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment user totals: %w", err)
	}
	if res.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "User not found")
	}

	r.invalidateUserCache(ctx, id)

	return nil
}

func (r *userRepository) SetRole(ctx context.Context, id primitive.ObjectID, role models.UserRole) error {
	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set user role: %w", err)
	}
	if res.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "User not found")
	}

	r.invalidateUserCache(ctx, id)

	return nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NewAppError(utils.ErrNotFound, "User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Cache helper methods
func (r *userRepository) cacheUser(ctx context.Context, user *models.User) {
	if r.cache != nil {
		_ = r.cache.Set(ctx, userCacheKey(user.ID), user, r.cacheTTL)
	}
}

func (r *userRepository) getUserFromCache(ctx context.Context, id primitive.ObjectID) *models.User {
	if r.cache == nil {
		return nil
	}

	var user models.User
	err := r.cache.Get(ctx, userCacheKey(id), &user)
	r.metrics.RecordCacheLookup("users", err == nil)
	if err != nil {
		return nil
	}

	return &user
}

func (r *userRepository) invalidateUserCache(ctx context.Context, id primitive.ObjectID) {
	if r.cache != nil {
		_ = r.cache.Delete(ctx, userCacheKey(id))
	}
}

func userCacheKey(id primitive.ObjectID) string {
	return utils.CacheUserPrefix + id.Hex()
}
