package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecowaste/internal/models"
	"ecowaste/internal/repositories/interfaces"
	"ecowaste/internal/utils"
	"ecowaste/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type wasteRequestRepository struct {
	collection *mongo.Collection
}

func NewWasteRequestRepository(db *mongo.Database) interfaces.WasteRequestRepository {
	return &wasteRequestRepository{
		collection: db.Collection(database.WasteRequestsCollection),
	}
}

func (r *wasteRequestRepository) Create(ctx context.Context, request *models.WasteRequest) error {
	now := time.Now()
	request.ID = primitive.NewObjectID()
	request.CreatedAt = now
	request.UpdatedAt = now
	if request.Status == "" {
		request.Status = models.WasteStatusPending
	}

	_, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to create waste request: %w", err)
	}

	return nil
}

func (r *wasteRequestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.WasteRequest, error) {
	var request models.WasteRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NewAppError(utils.ErrNotFound, utils.ErrMsgRequestNotFound)
		}
		return nil, fmt.Errorf("failed to get waste request: %w", err)
	}

	return &request, nil
}

func (r *wasteRequestRepository) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]*models.WasteRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list waste requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := make([]*models.WasteRequest, 0)
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode waste requests: %w", err)
	}

	return requests, nil
}

func (r *wasteRequestRepository) List(ctx context.Context, status *models.WasteStatus, params *utils.PaginationParams) ([]*models.WasteRequest, int64, error) {
	filter := bson.M{}
	if status != nil {
		filter["status"] = *status
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count waste requests: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetFindOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list waste requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := make([]*models.WasteRequest, 0)
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, 0, fmt.Errorf("failed to decode waste requests: %w", err)
	}

	return requests, total, nil
}

func (r *wasteRequestRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.WasteRequest, error) {
	set := bson.M{"updated_at": time.Now()}
	for key, value := range updates {
		set[key] = value
	}

	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (r *wasteRequestRepository) MarkPaid(ctx context.Context, id primitive.ObjectID, paidAt time.Time) (bool, error) {
	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "is_paid": false},
		bson.M{"$set": bson.M{
			"is_paid":    true,
			"paid_at":    paidAt,
			"updated_at": paidAt,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark waste request paid: %w", err)
	}

	return res.MatchedCount == 1, nil
}

func (r *wasteRequestRepository) ReleasePaid(ctx context.Context, id primitive.ObjectID, paidAt time.Time) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "is_paid": true, "paid_at": paidAt},
		bson.M{
			"$set":   bson.M{"is_paid": false, "updated_at": time.Now()},
			"$unset": bson.M{"paid_at": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to release waste request payment: %w", err)
	}
	return nil
}

func (r *wasteRequestRepository) SetFeedback(ctx context.Context, id primitive.ObjectID, feedback *models.Feedback) (*models.WasteRequest, error) {
	request, err := r.findOneAndUpdate(
		ctx,
		bson.M{"_id": id, "feedback.rating": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"feedback": feedback, "updated_at": time.Now()}},
	)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.NewAppError(utils.ErrInvalidState, utils.ErrMsgFeedbackExists)
	}
	return request, err
}

func (r *wasteRequestRepository) ToggleFeatured(ctx context.Context, id primitive.ObjectID) (*models.WasteRequest, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "feedback.is_featured", Value: bson.D{{Key: "$not", Value: bson.A{"$feedback.is_featured"}}}},
			{Key: "updated_at", Value: "$$NOW"},
		}}},
	}

	request, err := r.findOneAndUpdate(ctx, bson.M{"_id": id, "feedback.rating": bson.M{"$exists": true}}, pipeline)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.NewAppError(utils.ErrInvalidState, utils.ErrMsgNoFeedback)
	}
	return request, err
}

func (r *wasteRequestRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete waste request: %w", err)
	}
	if res.DeletedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, utils.ErrMsgRequestNotFound)
	}

	return nil
}

func (r *wasteRequestRepository) ListTestimonials(ctx context.Context, limit int) ([]*models.Testimonial, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"feedback.rating":      bson.M{"$exists": true},
			"feedback.is_featured": true,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "feedback.created_at", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         database.UsersCollection,
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "owner",
		}}},
		{{Key: "$project", Value: bson.M{
			"feedback":   1,
			"waste_type": 1,
			"address":    1,
			"created_at": 1,
			"user": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{bson.M{"$size": "$owner"}, 0}},
				bson.M{"name": bson.M{"$arrayElemAt": bson.A{"$owner.name", 0}}},
				"$$REMOVE",
			}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate testimonials: %w", err)
	}
	defer cursor.Close(ctx)

	testimonials := make([]*models.Testimonial, 0)
	if err := cursor.All(ctx, &testimonials); err != nil {
		return nil, fmt.Errorf("failed to decode testimonials: %w", err)
	}

	return testimonials, nil
}

func (r *wasteRequestRepository) findOneAndUpdate(ctx context.Context, filter bson.M, update interface{}) (*models.WasteRequest, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var request models.WasteRequest
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NewAppError(utils.ErrNotFound, utils.ErrMsgRequestNotFound)
		}
		return nil, fmt.Errorf("failed to update waste request: %w", err)
	}

	return &request, nil
}
