package interfaces

import (
	"context"
	"time"

	"ecowaste/internal/models"
	"ecowaste/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WasteRequestRepository interface {
	Create(ctx context.Context, request *models.WasteRequest) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.WasteRequest, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]*models.WasteRequest, error)
	List(ctx context.Context, status *models.WasteStatus, params *utils.PaginationParams) ([]*models.WasteRequest, int64, error)

	// Update applies a $set of the given fields and returns the stored document.
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.WasteRequest, error)

	// MarkPaid flips is_paid from false to true. It reports false when the
	// request was already paid, so callers credit the owner at most once.
	MarkPaid(ctx context.Context, id primitive.ObjectID, paidAt time.Time) (bool, error)

	// ReleasePaid undoes the MarkPaid call that stamped paidAt. A claim made
	// by another call is left alone.
	ReleasePaid(ctx context.Context, id primitive.ObjectID, paidAt time.Time) error

	// SetFeedback stores feedback only when none exists yet.
	SetFeedback(ctx context.Context, id primitive.ObjectID, feedback *models.Feedback) (*models.WasteRequest, error)
	ToggleFeatured(ctx context.Context, id primitive.ObjectID) (*models.WasteRequest, error)

	Delete(ctx context.Context, id primitive.ObjectID) error

	ListTestimonials(ctx context.Context, limit int) ([]*models.Testimonial, error)
}
