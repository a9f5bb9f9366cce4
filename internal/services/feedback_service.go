package services

import (
	"context"
	"errors"
	"time"

	"ecowaste/internal/models"
	"ecowaste/internal/repositories/interfaces"
	"ecowaste/internal/utils"
	"ecowaste/internal/validators"
	"ecowaste/pkg/cache"
	"ecowaste/pkg/logger"
	"ecowaste/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FeedbackService interface {
	AddFeedback(ctx context.Context, id primitive.ObjectID, caller *models.Identity, request *validators.AddFeedbackRequest) (*models.WasteRequest, error)
	ToggleFeatured(ctx context.Context, id primitive.ObjectID) (*models.WasteRequest, error)
	ListTestimonials(ctx context.Context) ([]*models.Testimonial, error)
}

type feedbackService struct {
	wasteRepo interfaces.WasteRequestRepository
	cache     CacheService
	cacheTTL  time.Duration
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// NewFeedbackService wires the feedback service. cache may be nil, in which
// case the testimonial feed is read from the store on every call.
func NewFeedbackService(
	wasteRepo interfaces.WasteRequestRepository,
	cache CacheService,
	cacheTTL time.Duration,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) FeedbackService {
	if cacheTTL <= 0 {
		cacheTTL = utils.TestimonialCacheTTL
	}

	return &feedbackService{
		wasteRepo: wasteRepo,
		cache:     cache,
		cacheTTL:  cacheTTL,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *feedbackService) AddFeedback(ctx context.Context, id primitive.ObjectID, caller *models.Identity, request *validators.AddFeedbackRequest) (*models.WasteRequest, error) {
	if err := validators.ValidateAddFeedback(request); err != nil {
		return nil, err
	}

	existing, err := s.wasteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing.Status != models.WasteStatusCompleted {
		return nil, utils.NewAppError(utils.ErrInvalidState, utils.ErrMsgFeedbackNotCompleted)
	}

	if !caller.Owns(existing.UserID) {
		return nil, utils.NewAppError(utils.ErrForbidden, utils.ErrMsgNotAuthorizedFeedback)
	}

	if existing.HasFeedback() {
		return nil, utils.NewAppError(utils.ErrInvalidState, utils.ErrMsgFeedbackExists)
	}

	// New feedback goes straight onto the public feed; admins can un-feature it.
	feedback := &models.Feedback{
		Rating:     request.Rating,
		Comment:    request.Comment,
		CreatedAt:  time.Now(),
		IsPublic:   true,
		IsFeatured: true,
	}

	updated, err := s.wasteRepo.SetFeedback(ctx, id, feedback)
	if err != nil {
		return nil, err
	}

	invalidateTestimonials(ctx, s.cache, s.logger)
	s.metrics.RecordFeedback()
	s.logger.LogWasteEvent(id, utils.EventFeedbackAdded, map[string]interface{}{
		"rating": feedback.Rating,
	})

	return updated, nil
}

func (s *feedbackService) ToggleFeatured(ctx context.Context, id primitive.ObjectID) (*models.WasteRequest, error) {
	existing, err := s.wasteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !existing.HasFeedback() {
		return nil, utils.NewAppError(utils.ErrInvalidState, utils.ErrMsgNoFeedback)
	}

	updated, err := s.wasteRepo.ToggleFeatured(ctx, id)
	if err != nil {
		return nil, err
	}

	invalidateTestimonials(ctx, s.cache, s.logger)
	s.logger.LogWasteEvent(id, utils.EventFeedbackFeatureFlip, map[string]interface{}{
		"is_featured": updated.Feedback != nil && updated.Feedback.IsFeatured,
	})

	return updated, nil
}

func (s *feedbackService) ListTestimonials(ctx context.Context) ([]*models.Testimonial, error) {
	if s.cache != nil {
		var cached []*models.Testimonial
		err := s.cache.Get(ctx, utils.CacheTestimonialsKey, &cached)
		s.metrics.RecordCacheLookup("testimonials", err == nil)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WithError(err).Warn("Testimonial cache read failed")
		}
	}

	testimonials, err := s.wasteRepo.ListTestimonials(ctx, utils.MaxTestimonials)
	if err != nil {
		return nil, err
	}
	if len(testimonials) > utils.MaxTestimonials {
		testimonials = testimonials[:utils.MaxTestimonials]
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, utils.CacheTestimonialsKey, testimonials, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("Testimonial cache write failed")
		}
	}

	return testimonials, nil
}

func invalidateTestimonials(ctx context.Context, cacheService CacheService, log *logger.Logger) {
	if cacheService == nil {
		return
	}
	if err := cacheService.Delete(ctx, utils.CacheTestimonialsKey); err != nil {
		log.WithError(err).Warn("Failed to invalidate testimonial cache")
	}
}
