package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"ecowaste/internal/models"
	"ecowaste/internal/repositories/interfaces"
	"ecowaste/internal/utils"
	"ecowaste/internal/validators"
	"ecowaste/pkg/logger"
	"ecowaste/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WasteService interface {
	// Create stores a new pending request. owner is nil for anonymous
	// submissions and image may be nil.
	Create(ctx context.Context, request *validators.CreateWasteRequest, owner *primitive.ObjectID, image *multipart.FileHeader) (*models.WasteRequest, error)
	ListMine(ctx context.Context, owner primitive.ObjectID) ([]*models.WasteRequest, error)
	GetOne(ctx context.Context, id primitive.ObjectID, caller *models.Identity) (*models.WasteRequest, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, request *validators.UpdateStatusRequest) (*models.WasteRequest, error)
	ListAll(ctx context.Context, status *models.WasteStatus, params *utils.PaginationParams) ([]*models.WasteRequest, int64, error)
	Delete(ctx context.Context, id primitive.ObjectID, caller *models.Identity) error
}

type wasteService struct {
	wasteRepo     interfaces.WasteRequestRepository
	userRepo      interfaces.UserRepository
	uploads       UploadService
	notifications NotificationService
	cache         CacheService
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

// NewWasteService wires the lifecycle service. uploads and cache may be nil.
func NewWasteService(
	wasteRepo interfaces.WasteRequestRepository,
	userRepo interfaces.UserRepository,
	uploads UploadService,
	notifications NotificationService,
	cache CacheService,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) WasteService {
	return &wasteService{
		wasteRepo:     wasteRepo,
		userRepo:      userRepo,
		uploads:       uploads,
		notifications: notifications,
		cache:         cache,
		metrics:       metrics,
		logger:        logger,
	}
}

func (s *wasteService) Create(ctx context.Context, request *validators.CreateWasteRequest, owner *primitive.ObjectID, image *multipart.FileHeader) (*models.WasteRequest, error) {
	if err := validators.ValidateCreateWaste(request); err != nil {
		return nil, err
	}

	preferredPickup, err := utils.ParsePickupTime(request.PreferredPickup)
	if err != nil {
		return nil, utils.NewValidationError(map[string]string{"preferredPickup": "Invalid preferred pickup time"})
	}

	frequency := models.Frequency(request.Frequency)
	if frequency == "" {
		frequency = models.FrequencyOneTime
	}

	method := models.PaymentMethod(request.PaymentMethod)
	if method == "" {
		method = models.PaymentMethodCash
	}

	var bank *models.BankDetails
	if method == models.PaymentMethodBank {
		bank, err = parseBankDetails(request.BankDetails)
		if err != nil {
			s.logger.WithError(err).Warn("Ignoring unparseable bank details")
		}
	}

	wasteRequest := &models.WasteRequest{
		UserID:          owner,
		Name:            request.Name,
		Phone:           request.Phone,
		Email:           request.Email,
		Address:         request.Address,
		WasteType:       models.WasteType(request.WasteType),
		EstimatedWeight: request.EstimatedWeight,
		Frequency:       frequency,
		PreferredPickup: preferredPickup,
		Description:     request.Description,
		Payout:          models.NewPayout(method, request.UPIID, bank),
		Status:          models.WasteStatusPending,
	}

	if image != nil && s.uploads != nil {
		uploaded, err := s.uploads.UploadWasteImage(ctx, image)
		if err != nil {
			return nil, err
		}
		wasteRequest.Image = uploaded.URL
		wasteRequest.ImageKey = uploaded.Key
	}

	if err := s.wasteRepo.Create(ctx, wasteRequest); err != nil {
		s.discardImage(ctx, wasteRequest.ImageKey)
		return nil, err
	}

	details := map[string]interface{}{
		"waste_type": wasteRequest.WasteType,
		"weight_kg":  wasteRequest.EstimatedWeight,
		"anonymous":  owner == nil,
	}
	s.logger.LogWasteEvent(wasteRequest.ID, utils.EventWasteSubmitted, details)
	s.metrics.RecordSubmission(string(wasteRequest.WasteType))
	s.notifications.NotifySubmitted(ctx, wasteRequest)

	return wasteRequest, nil
}

func (s *wasteService) ListMine(ctx context.Context, owner primitive.ObjectID) ([]*models.WasteRequest, error) {
	return s.wasteRepo.ListByOwner(ctx, owner)
}

func (s *wasteService) GetOne(ctx context.Context, id primitive.ObjectID, caller *models.Identity) (*models.WasteRequest, error) {
	request, err := s.wasteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if request.UserID != nil && !caller.Owns(request.UserID) && !caller.IsAdmin() {
		return nil, utils.NewAppError(utils.ErrForbidden, utils.ErrMsgNotAuthorizedAccess)
	}

	if err := s.populateOwners(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

func (s *wasteService) UpdateStatus(ctx context.Context, id primitive.ObjectID, request *validators.UpdateStatusRequest) (*models.WasteRequest, error) {
	if err := validators.ValidateUpdateStatus(request); err != nil {
		return nil, err
	}

	existing, err := s.wasteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	status := models.WasteStatus(request.Status)
	updates := map[string]interface{}{"status": status}

	actualWeight := existing.ActualWeight
	if request.ActualWeight != nil {
		updates["actual_weight"] = *request.ActualWeight
		actualWeight = request.ActualWeight
	}

	if request.PricePerKg != nil {
		updates["price_per_kg"] = *request.PricePerKg
		if actualWeight != nil {
			updates["total_amount"] = utils.CalculateTotal(*actualWeight, *request.PricePerKg)
		}
	}

	if status == models.WasteStatusCollected {
		updates["collected_at"] = now
	}

	updated, err := s.wasteRepo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	s.logger.LogWasteEvent(id, utils.EventWasteStatusChanged, map[string]interface{}{
		"from": existing.Status,
		"to":   status,
	})
	s.metrics.RecordStatusChange(string(status))

	if status == models.WasteStatusCompleted && !updated.IsPaid && updated.UserID != nil {
		if err := s.creditOwner(ctx, updated, now); err != nil {
			return nil, err
		}
	}

	if existing.Status != status {
		s.notifications.NotifyStatusChanged(ctx, updated)
	}

	return updated, nil
}

// creditOwner claims the request's payout and only then adds it to the
// owner's totals, so repeated or concurrent completions credit once. A failed
// credit releases the claim so the next completion retries it.
func (s *wasteService) creditOwner(ctx context.Context, request *models.WasteRequest, paidAt time.Time) error {
	// Stored dates keep milliseconds; ReleasePaid matches on the stored value.
	paidAt = paidAt.Truncate(time.Millisecond)
	claimed, err := s.wasteRepo.MarkPaid(ctx, request.ID, paidAt)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	earnings, weight := request.CreditAmounts()
	if err := s.userRepo.IncrementTotals(ctx, *request.UserID, earnings, weight); err != nil {
		s.logger.WithError(err).
			WithWasteRequestID(request.ID).
			WithUserID(*request.UserID).
			Error("Crediting the owner failed, releasing payment claim")
		if releaseErr := s.wasteRepo.ReleasePaid(ctx, request.ID, paidAt); releaseErr != nil {
			s.logger.WithError(releaseErr).
				WithWasteRequestID(request.ID).
				Error("Failed to release payment claim")
		}
		return err
	}

	request.IsPaid = true
	request.PaidAt = &paidAt

	s.logger.LogPayoutEvent(request.ID, *request.UserID, earnings, weight)
	s.metrics.RecordPayout(earnings)

	return nil
}

func (s *wasteService) ListAll(ctx context.Context, status *models.WasteStatus, params *utils.PaginationParams) ([]*models.WasteRequest, int64, error) {
	requests, total, err := s.wasteRepo.List(ctx, status, params)
	if err != nil {
		return nil, 0, err
	}

	if err := s.populateOwners(ctx, requests...); err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (s *wasteService) Delete(ctx context.Context, id primitive.ObjectID, caller *models.Identity) error {
	request, err := s.wasteRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if request.UserID != nil && !caller.Owns(request.UserID) && !caller.IsAdmin() {
		return utils.NewAppError(utils.ErrForbidden, utils.ErrMsgNotAuthorizedDelete)
	}

	if err := s.wasteRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.discardImage(ctx, request.ImageKey)

	if request.HasFeedback() && request.Feedback.IsFeatured {
		invalidateTestimonials(ctx, s.cache, s.logger)
	}

	details := map[string]interface{}{}
	if caller != nil {
		details["deleted_by"] = caller.UserID.Hex()
	}
	s.logger.LogWasteEvent(id, utils.EventWasteDeleted, details)

	return nil
}

func (s *wasteService) populateOwners(ctx context.Context, requests ...*models.WasteRequest) error {
	seen := make(map[primitive.ObjectID]struct{})
	ids := make([]primitive.ObjectID, 0, len(requests))
	for _, request := range requests {
		if request.UserID == nil {
			continue
		}
		if _, ok := seen[*request.UserID]; !ok {
			seen[*request.UserID] = struct{}{}
			ids = append(ids, *request.UserID)
		}
	}

	if len(ids) == 0 {
		return nil
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	for _, request := range requests {
		if request.UserID == nil {
			continue
		}
		if user, ok := users[*request.UserID]; ok {
			request.Owner = user.Summary()
		}
	}

	return nil
}

func (s *wasteService) discardImage(ctx context.Context, key string) {
	if key == "" || s.uploads == nil {
		return
	}
	if err := s.uploads.Delete(ctx, key); err != nil {
		s.logger.WithError(err).WithField("image_key", key).Warn("Failed to delete stored image")
	}
}

// parseBankDetails accepts a JSON object or a JSON string holding an object.
// Empty input yields nil without error.
func parseBankDetails(raw json.RawMessage) (*models.BankDetails, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, fmt.Errorf("decode bank details string: %w", err)
		}
		raw = bytes.TrimSpace([]byte(encoded))
		if len(raw) == 0 {
			return nil, nil
		}
	}

	var details models.BankDetails
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, fmt.Errorf("decode bank details: %w", err)
	}

	if details == (models.BankDetails{}) {
		return nil, errors.New("bank details are empty")
	}

	return &details, nil
}
