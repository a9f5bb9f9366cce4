package services

import (
	"context"
	"fmt"
	"time"

	"ecowaste/internal/models"
	"ecowaste/pkg/logger"
	"ecowaste/pkg/sms"
)

const notificationTimeout = 5 * time.Second

// NotificationService tells submitters about their requests by SMS. Delivery
// failures are logged and never fail the calling operation.
type NotificationService interface {
	NotifySubmitted(ctx context.Context, request *models.WasteRequest)
	NotifyStatusChanged(ctx context.Context, request *models.WasteRequest)
}

type notificationService struct {
	provider sms.SMSProvider
	appName  string
	logger   *logger.Logger
}

// NewNotificationService returns a service that does nothing when provider
// is nil.
func NewNotificationService(provider sms.SMSProvider, appName string, logger *logger.Logger) NotificationService {
	return &notificationService{
		provider: provider,
		appName:  appName,
		logger:   logger,
	}
}

func (s *notificationService) NotifySubmitted(ctx context.Context, request *models.WasteRequest) {
	message := fmt.Sprintf("%s: we received your %s pickup request (%.1f kg). Reference %s.",
		s.appName, request.WasteType, request.EstimatedWeight, shortRef(request))
	s.send(ctx, request, message)
}

func (s *notificationService) NotifyStatusChanged(ctx context.Context, request *models.WasteRequest) {
	message := fmt.Sprintf("%s: your pickup request %s is now %s.", s.appName, shortRef(request), request.Status)
	if request.Status == models.WasteStatusCompleted && request.TotalAmount != nil {
		message = fmt.Sprintf("%s: your pickup request %s is completed. Amount credited: %.2f.",
			s.appName, shortRef(request), *request.TotalAmount)
	}
	s.send(ctx, request, message)
}

func (s *notificationService) send(ctx context.Context, request *models.WasteRequest, message string) {
	if s.provider == nil || request.Phone == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, notificationTimeout)
	defer cancel()

	_, err := s.provider.SendSMS(ctx, &sms.SMSRequest{
		To:      request.Phone,
		Message: message,
		Type:    "transactional",
	})
	if err != nil {
		s.logger.WithError(err).
			WithWasteRequestID(request.ID).
			Warn("Failed to send SMS notification")
	}
}

func shortRef(request *models.WasteRequest) string {
	hex := request.ID.Hex()
	return hex[len(hex)-6:]
}
