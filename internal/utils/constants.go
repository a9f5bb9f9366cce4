package utils

import "time"

// Application Constants
const (
	AppName    = "EcoWaste"
	AppVersion = "1.0.0"

	// Pagination
	DefaultPageSize = 10
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL = 30 * 24 * time.Hour
	PasswordMinLength = 6
	PasswordMaxLength = 128

	// Testimonials
	MaxTestimonials     = 6
	TestimonialCacheTTL = 5 * time.Minute

	// Feedback
	MinFeedbackRating     = 1
	MaxFeedbackRating     = 5
	MaxFeedbackCommentLen = 1000

	// File Upload
	MaxImageSize       = 5 * 1024 * 1024 // 5MB
	MaxImageWidth      = 1600
	MaxImageHeight     = 1600
	DefaultJPEGQuality = 85
)

// Error Messages
const (
	ErrMsgInvalidCredentials    = "Invalid credentials"
	ErrMsgUserExists            = "User already exists with this email or phone"
	ErrMsgInternalServer        = "Internal server error"
	ErrMsgUnauthorized          = "Not authorized, no token"
	ErrMsgInvalidToken          = "Not authorized, token failed"
	ErrMsgAdminOnly             = "Admin access required"
	ErrMsgValidationFailed      = "Validation failed"
	ErrMsgRequestNotFound       = "Waste request not found"
	ErrMsgNotAuthorizedAccess   = "Not authorized to access this request"
	ErrMsgNotAuthorizedDelete   = "Not authorized to delete this request"
	ErrMsgNotAuthorizedFeedback = "Not authorized to add feedback to this request"
	ErrMsgFeedbackNotCompleted  = "Can only add feedback to completed requests"
	ErrMsgFeedbackExists        = "Feedback has already been submitted for this request"
	ErrMsgNoFeedback            = "No feedback found for this request"
	ErrMsgFileUploadFailed      = "File upload failed"
)

// Cache Keys
const (
	CacheUserPrefix      = "user:"
	CacheTestimonialsKey = "waste:testimonials"
)

// Event Types
const (
	EventUserRegistered      = "user_registered"
	EventUserLogin           = "user_login"
	EventWasteSubmitted      = "waste_submitted"
	EventWasteStatusChanged  = "waste_status_changed"
	EventWasteDeleted        = "waste_deleted"
	EventFeedbackAdded       = "feedback_added"
	EventFeedbackFeatureFlip = "feedback_feature_toggled"
	EventPayoutCredited      = "payout_credited"
)

// File Types
var (
	AllowedImageTypes = []string{"jpg", "jpeg", "png", "gif", "webp"}
)
