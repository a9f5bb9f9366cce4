package validators

import (
	"encoding/json"
	"strings"
)

// CreateWasteRequest is the submission payload. It binds from multipart forms
// and from JSON bodies; BankDetails is either a JSON object or a JSON-encoded
// string.
type CreateWasteRequest struct {
	Name            string          `json:"name" form:"name" validate:"required,max=100"`
	Phone           string          `json:"phone" form:"phone" validate:"required,phone_number"`
	Email           string          `json:"email" form:"email" validate:"required,email"`
	Address         string          `json:"address" form:"address" validate:"required,max=500"`
	WasteType       string          `json:"wasteType" form:"wasteType" validate:"required,waste_type"`
	EstimatedWeight float64         `json:"estimatedWeight" form:"estimatedWeight" validate:"gt=0"`
	Frequency       string          `json:"frequency" form:"frequency" validate:"omitempty,oneof=one-time weekly bi-weekly monthly"`
	PreferredPickup string          `json:"preferredPickup" form:"preferredPickup" validate:"omitempty,pickup_time"`
	Description     string          `json:"description" form:"description" validate:"omitempty,max=2000"`
	PaymentMethod   string          `json:"paymentMethod" form:"paymentMethod" validate:"omitempty,oneof=bank upi cash"`
	UPIID           string          `json:"upiId" form:"upiId" validate:"omitempty,max=100"`
	BankDetails     json.RawMessage `json:"bankDetails" form:"-"`
}

type UpdateStatusRequest struct {
	Status       string   `json:"status" validate:"required,waste_status"`
	ActualWeight *float64 `json:"actualWeight" validate:"omitempty,gte=0"`
	PricePerKg   *float64 `json:"pricePerKg" validate:"omitempty,gte=0"`
}

type AddFeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

type ListWasteQuery struct {
	Status string `form:"status" json:"status" validate:"omitempty,waste_status"`
}

func (r *CreateWasteRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Address = strings.TrimSpace(r.Address)
	r.WasteType = strings.TrimSpace(r.WasteType)
	r.Description = strings.TrimSpace(r.Description)
	r.PreferredPickup = strings.TrimSpace(r.PreferredPickup)
	r.UPIID = strings.TrimSpace(r.UPIID)
}

func ValidateCreateWaste(req *CreateWasteRequest) error {
	req.Normalize()
	return ValidateStruct(req).AppError()
}

func ValidateUpdateStatus(req *UpdateStatusRequest) error {
	req.Status = strings.TrimSpace(req.Status)
	return ValidateStruct(req).AppError()
}

func ValidateAddFeedback(req *AddFeedbackRequest) error {
	req.Comment = strings.TrimSpace(req.Comment)
	return ValidateStruct(req).AppError()
}

func ValidateListWasteQuery(req *ListWasteQuery) error {
	req.Status = strings.TrimSpace(req.Status)
	return ValidateStruct(req).AppError()
}
