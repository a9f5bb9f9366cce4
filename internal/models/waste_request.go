package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WasteType string
type Frequency string
type PaymentMethod string
type WasteStatus string

const (
	WasteTypeVegetable WasteType = "Vegetable Waste"
	WasteTypeFruit     WasteType = "Fruit Waste"
	WasteTypeCooked    WasteType = "Cooked Food"
	WasteTypeBakery    WasteType = "Bakery Items"
	WasteTypeDairy     WasteType = "Dairy Products"
	WasteTypeMixed     WasteType = "Mixed Organic"
	WasteTypeOther     WasteType = "Other"

	FrequencyOneTime  Frequency = "one-time"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiWeekly Frequency = "bi-weekly"
	FrequencyMonthly  Frequency = "monthly"

	PaymentMethodBank PaymentMethod = "bank"
	PaymentMethodUPI  PaymentMethod = "upi"
	PaymentMethodCash PaymentMethod = "cash"

	WasteStatusPending   WasteStatus = "pending"
	WasteStatusVerified  WasteStatus = "verified"
	WasteStatusCollected WasteStatus = "collected"
	WasteStatusCompleted WasteStatus = "completed"
	WasteStatusCancelled WasteStatus = "cancelled"
)

var WasteTypes = []WasteType{
	WasteTypeVegetable,
	WasteTypeFruit,
	WasteTypeCooked,
	WasteTypeBakery,
	WasteTypeDairy,
	WasteTypeMixed,
	WasteTypeOther,
}

var WasteStatuses = []WasteStatus{
	WasteStatusPending,
	WasteStatusVerified,
	WasteStatusCollected,
	WasteStatusCompleted,
	WasteStatusCancelled,
}

func (s WasteStatus) IsValid() bool {
	for _, status := range WasteStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type BankDetails struct {
	AccountNumber     string `json:"accountNumber" bson:"account_number"`
	IFSCCode          string `json:"ifscCode" bson:"ifsc_code"`
	AccountHolderName string `json:"accountHolderName" bson:"account_holder_name"`
	BankName          string `json:"bankName" bson:"bank_name"`
}

type UPIDetails struct {
	UPIID string `json:"upiId" bson:"upi_id"`
}

// Payout holds how the submitter wants to be paid. Only the payload that
// matches Method is ever populated.
type Payout struct {
	Method PaymentMethod `json:"method" bson:"method"`
	UPI    *UPIDetails   `json:"upi,omitempty" bson:"upi,omitempty"`
	Bank   *BankDetails  `json:"bank,omitempty" bson:"bank,omitempty"`
}

func NewPayout(method PaymentMethod, upiID string, bank *BankDetails) Payout {
	payout := Payout{Method: method}

	switch method {
	case PaymentMethodUPI:
		if upiID != "" {
			payout.UPI = &UPIDetails{UPIID: upiID}
		}
	case PaymentMethodBank:
		payout.Bank = bank
	default:
		payout.Method = PaymentMethodCash
	}

	return payout
}

type Feedback struct {
	Rating     int       `json:"rating" bson:"rating"`
	Comment    string    `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
	IsPublic   bool      `json:"isPublic" bson:"is_public"`
	IsFeatured bool      `json:"isFeatured" bson:"is_featured"`
}

type WasteRequest struct {
	ID     primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID *primitive.ObjectID `json:"user" bson:"user_id"`
	Owner  *UserSummary        `json:"owner,omitempty" bson:"-"`

	Name            string     `json:"name" bson:"name"`
	Phone           string     `json:"phone" bson:"phone"`
	Email           string     `json:"email" bson:"email"`
	Address         string     `json:"address" bson:"address"`
	WasteType       WasteType  `json:"wasteType" bson:"waste_type"`
	EstimatedWeight float64    `json:"estimatedWeight" bson:"estimated_weight"`
	Frequency       Frequency  `json:"frequency" bson:"frequency"`
	PreferredPickup *time.Time `json:"preferredPickup,omitempty" bson:"preferred_pickup,omitempty"`
	Description     string     `json:"description,omitempty" bson:"description,omitempty"`
	Image           string     `json:"image,omitempty" bson:"image,omitempty"`
	ImageKey        string     `json:"-" bson:"image_key,omitempty"`
	Payout          Payout     `json:"payout" bson:"payout"`

	Status       WasteStatus `json:"status" bson:"status"`
	ActualWeight *float64    `json:"actualWeight,omitempty" bson:"actual_weight,omitempty"`
	PricePerKg   *float64    `json:"pricePerKg,omitempty" bson:"price_per_kg,omitempty"`
	TotalAmount  *float64    `json:"totalAmount,omitempty" bson:"total_amount,omitempty"`
	IsPaid       bool        `json:"isPaid" bson:"is_paid"`
	PaidAt       *time.Time  `json:"paidAt,omitempty" bson:"paid_at,omitempty"`
	CollectedAt  *time.Time  `json:"collectedAt,omitempty" bson:"collected_at,omitempty"`
	Feedback     *Feedback   `json:"feedback,omitempty" bson:"feedback,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

func (w *WasteRequest) HasFeedback() bool {
	return w.Feedback != nil && w.Feedback.Rating > 0
}

// CreditAmounts returns what a completion adds to the owner's counters.
func (w *WasteRequest) CreditAmounts() (earnings, weight float64) {
	if w.TotalAmount != nil {
		earnings = *w.TotalAmount
	}
	if w.ActualWeight != nil {
		weight = *w.ActualWeight
	}
	return earnings, weight
}

// Testimonial is the public projection of a featured feedback.
type Testimonial struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Feedback  Feedback           `json:"feedback" bson:"feedback"`
	User      *TestimonialAuthor `json:"user,omitempty" bson:"user,omitempty"`
	WasteType WasteType          `json:"wasteType" bson:"waste_type"`
	Address   string             `json:"address" bson:"address"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

type TestimonialAuthor struct {
	Name string `json:"name" bson:"name"`
}
