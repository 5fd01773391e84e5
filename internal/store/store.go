package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type User struct {
	ID               string     `json:"id"`
	PhoneNumber      string     `json:"phoneNumber"`
	Name             string     `json:"name"`
	AvatarURL        string     `json:"avatarUrl"`
	IsPremium        bool       `json:"isPremium"`
	PremiumExpiresAt *time.Time `json:"premiumExpiresAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// AuthCode is a stored OTP challenge. Codes are compared server-side;
// nothing is ever sent over SMS.
type AuthCode struct {
	ID          string
	PhoneNumber string
	Code        string
	ExpiresAt   time.Time
	Verified    bool
	CreatedAt   time.Time
}

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

type ListingStatus string

const (
	ListingActive  ListingStatus = "active"
	ListingSold    ListingStatus = "sold"
	ListingDeleted ListingStatus = "deleted"
)

type Listing struct {
	ID            string         `json:"id"`
	SellerID      string         `json:"sellerId"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Category      string         `json:"category"`
	Condition     string         `json:"condition"`
	Price         int            `json:"price"`
	OriginalPrice int            `json:"originalPrice,omitempty"`
	Images        []string       `json:"images"`
	Location      string         `json:"location"`
	Specs         map[string]any `json:"specs,omitempty"`
	DealScore     *int           `json:"dealScore,omitempty"`
	RiskScore     *int           `json:"riskScore,omitempty"`
	Status        ListingStatus  `json:"status"`
	Views         int            `json:"views"`
	Saves         int            `json:"saves"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// ListingFilter narrows ListListings. Zero values mean "no constraint";
// only active listings are ever returned.
type ListingFilter struct {
	Category string
	Search   string
	SellerID string
}

type Conversation struct {
	ID                 string    `json:"id"`
	ListingID          string    `json:"listingId"`
	BuyerID            string    `json:"buyerId"`
	SellerID           string    `json:"sellerId"`
	AIAgentActive      bool      `json:"aiAgentActive"`
	NeedsIntervention  bool      `json:"needsIntervention"`
	InterventionReason string    `json:"interventionReason,omitempty"`
	LastMessageAt      time.Time `json:"lastMessageAt"`
	CreatedAt          time.Time `json:"createdAt"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	IsAIGenerated  bool      `json:"isAiGenerated"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

type DealListener struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Category       string    `json:"category"`
	Keywords       []string  `json:"keywords,omitempty"`
	MaxPrice       int       `json:"maxPrice,omitempty"`
	MinDealScore   int       `json:"minDealScore"`
	NotifyWhatsApp bool      `json:"notifyWhatsApp"`
	NotifyEmail    bool      `json:"notifyEmail"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
}

type SavedListing struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ListingID string    `json:"listingId"`
	CreatedAt time.Time `json:"createdAt"`
}
