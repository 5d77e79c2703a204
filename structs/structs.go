package structs

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	UserID    string    `json:"userId" bson:"userid"`
	Username  string    `json:"username" bson:"username"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"-" bson:"password"`
	Role      string    `json:"role" bson:"role"`
	IsActive  bool      `json:"isActive" bson:"is_active"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Organizer is the event-organizer profile extension of a User. The
// GPT quota lives here and only ever moves through guarded updates:
// package purchases credit it, successful description generations
// debit it by one.
type Organizer struct {
	UserID              string    `json:"userId" bson:"userid"`
	EstablishYear       int       `json:"establishYear" bson:"establish_year"`
	ContactNumber       string    `json:"contactNumber" bson:"contact_number"`
	Industry            string    `json:"industry" bson:"industry"`
	Address             string    `json:"address" bson:"address"`
	Description         string    `json:"description" bson:"description"`
	GPTAccessTokenQuota int       `json:"gptAccessTokenQuota" bson:"gpt_access_token_quota"`
	CreatedAt           time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt           time.Time `json:"updatedAt" bson:"updated_at"`
}

// TicketCategory is embedded in its Event and has no identity of its
// own. RemainingTickets never goes below zero: every decrement is a
// guarded update.
type TicketCategory struct {
	CategoryName     string  `json:"categoryName" bson:"category_name"`
	TotalTickets     int     `json:"totalTickets" bson:"total_tickets"`
	RemainingTickets int     `json:"remainingTickets" bson:"remaining_tickets"`
	Price            float64 `json:"price" bson:"price"`
}

type Event struct {
	EventID     string           `json:"eventId" bson:"eventid"`
	OwnerID     string           `json:"ownerId" bson:"ownerid"`
	Title       string           `json:"title" bson:"title"`
	SubTitle    string           `json:"subTitle,omitempty" bson:"subtitle,omitempty"`
	Description string           `json:"description" bson:"description"`
	Location    string           `json:"location" bson:"location"`
	StartDate   time.Time        `json:"startDate" bson:"start_date"`
	EndDate     time.Time        `json:"endDate" bson:"end_date"`
	Tickets     []TicketCategory `json:"tickets" bson:"tickets"`
	BannerImage string           `json:"bannerImage,omitempty" bson:"banner_image,omitempty"`
	Tags        []string         `json:"tags,omitempty" bson:"tags,omitempty"`
	CreatedAt   time.Time        `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" bson:"updated_at"`
}

type PurchaseLine struct {
	CategoryName string  `json:"categoryName" bson:"category_name"`
	TotalTickets int     `json:"totalTickets" bson:"total_tickets"`
	TotalPrice   float64 `json:"totalPrice" bson:"total_price"`
}

// TicketPurchase is one row of the purchase ledger. Event fields are
// snapshotted at purchase time so the row stays meaningful after the
// event itself is edited or deleted.
type TicketPurchase struct {
	PurchaseID     string         `json:"purchaseId" bson:"purchaseid"`
	UserID         string         `json:"userId" bson:"userid"`
	EventID        string         `json:"eventId" bson:"eventid"`
	EventTitle     string         `json:"eventTitle" bson:"event_title"`
	EventSubTitle  string         `json:"eventSubTitle,omitempty" bson:"event_subtitle,omitempty"`
	EventLocation  string         `json:"eventLocation" bson:"event_location"`
	EventStartDate time.Time      `json:"eventStartDate" bson:"event_start_date"`
	EventEndDate   time.Time      `json:"eventEndDate" bson:"event_end_date"`
	Category       []PurchaseLine `json:"category" bson:"category"`
	Status         string         `json:"status" bson:"status"`
	CreatedAt      time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" bson:"updated_at"`
}

type Package struct {
	PackageID   string    `json:"packageId" bson:"packageid"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	TotalToken  int       `json:"totalToken" bson:"total_token"`
	Price       float64   `json:"price" bson:"price"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

type PackagePurchase struct {
	PurchaseID  string    `json:"purchaseId" bson:"purchaseid"`
	UserID      string    `json:"userId" bson:"userid"`
	PackageID   string    `json:"packageId" bson:"packageid"`
	PackageName string    `json:"packageName" bson:"package_name"`
	TotalToken  int       `json:"totalToken" bson:"total_token"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// JWT claims
type Claims struct {
	Username string `json:"username"`
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
