package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking status values. The set is open: operators may assign other
// statuses via PATCH, only the creation default is fixed.
const (
	StatusPending   = "Pending"
	StatusCancelled = "Cancelled"
)

// User roles accepted by the admin role mutation endpoint.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Service struct {
	ID            primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Title         string             `json:"title" bson:"title"`
	Description   string             `json:"description,omitempty" bson:"description,omitempty"`
	Image         string             `json:"image,omitempty" bson:"image,omitempty"`
	ChargePerHour float64            `json:"chargePerHour" bson:"chargePerHour"`
	ChargePerDay  float64            `json:"chargePerDay" bson:"chargePerDay"`
	Features      []string           `json:"features,omitempty" bson:"features,omitempty"`
	Category      string             `json:"category" bson:"category"`
	CreatedBy     string             `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}

type Booking struct {
	ID            primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserEmail     string             `json:"userEmail" bson:"userEmail"`
	UserName      string             `json:"userName,omitempty" bson:"userName,omitempty"`
	ServiceName   string             `json:"serviceName" bson:"serviceName"`
	DurationValue float64            `json:"durationValue" bson:"durationValue"`
	DurationType  string             `json:"durationType" bson:"durationType"` // hourly, daily
	Area          string             `json:"area,omitempty" bson:"area,omitempty"`
	City          string             `json:"city,omitempty" bson:"city,omitempty"`
	District      string             `json:"district,omitempty" bson:"district,omitempty"`
	Division      string             `json:"division,omitempty" bson:"division,omitempty"`
	Address       string             `json:"address,omitempty" bson:"address,omitempty"`
	TotalCost     float64            `json:"totalCost" bson:"totalCost"`
	Status        string             `json:"status" bson:"status"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}

// AdminStats is the aggregate report served to admins. TotalRevenue sums
// totalCost over all bookings except cancelled ones.
type AdminStats struct {
	TotalBookings int64            `json:"totalBookings"`
	TotalUsers    int64            `json:"totalUsers"`
	TotalServices int64            `json:"totalServices"`
	TotalRevenue  float64          `json:"totalRevenue"`
	StatusCounts  map[string]int64 `json:"statusCounts"`
}
