// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRole is the marketplace role a profile holder plays.
type UserRole string

const (
	RoleFarmer UserRole = "Farmer"
	RoleSeller UserRole = "Seller"
	RoleBuyer  UserRole = "Buyer"
	RoleBoth   UserRole = "Both"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleFarmer, RoleSeller, RoleBuyer, RoleBoth:
		return true
	}
	return false
}

// Location is the address block shared by profiles and posts.
type Location struct {
	Region     string `bson:"region,omitempty" json:"region,omitempty"`
	City       string `bson:"city,omitempty" json:"city,omitempty"`
	District   string `bson:"district,omitempty" json:"district,omitempty"`
	GPSAddress string `bson:"gpsAddress,omitempty" json:"gpsAddress,omitempty"`
}

// Media references an uploaded file.
type Media struct {
	URL      string `bson:"url" json:"url"`
	FileName string `bson:"fileName,omitempty" json:"fileName,omitempty"`
}

// UserProfile is the identity and contact record of a marketplace user.
type UserProfile struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID         string             `bson:"userId" json:"userId"`
	FullName       string             `bson:"fullName" json:"fullName"`
	Email          string             `bson:"email" json:"email"`
	Phone          string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role           UserRole           `bson:"role" json:"role"`
	Bio            string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Location       *Location          `bson:"location,omitempty" json:"location,omitempty"`
	ProfilePicture *Media             `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	IsVerified     bool               `bson:"isVerified" json:"isVerified"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProfileSummary is the populated projection of a UserProfile embedded in
// posts and reviews.
type ProfileSummary struct {
	UserID         string   `bson:"userId" json:"userId"`
	FullName       string   `bson:"fullName" json:"fullName"`
	Email          string   `bson:"email" json:"email"`
	Phone          string   `bson:"phone,omitempty" json:"phone,omitempty"`
	Role           UserRole `bson:"role,omitempty" json:"role,omitempty"`
	ProfilePicture *Media   `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
}

// FarmType enumerates what a farm produces.
type FarmType string

const (
	FarmTypeCrop        FarmType = "crop"
	FarmTypeLivestock   FarmType = "livestock"
	FarmTypeMixed       FarmType = "mixed"
	FarmTypeAquaculture FarmType = "aquaculture"
	FarmTypePoultry     FarmType = "poultry"
)

// Valid reports whether t is a known farm type.
func (t FarmType) Valid() bool {
	switch t {
	case FarmTypeCrop, FarmTypeLivestock, FarmTypeMixed, FarmTypeAquaculture, FarmTypePoultry:
		return true
	}
	return false
}

// ProductionScale enumerates farm sizes by output.
type ProductionScale string

const (
	ScaleSmall      ProductionScale = "small"
	ScaleMedium     ProductionScale = "medium"
	ScaleLarge      ProductionScale = "large"
	ScaleCommercial ProductionScale = "commercial"
)

// Valid reports whether s is a known production scale.
func (s ProductionScale) Valid() bool {
	switch s {
	case ScaleSmall, ScaleMedium, ScaleLarge, ScaleCommercial:
		return true
	}
	return false
}

// FarmProfile extends a UserProfile for farmers.
type FarmProfile struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID          string             `bson:"userId" json:"userId"`
	UserProfileID   primitive.ObjectID `bson:"userProfileId" json:"userProfileId"`
	FarmName        string             `bson:"farmName" json:"farmName"`
	FarmLocation    *Location          `bson:"farmLocation,omitempty" json:"farmLocation,omitempty"`
	FarmSize        float64            `bson:"farmSize" json:"farmSize"`
	FarmType        FarmType           `bson:"farmType" json:"farmType"`
	ProductionScale ProductionScale    `bson:"productionScale" json:"productionScale"`
	Crops           []string           `bson:"crops,omitempty" json:"crops,omitempty"`
	Livestock       []string           `bson:"livestock,omitempty" json:"livestock,omitempty"`
	ContactPhone    string             `bson:"contactPhone" json:"contactPhone"`
	ContactEmail    string             `bson:"contactEmail,omitempty" json:"contactEmail,omitempty"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	FarmImages      []Media            `bson:"farmImages,omitempty" json:"farmImages,omitempty"`
	Verified        bool               `bson:"verified" json:"verified"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// StoreProfile extends a UserProfile for sellers.
type StoreProfile struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID        string             `bson:"userId" json:"userId"`
	UserProfileID primitive.ObjectID `bson:"userProfileId" json:"userProfileId"`
	StoreName     string             `bson:"storeName" json:"storeName"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Location      *Location          `bson:"location,omitempty" json:"location,omitempty"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty"`
	Website       string             `bson:"website,omitempty" json:"website,omitempty"`
	StoreImage    *Media             `bson:"storeImage,omitempty" json:"storeImage,omitempty"`
	BusinessHours string             `bson:"businessHours,omitempty" json:"businessHours,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// StoreSummary is the populated projection of a StoreProfile embedded in store posts.
type StoreSummary struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	UserID     string             `bson:"userId" json:"userId"`
	StoreName  string             `bson:"storeName" json:"storeName"`
	StoreImage *Media             `bson:"storeImage,omitempty" json:"storeImage,omitempty"`
	Location   *Location          `bson:"location,omitempty" json:"location,omitempty"`
	Phone      string             `bson:"phone,omitempty" json:"phone,omitempty"`
}
