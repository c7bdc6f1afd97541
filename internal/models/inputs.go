package models

// Request payloads. Update types carry only allow-listed fields; a nil
// pointer means "leave unchanged" and any other JSON field is ignored.

// CartItemInput is the body of an add-to-cart request.
type CartItemInput struct {
	ItemID   string   `json:"itemId"`
	PostType PostType `json:"postType"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Currency string   `json:"currency"`
	Image    string   `json:"image"`
	SellerID string   `json:"sellerId"`
	Quantity int      `json:"quantity"`
}

// CartItemUpdate is the allow-list for cart item updates.
type CartItemUpdate struct {
	Quantity *int     `json:"quantity"`
	Price    *float64 `json:"price"`
	Title    *string  `json:"title"`
	Image    *string  `json:"image"`
}

// UserProfileInput creates the caller's profile.
type UserProfileInput struct {
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Role           UserRole  `json:"role"`
	Bio            string    `json:"bio"`
	Location       *Location `json:"location"`
	ProfilePicture *Media    `json:"profilePicture"`
}

// UserProfileUpdate is the allow-list for profile updates.
type UserProfileUpdate struct {
	FullName       *string   `json:"fullName"`
	Phone          *string   `json:"phone"`
	Bio            *string   `json:"bio"`
	Location       *Location `json:"location"`
	ProfilePicture *Media    `json:"profilePicture"`
	Role           *UserRole `json:"role"`
}

// FarmProfileInput creates or updates the caller's farm profile.
type FarmProfileInput struct {
	FarmName        *string          `json:"farmName"`
	FarmLocation    *Location        `json:"farmLocation"`
	FarmSize        *float64         `json:"farmSize"`
	FarmType        *FarmType        `json:"farmType"`
	ProductionScale *ProductionScale `json:"productionScale"`
	Crops           *[]string        `json:"crops"`
	Livestock       *[]string        `json:"livestock"`
	ContactPhone    *string          `json:"contactPhone"`
	ContactEmail    *string          `json:"contactEmail"`
	Description     *string          `json:"description"`
	FarmImages      *[]Media         `json:"farmImages"`
}

// StoreProfileInput creates or updates the caller's store profile.
type StoreProfileInput struct {
	StoreName     *string   `json:"storeName"`
	Description   *string   `json:"description"`
	Location      *Location `json:"location"`
	Phone         *string   `json:"phone"`
	Email         *string   `json:"email"`
	Website       *string   `json:"website"`
	StoreImage    *Media    `json:"storeImage"`
	BusinessHours *string   `json:"businessHours"`
}

// FarmPostInput publishes a farm listing.
type FarmPostInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    CategoryRef  `json:"category"`
	Subcategory *CategoryRef `json:"subcategory"`
	Location    Location     `json:"location"`
	Price       float64      `json:"price"`
	Currency    string       `json:"currency"`
	Unit        string       `json:"unit"`
	Quantity    int          `json:"quantity"`
	Images      []Media      `json:"images"`
	Tags        []string     `json:"tags"`
	Status      PostStatus   `json:"status"`
}

// FarmPostUpdate is the allow-list for farm listing updates.
type FarmPostUpdate struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Category    *CategoryRef `json:"category"`
	Subcategory *CategoryRef `json:"subcategory"`
	Location    *Location    `json:"location"`
	Price       *float64     `json:"price"`
	Currency    *string      `json:"currency"`
	Unit        *string      `json:"unit"`
	Quantity    *int         `json:"quantity"`
	Images      *[]Media     `json:"images"`
	Tags        *[]string    `json:"tags"`
	Status      *PostStatus  `json:"status"`
}

// StorePostInput publishes a store listing.
type StorePostInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    CategoryRef  `json:"category"`
	Subcategory *CategoryRef `json:"subcategory"`
	Location    Location     `json:"location"`
	Pricing     Pricing      `json:"pricing"`
	Condition   string       `json:"condition"`
	Stock       int          `json:"stock"`
	Images      []Media      `json:"images"`
	Tags        []string     `json:"tags"`
	Status      PostStatus   `json:"status"`
}

// StorePostUpdate is the allow-list for store listing updates.
type StorePostUpdate struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Category    *CategoryRef `json:"category"`
	Subcategory *CategoryRef `json:"subcategory"`
	Location    *Location    `json:"location"`
	Pricing     *Pricing     `json:"pricing"`
	Condition   *string      `json:"condition"`
	Stock       *int         `json:"stock"`
	Images      *[]Media     `json:"images"`
	Tags        *[]string    `json:"tags"`
	Status      *PostStatus  `json:"status"`
}

// ReviewInput creates a review.
type ReviewInput struct {
	RecipientID string `json:"recipientId"`
	PostID      string `json:"postId"`
	Rating      *int   `json:"rating"`
	Content     string `json:"content"`
}

// ReviewUpdate is the allow-list for review updates.
type ReviewUpdate struct {
	Rating  *int    `json:"rating"`
	Content *string `json:"content"`
}
