package domain

import "time"

const (
	ConditionNew         = "new"
	ConditionUsed        = "used"
	ConditionRefurbished = "refurbished"
)

const (
	ListingThreeDays = "three"
	ListingWeek      = "week"
	ListingMonth     = "month"
)

const (
	PaymentCreditCard = "credit_card"
	PaymentPaypal     = "paypal"
	PaymentEasypaisa  = "easypaisa"
	PaymentJazzcash   = "jazzcash"
	PaymentBank       = "bank"
)

const DefaultItemCity = "My City"

// Conditions lists the accepted item conditions.
func Conditions() []string {
	return []string{ConditionNew, ConditionUsed, ConditionRefurbished}
}

// ListingDurations lists the accepted listing windows.
func ListingDurations() []string {
	return []string{ListingThreeDays, ListingWeek, ListingMonth}
}

// PaymentOptions lists the accepted payment methods.
func PaymentOptions() []string {
	return []string{PaymentCreditCard, PaymentPaypal, PaymentEasypaisa, PaymentJazzcash, PaymentBank}
}

// Location is where an item ships from.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// ShippingOption is one delivery method offered by the seller.
type ShippingOption struct {
	Method string  `json:"method"`
	Cost   float64 `json:"cost"`
}

// Item is a listing owned by exactly one seller. SellerID is set from the
// creating identity and never changes afterwards.
type Item struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Slug            string            `json:"slug"`
	Description     string            `json:"description"`
	Price           float64           `json:"price"`
	Category        string            `json:"category"`
	Condition       string            `json:"condition"`
	SellerID        string            `json:"seller"`
	Location        Location          `json:"location"`
	ShippingOptions []ShippingOption  `json:"shippingOptions"`
	Images          []string          `json:"images,omitempty"`
	Quantity        int               `json:"quantity"`
	Availability    bool              `json:"availability"`
	Attributes      map[string]any    `json:"attributes,omitempty"`
	SKU             string            `json:"sku"`
	ListingDuration string            `json:"listingDuration"`
	EndDate         time.Time         `json:"endDate"`
	PaymentOptions  []string          `json:"paymentOptions"`
	ReturnPolicy    string            `json:"returnPolicy"`
	SellerNotes     string            `json:"sellerNotes,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// NewItem returns an Item carrying the listing defaults.
func NewItem() *Item {
	return &Item{
		Condition:    ConditionNew,
		Quantity:     1,
		Availability: true,
		Location:     Location{City: DefaultItemCity},
	}
}
