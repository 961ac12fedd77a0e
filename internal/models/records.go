package models

import "time"

// HyderabadRecord is the storage schema of the Hyderabad catalogue
type HyderabadRecord struct {
	ID               string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Title            string    `gorm:"type:text;not null" json:"title"`
	Price            int64     `gorm:"index" json:"price"`
	PriceDisplay     string    `gorm:"type:varchar(64)" json:"price_display"`
	PropertyType     string    `gorm:"type:varchar(64)" json:"property_type"`
	Bedrooms         *int      `gorm:"index" json:"bedrooms"`
	Bathrooms        *int      `json:"bathrooms"`
	AreaSqft         *float64  `json:"area_sqft"`
	MicroMarket      string    `gorm:"type:varchar(128);index" json:"micro_market"`
	Developer        string    `gorm:"type:varchar(128)" json:"developer"`
	ProjectName      *string   `gorm:"type:varchar(128)" json:"project_name"`
	Amenities        string    `gorm:"type:text" json:"amenities"`
	IsFeatured       bool      `json:"is_featured"`
	PossessionStatus *string   `gorm:"type:varchar(64);index" json:"possession_status"`
	LandownerShare   bool      `gorm:"index:idx_hyderabad_shares" json:"landowner_share"`
	InvestorShare    bool      `gorm:"index:idx_hyderabad_shares" json:"investor_share"`
	IsResale         bool      `gorm:"index:idx_hyderabad_shares" json:"is_resale"`
	ShortDescription string    `gorm:"type:text" json:"short_description"`
	Description      string    `gorm:"type:text" json:"description"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

func (HyderabadRecord) TableName() string {
	return "hyderabad_properties"
}

// GoaRecord is the storage schema of the Goa catalogue
type GoaRecord struct {
	ID               string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Title            string    `gorm:"type:text;not null" json:"title"`
	Price            int64     `gorm:"index" json:"price"`
	PriceDisplay     string    `gorm:"type:varchar(64)" json:"price_display"`
	PropertyType     string    `gorm:"type:varchar(64)" json:"property_type"`
	Bedrooms         *int      `gorm:"index" json:"bedrooms"`
	Bathrooms        *int      `json:"bathrooms"`
	AreaSqft         *float64  `json:"area_sqft"`
	District         string    `gorm:"type:varchar(64);index" json:"district"`
	LocationArea     string    `gorm:"type:varchar(128)" json:"location_area"`
	Developer        string    `gorm:"type:varchar(128)" json:"developer"`
	ProjectName      *string   `gorm:"type:varchar(128)" json:"project_name"`
	Amenities        string    `gorm:"type:text" json:"amenities"`
	IsFeatured       bool      `json:"is_featured"`
	CompletionStatus *string   `gorm:"type:varchar(64)" json:"completion_status"`
	ShortDescription string    `gorm:"type:text" json:"short_description"`
	Description      string    `gorm:"type:text" json:"description"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

func (GoaRecord) TableName() string {
	return "goa_properties"
}

// DubaiRecord is the storage schema of the Dubai catalogue
type DubaiRecord struct {
	ID               string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Title            string    `gorm:"type:text;not null" json:"title"`
	Price            int64     `gorm:"index" json:"price"`
	PriceDisplay     string    `gorm:"type:varchar(64)" json:"price_display"`
	PropertyType     string    `gorm:"type:varchar(64)" json:"property_type"`
	Bedrooms         *int      `gorm:"index" json:"bedrooms"`
	Bathrooms        *int      `json:"bathrooms"`
	AreaSqft         *float64  `json:"area_sqft"`
	Community        string    `gorm:"type:varchar(128);index" json:"community"`
	City             string    `gorm:"type:varchar(64)" json:"city"`
	Developer        string    `gorm:"type:varchar(128)" json:"developer"`
	ProjectName      *string   `gorm:"type:varchar(128)" json:"project_name"`
	Amenities        string    `gorm:"type:text" json:"amenities"`
	IsFeatured       bool      `json:"is_featured"`
	CompletionStatus *string   `gorm:"type:varchar(64)" json:"completion_status"`
	ShortDescription string    `gorm:"type:text" json:"short_description"`
	Description      string    `gorm:"type:text" json:"description"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

func (DubaiRecord) TableName() string {
	return "dubai_properties"
}
