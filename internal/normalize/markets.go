package normalize

import "propfinder/server/internal/models"

type hyderabadRow struct {
	Base             baseRow  `mapstructure:",squash"`
	MicroMarket      relation `mapstructure:"micro_market"`
	PossessionStatus *string  `mapstructure:"possession_status"`
	LandownerShare   bool     `mapstructure:"landowner_share"`
	InvestorShare    bool     `mapstructure:"investor_share"`
	IsResale         bool     `mapstructure:"is_resale"`
}

func (r *hyderabadRow) toListing() models.Listing {
	l := r.Base.listing(models.MarketHyderabad)
	l.LocationLabel = r.MicroMarket.Name
	l.City = "Hyderabad"
	l.Status = trimmedStatus(r.PossessionStatus)
	l.Shares = models.ShareFlags{
		LandownerShare: r.LandownerShare,
		InvestorShare:  r.InvestorShare,
		IsResale:       r.IsResale,
	}
	if l.PriceDisplay == "" {
		l.PriceDisplay = FormatINR(l.Price)
	}
	return l
}

type goaRow struct {
	Base             baseRow  `mapstructure:",squash"`
	District         relation `mapstructure:"district"`
	LocationArea     string   `mapstructure:"location_area"`
	CompletionStatus *string  `mapstructure:"completion_status"`
}

func (r *goaRow) toListing() models.Listing {
	l := r.Base.listing(models.MarketGoa)
	l.District = r.District.Name
	l.LocationLabel = joinLabels(r.LocationArea, r.District.Name)
	l.City = "Goa"
	l.Status = trimmedStatus(r.CompletionStatus)
	if l.PriceDisplay == "" {
		l.PriceDisplay = FormatINR(l.Price)
	}
	return l
}

type dubaiRow struct {
	Base             baseRow  `mapstructure:",squash"`
	Community        relation `mapstructure:"community"`
	City             relation `mapstructure:"city"`
	CompletionStatus *string  `mapstructure:"completion_status"`
}

func (r *dubaiRow) toListing() models.Listing {
	l := r.Base.listing(models.MarketDubai)
	l.LocationLabel = r.Community.Name
	l.City = r.City.Name
	if l.City == "" {
		l.City = "Dubai"
	}
	l.Status = trimmedStatus(r.CompletionStatus)
	if l.PriceDisplay == "" {
		l.PriceDisplay = FormatAED(l.Price)
	}
	return l
}
