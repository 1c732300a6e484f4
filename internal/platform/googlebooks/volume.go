package googlebooks

// VolumesResponse matches GET /books/v1/volumes.
type VolumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// Volume is one raw search result. Optional scalars are pointers so that an
// absent field can be told apart from a zero value.
type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
	SaleInfo   *SaleInfo  `json:"saleInfo,omitempty"`
}

type VolumeInfo struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers"`
	PageCount           *int                 `json:"pageCount"`
	Categories          []string             `json:"categories"`
	AverageRating       *float64             `json:"averageRating"`
	RatingsCount        *int                 `json:"ratingsCount"`
	MaturityRating      string               `json:"maturityRating"`
	Language            string               `json:"language"`
	IsEbook             *bool                `json:"isEbook"`
	ImageLinks          *ImageLinks          `json:"imageLinks,omitempty"`
}

type IndustryIdentifier struct {
	Type       string `json:"type"` // ISBN_10, ISBN_13, OTHER
	Identifier string `json:"identifier"`
}

type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

type SaleInfo struct {
	Country     string `json:"country"`
	Saleability string `json:"saleability"` // FOR_SALE, FREE, NOT_FOR_SALE, ...
	IsEbook     *bool  `json:"isEbook"`
	BuyLink     string `json:"buyLink"`
	ListPrice   *Price `json:"listPrice,omitempty"`
	RetailPrice *Price `json:"retailPrice,omitempty"`
}

type Price struct {
	Amount       *float64 `json:"amount"`
	CurrencyCode string   `json:"currencyCode"`
}

// Ebook reports whether the volume is available as an eBook. The sale info
// flag wins over the volume info flag; absent everywhere means false.
func (v Volume) Ebook() bool {
	if v.SaleInfo != nil && v.SaleInfo.IsEbook != nil {
		return *v.SaleInfo.IsEbook
	}
	if v.VolumeInfo.IsEbook != nil {
		return *v.VolumeInfo.IsEbook
	}
	return false
}

// Saleability returns the sale status or "" when the volume has no sale info.
func (v Volume) Saleability() string {
	if v.SaleInfo == nil {
		return ""
	}
	return v.SaleInfo.Saleability
}
