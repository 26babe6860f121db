package domain

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

type StorageLocation string

const (
	LocationFridge  StorageLocation = "fridge"
	LocationFreezer StorageLocation = "freezer"
	LocationPantry  StorageLocation = "pantry"
)

type Unit string

const (
	UnitPieces Unit = "pcs"
	UnitKilo   Unit = "kg"
	UnitGram   Unit = "g"
	UnitLiter  Unit = "L"
	UnitMilli  Unit = "ml"
	UnitPack   Unit = "pack"
	UnitBox    Unit = "box"
	UnitCup    Unit = "cup"
	UnitBottle Unit = "bottle"
	UnitCan    Unit = "can"
	UnitTray   Unit = "tray"
	UnitJar    Unit = "jar"
	UnitBunch  Unit = "bunch"
)

type ReferenceType string

const (
	ReferencePurchase ReferenceType = "purchase"
	ReferenceOpen     ReferenceType = "open"
)

type EstimateSource string

const (
	SourceRule     EstimateSource = "rule"
	SourceModel    EstimateSource = "model"
	SourceFallback EstimateSource = "fallback"
)

// Label is the name clients see; model estimates are reported as "ai".
func (s EstimateSource) Label() string {
	if s == SourceModel {
		return "ai"
	}
	return string(s)
}

type ScanMode string

const (
	ModeReceipt ScanMode = "receipt"
	ModeFridge  ScanMode = "fridge"
	ModeText    ScanMode = "text"
)

// InventoryCandidate is one extracted row before normalization. Pointer
// fields are nil when the model omitted them or they failed coercion.
type InventoryCandidate struct {
	Name               string
	GenericName        string
	Quantity           *float64
	Unit               string
	StorageLocationRaw string
	ShelfLifeDaysRaw   *int
	BestBeforeDate     *time.Time
	Category           string
	Confidence         *float64
}

type InventoryItem struct {
	Name            string          `json:"name"`
	GenericName     string          `json:"genericName,omitempty"`
	Quantity        float64         `json:"quantity"`
	Unit            Unit            `json:"unit"`
	StorageLocation StorageLocation `json:"storageLocation"`
	ShelfLifeDays   int             `json:"shelfLifeDays"`
	ReferenceDate   CalendarDate    `json:"referenceDate"`
	ReferenceType   ReferenceType   `json:"referenceType"`
	PredictedExpiry CalendarDate    `json:"predictedExpiry"`
	Category        string          `json:"category"`
	Confidence      float64         `json:"confidence"`
	Source          EstimateSource  `json:"source"`

	// NormalizedName is the dedup key component derived from Name.
	NormalizedName string `json:"-"`
}

type BatchResult struct {
	PurchaseDate CalendarDate    `json:"purchaseDate"`
	Items        []InventoryItem `json:"items"`
}

type ImageInput struct {
	Base64   string
	MimeType string
	URL      string
}

type ScanRequest struct {
	Mode      ScanMode
	Images    []ImageInput
	Text      string
	PDFBase64 string
}

type ExpiryRequest struct {
	Name           string
	GenericName    string
	Location       string
	PurchasedDate  string
	OpenDate       string
	BestBeforeDate string
}

type ExpiryEstimate struct {
	PredictedExpiry time.Time
	Days            int
	ReferenceDate   time.Time
	ReferenceType   ReferenceType
	Source          EstimateSource
}

// CachedEstimate is a model day count remembered for a normalized query.
type CachedEstimate struct {
	Query     string
	Days      int
	UpdatedAt time.Time
}

// CalendarDate marshals as YYYY-MM-DD.
type CalendarDate struct {
	time.Time
}

func NewCalendarDate(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d CalendarDate) String() string {
	return d.Format(DateLayout)
}

func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" || raw == `""` {
		d.Time = time.Time{}
		return nil
	}
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return WrapError(ErrInvalidInput, "calendar date", errInvalidDateLiteral)
	}
	parsed, err := time.Parse(DateLayout, raw[1:len(raw)-1])
	if err != nil {
		return WrapError(ErrInvalidInput, "calendar date", err)
	}
	d.Time = parsed
	return nil
}
