package domain

import "time"

// Listing is a resident-created product or service offer.
type Listing struct {
	ID            string
	Title         string
	Description   string
	Price         float64
	Category      string // Repository category value, e.g. "Alimentos"
	Type          string // Repository type value, e.g. "Produto"
	Status        Status
	CondominiumID string
	SellerID      string
	CreatedAt     time.Time
}

// enumEntry pairs the id used by the UI and links with the value the
// repository stores.
type enumEntry struct {
	id    string
	value string
}

func lookupByID(entries []enumEntry, id string) (int, bool) {
	if id == "" {
		return 0, false
	}
	for i, e := range entries {
		if e.id == id {
			return i, true
		}
	}
	return 0, false
}

func lookupByValue(entries []enumEntry, value string) (int, bool) {
	if value == "" {
		return 0, false
	}
	for i, e := range entries {
		if e.value == value {
			return i, true
		}
	}
	return 0, false
}

// Category is a listing category. CategoryNone means "no category filter".
type Category int

const (
	CategoryNone Category = iota
	CategoryFood
	CategoryServices
	CategoryElectronics
	CategoryFurniture
	CategoryClothing
	CategoryOther
	categoryCount
)

var categoryTable = [...]enumEntry{
	CategoryNone:        {"", ""},
	CategoryFood:        {"alimentos", "Alimentos"},
	CategoryServices:    {"servicos", "Serviços"},
	CategoryElectronics: {"eletronicos", "Eletrônicos"},
	CategoryFurniture:   {"moveis", "Móveis"},
	CategoryClothing:    {"vestuario", "Vestuário"},
	CategoryOther:       {"outros", "Outros"},
}

// Fails to compile when a category is added without a table entry.
var _ = [1]struct{}{}[len(categoryTable)-int(categoryCount)]

// ParseCategory resolves a UI category id. Unknown ids report false.
func ParseCategory(id string) (Category, bool) {
	i, ok := lookupByID(categoryTable[:], id)
	return Category(i), ok
}

// CategoryFromValue resolves a repository category value.
func CategoryFromValue(value string) (Category, bool) {
	i, ok := lookupByValue(categoryTable[:], value)
	return Category(i), ok
}

func (c Category) ID() string {
	if c < 0 || c >= categoryCount {
		return ""
	}
	return categoryTable[c].id
}

func (c Category) Value() string {
	if c < 0 || c >= categoryCount {
		return ""
	}
	return categoryTable[c].value
}

// Categories returns every selectable category in display order.
func Categories() []Category {
	out := make([]Category, 0, categoryCount-1)
	for c := CategoryNone + 1; c < categoryCount; c++ {
		out = append(out, c)
	}
	return out
}

// ListingType distinguishes products from services. TypeNone means unfiltered.
type ListingType int

const (
	TypeNone ListingType = iota
	TypeProduct
	TypeService
	typeCount
)

var typeTable = [...]enumEntry{
	TypeNone:    {"", ""},
	TypeProduct: {"produto", "Produto"},
	TypeService: {"servico", "Serviço"},
}

var _ = [1]struct{}{}[len(typeTable)-int(typeCount)]

// ParseListingType resolves a UI type id.
func ParseListingType(id string) (ListingType, bool) {
	i, ok := lookupByID(typeTable[:], id)
	return ListingType(i), ok
}

// ListingTypeFromValue resolves a repository type value.
func ListingTypeFromValue(value string) (ListingType, bool) {
	i, ok := lookupByValue(typeTable[:], value)
	return ListingType(i), ok
}

func (t ListingType) ID() string {
	if t < 0 || t >= typeCount {
		return ""
	}
	return typeTable[t].id
}

func (t ListingType) Value() string {
	if t < 0 || t >= typeCount {
		return ""
	}
	return typeTable[t].value
}

// ListingTypes returns every selectable type in display order.
func ListingTypes() []ListingType {
	return []ListingType{TypeProduct, TypeService}
}

// Status is the repository-side listing status. The empty Status means
// "any status".
type Status string

const (
	StatusActive   Status = "active"
	StatusReserved Status = "reserved"
	StatusSold     Status = "sold"
)

// statusLabels maps the labels shown to residents to repository statuses.
var statusLabels = [...]enumEntry{
	{"available", string(StatusActive)},
	{"reserved", string(StatusReserved)},
	{"sold", string(StatusSold)},
}

// ParseStatusLabel resolves a UI status label.
func ParseStatusLabel(label string) (Status, bool) {
	i, ok := lookupByID(statusLabels[:], label)
	if !ok {
		return "", false
	}
	return Status(statusLabels[i].value), true
}

// Label returns the UI label for s, or "" when s is not a known status.
func (s Status) Label() string {
	i, ok := lookupByValue(statusLabels[:], string(s))
	if !ok {
		return ""
	}
	return statusLabels[i].id
}

// StatusLabels returns the selectable status labels in display order.
func StatusLabels() []string {
	out := make([]string, len(statusLabels))
	for i, e := range statusLabels {
		out[i] = e.id
	}
	return out
}
