package seed

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/agricoop/api/internal/models"
)

// ErrInvalidData is returned by Data.Validate.
var ErrInvalidData = errors.New("invalid seed data")

type Commune struct {
	Name string
	Code string
}

type District struct {
	Name        string
	Code        string
	CommuneCode string
}

type CropType struct {
	Name        string
	Description string
}

// Account is a login created by the seed. Password is stored hashed.
type Account struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
}

type Producer struct {
	Account
	Phone    string
	District string
}

type Parcel struct {
	Producer string
	Name     string
	District string
	Area     decimal.Decimal
	Lat      *float64
	Lng      *float64
}

type Warehouse struct {
	Name           string
	District       string
	Capacity       decimal.Decimal
	AlertThreshold decimal.Decimal
	Manager        string
}

type Stock struct {
	Warehouse string
	Crop      string
	Quantity  decimal.Decimal
}

type Harvest struct {
	Parcel   string
	Crop     string
	Quantity decimal.Decimal
	Date     time.Time
}

// Data is a complete data set. Items refer to each other by natural key.
type Data struct {
	Communes   []Commune
	Districts  []District
	CropTypes  []CropType
	Producers  []Producer
	Managers   []Account
	Parcels    []Parcel
	Warehouses []Warehouse
	Stock      []Stock
	Harvests   []Harvest
}

// Validate checks the value constraints the schema enforces so a bad data
// set fails before anything is written.
func (d Data) Validate() error {
	for _, c := range d.CropTypes {
		if !models.IsKnownCrop(c.Name) {
			return fmt.Errorf("%w: unknown crop type %q", ErrInvalidData, c.Name)
		}
	}
	for _, p := range d.Parcels {
		if p.Area.LessThan(models.MinParcelArea) {
			return fmt.Errorf("%w: parcel %q area %s below %s", ErrInvalidData, p.Name, p.Area, models.MinParcelArea)
		}
	}
	for _, w := range d.Warehouses {
		if w.Capacity.IsNegative() || w.AlertThreshold.IsNegative() {
			return fmt.Errorf("%w: warehouse %q has a negative capacity or threshold", ErrInvalidData, w.Name)
		}
	}
	for _, s := range d.Stock {
		if s.Quantity.IsNegative() {
			return fmt.Errorf("%w: negative stock for %q/%s", ErrInvalidData, s.Warehouse, s.Crop)
		}
	}
	for _, h := range d.Harvests {
		if h.Quantity.IsNegative() {
			return fmt.Errorf("%w: negative harvest on %q", ErrInvalidData, h.Parcel)
		}
	}
	return nil
}

func kg(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func ha(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func coord(v float64) *float64 { return &v }

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

const (
	producerPassword = "producteur123"
	managerPassword  = "gestionnaire123"
)

func producer(first, last, username, phone, district string) Producer {
	return Producer{
		Account: Account{
			Username:  username,
			Password:  producerPassword,
			FirstName: first,
			LastName:  last,
			Email:     username + "@agritech.bj",
		},
		Phone:    phone,
		District: district,
	}
}

// DefaultData is the cooperative's reference data set: the communes and
// districts it operates in, the three crop types, five producers with their
// parcels, one manager and three warehouses with opening stock.
func DefaultData() Data {
	return Data{
		Communes: []Commune{
			{Name: "Cotonou", Code: "COT"},
			{Name: "Porto-Novo", Code: "PN"},
			{Name: "Parakou", Code: "PAR"},
			{Name: "Abomey-Calavi", Code: "AC"},
			{Name: "Djougou", Code: "DJO"},
		},
		Districts: []District{
			{Name: "Akpakpa", Code: "AKP", CommuneCode: "COT"},
			{Name: "Cadjehoun", Code: "CAD", CommuneCode: "COT"},
			{Name: "Godomey", Code: "GOD", CommuneCode: "AC"},
			{Name: "Vedoko", Code: "VED", CommuneCode: "PN"},
			{Name: "Ouando", Code: "OUA", CommuneCode: "PN"},
			{Name: "Banikanni", Code: "BAN", CommuneCode: "PAR"},
		},
		CropTypes: []CropType{
			{Name: models.CropMaize, Description: "Culture principale de maïs"},
			{Name: models.CropSoy, Description: "Culture de soja riche en protéines"},
			{Name: models.CropPineapple, Description: "Culture d'ananas pour l'export"},
		},
		Producers: []Producer{
			producer("Jean", "Kouassi", "jkouassi", "97123456", "Akpakpa"),
			producer("Marie", "Dossou", "mdossou", "97234567", "Cadjehoun"),
			producer("Paul", "Agbodjan", "pagbodjan", "97345678", "Godomey"),
			producer("Esther", "Houngbo", "ehoungbo", "97456789", "Vedoko"),
			producer("Joseph", "Kpade", "jkpade", "97567890", "Banikanni"),
		},
		Managers: []Account{
			{
				Username:  "gestionnaire1",
				Password:  managerPassword,
				FirstName: "Sylvie",
				LastName:  "Mensah",
				Email:     "gestionnaire@agritech.bj",
			},
		},
		Parcels: []Parcel{
			{Producer: "jkouassi", Name: "Parcelle Nord", District: "Akpakpa", Area: ha("2.5"), Lat: coord(6.3703), Lng: coord(2.3912)},
			{Producer: "jkouassi", Name: "Parcelle Sud", District: "Akpakpa", Area: ha("1.8"), Lat: coord(6.3650), Lng: coord(2.3850)},
			{Producer: "mdossou", Name: "Champ Central", District: "Cadjehoun", Area: ha("3.2"), Lat: coord(6.3580), Lng: coord(2.4020)},
			{Producer: "pagbodjan", Name: "Grande Parcelle", District: "Godomey", Area: ha("4.5"), Lat: coord(6.4120), Lng: coord(2.3330)},
			{Producer: "ehoungbo", Name: "Terrain Est", District: "Vedoko", Area: ha("2.0"), Lat: coord(6.4970), Lng: coord(2.6290)},
			{Producer: "jkpade", Name: "Zone Agricole", District: "Banikanni", Area: ha("5.0"), Lat: coord(9.3370), Lng: coord(2.6300)},
		},
		Warehouses: []Warehouse{
			{Name: "Entrepôt Central Cotonou", District: "Akpakpa", Capacity: kg(15000), AlertThreshold: kg(3000), Manager: "gestionnaire1"},
			{Name: "Dépôt Porto-Novo", District: "Vedoko", Capacity: kg(10000), AlertThreshold: kg(2000), Manager: "gestionnaire1"},
			{Name: "Stockage Parakou", District: "Banikanni", Capacity: kg(12000), AlertThreshold: kg(2500), Manager: "gestionnaire1"},
		},
		Stock: []Stock{
			{Warehouse: "Entrepôt Central Cotonou", Crop: models.CropMaize, Quantity: kg(8500)},
			{Warehouse: "Entrepôt Central Cotonou", Crop: models.CropSoy, Quantity: kg(1800)},
			{Warehouse: "Entrepôt Central Cotonou", Crop: models.CropPineapple, Quantity: kg(4200)},
			{Warehouse: "Dépôt Porto-Novo", Crop: models.CropMaize, Quantity: kg(6000)},
			{Warehouse: "Dépôt Porto-Novo", Crop: models.CropSoy, Quantity: kg(3500)},
			{Warehouse: "Stockage Parakou", Crop: models.CropMaize, Quantity: kg(7500)},
			{Warehouse: "Stockage Parakou", Crop: models.CropPineapple, Quantity: kg(2800)},
		},
		Harvests: []Harvest{
			{Parcel: "Parcelle Nord", Crop: models.CropMaize, Quantity: kg(1200), Date: day(2024, time.March, 12)},
			{Parcel: "Parcelle Nord", Crop: models.CropSoy, Quantity: kg(640), Date: day(2024, time.May, 3)},
			{Parcel: "Parcelle Nord", Crop: models.CropMaize, Quantity: kg(980), Date: day(2024, time.July, 21)},
			{Parcel: "Parcelle Sud", Crop: models.CropPineapple, Quantity: kg(450), Date: day(2024, time.April, 8)},
			{Parcel: "Parcelle Sud", Crop: models.CropMaize, Quantity: kg(720), Date: day(2024, time.June, 17)},
			{Parcel: "Parcelle Sud", Crop: models.CropSoy, Quantity: kg(380), Date: day(2024, time.August, 2)},
			{Parcel: "Champ Central", Crop: models.CropSoy, Quantity: kg(1100), Date: day(2024, time.March, 28)},
			{Parcel: "Champ Central", Crop: models.CropMaize, Quantity: kg(1450), Date: day(2024, time.May, 19)},
			{Parcel: "Champ Central", Crop: models.CropPineapple, Quantity: kg(530), Date: day(2024, time.July, 9)},
			{Parcel: "Champ Central", Crop: models.CropSoy, Quantity: kg(870), Date: day(2024, time.August, 25)},
			{Parcel: "Grande Parcelle", Crop: models.CropMaize, Quantity: kg(1500), Date: day(2024, time.April, 14)},
			{Parcel: "Grande Parcelle", Crop: models.CropPineapple, Quantity: kg(1320), Date: day(2024, time.June, 1)},
			{Parcel: "Grande Parcelle", Crop: models.CropMaize, Quantity: kg(1180), Date: day(2024, time.August, 11)},
			{Parcel: "Terrain Est", Crop: models.CropSoy, Quantity: kg(560), Date: day(2024, time.March, 5)},
			{Parcel: "Terrain Est", Crop: models.CropMaize, Quantity: kg(890), Date: day(2024, time.May, 27)},
			{Parcel: "Terrain Est", Crop: models.CropPineapple, Quantity: kg(310), Date: day(2024, time.July, 30)},
			{Parcel: "Zone Agricole", Crop: models.CropMaize, Quantity: kg(1400), Date: day(2024, time.April, 22)},
			{Parcel: "Zone Agricole", Crop: models.CropSoy, Quantity: kg(760), Date: day(2024, time.June, 12)},
			{Parcel: "Zone Agricole", Crop: models.CropPineapple, Quantity: kg(1050), Date: day(2024, time.July, 16)},
			{Parcel: "Zone Agricole", Crop: models.CropMaize, Quantity: kg(1250), Date: day(2024, time.August, 29)},
		},
	}
}
