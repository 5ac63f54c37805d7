package models

// Known crop type names.
const (
	CropMaize     = "MAIS"
	CropSoy       = "SOJA"
	CropPineapple = "ANANAS"
)

// CropNames lists the crop types accepted by the schema.
var CropNames = []string{CropMaize, CropSoy, CropPineapple}

// CropType is reference data, unique by name.
type CropType struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var cropLabels = map[string]string{
	CropMaize:     "Maïs",
	CropSoy:       "Soja",
	CropPineapple: "Ananas",
}

// IsKnownCrop reports whether name is one of CropNames.
func IsKnownCrop(name string) bool {
	_, ok := cropLabels[name]
	return ok
}

// CropLabel returns the display label for a crop name, or the name itself
// when it is not a known crop.
func CropLabel(name string) string {
	if label, ok := cropLabels[name]; ok {
		return label
	}
	return name
}
