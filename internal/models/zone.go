package models

// Commune is the top level of the administrative hierarchy.
type Commune struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	DistrictCount int    `json:"districtCount"`
}

// District (arrondissement) belongs to exactly one commune.
// (Name, CommuneID) is unique.
type District struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	CommuneID     int64  `json:"communeId"`
	CommuneName   string `json:"communeName"`
	ProducerCount int    `json:"producerCount"`
	ParcelCount   int    `json:"parcelCount"`
}

// Label renders the district the way it is displayed in listings.
func (d District) Label() string {
	if d.CommuneName == "" {
		return d.Name
	}
	return d.Name + " (" + d.CommuneName + ")"
}
