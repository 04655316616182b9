package model

// ServiceUnit is one facility record from the municipal registry.
// It is decoded verbatim from the JSON embedded in a listing page and is not
// modified afterwards.
type ServiceUnit struct {
	// ID is the registry identifier of the unit.
	ID int64 `json:"id"`

	// ServiceTypeID refers to a ServiceType listed on the same page.
	ServiceTypeID int64 `json:"serviceTypeId"`

	// LocationNorth and LocationEast are the unit's map coordinates
	// (SWEREF 99 as published by the directory).
	LocationNorth float64 `json:"locationNorth"`
	LocationEast  float64 `json:"locationEast"`

	// Name is the display name of the preschool.
	Name string `json:"name"`

	// ImagePath is the root-relative path of the unit's image.
	ImagePath string `json:"imagePath"`

	// Address is the street address.
	Address string `json:"address"`

	// Regions is the district name (e.g. "Söderort").
	Regions string `json:"regions"`

	// SelfLink is the root-relative link to the unit's detail page.
	SelfLink string `json:"selfLink"`
}

// ServiceType is a category of service unit (municipal, independent, ...).
type ServiceType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ListingData is the JSON object passed to the listing page's React app.
type ListingData struct {
	InitialData InitialData `json:"initialData"`
}

// InitialData holds the units and service types of one listing page.
type InitialData struct {
	ServiceUnits []ServiceUnit `json:"serviceUnits"`
	ServiceTypes []ServiceType `json:"serviceTypes"`
}

// ServiceTypeName returns the name of the service type with the given id,
// or an empty string if the page does not list it.
func (d *InitialData) ServiceTypeName(id int64) string {
	for _, st := range d.ServiceTypes {
		if st.ID == id {
			return st.Name
		}
	}
	return ""
}
