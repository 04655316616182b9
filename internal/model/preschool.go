package model

// PlaceholderName is used as the contact name when a contact block has no
// name element.
const PlaceholderName = "-"

// ContactEntry is one e-mail contact extracted from a contact block.
type ContactEntry struct {
	// Email is the address found in the block's mailto link. Always set.
	Email string `json:"email"`

	// Name is the contact's display name, PlaceholderName when absent.
	Name string `json:"name"`

	// Role is the contact's title (e.g. "Förskolechef"). Empty when absent.
	Role string `json:"role,omitempty"`
}

// Preschool aggregates a scraped service unit and its contacts.
// It is created once per successfully scraped detail page.
type Preschool struct {
	// Name is the service unit name.
	Name string `json:"name"`

	// Region is the district of the unit.
	Region string `json:"region"`

	// Link is the absolute URL of the detail page.
	Link string `json:"link"`

	// Emails holds the contacts in document order.
	Emails []ContactEntry `json:"emails"`
}

// CsvRow is one flattened output row keyed by Email.
// Region and Link are kept for the run archive; they are not part of the CSV.
type CsvRow struct {
	Email     string `json:"email"`
	Preschool string `json:"preschool"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Region    string `json:"region,omitempty"`
	Link      string `json:"link,omitempty"`
}

// Record returns the four CSV columns of the row in header order.
func (r CsvRow) Record() []string {
	return []string{r.Email, r.Preschool, r.Name, r.Role}
}

// HasName reports whether the contact carried a real name.
func (r CsvRow) HasName() bool {
	return r.Name != "" && r.Name != PlaceholderName
}
