package checklist

import "time"

// ClientProfile is a read-only summary of the client a checklist belongs to.
// It is owned by the CRM side; the engine never mutates it.
type ClientProfile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	BusinessType string `json:"business_type,omitempty"`
	Industry     string `json:"industry,omitempty"`
	CompanySize  string `json:"company_size,omitempty"`
}

// Checklist is an ordered collection of audit items for one client engagement.
// Items are unique by ID; order is the authoring order and is preserved by
// all read paths.
type Checklist struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Items         []Item         `json:"items"`
	ClientProfile *ClientProfile `json:"client_profile,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Item returns the item with the given ID.
// Returns ErrNotFound if no item matches.
func (c *Checklist) Item(id string) (Item, error) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, ErrNotFound
}
