package domain

// AllCategoryID is the reserved filter id that matches every item. It never
// corresponds to a server category.
const AllCategoryID = -1

// AllCategoryName is the display name of the sentinel filter entry.
const AllCategoryName = "<all>"

// CategoryRef is a named grouping an item belongs to.
type CategoryRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AllCategory returns the sentinel "show all" entry.
func AllCategory() CategoryRef {
	return CategoryRef{ID: AllCategoryID, Name: AllCategoryName}
}

// Item is a gallery work as served by the remote API.
type Item struct {
	ID            int         `json:"id"`
	Title         string      `json:"title"`
	ImageLocation string      `json:"imageUrl"`
	CategoryID    int         `json:"categoryId"`
	OwnerID       int         `json:"userId"`
	Category      CategoryRef `json:"category"`
}

// NewWork is the payload of an item creation.
type NewWork struct {
	Title      string
	CategoryID int
	Image      []byte
	MimeType   string
	Filename   string
}

// Credential identifies an authenticated session.
type Credential struct {
	SubjectID int    `json:"userId"`
	Token     string `json:"token"`
}
