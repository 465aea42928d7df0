package models

import "time"

// CategoryRef is the category a product points to.
type CategoryRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Product represents a catalog item.
// Rating is the mean of all review ratings and NumReviews their count.
type Product struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Brand        string       `json:"brand"`
	Price        float64      `json:"price"`
	Description  string       `json:"description"`
	Category     *CategoryRef `json:"category"`
	Rating       float64      `json:"rating"`
	NumReviews   int          `json:"numReviews"`
	CountInStock int          `json:"countInStock"`
	Image        string       `json:"image"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`

	Reviews []Review `json:"reviews,omitempty"`
}

// CategoryName returns the name of the product's category, or "" when unset.
func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// Category is a product grouping. Names are unique.
type Category struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Review is a single user's rating of a product. A user reviews a product at most once.
type Review struct {
	ID        int       `db:"id" json:"id"`
	ProductID int       `db:"product_id" json:"productId"`
	UserID    int       `db:"user_id" json:"user"`
	Name      string    `db:"name" json:"name"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
