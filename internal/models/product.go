package models

// Product is the subset of the backend catalog record the cart needs.
type Product struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Price      Money    `json:"price"`
	Images     []string `json:"images"`
	Condition  string   `json:"condition,omitempty"`
	Location   string   `json:"location"`
	SellerID   string   `json:"sellerId"`
	SellerName string   `json:"sellerName"`
}

func (p *Product) CartCandidate() CartCandidate {
	var image string
	if len(p.Images) > 0 {
		image = p.Images[0]
	}

	return CartCandidate{
		ProductID:  p.ID,
		Title:      p.Title,
		Price:      p.Price,
		Image:      image,
		Condition:  p.Condition,
		Location:   p.Location,
		SellerID:   p.SellerID,
		SellerName: p.SellerName,
	}
}
