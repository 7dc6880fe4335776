package domain

// Mutation payloads carry the affected entities, a success flag and the
// human-readable rejection messages. A rejected mutation writes nothing.

type CustomerPayload struct {
	Customer *Customer `json:"customer"`
	Success  bool      `json:"success"`
	Errors   []string  `json:"errors"`
}

type BulkCustomersPayload struct {
	Customers []*Customer `json:"customers"`
	Success   bool        `json:"success"`
	Errors    []string    `json:"errors"`
}

type ProductPayload struct {
	Product *Product `json:"product"`
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}

type OrderPayload struct {
	Order   *Order   `json:"order"`
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}

type RestockPayload struct {
	UpdatedProducts []*Product `json:"updated_products"`
	Message         string     `json:"message"`
	Success         bool       `json:"success"`
}
