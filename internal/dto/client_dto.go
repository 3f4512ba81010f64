package dto

// ClientFilter is bound from the query string of GET /v1/clients.
type ClientFilter struct {
	Search    string `form:"search"` // matches name or documento
	Documento string `form:"documento"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateClientRequest struct {
	Name      string  `json:"name" validate:"required"`
	Documento *string `json:"documento"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Address   *string `json:"address"`
	District  *string `json:"district"`
	City      *string `json:"city"`
}

type UpdateClientRequest struct {
	Name      *string `json:"name"`
	Documento *string `json:"documento"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Address   *string `json:"address"`
	District  *string `json:"district"`
	City      *string `json:"city"`
}

type ClientResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Documento *string `json:"documento,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	Address   *string `json:"address,omitempty"`
	District  *string `json:"district,omitempty"`
	City      *string `json:"city,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type ClientListResponse struct {
	Data  []ClientResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
