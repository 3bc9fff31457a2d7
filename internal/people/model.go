// Package people implements the people service: person CRUD over Postgres
// with read-through caching and lifecycle event publishing.
package people

// CreatePersonInput is the request body for creating a person.
type CreatePersonInput struct {
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

// UpdatePersonInput is the request body for a partial update. Absent fields
// are left untouched; present fields must pass the same rules as on create.
type UpdatePersonInput struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

// Changes maps the supplied fields onto their column names. Only this fixed
// set of columns can ever appear in an UPDATE statement.
func (in UpdatePersonInput) Changes() map[string]any {
	changes := make(map[string]any)
	if in.FirstName != nil {
		changes["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		changes["last_name"] = *in.LastName
	}
	if in.Email != nil {
		changes["email"] = *in.Email
	}
	if in.Phone != nil {
		changes["phone"] = *in.Phone
	}
	if in.Address != nil {
		changes["address"] = *in.Address
	}
	return changes
}
