package entities

import "slices"

type Role string

const (
	RoleCustomer Role = "customer"
	RolePro      Role = "pro"
	RoleSupplier Role = "supplier"
	RoleStaff    Role = "staff"
)

// Profile is the contact and eligibility data of a marketplace user.
//
// Storage model (DynamoDB):
//   - PK: id
type Profile struct {
	ID          string   `json:"id"`
	Role        Role     `json:"role"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	CategoryIDs []string `json:"category_ids,omitempty"`
	ZipCodes    []string `json:"zip_codes,omitempty"`
	Active      bool     `json:"active"`
}

// Serves reports whether an active professional covers the category and zip.
func (p Profile) Serves(categoryID, zip string) bool {
	if !p.Active || p.Role != RolePro {
		return false
	}
	return slices.Contains(p.CategoryIDs, categoryID) && slices.Contains(p.ZipCodes, zip)
}

// Actor is the authenticated caller as supplied by the identity middleware.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) Is(role Role) bool {
	return a.Role == role
}
