package domain

type UserRole string

const (
	UserRoleCustomer UserRole = "CUSTOMER"
	UserRoleRunner   UserRole = "RUNNER"
	UserRoleAdmin    UserRole = "ADMIN"
)

type User struct {
	ID          int32    `json:"id"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phone_number"`
	Name        string   `json:"name"`
	Role        UserRole `json:"role"`
	Active      bool     `json:"active"`
	CreatedOn   string   `json:"created_on"`
	UpdatedOn   string   `json:"updated_on"`
}
