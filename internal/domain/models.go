package domain

// Role is the authorization class of a user. Closed set; parse with ParseRole
// instead of comparing raw form values.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), true
	}
	return "", false
}

type User struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Age  int    `db:"age"`
	// Stored and compared verbatim. The lab contract is explicit about this.
	Password string `db:"password"`
	Token    string `db:"token"`
	Role     Role   `db:"role"`
}

type Product struct {
	ID    int64  `db:"id"`
	Name  string `db:"name"`
	Price int64  `db:"price"`
}

// Order is schema-only: every backend creates storage for it, no route or
// service reads or writes one.
type Order struct {
	ID        int64 `db:"id"`
	UserID    int64 `db:"user_id"`
	ProductID int64 `db:"product_id"`
	Quantity  int   `db:"quantity"`
}
