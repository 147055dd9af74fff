package storefront

// AuthState is derived from the stored session record.
type AuthState string

const (
	StateAnonymous AuthState = "anonymous"
	StateBuyer     AuthState = "buyer"
	StateAdmin     AuthState = "admin"
)

// View is the screen the storefront should render next.
type View string

const (
	ViewCatalog      View = "catalog"
	ViewLogin        View = "login"
	ViewCart         View = "cart"
	ViewConfirmation View = "confirmation"
	ViewAdmin        View = "admin"
)
