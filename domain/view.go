package domain

// View names a navigable screen of the presentation layer.
type View string

const (
	ViewNone         View = ""
	ViewLoading      View = "loading"
	ViewLanding      View = "landing"
	ViewSignIn       View = "sign-in"
	ViewSignUp       View = "sign-up"
	ViewConfirmation View = "sign-up-confirmation"
	ViewDashboard    View = "dashboard"
)
