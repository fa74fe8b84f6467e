package domain

// TripProgress is the discrete classification of a vehicle's advancement
// along its route.
type TripProgress string

const (
	// TripProgressUnknown is reported when there is no route or no usable position.
	TripProgressUnknown TripProgress = ""

	NotStarted         TripProgress = "NOT_STARTED"
	JustStarted        TripProgress = "JUST_STARTED"
	EnRoute            TripProgress = "EN_ROUTE"
	ReachedDestination TripProgress = "REACHED_DESTINATION"
)

// ProgressResult pairs a trip progress with the stop the vehicle is heading to.
// An empty UpcomingStop means there is none.
type ProgressResult struct {
	TripProgress TripProgress
	UpcomingStop string
}
