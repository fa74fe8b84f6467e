package ports

// Contract for the client's network reachability.
type Connectivity interface {
	Online() bool
	// Watch delivers every online/offline change until the returned cancel is called.
	Watch() (<-chan bool, func())
}
