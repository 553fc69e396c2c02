package models

// Actor is the authenticated caller, resolved once per request from a verified bearer token.
type Actor struct {
	ID        string
	Name      string
	Role      UserRole
	IP        string
	UserAgent string
}

// Citizen is an actor proven to hold the citizen role.
type Citizen struct{ Actor }

// Official is an actor proven to hold the government role.
type Official struct{ Actor }

// ActorFromUser builds an actor for u.
func ActorFromUser(u *User) Actor {
	return Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}

// AsCitizen narrows the actor to a citizen.
func (a Actor) AsCitizen() (Citizen, bool) {
	if a.Role != RoleCitizen || a.ID == "" {
		return Citizen{}, false
	}
	return Citizen{a}, true
}

// AsOfficial narrows the actor to a government official.
func (a Actor) AsOfficial() (Official, bool) {
	if a.Role != RoleGovernment || a.ID == "" {
		return Official{}, false
	}
	return Official{a}, true
}
