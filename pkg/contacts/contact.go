package contacts

// Contact is a contact record as returned by the API.
type Contact struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Surname     string  `json:"surname"`
	Nickname    string  `json:"nickname"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Company     string  `json:"company"`
	Education   string  `json:"education"`
	DateOfBirth *string `json:"dateOfBirth"`
	Address     string  `json:"address"`
	User        string  `json:"user"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
	Version     int     `json:"__v"`
}

// NewContact is the create payload. DateOfBirth is sent as null when unset.
type NewContact struct {
	Name        string  `json:"name" yaml:"name"`
	Surname     string  `json:"surname" yaml:"surname"`
	Nickname    string  `json:"nickname" yaml:"nickname"`
	Phone       string  `json:"phone" yaml:"phone"`
	Email       string  `json:"email" yaml:"email"`
	Company     string  `json:"company" yaml:"company"`
	Education   string  `json:"education" yaml:"education"`
	DateOfBirth *string `json:"dateOfBirth" yaml:"dateOfBirth"`
	Address     string  `json:"address" yaml:"address"`
}

// Patch is a partial update; nil fields are left out of the request body.
type Patch struct {
	Name        *string `json:"name,omitempty"`
	Surname     *string `json:"surname,omitempty"`
	Nickname    *string `json:"nickname,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	Company     *string `json:"company,omitempty"`
	Education   *string `json:"education,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Address     *string `json:"address,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}
