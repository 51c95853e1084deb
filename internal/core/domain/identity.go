package domain

// Identity is the verified principal attached to a request after its token
// has been checked. It is a value: stages copy it, never mutate it.
type Identity struct {
	SubjectID string `json:"subjectId"`
	Role      string `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

func (i Identity) IsZero() bool {
	return i.SubjectID == ""
}
