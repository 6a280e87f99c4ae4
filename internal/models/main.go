// Package models defines the core data structures for users and the
// request payloads that create or modify them.
package models

// User represents a single user record of the persisted collection.
type User struct {
	// ID is the unique identifier assigned on creation.
	ID int `json:"id"`
	// Firstname is the user's first name.
	Firstname string `json:"firstname"`
	// Secondname is the user's family name.
	Secondname string `json:"secondname"`
	// Age is the user's age in years.
	Age float64 `json:"age"`
	// City is where the user lives. Optional.
	City string `json:"city,omitempty"`
}

// Collection is the full ordered list of users as persisted.
type Collection []User

// Find returns a pointer into c for the user with the given id, or nil.
func (c Collection) Find(id int) *User {
	if i := c.Index(id); i >= 0 {
		return &c[i]
	}
	return nil
}

// Index returns the position of the user with the given id, or -1.
func (c Collection) Index(id int) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// NextID returns the id a newly created user receives: one more than the
// largest id in c, or 1 when c is empty.
func (c Collection) NextID() int {
	maxID := 0
	for _, u := range c {
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	return maxID + 1
}

// CreateUserRequest is the JSON payload for POST /users.
// Every field is optional and none is validated.
type CreateUserRequest struct {
	Firstname  string  `json:"firstname"`
	Secondname string  `json:"secondname"`
	Age        float64 `json:"age"`
	City       string  `json:"city"`
}

// UpdateUserRequest is the JSON payload for PUT /users/{id}.
// Fields are pointers so that an absent field and an empty value are
// reported differently.
type UpdateUserRequest struct {
	Firstname  *string  `json:"firstname" validate:"required,min=3"`
	Secondname *string  `json:"secondname" validate:"required,min=3"`
	Age        *float64 `json:"age" validate:"required,min=18"`
	City       *string  `json:"city" validate:"omitnil,min=3"`
}
