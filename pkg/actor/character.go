package actor

import "fmt"

// Character is a narrative entity the host lets respond in a conversation.
type Character struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Personality string `json:"personality,omitempty" yaml:"personality,omitempty"`
}

// User is a human participant in a conversation.
type User struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	ChatProfile string `json:"chat_profile,omitempty" yaml:"chat_profile,omitempty"`
}

// Details returns the descriptive text used when prompting about the character.
func (c *Character) Details() string {
	switch {
	case c.Description == "":
		return c.Personality
	case c.Personality == "":
		return c.Description
	}
	return c.Description + " " + c.Personality
}

func (c *Character) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("character id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("character %q: name is required", c.ID)
	}
	return nil
}

func (u *User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user id is required")
	}
	if u.Name == "" {
		return fmt.Errorf("user %q: name is required", u.ID)
	}
	return nil
}
