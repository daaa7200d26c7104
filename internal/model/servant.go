package model

// Servant is a roster entry from the servant catalog.
type Servant struct {
	Name        string `json:"name"`
	JPName      string `json:"jp_name,omitempty"`
	Aliases     string `json:"aliases,omitempty"`
	VoiceActor  string `json:"voice_actor,omitempty"`
	Illustrator string `json:"illustrator,omitempty"`
	ClassType   string `json:"class_type,omitempty"`
	Attribute   string `json:"attribute,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Alignment   string `json:"alignment,omitempty"`
	Traits      string `json:"traits,omitempty"`
	ID          int    `json:"id"`
	Rarity      int    `json:"rarity"`
}

// Ref returns the identity/name pair used inside rateup sets.
func (s Servant) Ref() Rateup {
	return Rateup{ID: s.ID, Name: s.Name}
}
