package models

// Era names.
const (
	EraPrequel  = "Prequel Era"
	EraOriginal = "Original Trilogy"
	EraSequel   = "Sequel Era"
	EraUnknown  = "Unknown"
)

// Era maps an episode number to its trilogy.
func Era(episode int) string {
	switch {
	case episode >= 1 && episode <= 3:
		return EraPrequel
	case episode >= 4 && episode <= 6:
		return EraOriginal
	case episode >= 7 && episode <= 9:
		return EraSequel
	default:
		return EraUnknown
	}
}

// EraInfo describes one era of the saga.
type EraInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Episodes    []int    `json:"episodes"`
	KeyEvents   []string `json:"key_events"`
	Note        string   `json:"note,omitempty"`
}

// Eras returns the fixed era list in story order.
func Eras() []EraInfo {
	return []EraInfo{
		{
			Name:        "Prequel Era",
			Description: "The rise and fall of the Galactic Republic",
			Episodes:    []int{1, 2, 3},
			KeyEvents: []string{
				"Discovery of Anakin Skywalker",
				"The Clone Wars",
				"Fall of the Republic",
				"Birth of Luke and Leia",
			},
		},
		{
			Name:        "Original Trilogy Era",
			Description: "The Rebellion against the Galactic Empire",
			Episodes:    []int{4, 5, 6},
			KeyEvents: []string{
				"Destruction of Alderaan",
				"Battle of Yavin (Death Star I)",
				"The \"I am your father\" revelation",
				"Battle of Endor (Death Star II)",
				"Redemption of Darth Vader",
			},
		},
		{
			Name:        "Sequel Era",
			Description: "The Resistance against the First Order",
			Episodes:    []int{7, 8, 9},
			KeyEvents: []string{
				"Rey's awakening",
				"Destruction of Starkiller Base",
				"Return of Palpatine",
			},
			Note: "Episodes 7-9 are not available upstream",
		},
	}
}
