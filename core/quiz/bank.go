package quiz

// Difficulty levels
const (
	Easy   = "easy"
	Medium = "medium"
	Hard   = "hard"
)

// Subjects lists the quiz subjects in display order.
var Subjects = []string{"mathematics", "physics", "english", "science"}

var bank = map[string][]Question{
	"mathematics": {
		{Question: "What is 15 + 27?", Options: []string{"40", "42", "41", "43"}, Correct: "42", Points: 10, Difficulty: Easy},
		{Question: "Solve for x: 2x + 5 = 15", Options: []string{"x = 5", "x = 10", "x = 7", "x = 3"}, Correct: "x = 5", Points: 15, Difficulty: Medium},
		{
			Question: "What is the area of a circle with radius 7? (π ≈ 3.14)",
			Options:  []string{"153.86", "154.86", "152.86", "155.86"},
			Correct:  "153.86", Points: 20, Difficulty: Hard,
		},
		{Question: "What is the derivative of x²?", Options: []string{"2x", "x", "2", "x²"}, Correct: "2x", Points: 25, Difficulty: Hard},
		{Question: "What is 8 × 7?", Options: []string{"54", "56", "58", "52"}, Correct: "56", Points: 10, Difficulty: Easy},
	},
	"physics": {
		{Question: "What is the unit of force?", Options: []string{"Joule", "Newton", "Watt", "Pascal"}, Correct: "Newton", Points: 15, Difficulty: Medium},
		{
			Question: "What is the speed of light in vacuum?",
			Options:  []string{"3 × 10⁸ m/s", "3 × 10⁶ m/s", "3 × 10⁹ m/s", "3 × 10⁷ m/s"},
			Correct:  "3 × 10⁸ m/s", Points: 20, Difficulty: Hard,
		},
		{
			Question: "What is Newton's first law?",
			Options:  []string{"F = ma", "An object at rest stays at rest", "Every action has an equal reaction", "Energy cannot be created"},
			Correct:  "An object at rest stays at rest", Points: 15, Difficulty: Medium,
		},
		{
			Question: "What is the formula for kinetic energy?",
			Options:  []string{"KE = mv²", "KE = ½mv²", "KE = mgh", "KE = Fd"},
			Correct:  "KE = ½mv²", Points: 20, Difficulty: Hard,
		},
	},
	"english": {
		{Question: "What is the plural of 'child'?", Options: []string{"childs", "children", "childes", "child"}, Correct: "children", Points: 10, Difficulty: Easy},
		{
			Question: "Which is correct: 'I have went' or 'I have gone'?",
			Options:  []string{"I have went", "I have gone", "Both are correct", "Neither"},
			Correct:  "I have gone", Points: 15, Difficulty: Medium,
		},
		{
			Question: "What is a metaphor?",
			Options:  []string{"A comparison using 'like' or 'as'", "A direct comparison", "An exaggeration", "A sound effect"},
			Correct:  "A direct comparison", Points: 20, Difficulty: Hard,
		},
		{Question: "What is the past tense of 'run'?", Options: []string{"runned", "ran", "run", "running"}, Correct: "ran", Points: 10, Difficulty: Easy},
	},
	"science": {
		{Question: "What is the chemical symbol for gold?", Options: []string{"Go", "Gd", "Au", "Ag"}, Correct: "Au", Points: 15, Difficulty: Medium},
		{Question: "What is H₂O?", Options: []string{"Hydrogen peroxide", "Water", "Salt", "Sugar"}, Correct: "Water", Points: 10, Difficulty: Easy},
		{
			Question: "What is the process by which plants make food?",
			Options:  []string{"Respiration", "Photosynthesis", "Digestion", "Fermentation"},
			Correct:  "Photosynthesis", Points: 15, Difficulty: Medium,
		},
		{Question: "What is the atomic number of carbon?", Options: []string{"6", "12", "14", "8"}, Correct: "6", Points: 20, Difficulty: Hard},
	},
}

// Questions returns a copy of the questions of subject.
func Questions(subject string) []Question {
	qs := bank[subject]
	cp := make([]Question, len(qs))
	copy(cp, qs)
	return cp
}

// DifficultyColor returns the display color of a difficulty level.
func DifficultyColor(difficulty string) string {
	switch difficulty {
	case Easy:
		return "#28a745"
	case Medium:
		return "#ffc107"
	case Hard:
		return "#dc3545"
	default:
		return "#6c757d"
	}
}
