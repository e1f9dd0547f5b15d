package assessment

import (
	"fmt"
	"strings"
)

const unknownTypeDescription = "Unique personality type"

var typeDescriptions = map[string]string{
	"INTJ": "The Architect - Strategic and independent thinker",
	"INTP": "The Thinker - Innovative and curious problem-solver",
	"ENTJ": "The Commander - Bold and imaginative leader",
	"ENTP": "The Debater - Smart and curious innovator",
	"INFJ": "The Advocate - Creative and insightful idealist",
	"INFP": "The Mediator - Poetic and kind altruist",
	"ENFJ": "The Protagonist - Charismatic and inspiring leader",
	"ENFP": "The Campaigner - Enthusiastic and creative free spirit",
	"ISTJ": "The Logistician - Practical and fact-minded reliable person",
	"ISFJ": "The Protector - Warm-hearted and dedicated protector",
	"ESTJ": "The Executive - Excellent administrator and natural leader",
	"ESFJ": "The Consul - Extraordinarily caring and popular person",
	"ISTP": "The Virtuoso - Bold and practical experimenter",
	"ISFP": "The Adventurer - Flexible and charming artist",
	"ESTP": "The Entrepreneur - Smart and energetic perceiver",
	"ESFP": "The Entertainer - Spontaneous and enthusiastic performer",
}

// DescribeType returns the one-line label for a type code.
func DescribeType(code string) string {
	if d, ok := typeDescriptions[code]; ok {
		return d
	}
	return unknownTypeDescription
}

type StyleProfile struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Characteristics []string `json:"characteristics"`
}

var styleProfiles = map[Style]StyleProfile{
	StyleCompeting: {
		Title:           "Competing (Assertive & Uncooperative)",
		Description:     "You pursue your own concerns at the other person's expense. This is a power-oriented mode where you use whatever power seems appropriate to win your position.",
		Characteristics: []string{"Firm in pursuing goals", "Uses authority when necessary", "Stands up for rights", "Defends positions believed to be correct"},
	},
	StyleAccommodating: {
		Title:           "Accommodating (Unassertive & Cooperative)",
		Description:     "You neglect your own concerns to satisfy the concerns of the other person. This mode involves self-sacrifice and yielding to another's point of view.",
		Characteristics: []string{"Puts others' needs first", "Maintains relationships", "Shows generosity", "Yields to others' wishes"},
	},
	StyleAvoiding: {
		Title:           "Avoiding (Unassertive & Uncooperative)",
		Description:     "You neither pursue your own concerns nor those of the other person. You don't immediately address the conflict, instead diplomatically sidestepping or postponing.",
		Characteristics: []string{"Sidesteps issues", "Postpones decisions", "Withdraws from threatening situations", "Delegates controversial decisions"},
	},
	StyleCollaborating: {
		Title:           "Collaborating (Assertive & Cooperative)",
		Description:     "You attempt to work with others to find solutions that fully satisfy the concerns of both parties. This involves digging into an issue to pinpoint underlying needs.",
		Characteristics: []string{"Explores disagreements", "Learns from others", "Finds creative solutions", "Merges insights from different perspectives"},
	},
	StyleCompromising: {
		Title:           "Compromising (Moderate Assertiveness & Cooperation)",
		Description:     "You find mutually acceptable solutions that partially satisfy both parties. This mode involves splitting the difference, exchanging concessions, or seeking quick middle-ground.",
		Characteristics: []string{"Finds middle ground", "Makes concessions", "Seeks fair solutions", "Exchanges favors"},
	},
}

func DescribeStyle(style Style) (StyleProfile, bool) {
	p, ok := styleProfiles[style]
	return p, ok
}

// KnowledgeDocuments renders every type description and style profile as a
// standalone passage for the assistant's retrieval index.
func KnowledgeDocuments() []string {
	docs := make([]string, 0, len(typeDescriptions)+len(styleProfiles))
	for _, axisA := range []string{"E", "I"} {
		for _, axisB := range []string{"S", "N"} {
			for _, axisC := range []string{"T", "F"} {
				for _, axisD := range []string{"J", "P"} {
					code := axisA + axisB + axisC + axisD
					docs = append(docs, fmt.Sprintf("Personality type %s: %s.", code, DescribeType(code)))
				}
			}
		}
	}
	for _, style := range Styles {
		p := styleProfiles[style]
		docs = append(docs, fmt.Sprintf("Conflict style %s - %s. %s Key characteristics: %s.",
			style, p.Title, p.Description, strings.Join(p.Characteristics, ", ")))
	}
	return docs
}
