package campaign

import "brandforge/internal/core"

// PlatformSpec describes the copy constraints and register for one social
// platform. These values feed prompt construction only; nothing enforces
// them after generation.
type PlatformSpec struct {
	MaxLength     int
	HashtagLimit  int
	Tone          string
	BestPractices []string
}

var platformSpecs = map[core.Platform]PlatformSpec{
	core.PlatformLinkedIn: {
		MaxLength:    3000,
		HashtagLimit: 5,
		Tone:         "Professional, thought-leadership focused",
		BestPractices: []string{
			"Start with a hook in the first line",
			"Use line breaks for readability",
			"Include a call-to-action",
			"Tag relevant people or companies when appropriate",
			"Pose questions to drive engagement",
		},
	},
	core.PlatformTwitter: {
		MaxLength:    280,
		HashtagLimit: 3,
		Tone:         "Concise, punchy, engaging",
		BestPractices: []string{
			"Front-load the key message",
			"Use numbers and data when possible",
			"Create urgency or curiosity",
			"Keep hashtags minimal and relevant",
			"Leave room for retweets with comments",
		},
	},
	core.PlatformInstagram: {
		MaxLength:    2200,
		HashtagLimit: 10,
		Tone:         "Visual-first, storytelling, authentic",
		BestPractices: []string{
			"Write captivating first line (preview text)",
			"Tell a story",
			"Use emojis strategically",
			"Include strong call-to-action",
			"Mix popular and niche hashtags",
		},
	},
	core.PlatformFacebook: {
		MaxLength:    63206,
		HashtagLimit: 5,
		Tone:         "Conversational, community-focused",
		BestPractices: []string{
			"Ask questions to spark conversation",
			"Share relatable content",
			"Use emotional hooks",
			"Include clear call-to-action",
			"Keep it authentic and personal",
		},
	},
}

var campaignTypeDescriptions = map[core.CampaignType]string{
	core.TypeProductLaunch:     "Announcing a new product, feature, or service with excitement and clear value proposition",
	core.TypeThoughtLeadership: "Establishing authority and sharing insights on industry trends, challenges, or innovations",
	core.TypeEngagement:        "Starting conversations, asking questions, and building community interaction",
	core.TypeBrandAwareness:    "Introducing the brand, sharing company culture, values, and building brand recognition",
}

var seasonalThemes = map[string]string{
	"Spring": "New beginnings, growth, renewal, fresh starts",
	"Summer": "Peak activity, vacations, high energy",
	"Fall":   "Back to business, preparation, new academic year",
	"Winter": "Holidays, year-end planning, new year goals",
}

// SpecFor returns the prompt constraints for a platform.
func SpecFor(platform core.Platform) PlatformSpec {
	return platformSpecs[platform]
}
