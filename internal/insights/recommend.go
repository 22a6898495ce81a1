package insights

var recommendations = map[string][]string{
	"sleep": {
		"Try to maintain a consistent bedtime routine",
		"Avoid screens 1 hour before bed",
		"Keep your bedroom cool and dark",
	},
	"heart_rate": {
		"Practice deep breathing exercises",
		"Consider meditation or yoga",
		"Monitor stress levels throughout the day",
	},
	"hydration": {
		"Set hourly water reminders",
		"Keep a water bottle nearby",
		"Eat water-rich foods like fruits",
	},
	"activity": {
		"Take short walks every 2 hours",
		"Use stairs instead of elevators",
		"Try 10-minute morning stretches",
	},
}

// recommendationsFor collects the actions for every insight that needs
// attention, keeping first-seen order without duplicates.
func recommendationsFor(list []Insight) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, in := range list {
		if !in.Severity.Attention() {
			continue
		}
		for _, r := range recommendations[in.Type] {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out
}

// PlaceholderMessage is returned when processing fails for a reason other than bad input.
const PlaceholderMessage = "Data processed successfully. Continue monitoring your health metrics."

// EmptyMessage is shown before anything has been uploaded.
const EmptyMessage = "Upload health data to get personalized insights"

// Placeholder is the neutral report used when analysis fails unexpectedly.
func Placeholder() Report {
	return Report{
		Insights:        []Insight{},
		Recommendations: []string{},
		Messages:        []string{PlaceholderMessage},
		HealthScore:     75,
		Fallback:        true,
	}
}

// Empty is the report served before any run exists.
func Empty() Report {
	return Report{
		Insights: []Insight{{
			ID:               "welcome",
			Type:             "general",
			Severity:         SeverityInfo,
			Title:            "No health data yet",
			Message:          EmptyMessage,
			SuggestedActions: []string{},
		}},
		Recommendations: []string{},
		Messages:        []string{EmptyMessage},
	}
}
