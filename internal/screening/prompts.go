package screening

import (
	"fmt"
	"strings"
	"time"
)

const (
	categorizePrefix = "Today's date = "
	assessPrefix     = "Based on the job application for a "
)

func categorizePrompt(today time.Time) string {
	return fmt.Sprintf(categorizePrefix+"%s, use it to calculate experience in years. "+
		"Based on the following job application, categorize the candidate as 'Entry-level', 'Mid-level' or 'Senior-level'. "+
		"Respond with either 'Entry-level', 'Mid-level' or 'Senior-level' only, no extra text.",
		today.Format("2006-01-02"))
}

func assessPrompt(role string) string {
	return fmt.Sprintf(assessPrefix+"%s, assess the candidate's skillset. "+
		"Strictly check for required skills only. "+
		"Respond with either 'Match' or 'No Match' only, no extra text.", role)
}

// Cacheable reports whether a classifier response to one of the screening
// prompts parses into the category that prompt asks for. Responses to other
// prompts are accepted unchanged.
func Cacheable(description, text string) bool {
	switch {
	case strings.HasPrefix(description, categorizePrefix):
		_, err := ParseExperienceLevel(text)
		return err == nil
	case strings.HasPrefix(description, assessPrefix):
		_, err := ParseSkillMatch(text)
		return err == nil
	default:
		return true
	}
}

// skillsPayload is everything assess-skillset shows the classifier.
type skillsPayload struct {
	Role   string   `json:"role"`
	Skills []string `json:"skills"`
}
