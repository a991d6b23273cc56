package screening

import (
	"strings"

	apperrors "candidate-screening/internal/common/errors"
	"candidate-screening/internal/models"
)

// ExperienceLevel is the seniority bucket assigned by categorize-experience.
type ExperienceLevel string

const (
	EntryLevel  ExperienceLevel = "Entry-level"
	MidLevel    ExperienceLevel = "Mid-level"
	SeniorLevel ExperienceLevel = "Senior-level"
)

// ExperienceLevels lists every level in ascending order.
var ExperienceLevels = []ExperienceLevel{EntryLevel, MidLevel, SeniorLevel}

// SkillMatch is the verdict of assess-skillset.
type SkillMatch string

const (
	Match   SkillMatch = "Match"
	NoMatch SkillMatch = "No Match"
)

// SkillMatches lists both verdicts.
var SkillMatches = []SkillMatch{Match, NoMatch}

// normalize folds case and drops the separators and quoting models tend to
// add around a one-word answer.
func normalize(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '-', '_', '.', '\'', '"', '`', '*':
			return -1
		}
		return r
	}, strings.ToLower(raw))
}

// ParseExperienceLevel maps classifier text to a level.
func ParseExperienceLevel(raw string) (ExperienceLevel, error) {
	switch normalize(raw) {
	case "entrylevel":
		return EntryLevel, nil
	case "midlevel":
		return MidLevel, nil
	case "seniorlevel":
		return SeniorLevel, nil
	}
	return "", apperrors.NewClassificationError("experience level", raw)
}

// ParseSkillMatch maps classifier text to a verdict.
func ParseSkillMatch(raw string) (SkillMatch, error) {
	switch normalize(raw) {
	case "match":
		return Match, nil
	case "nomatch":
		return NoMatch, nil
	}
	return "", apperrors.NewClassificationError("skill match", raw)
}

// State is threaded through every stage. Values are replaced, never mutated in
// place, so a State can be shared with observers.
type State struct {
	Application     *models.Application
	Role            string
	ExperienceLevel *ExperienceLevel
	SkillMatch      *SkillMatch
	Response        *string
}

// State field names used in write-sets.
const (
	FieldExperienceLevel = "experienceLevel"
	FieldSkillMatch      = "skillMatch"
	FieldResponse        = "response"
)

// Update is the partial state a stage returns.
type Update struct {
	ExperienceLevel *ExperienceLevel
	SkillMatch      *SkillMatch
	Response        *string
}

func (u Update) Fields() []string {
	var out []string
	if u.ExperienceLevel != nil {
		out = append(out, FieldExperienceLevel)
	}
	if u.SkillMatch != nil {
		out = append(out, FieldSkillMatch)
	}
	if u.Response != nil {
		out = append(out, FieldResponse)
	}
	return out
}

// merge overwrites the fields an update sets.
func merge(s State, u Update) State {
	if u.ExperienceLevel != nil {
		level := *u.ExperienceLevel
		s.ExperienceLevel = &level
	}
	if u.SkillMatch != nil {
		m := *u.SkillMatch
		s.SkillMatch = &m
	}
	if u.Response != nil {
		r := *u.Response
		s.Response = &r
	}
	return s
}
