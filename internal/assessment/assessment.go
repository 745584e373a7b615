// Package assessment scores the brand-health quiz and models the widget's view flow.
package assessment

import (
	"fmt"
	"sort"

	"github.com/yourorg/brand-estimator/internal/model"
	"github.com/yourorg/brand-estimator/internal/types"
	"github.com/yourorg/brand-estimator/internal/validation"
)

// MaxOptionScore is the score of the strongest answer to any question
const MaxOptionScore = 5

// Option is one selectable answer
type Option struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

// Question is a single quiz question
type Question struct {
	ID       string   `json:"id"`
	Prompt   string   `json:"prompt"`
	Category string   `json:"category"`
	Options  []Option `json:"options"`
}

// Category groups questions and names the focus area that addresses a weak result
type Category struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	FocusArea types.FocusAreaID `json:"focus_area"`
}

// Questionnaire is an ordered set of categories and questions
type Questionnaire struct {
	Categories []Category `json:"categories"`
	Questions  []Question `json:"questions"`
}

// Tier maps a minimum percentage to a label
type Tier struct {
	MinPercent float64 `json:"min_percent"`
	Name       string  `json:"name"`
}

// Tiers are checked from the top; the last one has no minimum
var Tiers = []Tier{
	{MinPercent: 80, Name: "Brand Leader"},
	{MinPercent: 60, Name: "Brand Builder"},
	{MinPercent: 40, Name: "Brand Explorer"},
	{MinPercent: 0, Name: "Brand Starter"},
}

// RecommendationCount is how many of the weakest categories produce recommendations
const RecommendationCount = 2

func scale(labels ...string) []Option {
	opts := make([]Option, len(labels))
	for i, l := range labels {
		opts[i] = Option{Label: l, Score: i + 1}
	}
	return opts
}

// DefaultQuestionnaire returns the brand-health quiz shown on the site
func DefaultQuestionnaire() Questionnaire {
	agreement := []string{"Not at all", "Rarely", "Somewhat", "Mostly", "Completely"}
	return Questionnaire{
		Categories: []Category{
			{ID: "positioning", Name: "Positioning", FocusArea: types.FocusPricingPremium},
			{ID: "visibility", Name: "Visibility", FocusArea: types.FocusCustomerAcquisition},
			{ID: "investor-readiness", Name: "Investor Readiness", FocusArea: types.FocusFundingReadiness},
			{ID: "culture", Name: "Employer Brand", FocusArea: types.FocusTalentAcquisition},
		},
		Questions: []Question{
			{ID: "q1", Category: "positioning", Prompt: "Can every employee explain what makes you different in one sentence?", Options: scale(agreement...)},
			{ID: "q2", Category: "positioning", Prompt: "Do customers choose you for reasons other than price?", Options: scale(agreement...)},
			{ID: "q3", Category: "visibility", Prompt: "Does your visual identity look the same across every channel?", Options: scale(agreement...)},
			{ID: "q4", Category: "visibility", Prompt: "Do prospects find you before you find them?", Options: scale(agreement...)},
			{ID: "q5", Category: "investor-readiness", Prompt: "Could you present your story to an investor tomorrow?", Options: scale(agreement...)},
			{ID: "q6", Category: "investor-readiness", Prompt: "Does your deck explain the market in your own terms?", Options: scale(agreement...)},
			{ID: "q7", Category: "culture", Prompt: "Do candidates mention your brand when they apply?", Options: scale(agreement...)},
			{ID: "q8", Category: "culture", Prompt: "Would your team recommend working here publicly?", Options: scale(agreement...)},
		},
	}
}

// Score totals the answers, given as question id to option index.
// Every question must be answered exactly once with a valid option.
func Score(q Questionnaire, answers map[string]int) (model.AssessmentResult, error) {
	var errs validation.Errors
	known := make(map[string]bool, len(q.Questions))
	for _, question := range q.Questions {
		known[question.ID] = true
		idx, ok := answers[question.ID]
		if !ok {
			errs = append(errs, &validation.Error{Field: question.ID, Reason: "unanswered"})
			continue
		}
		if idx < 0 || idx >= len(question.Options) {
			errs = append(errs, &validation.Error{Field: question.ID, Reason: fmt.Sprintf("option %d does not exist", idx)})
		}
	}
	unknown := make([]string, 0)
	for id := range answers {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		errs = append(errs, &validation.Error{Field: id, Reason: "unknown question"})
	}
	if len(errs) > 0 {
		return model.AssessmentResult{}, errs
	}
	if len(q.Questions) == 0 {
		return model.AssessmentResult{}, fmt.Errorf("questionnaire has no questions")
	}

	type tally struct{ sum, count int }
	tallies := make(map[string]*tally, len(q.Categories))
	total := 0
	for _, question := range q.Questions {
		score := question.Options[answers[question.ID]].Score
		total += score
		t, ok := tallies[question.Category]
		if !ok {
			t = &tally{}
			tallies[question.Category] = t
		}
		t.sum += score
		t.count++
	}

	maxScore := MaxOptionScore * len(q.Questions)
	percent := float64(total) / float64(maxScore) * 100

	result := model.AssessmentResult{
		TotalScore: total,
		MaxScore:   maxScore,
		Percent:    percent,
		Tier:       tierFor(percent),
	}

	scored := make([]Category, 0, len(q.Categories))
	for _, c := range q.Categories {
		t, ok := tallies[c.ID]
		if !ok {
			continue
		}
		avg := float64(t.sum) / float64(t.count)
		result.Categories = append(result.Categories, model.CategoryScore{
			Category: c.ID,
			Average:  avg,
			Percent:  avg / MaxOptionScore * 100,
		})
		scored = append(scored, c)
	}

	// stable sort keeps questionnaire order among equal averages
	order := make([]int, len(scored))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return result.Categories[order[a]].Average < result.Categories[order[b]].Average
	})
	for i := 0; i < len(order) && i < RecommendationCount; i++ {
		result.Recommendations = append(result.Recommendations, scored[order[i]].FocusArea)
	}

	return result, nil
}

func tierFor(percent float64) string {
	for _, t := range Tiers {
		if percent >= t.MinPercent {
			return t.Name
		}
	}
	return Tiers[len(Tiers)-1].Name
}
