package client

import "alfredoptarigan/intelliapply/internal/models"

type Transition int

const (
	// DescriptionSaved fires when a row gains its first description.
	DescriptionSaved Transition = iota + 1
	// AnalysisComplete fires when a row gains its first rating.
	AnalysisComplete
)

// DetectTransitions compares two versions of a row and reports the edges worth
// telling the user about. Updates that leave both fields on the same side of
// the edge report nothing, so replayed or repeated updates stay quiet.
func DetectTransitions(prev, next models.Job) []Transition {
	var out []Transition
	if !prev.HasDescription() && next.HasDescription() {
		out = append(out, DescriptionSaved)
	}
	if prev.GeminiRating == nil && next.GeminiRating != nil {
		out = append(out, AnalysisComplete)
	}
	return out
}

func (t Transition) notice(title string) Notice {
	switch t {
	case DescriptionSaved:
		return Notice{Level: LevelSuccess, Message: "Description saved for: " + title}
	case AnalysisComplete:
		return Notice{Level: LevelSuccess, Message: "AI Analysis complete for: " + title}
	}
	return Notice{Level: LevelInfo, Message: title}
}
