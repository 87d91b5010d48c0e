package engine

// TopAnswerHighlight is one group's share of the overall top answer.
// Insufficient is set when the top answer never occurs in that group, so
// color-coded views can flag the group instead of showing a silent zero.
type TopAnswerHighlight struct {
	Group        string  `json:"group"`
	Percentage   float64 `json:"percentage"`
	Insufficient bool    `json:"insufficient"`
}

// HighlightView maps the filtered population's most frequent answer across
// one grouping dimension.
type HighlightView struct {
	Dimension    string               `json:"dimension"`
	TopAnswer    string               `json:"top_answer,omitempty"`
	Groups       []TopAnswerHighlight `json:"groups"`
	Insufficient bool                 `json:"insufficient"`
}

// Highlight determines the overall top answer for a question under a
// selection, then reports each group's percentage for that answer.
func (e *Engine) Highlight(column, dimension string, sel *Selection) (*HighlightView, error) {
	stats, err := e.QuestionStats(column, sel)
	if err != nil {
		return nil, err
	}
	view := &HighlightView{Dimension: dimension, TopAnswer: stats.TopAnswer}
	if stats.Insufficient {
		view.Insufficient = true
		return view, nil
	}

	breakdown, err := e.Breakdown(column, dimension, sel)
	if err != nil {
		return nil, err
	}
	if breakdown.Insufficient {
		view.Insufficient = true
		return view, nil
	}

	for _, group := range breakdown.Groups {
		h := TopAnswerHighlight{Group: group.Group, Insufficient: true}
		for _, a := range group.Answers {
			if a.Answer == view.TopAnswer {
				h.Percentage = a.Percentage
				h.Insufficient = false
				break
			}
		}
		view.Groups = append(view.Groups, h)
	}
	return view, nil
}
