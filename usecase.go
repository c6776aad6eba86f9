package casepipe

import (
	"encoding/json"
	"strings"
)

// MissingGoal is the sentinel used when a structured goal carries no primary
// goal field at all.
const MissingGoal = "[Missing Goal]"

// Goal is either a plain string or a structured goal with sub-goals.
// Analysis engines are not consistent about which shape they emit, so both
// unmarshal into the same value.
type Goal struct {
	// Text holds the goal when the source was a plain string.
	Text string

	Main            string
	MainGoal        string
	PrimaryGoal     string
	Sub             []string
	SubGoal         string
	AlternativeGoal string
	Secondary       string
}

type structuredGoal struct {
	Main            string   `json:"main,omitempty"`
	MainGoal        string   `json:"main_goal,omitempty"`
	PrimaryGoal     string   `json:"primary,omitempty"`
	Sub             []string `json:"sub,omitempty"`
	SubGoal         string   `json:"sub_goal,omitempty"`
	AlternativeGoal string   `json:"alternative_goal,omitempty"`
	Secondary       string   `json:"secondary,omitempty"`
}

// UnmarshalJSON accepts either a JSON string or a structured goal object.
func (g *Goal) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*g = Goal{Text: s}
		return nil
	}
	var sg structuredGoal
	if err := json.Unmarshal(b, &sg); err != nil {
		return err
	}
	*g = Goal{
		Main:            sg.Main,
		MainGoal:        sg.MainGoal,
		PrimaryGoal:     sg.PrimaryGoal,
		Sub:             sg.Sub,
		SubGoal:         sg.SubGoal,
		AlternativeGoal: sg.AlternativeGoal,
		Secondary:       sg.Secondary,
	}
	return nil
}

// MarshalJSON emits the shape the goal arrived in.
func (g Goal) MarshalJSON() ([]byte, error) {
	if g.Text != "" {
		return json.Marshal(g.Text)
	}
	return json.Marshal(structuredGoal{
		Main:            g.Main,
		MainGoal:        g.MainGoal,
		PrimaryGoal:     g.PrimaryGoal,
		Sub:             g.Sub,
		SubGoal:         g.SubGoal,
		AlternativeGoal: g.AlternativeGoal,
		Secondary:       g.Secondary,
	})
}

// Normalized reduces the goal to a single plain string: the text form as-is,
// otherwise the first present of main, main_goal, primary.
func (g Goal) Normalized() string {
	if g.Text != "" {
		return g.Text
	}
	for _, s := range []string{g.Main, g.MainGoal, g.PrimaryGoal} {
		if s != "" {
			return s
		}
	}
	return MissingGoal
}

// Block renders the full goal block: the normalized goal followed by any
// sub-goals as a bulleted list.
func (g Goal) Block() string {
	if g.Text != "" {
		return g.Text
	}
	main := g.Normalized()
	subs := append([]string{}, g.Sub...)
	for _, s := range []string{g.SubGoal, g.AlternativeGoal, g.Secondary} {
		if s != "" {
			subs = append(subs, s)
		}
	}
	if len(subs) == 0 {
		return main
	}
	return main + "\n- " + strings.Join(subs, "\n- ")
}

// NewGoal wraps a plain-string goal.
func NewGoal(text string) Goal { return Goal{Text: text} }

// UseCase is one structured insight: an actor, a goal, and the tasks and
// constraints around it. Immutable once produced.
type UseCase struct {
	Role     string         `json:"role,omitempty"`
	Goal     Goal           `json:"goal"`
	Tasks    []string       `json:"tasks,omitempty"`
	Inputs   map[string]any `json:"inputs,omitempty"`
	Outputs  map[string]any `json:"outputs,omitempty"`
	Context  string         `json:"context,omitempty"`
	Priority string         `json:"priority,omitempty"`
	Feedback string         `json:"feedback,omitempty"`
	Rules    []string       `json:"rules,omitempty"`
	Triggers []string       `json:"triggers,omitempty"`
}

// useCaseAlias avoids recursing into UnmarshalJSON.
type useCaseAlias UseCase

// UnmarshalJSON accepts either a full use-case object or a bare string,
// which some engines emit for simple suggestions. A bare string becomes the
// use-case goal.
func (u *UseCase) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*u = UseCase{Goal: NewGoal(s)}
		return nil
	}
	var a useCaseAlias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*u = UseCase(a)
	return nil
}
