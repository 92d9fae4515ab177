package participant

import "strings"

// FallbackMotivation guarantees every profile has at least one motivation
// when no keyword rule matches the involvement narrative.
const FallbackMotivation = "fulfill professional responsibilities"

// Rule is one ordered keyword heuristic over free narrative text. Rules are
// kept as data so they can be tested in isolation and replaced without
// touching the mapping code.
type Rule struct {
	Name    string
	Match   func(text string) bool
	Outcome string
}

// containsAny reports whether the lower-cased text contains any keyword.
func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// matchAny builds a Match function over a keyword list.
func matchAny(keywords ...string) func(string) bool {
	return func(text string) bool {
		return containsAny(text, keywords...)
	}
}

// MotivationRules infer what drives a participant from their involvement
// narrative.
var MotivationRules = []Rule{
	{Name: "safety", Match: matchAny("protect", "safety", "public welfare"), Outcome: "protect public safety and welfare"},
	{Name: "compliance", Match: matchAny("comply", "standard", "code", "regulation"), Outcome: "comply with professional standards"},
	{Name: "honesty", Match: matchAny("honest", "truth", "disclose"), Outcome: "maintain honesty and full disclosure"},
	{Name: "reputation", Match: matchAny("career", "reputation", "livelihood"), Outcome: "preserve professional standing"},
}

// GoalRules infer concrete objectives from the involvement narrative.
var GoalRules = []Rule{
	{Name: "resolve", Match: matchAny("resolve", "remedy", "fix", "correct"), Outcome: "resolve the underlying problem"},
	{Name: "inform", Match: matchAny("report", "notify", "inform", "warn"), Outcome: "ensure the responsible parties are informed"},
	{Name: "deliver", Match: matchAny("complete", "finish", "deliver"), Outcome: "complete the engagement as agreed"},
}

// ConstraintRules infer situational constraints from the involvement
// narrative.
var ConstraintRules = []Rule{
	{Name: "financial", Match: matchAny("cost", "budget", "financial", "afford", "expense"), Outcome: "financial pressure limits the available options"},
	{Name: "resistance", Match: matchAny("refuse", "resist", "delay", "insist", "pressure"), Outcome: "faces resistance from other parties"},
	{Name: "time", Match: matchAny("deadline", "urgent", "schedule"), Outcome: "operates under time pressure"},
}

// ArcRules collect narrative phrases that are concatenated into a character
// arc sentence.
var ArcRules = []Rule{
	{Name: "discovery", Match: matchAny("discover", "find", "learn", "notice"), Outcome: "discovers a critical problem"},
	{Name: "disclosure", Match: matchAny("report", "disclose", "warn"), Outcome: "must decide what to disclose"},
	{Name: "conflict", Match: matchAny("refuse", "resist", "dispute", "object"), Outcome: "meets resistance"},
	{Name: "resolution", Match: matchAny("resolve", "settle", "agree"), Outcome: "works toward a resolution"},
}

// ApplyRules evaluates an ordered rule table against lower-cased text and
// returns the outcomes of all matching rules in table order.
func ApplyRules(rules []Rule, text string) []string {
	lowered := strings.ToLower(text)
	var outcomes []string
	for _, rule := range rules {
		if rule.Match(lowered) {
			outcomes = append(outcomes, rule.Outcome)
		}
	}
	return outcomes
}
