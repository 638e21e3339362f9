package parse

import "regexp"

// The extractor is a set of ordered, data-driven rule tables consumed by
// generic first-match-wins matchers. All patterns are written for folded
// (lowercased) text.

// durationRule maps a wait-time phrasing to its unit.
type durationRule struct {
	re    *regexp.Regexp
	hours bool
}

// waitTimeRules are tried in order; the first match wins. Hour phrasings
// come before minute phrasings.
var waitTimeRules = []durationRule{
	// "2h wait", "2 hours", "2h queue"
	{re: regexp.MustCompile(`(\d+(?:\.\d+)?)\s*h(?:ours?)?\s*(?:wait|queue|line)?`), hours: true},
	// "90 min wait", "90 minutes"
	{re: regexp.MustCompile(`(\d+)\s*min(?:utes?)?\s*(?:wait|queue|line)?`)},
	// "wait: 2h", "wait time: 90min"
	{re: regexp.MustCompile(`wait(?:ing)?(?:\s*time)?:?\s*(\d+(?:\.\d+)?)\s*h`), hours: true},
	{re: regexp.MustCompile(`wait(?:ing)?(?:\s*time)?:?\s*(\d+)\s*min`)},
	// "waited 2 hours", "been waiting 90 min"
	{re: regexp.MustCompile(`wait(?:ed|ing)\s+(?:for\s+)?(\d+(?:\.\d+)?)\s*h`), hours: true},
	{re: regexp.MustCompile(`wait(?:ed|ing)\s+(?:for\s+)?(\d+)\s*min`)},
	// "~2h", "approx 90min"
	{re: regexp.MustCompile(`[~≈]?\s*(\d+(?:\.\d+)?)\s*h(?:ours?)?(?:\s*wait)?`), hours: true},
	{re: regexp.MustCompile(`[~≈]?\s*(\d+)\s*min(?:utes?)?(?:\s*wait)?`)},
}

// valueRule maps a pattern to a resulting value.
type valueRule struct {
	re    *regexp.Regexp
	value string
}

// queueLengthRules are ordered from "no queue" through extreme; the first
// match wins.
var queueLengthRules = []valueRule{
	{re: regexp.MustCompile(`\b(no\s*queue|empty|walk[\s-]*in|straight\s*in)\b`), value: "none"},
	{re: regexp.MustCompile(`\b(short|small|quick|fast|minimal)\b`), value: "short"},
	{re: regexp.MustCompile(`\b(medium|moderate|normal|average|decent)\b`), value: "medium"},
	{re: regexp.MustCompile(`\b(long|big|large|substantial)\b`), value: "long"},
	{re: regexp.MustCompile(`\b(huge|massive|insane|crazy|enormous|never\s*seen|longest)\b`), value: "very_long"},
}

// firstValueMatch returns the value of the first rule matching text.
func firstValueMatch(rules []valueRule, text string) (string, bool) {
	for _, rule := range rules {
		if rule.re.MatchString(text) {
			return rule.value, true
		}
	}

	return "", false
}

var rejectionRules = []*regexp.Regexp{
	regexp.MustCompile(`\b(rejected|rejection|turned\s*away|didn'?t\s*get\s*in|refused)\b`),
	regexp.MustCompile(`\b(bouncer|türsteher)\s*(said\s*no|rejected)`),
}

var entryRules = []*regexp.Regexp{
	regexp.MustCompile(`\b(got\s*in|made\s*it|inside|entered|admitted)\b`),
	regexp.MustCompile(`\b(we'?re\s*in|i'?m\s*in|finally\s*in)\b`),
	regexp.MustCompile(`\byes\b.*\b(in|inside|made)\b`),
	// Short affirmatives, mostly useful when combined with a parent question.
	regexp.MustCompile(`\b(yes|yeah|yep|ja)\b`),
}

func anyMatch(rules []*regexp.Regexp, text string) bool {
	for _, re := range rules {
		if re.MatchString(text) {
			return true
		}
	}

	return false
}

// queueQuestionRules classify a parent message as asking about queue status.
var queueQuestionRules = []*regexp.Regexp{
	regexp.MustCompile(`\b(how\s*(is|long|big)|what'?s|status|update)\b.*(queue|line|q|schlange|wait)`),
	regexp.MustCompile(`\b(queue|line|q|schlange|wait).*(how|what|\?)`),
	regexp.MustCompile(`\bhow\s*is\s*(it|the|berghain)\b`),
	regexp.MustCompile(`\bany\s*(update|news|info)\b`),
	regexp.MustCompile(`\bcurrent\s*(status|situation|wait)\b`),
}

var queueQuestionKeywords = []string{"queue", "line", "wait", "q", "schlange", "how", "long"}
