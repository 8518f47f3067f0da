package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"message-explainer/internal/domain/entity"
)

// Parsed is a best-effort reading of the model output. Complete is false when the
// output did not map cleanly to the expected schema.
type Parsed struct {
	Explanation   string
	Urgency       string // raw value, normalized later
	NextSteps     string
	ReplyOptions  entity.ReplyOptions
	ScamSuspected bool
	Complete      bool
}

type modelOutput struct {
	Explanation   json.RawMessage            `json:"explanation"`
	Urgency       json.RawMessage            `json:"urgency"`
	NextSteps     json.RawMessage            `json:"next_steps"`
	ScamSuspected json.RawMessage            `json:"scam_suspected"`
	ReplyOptions  map[string]json.RawMessage `json:"reply_options"`
}

var errNoUsableText = errors.New("model returned no usable text")

// ParseModelOutput never fails on malformed but present text. It only fails when
// there is nothing usable at all.
func ParseModelOutput(raw string) (Parsed, error) {
	text := stripCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return Parsed{}, errNoUsableText
	}

	if p, ok := parseJSON(text); ok {
		if p.Explanation == "" && p.NextSteps == "" && p.ReplyOptions.Empty() {
			return Parsed{}, errNoUsableText
		}
		return p, nil
	}
	return parseSections(text), nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop a language tag such as "json"
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{}") {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func parseJSON(text string) (Parsed, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return Parsed{}, false
	}

	var out modelOutput
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return Parsed{}, false
	}

	p := Parsed{
		Explanation: flexString(out.Explanation),
		Urgency:     flexString(out.Urgency),
		NextSteps:   flexString(out.NextSteps),
	}
	// an omitted or false flag is overridden by a high-urgency answer that calls it a scam
	p.ScamSuspected = flexBool(out.ScamSuspected) ||
		(isHighUrgency(p.Urgency) && looksLikeScamWarning(p.Explanation+"\n"+p.NextSteps))
	for k, v := range out.ReplyOptions {
		switch strings.ToLower(k) {
		case "tamil":
			p.ReplyOptions.Tamil = flexString(v)
		case "tanglish":
			p.ReplyOptions.Tanglish = flexString(v)
		case "english":
			p.ReplyOptions.English = flexString(v)
		}
	}

	_, urgencyOK := entity.NormalizeUrgency(p.Urgency)
	p.Complete = p.Explanation != "" && p.NextSteps != "" && urgencyOK && out.ReplyOptions != nil
	return p, true
}

// flexString accepts a string, a list of strings, or any scalar.
func flexString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if v := strings.TrimSpace(fmt.Sprint(item)); v != "" {
				parts = append(parts, v)
			}
		}
		return strings.Join(parts, "\n")
	}
	return strings.TrimSpace(string(raw))
}

func flexBool(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	if b, err := strconv.ParseBool(flexString(raw)); err == nil {
		return b
	}
	return false
}

type section int

const (
	sectionExplain section = iota
	sectionWorry
	sectionAction
	sectionReply
)

var sectionMarkers = []struct {
	sec     section
	markers []string
}{
	{sectionExplain, []string{"🟢", "simple explanation"}},
	{sectionWorry, []string{"🟡", "do i need to worry"}},
	{sectionAction, []string{"🔵", "what should i do now"}},
	{sectionReply, []string{"🟣", "reply suggestions"}},
}

var (
	urgencyPattern = regexp.MustCompile(`(?i)urgency\W{0,5}(low|medium|high)`)
	replyLabel     = regexp.MustCompile(`(?i)^\W*(tamil|tanglish|english|simple english)\s*[:：-]\s*(.*)$`)
)

// parseSections reads free text laid out with the four section headings.
func parseSections(text string) Parsed {
	buckets := map[section][]string{}
	current := section(-1)
	seen := 0
	var preamble []string

	for _, line := range strings.Split(text, "\n") {
		if sec, ok := headingOf(line); ok {
			current = sec
			seen++
			if rest := headingRemainder(line); rest != "" {
				buckets[sec] = append(buckets[sec], rest)
			}
			continue
		}
		if current < 0 {
			preamble = append(preamble, line)
			continue
		}
		buckets[current] = append(buckets[current], line)
	}

	p := Parsed{}
	if seen == 0 {
		p.Explanation = text
	} else {
		var explain []string
		if pre := strings.TrimSpace(strings.Join(preamble, "\n")); pre != "" {
			explain = append(explain, pre)
		}
		for _, sec := range []section{sectionExplain, sectionWorry, sectionAction} {
			body := strings.TrimSpace(strings.Join(buckets[sec], "\n"))
			if body == "" {
				continue
			}
			explain = append(explain, headingFor(sec)+"\n"+body)
		}
		p.Explanation = strings.Join(explain, "\n\n")
		p.NextSteps = strings.TrimSpace(strings.Join(buckets[sectionAction], "\n"))
		p.ReplyOptions = parseReplies(buckets[sectionReply])
	}

	if m := urgencyPattern.FindStringSubmatch(text); m != nil {
		p.Urgency = strings.ToLower(m[1])
	}
	if isHighUrgency(p.Urgency) {
		warning := strings.Join(append(buckets[sectionWorry], buckets[sectionAction]...), "\n")
		p.ScamSuspected = looksLikeScamWarning(warning)
	}
	return p
}

// headingOf accepts "🟢 ..." lines, and bare titles such as "Simple Explanation"
// or "**Do I need to worry?**" that carry nothing but an optional "?" or ":" tail.
func headingOf(line string) (section, bool) {
	l := strings.ToLower(strings.TrimSpace(line))
	l = strings.TrimLeft(l, "#* ")
	for _, s := range sectionMarkers {
		for i, m := range s.markers {
			if !strings.HasPrefix(l, m) {
				continue
			}
			if i == 0 {
				return s.sec, true
			}
			rest := strings.TrimLeft(l[len(m):], "* ")
			if rest == "" || rest[0] == '?' || rest[0] == ':' {
				return s.sec, true
			}
		}
	}
	return 0, false
}

// headingRemainder returns text that follows a heading on the same line, e.g.
// "🔵 What should I do now? Pay before 10th".
func headingRemainder(line string) string {
	l := strings.TrimSpace(line)
	if i := strings.IndexAny(l, "?:"); i >= 0 {
		return strings.TrimSpace(l[i+1:])
	}
	return ""
}

func headingFor(sec section) string {
	switch sec {
	case sectionWorry:
		return "🟡 Do I need to worry?"
	case sectionAction:
		return "🔵 What should I do now?"
	case sectionReply:
		return "🟣 Reply Suggestions"
	default:
		return "🟢 Simple Explanation"
	}
}

func parseReplies(lines []string) entity.ReplyOptions {
	var r entity.ReplyOptions
	var unlabeled []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := replyLabel.FindStringSubmatch(line)
		if m == nil {
			unlabeled = append(unlabeled, line)
			continue
		}
		body := strings.TrimSpace(m[2])
		switch strings.ToLower(m[1]) {
		case "tamil":
			r.Tamil = body
		case "tanglish":
			r.Tanglish = body
		default:
			r.English = body
		}
	}
	if r.Empty() && len(unlabeled) > 0 {
		r.English = strings.Join(unlabeled, "\n")
	}
	return r
}

var (
	scamWords    = []string{"scam", "fraud", "phishing", "மோசடி"}
	scamNegation = []string{
		"not a scam", "not scam", "no scam", "isn't a scam", "is not a scam",
		"not a fraud", "not fraud", "no fraud", "மோசடி அல்ல", "மோசடி இல்லை",
	}
)

// looksLikeScamWarning reports whether text calls the message a scam without
// negating it.
func looksLikeScamWarning(text string) bool {
	l := strings.ToLower(text)
	for _, n := range scamNegation {
		if strings.Contains(l, n) {
			return false
		}
	}
	for _, w := range scamWords {
		if strings.Contains(l, w) {
			return true
		}
	}
	return false
}

func isHighUrgency(raw string) bool {
	u, ok := entity.NormalizeUrgency(raw)
	return ok && u == entity.UrgencyHigh
}
