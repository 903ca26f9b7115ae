package firewall

import (
	"regexp"
	"strconv"
	"strings"
)

var numberedRuleRegex = regexp.MustCompile(`^\[\s*(\d+)\]\s+(.+)`)

// parseStatusVerbose extracts the active flag and the rule table from
// `ufw status verbose` output. Individual lines that do not look like
// rules are skipped; the full raw text is kept alongside.
func parseStatusVerbose(out string) *Status {
	lines := strings.Split(out, "\n")
	status := &Status{Raw: out, Rules: []Rule{}}
	if len(lines) > 0 && strings.Contains(lines[0], "active") {
		status.Active = !strings.Contains(lines[0], "inactive")
	}

	inRules := false
	for _, line := range lines {
		if strings.Contains(line, "-----") {
			inRules = true
			continue
		}
		if !inRules || strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 3 {
			continue
		}
		rule := Rule{
			Port:   parts[0],
			Action: parts[1],
			From:   parts[2],
		}
		if len(parts) > 3 {
			rule.Protocol = parts[3]
		}
		if len(parts) > 4 {
			rule.Comment = strings.Join(parts[4:], " ")
		}
		status.Rules = append(status.Rules, rule)
	}
	return status
}

// parseNumbered extracts `[ N] rule text` entries from `ufw status
// numbered` output.
func parseNumbered(out string) []NumberedRule {
	rules := []NumberedRule{}
	for _, line := range strings.Split(out, "\n") {
		m := numberedRuleRegex.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		number, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		rules = append(
			rules, NumberedRule{
				Number: number,
				Rule:   strings.TrimSpace(m[2]),
				Raw:    strings.TrimSpace(line),
			},
		)
	}
	return rules
}

// parseLogs splits syslog-style firewall log lines into timestamp and
// message. A line too short to carry both is passed through raw.
func parseLogs(out string) []LogEntry {
	entries := []LogEntry{}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, " ")
		if len(parts) >= 4 {
			entries = append(
				entries, LogEntry{
					Timestamp: strings.Join(parts[:3], " "),
					Message:   strings.Join(parts[3:], " "),
					Raw:       line,
				},
			)
			continue
		}
		entries = append(entries, LogEntry{Raw: line})
	}
	return entries
}
