package decision

import (
	"fmt"
	"strings"

	"lotto-lab/internal/metrics"
)

// RenderMarkdown renders results as a Markdown document, one section per
// strategy and threshold.
func RenderMarkdown(results []*Result) string {
	var sb strings.Builder

	sb.WriteString("# Decision Gate Report\n\n")
	if len(results) == 0 {
		sb.WriteString("No rate-regime runs.\n")
		return sb.String()
	}

	sb.WriteString("| Strategy | Threshold | Decision |\n")
	sb.WriteString("|----------|-----------|----------|\n")
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("| %s | %d+ | %s |\n", r.Strategy, r.Threshold, r.Decision))
	}
	sb.WriteString("\n" + metrics.BaselineNote() + "\n\n")

	for _, r := range results {
		renderResult(&sb, r)
	}
	return sb.String()
}

func renderResult(sb *strings.Builder, r *Result) {
	sb.WriteString(fmt.Sprintf("## %s, %d+ matches: %s\n\n", r.Strategy, r.Threshold, r.Decision))

	sb.WriteString("| # | Criterion | Threshold | Actual | Pass |\n")
	sb.WriteString("|---|-----------|-----------|--------|------|\n")
	for i, c := range r.GOCriteria {
		passStr := "PASS"
		if !c.Pass {
			passStr = "FAIL"
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			i+1, c.Name, c.Threshold, c.Actual, passStr))
	}
	sb.WriteString("\n")

	sb.WriteString("| # | Trigger | Condition | Actual | Status |\n")
	sb.WriteString("|---|---------|-----------|--------|--------|\n")
	for i, c := range r.NOGOChecks {
		statusStr := "NOT TRIGGERED"
		if !c.Pass {
			statusStr = "TRIGGERED"
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			i+1, c.Name, c.Threshold, c.Actual, statusStr))
	}
	sb.WriteString("\n")

	if r.Decision == DecisionNOGO {
		for _, c := range r.GOCriteria {
			if !c.Pass {
				sb.WriteString(fmt.Sprintf("- GO criterion failed: %s (actual: %s)\n", c.Name, c.Actual))
			}
		}
		for _, c := range r.NOGOChecks {
			if !c.Pass {
				sb.WriteString(fmt.Sprintf("- NO-GO trigger fired: %s (actual: %s)\n", c.Name, c.Actual))
			}
		}
		sb.WriteString("\n")
	}
}
