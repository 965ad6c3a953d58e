// -----------------------------------------------------------------------
// Math Detection - Heuristic classifier for mathematical content
// -----------------------------------------------------------------------

package processing

import "regexp"

// Compiled once at package init. Each pattern alone is sufficient evidence;
// false positives are acceptable since they only route text through the
// paragraph-preserving chunker.
var mathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+\s*[+\-*/=]\s*\d+`),                              // arithmetic: 5 + 3
	regexp.MustCompile(`[a-zA-Z]\s*[+\-*/=]\s*[a-zA-Z]`),                    // variables: x + y
	regexp.MustCompile(`\\frac|\\sqrt|\\sum|\\int|\\prod`),                  // LaTeX commands
	regexp.MustCompile(`\^`),                                                // exponents: x^2
	regexp.MustCompile(`∑|∫|√|≈|≠|≤|≥|π|θ|α|β|γ|Δ`),                         // math symbols
	regexp.MustCompile(`(?i)\b(equation|formula|theorem|proof|lemma|sin|cos|tan|log)\b`), // math keywords
	regexp.MustCompile(`\([a-zA-Z0-9\s+\-*/=]+\)`),                          // parenthesized expressions
}

// DetectMath reports whether text appears to contain mathematical content.
// It is a cheap heuristic, not a parser.
func DetectMath(text string) bool {
	for _, pattern := range mathPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
