package enrichment

import "strings"

// Operation identifies one enrichment contract against the external text
// service. Each operation has its own endpoint and names its result payload
// field differently.
type Operation string

const (
	OpSummarize  Operation = "summarize"
	OpTranslate  Operation = "translate"
	OpProofread  Operation = "proofread"
	OpParaphrase Operation = "paraphrase"
	OpKeywords   Operation = "keywords"
)

// Operations lists every known operation, in display order.
func Operations() []Operation {
	return []Operation{OpSummarize, OpTranslate, OpProofread, OpParaphrase, OpKeywords}
}

func ParseOperation(s string) (Operation, bool) {
	op := Operation(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Operations() {
		if op == known {
			return op, true
		}
	}
	return "", false
}
