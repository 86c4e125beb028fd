// Package gate checks whether a letter carries the expected institutional
// letterhead near its top.
package gate

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/joseph-ayodele/letterscan/internal/taxonomy"
)

type Gate struct {
	signatures []string
	window     int
}

// New builds a gate from the taxonomy letterhead. Signatures are folded once.
func New(tax *taxonomy.Compiled) *Gate {
	fold := cases.Fold()
	sigs := make([]string, 0, len(tax.Letterhead.Signatures))
	for _, s := range tax.Letterhead.Signatures {
		s = fold.String(collapseSpace(s))
		if s != "" {
			sigs = append(sigs, s)
		}
	}
	return &Gate{signatures: sigs, window: tax.Letterhead.Window}
}

// MatchesInstitutionalFormat reports whether any signature appears within the
// first window code points of text, ignoring case and whitespace layout.
func (g *Gate) MatchesInstitutionalFormat(text string) bool {
	head := collapseSpace(prefix(text, g.window))
	if head == "" {
		return false
	}
	// cases.Caser is stateful; a fresh one per call keeps Gate goroutine-safe.
	head = cases.Fold().String(head)
	for _, sig := range g.signatures {
		if strings.Contains(head, sig) {
			return true
		}
	}
	return false
}

func prefix(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
