package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dusk-indust/makevargraph/internal/graph"
)

// WriteListing writes one "ASSIGNEE = ref1 ref2 ..." line per assignee.
// Assignees and their references are both sorted, so the output depends only
// on the contents of rel.
func WriteListing(w io.Writer, rel graph.Relations) error {
	bw := bufio.NewWriter(w)
	for _, assignee := range rel.Assignees() {
		refs := rel[assignee].Sorted()
		if _, err := fmt.Fprintf(bw, "%s = %s\n", assignee, strings.Join(refs, " ")); err != nil {
			return err
		}
	}
	return bw.Flush()
}
