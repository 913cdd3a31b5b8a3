package dataset

import (
	"fmt"

	"github.com/gnames/gnlib"
)

// UnboundColumnError is returned when a data column cannot be
// associated with any variable entry of the metadata document.
type UnboundColumnError struct {
	error
	gnlib.MessageBase
	Table  string
	Column string
}

// NewUnboundColumnError creates an error naming the unbound column and
// the table it came from.
func NewUnboundColumnError(table, column string) error {
	userBase := gnlib.NewMessage(
		`<title>Unbound Data Column</title>

<warning>Column '%s' of '%s' matches no metadata variable.</warning>

<em>How to fix:</em>
  1. Add a '%s' entry to the 'variables' section of a descriptor.

  2. Or map the column to an existing variable with
     <em>--bind %s=VARIABLE</em>.
`,
		[]any{column, table, column, column},
	)

	return UnboundColumnError{
		error: fmt.Errorf(
			"column %q of %q is bound to no variable", column, table,
		),
		MessageBase: userBase,
		Table:       table,
		Column:      column,
	}
}
