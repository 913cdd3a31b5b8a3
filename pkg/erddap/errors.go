package erddap

import (
	"fmt"

	"github.com/gnames/gnlib"
)

// MissingDatasetIDError is returned when a fragment is requested for a
// dataset without an identifier.
type MissingDatasetIDError struct {
	error
	gnlib.MessageBase
}

// NewMissingDatasetIDError creates an error for a missing dataset id.
func NewMissingDatasetIDError() error {
	userBase := gnlib.NewMessage(
		`<title>Missing Dataset Identifier</title>

<warning>A serving-layer fragment needs a dataset id.</warning>

<em>How to fix:</em>
  Set 'dataset_id' in the global section of a descriptor.
`,
		nil,
	)

	return MissingDatasetIDError{
		error:       fmt.Errorf("dataset has no identifier"),
		MessageBase: userBase,
	}
}
