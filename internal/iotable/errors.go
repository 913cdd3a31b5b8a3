package iotable

import (
	"fmt"

	"github.com/emso-eric/metadata-harmonizer/pkg/errcode"
	"github.com/gnames/gn"
)

// ReadError creates an error for when a tabular source cannot be
// read or decoded.
func ReadError(path string, err error) error {
	msg := `Cannot read tabular source

<em>Source file:</em> %s

<em>Possible causes:</em>
  - File does not exist
  - Permission denied
  - Malformed CSV (unbalanced quotes)

<em>How to fix:</em>
  1. Check if file exists: <em>ls -l %s</em>
  2. Check the CSV opens in a spreadsheet application`

	vars := []any{path, path}

	return &gn.Error{
		Code: errcode.TableReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to read tabular source: %w", err),
	}
}

// HeaderError creates an error for when no header line can be
// detected in a tabular source.
func HeaderError(path string) error {
	msg := `Cannot detect header line

<em>Source file:</em> %s

<em>Possible causes:</em>
  - File is empty or has no data rows
  - No line matches the width of the data body

<em>How to fix:</em>
  1. Check the file has a header line naming every column
  2. Check data rows all have the same number of fields`

	vars := []any{path}

	return &gn.Error{
		Code: errcode.TableHeaderError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("no header line detected in %s", path),
	}
}

// ColumnError creates an error for when a required index column is
// absent from the header.
func ColumnError(path, column string) error {
	msg := `Index column missing from source

<em>Source file:</em> %s
<em>Expected column:</em> %s

<em>How to fix:</em>
  1. Check the header names the column '%s'
  2. Or set the column name in emh.yaml (dataset section)`

	vars := []any{path, column, column}

	return &gn.Error{
		Code: errcode.TableColumnError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("column %q not found in %s", column, path),
	}
}
