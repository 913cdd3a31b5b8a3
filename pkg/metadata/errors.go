package metadata

import (
	"fmt"

	"github.com/gnames/gnlib"
)

// MalformedDescriptorError is returned when a metadata descriptor
// cannot be parsed.
type MalformedDescriptorError struct {
	error
	gnlib.MessageBase
	File string
}

// NewMalformedDescriptorError creates an error naming the descriptor
// file that failed to parse.
func NewMalformedDescriptorError(file string, cause error) error {
	userBase := gnlib.NewMessage(
		`<title>Malformed Metadata Descriptor</title>

<warning>The descriptor '%s' is not valid metadata JSON.</warning>

<em>How to fix:</em>
  1. Check the file for JSON syntax errors (trailing commas,
     unquoted keys, mismatched braces).

  2. Sections other than 'global', 'variables', 'platforms' and
     'sensors' are not recognized.

  3. Parse error detail:
     <em>%v</em>
`,
		[]any{file, cause},
	)

	return MalformedDescriptorError{
		error:       fmt.Errorf("cannot parse descriptor %q: %w", file, cause),
		MessageBase: userBase,
		File:        file,
	}
}

// MissingRequiredAttributeError is returned when a required attribute
// is still empty after merging, prompting and autofill.
type MissingRequiredAttributeError struct {
	error
	gnlib.MessageBase
	Section    string
	Instance   string
	Attribute  string
	Descriptor string
}

// NewMissingRequiredAttributeError creates an error naming the empty
// attribute and the descriptor expected to supply it.
func NewMissingRequiredAttributeError(
	section, instance, attribute, descriptor string,
) error {
	userBase := gnlib.NewMessage(
		`<title>Missing Required Attribute</title>

<warning>Attribute '%s' in section '%s' (%s) has no value.</warning>

<em>How to fix:</em>
  1. Set the attribute in descriptor '%s', keeping the '*' prefix
     on the attribute name.

  2. If the value should come from a lower-priority descriptor,
     check that it is listed after '%s' on the command line.
`,
		[]any{attribute, section, instance, descriptor, descriptor},
	)

	return MissingRequiredAttributeError{
		error: fmt.Errorf(
			"required attribute %s/%s/%s is empty, expected from %q",
			section, instance, attribute, descriptor,
		),
		MessageBase: userBase,
		Section:     section,
		Instance:    instance,
		Attribute:   attribute,
		Descriptor:  descriptor,
	}
}

// NoDescriptorsError is returned when a merge is attempted with no
// input descriptors.
type NoDescriptorsError struct {
	error
	gnlib.MessageBase
}

// NewNoDescriptorsError creates an error for an empty merge input.
func NewNoDescriptorsError() error {
	userBase := gnlib.NewMessage(
		`<title>No Metadata Descriptors</title>

<warning>At least one descriptor is needed to build a document.</warning>

<em>How to fix:</em>
  Pass descriptor files in priority order, highest priority first.
`,
		nil,
	)

	return NoDescriptorsError{
		error:       fmt.Errorf("no descriptors to merge"),
		MessageBase: userBase,
	}
}

// PromptError is returned when the interactive prompt callback fails.
type PromptError struct {
	error
	gnlib.MessageBase
	Section   string
	Attribute string
}

// NewPromptError wraps a prompt callback failure.
func NewPromptError(section, attribute string, cause error) error {
	userBase := gnlib.NewMessage(
		`<title>Interactive Fill Failed</title>

<warning>Could not obtain a value for '%s' in section '%s'.</warning>

<em>How to fix:</em>
  Fill the attribute in its descriptor file, or rerun without
  aborting the prompt.
`,
		[]any{attribute, section},
	)

	return PromptError{
		error: fmt.Errorf(
			"prompt for %s/%s failed: %w", section, attribute, cause,
		),
		MessageBase: userBase,
		Section:     section,
		Attribute:   attribute,
	}
}
