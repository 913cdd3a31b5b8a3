package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// Configuration errors
	ConfigLoadError
	ConfigGenerateError

	// Descriptor errors
	DescriptorReadError
	DescriptorParseError
	DescriptorWriteError

	// Tabular source errors
	TableReadError
	TableHeaderError
	TableColumnError

	// Compliance specification errors
	SpecLoadError
	SpecParseError
	SpecRuleError

	// Vocabulary errors
	VocabCacheError
	VocabFetchError

	// ERDDAP config store errors
	ErddapStoreError
)
