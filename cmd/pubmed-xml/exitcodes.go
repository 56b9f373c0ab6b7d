package main

// Exit codes
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2 // Configuration error (unreadable config, cache unavailable)
	ExitDataError    = 3 // Data error (unparsable input, record without PMID or valid date)
	ExitNetworkError = 4 // E-utilities unreachable or rate limited
)
