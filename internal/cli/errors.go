package cli

import "errors"

var errQueryWithoutView = errors.New("--query needs a view")

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }
