package article

import "errors"

var (
	errInvalidTopicID = errors.New("invalid topic_id")
	errInvalidFrom    = errors.New("invalid from (must be RFC3339)")
	errInvalidTo      = errors.New("invalid to (must be RFC3339)")
)
