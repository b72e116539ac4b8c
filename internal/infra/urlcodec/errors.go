package urlcodec

import "errors"

// Sentinel errors surfaced by Decode. A failed decode is terminal for the
// article it was attempted on (spec §4.2): the caller persists
// decode_failed=true and does not retry.
var (
	// ErrInvalidURLShape means the URL's opaque identifier could not be
	// extracted (non-aggregator host already passes through before this
	// check, so this only fires for malformed aggregator URLs).
	ErrInvalidURLShape = errors.New("invalid-url-shape")
	// ErrDecodingParamsFailed means the signature/timestamp pair could not
	// be scraped from the aggregator article page.
	ErrDecodingParamsFailed = errors.New("fetch-decoding-params-failed")
	// ErrDecodeResponseInvalid means the batchexecute response envelope did
	// not match the expected shape.
	ErrDecodeResponseInvalid = errors.New("decode-response-invalid")
)
