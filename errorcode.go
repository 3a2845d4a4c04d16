package turn

import "fmt"

// ErrorCodeAttribute represents ERROR-CODE attribute.
//
// RFC 5389 Section 15.6.
type ErrorCodeAttribute struct {
	Code   ErrorCode
	Reason []byte
}

func (c ErrorCodeAttribute) String() string {
	return fmt.Sprintf("%d: %s", c.Code, c.Reason)
}

// constants for ERROR-CODE encoding.
const (
	errorCodeClassByte   = 2
	errorCodeNumberByte  = 3
	errorCodeReasonStart = 4
	errorCodeReasonMaxB  = 763
	errorCodeModulo      = 100
)

// AddTo adds ERROR-CODE attribute to m.
//
// The reason phrase MUST be a UTF-8 encoded sequence of less than 128
// characters (which can be as long as 763 bytes).
func (c ErrorCodeAttribute) AddTo(m *Message) error {
	if err := CheckOverflow(AttrErrorCode,
		len(c.Reason)+errorCodeReasonStart, errorCodeReasonMaxB+errorCodeReasonStart,
	); err != nil {
		return err
	}
	value := make([]byte, errorCodeReasonStart+len(c.Reason))
	number := byte(c.Code % errorCodeModulo) // error code modulo 100
	class := byte(c.Code / errorCodeModulo)  // hundred digit
	value[errorCodeClassByte] = class
	value[errorCodeNumberByte] = number
	copy(value[errorCodeReasonStart:], c.Reason)
	m.Add(AttrErrorCode, value)
	return nil
}

// GetFrom decodes ERROR-CODE from m. Reason is valid until m.Raw is
// valid.
func (c *ErrorCodeAttribute) GetFrom(m *Message) error {
	v, err := m.Get(AttrErrorCode)
	if err != nil {
		return err
	}
	if len(v) < errorCodeReasonStart {
		return newAttrDecodeErr("error-code", fmt.Sprintf(
			"value length %d is less than %d", len(v), errorCodeReasonStart,
		))
	}
	var (
		class  = uint16(v[errorCodeClassByte])
		number = uint16(v[errorCodeNumberByte])
	)
	c.Code = ErrorCode(class*errorCodeModulo + number)
	c.Reason = v[errorCodeReasonStart:]
	return nil
}

// ErrorCode is code for ERROR-CODE attribute.
type ErrorCode int

// AddTo adds ERROR-CODE with recommended reason string to m.
func (c ErrorCode) AddTo(m *Message) error {
	reason, ok := errorReasons[c]
	if !ok {
		return ErrNoDefaultReason
	}
	a := &ErrorCodeAttribute{
		Code:   c,
		Reason: reason,
	}
	return a.AddTo(m)
}

// ErrNoDefaultReason means that default reason for provided error code
// is not defined in RFC 5389 or RFC 5766.
const ErrNoDefaultReason Error = "no default reason for ErrorCode"

// Possible error codes, from RFC 5389 and the RFC 5766 TURN extension.
const (
	CodeTryAlternate          ErrorCode = 300
	CodeBadRequest            ErrorCode = 400
	CodeUnauthorised          ErrorCode = 401
	CodeForbidden             ErrorCode = 403
	CodeUnknownAttribute      ErrorCode = 420
	CodeAllocMismatch         ErrorCode = 437
	CodeStaleNonce            ErrorCode = 438
	CodeWrongCredentials      ErrorCode = 441
	CodeUnsupportedTransProto ErrorCode = 442
	CodeAllocQuotaReached     ErrorCode = 486
	CodeServerError           ErrorCode = 500
	CodeInsufficientCapacity  ErrorCode = 508
)

var errorReasons = map[ErrorCode][]byte{
	CodeTryAlternate:          []byte("Try Alternate"),
	CodeBadRequest:            []byte("Bad Request"),
	CodeUnauthorised:          []byte("Unauthorised"),
	CodeForbidden:             []byte("Forbidden"),
	CodeUnknownAttribute:      []byte("Unknown Attribute"),
	CodeAllocMismatch:         []byte("Allocation Mismatch"),
	CodeStaleNonce:            []byte("Stale Nonce"),
	CodeWrongCredentials:      []byte("Wrong Credentials"),
	CodeUnsupportedTransProto: []byte("Unsupported Transport Protocol"),
	CodeAllocQuotaReached:     []byte("Allocation Quota Reached"),
	CodeServerError:           []byte("Server Error"),
	CodeInsufficientCapacity:  []byte("Insufficient Capacity"),
}
