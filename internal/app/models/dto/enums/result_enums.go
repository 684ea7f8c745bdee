package enums

// ResultCode is the numeric status carried by every message item.
// 0 is success, 1xx malformed input, 2xx authorization or business-rule refusal, 9xx transport.
type ResultCode int

const (
	CodeOK ResultCode = 0

	CodeValidation       ResultCode = 100
	CodeMissingParameter ResultCode = 101
	CodeInvalidField     ResultCode = 102

	CodeAuthRequired       ResultCode = 200
	CodeInvalidCredentials ResultCode = 201
	CodeNotPermitted       ResultCode = 202
	CodeBusinessRule       ResultCode = 203
	CodeNotFound           ResultCode = 204

	CodeInternal       ResultCode = 900
	CodeUnknownCommand ResultCode = 901
	CodeMissingCommand ResultCode = 902
)

// IsSuccess reports whether c signals success
func (c ResultCode) IsSuccess() bool {
	return c == CodeOK
}

// ItemType tags each entry of a result list
type ItemType string

const (
	ItemMessage  ItemType = "message"
	ItemClass    ItemType = "class"
	ItemAttendee ItemType = "attendee"
	ItemSkill    ItemType = "skill"
	ItemRedirect ItemType = "redirect"
)
